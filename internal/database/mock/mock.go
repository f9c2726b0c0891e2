// Package mock provides mock implementations of database interfaces for testing.
package mock

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kozaktomas/staff-clock/internal/database"
)

// MockEnrollmentStore is a mock implementation of database.EnrollmentWriter
type MockEnrollmentStore struct {
	mu          sync.RWMutex
	enrollments map[string]database.StoredEnrollment
	listCalls   int

	// Error injection
	ListError   error
	GetError    error
	CountError  error
	UpsertError error
	DeleteError error
}

// NewMockEnrollmentStore creates a new mock enrollment store
func NewMockEnrollmentStore() *MockEnrollmentStore {
	return &MockEnrollmentStore{
		enrollments: make(map[string]database.StoredEnrollment),
	}
}

// AddEnrollment adds an enrollment directly, bypassing validation
func (m *MockEnrollmentStore) AddEnrollment(staffID string, embedding []float32) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.enrollments[staffID] = database.StoredEnrollment{
		StaffID:    staffID,
		Embedding:  embedding,
		Model:      database.DefaultEmbeddingModel,
		EnrolledAt: time.Now(),
	}
}

// ListCalls returns how many times ListEnrollments hit the store
func (m *MockEnrollmentStore) ListCalls() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.listCalls
}

// ListEnrollments returns all enrollments in map order
func (m *MockEnrollmentStore) ListEnrollments(ctx context.Context) ([]database.StoredEnrollment, error) {
	if m.ListError != nil {
		return nil, m.ListError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listCalls++
	out := make([]database.StoredEnrollment, 0, len(m.enrollments))
	for _, e := range m.enrollments {
		out = append(out, e)
	}
	return out, nil
}

// GetEnrollment returns one enrollment or nil
func (m *MockEnrollmentStore) GetEnrollment(ctx context.Context, staffID string) (*database.StoredEnrollment, error) {
	if m.GetError != nil {
		return nil, m.GetError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.enrollments[staffID]
	if !ok {
		return nil, nil
	}
	return &e, nil
}

// CountEnrollments returns the number of enrollments
func (m *MockEnrollmentStore) CountEnrollments(ctx context.Context) (int, error) {
	if m.CountError != nil {
		return 0, m.CountError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.enrollments), nil
}

// UpsertEnrollment stores or replaces an enrollment
func (m *MockEnrollmentStore) UpsertEnrollment(ctx context.Context, staffID string, embedding []float32, model string) error {
	if m.UpsertError != nil {
		return m.UpsertError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	vec := make([]float32, len(embedding))
	copy(vec, embedding)
	m.enrollments[staffID] = database.StoredEnrollment{
		StaffID:    staffID,
		Embedding:  vec,
		Model:      model,
		EnrolledAt: time.Now(),
	}
	return nil
}

// DeleteEnrollment removes an enrollment
func (m *MockEnrollmentStore) DeleteEnrollment(ctx context.Context, staffID string) error {
	if m.DeleteError != nil {
		return m.DeleteError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.enrollments, staffID)
	return nil
}

// MockAttendanceStore is a mock implementation of database.AttendanceWriter.
// Like the real table it allows one row per (staff, date).
type MockAttendanceStore struct {
	mu   sync.Mutex
	days map[string]*database.AttendanceDay

	// Delay is applied before every write, honouring context cancellation.
	Delay time.Duration

	// Error injection
	GetError      error
	ListError     error
	InsertError   error
	CheckOutError error
}

// NewMockAttendanceStore creates a new mock attendance store
func NewMockAttendanceStore() *MockAttendanceStore {
	return &MockAttendanceStore{
		days: make(map[string]*database.AttendanceDay),
	}
}

func dayKey(staffID string, date time.Time) string {
	return staffID + "|" + database.DateKey(date)
}

// Rows returns a copy of all stored rows
func (m *MockAttendanceStore) Rows() []database.AttendanceDay {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]database.AttendanceDay, 0, len(m.days))
	for _, d := range m.days {
		out = append(out, *d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CheckInTime.Before(out[j].CheckInTime) })
	return out
}

// PutDay stores a row directly
func (m *MockAttendanceStore) PutDay(day database.AttendanceDay) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if day.ID == "" {
		day.ID = uuid.New().String()
	}
	m.days[dayKey(day.StaffID, day.Date)] = &day
}

func (m *MockAttendanceStore) wait(ctx context.Context) error {
	if m.Delay <= 0 {
		return nil
	}
	select {
	case <-time.After(m.Delay):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// GetAttendanceDay returns a copy of the row or nil
func (m *MockAttendanceStore) GetAttendanceDay(ctx context.Context, staffID string, date time.Time) (*database.AttendanceDay, error) {
	if m.GetError != nil {
		return nil, m.GetError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.days[dayKey(staffID, date)]
	if !ok {
		return nil, nil
	}
	cp := *d
	return &cp, nil
}

// ListAttendanceByDate returns rows for one date ordered by check-in time
func (m *MockAttendanceStore) ListAttendanceByDate(ctx context.Context, date time.Time) ([]database.AttendanceDay, error) {
	return m.ListAttendanceBetween(ctx, "", date, date)
}

// ListAttendanceBetween returns rows in [from, to], optionally for one staff member
func (m *MockAttendanceStore) ListAttendanceBetween(ctx context.Context, staffID string, from, to time.Time) ([]database.AttendanceDay, error) {
	if m.ListError != nil {
		return nil, m.ListError
	}
	var out []database.AttendanceDay
	for _, d := range m.Rows() {
		if d.Date.Before(from) || d.Date.After(to) {
			continue
		}
		if staffID != "" && d.StaffID != staffID {
			continue
		}
		out = append(out, d)
	}
	return out, nil
}

// InsertCheckIn creates a row, returning ErrDuplicateKey if one exists
func (m *MockAttendanceStore) InsertCheckIn(ctx context.Context, in database.CheckIn) (*database.AttendanceDay, error) {
	if m.InsertError != nil {
		return nil, m.InsertError
	}
	if err := m.wait(ctx); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	key := dayKey(in.StaffID, in.Date)
	if _, exists := m.days[key]; exists {
		return nil, database.ErrDuplicateKey
	}
	now := time.Now()
	d := &database.AttendanceDay{
		ID:          uuid.New().String(),
		StaffID:     in.StaffID,
		Date:        in.Date,
		CheckInTime: in.Timestamp,
		IsLate:      in.IsLate,
		Method:      in.Method,
		DeviceID:    in.DeviceID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	m.days[key] = d
	cp := *d
	return &cp, nil
}

// UpdateCheckOut sets the check-out time if the row has none and ts is after check-in
func (m *MockAttendanceStore) UpdateCheckOut(ctx context.Context, staffID string, date, ts time.Time) (*database.AttendanceDay, error) {
	if m.CheckOutError != nil {
		return nil, m.CheckOutError
	}
	if err := m.wait(ctx); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.days[dayKey(staffID, date)]
	if !ok || d.CheckOutTime != nil || !d.CheckInTime.Before(ts) {
		return nil, database.ErrNotFound
	}
	out := ts
	d.CheckOutTime = &out
	d.UpdatedAt = time.Now()
	cp := *d
	return &cp, nil
}

// MockStaffStore is a mock implementation of database.StaffWriter
type MockStaffStore struct {
	mu          sync.RWMutex
	staff       map[string]*database.StaffMember
	enrollments *MockEnrollmentStore

	// Error injection
	GetError        error
	ListError       error
	UpsertError     error
	SetPinError     error
	DeactivateError error
}

// NewMockStaffStore creates a staff store. enrollments, if set, loses the
// enrollment of a deactivated staff member like the real cascade.
func NewMockStaffStore(enrollments *MockEnrollmentStore) *MockStaffStore {
	return &MockStaffStore{
		staff:       make(map[string]*database.StaffMember),
		enrollments: enrollments,
	}
}

// AddStaff adds a staff member directly
func (m *MockStaffStore) AddStaff(member database.StaffMember) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if member.ID == "" {
		member.ID = uuid.New().String()
	}
	m.staff[member.ID] = &member
}

// GetStaff returns a staff member by id or nil
func (m *MockStaffStore) GetStaff(ctx context.Context, id string) (*database.StaffMember, error) {
	if m.GetError != nil {
		return nil, m.GetError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.staff[id]
	if !ok {
		return nil, nil
	}
	cp := *s
	return &cp, nil
}

// GetStaffByNumber returns a staff member by number or nil
func (m *MockStaffStore) GetStaffByNumber(ctx context.Context, staffNumber string) (*database.StaffMember, error) {
	if m.GetError != nil {
		return nil, m.GetError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, s := range m.staff {
		if s.StaffNumber == staffNumber {
			cp := *s
			return &cp, nil
		}
	}
	return nil, nil
}

// ListStaff returns staff ordered by name
func (m *MockStaffStore) ListStaff(ctx context.Context, activeOnly bool) ([]database.StaffMember, error) {
	if m.ListError != nil {
		return nil, m.ListError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]database.StaffMember, 0, len(m.staff))
	for _, s := range m.staff {
		if activeOnly && !s.IsActive {
			continue
		}
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FullName < out[j].FullName })
	return out, nil
}

// UpsertStaff inserts or updates by staff number
func (m *MockStaffStore) UpsertStaff(ctx context.Context, member database.StaffMember) (string, error) {
	if m.UpsertError != nil {
		return "", m.UpsertError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.staff {
		if s.StaffNumber == member.StaffNumber {
			s.FullName = member.FullName
			s.Email = member.Email
			s.Department = member.Department
			s.Position = member.Position
			s.IsActive = member.IsActive
			s.UpdatedAt = time.Now()
			return s.ID, nil
		}
	}
	if member.ID == "" {
		member.ID = uuid.New().String()
	}
	member.CreatedAt = time.Now()
	member.UpdatedAt = member.CreatedAt
	m.staff[member.ID] = &member
	return member.ID, nil
}

// SetPinHash stores a PIN hash
func (m *MockStaffStore) SetPinHash(ctx context.Context, id, pinHash string) error {
	if m.SetPinError != nil {
		return m.SetPinError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.staff[id]
	if !ok {
		return database.ErrNotFound
	}
	s.PinHash = pinHash
	return nil
}

// DeactivateStaff marks a staff member inactive and drops the enrollment
func (m *MockStaffStore) DeactivateStaff(ctx context.Context, id string) error {
	if m.DeactivateError != nil {
		return m.DeactivateError
	}
	m.mu.Lock()
	s, ok := m.staff[id]
	if !ok {
		m.mu.Unlock()
		return database.ErrNotFound
	}
	s.IsActive = false
	m.mu.Unlock()
	if m.enrollments != nil {
		return m.enrollments.DeleteEnrollment(ctx, id)
	}
	return nil
}

// MockAuditLog is a mock implementation of database.AuditWriter
type MockAuditLog struct {
	mu      sync.Mutex
	entries []database.AuditEntry

	AppendError error
}

func NewMockAuditLog() *MockAuditLog {
	return &MockAuditLog{}
}

// AppendAudit records an entry
func (m *MockAuditLog) AppendAudit(ctx context.Context, entry database.AuditEntry) error {
	if m.AppendError != nil {
		return m.AppendError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, entry)
	return nil
}

// ListAudit returns the newest entries first
func (m *MockAuditLog) ListAudit(ctx context.Context, limit int) ([]database.AuditEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]database.AuditEntry, 0, len(m.entries))
	for i := len(m.entries) - 1; i >= 0 && (limit <= 0 || len(out) < limit); i-- {
		out = append(out, m.entries[i])
	}
	return out, nil
}

// Actions returns the recorded actions in insertion order
func (m *MockAuditLog) Actions() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.entries))
	for i, e := range m.entries {
		out[i] = e.Action
	}
	return out
}

// MockSettingsStore is a mock implementation of database.SettingsStore
type MockSettingsStore struct {
	mu       sync.Mutex
	settings *database.Settings

	GetError  error
	SaveError error
}

func NewMockSettingsStore() *MockSettingsStore {
	return &MockSettingsStore{}
}

// GetSettings returns the saved settings or nil
func (m *MockSettingsStore) GetSettings(ctx context.Context) (*database.Settings, error) {
	if m.GetError != nil {
		return nil, m.GetError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.settings == nil {
		return nil, nil
	}
	cp := *m.settings
	return &cp, nil
}

// SaveSettings replaces the saved settings
func (m *MockSettingsStore) SaveSettings(ctx context.Context, s database.Settings) error {
	if m.SaveError != nil {
		return m.SaveError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	s.UpdatedAt = time.Now()
	m.settings = &s
	return nil
}

// MockRoster is a mock implementation of database.RosterSource
type MockRoster struct {
	Staff     []database.StaffMember
	ListError error
}

// ListRoster returns the configured staff
func (m *MockRoster) ListRoster(ctx context.Context) ([]database.StaffMember, error) {
	if m.ListError != nil {
		return nil, m.ListError
	}
	return m.Staff, nil
}
