package mariadb

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/kozaktomas/staff-clock/internal/database"
)

// rosterQuery reads the staff table of the school management system.
// Rows without a staff number cannot be clocked and are skipped.
const rosterQuery = `
	SELECT staff_number, first_name, last_name, email, department, position, status
	FROM staff
	WHERE staff_number IS NOT NULL AND staff_number <> ''
	ORDER BY staff_number
`

// ListRoster returns every staff member known to the school management system.
// Only status "active" maps to IsActive.
func (p *Pool) ListRoster(ctx context.Context) ([]database.StaffMember, error) {
	rows, err := p.db.QueryContext(ctx, rosterQuery)
	if err != nil {
		return nil, fmt.Errorf("query roster: %w", classifyError(err))
	}
	defer rows.Close()

	var out []database.StaffMember
	for rows.Next() {
		var number, first, last string
		var email, department, position, status sql.NullString
		if err := rows.Scan(&number, &first, &last, &email, &department, &position, &status); err != nil {
			return nil, fmt.Errorf("scan roster row: %w", err)
		}
		out = append(out, database.StaffMember{
			StaffNumber: strings.TrimSpace(number),
			FullName:    strings.TrimSpace(first + " " + last),
			Email:       email.String,
			Department:  department.String,
			Position:    position.String,
			IsActive:    strings.EqualFold(strings.TrimSpace(status.String), "active"),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate roster: %w", classifyError(err))
	}
	return out, nil
}
