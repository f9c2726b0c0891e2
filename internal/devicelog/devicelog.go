// Package devicelog reads clock events exported by fingerprint terminals.
//
// Both CSV and XLSX exports are supported. The first row is a header naming
// the columns; staff_id, timestamp and action are required, pin is optional.
package devicelog

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/kozaktomas/staff-clock/internal/attendance"
)

// Format is the file format of a device export.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

var ErrUnsupportedFormat = errors.New("unsupported device log format")

// headerAliases maps accepted header spellings to canonical column names.
var headerAliases = map[string]string{
	"staff_id":     "staff_id",
	"staff_number": "staff_id",
	"staff no":     "staff_id",
	"user_id":      "staff_id",
	"timestamp":    "timestamp",
	"time":         "timestamp",
	"datetime":     "timestamp",
	"action":       "action",
	"type":         "action",
	"event":        "action",
	"pin":          "pin",
}

// timestampLayouts are tried in order; layouts without a zone are read in the device location.
var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02T15:04:05",
	"02/01/2006 15:04:05",
	"02/01/2006 15:04",
}

// Result is the outcome of parsing a device export. Rows that cannot be parsed
// are reported in Errors and do not stop the rest of the file.
type Result struct {
	Records []attendance.DeviceRecord
	Errors  []string
}

// FormatFromFilename picks the format from the file extension.
func FormatFromFilename(name string) (Format, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv":
		return FormatCSV, nil
	case ".xlsx":
		return FormatXLSX, nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(name))
}

// ParseFile reads a device export from disk.
func ParseFile(path string, loc *time.Location) (*Result, error) {
	format, err := FormatFromFilename(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open device log: %w", err)
	}
	defer f.Close()
	return Parse(f, format, loc)
}

// Parse reads a device export in the given format.
func Parse(r io.Reader, format Format, loc *time.Location) (*Result, error) {
	if loc == nil {
		loc = time.UTC
	}
	switch format {
	case FormatCSV:
		return parseCSV(r, loc)
	case FormatXLSX:
		return parseXLSX(r, loc)
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
}

// columns holds the index of each canonical column in a header row.
type columns map[string]int

func parseHeader(row []string) (columns, error) {
	cols := columns{}
	for i, name := range row {
		key := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))
		if canonical, ok := headerAliases[key]; ok {
			if _, dup := cols[canonical]; !dup {
				cols[canonical] = i
			}
		}
	}
	for _, required := range []string{"staff_id", "timestamp", "action"} {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("missing %q column in header", required)
		}
	}
	return cols, nil
}

func (c columns) get(row []string, name string) string {
	i, ok := c[name]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// toRecord converts one data row. rawTime, when non-nil, parses spreadsheet serial dates.
func (c columns) toRecord(row []string, loc *time.Location, rawTime func(string) (time.Time, bool)) (attendance.DeviceRecord, error) {
	rec := attendance.DeviceRecord{
		StaffID: c.get(row, "staff_id"),
		Action:  normalizeAction(c.get(row, "action")),
		PIN:     c.get(row, "pin"),
	}
	if rec.StaffID == "" {
		return rec, errors.New("empty staff_id")
	}

	value := c.get(row, "timestamp")
	if rawTime != nil {
		if ts, ok := rawTime(value); ok {
			rec.Timestamp = ts
			return rec, nil
		}
	}
	ts, err := parseTimestamp(value, loc)
	if err != nil {
		return rec, err
	}
	rec.Timestamp = ts
	return rec, nil
}

func parseTimestamp(value string, loc *time.Location) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty timestamp")
	}
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, value, loc); err == nil {
			return t, nil
		}
	}
	if unix, err := strconv.ParseInt(value, 10, 64); err == nil && unix > 0 {
		return time.Unix(unix, 0).In(loc), nil
	}
	return time.Time{}, fmt.Errorf("unrecognised timestamp %q", value)
}

// normalizeAction lowercases terminal action names. Validation of the value is left to the sync.
func normalizeAction(action string) string {
	a := strings.ToLower(strings.TrimSpace(action))
	a = strings.ReplaceAll(a, "-", "_")
	a = strings.ReplaceAll(a, " ", "_")
	switch a {
	case "in", "checkin":
		return "check_in"
	case "out", "checkout":
		return "check_out"
	}
	return a
}

func isBlank(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
