package devicelog

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/xuri/excelize/v2"
)

// parseXLSX reads the first sheet of a workbook. Date cells are read raw and
// converted from spreadsheet serial numbers in the device location.
func parseXLSX(r io.Reader, loc *time.Location) (*Result, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New("workbook has no sheets")
	}
	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return nil, errors.New("empty device log")
	}

	cols, err := parseHeader(rows[0])
	if err != nil {
		return nil, err
	}

	serial := func(value string) (time.Time, bool) {
		n, err := strconv.ParseFloat(value, 64)
		// Plain unix timestamps are far larger than any serial date.
		if err != nil || n <= 0 || n > 1e6 {
			return time.Time{}, false
		}
		t, err := excelize.ExcelDateToTime(n, false)
		if err != nil {
			return time.Time{}, false
		}
		t = t.Round(time.Second)
		return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), 0, loc), true
	}

	result := &Result{}
	for i, row := range rows[1:] {
		if isBlank(row) {
			continue
		}
		rec, err := cols.toRecord(row, loc, serial)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("row %d: %v", i+2, err))
			continue
		}
		result.Records = append(result.Records, rec)
	}
	return result, nil
}
