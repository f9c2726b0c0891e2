package devicelog

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"time"
)

func parseCSV(r io.Reader, loc *time.Location) (*Result, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, errors.New("empty device log")
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	cols, err := parseHeader(header)
	if err != nil {
		return nil, err
	}

	result := &Result{}
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				result.Errors = append(result.Errors, fmt.Sprintf("line %d: %v", parseErr.Line, parseErr.Err))
				continue
			}
			return nil, fmt.Errorf("read device log: %w", err)
		}
		if isBlank(row) {
			continue
		}
		line, _ := reader.FieldPos(0)
		rec, err := cols.toRecord(row, loc, nil)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("line %d: %v", line, err))
			continue
		}
		result.Records = append(result.Records, rec)
	}
	return result, nil
}
