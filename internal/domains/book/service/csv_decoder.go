package service

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"library-backend/internal/domains/book/model"
)

// rowReader decodes an uploaded CSV into ImportRows one line at a time.
// Header names are matched case-insensitively; unknown columns are
// ignored and missing columns yield empty fields. The sequence is
// forward-only and cannot be restarted.
type rowReader struct {
	reader *csv.Reader
	header map[string]int
	row    int
}

func newRowReader(src io.Reader) (*rowReader, error) {
	reader := csv.NewReader(src)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	headerRecord, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	header := make(map[string]int, len(headerRecord))
	for i, name := range headerRecord {
		header[strings.ToLower(strings.TrimSpace(name))] = i
	}

	return &rowReader{
		reader: reader,
		header: header,
	}, nil
}

// Next returns the next data row, or io.EOF when the input is exhausted.
// A malformed line is a decode failure for the whole batch.
func (r *rowReader) Next() (*model.ImportRow, error) {
	record, err := r.reader.Read()
	if err == io.EOF {
		return nil, io.EOF
	}
	if err != nil {
		return nil, fmt.Errorf("failed to decode row %d: %w", r.row+1, err)
	}

	r.row++
	return &model.ImportRow{
		Row:        r.row,
		Title:      r.field(record, "title"),
		ISBN:       r.field(record, "isbn"),
		AuthorID:   r.field(record, "authorid"),
		AuthorName: r.field(record, "authorname"),
		PageCount:  r.field(record, "pagecount"),
	}, nil
}

func (r *rowReader) field(record []string, name string) string {
	idx, ok := r.header[name]
	if !ok || idx >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[idx])
}

// decodeRows drains the reader into memory so rows can be dispatched to
// workers and the report sized up front. Any decode error aborts the
// whole batch since later rows cannot be trusted.
func decodeRows(src io.Reader) ([]model.ImportRow, error) {
	reader, err := newRowReader(src)
	if err != nil {
		return nil, err
	}

	var rows []model.ImportRow
	for {
		row, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		rows = append(rows, *row)
	}
	return rows, nil
}
