// Package csvimport streams a product CSV file into validated rows
// without holding the whole file in memory.
package csvimport

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
)

var requiredColumns = []string{"sku", "name", "price", "stock_quantity"}
var recognizedOptionalColumns = []string{"description", "status", "primary_image"}

// Row is one decoded CSV line, keyed by lowercased header name. Number
// is the file's own line number (header is line 1, so the first data
// row is 2).
type Row struct {
	Number int
	Fields map[string]string
}

// Reader streams rows out of an encoding/csv.Reader. No third-party CSV
// library appears anywhere in the reference corpus; the standard
// library's streaming decoder already satisfies the memory-bound
// requirement, so this is the one component built directly on it.
type Reader struct {
	csv     *csv.Reader
	columns []string
	line    int
}

// NewReader reads and validates the header line, returning an error
// naming any missing required column.
func NewReader(r io.Reader) (*Reader, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}

	columns := make([]string, len(header))
	for i, h := range header {
		if i == 0 {
			h = strings.TrimPrefix(h, "\ufeff")
		}
		columns[i] = strings.ToLower(strings.TrimSpace(h))
	}

	if missing := MissingColumns(columns); len(missing) > 0 {
		return nil, &MissingColumnsError{Missing: missing}
	}

	return &Reader{csv: cr, columns: columns, line: 1}, nil
}

// MissingColumnsError reports which required columns a header lacked.
type MissingColumnsError struct {
	Missing []string
}

func (e *MissingColumnsError) Error() string {
	return fmt.Sprintf("missing required columns: %s", strings.Join(e.Missing, ", "))
}

// MissingColumns returns which of requiredColumns are absent from header,
// in required-column order.
func MissingColumns(header []string) []string {
	present := make(map[string]bool, len(header))
	for _, h := range header {
		present[h] = true
	}

	var missing []string
	for _, col := range requiredColumns {
		if !present[col] {
			missing = append(missing, col)
		}
	}
	return missing
}

// Columns reports the recognized column set for GET /imports/products/columns.
func Columns() (required, optional []string) {
	return requiredColumns, recognizedOptionalColumns
}

// Next returns the next row, or io.EOF once the stream is exhausted.
func (r *Reader) Next() (*Row, error) {
	record, err := r.csv.Read()
	if err != nil {
		return nil, err
	}
	r.line++

	fields := make(map[string]string, len(r.columns))
	for i, col := range r.columns {
		if i < len(record) {
			fields[col] = strings.TrimSpace(record[i])
		}
	}

	return &Row{Number: r.line, Fields: fields}, nil
}
