// Package export serializes record lists for download: one CSV per record
// type and a combined JSON backup of everything a user owns.
package export

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
)

// ErrHeterogeneousRecords is returned when a row carries a key that the
// header, taken from the first row, does not know about.
var ErrHeterogeneousRecords = errors.New("records do not share the header's key set")

// Field is one key/value cell of an export row.
type Field struct {
	Key   string
	Value string
}

// Row keeps its fields in column order.
type Row []Field

func (r Row) keys() []string {
	keys := make([]string, len(r))
	for i, f := range r {
		keys[i] = f.Key
	}
	return keys
}

// WriteCSV writes rows as comma separated values. The header is the key order
// of the first row; later rows are mapped by key, and keys they lack render
// as empty cells. Quoting follows RFC 4180. No rows means no output. Every
// row is checked against the header before anything is written, so a
// rejected list leaves w untouched.
func WriteCSV(w io.Writer, rows []Row) error {
	values, err := Values(rows)
	if err != nil || len(values) == 0 {
		return err
	}

	cw := csv.NewWriter(w)
	for n, record := range values {
		if err := cw.Write(record); err != nil {
			if n == 0 {
				return fmt.Errorf("write csv header: %w", err)
			}
			return fmt.Errorf("write csv row %d: %w", n-1, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}

// Values flattens rows into a header plus cell matrix, the shape spreadsheet
// APIs expect.
func Values(rows []Row) ([][]string, error) {
	if len(rows) == 0 {
		return nil, nil
	}
	header := rows[0].keys()
	position := make(map[string]int, len(header))
	for i, k := range header {
		if _, dup := position[k]; dup {
			return nil, fmt.Errorf("duplicate column %q: %w", k, ErrHeterogeneousRecords)
		}
		position[k] = i
	}
	out := make([][]string, 0, len(rows)+1)
	out = append(out, header)
	for n, row := range rows {
		record := make([]string, len(header))
		for _, f := range row {
			i, ok := position[f.Key]
			if !ok {
				return nil, fmt.Errorf("row %d has unknown column %q: %w", n, f.Key, ErrHeterogeneousRecords)
			}
			record[i] = f.Value
		}
		out = append(out, record)
	}
	return out, nil
}
