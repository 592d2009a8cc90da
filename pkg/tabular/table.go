// Package tabular holds the shared tabular shapes produced by the
// portal and index readers: flat single-header tables and tables whose
// columns carry a multi-row label tuple (as the observation CSV
// download does).
package tabular

import (
	"encoding/csv"
	"fmt"
	"io"
)

// Table is a flat table: one header row and string cells.
// Column labels are preserved verbatim from the source, including
// Japanese agency terminology, because downstream consumers key on
// those exact strings.
type Table struct {
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
}

// NewTable creates an empty table with the given column labels.
func NewTable(columns []string) *Table {
	return &Table{Columns: columns}
}

// AppendRow adds a row to the table. The row must have exactly one
// cell per column.
func (t *Table) AppendRow(row []string) error {
	if len(row) != len(t.Columns) {
		return fmt.Errorf("row has %d cells, want %d", len(row), len(t.Columns))
	}
	t.Rows = append(t.Rows, row)
	return nil
}

// NumRows returns the number of data rows.
func (t *Table) NumRows() int { return len(t.Rows) }

// WriteCSV writes the table as CSV: header row, then data rows.
func (t *Table) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Columns); err != nil {
		return err
	}
	for _, row := range t.Rows {
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// MultiTable is a table whose columns are labelled by a tuple of header
// cells, one per header level. All tuples have the same length.
type MultiTable struct {
	// Header holds one label tuple per column.
	Header [][]string `json:"header"`
	Rows   [][]string `json:"rows"`
}

// NumCols returns the number of columns.
func (t *MultiTable) NumCols() int { return len(t.Header) }

// NumRows returns the number of data rows.
func (t *MultiTable) NumRows() int { return len(t.Rows) }

// HeaderLevels returns the number of header rows.
func (t *MultiTable) HeaderLevels() int {
	if len(t.Header) == 0 {
		return 0
	}
	return len(t.Header[0])
}

// WriteCSV writes the table as CSV: one row per header level, then the
// data rows.
func (t *MultiTable) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	for lvl := 0; lvl < t.HeaderLevels(); lvl++ {
		row := make([]string, len(t.Header))
		for c, tuple := range t.Header {
			row[c] = tuple[lvl]
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	for _, row := range t.Rows {
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
