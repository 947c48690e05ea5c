package sheets

import (
	"errors"
	"fmt"
)

// Table interprets raw sheet rows under the header-row convention: the first
// row names the fields, every following row is a record.
type Table struct {
	columns map[string]int
	fields  []string
	rows    [][]string
}

// NewTable builds a Table from raw rows. The header row is required.
func NewTable(rows [][]string) (*Table, error) {
	if len(rows) == 0 {
		return nil, errors.New("sheets: missing header row")
	}

	header := rows[0]
	columns := make(map[string]int, len(header))
	for i, field := range header {
		if field == "" {
			continue
		}
		if _, dup := columns[field]; dup {
			return nil, fmt.Errorf("sheets: duplicate header field %q", field)
		}
		columns[field] = i
	}

	return &Table{
		columns: columns,
		fields:  header,
		rows:    rows[1:],
	}, nil
}

// Fields returns the header fields in column order.
func (t *Table) Fields() []string {
	return t.fields
}

// Len reports the number of data rows.
func (t *Table) Len() int {
	return len(t.rows)
}

// ColumnIndex resolves a field name to its column position.
func (t *Table) ColumnIndex(field string) (int, bool) {
	idx, ok := t.columns[field]
	return idx, ok
}

// Row returns the data row at the given 1-based position.
func (t *Table) Row(index int) ([]string, bool) {
	if index < 1 || index > len(t.rows) {
		return nil, false
	}
	return t.rows[index-1], true
}

// Lookup scans data rows for the first row whose field equals value and
// returns the row together with its 1-based position. When several rows
// match, the first one wins; uniqueness is the writer's invariant, not a
// guarantee enforced here.
func (t *Table) Lookup(field, value string) ([]string, int, bool) {
	col, ok := t.columns[field]
	if !ok {
		return nil, 0, false
	}

	for i, row := range t.rows {
		if t.cell(row, col) == value {
			return row, i + 1, true
		}
	}
	return nil, 0, false
}

// Value reads the named field from a row, tolerating short rows.
func (t *Table) Value(row []string, field string) string {
	col, ok := t.columns[field]
	if !ok {
		return ""
	}
	return t.cell(row, col)
}

// Render builds a positional row from field values, laid out per the header.
func (t *Table) Render(values map[string]string) []string {
	row := make([]string, len(t.fields))
	for field, value := range values {
		if col, ok := t.columns[field]; ok {
			row[col] = value
		}
	}
	return row
}

func (t *Table) cell(row []string, col int) string {
	if col < 0 || col >= len(row) {
		return ""
	}
	return row[col]
}
