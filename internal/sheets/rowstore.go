package sheets

import "context"

// RowStore is the boundary to the remote tabular data store. Rows are ordered
// arrays of strings; the first row of every sheet holds the field names
// (header-row convention). Row indexes passed to UpdateRow are 1-based data
// positions, excluding the header row.
type RowStore interface {
	ReadRows(ctx context.Context, sheet string) ([][]string, error)
	AppendRow(ctx context.Context, sheet string, row []string) error
	UpdateRow(ctx context.Context, sheet string, index int, row []string) error
}
