package sheets

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func sampleRows() [][]string {
	return [][]string{
		{"userId", "adminEmail", "isActive"},
		{"U1", "a@x.com", "true"},
		{"U2", "b@x.com", "false"},
		{"U3", "a@x.com", "true"},
	}
}

func TestNewTableRequiresHeader(t *testing.T) {
	_, err := NewTable(nil)
	require.Error(t, err)

	_, err = NewTable([][]string{{"id", "id"}})
	require.Error(t, err)
}

func TestTableColumnIndex(t *testing.T) {
	tbl, err := NewTable(sampleRows())
	require.NoError(t, err)

	idx, ok := tbl.ColumnIndex("adminEmail")
	require.True(t, ok)
	require.Equal(t, 1, idx)

	_, ok = tbl.ColumnIndex("missing")
	require.False(t, ok)
}

func TestTableLookupFirstMatchWins(t *testing.T) {
	tbl, err := NewTable(sampleRows())
	require.NoError(t, err)

	row, index, found := tbl.Lookup("adminEmail", "a@x.com")
	require.True(t, found)
	require.Equal(t, 1, index)
	require.Equal(t, "U1", tbl.Value(row, "userId"))

	_, _, found = tbl.Lookup("adminEmail", "nobody@x.com")
	require.False(t, found)

	_, _, found = tbl.Lookup("missing", "a@x.com")
	require.False(t, found)
}

func TestTableValueToleratesShortRows(t *testing.T) {
	tbl, err := NewTable([][]string{
		{"userId", "adminEmail", "settings"},
		{"U1"},
	})
	require.NoError(t, err)

	row, _, found := tbl.Lookup("userId", "U1")
	require.True(t, found)
	require.Equal(t, "", tbl.Value(row, "settings"))
}

func TestTableRender(t *testing.T) {
	tbl, err := NewTable(sampleRows())
	require.NoError(t, err)

	row := tbl.Render(map[string]string{
		"userId":     "U9",
		"isActive":   "true",
		"adminEmail": "c@x.com",
		"unknown":    "dropped",
	})
	require.Equal(t, []string{"U9", "c@x.com", "true"}, row)
}

func TestTableRow(t *testing.T) {
	tbl, err := NewTable(sampleRows())
	require.NoError(t, err)
	require.Equal(t, 3, tbl.Len())

	row, ok := tbl.Row(2)
	require.True(t, ok)
	require.Equal(t, "U2", tbl.Value(row, "userId"))

	_, ok = tbl.Row(0)
	require.False(t, ok)
	_, ok = tbl.Row(4)
	require.False(t, ok)
}
