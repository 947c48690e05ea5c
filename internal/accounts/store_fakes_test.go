package accounts

import (
	"context"
	"sync"

	"github.com/stretchr/testify/require"
	"testing"

	"github.com/classpad/answerboard/internal/cache"
)

// fakeRowStore is an in-memory RowStore that tracks call counts and can be
// told to fail.
type fakeRowStore struct {
	mu         sync.Mutex
	rows       [][]string
	readCalls  int
	readErr    error
	appendErr  error
	updateErr  error
	lastUpdate int
}

func newFakeRowStore(rows [][]string) *fakeRowStore {
	return &fakeRowStore{rows: rows}
}

func (f *fakeRowStore) ReadRows(_ context.Context, _ string) ([][]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.readCalls++
	if f.readErr != nil {
		return nil, f.readErr
	}
	out := make([][]string, len(f.rows))
	for i, row := range f.rows {
		out[i] = append([]string(nil), row...)
	}
	return out, nil
}

func (f *fakeRowStore) AppendRow(_ context.Context, _ string, row []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.appendErr != nil {
		return f.appendErr
	}
	f.rows = append(f.rows, append([]string(nil), row...))
	return nil
}

func (f *fakeRowStore) UpdateRow(_ context.Context, _ string, index int, row []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateErr != nil {
		return f.updateErr
	}
	f.lastUpdate = index
	f.rows[index] = append([]string(nil), row...)
	return nil
}

func registryRows() [][]string {
	return [][]string{
		{"userId", "adminEmail", "isActive", "settings", "updatedAt"},
		{"U1", "a@x.com", "true", `{"theme":"dark"}`, "2026-08-01T10:00:00Z"},
		{"U2", "b@x.com", "false", "{}", "2026-08-01T10:00:00Z"},
	}
}

func newTestLookup(t *testing.T, rows *fakeRowStore) (*Lookup, *cache.Tiered, *cache.MemoryStore) {
	t.Helper()

	store := cache.NewMemoryStore()
	t.Cleanup(store.Close)

	tiered, err := cache.NewTiered(store)
	require.NoError(t, err)

	lookup, err := NewLookup(tiered, rows, "users")
	require.NoError(t, err)

	return lookup, tiered, store
}
