package board

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/classpad/answerboard/internal/cache"
)

type fakeRowStore struct {
	mu        sync.Mutex
	rows      [][]string
	readCalls int
	readErr   error
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
	f.rows = append(f.rows, append([]string(nil), row...))
	return nil
}

func (f *fakeRowStore) UpdateRow(_ context.Context, _ string, index int, row []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rows[index] = append([]string(nil), row...)
	return nil
}

func answerRows() [][]string {
	return [][]string{
		answersHeader,
		{"A1", "B1", "alice", "first answer", "2", "false", "2026-08-20T09:00:00Z"},
		{"A2", "B1", "bob", "second answer", "0", "true", "2026-08-20T09:05:00Z"},
		{"A3", "B2", "carol", "other board", "1", "false", "2026-08-20T09:10:00Z"},
	}
}

func newTestService(t *testing.T, rows *fakeRowStore) *AnswerService {
	t.Helper()

	store := cache.NewMemoryStore()
	t.Cleanup(store.Close)

	tiered, err := cache.NewTiered(store)
	require.NoError(t, err)

	svc, err := NewAnswerService(rows, "answers", tiered, 100)
	require.NoError(t, err)
	return svc
}

func TestListFiltersByBoardNewestFirst(t *testing.T) {
	rows := &fakeRowStore{rows: answerRows()}
	svc := newTestService(t, rows)

	answers, err := svc.List(context.Background(), "B1")
	require.NoError(t, err)
	require.Len(t, answers, 2)
	require.Equal(t, "A2", answers[0].ID)
	require.Equal(t, "A1", answers[1].ID)
}

func TestListIsCachedOnFastLayer(t *testing.T) {
	rows := &fakeRowStore{rows: answerRows()}
	svc := newTestService(t, rows)
	ctx := context.Background()

	_, err := svc.List(ctx, "B1")
	require.NoError(t, err)
	require.Equal(t, 1, rows.readCalls)

	_, err = svc.List(ctx, "B1")
	require.NoError(t, err)
	require.Equal(t, 1, rows.readCalls, "second listing must come from cache")
}

func TestSubmitAppendsAndInvalidatesListing(t *testing.T) {
	rows := &fakeRowStore{rows: answerRows()}
	svc := newTestService(t, rows)
	ctx := context.Background()

	before, err := svc.List(ctx, "B1")
	require.NoError(t, err)

	answer, err := svc.Submit(ctx, SubmitInput{BoardID: "B1", Author: "dave", Text: "hello"})
	require.NoError(t, err)
	require.NotEmpty(t, answer.ID)

	after, err := svc.List(ctx, "B1")
	require.NoError(t, err)
	require.Len(t, after, len(before)+1)
	require.Equal(t, answer.ID, after[0].ID)
}

func TestSubmitValidation(t *testing.T) {
	rows := &fakeRowStore{rows: answerRows()}
	svc := newTestService(t, rows)
	ctx := context.Background()

	_, err := svc.Submit(ctx, SubmitInput{BoardID: "B1"})
	require.Error(t, err)

	_, err = svc.Submit(ctx, SubmitInput{Text: "no board"})
	require.Error(t, err)

	long := make([]rune, 101)
	for i := range long {
		long[i] = 'x'
	}
	_, err = svc.Submit(ctx, SubmitInput{BoardID: "B1", Text: string(long)})
	require.Error(t, err)
}

func TestSubmitDefaultsAnonymousAuthor(t *testing.T) {
	rows := &fakeRowStore{rows: answerRows()}
	svc := newTestService(t, rows)

	answer, err := svc.Submit(context.Background(), SubmitInput{BoardID: "B1", Text: "hi"})
	require.NoError(t, err)
	require.Equal(t, "anonymous", answer.Author)
}

func TestReactIncrementsCounter(t *testing.T) {
	rows := &fakeRowStore{rows: answerRows()}
	svc := newTestService(t, rows)
	ctx := context.Background()

	answer, err := svc.React(ctx, "A1")
	require.NoError(t, err)
	require.Equal(t, 3, answer.Reactions)

	answer, err = svc.React(ctx, "A1")
	require.NoError(t, err)
	require.Equal(t, 4, answer.Reactions)

	_, err = svc.React(ctx, "A404")
	require.ErrorIs(t, err, ErrAnswerNotFound)
}

func TestHighlightToggles(t *testing.T) {
	rows := &fakeRowStore{rows: answerRows()}
	svc := newTestService(t, rows)
	ctx := context.Background()

	answer, err := svc.Highlight(ctx, "A1", true)
	require.NoError(t, err)
	require.True(t, answer.Highlighted)

	answer, err = svc.Highlight(ctx, "A1", false)
	require.NoError(t, err)
	require.False(t, answer.Highlighted)
}

func TestMutationsRefreshListing(t *testing.T) {
	rows := &fakeRowStore{rows: answerRows()}
	svc := newTestService(t, rows)
	ctx := context.Background()

	_, err := svc.List(ctx, "B1")
	require.NoError(t, err)

	_, err = svc.React(ctx, "A1")
	require.NoError(t, err)

	answers, err := svc.List(ctx, "B1")
	require.NoError(t, err)
	for _, answer := range answers {
		if answer.ID == "A1" {
			require.Equal(t, 3, answer.Reactions)
		}
	}
}

func TestListSurfacesStoreFailure(t *testing.T) {
	rows := &fakeRowStore{rows: answerRows(), readErr: context.DeadlineExceeded}
	svc := newTestService(t, rows)

	_, err := svc.List(context.Background(), "B1")
	require.Error(t, err)
}

func TestBootstrapEmptySheet(t *testing.T) {
	rows := &fakeRowStore{}
	svc := newTestService(t, rows)

	answers, err := svc.List(context.Background(), "B1")
	require.NoError(t, err)
	require.Empty(t, answers)
	require.Equal(t, answersHeader, rows.rows[0])
}
