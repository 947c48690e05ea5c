package accounts

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/classpad/answerboard/internal/cache"
	apperrors "github.com/classpad/answerboard/pkg/errors"
)

// Scenario: cache empty, store has the row. The lookup returns the record and
// populates the standard-layer entry under the physical key user_std_U1.
func TestGetRecordMissFallsBackAndPopulatesCache(t *testing.T) {
	rows := newFakeRowStore(registryRows())
	lookup, _, store := newTestLookup(t, rows)
	ctx := context.Background()

	rec, err := lookup.GetRecord(ctx, FieldID, "U1", LookupOptions{Layer: cache.LayerStandard})
	require.NoError(t, err)
	require.NotNil(t, rec)
	require.Equal(t, "U1", rec.ID)
	require.Equal(t, "a@x.com", rec.Email)
	require.True(t, rec.Active)
	require.Equal(t, "dark", rec.Settings["theme"])

	_, found, err := store.Get(ctx, "user_std_U1")
	require.NoError(t, err)
	require.True(t, found)
}

func TestGetRecordSecondCallServedFromCache(t *testing.T) {
	rows := newFakeRowStore(registryRows())
	lookup, _, _ := newTestLookup(t, rows)
	ctx := context.Background()

	first, err := lookup.GetRecord(ctx, FieldID, "U1", LookupOptions{})
	require.NoError(t, err)
	require.Equal(t, 1, rows.readCalls)

	second, err := lookup.GetRecord(ctx, FieldID, "U1", LookupOptions{})
	require.NoError(t, err)
	require.Equal(t, 1, rows.readCalls, "second lookup must not hit the store")
	require.Equal(t, first, second)
}

func TestGetRecordNotFoundIsNilNotError(t *testing.T) {
	rows := newFakeRowStore(registryRows())
	lookup, _, _ := newTestLookup(t, rows)

	rec, err := lookup.GetRecord(context.Background(), FieldID, "U404", LookupOptions{})
	require.NoError(t, err)
	require.Nil(t, rec)
}

// Scenario: the store errors during fallback. The lookup degrades to a nil
// result; no error escapes.
func TestGetRecordStoreFailureDegradesToNil(t *testing.T) {
	rows := newFakeRowStore(registryRows())
	rows.readErr = errors.New("quota exceeded")
	lookup, _, _ := newTestLookup(t, rows)

	rec, err := lookup.GetRecord(context.Background(), FieldID, "U1", LookupOptions{})
	require.NoError(t, err)
	require.Nil(t, rec)
}

func TestGetRecordByEmailSecondaryKey(t *testing.T) {
	rows := newFakeRowStore(registryRows())
	lookup, _, store := newTestLookup(t, rows)
	ctx := context.Background()

	rec, err := lookup.GetRecord(ctx, FieldEmail, "a@x.com", LookupOptions{Layer: cache.LayerExtended})
	require.NoError(t, err)
	require.Equal(t, "U1", rec.ID)

	_, found, err := store.Get(ctx, "user_ext_a@x.com")
	require.NoError(t, err)
	require.True(t, found)
}

func TestGetRecordFirstRowWinsOnDuplicates(t *testing.T) {
	dup := registryRows()
	dup = append(dup, []string{"U9", "a@x.com", "true", "{}", "2026-08-02T10:00:00Z"})
	rows := newFakeRowStore(dup)
	lookup, _, _ := newTestLookup(t, rows)

	rec, err := lookup.GetRecord(context.Background(), FieldEmail, "a@x.com", LookupOptions{})
	require.NoError(t, err)
	require.Equal(t, "U1", rec.ID)
}

func TestGetRecordRejectsUnknownField(t *testing.T) {
	rows := newFakeRowStore(registryRows())
	lookup, _, _ := newTestLookup(t, rows)

	_, err := lookup.GetRecord(context.Background(), "password", "x", LookupOptions{})
	require.Error(t, err)

	_, err = lookup.GetRecord(context.Background(), FieldID, "  ", LookupOptions{})
	require.Error(t, err)
}

// A forced-fresh lookup must never return a value cached before the call.
func TestForceFreshNeverReturnsStaleCache(t *testing.T) {
	rows := newFakeRowStore(registryRows())
	lookup, tiered, _ := newTestLookup(t, rows)
	ctx := context.Background()

	// Poison every layer with a stale copy.
	stale := []byte(`{"userId":"U1","adminEmail":"old@x.com","isActive":true}`)
	for _, layer := range cache.Layers {
		tiered.Set(ctx, layer, "U1", stale)
	}

	rec, err := lookup.GetRecord(ctx, FieldID, "U1", LookupOptions{ForceFresh: true})
	require.NoError(t, err)
	require.Equal(t, "a@x.com", rec.Email, "must reflect the store, not the stale cache")
	require.Equal(t, 1, rows.readCalls)

	// The stale entries are gone from every layer.
	for _, layer := range cache.Layers {
		if layer == cache.LayerStandard {
			continue // repopulated by the fresh read
		}
		_, found := tiered.Get(ctx, layer, "U1")
		require.False(t, found, "layer %s should have been invalidated", layer)
	}
}

func TestForceFreshWithStoreDownReturnsNil(t *testing.T) {
	rows := newFakeRowStore(registryRows())
	lookup, tiered, _ := newTestLookup(t, rows)
	ctx := context.Background()

	// Warm the cache, then take the store down.
	_, err := lookup.GetRecord(ctx, FieldID, "U1", LookupOptions{})
	require.NoError(t, err)
	rows.readErr = errors.New("store down")

	rec, err := lookup.GetRecord(ctx, FieldID, "U1", LookupOptions{ForceFresh: true})
	require.NoError(t, err)
	require.Nil(t, rec, "forced freshness must not fall back to the pre-call cache entry")

	_, found := tiered.Get(ctx, cache.LayerStandard, "U1")
	require.False(t, found)
}

// Scenario: security check with a denying guard. The call fails with the
// fixed tenant-boundary error and leaks no record fields.
func TestSecurityCheckDeniedThrowsFixedError(t *testing.T) {
	rows := newFakeRowStore(registryRows())
	lookup, _, _ := newTestLookup(t, rows)

	rec, err := lookup.GetRecord(context.Background(), FieldID, "U1", LookupOptions{
		SecurityCheck: true,
		Viewer:        Identity{Email: "intruder@x.com"},
	})
	require.Nil(t, rec)
	require.ErrorIs(t, err, apperrors.ErrTenantBoundary)
	require.Equal(t, "Access denied", err.Error())
	require.NotContains(t, err.Error(), "U1")
	require.NotContains(t, err.Error(), "a@x.com")
}

func TestSecurityCheckAppliesToCacheHits(t *testing.T) {
	rows := newFakeRowStore(registryRows())
	lookup, _, _ := newTestLookup(t, rows)
	ctx := context.Background()

	// Warm the secure layer as the owner.
	rec, err := lookup.GetRecord(ctx, FieldID, "U1", LookupOptions{
		Layer:         cache.LayerSecure,
		SecurityCheck: true,
		Viewer:        Identity{Email: "a@x.com"},
	})
	require.NoError(t, err)
	require.NotNil(t, rec)

	// A different viewer must be rejected even though the entry is cached.
	rec, err = lookup.GetRecord(ctx, FieldID, "U1", LookupOptions{
		Layer:         cache.LayerSecure,
		SecurityCheck: true,
		Viewer:        Identity{Email: "intruder@x.com"},
	})
	require.Nil(t, rec)
	require.ErrorIs(t, err, apperrors.ErrTenantBoundary)
}

func TestSecurityCheckAllowsOwnerAndAdmin(t *testing.T) {
	rows := newFakeRowStore(registryRows())
	lookup, _, _ := newTestLookup(t, rows)
	ctx := context.Background()

	rec, err := lookup.GetRecord(ctx, FieldID, "U1", LookupOptions{
		SecurityCheck: true,
		Viewer:        Identity{Email: "a@x.com"},
	})
	require.NoError(t, err)
	require.NotNil(t, rec)

	rec, err = lookup.GetRecord(ctx, FieldID, "U2", LookupOptions{
		SecurityCheck: true,
		Viewer:        Identity{Email: "root@x.com", Admin: true},
	})
	require.NoError(t, err)
	require.NotNil(t, rec)
}

func TestGetRecordDiscardsUndecodableCacheEntry(t *testing.T) {
	rows := newFakeRowStore(registryRows())
	lookup, tiered, _ := newTestLookup(t, rows)
	ctx := context.Background()

	tiered.Set(ctx, cache.LayerStandard, "U1", []byte("not json"))

	rec, err := lookup.GetRecord(ctx, FieldID, "U1", LookupOptions{})
	require.NoError(t, err)
	require.NotNil(t, rec)
	require.Equal(t, 1, rows.readCalls, "undecodable entry falls through to the store")
}
