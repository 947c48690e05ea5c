package accounts

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/classpad/answerboard/internal/cache"
	"github.com/classpad/answerboard/internal/sheets"
	apperrors "github.com/classpad/answerboard/pkg/errors"
	"github.com/classpad/answerboard/pkg/logger"
	"github.com/classpad/answerboard/pkg/metrics"
)

// LookupOptions selects how a record lookup behaves.
type LookupOptions struct {
	// Layer picks the cache partition; defaults to the standard layer.
	Layer cache.Layer
	// ForceFresh invalidates every layer for the logical key before the
	// lookup, guaranteeing a store-originated read.
	ForceFresh bool
	// SecurityCheck requires the tenant guard to pass before any record data
	// is returned, including data already present in cache.
	SecurityCheck bool
	// Viewer is the caller identity evaluated by the guard. Required when
	// SecurityCheck is set.
	Viewer Identity
}

// Lookup is the single implementation behind all record lookups: it consults
// the tiered cache first and falls back to the remote tabular store,
// populating the cache on the way out. All compatibility wrappers delegate
// here; none may grow an independent fetch path.
type Lookup struct {
	cache    *cache.Tiered
	rows     sheets.RowStore
	sheet    string
	guard    Guard
	log      *zap.Logger
	wrappers map[string]wrapperSpec
}

type lookupOutcome int

const (
	outcomeFound lookupOutcome = iota
	outcomeMissing
	outcomeForbidden
)

type lookupResult struct {
	outcome lookupOutcome
	record  *Record
}

// NewLookup constructs the lookup core. The wrapper registry is built once
// here so every historical call surface shares the same fixed-option tuples.
func NewLookup(tiered *cache.Tiered, rows sheets.RowStore, sheet string) (*Lookup, error) {
	if tiered == nil {
		return nil, errors.New("accounts: tiered cache is required")
	}
	if rows == nil {
		return nil, errors.New("accounts: row store is required")
	}
	if strings.TrimSpace(sheet) == "" {
		return nil, errors.New("accounts: sheet name is required")
	}

	l := &Lookup{
		cache: tiered,
		rows:  rows,
		sheet: sheet,
		log:   logger.WithModule("accounts"),
	}
	l.wrappers = buildWrapperRegistry()
	return l, nil
}

// GetRecord resolves a record by (searchField, searchValue) under the given
// options. A nil record with a nil error means "not found or unavailable":
// transient store failures are absorbed so one subsystem's outage cannot
// cascade into an unrelated request crash. Only a tenant-boundary violation
// is returned as an error.
func (l *Lookup) GetRecord(ctx context.Context, field, value string, opts LookupOptions) (*Record, error) {
	start := time.Now()

	value = strings.TrimSpace(value)
	if err := validateField(field); err != nil {
		return nil, err
	}
	if value == "" {
		return nil, apperrors.NewBadRequest("search value is required")
	}
	opts.Layer = cache.Normalize(opts.Layer)

	res := l.resolve(ctx, field, value, opts)

	switch res.outcome {
	case outcomeForbidden:
		metrics.LookupLatency.WithLabelValues(field, "forbidden").Observe(time.Since(start).Seconds())
		return nil, apperrors.ErrTenantBoundary
	case outcomeMissing:
		metrics.LookupLatency.WithLabelValues(field, "missing").Observe(time.Since(start).Seconds())
		return nil, nil
	default:
		metrics.LookupLatency.WithLabelValues(field, "found").Observe(time.Since(start).Seconds())
		return res.record, nil
	}
}

func (l *Lookup) resolve(ctx context.Context, field, value string, opts LookupOptions) lookupResult {
	// Forced freshness invalidates before anything else, including the
	// security check, so a denied caller still cannot pin a stale entry.
	if opts.ForceFresh {
		l.cache.Invalidate(ctx, value, "")
	}

	var rec *Record
	if !opts.ForceFresh {
		rec = l.fromCache(ctx, opts.Layer, value)
	}

	if rec == nil {
		var found bool
		rec, found = l.fromStore(ctx, field, value)
		if !found {
			return lookupResult{outcome: outcomeMissing}
		}
		l.populate(ctx, opts.Layer, value, rec)
	}

	// The guard applies to cache hits as well: data already fetched must not
	// be returned when the boundary check fails.
	if opts.SecurityCheck && !l.guard.ValidateTenantBoundary(opts.Viewer, rec) {
		return lookupResult{outcome: outcomeForbidden}
	}

	return lookupResult{outcome: outcomeFound, record: rec}
}

func (l *Lookup) fromCache(ctx context.Context, layer cache.Layer, key string) *Record {
	data, found := l.cache.Get(ctx, layer, key)
	if !found {
		return nil
	}

	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		l.log.Warn("discarding undecodable cache entry",
			zap.String("layer", string(layer)),
			zap.Error(err),
		)
		return nil
	}
	return &rec
}

// fromStore queries the remote tabular store. Any failure is logged and
// reported as not-found; callers must treat nil as "not found or degraded".
func (l *Lookup) fromStore(ctx context.Context, field, value string) (*Record, bool) {
	rows, err := l.rows.ReadRows(ctx, l.sheet)
	if err != nil {
		l.log.Error("record lookup degraded: store read failed",
			zap.String("field", field),
			zap.Error(err),
		)
		return nil, false
	}

	tbl, err := sheets.NewTable(rows)
	if err != nil {
		l.log.Error("record lookup degraded: malformed sheet", zap.Error(err))
		return nil, false
	}

	row, _, found := tbl.Lookup(field, value)
	if !found {
		return nil, false
	}

	rec, err := recordFromRow(tbl, row)
	if err != nil {
		l.log.Error("record lookup degraded: malformed row", zap.Error(err))
		return nil, false
	}
	return rec, true
}

func (l *Lookup) populate(ctx context.Context, layer cache.Layer, key string, rec *Record) {
	payload, err := json.Marshal(rec)
	if err != nil {
		l.log.Warn("cache population skipped: encode failed", zap.Error(err))
		return
	}
	l.cache.Set(ctx, layer, key, payload)
}

// Invalidate removes the record's entries from every cache layer for both its
// id and email keys. Exposed for the write paths (registry updates).
func (l *Lookup) Invalidate(ctx context.Context, id, email string) int {
	return l.cache.Invalidate(ctx, id, email)
}

func validateField(field string) error {
	switch field {
	case FieldID, FieldEmail:
		return nil
	default:
		return apperrors.NewBadRequest(fmt.Sprintf("unsupported search field %q", field))
	}
}
