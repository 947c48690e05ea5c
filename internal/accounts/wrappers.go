package accounts

import (
	"context"

	"github.com/classpad/answerboard/internal/cache"
)

// The compatibility wrappers preserve the historical lookup surface. Each
// wrapper name maps to a fixed (searchField, options) tuple in a registry
// built once at construction, so adding a lookup variant means adding a
// registry entry, never a parallel fetch path.

type wrapperSpec struct {
	field string
	opts  LookupOptions
}

const (
	wrapFindByID         = "find_by_id"
	wrapFindByIDFast     = "find_by_id_fast"
	wrapFindByIDExtended = "find_by_id_extended"
	wrapFindByIDFresh    = "find_by_id_fresh"
	wrapFindByEmail      = "find_by_email"
	wrapFindByEmailFresh = "find_by_email_fresh"
	wrapSecureInfo       = "secure_info"
	wrapSecureInfoEmail  = "secure_info_by_email"
)

func buildWrapperRegistry() map[string]wrapperSpec {
	return map[string]wrapperSpec{
		wrapFindByID:         {field: FieldID, opts: LookupOptions{Layer: cache.LayerStandard}},
		wrapFindByIDFast:     {field: FieldID, opts: LookupOptions{Layer: cache.LayerFast}},
		wrapFindByIDExtended: {field: FieldID, opts: LookupOptions{Layer: cache.LayerExtended}},
		wrapFindByIDFresh:    {field: FieldID, opts: LookupOptions{Layer: cache.LayerStandard, ForceFresh: true}},
		wrapFindByEmail:      {field: FieldEmail, opts: LookupOptions{Layer: cache.LayerStandard}},
		wrapFindByEmailFresh: {field: FieldEmail, opts: LookupOptions{Layer: cache.LayerStandard, ForceFresh: true}},
		wrapSecureInfo:       {field: FieldID, opts: LookupOptions{Layer: cache.LayerSecure, SecurityCheck: true}},
		wrapSecureInfoEmail:  {field: FieldEmail, opts: LookupOptions{Layer: cache.LayerSecure, SecurityCheck: true}},
	}
}

func (l *Lookup) delegate(ctx context.Context, name, value string) (*Record, error) {
	spec := l.wrappers[name]
	return l.GetRecord(ctx, spec.field, value, spec.opts)
}

func (l *Lookup) delegateAs(ctx context.Context, name, value string, viewer Identity) (*Record, error) {
	spec := l.wrappers[name]
	opts := spec.opts
	opts.Viewer = viewer
	return l.GetRecord(ctx, spec.field, value, opts)
}

// FindByID resolves a record by id through the standard layer.
func (l *Lookup) FindByID(ctx context.Context, id string) (*Record, error) {
	return l.delegate(ctx, wrapFindByID, id)
}

// FindByIDFast resolves a record by id through the fast layer; used by
// latency-critical polling paths that tolerate only short staleness.
func (l *Lookup) FindByIDFast(ctx context.Context, id string) (*Record, error) {
	return l.delegate(ctx, wrapFindByIDFast, id)
}

// FindByIDExtended resolves a record by id through the extended layer; used
// by read-heavy admin views where minutes of staleness are acceptable.
func (l *Lookup) FindByIDExtended(ctx context.Context, id string) (*Record, error) {
	return l.delegate(ctx, wrapFindByIDExtended, id)
}

// FindByIDFresh forces a store-originated read by id.
func (l *Lookup) FindByIDFresh(ctx context.Context, id string) (*Record, error) {
	return l.delegate(ctx, wrapFindByIDFresh, id)
}

// FindByEmail resolves a record by its email secondary key.
func (l *Lookup) FindByEmail(ctx context.Context, email string) (*Record, error) {
	return l.delegate(ctx, wrapFindByEmail, email)
}

// FindByEmailFresh forces a store-originated read by email.
func (l *Lookup) FindByEmailFresh(ctx context.Context, email string) (*Record, error) {
	return l.delegate(ctx, wrapFindByEmailFresh, email)
}

// SecureInfo resolves a record by id with the tenant boundary enforced for
// the supplied viewer.
func (l *Lookup) SecureInfo(ctx context.Context, id string, viewer Identity) (*Record, error) {
	return l.delegateAs(ctx, wrapSecureInfo, id, viewer)
}

// SecureInfoByEmail resolves a record by email with the tenant boundary
// enforced for the supplied viewer.
func (l *Lookup) SecureInfoByEmail(ctx context.Context, email string, viewer Identity) (*Record, error) {
	return l.delegateAs(ctx, wrapSecureInfoEmail, email, viewer)
}
