package accounts

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/classpad/answerboard/internal/cache"
	"github.com/classpad/answerboard/internal/services"
	"github.com/classpad/answerboard/internal/sheets"
	apperrors "github.com/classpad/answerboard/pkg/errors"
	"github.com/classpad/answerboard/pkg/logger"
)

// ErrAccountNotFound indicates the requested account row does not exist.
var ErrAccountNotFound = apperrors.New("ACCOUNT_NOT_FOUND", "Account not found", 404)

// Registry owns the write path for account records. Every successful write
// invalidates all cache layers for the record's id and email so the next read
// observes the store. Writes race across concurrent invocations with
// last-writer-wins semantics at the row level; the remote store arbitrates.
type Registry struct {
	rows  sheets.RowStore
	sheet string
	cache *cache.Tiered
	audit *services.AuditService
	log   *zap.Logger
	now   func() time.Time
}

// NewRegistry constructs the account registry.
func NewRegistry(rows sheets.RowStore, sheet string, tiered *cache.Tiered, audit *services.AuditService) (*Registry, error) {
	if rows == nil {
		return nil, errors.New("accounts: row store is required")
	}
	if strings.TrimSpace(sheet) == "" {
		return nil, errors.New("accounts: sheet name is required")
	}
	if tiered == nil {
		return nil, errors.New("accounts: tiered cache is required")
	}

	return &Registry{
		rows:  rows,
		sheet: sheet,
		cache: tiered,
		audit: audit,
		log:   logger.WithModule("accounts"),
		now:   time.Now,
	}, nil
}

// Register creates a new active account for the email. Registration fails if
// an active account already holds the address.
func (r *Registry) Register(ctx context.Context, email string) (*Record, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, apperrors.NewBadRequest("email is required")
	}

	tbl, err := r.table(ctx)
	if err != nil {
		return nil, err
	}

	if row, _, found := tbl.Lookup(FieldEmail, email); found {
		existing, parseErr := recordFromRow(tbl, row)
		if parseErr == nil && existing.Active {
			return nil, apperrors.NewBadRequest("email is already registered")
		}
	}

	rec := &Record{
		ID:        uuid.NewString(),
		Email:     email,
		Active:    true,
		Settings:  map[string]any{},
		UpdatedAt: r.now().UTC(),
	}

	row, err := rec.toRow(tbl)
	if err != nil {
		return nil, err
	}
	if err := r.rows.AppendRow(ctx, r.sheet, row); err != nil {
		return nil, apperrors.Wrap(err, "failed to register account")
	}

	r.cache.Invalidate(ctx, rec.ID, rec.Email)
	services.RecordAudit(r.audit, ctx, services.AuditEntry{
		Action:   "account.register",
		Resource: rec.ID,
		Result:   "success",
		Metadata: map[string]any{"email": rec.Email},
	})

	return rec, nil
}

// UpdateSettings merges the patch into the account's configuration blob.
// The merge is shallow; a nil patch value removes the key. The account id and
// email are immutable through this path.
func (r *Registry) UpdateSettings(ctx context.Context, id string, patch map[string]any) (*Record, error) {
	rec, tbl, index, err := r.load(ctx, id)
	if err != nil {
		return nil, err
	}

	if rec.Settings == nil {
		rec.Settings = map[string]any{}
	}
	for key, value := range patch {
		if value == nil {
			delete(rec.Settings, key)
			continue
		}
		rec.Settings[key] = value
	}
	rec.UpdatedAt = r.now().UTC()

	if err := r.writeBack(ctx, rec, tbl, index); err != nil {
		return nil, err
	}

	services.RecordAudit(r.audit, ctx, services.AuditEntry{
		Action:   "account.update_settings",
		Resource: rec.ID,
		Result:   "success",
		Metadata: map[string]any{"keys": patchKeys(patch)},
	})

	return rec, nil
}

// Deactivate flips the account inactive. Accounts are never hard-deleted.
func (r *Registry) Deactivate(ctx context.Context, id string) (*Record, error) {
	rec, tbl, index, err := r.load(ctx, id)
	if err != nil {
		return nil, err
	}

	if rec.Active {
		rec.Active = false
		rec.UpdatedAt = r.now().UTC()
		if err := r.writeBack(ctx, rec, tbl, index); err != nil {
			return nil, err
		}
	}

	services.RecordAudit(r.audit, ctx, services.AuditEntry{
		Action:   "account.deactivate",
		Resource: rec.ID,
		Result:   "success",
	})

	return rec, nil
}

func (r *Registry) load(ctx context.Context, id string) (*Record, *sheets.Table, int, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, nil, 0, apperrors.NewBadRequest("account id is required")
	}

	tbl, err := r.table(ctx)
	if err != nil {
		return nil, nil, 0, err
	}

	row, index, found := tbl.Lookup(FieldID, id)
	if !found {
		return nil, nil, 0, ErrAccountNotFound
	}

	rec, err := recordFromRow(tbl, row)
	if err != nil {
		return nil, nil, 0, apperrors.Wrap(err, "failed to load account")
	}
	return rec, tbl, index, nil
}

func (r *Registry) writeBack(ctx context.Context, rec *Record, tbl *sheets.Table, index int) error {
	row, err := rec.toRow(tbl)
	if err != nil {
		return err
	}
	if err := r.rows.UpdateRow(ctx, r.sheet, index, row); err != nil {
		return apperrors.Wrap(err, "failed to update account")
	}

	r.cache.Invalidate(ctx, rec.ID, rec.Email)
	return nil
}

func (r *Registry) table(ctx context.Context) (*sheets.Table, error) {
	rows, err := r.rows.ReadRows(ctx, r.sheet)
	if err != nil {
		return nil, apperrors.Wrap(err, "account store unavailable")
	}
	if len(rows) == 0 {
		// Bootstrap the header row on first use.
		if err := r.rows.AppendRow(ctx, r.sheet, registryHeader); err != nil {
			return nil, apperrors.Wrap(err, "account store unavailable")
		}
		rows = [][]string{registryHeader}
	}
	return sheets.NewTable(rows)
}

func patchKeys(patch map[string]any) []string {
	keys := make([]string, 0, len(patch))
	for key := range patch {
		keys = append(keys, key)
	}
	return keys
}
