package accounts

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/classpad/answerboard/internal/sheets"
)

// Sheet field names for the account registry. These header names are the
// contract between the lookup core and the remote tabular store.
const (
	FieldID        = "userId"
	FieldEmail     = "adminEmail"
	fieldActive    = "isActive"
	fieldSettings  = "settings"
	fieldUpdatedAt = "updatedAt"
)

// Record is one tenant account. The remote tabular store is the source of
// truth; cached copies are derived, possibly-stale projections. IDs are
// immutable once created and accounts are deactivated rather than deleted.
type Record struct {
	ID        string         `json:"userId"`
	Email     string         `json:"adminEmail"`
	Active    bool           `json:"isActive"`
	Settings  map[string]any `json:"settings"`
	UpdatedAt time.Time      `json:"updatedAt"`
}

// Clone returns a deep copy so cached records cannot be mutated by callers.
func (r *Record) Clone() *Record {
	if r == nil {
		return nil
	}
	cpy := *r
	if r.Settings != nil {
		cpy.Settings = make(map[string]any, len(r.Settings))
		for k, v := range r.Settings {
			cpy.Settings[k] = v
		}
	}
	return &cpy
}

func recordFromRow(tbl *sheets.Table, row []string) (*Record, error) {
	rec := &Record{
		ID:    tbl.Value(row, FieldID),
		Email: tbl.Value(row, FieldEmail),
	}
	if rec.ID == "" {
		return nil, fmt.Errorf("accounts: row missing %s", FieldID)
	}

	if active := tbl.Value(row, fieldActive); active != "" {
		parsed, err := strconv.ParseBool(active)
		if err != nil {
			return nil, fmt.Errorf("accounts: parse %s: %w", fieldActive, err)
		}
		rec.Active = parsed
	}

	if blob := tbl.Value(row, fieldSettings); blob != "" {
		if err := json.Unmarshal([]byte(blob), &rec.Settings); err != nil {
			return nil, fmt.Errorf("accounts: parse %s: %w", fieldSettings, err)
		}
	}

	if stamp := tbl.Value(row, fieldUpdatedAt); stamp != "" {
		parsed, err := time.Parse(time.RFC3339, stamp)
		if err != nil {
			return nil, fmt.Errorf("accounts: parse %s: %w", fieldUpdatedAt, err)
		}
		rec.UpdatedAt = parsed
	}

	return rec, nil
}

func (r *Record) toRow(tbl *sheets.Table) ([]string, error) {
	settings := r.Settings
	if settings == nil {
		settings = map[string]any{}
	}
	blob, err := json.Marshal(settings)
	if err != nil {
		return nil, fmt.Errorf("accounts: encode %s: %w", fieldSettings, err)
	}

	return tbl.Render(map[string]string{
		FieldID:        r.ID,
		FieldEmail:     r.Email,
		fieldActive:    strconv.FormatBool(r.Active),
		fieldSettings:  string(blob),
		fieldUpdatedAt: r.UpdatedAt.UTC().Format(time.RFC3339),
	}), nil
}

// registryHeader is the header row written when bootstrapping an empty sheet.
var registryHeader = []string{FieldID, FieldEmail, fieldActive, fieldSettings, fieldUpdatedAt}
