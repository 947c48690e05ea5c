package accounts

import "strings"

// Identity is the caller's authenticated identity, resolved from the session
// token by the HTTP layer.
type Identity struct {
	Email string
	Admin bool
}

// Guard enforces the tenant boundary: a caller may only read records they own
// or are permitted to view. It is stateless and never errors; the lookup core
// translates a false result into a fixed, non-leaking security error.
type Guard struct{}

// ValidateTenantBoundary reports whether the viewer may read the record.
func (Guard) ValidateTenantBoundary(viewer Identity, rec *Record) bool {
	if rec == nil {
		return false
	}
	if viewer.Admin {
		return true
	}

	email := strings.TrimSpace(viewer.Email)
	if email == "" {
		return false
	}
	return strings.EqualFold(email, rec.Email)
}
