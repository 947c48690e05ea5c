package accounts

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGuardOwnerMayRead(t *testing.T) {
	var guard Guard
	rec := &Record{ID: "U1", Email: "a@x.com"}

	require.True(t, guard.ValidateTenantBoundary(Identity{Email: "a@x.com"}, rec))
	require.True(t, guard.ValidateTenantBoundary(Identity{Email: "A@X.COM"}, rec))
}

func TestGuardRejectsOtherTenants(t *testing.T) {
	var guard Guard
	rec := &Record{ID: "U1", Email: "a@x.com"}

	require.False(t, guard.ValidateTenantBoundary(Identity{Email: "b@x.com"}, rec))
	require.False(t, guard.ValidateTenantBoundary(Identity{}, rec))
	require.False(t, guard.ValidateTenantBoundary(Identity{Email: "a@x.com"}, nil))
}

func TestGuardAdminBypassesBoundary(t *testing.T) {
	var guard Guard
	rec := &Record{ID: "U1", Email: "a@x.com"}

	require.True(t, guard.ValidateTenantBoundary(Identity{Email: "root@x.com", Admin: true}, rec))
}
