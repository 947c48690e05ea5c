package errors

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWithInternalKeepsOriginal(t *testing.T) {
	cause := errors.New("connection reset")
	err := ErrInternalServer.WithInternal(cause)

	require.ErrorIs(t, err, cause)
	require.Equal(t, ErrInternalServer.Code, err.Code)
	require.Contains(t, err.Error(), "connection reset")
}

func TestFromErrorPassesThroughAppErrors(t *testing.T) {
	err := FromError(ErrTenantBoundary)
	require.Same(t, ErrTenantBoundary, err)

	wrapped := FromError(errors.New("boom"))
	require.Equal(t, ErrInternalServer.Code, wrapped.Code)
	require.Equal(t, http.StatusInternalServerError, wrapped.StatusCode)
}

func TestTenantBoundaryMessageIsFixed(t *testing.T) {
	require.Equal(t, "Access denied", ErrTenantBoundary.Message)
	require.Equal(t, http.StatusForbidden, ErrTenantBoundary.StatusCode)
}

func TestNewBadRequest(t *testing.T) {
	err := NewBadRequest("text is required")
	require.Equal(t, ErrBadRequest.Code, err.Code)
	require.Equal(t, "text is required", err.Message)
}
