package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func newTestJWT(t *testing.T, clock func() time.Time) *JWTService {
	t.Helper()

	svc, err := NewJWTService(JWTConfig{
		Secret:         "test-secret",
		Issuer:         "answerboard",
		AccessTokenTTL: time.Minute,
		Clock:          clock,
	})
	require.NoError(t, err)
	return svc
}

func TestGenerateAndValidateToken(t *testing.T) {
	svc := newTestJWT(t, nil)

	token, err := svc.GenerateAccessToken(AccessTokenInput{Email: "Admin@X.com", Admin: true})
	require.NoError(t, err)

	claims, err := svc.ValidateAccessToken(token)
	require.NoError(t, err)
	require.Equal(t, "admin@x.com", claims.Email)
	require.True(t, claims.Admin)
}

func TestValidateRejectsExpiredToken(t *testing.T) {
	current := time.Now()
	svc := newTestJWT(t, func() time.Time { return current })

	token, err := svc.GenerateAccessToken(AccessTokenInput{Email: "a@x.com"})
	require.NoError(t, err)

	current = current.Add(2 * time.Minute)
	_, err = svc.ValidateAccessToken(token)
	require.Error(t, err)
}

func TestValidateRejectsWrongSecret(t *testing.T) {
	svc := newTestJWT(t, nil)

	other, err := NewJWTService(JWTConfig{Secret: "other-secret", Issuer: "answerboard"})
	require.NoError(t, err)

	token, err := other.GenerateAccessToken(AccessTokenInput{Email: "a@x.com"})
	require.NoError(t, err)

	_, err = svc.ValidateAccessToken(token)
	require.Error(t, err)
}

func TestGenerateRequiresEmail(t *testing.T) {
	svc := newTestJWT(t, nil)
	_, err := svc.GenerateAccessToken(AccessTokenInput{})
	require.Error(t, err)
}
