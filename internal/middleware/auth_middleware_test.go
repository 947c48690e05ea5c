package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	iauth "github.com/classpad/answerboard/internal/auth"
)

func newAuthRouter(t *testing.T, admin bool) (*gin.Engine, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	jwt, err := iauth.NewJWTService(iauth.JWTConfig{Secret: "secret", Issuer: "answerboard"})
	require.NoError(t, err)

	token, err := jwt.GenerateAccessToken(iauth.AccessTokenInput{Email: "a@x.com", Admin: admin})
	require.NoError(t, err)

	router := gin.New()
	router.GET("/me", Auth(jwt), func(c *gin.Context) {
		identity, ok := IdentityFrom(c)
		require.True(t, ok)
		c.JSON(http.StatusOK, gin.H{"email": identity.Email})
	})
	router.GET("/admin", Auth(jwt), RequireAdmin(), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return router, token
}

func TestAuthRejectsMissingHeader(t *testing.T) {
	router, _ := newAuthRouter(t, false)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/me", nil))
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthRejectsInvalidToken(t *testing.T) {
	router, _ := newAuthRouter(t, false)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthAcceptsValidToken(t *testing.T) {
	router, token := newAuthRouter(t, false)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "a@x.com")
}

func TestRequireAdminRejectsNonAdmin(t *testing.T) {
	router, token := newAuthRouter(t, false)

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRequireAdminAllowsAdmin(t *testing.T) {
	router, token := newAuthRouter(t, true)

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusNoContent, rec.Code)
}

func TestRateLimitEnforcesWindow(t *testing.T) {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.GET("/submit", RateLimit(NewMemoryRateStore(), 2, time.Minute), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/submit", nil))
		require.Equal(t, http.StatusOK, rec.Code)
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/submit", nil))
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
}
