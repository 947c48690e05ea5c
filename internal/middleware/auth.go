package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/classpad/answerboard/internal/accounts"
	iauth "github.com/classpad/answerboard/internal/auth"
	"github.com/classpad/answerboard/pkg/errors"
	"github.com/classpad/answerboard/pkg/response"
)

const (
	CtxClaimsKey   = "authClaims"
	CtxIdentityKey = "identity"
)

// Auth enforces JWT authentication using the supplied JWT service and places
// the caller identity into the gin context for downstream handlers.
func Auth(jwt *iauth.JWTService) gin.HandlerFunc {
	return func(c *gin.Context) {
		authz := c.GetHeader("Authorization")
		if len(authz) < 8 || !strings.EqualFold(authz[:7], "Bearer ") {
			response.Error(c, errors.ErrUnauthorized)
			c.Abort()
			return
		}

		token := strings.TrimSpace(authz[7:])
		claims, err := jwt.ValidateAccessToken(token)
		if err != nil {
			// Normalise all validation failures to 401
			c.Header("WWW-Authenticate", "Bearer")
			response.Error(c, errors.ErrUnauthorized)
			c.Abort()
			return
		}

		c.Set(CtxClaimsKey, claims)
		c.Set(CtxIdentityKey, accounts.Identity{Email: claims.Email, Admin: claims.Admin})

		c.Next()
	}
}

// RequireAdmin rejects authenticated callers that lack the admin flag. It must
// run after Auth.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := IdentityFrom(c)
		if !ok || !identity.Admin {
			response.Error(c, errors.ErrForbidden)
			c.Abort()
			return
		}
		c.Next()
	}
}

// IdentityFrom extracts the caller identity stored by Auth.
func IdentityFrom(c *gin.Context) (accounts.Identity, bool) {
	value, ok := c.Get(CtxIdentityKey)
	if !ok {
		return accounts.Identity{}, false
	}
	identity, ok := value.(accounts.Identity)
	return identity, ok
}
