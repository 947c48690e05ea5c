package app

import (
	"strings"

	iauth "github.com/classpad/answerboard/internal/auth"
)

// JWTServiceConfig converts the auth configuration into the auth package representation.
func (c AuthConfig) JWTServiceConfig() iauth.JWTConfig {
	return iauth.JWTConfig{
		Secret:         strings.TrimSpace(c.JWT.Secret),
		Issuer:         strings.TrimSpace(c.JWT.Issuer),
		AccessTokenTTL: c.JWT.TTL,
	}
}
