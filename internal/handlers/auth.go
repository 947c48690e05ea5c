package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	iauth "github.com/classpad/answerboard/internal/auth"
	"github.com/classpad/answerboard/internal/middleware"
	"github.com/classpad/answerboard/pkg/crypto"
	"github.com/classpad/answerboard/pkg/errors"
	"github.com/classpad/answerboard/pkg/response"
	"github.com/classpad/answerboard/pkg/validator"
)

// AdminCredentials holds the configured admin login.
type AdminCredentials struct {
	Email        string
	PasswordHash string
}

// AuthHandler serves the admin login and identity endpoints.
type AuthHandler struct {
	jwt   *iauth.JWTService
	admin AdminCredentials
}

// NewAuthHandler wires the login surface to the JWT service.
func NewAuthHandler(jwt *iauth.JWTService, admin AdminCredentials) (*AuthHandler, error) {
	if jwt == nil {
		return nil, errors.New("AUTH_HANDLER_INVALID", "jwt service is required", http.StatusInternalServerError)
	}
	return &AuthHandler{jwt: jwt, admin: admin}, nil
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// POST /api/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, errors.ErrBadRequest)
		return
	}
	if err := validator.ValidateStruct(req); err != nil {
		response.Error(c, errors.NewBadRequest(err.Error()))
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if h.admin.Email == "" || !strings.EqualFold(h.admin.Email, email) ||
		!crypto.VerifyPassword(h.admin.PasswordHash, req.Password) {
		response.Error(c, errors.ErrInvalidCredentials)
		return
	}

	token, err := h.jwt.GenerateAccessToken(iauth.AccessTokenInput{Email: email, Admin: true})
	if err != nil {
		response.Error(c, errors.ErrInternalServer.WithInternal(err))
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"access_token": token,
		"token_type":   "Bearer",
	})
}

// GET /api/auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	identity, ok := middleware.IdentityFrom(c)
	if !ok {
		response.Error(c, errors.ErrUnauthorized)
		return
	}
	response.Success(c, http.StatusOK, gin.H{
		"email": identity.Email,
		"admin": identity.Admin,
	})
}
