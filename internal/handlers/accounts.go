package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/classpad/answerboard/internal/accounts"
	"github.com/classpad/answerboard/internal/middleware"
	apperrors "github.com/classpad/answerboard/pkg/errors"
	"github.com/classpad/answerboard/pkg/response"
	"github.com/classpad/answerboard/pkg/validator"
)

// AccountsHandler exposes the account lookup and registry surfaces to admins.
type AccountsHandler struct {
	lookup   *accounts.Lookup
	registry *accounts.Registry
}

// NewAccountsHandler wires the handler to the lookup core and registry.
func NewAccountsHandler(lookup *accounts.Lookup, registry *accounts.Registry) (*AccountsHandler, error) {
	if lookup == nil || registry == nil {
		return nil, apperrors.New("ACCOUNTS_HANDLER_INVALID", "lookup and registry are required", http.StatusInternalServerError)
	}
	return &AccountsHandler{lookup: lookup, registry: registry}, nil
}

// GET /api/accounts/:id
func (h *AccountsHandler) GetByID(c *gin.Context) {
	rec, err := h.lookup.FindByID(requestContext(c), c.Param("id"))
	h.respondRecord(c, rec, err)
}

// GET /api/accounts/:id/fresh
func (h *AccountsHandler) GetByIDFresh(c *gin.Context) {
	rec, err := h.lookup.FindByIDFresh(requestContext(c), c.Param("id"))
	h.respondRecord(c, rec, err)
}

// GET /api/accounts/:id/extended
func (h *AccountsHandler) GetByIDExtended(c *gin.Context) {
	rec, err := h.lookup.FindByIDExtended(requestContext(c), c.Param("id"))
	h.respondRecord(c, rec, err)
}

// GET /api/accounts/by-email/:email
func (h *AccountsHandler) GetByEmail(c *gin.Context) {
	rec, err := h.lookup.FindByEmail(requestContext(c), c.Param("email"))
	h.respondRecord(c, rec, err)
}

// GET /api/accounts/:id/secure-info
func (h *AccountsHandler) SecureInfo(c *gin.Context) {
	identity, ok := middleware.IdentityFrom(c)
	if !ok {
		response.Error(c, apperrors.ErrUnauthorized)
		return
	}

	rec, err := h.lookup.SecureInfo(requestContext(c), c.Param("id"), identity)
	h.respondRecord(c, rec, err)
}

type registerRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// POST /api/accounts
func (h *AccountsHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperrors.ErrBadRequest)
		return
	}
	if err := validator.ValidateStruct(req); err != nil {
		response.Error(c, apperrors.NewBadRequest(err.Error()))
		return
	}

	rec, err := h.registry.Register(requestContext(c), req.Email)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, rec)
}

type settingsPatchRequest struct {
	Settings map[string]any `json:"settings" validate:"required"`
}

// PATCH /api/accounts/:id/settings
func (h *AccountsHandler) UpdateSettings(c *gin.Context) {
	var req settingsPatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperrors.ErrBadRequest)
		return
	}
	if err := validator.ValidateStruct(req); err != nil {
		response.Error(c, apperrors.NewBadRequest(err.Error()))
		return
	}

	rec, err := h.registry.UpdateSettings(requestContext(c), c.Param("id"), req.Settings)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, rec)
}

// DELETE /api/accounts/:id
func (h *AccountsHandler) Deactivate(c *gin.Context) {
	rec, err := h.registry.Deactivate(requestContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, rec)
}

// respondRecord maps lookup results onto the API envelope: a nil record with
// no error is a 404, a tenant boundary violation keeps its fixed message.
func (h *AccountsHandler) respondRecord(c *gin.Context, rec *accounts.Record, err error) {
	if err != nil {
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) {
			response.Error(c, appErr)
			return
		}
		response.Error(c, apperrors.ErrInternalServer.WithInternal(err))
		return
	}
	if rec == nil {
		response.Error(c, apperrors.ErrNotFound)
		return
	}
	response.Success(c, http.StatusOK, rec)
}
