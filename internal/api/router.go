package api

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/classpad/answerboard/internal/accounts"
	"github.com/classpad/answerboard/internal/app"
	iauth "github.com/classpad/answerboard/internal/auth"
	"github.com/classpad/answerboard/internal/board"
	"github.com/classpad/answerboard/internal/handlers"
	"github.com/classpad/answerboard/internal/middleware"
	"github.com/classpad/answerboard/internal/services"
)

// Dependencies carries the wired services the router mounts.
type Dependencies struct {
	Config    *app.Config
	JWT       *iauth.JWTService
	Lookup    *accounts.Lookup
	Registry  *accounts.Registry
	Answers   *board.AnswerService
	Audit     *services.AuditService
	RateStore middleware.RateStore
}

// NewRouter builds the Gin engine, wires middleware and registers all routes.
func NewRouter(deps Dependencies) (*gin.Engine, error) {
	if deps.Config == nil {
		return nil, fmt.Errorf("config must be provided")
	}
	if deps.JWT == nil {
		return nil, fmt.Errorf("jwt service must be provided")
	}
	if deps.Lookup == nil || deps.Registry == nil {
		return nil, fmt.Errorf("account services must be provided")
	}
	if deps.Answers == nil {
		return nil, fmt.Errorf("answer service must be provided")
	}

	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.Logger())
	r.Use(middleware.Metrics())

	r.GET("/health", handlers.Health())
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	authHandler, err := handlers.NewAuthHandler(deps.JWT, handlers.AdminCredentials{
		Email:        deps.Config.Auth.Admin.Email,
		PasswordHash: deps.Config.Auth.Admin.PasswordHash,
	})
	if err != nil {
		return nil, err
	}

	requireAuth := middleware.Auth(deps.JWT)
	requireAdmin := middleware.RequireAdmin()

	registerAuthRoutes(r, authHandler, requireAuth)

	if err := registerBoardRoutes(r, deps, requireAuth, requireAdmin); err != nil {
		return nil, err
	}

	if err := registerAccountRoutes(r, deps, requireAuth, requireAdmin); err != nil {
		return nil, err
	}

	if deps.Audit != nil {
		if err := registerAuditRoutes(r, deps.Audit, requireAuth, requireAdmin); err != nil {
			return nil, err
		}
	}

	r.NoRoute(middleware.NotFoundHandler)

	return r, nil
}
