package api

import (
	"github.com/gin-gonic/gin"

	"github.com/classpad/answerboard/internal/handlers"
)

func registerAccountRoutes(r *gin.Engine, deps Dependencies, requireAuth, requireAdmin gin.HandlerFunc) error {
	handler, err := handlers.NewAccountsHandler(deps.Lookup, deps.Registry)
	if err != nil {
		return err
	}

	accounts := r.Group("/api/accounts", requireAuth, requireAdmin)
	{
		accounts.POST("", handler.Register)
		accounts.GET("/by-email/:email", handler.GetByEmail)
		accounts.GET("/:id", handler.GetByID)
		accounts.GET("/:id/fresh", handler.GetByIDFresh)
		accounts.GET("/:id/extended", handler.GetByIDExtended)
		accounts.GET("/:id/secure-info", handler.SecureInfo)
		accounts.PATCH("/:id/settings", handler.UpdateSettings)
		accounts.DELETE("/:id", handler.Deactivate)
	}
	return nil
}
