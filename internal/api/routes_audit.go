package api

import (
	"github.com/gin-gonic/gin"

	"github.com/classpad/answerboard/internal/handlers"
	"github.com/classpad/answerboard/internal/services"
)

func registerAuditRoutes(r *gin.Engine, svc *services.AuditService, requireAuth, requireAdmin gin.HandlerFunc) error {
	handler, err := handlers.NewAuditHandler(svc)
	if err != nil {
		return err
	}

	audit := r.Group("/api/audit", requireAuth, requireAdmin)
	{
		audit.GET("", handler.List)
	}
	return nil
}
