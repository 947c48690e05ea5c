package api

import (
	"github.com/gin-gonic/gin"

	"github.com/classpad/answerboard/internal/handlers"
)

func registerAuthRoutes(r *gin.Engine, handler *handlers.AuthHandler, requireAuth gin.HandlerFunc) {
	auth := r.Group("/api/auth")
	{
		auth.POST("/login", handler.Login)
		auth.GET("/me", requireAuth, handler.Me)
	}
}
