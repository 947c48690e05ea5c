package api

import (
	"github.com/gin-gonic/gin"

	"github.com/classpad/answerboard/internal/handlers"
	"github.com/classpad/answerboard/internal/middleware"
)

func registerBoardRoutes(r *gin.Engine, deps Dependencies, requireAuth, requireAdmin gin.HandlerFunc) error {
	handler, err := handlers.NewBoardHandler(deps.Answers)
	if err != nil {
		return err
	}

	submitLimit := middleware.RateLimit(
		deps.RateStore,
		deps.Config.Board.SubmitRateLimit,
		deps.Config.Board.SubmitRateWindow,
	)

	boards := r.Group("/api/boards")
	{
		boards.GET("/:boardId/answers", handler.List)
		boards.POST("/:boardId/answers", submitLimit, handler.Submit)
	}

	answers := r.Group("/api/answers")
	{
		answers.POST("/:id/reactions", submitLimit, handler.React)
		answers.PUT("/:id/highlight", requireAuth, requireAdmin, handler.Highlight)
	}
	return nil
}
