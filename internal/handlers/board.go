package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/classpad/answerboard/internal/board"
	apperrors "github.com/classpad/answerboard/pkg/errors"
	"github.com/classpad/answerboard/pkg/response"
)

// BoardHandler serves the public answer board endpoints.
type BoardHandler struct {
	answers *board.AnswerService
}

// NewBoardHandler wires the handler to the answer service.
func NewBoardHandler(answers *board.AnswerService) (*BoardHandler, error) {
	if answers == nil {
		return nil, apperrors.New("BOARD_HANDLER_INVALID", "answer service is required", http.StatusInternalServerError)
	}
	return &BoardHandler{answers: answers}, nil
}

// GET /api/boards/:boardId/answers
func (h *BoardHandler) List(c *gin.Context) {
	boardID := strings.TrimSpace(c.Param("boardId"))
	if boardID == "" {
		response.Error(c, apperrors.ErrBadRequest)
		return
	}

	answers, err := h.answers.List(requestContext(c), boardID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, answers)
}

// POST /api/boards/:boardId/answers
func (h *BoardHandler) Submit(c *gin.Context) {
	var input board.SubmitInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, apperrors.ErrBadRequest)
		return
	}
	input.BoardID = strings.TrimSpace(c.Param("boardId"))

	answer, err := h.answers.Submit(requestContext(c), input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, answer)
}

// POST /api/answers/:id/reactions
func (h *BoardHandler) React(c *gin.Context) {
	answer, err := h.answers.React(requestContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, answer)
}

type highlightRequest struct {
	Highlighted bool `json:"highlighted"`
}

// PUT /api/answers/:id/highlight
func (h *BoardHandler) Highlight(c *gin.Context) {
	var req highlightRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperrors.ErrBadRequest)
		return
	}

	answer, err := h.answers.Highlight(requestContext(c), c.Param("id"), req.Highlighted)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, answer)
}
