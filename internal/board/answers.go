package board

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/classpad/answerboard/internal/cache"
	"github.com/classpad/answerboard/internal/sheets"
	apperrors "github.com/classpad/answerboard/pkg/errors"
	"github.com/classpad/answerboard/pkg/logger"
	"github.com/classpad/answerboard/pkg/validator"
)

// Sheet field names for the answers sheet.
const (
	fieldAnswerID    = "answerId"
	fieldBoardID     = "boardId"
	fieldAuthor      = "author"
	fieldText        = "text"
	fieldReactions   = "reactions"
	fieldHighlighted = "highlighted"
	fieldCreatedAt   = "createdAt"
)

var answersHeader = []string{
	fieldAnswerID, fieldBoardID, fieldAuthor, fieldText,
	fieldReactions, fieldHighlighted, fieldCreatedAt,
}

// ErrAnswerNotFound indicates the requested answer row does not exist.
var ErrAnswerNotFound = apperrors.New("ANSWER_NOT_FOUND", "Answer not found", 404)

// Answer is one submitted response on a board.
type Answer struct {
	ID          string    `json:"answer_id"`
	BoardID     string    `json:"board_id"`
	Author      string    `json:"author"`
	Text        string    `json:"text"`
	Reactions   int       `json:"reactions"`
	Highlighted bool      `json:"highlighted"`
	CreatedAt   time.Time `json:"created_at"`
}

// SubmitInput describes a new answer submission.
type SubmitInput struct {
	BoardID string `json:"board_id" validate:"required"`
	Author  string `json:"author" validate:"max=80"`
	Text    string `json:"text" validate:"required"`
}

// AnswerService manages the answer rows backing the public board. Board
// listings are served through the fast cache layer because the public page
// polls aggressively; every write invalidates the board's listing entry.
type AnswerService struct {
	rows      sheets.RowStore
	sheet     string
	cache     *cache.Tiered
	log       *zap.Logger
	maxLength int
	now       func() time.Time
}

// NewAnswerService constructs an AnswerService.
func NewAnswerService(rows sheets.RowStore, sheet string, tiered *cache.Tiered, maxLength int) (*AnswerService, error) {
	if rows == nil {
		return nil, errors.New("board: row store is required")
	}
	if strings.TrimSpace(sheet) == "" {
		return nil, errors.New("board: sheet name is required")
	}
	if tiered == nil {
		return nil, errors.New("board: tiered cache is required")
	}
	if maxLength <= 0 {
		maxLength = 500
	}

	return &AnswerService{
		rows:      rows,
		sheet:     sheet,
		cache:     tiered,
		log:       logger.WithModule("board"),
		maxLength: maxLength,
		now:       time.Now,
	}, nil
}

// Submit validates and appends a new answer.
func (s *AnswerService) Submit(ctx context.Context, input SubmitInput) (*Answer, error) {
	if err := validator.ValidateStruct(input); err != nil {
		return nil, apperrors.NewBadRequest(err.Error())
	}

	text := strings.TrimSpace(input.Text)
	if text == "" {
		return nil, apperrors.NewBadRequest("text is required")
	}
	if len([]rune(text)) > s.maxLength {
		return nil, apperrors.NewBadRequest(fmt.Sprintf("text exceeds %d characters", s.maxLength))
	}

	author := strings.TrimSpace(input.Author)
	if author == "" {
		author = "anonymous"
	}

	answer := &Answer{
		ID:        uuid.NewString(),
		BoardID:   strings.TrimSpace(input.BoardID),
		Author:    author,
		Text:      text,
		CreatedAt: s.now().UTC(),
	}

	tbl, err := s.table(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.rows.AppendRow(ctx, s.sheet, answerToRow(tbl, answer)); err != nil {
		return nil, apperrors.Wrap(err, "failed to submit answer")
	}

	s.invalidateBoard(ctx, answer.BoardID)
	return answer, nil
}

// List returns a board's answers, newest first. The listing is cached on the
// fast layer; a cache failure degrades to a store read.
func (s *AnswerService) List(ctx context.Context, boardID string) ([]Answer, error) {
	boardID = strings.TrimSpace(boardID)
	if boardID == "" {
		return nil, apperrors.NewBadRequest("board id is required")
	}

	key := boardListKey(boardID)
	if data, found := s.cache.Get(ctx, cache.LayerFast, key); found {
		var answers []Answer
		if err := json.Unmarshal(data, &answers); err == nil {
			return answers, nil
		}
		s.log.Warn("discarding undecodable board listing", zap.String("board_id", boardID))
	}

	tbl, err := s.table(ctx)
	if err != nil {
		return nil, err
	}

	answers := make([]Answer, 0, tbl.Len())
	for i := 1; i <= tbl.Len(); i++ {
		row, _ := tbl.Row(i)
		answer, err := answerFromRow(tbl, row)
		if err != nil {
			s.log.Warn("skipping malformed answer row", zap.Int("row", i), zap.Error(err))
			continue
		}
		if answer.BoardID == boardID {
			answers = append(answers, *answer)
		}
	}

	// Newest first for the public board.
	for i, j := 0, len(answers)-1; i < j; i, j = i+1, j-1 {
		answers[i], answers[j] = answers[j], answers[i]
	}

	if payload, err := json.Marshal(answers); err == nil {
		s.cache.Set(ctx, cache.LayerFast, key, payload)
	}

	return answers, nil
}

// React increments the reaction counter of an answer.
func (s *AnswerService) React(ctx context.Context, answerID string) (*Answer, error) {
	return s.mutate(ctx, answerID, func(answer *Answer) {
		answer.Reactions++
	})
}

// Highlight toggles the highlighted flag; admin-only at the HTTP layer.
func (s *AnswerService) Highlight(ctx context.Context, answerID string, on bool) (*Answer, error) {
	return s.mutate(ctx, answerID, func(answer *Answer) {
		answer.Highlighted = on
	})
}

func (s *AnswerService) mutate(ctx context.Context, answerID string, apply func(*Answer)) (*Answer, error) {
	answerID = strings.TrimSpace(answerID)
	if answerID == "" {
		return nil, apperrors.NewBadRequest("answer id is required")
	}

	tbl, err := s.table(ctx)
	if err != nil {
		return nil, err
	}

	row, index, found := tbl.Lookup(fieldAnswerID, answerID)
	if !found {
		return nil, ErrAnswerNotFound
	}

	answer, err := answerFromRow(tbl, row)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to load answer")
	}

	apply(answer)

	if err := s.rows.UpdateRow(ctx, s.sheet, index, answerToRow(tbl, answer)); err != nil {
		return nil, apperrors.Wrap(err, "failed to update answer")
	}

	s.invalidateBoard(ctx, answer.BoardID)
	return answer, nil
}

func (s *AnswerService) invalidateBoard(ctx context.Context, boardID string) {
	s.cache.Invalidate(ctx, boardListKey(boardID), "")
}

func (s *AnswerService) table(ctx context.Context) (*sheets.Table, error) {
	rows, err := s.rows.ReadRows(ctx, s.sheet)
	if err != nil {
		return nil, apperrors.Wrap(err, "answer store unavailable")
	}
	if len(rows) == 0 {
		if err := s.rows.AppendRow(ctx, s.sheet, answersHeader); err != nil {
			return nil, apperrors.Wrap(err, "answer store unavailable")
		}
		rows = [][]string{answersHeader}
	}
	return sheets.NewTable(rows)
}

func boardListKey(boardID string) string {
	return "answers:" + boardID
}

func answerFromRow(tbl *sheets.Table, row []string) (*Answer, error) {
	answer := &Answer{
		ID:      tbl.Value(row, fieldAnswerID),
		BoardID: tbl.Value(row, fieldBoardID),
		Author:  tbl.Value(row, fieldAuthor),
		Text:    tbl.Value(row, fieldText),
	}
	if answer.ID == "" {
		return nil, fmt.Errorf("board: row missing %s", fieldAnswerID)
	}

	if raw := tbl.Value(row, fieldReactions); raw != "" {
		count, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("board: parse %s: %w", fieldReactions, err)
		}
		answer.Reactions = count
	}

	if raw := tbl.Value(row, fieldHighlighted); raw != "" {
		flag, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, fmt.Errorf("board: parse %s: %w", fieldHighlighted, err)
		}
		answer.Highlighted = flag
	}

	if raw := tbl.Value(row, fieldCreatedAt); raw != "" {
		stamp, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return nil, fmt.Errorf("board: parse %s: %w", fieldCreatedAt, err)
		}
		answer.CreatedAt = stamp
	}

	return answer, nil
}

func answerToRow(tbl *sheets.Table, answer *Answer) []string {
	return tbl.Render(map[string]string{
		fieldAnswerID:    answer.ID,
		fieldBoardID:     answer.BoardID,
		fieldAuthor:      answer.Author,
		fieldText:        answer.Text,
		fieldReactions:   strconv.Itoa(answer.Reactions),
		fieldHighlighted: strconv.FormatBool(answer.Highlighted),
		fieldCreatedAt:   answer.CreatedAt.UTC().Format(time.RFC3339),
	})
}
