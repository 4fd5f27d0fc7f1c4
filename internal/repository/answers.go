// Package repository defines storage interfaces implemented by concrete backends.
package repository

import (
	"context"

	"github.com/gofrs/uuid/v5"

	"github.com/quotidianapp/quotidian/internal/dayutil"
	"github.com/quotidianapp/quotidian/internal/model"
)

// AnswerRepository provides access to per-day answers.
type AnswerRepository interface {
	// Get returns the answer for one day, or errs.ErrNotFound.
	Get(ctx context.Context, userID uuid.UUID, day dayutil.DayKey) (*model.Answer, error)

	// Upsert inserts or replaces the answer keyed by (user, day).
	// Never a blind insert: a second write for the same day replaces
	// text and joker flag.
	Upsert(ctx context.Context, userID uuid.UUID, day dayutil.DayKey, text string, isJoker bool) error

	// ListInRange returns answers with start <= day <= end, ordered by day.
	ListInRange(ctx context.Context, userID uuid.UUID, start, end dayutil.DayKey) ([]model.Answer, error)
}

// QuestionRepository provides read-only access to published questions.
type QuestionRepository interface {
	// Get returns the question for one day and language, or errs.ErrNotFound.
	Get(ctx context.Context, day dayutil.DayKey, lang string) (*model.Question, error)

	// ListInRange returns questions with start <= day <= end for one
	// language, ordered by day.
	ListInRange(ctx context.Context, start, end dayutil.DayKey, lang string) ([]model.Question, error)
}
