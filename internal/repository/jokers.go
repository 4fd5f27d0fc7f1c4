package repository

import (
	"context"

	"github.com/gofrs/uuid/v5"

	"github.com/quotidianapp/quotidian/internal/dayutil"
	"github.com/quotidianapp/quotidian/internal/model"
)

// JokerRepository is the token ledger. All mutations are atomic at the
// store; the balance can never go negative.
type JokerRepository interface {
	// GetBalance returns the ledger row, creating a zero row on first read.
	GetBalance(ctx context.Context, userID uuid.UUID) (*model.JokerBalance, error)

	// GrantMonthly adds the monthly grant once per calendar month.
	// Idempotent: a second call within the same month is a no-op.
	GrantMonthly(ctx context.Context, userID uuid.UUID, month dayutil.MonthKey, amount int) error

	// ConsumeForDay decrements the balance by one for a retroactive
	// answer on the given day. The spend is recorded per (user, day):
	// a retry for a day already charged succeeds without a second
	// decrement. Returns errs.ErrInsufficientBalance when the balance
	// is zero and no prior spend exists for the day.
	ConsumeForDay(ctx context.Context, userID uuid.UUID, day dayutil.DayKey) error
}

// StreakRepository computes the consecutive-day streak pair as of today.
type StreakRepository interface {
	// Get returns the visual and real streaks ending at today (or
	// yesterday when today is not yet answered).
	Get(ctx context.Context, userID uuid.UUID, today dayutil.DayKey) (model.StreakPair, error)
}
