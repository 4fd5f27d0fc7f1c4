package service

import (
	"context"
	"fmt"
	"time"

	"github.com/gofrs/uuid/v5"

	"github.com/quotidianapp/quotidian/internal/dayutil"
	"github.com/quotidianapp/quotidian/internal/errs"
	"github.com/quotidianapp/quotidian/internal/repository"
)

// DefaultMonthlyGrant is the number of jokers added each calendar month.
const DefaultMonthlyGrant = 2

// JokerService manages the joker token economy.
type JokerService interface {
	// GrantMonthly applies the once-per-month grant. Safe to call on
	// every profile load; correctness does not depend on call count.
	GrantMonthly(ctx context.Context, userID uuid.UUID, now time.Time) error
	// Balance returns the current token count.
	Balance(ctx context.Context, userID uuid.UUID) (int, error)
}

type JokerServiceImpl struct {
	jokers       repository.JokerRepository
	monthlyGrant int
}

// NewJokerService constructs JokerService with the configured grant size.
func NewJokerService(jokers repository.JokerRepository, monthlyGrant int) *JokerServiceImpl {
	if monthlyGrant <= 0 {
		monthlyGrant = DefaultMonthlyGrant
	}
	return &JokerServiceImpl{jokers: jokers, monthlyGrant: monthlyGrant}
}

// GrantMonthly applies the monthly grant for the month containing now.
func (s *JokerServiceImpl) GrantMonthly(ctx context.Context, userID uuid.UUID, now time.Time) error {
	if userID == uuid.Nil {
		return fmt.Errorf("%w: empty userID", errs.ErrValidation)
	}
	return s.jokers.GrantMonthly(ctx, userID, dayutil.MonthFromTime(now), s.monthlyGrant)
}

// Balance reads the current balance from the ledger.
func (s *JokerServiceImpl) Balance(ctx context.Context, userID uuid.UUID) (int, error) {
	if userID == uuid.Nil {
		return 0, fmt.Errorf("%w: empty userID", errs.ErrValidation)
	}
	b, err := s.jokers.GetBalance(ctx, userID)
	if err != nil {
		return 0, err
	}
	return b.Balance, nil
}
