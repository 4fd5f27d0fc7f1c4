package service

import (
	"context"
	"fmt"
	"time"

	"github.com/gofrs/uuid/v5"

	"github.com/quotidianapp/quotidian/internal/dayutil"
	"github.com/quotidianapp/quotidian/internal/errs"
	"github.com/quotidianapp/quotidian/internal/flags"
	"github.com/quotidianapp/quotidian/internal/model"
	"github.com/quotidianapp/quotidian/internal/repository"
)

// StreakStatus is the streak pair plus an optional one-time milestone.
type StreakStatus struct {
	Visual    int
	Real      int
	Milestone int // 7, 30 or 100 when a celebration is due; 0 otherwise
}

// StreakService interprets the store-computed streak pair and fires
// milestone celebrations exactly once per crossing.
type StreakService interface {
	Current(ctx context.Context, userID uuid.UUID, now time.Time) (StreakStatus, error)
}

type StreakServiceImpl struct {
	streaks repository.StreakRepository
	shown   flags.Store
}

// NewStreakService constructs StreakService.
func NewStreakService(streaks repository.StreakRepository, shown flags.Store) *StreakServiceImpl {
	return &StreakServiceImpl{streaks: streaks, shown: shown}
}

// Current returns the streak pair as of now. The milestone-trigger
// value is max(visual, real); a celebration fires only on strict
// equality with a milestone, and at most once per milestone per day
// (guarded by the durable shown flag), so re-renders within the same
// day stay quiet.
func (s *StreakServiceImpl) Current(ctx context.Context, userID uuid.UUID, now time.Time) (StreakStatus, error) {
	if userID == uuid.Nil {
		return StreakStatus{}, fmt.Errorf("%w: empty userID", errs.ErrValidation)
	}
	today := dayutil.FromTime(now)
	pair, err := s.streaks.Get(ctx, userID, today)
	if err != nil {
		return StreakStatus{}, err
	}

	st := StreakStatus{Visual: pair.Visual, Real: pair.Real}
	trigger := pair.Visual
	if pair.Real > trigger {
		trigger = pair.Real
	}
	for _, m := range model.StreakMilestones {
		if trigger != m {
			continue
		}
		key := fmt.Sprintf("milestone:%s:%d:%s", userID, m, today)
		first, ferr := s.shown.MarkShown(ctx, key)
		if ferr != nil {
			// The streak itself is still valid; skip the celebration.
			return st, nil
		}
		if first {
			st.Milestone = m
		}
	}
	return st, nil
}
