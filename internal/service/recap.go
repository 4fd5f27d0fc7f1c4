package service

import (
	"context"
	"fmt"
	"time"

	"github.com/gofrs/uuid/v5"

	"github.com/quotidianapp/quotidian/internal/dayutil"
	"github.com/quotidianapp/quotidian/internal/errs"
	"github.com/quotidianapp/quotidian/internal/flags"
	"github.com/quotidianapp/quotidian/internal/repository"
)

// Recap summarizes the previous Monday–Sunday week.
type Recap struct {
	Start    dayutil.DayKey
	End      dayutil.DayKey
	Answered int
	Total    int // answerable days, bounded by account creation
}

// RecapService produces the Monday weekly recap.
type RecapService interface {
	// Weekly returns the recap on Mondays, once per Monday per user;
	// nil on other days or when already shown today.
	Weekly(ctx context.Context, userID uuid.UUID, now time.Time) (*Recap, error)
}

type RecapServiceImpl struct {
	answers repository.AnswerRepository
	users   repository.UserRepository
	shown   flags.Store
}

// NewRecapService constructs RecapService.
func NewRecapService(answers repository.AnswerRepository, users repository.UserRepository, shown flags.Store) *RecapServiceImpl {
	return &RecapServiceImpl{answers: answers, users: users, shown: shown}
}

// Weekly computes "X of Y answered" for the previous week. The shown
// flag is taken only after the recap is fully assembled: a store
// failure leaves the flag unset and a later retry still gets the
// recap. The key is per (user, Monday), so a remounting Today screen
// cannot show it twice on the same day.
func (s *RecapServiceImpl) Weekly(ctx context.Context, userID uuid.UUID, now time.Time) (*Recap, error) {
	if userID == uuid.Nil {
		return nil, fmt.Errorf("%w: empty userID", errs.ErrValidation)
	}
	if !dayutil.IsMonday(now) {
		return nil, nil
	}

	week := dayutil.PreviousWeekRange(now)

	var createdAt time.Time
	if u, uerr := s.users.GetByID(ctx, userID); uerr == nil {
		createdAt = u.CreatedAt
	}
	total := dayutil.AnswerableDaysInRange(week.Start, week.End, createdAt)
	if total == 0 {
		return nil, nil
	}

	answered, err := s.answers.ListInRange(ctx, userID, week.Start, week.End)
	if err != nil {
		return nil, err
	}

	today := dayutil.FromTime(now)
	key := fmt.Sprintf("recap:%s:%s", userID, today)
	first, err := s.shown.MarkShown(ctx, key)
	if err != nil {
		return nil, err
	}
	if !first {
		return nil, nil
	}
	return &Recap{
		Start:    week.Start,
		End:      week.End,
		Answered: len(answered),
		Total:    total,
	}, nil
}
