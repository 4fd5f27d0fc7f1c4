package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofrs/uuid/v5"

	"github.com/quotidianapp/quotidian/internal/calendar"
	"github.com/quotidianapp/quotidian/internal/dayutil"
	"github.com/quotidianapp/quotidian/internal/errs"
	"github.com/quotidianapp/quotidian/internal/model"
	"github.com/quotidianapp/quotidian/internal/repository"
)

// DefaultTrailingWindowDays is how far back a missed day stays answerable.
const DefaultTrailingWindowDays = 7

// MissedDayState is the outcome of opening a missed day.
type MissedDayState string

const (
	// MissedDayEligible: within the window with at least one joker.
	MissedDayEligible MissedDayState = "eligible"
	// MissedDayWindowClosed: outside the trailing window, terminal.
	MissedDayWindowClosed MissedDayState = "window_closed"
	// MissedDayNoJokers: within the window but balance is zero, terminal.
	MissedDayNoJokers MissedDayState = "no_jokers"
)

// MissedDayProspect is what the UI shows when a missed day is opened.
type MissedDayProspect struct {
	State    MissedDayState
	Question *model.Question // set when eligible; nil when the read degraded
	Balance  int
}

// MissedDayFlow governs retroactively answering a day inside the
// trailing window, spending exactly one joker.
type MissedDayFlow interface {
	// Open evaluates eligibility for a missed day. Never spends a joker.
	Open(ctx context.Context, userID uuid.UUID, day dayutil.DayKey, lang string, now time.Time) (MissedDayProspect, error)
	// Submit spends one joker and writes the answer. A retry after a
	// failed answer write does not charge a second joker.
	Submit(ctx context.Context, userID uuid.UUID, day dayutil.DayKey, lang, text string, now time.Time) error
}

type MissedDayFlowImpl struct {
	answers    repository.AnswerRepository
	questions  repository.QuestionRepository
	jokers     repository.JokerRepository
	cache      *calendar.MonthCache
	windowDays int
}

// NewMissedDayFlow constructs the flow with the configured window size.
func NewMissedDayFlow(
	answers repository.AnswerRepository,
	questions repository.QuestionRepository,
	jokers repository.JokerRepository,
	cache *calendar.MonthCache,
	windowDays int,
) *MissedDayFlowImpl {
	if windowDays <= 0 {
		windowDays = DefaultTrailingWindowDays
	}
	return &MissedDayFlowImpl{
		answers:    answers,
		questions:  questions,
		jokers:     jokers,
		cache:      cache,
		windowDays: windowDays,
	}
}

// Open computes the prospect for a tapped missed day.
func (f *MissedDayFlowImpl) Open(ctx context.Context, userID uuid.UUID, day dayutil.DayKey, lang string, now time.Time) (MissedDayProspect, error) {
	if userID == uuid.Nil {
		return MissedDayProspect{}, fmt.Errorf("%w: empty userID", errs.ErrValidation)
	}
	today := dayutil.FromTime(now)
	if !day.Before(today) {
		return MissedDayProspect{}, fmt.Errorf("%w: %s is not a missed day", errs.ErrValidation, day)
	}
	if !dayutil.WithinTrailingWindow(day, today, f.windowDays) {
		return MissedDayProspect{State: MissedDayWindowClosed}, nil
	}
	if err := f.ensureUnanswered(ctx, userID, day); err != nil {
		return MissedDayProspect{}, err
	}

	bal, err := f.jokers.GetBalance(ctx, userID)
	if err != nil {
		return MissedDayProspect{}, err
	}
	if bal.Balance == 0 {
		return MissedDayProspect{State: MissedDayNoJokers}, nil
	}

	p := MissedDayProspect{State: MissedDayEligible, Balance: bal.Balance}
	// Prefetch failure degrades to no question text, not a blocked flow.
	if q, qerr := f.questions.Get(ctx, day, lang); qerr == nil {
		p.Question = q
	}
	return p, nil
}

// Submit runs the consume-then-write sequence. The joker charge is
// keyed by day at the ledger, so this is fail-forward: if the answer
// write fails after consumption the joker stays spent, and the retry
// reaches the write again without a second charge.
func (f *MissedDayFlowImpl) Submit(ctx context.Context, userID uuid.UUID, day dayutil.DayKey, lang, text string, now time.Time) error {
	if userID == uuid.Nil {
		return fmt.Errorf("%w: empty userID", errs.ErrValidation)
	}
	text, err := normalizeAnswerText(text)
	if err != nil {
		return err
	}
	today := dayutil.FromTime(now)
	if !day.Before(today) {
		return fmt.Errorf("%w: %s is not a missed day", errs.ErrValidation, day)
	}
	if !dayutil.WithinTrailingWindow(day, today, f.windowDays) {
		return errs.ErrWindowClosed
	}
	if err := f.ensureUnanswered(ctx, userID, day); err != nil {
		return err
	}

	if err := f.jokers.ConsumeForDay(ctx, userID, day); err != nil {
		return err
	}
	if err := f.answers.Upsert(ctx, userID, day, text, true); err != nil {
		return fmt.Errorf("answer write after joker spend: %w", err)
	}

	entry := model.CalendarEntry{AnswerText: text, IsJoker: true}
	if q, qerr := f.questions.Get(ctx, day, lang); qerr == nil {
		entry.QuestionText = q.Text
	}
	f.cache.SetAnswerForDay(userID, day, lang, entry)
	return nil
}

// ensureUnanswered rejects days that already carry an answer; only a
// truly missed day may enter the joker path. A failed answer write
// leaves no row, so the fail-forward retry still passes this gate.
func (f *MissedDayFlowImpl) ensureUnanswered(ctx context.Context, userID uuid.UUID, day dayutil.DayKey) error {
	_, err := f.answers.Get(ctx, userID, day)
	switch {
	case err == nil:
		return fmt.Errorf("%w: %s is already answered", errs.ErrValidation, day)
	case errors.Is(err, errs.ErrNotFound):
		return nil
	default:
		return err
	}
}
