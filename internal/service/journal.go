package service

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/gofrs/uuid/v5"

	"github.com/quotidianapp/quotidian/internal/calendar"
	"github.com/quotidianapp/quotidian/internal/dayutil"
	"github.com/quotidianapp/quotidian/internal/errs"
	"github.com/quotidianapp/quotidian/internal/model"
	"github.com/quotidianapp/quotidian/internal/repository"
)

// MaxAnswerLen bounds answer text, in runes.
const MaxAnswerLen = 280

// JournalService covers the live "today" flow: fetching today's
// question and submitting or editing today's answer.
type JournalService interface {
	// TodayQuestion returns the question published for the current day.
	TodayQuestion(ctx context.Context, lang string, now time.Time) (*model.Question, error)
	// SubmitToday writes today's on-time answer. A second call the same
	// day replaces the text (an edit).
	SubmitToday(ctx context.Context, userID uuid.UUID, lang, text string, now time.Time) error
}

type JournalServiceImpl struct {
	answers   repository.AnswerRepository
	questions repository.QuestionRepository
	cache     *calendar.MonthCache
}

// NewJournalService constructs JournalService.
func NewJournalService(answers repository.AnswerRepository, questions repository.QuestionRepository, cache *calendar.MonthCache) *JournalServiceImpl {
	return &JournalServiceImpl{answers: answers, questions: questions, cache: cache}
}

// TodayQuestion returns the question for the local current day.
func (s *JournalServiceImpl) TodayQuestion(ctx context.Context, lang string, now time.Time) (*model.Question, error) {
	return s.questions.Get(ctx, dayutil.FromTime(now), lang)
}

// SubmitToday validates and writes today's answer, then applies the
// optimistic cache write so the calendar reflects it before a refetch.
func (s *JournalServiceImpl) SubmitToday(ctx context.Context, userID uuid.UUID, lang, text string, now time.Time) error {
	if userID == uuid.Nil {
		return fmt.Errorf("%w: empty userID", errs.ErrValidation)
	}
	text, err := normalizeAnswerText(text)
	if err != nil {
		return err
	}

	today := dayutil.FromTime(now)
	if err := s.answers.Upsert(ctx, userID, today, text, false); err != nil {
		return err
	}

	entry := model.CalendarEntry{AnswerText: text}
	// Question text is a read-path nicety; a miss degrades to empty.
	if q, qerr := s.questions.Get(ctx, today, lang); qerr == nil {
		entry.QuestionText = q.Text
	}
	s.cache.SetAnswerForDay(userID, today, lang, entry)
	return nil
}

// normalizeAnswerText trims and bounds answer text.
func normalizeAnswerText(text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", fmt.Errorf("%w: empty answer text", errs.ErrValidation)
	}
	if n := utf8.RuneCountInString(text); n > MaxAnswerLen {
		return "", fmt.Errorf("%w: answer too long (%d > %d)", errs.ErrValidation, n, MaxAnswerLen)
	}
	return text, nil
}
