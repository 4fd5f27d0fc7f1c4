// Package calendar maintains the per-month answer cache and classifies
// calendar days for rendering.
package calendar

import (
	"context"
	"sync"

	"github.com/gofrs/uuid/v5"

	"github.com/quotidianapp/quotidian/internal/dayutil"
	"github.com/quotidianapp/quotidian/internal/model"
	"github.com/quotidianapp/quotidian/internal/repository"
)

// MonthCache reconciles store state into per-month day maps. A month,
// once populated, holds exactly the days that have an answer; absent
// days read as missed or future. Months are never evicted: one entry
// per visited month.
//
// Every fetch observes the month's generation before going to the
// store and commits only if the generation has not advanced, so a slow
// stale fetch can never overwrite a newer optimistic write.
type MonthCache struct {
	answers   repository.AnswerRepository
	questions repository.QuestionRepository

	mu     sync.Mutex
	months map[monthKey]*monthState
}

type monthKey struct {
	user  uuid.UUID
	month dayutil.MonthKey
	lang  string
}

type monthState struct {
	gen     uint64
	entries map[dayutil.DayKey]model.CalendarEntry
}

// NewMonthCache constructs an empty cache over the store adapters.
// The cache is owned by whoever constructs it and lives for that
// owner's session; it is safe for concurrent use.
func NewMonthCache(answers repository.AnswerRepository, questions repository.QuestionRepository) *MonthCache {
	return &MonthCache{
		answers:   answers,
		questions: questions,
		months:    make(map[monthKey]*monthState),
	}
}

// GetOrFetch returns the cached month map when present and non-empty,
// otherwise fetches answers and questions for the month and populates
// it. Concurrent fetches for the same month may over-fetch; the cache
// stays consistent because stale completions are dropped.
func (c *MonthCache) GetOrFetch(ctx context.Context, userID uuid.UUID, month dayutil.MonthKey, lang string) (map[dayutil.DayKey]model.CalendarEntry, error) {
	key := monthKey{user: userID, month: month, lang: lang}

	c.mu.Lock()
	st := c.ensure(key)
	if len(st.entries) > 0 {
		out := cloneEntries(st.entries)
		c.mu.Unlock()
		return out, nil
	}
	gen := st.gen
	c.mu.Unlock()

	return c.fetchAndCommit(ctx, key, gen)
}

// Refetch bypasses the cache and replaces the month's map wholesale on
// completion, unless a newer local write has advanced the generation.
func (c *MonthCache) Refetch(ctx context.Context, userID uuid.UUID, month dayutil.MonthKey, lang string) (map[dayutil.DayKey]model.CalendarEntry, error) {
	key := monthKey{user: userID, month: month, lang: lang}

	c.mu.Lock()
	gen := c.ensure(key).gen
	c.mu.Unlock()

	return c.fetchAndCommit(ctx, key, gen)
}

// SetAnswerForDay applies an optimistic local write: a single key in
// the month map derived from day, no store round-trip. The month's
// generation advances so in-flight fetches started earlier cannot
// clobber the write.
func (c *MonthCache) SetAnswerForDay(userID uuid.UUID, day dayutil.DayKey, lang string, entry model.CalendarEntry) {
	key := monthKey{user: userID, month: day.Month(), lang: lang}

	c.mu.Lock()
	defer c.mu.Unlock()
	st := c.ensure(key)
	st.gen++
	if st.entries == nil {
		st.entries = make(map[dayutil.DayKey]model.CalendarEntry)
	}
	st.entries[day] = entry
}

func (c *MonthCache) ensure(key monthKey) *monthState {
	st, ok := c.months[key]
	if !ok {
		st = &monthState{}
		c.months[key] = st
	}
	return st
}

func (c *MonthCache) fetchAndCommit(ctx context.Context, key monthKey, gen uint64) (map[dayutil.DayKey]model.CalendarEntry, error) {
	fetched, err := c.fetchMonth(ctx, key)
	if err != nil {
		// Not cached: the caller retries via Refetch.
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	st := c.ensure(key)
	if st.gen != gen {
		// A local write (or a later fetch) advanced the month; this
		// result is stale and must not be applied.
		return cloneEntries(st.entries), nil
	}
	st.entries = fetched
	return cloneEntries(st.entries), nil
}

// fetchMonth joins answers and questions for the month into entries.
// A missing question text degrades to empty rather than failing the
// whole month.
func (c *MonthCache) fetchMonth(ctx context.Context, key monthKey) (map[dayutil.DayKey]model.CalendarEntry, error) {
	start, end := key.month.Bounds()

	answers, err := c.answers.ListInRange(ctx, key.user, start, end)
	if err != nil {
		return nil, err
	}

	questionText := make(map[dayutil.DayKey]string)
	if qs, qerr := c.questions.ListInRange(ctx, start, end, key.lang); qerr == nil {
		for _, q := range qs {
			questionText[q.Day] = q.Text
		}
	}

	entries := make(map[dayutil.DayKey]model.CalendarEntry, len(answers))
	for _, a := range answers {
		entries[a.Day] = model.CalendarEntry{
			QuestionText: questionText[a.Day],
			AnswerText:   a.Text,
			IsJoker:      a.IsJoker,
		}
	}
	return entries, nil
}

func cloneEntries(in map[dayutil.DayKey]model.CalendarEntry) map[dayutil.DayKey]model.CalendarEntry {
	out := make(map[dayutil.DayKey]model.CalendarEntry, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
