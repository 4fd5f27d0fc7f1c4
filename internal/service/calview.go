package service

import (
	"context"
	"fmt"
	"time"

	"github.com/gofrs/uuid/v5"

	"github.com/quotidianapp/quotidian/internal/calendar"
	"github.com/quotidianapp/quotidian/internal/dayutil"
	"github.com/quotidianapp/quotidian/internal/errs"
	"github.com/quotidianapp/quotidian/internal/model"
)

// DayCell is one rendered calendar day.
type DayCell struct {
	Day   dayutil.DayKey
	State model.CellState
	Entry *model.CalendarEntry // nil when no answer exists for the day
}

// CalendarViewService assembles a month of classified cells from the
// reconciliation cache.
type CalendarViewService interface {
	// Month returns every day of the month in order, classified
	// against the current day. refresh forces a store refetch.
	Month(ctx context.Context, userID uuid.UUID, month dayutil.MonthKey, lang string, refresh bool, now time.Time) ([]DayCell, error)
}

type CalendarViewServiceImpl struct {
	cache *calendar.MonthCache
}

// NewCalendarViewService constructs CalendarViewService.
func NewCalendarViewService(cache *calendar.MonthCache) *CalendarViewServiceImpl {
	return &CalendarViewServiceImpl{cache: cache}
}

// Month builds the cell list for one month.
func (s *CalendarViewServiceImpl) Month(ctx context.Context, userID uuid.UUID, month dayutil.MonthKey, lang string, refresh bool, now time.Time) ([]DayCell, error) {
	if userID == uuid.Nil {
		return nil, fmt.Errorf("%w: empty userID", errs.ErrValidation)
	}

	var (
		entries map[dayutil.DayKey]model.CalendarEntry
		err     error
	)
	if refresh {
		entries, err = s.cache.Refetch(ctx, userID, month, lang)
	} else {
		entries, err = s.cache.GetOrFetch(ctx, userID, month, lang)
	}
	if err != nil {
		return nil, err
	}

	today := dayutil.FromTime(now)
	start, end := month.Bounds()

	var cells []DayCell
	for day := start; !day.After(end); day = day.AddDays(1) {
		cell := DayCell{Day: day}
		if e, ok := entries[day]; ok {
			ec := e
			cell.Entry = &ec
		}
		cell.State = calendar.Classify(day, today, cell.Entry)
		cells = append(cells, cell)
	}
	return cells, nil
}
