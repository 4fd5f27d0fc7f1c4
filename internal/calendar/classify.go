package calendar

import (
	"github.com/quotidianapp/quotidian/internal/dayutil"
	"github.com/quotidianapp/quotidian/internal/model"
)

// Classify computes the render state for one calendar day. Today wins
// over everything else (the today affordance must stay editable even
// if an entry already exists); then entry presence wins over date
// comparison.
func Classify(day, today dayutil.DayKey, entry *model.CalendarEntry) model.CellState {
	if day == today {
		return model.CellToday
	}
	if entry != nil {
		if entry.IsJoker {
			return model.CellJoker
		}
		return model.CellAnswered
	}
	if day.Before(today) {
		return model.CellMissed
	}
	return model.CellFuture
}
