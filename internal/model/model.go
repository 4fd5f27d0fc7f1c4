// Package model defines domain entities used by services and repositories.
package model

import (
	"time"

	"github.com/gofrs/uuid/v5"

	"github.com/quotidianapp/quotidian/internal/dayutil"
)

// User represents an account. The creation time bounds which past days
// count as answerable.
type User struct {
	ID        uuid.UUID // PK
	Username  string    // unique
	PwdHash   []byte    // Argon2id(password, Salt)
	Salt      []byte    // per-user auth salt
	CreatedAt time.Time
}

// Question is the prompt published for one day in one language.
// Immutable once published; read-only to this engine.
type Question struct {
	ID   uuid.UUID
	Day  dayutil.DayKey
	Lang string
	Text string
}

// Answer is a user's response for one day. At most one row per
// (user, day), enforced by the store; writes always go through an
// insert-or-replace keyed by that pair.
type Answer struct {
	UserID    uuid.UUID
	Day       dayutil.DayKey
	Text      string
	IsJoker   bool // submitted after the day closed, paid with a joker
	UpdatedAt time.Time
}

// CalendarEntry is the cache projection of (question, answer) for one
// day, as rendered by a calendar view. Not persisted separately.
type CalendarEntry struct {
	QuestionText string
	AnswerText   string
	IsJoker      bool
}

// JokerBalance is the per-user token ledger state.
type JokerBalance struct {
	UserID         uuid.UUID
	Balance        int              // never negative
	LastGrantMonth dayutil.MonthKey // empty until the first monthly grant
}

// StreakPair is the store-computed pair of consecutive-day streaks.
// Real counts only on-time answers; Visual also counts joker-backed
// days, so Real <= Visual always.
type StreakPair struct {
	Visual int
	Real   int
}

// CellState classifies one calendar day for rendering.
type CellState string

const (
	CellToday    CellState = "today"
	CellAnswered CellState = "answered"
	CellJoker    CellState = "joker"
	CellMissed   CellState = "missed"
	CellFuture   CellState = "future"
)

// Milestones that trigger a one-time streak celebration.
var StreakMilestones = []int{7, 30, 100}
