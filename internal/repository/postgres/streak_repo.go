package postgres

import (
	"context"

	"github.com/gofrs/uuid/v5"

	"github.com/quotidianapp/quotidian/internal/dayutil"
	"github.com/quotidianapp/quotidian/internal/model"
)

// streakLookbackDays bounds the streak scan. A streak longer than this
// is reported capped, which is far beyond any milestone.
const streakLookbackDays = 400

// StreakRepo computes the streak pair from the answers table: one
// ordered scan, then a linear walk over consecutive days.
type StreakRepo struct{ db *DB }

// NewStreakRepo constructs a streak repository.
func NewStreakRepo(db *DB) *StreakRepo { return &StreakRepo{db: db} }

// Get returns the visual and real consecutive-day streaks ending at
// today, or at yesterday when today is not yet answered. The visual
// streak counts any present answer; the real streak counts the
// gap-free on-time suffix of the same run and is zero if the anchor
// day itself was joker-filled.
func (r *StreakRepo) Get(ctx context.Context, userID uuid.UUID, today dayutil.DayKey) (model.StreakPair, error) {
	start := today.AddDays(-streakLookbackDays)
	const q = `
SELECT day, is_joker
FROM answers
WHERE user_id=$1 AND day>=$2 AND day<=$3
ORDER BY day DESC`
	rows, err := r.db.Pool.Query(ctx, q, userID, string(start), string(today))
	if err != nil {
		return model.StreakPair{}, err
	}
	defer rows.Close()

	joker := make(map[dayutil.DayKey]bool)
	for rows.Next() {
		var (
			d string
			j bool
		)
		if err = rows.Scan(&d, &j); err != nil {
			return model.StreakPair{}, err
		}
		joker[dayutil.DayKey(d)] = j
	}
	if err = rows.Err(); err != nil {
		return model.StreakPair{}, err
	}

	anchor := today
	if _, ok := joker[anchor]; !ok {
		anchor = today.AddDays(-1)
	}

	var pair model.StreakPair
	realBroken := false
	for cur := anchor; ; cur = cur.AddDays(-1) {
		j, ok := joker[cur]
		if !ok {
			break
		}
		pair.Visual++
		if j {
			realBroken = true
		}
		if !realBroken {
			pair.Real++
		}
	}
	return pair, nil
}
