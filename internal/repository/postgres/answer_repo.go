package postgres

import (
	"context"
	"errors"

	"github.com/gofrs/uuid/v5"
	"github.com/jackc/pgx/v5"

	"github.com/quotidianapp/quotidian/internal/dayutil"
	"github.com/quotidianapp/quotidian/internal/errs"
	"github.com/quotidianapp/quotidian/internal/model"
)

// AnswerRepo implements AnswerRepository using PostgreSQL.
type AnswerRepo struct{ db *DB }

// NewAnswerRepo constructs an answer repository.
func NewAnswerRepo(db *DB) *AnswerRepo { return &AnswerRepo{db: db} }

// Get returns a single answer by (user, day).
func (r *AnswerRepo) Get(ctx context.Context, userID uuid.UUID, day dayutil.DayKey) (*model.Answer, error) {
	const q = `
SELECT user_id, day, text, is_joker, updated_at
FROM answers WHERE user_id=$1 AND day=$2`
	row := r.db.Pool.QueryRow(ctx, q, userID, string(day))
	var (
		a   model.Answer
		d   string
	)
	if err := row.Scan(&a.UserID, &d, &a.Text, &a.IsJoker, &a.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.ErrNotFound
		}
		return nil, err
	}
	a.Day = dayutil.DayKey(d)
	return &a, nil
}

// Upsert inserts or replaces the answer keyed by (user, day).
func (r *AnswerRepo) Upsert(ctx context.Context, userID uuid.UUID, day dayutil.DayKey, text string, isJoker bool) error {
	const q = `
INSERT INTO answers (user_id, day, text, is_joker, updated_at)
VALUES ($1,$2,$3,$4,now())
ON CONFLICT (user_id, day)
DO UPDATE SET text=EXCLUDED.text, is_joker=EXCLUDED.is_joker, updated_at=now()`
	_, err := r.db.Pool.Exec(ctx, q, userID, string(day), text, isJoker)
	return err
}

// ListInRange returns answers within [start, end] ordered by day.
func (r *AnswerRepo) ListInRange(ctx context.Context, userID uuid.UUID, start, end dayutil.DayKey) ([]model.Answer, error) {
	const q = `
SELECT user_id, day, text, is_joker, updated_at
FROM answers
WHERE user_id=$1 AND day>=$2 AND day<=$3
ORDER BY day ASC`
	rows, err := r.db.Pool.Query(ctx, q, userID, string(start), string(end))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Answer
	for rows.Next() {
		var (
			a model.Answer
			d string
		)
		if err = rows.Scan(&a.UserID, &d, &a.Text, &a.IsJoker, &a.UpdatedAt); err != nil {
			return nil, err
		}
		a.Day = dayutil.DayKey(d)
		out = append(out, a)
	}
	return out, rows.Err()
}
