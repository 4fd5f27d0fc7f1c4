package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/quotidianapp/quotidian/internal/dayutil"
	"github.com/quotidianapp/quotidian/internal/errs"
	"github.com/quotidianapp/quotidian/internal/model"
)

// QuestionRepo implements QuestionRepository using PostgreSQL.
type QuestionRepo struct{ db *DB }

// NewQuestionRepo constructs a question repository.
func NewQuestionRepo(db *DB) *QuestionRepo { return &QuestionRepo{db: db} }

// Get returns the question for one day and language.
func (r *QuestionRepo) Get(ctx context.Context, day dayutil.DayKey, lang string) (*model.Question, error) {
	const q = `
SELECT id, day, lang, text FROM questions WHERE day=$1 AND lang=$2`
	row := r.db.Pool.QueryRow(ctx, q, string(day), lang)
	var (
		out model.Question
		d   string
	)
	if err := row.Scan(&out.ID, &d, &out.Lang, &out.Text); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.ErrNotFound
		}
		return nil, err
	}
	out.Day = dayutil.DayKey(d)
	return &out, nil
}

// ListInRange returns questions within [start, end] for one language ordered by day.
func (r *QuestionRepo) ListInRange(ctx context.Context, start, end dayutil.DayKey, lang string) ([]model.Question, error) {
	const q = `
SELECT id, day, lang, text
FROM questions
WHERE day>=$1 AND day<=$2 AND lang=$3
ORDER BY day ASC`
	rows, err := r.db.Pool.Query(ctx, q, string(start), string(end), lang)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Question
	for rows.Next() {
		var (
			qu model.Question
			d  string
		)
		if err = rows.Scan(&qu.ID, &d, &qu.Lang, &qu.Text); err != nil {
			return nil, err
		}
		qu.Day = dayutil.DayKey(d)
		out = append(out, qu)
	}
	return out, rows.Err()
}
