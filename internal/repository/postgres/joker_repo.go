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

// JokerRepo implements JokerRepository using PostgreSQL. Consumption is
// recorded per (user, day) in joker_spends so a retried submit for the
// same day is never charged twice.
type JokerRepo struct{ db *DB }

// NewJokerRepo constructs a joker ledger repository.
func NewJokerRepo(db *DB) *JokerRepo { return &JokerRepo{db: db} }

// GetBalance returns the ledger row; missing rows read as zero balance.
func (r *JokerRepo) GetBalance(ctx context.Context, userID uuid.UUID) (*model.JokerBalance, error) {
	const q = `SELECT balance, COALESCE(last_grant_month,'') FROM joker_balances WHERE user_id=$1`
	b := model.JokerBalance{UserID: userID}
	var month string
	err := r.db.Pool.QueryRow(ctx, q, userID).Scan(&b.Balance, &month)
	switch {
	case err == nil:
		b.LastGrantMonth = dayutil.MonthKey(month)
		return &b, nil
	case errors.Is(err, pgx.ErrNoRows):
		return &b, nil
	default:
		return nil, err
	}
}

// GrantMonthly applies the monthly grant exactly once per calendar month
// as a single atomic insert-or-bump.
func (r *JokerRepo) GrantMonthly(ctx context.Context, userID uuid.UUID, month dayutil.MonthKey, amount int) error {
	const q = `
INSERT INTO joker_balances (user_id, balance, last_grant_month)
VALUES ($1, $2, $3)
ON CONFLICT (user_id) DO UPDATE
SET balance = joker_balances.balance + $2, last_grant_month = $3
WHERE joker_balances.last_grant_month IS DISTINCT FROM $3`
	_, err := r.db.Pool.Exec(ctx, q, userID, amount, string(month))
	return err
}

// ConsumeForDay spends one joker for a retroactive answer on day.
// The spend row is written first; if it already exists the joker was
// charged on an earlier attempt and the call succeeds without touching
// the balance.
func (r *JokerRepo) ConsumeForDay(ctx context.Context, userID uuid.UUID, day dayutil.DayKey) (err error) {
	tx, err := r.db.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
			return
		}
		if e := tx.Commit(ctx); e != nil {
			err = e
		}
	}()

	const spend = `INSERT INTO joker_spends (user_id, day) VALUES ($1,$2) ON CONFLICT (user_id, day) DO NOTHING`
	tag, err := tx.Exec(ctx, spend, userID, string(day))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		// Already charged for this day on a previous attempt.
		return nil
	}

	const dec = `UPDATE joker_balances SET balance = balance - 1 WHERE user_id=$1 AND balance > 0`
	tag, err = tx.Exec(ctx, dec, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		err = errs.ErrInsufficientBalance
		return err
	}
	return nil
}
