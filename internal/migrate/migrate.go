// Package migrate applies the embedded journal schema (users,
// questions, answers, joker ledger) on server startup.
package migrate

import (
	"context"
	"database/sql"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/quotidianapp/quotidian/migrations"
)

// Up runs all pending migrations from the embedded filesystem. It
// opens its own short-lived database/sql handle; the pgx pool the
// repositories use comes later in startup.
func Up(ctx context.Context, dsn string) error {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return err
	}
	defer db.Close()

	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}

	return goose.UpContext(ctx, db, ".")
}
