package subscription

import (
	"context"

	"github.com/jmoiron/sqlx"
)

// insertSQL uses bind parameters only; sqlx.Rebind turns the ? markers
// into $n for Postgres.
const insertSQL = `INSERT INTO subscriptions (id, email, name, subscribed_at) VALUES (?, ?, ?, ?)`

// Insert writes rec.  db is usually the shared *sqlx.DB but a *sqlx.Tx
// works as well.
func Insert(ctx context.Context, db sqlx.ExtContext, rec Record) error {
	_, err := db.ExecContext(ctx, db.Rebind(insertSQL),
		rec.ID, rec.Email, rec.Name, rec.SubscribedAt)
	return err
}
