package database

import (
	"context"
	"net/http"

	"github.com/jmoiron/sqlx"
)

// dbKey is unexported to avoid context-key collisions.
type dbKey struct{}

// WithDB returns a context carrying the shared pool.
func WithDB(ctx context.Context, db *sqlx.DB) context.Context {
	return context.WithValue(ctx, dbKey{}, db)
}

// FromContext returns the pool stored by WithDB, or nil.
func FromContext(ctx context.Context) *sqlx.DB {
	db, _ := ctx.Value(dbKey{}).(*sqlx.DB)
	return db
}

// Inject is middleware that hands db to every request by reference.
func Inject(db *sqlx.DB) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(WithDB(r.Context(), db)))
		})
	}
}
