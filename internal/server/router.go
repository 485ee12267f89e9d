// internal/server/router.go
//
// Route table.
//
// Exactly two routes are public:
//
//	GET  /health         liveness probe, no dependencies
//	POST /subscriptions  subscription.Handler
//
// Middleware order matters: RequestID must precede AccessLog (the log line
// carries the id), Recoverer sits inside AccessLog so a panic is still
// logged as a 500, and database.Inject hands the pool to every handler.

package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/sangkhuudev/newsletter/internal/database"
	"github.com/sangkhuudev/newsletter/internal/middleware"
	"github.com/sangkhuudev/newsletter/internal/subscription"
)

// NewRouter builds the public handler around db.
func NewRouter(db *sqlx.DB, log *zap.SugaredLogger) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(middleware.AccessLog(log))
	r.Use(chimw.Recoverer)
	r.Use(middleware.Security)
	r.Use(database.Inject(db))

	r.Get("/health", health)
	r.Method(http.MethodPost, "/subscriptions", subscription.NewHandler())

	return r
}
