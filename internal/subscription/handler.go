// internal/subscription/handler.go
//
// POST /subscriptions.
//
// Context
// -------
// Status mapping:
//
//   • body fails to decode, or name / email missing or empty  → 400
//   • insert succeeded                                         → 200
//   • insert failed (connection, constraint, timeout, …)       → 500
//
// All responses have an empty body.  Failure detail goes to the request
// logger only.  The pool is borrowed from the request context
// (database.Inject), so the handler holds no state of its own apart from
// its clock.

package subscription

import (
	"net/http"
	"time"

	"github.com/sangkhuudev/newsletter/internal/database"
	"github.com/sangkhuudev/newsletter/internal/logger"
	"github.com/sangkhuudev/newsletter/internal/metrics"
)

// Handler serves subscription submissions.
type Handler struct {
	now func() time.Time
}

// NewHandler returns a Handler using the wall clock.
func NewHandler() *Handler {
	return &Handler{now: time.Now}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	form, err := DecodeForm(r)
	if err != nil {
		log.Infow("subscription rejected", "err", err)
		metrics.SubscriptionsTotal.WithLabelValues(metrics.OutcomeInvalid).Inc()
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	rec := NewRecord(form, h.now())
	log = log.With("subscriber_id", rec.ID.String())

	db := database.FromContext(r.Context())
	if db == nil {
		log.Errorw("subscription store unavailable: no pool in request context")
		metrics.SubscriptionsTotal.WithLabelValues(metrics.OutcomeFailed).Inc()
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	if err := Insert(r.Context(), db, rec); err != nil {
		log.Errorw("subscription insert failed", "err", err)
		metrics.SubscriptionsTotal.WithLabelValues(metrics.OutcomeFailed).Inc()
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	log.Infow("subscription saved")
	metrics.SubscriptionsTotal.WithLabelValues(metrics.OutcomeCreated).Inc()
	w.WriteHeader(http.StatusOK)
}
