// Package subscription accepts newsletter sign-ups: it decodes the form,
// stores one row per submission, and maps the outcome to a status code.
package subscription

import (
	"time"

	"github.com/google/uuid"
)

// Record is one row of the subscriptions table.  It is created once per
// successful submission and never updated.
type Record struct {
	ID           uuid.UUID `db:"id"`
	Email        string    `db:"email"`
	Name         string    `db:"name"`
	SubscribedAt time.Time `db:"subscribed_at"`
}

// NewRecord stamps a fresh random id and the UTC capture time.
func NewRecord(f Form, now time.Time) Record {
	return Record{
		ID:           uuid.New(),
		Email:        f.Email,
		Name:         f.Name,
		SubscribedAt: now.UTC(),
	}
}
