package server

import "net/http"

// health answers 200 with an empty body.  It never touches the pool, so
// it stays green while the database is down.
func health(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}
