// internal/server/server_test.go
//
// End-to-end tests over a real TCP listener.
//
// Context
// -------
// spawnApp binds 127.0.0.1:0, builds the server around a sqlmock-backed
// pool, and runs Serve on its own goroutine, the same way cmd/newsletter
// does.  Requests go through net/http's client, so status codes and
// Content-Length are checked as a load balancer would see them.
//
// Run: go test ./internal/server -v

package server

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap/zaptest"

	"github.com/sangkhuudev/newsletter/internal/database"
)

const insertRE = `INSERT INTO subscriptions \(id, email, name, subscribed_at\)`

type testApp struct {
	address string
	mock    sqlmock.Sqlmock
}

func spawnApp(t *testing.T, db *sqlx.DB) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to bind random port: %v", err)
	}

	srv := New(ln, db, zaptest.NewLogger(t).Sugar())
	done := make(chan error, 1)
	go func() { done <- srv.Serve() }()

	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			t.Errorf("shutdown: %v", err)
		}
		if err := <-done; err != nil {
			t.Errorf("serve: %v", err)
		}
	})
	return "http://" + srv.Addr().String()
}

func spawnMockApp(t *testing.T) testApp {
	t.Helper()
	raw, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { raw.Close() })
	return testApp{address: spawnApp(t, sqlx.NewDb(raw, "sqlmock")), mock: mock}
}

func postForm(t *testing.T, address, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(address+"/subscriptions", "application/x-www-form-urlencoded", strings.NewReader(body))
	if err != nil {
		t.Fatalf("failed to execute the request: %v", err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestHealthWorks(t *testing.T) {
	app := spawnMockApp(t)

	resp, err := http.Get(app.address + "/health")
	if err != nil {
		t.Fatalf("failed to execute the request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if resp.ContentLength != 0 {
		t.Fatalf("content length = %d, want 0", resp.ContentLength)
	}
	if err := app.mock.ExpectationsWereMet(); err != nil {
		t.Errorf("health touched the store: %v", err)
	}
}

func TestHealthWorks_DatabaseDown(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	port := uint16(ln.Addr().(*net.TCPAddr).Port)
	_ = ln.Close()

	db, err := database.Open(database.Descriptor{
		Driver:   database.DriverPostgres,
		Host:     "127.0.0.1",
		Port:     port,
		Username: "app",
		Password: "pw",
		Database: "newsletter",
	}, database.Options{})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer db.Close()

	address := spawnApp(t, db)

	resp, err := http.Get(address + "/health")
	if err != nil {
		t.Fatalf("failed to execute the request: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK || resp.ContentLength != 0 {
		t.Fatalf("status = %d, length = %d", resp.StatusCode, resp.ContentLength)
	}

	// The same pool makes submissions fail cleanly rather than crash.
	if resp := postForm(t, address, "name=a&email=b"); resp.StatusCode != http.StatusInternalServerError {
		t.Fatalf("subscribe with db down: status = %d, want 500", resp.StatusCode)
	}
}

func TestSubscribeReturns200ForValidForm(t *testing.T) {
	app := spawnMockApp(t)
	app.mock.ExpectExec(insertRE).
		WithArgs(sqlmock.AnyArg(), "rustdev@gmail.com", "sang khuu", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	resp := postForm(t, app.address, "name=sang%20khuu&email=rustdev%40gmail.com")

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if b, _ := io.ReadAll(resp.Body); len(b) != 0 {
		t.Fatalf("body = %q, want empty", b)
	}
	if err := app.mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet SQL expectations: %v", err)
	}
}

func TestSubscribeReturns400ForMissingForm(t *testing.T) {
	app := spawnMockApp(t)
	cases := []struct{ body, why string }{
		{"name=sang%20khuu", "missing the email"},
		{"email=ursula_le_guin%40gmail.com", "missing the name"},
		{"", "missing both name and email"},
	}

	for _, tc := range cases {
		resp := postForm(t, app.address, tc.body)
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("API did not fail with 400 Bad Request when the payload was %s: got %d",
				tc.why, resp.StatusCode)
		}
	}
	if err := app.mock.ExpectationsWereMet(); err != nil {
		t.Errorf("store touched: %v", err)
	}
}

func TestRouteSurface(t *testing.T) {
	app := spawnMockApp(t)

	cases := []struct {
		method, path string
		want         int
	}{
		{http.MethodGet, "/subscriptions", http.StatusMethodNotAllowed},
		{http.MethodDelete, "/subscriptions", http.StatusMethodNotAllowed},
		{http.MethodPut, "/subscriptions", http.StatusMethodNotAllowed},
		{http.MethodPost, "/health", http.StatusMethodNotAllowed},
		{http.MethodGet, "/subscriptions/1", http.StatusNotFound},
		{http.MethodGet, "/metrics", http.StatusNotFound},
	}
	for _, tc := range cases {
		req, _ := http.NewRequest(tc.method, app.address+tc.path, nil)
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			t.Fatalf("%s %s: %v", tc.method, tc.path, err)
		}
		resp.Body.Close()
		if resp.StatusCode != tc.want {
			t.Errorf("%s %s = %d, want %d", tc.method, tc.path, resp.StatusCode, tc.want)
		}
	}
}

func TestConcurrentSubscriptions(t *testing.T) {
	app := spawnMockApp(t)
	app.mock.MatchExpectationsInOrder(false)

	const n = 16
	for i := 0; i < n; i++ {
		app.mock.ExpectExec(insertRE).
			WithArgs(sqlmock.AnyArg(), fmt.Sprintf("u%d@example.com", i), fmt.Sprintf("user %d", i), sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 1))
	}

	var wg sync.WaitGroup
	codes := make([]int, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			body := fmt.Sprintf("name=user%%20%d&email=u%d%%40example.com", i, i)
			resp, err := http.Post(app.address+"/subscriptions", "application/x-www-form-urlencoded", strings.NewReader(body))
			if err != nil {
				return
			}
			resp.Body.Close()
			codes[i] = resp.StatusCode
		}(i)
	}
	wg.Wait()

	for i, c := range codes {
		if c != http.StatusOK {
			t.Errorf("request %d: status = %d", i, c)
		}
	}
	if err := app.mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet SQL expectations: %v", err)
	}
}

func TestMetricsListener(t *testing.T) {
	app := spawnMockApp(t)
	_ = postForm(t, app.address, "")

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	m := NewMetrics(ln, zaptest.NewLogger(t).Sugar())
	go func() { _ = m.Serve() }()
	defer m.Shutdown(context.Background())

	resp, err := http.Get("http://" + m.Addr().String() + "/metrics")
	if err != nil {
		t.Fatalf("scrape: %v", err)
	}
	defer resp.Body.Close()
	b, _ := io.ReadAll(resp.Body)

	if !regexp.MustCompile(`newsletter_subscriptions_total\{outcome="invalid"\} [1-9]`).Match(b) {
		t.Fatalf("invalid-submission counter missing from scrape")
	}
}
