// internal/database/database_test.go
//
// Pool construction, context plumbing, and admin helpers.
//
// Run: go test ./internal/database -v

package database

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
)

// closedPort returns a local port with nothing listening on it.
func closedPort(t *testing.T) uint16 {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	port := uint16(ln.Addr().(*net.TCPAddr).Port)
	_ = ln.Close()
	return port
}

func unreachable(t *testing.T, driver string) Descriptor {
	return Descriptor{
		Driver:   driver,
		Host:     "127.0.0.1",
		Port:     closedPort(t),
		Username: "app",
		Password: "pw",
		Database: "newsletter",
		SSLMode:  SSLPrefer,
	}
}

func TestOpen_IsLazy(t *testing.T) {
	for _, driver := range []string{DriverPostgres, DriverMySQL} {
		db, err := Open(unreachable(t, driver), Options{MaxOpenConns: 3, MaxIdleConns: 1, ConnMaxLifetime: time.Minute})
		if err != nil {
			t.Fatalf("%s: Open must not dial: %v", driver, err)
		}
		if db.DriverName() != driver {
			t.Fatalf("driver name = %q, want %q", db.DriverName(), driver)
		}
		if got := db.Stats().MaxOpenConnections; got != 3 {
			t.Fatalf("%s: MaxOpenConnections = %d", driver, got)
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		_, err = db.ExecContext(ctx, "SELECT 1")
		cancel()
		if err == nil {
			t.Fatalf("%s: first use should surface the connection error", driver)
		}
		_ = db.Close()
	}
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := Open(Descriptor{Driver: "oracle"}, Options{})
	if !errors.Is(err, ErrDescriptor) {
		t.Fatalf("err = %v, want ErrDescriptor", err)
	}
}

func TestConnect_FailsAtConstruction(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	desc := unreachable(t, DriverPostgres)
	desc.Password = "hunter2"
	db, err := Connect(ctx, desc, Options{})
	if !errors.Is(err, ErrConnect) {
		t.Fatalf("err = %v, want ErrConnect", err)
	}
	if db != nil {
		t.Fatalf("db returned alongside error")
	}
	if regexp.MustCompile("hunter2").MatchString(err.Error()) {
		t.Fatalf("password leaked in error: %v", err)
	}
}

func TestInject_SharesPool(t *testing.T) {
	raw, _, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer raw.Close()
	db := sqlx.NewDb(raw, "sqlmock")

	var got *sqlx.DB
	h := Inject(db)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = FromContext(r.Context())
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	if got != db {
		t.Fatalf("handler saw %p, want %p", got, db)
	}
	if FromContext(context.Background()) != nil {
		t.Fatalf("empty context should yield nil")
	}
}

func TestCreateDatabase_QuotesIdentifier(t *testing.T) {
	raw, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer raw.Close()

	mock.ExpectExec(regexp.QuoteMeta(`CREATE DATABASE "news""letter"`)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := CreateDatabase(context.Background(), sqlx.NewDb(raw, DriverPostgres), `news"letter`); err != nil {
		t.Fatalf("CreateDatabase: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet SQL expectations: %v", err)
	}
}

func TestCreateDatabase_MySQL(t *testing.T) {
	raw, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer raw.Close()

	mock.ExpectExec(regexp.QuoteMeta("CREATE DATABASE `newsletter`")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := CreateDatabase(context.Background(), sqlx.NewDb(raw, DriverMySQL), "newsletter"); err != nil {
		t.Fatalf("CreateDatabase: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet SQL expectations: %v", err)
	}
}
