// Package database owns the shared connection pool.  Postgres goes through
// pgx's database/sql adapter and MySQL through go-sql-driver; both are
// wrapped in *sqlx.DB so callers can Rebind placeholders per driver.
//
// Public entry points:
//
//	Open(desc, opts)          – lazy pool for request handlers.
//	Connect(ctx, desc, opts)  – pool that must reach the server now (admin).
//
// Callers should Close() the returned *sqlx.DB when no longer needed.
package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"

	"github.com/sangkhuudev/newsletter/internal/config"
)

var (
	// ErrDescriptor reports a descriptor the driver cannot use.
	ErrDescriptor = errors.New("database: invalid descriptor")
	// ErrConnect reports a server that could not be reached.
	ErrConnect = errors.New("database: connect")
)

// Options tune the database/sql pool.  Zero values keep driver defaults.
type Options struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// OptionsFrom copies the pool tunables out of settings.
func OptionsFrom(s config.Database) Options {
	return Options{
		MaxOpenConns:    s.MaxOpenConns,
		MaxIdleConns:    s.MaxIdleConns,
		ConnMaxLifetime: s.ConnMaxLifetime,
	}
}

// Open returns a pool for desc without contacting the server.  The first
// query dials; an unreachable server surfaces as that query's error.
func Open(desc Descriptor, opts Options) (*sqlx.DB, error) {
	var db *sql.DB
	switch desc.Driver {
	case DriverPostgres:
		cfg, err := desc.PgxConfig()
		if err != nil {
			return nil, err
		}
		db = stdlib.OpenDB(*cfg)
	case DriverMySQL:
		conn, err := mysql.NewConnector(desc.MySQLConfig())
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrDescriptor, desc, err)
		}
		db = sql.OpenDB(conn)
	default:
		return nil, fmt.Errorf("%w: unknown driver %q", ErrDescriptor, desc.Driver)
	}

	if opts.MaxOpenConns > 0 {
		db.SetMaxOpenConns(opts.MaxOpenConns)
	}
	if opts.MaxIdleConns > 0 {
		db.SetMaxIdleConns(opts.MaxIdleConns)
	}
	if opts.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(opts.ConnMaxLifetime)
	}
	return sqlx.NewDb(db, desc.Driver), nil
}

// Connect is Open plus a Ping, so administrative flows fail at
// construction rather than on their first statement.
func Connect(ctx context.Context, desc Descriptor, opts Options) (*sqlx.DB, error) {
	db, err := Open(desc, opts)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: %s: %w", ErrConnect, desc, err)
	}
	return db, nil
}
