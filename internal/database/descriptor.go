package database

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5"

	"github.com/sangkhuudev/newsletter/internal/config"
)

// Driver names as registered with database/sql and understood by sqlx.Rebind.
const (
	DriverPostgres = "pgx"
	DriverMySQL    = "mysql"
)

// SSLMode is the transport-security policy of a connection.
type SSLMode int

const (
	// SSLPrefer tries TLS and silently falls back to plaintext when the
	// server does not offer it.
	SSLPrefer SSLMode = iota
	// SSLRequire fails the connection when TLS cannot be negotiated.
	SSLRequire
)

func (m SSLMode) String() string {
	if m == SSLRequire {
		return "require"
	}
	return "prefer"
}

// Descriptor holds everything needed to open a connection, independent of
// any pool.  Database is empty for server-level descriptors.
type Descriptor struct {
	Driver   string
	Host     string
	Port     uint16
	Username string
	Password config.Secret
	Database string
	SSLMode  SSLMode
}

// String is safe to log.
func (d Descriptor) String() string {
	db := d.Database
	if db == "" {
		db = "-"
	}
	return fmt.Sprintf("%s://%s@%s:%d/%s?ssl=%s", d.Driver, d.Username, d.Host, d.Port, db, d.SSLMode)
}

/*──────────────────────────── postgres ────────────────────────────────────*/

// PgxConfig builds the pgx connection config.  sslmode=prefer makes pgx try
// TLS first and keep a plaintext fallback; sslmode=require keeps none.
func (d Descriptor) PgxConfig() (*pgx.ConnConfig, error) {
	parts := []string{
		"host=" + quote(d.Host),
		"port=" + strconv.Itoa(int(d.Port)),
		"user=" + quote(d.Username),
		"password=" + quote(d.Password.Expose()),
		"sslmode=" + d.SSLMode.String(),
	}
	if d.Database != "" {
		parts = append(parts, "dbname="+quote(d.Database))
	}

	cfg, err := pgx.ParseConfig(strings.Join(parts, " "))
	if err != nil {
		// The parse error may echo the DSN; report the safe form instead.
		return nil, fmt.Errorf("%w: parse pgx config for %s", ErrDescriptor, d)
	}
	return cfg, nil
}

// quote renders v as a libpq keyword/value literal.
func quote(v string) string {
	r := strings.NewReplacer(`\`, `\\`, `'`, `\'`)
	return "'" + r.Replace(v) + "'"
}

/*───────────────────────────── mysql ──────────────────────────────────────*/

// MySQLConfig builds the go-sql-driver config.  "preferred" uses TLS only
// when the server advertises it.  "skip-verify" makes TLS mandatory without
// chain verification, the same guarantee libpq's require gives.
func (d Descriptor) MySQLConfig() *mysql.Config {
	cfg := mysql.NewConfig()
	cfg.User = d.Username
	cfg.Passwd = d.Password.Expose()
	cfg.Net = "tcp"
	cfg.Addr = fmt.Sprintf("%s:%d", d.Host, d.Port)
	cfg.DBName = d.Database
	cfg.ParseTime = true
	if d.SSLMode == SSLRequire {
		cfg.TLSConfig = "skip-verify"
	} else {
		cfg.TLSConfig = "preferred"
	}
	return cfg
}
