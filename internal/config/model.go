// internal/config/model.go
//
// Typed configuration model for the newsletter service.
//
// Context
// -------
// These structs define the shape of the configuration tree that
// `internal/config/loader.go` builds from four overlay layers:
//
//   • `configuration/base.yaml`               – shared defaults,
//   • `configuration/<environment>.yaml`      – per-environment overlay,
//   • optional `configuration/.env`           – dotenv values,
//   • `APP_`-prefixed environment overrides   – highest precedence.
//
// Validation happens immediately after unmarshal; the app fails fast if
// required fields are missing.
//
// Notes
// -----
//   • Struct tags use `koanf:"…"`, not `yaml:"…"`.
//   • Port fields are uint16.  The loader unmarshals weakly typed, so
//     `APP_DATABASE__PORT=5432` decodes, while `APP_DATABASE__PORT=abc`
//     fails.  Values outside 0–65535 fail too (see decode.go).
//   • Oxford commas, two spaces after periods.

package config

import "time"

//
// Application section
//

// Application holds the public HTTP listener address.
type Application struct {
	Host string `koanf:"host" validate:"required"`
	Port uint16 `koanf:"port"`
}

//
// Database section
//

// Database holds the connection inputs for the subscriptions store.  The
// password is a Secret so it never reaches a log line by accident.
type Database struct {
	Driver       string `koanf:"driver"        validate:"required,oneof=postgres mysql"`
	Host         string `koanf:"host"          validate:"required"`
	Port         uint16 `koanf:"port"          validate:"required"`
	Username     string `koanf:"username"      validate:"required"`
	Password     Secret `koanf:"password"`
	DatabaseName string `koanf:"database_name" validate:"required"`
	RequireSSL   bool   `koanf:"require_ssl"`

	// Pool tunables, applied to database/sql.  Zero means driver default.
	MaxOpenConns    int           `koanf:"max_open_conns"    validate:"gte=0"`
	MaxIdleConns    int           `koanf:"max_idle_conns"    validate:"gte=0"`
	ConnMaxLifetime time.Duration `koanf:"conn_max_lifetime" validate:"gte=0"`
}

//
// Log section
//

// Log controls the zap logger built by internal/logger.
type Log struct {
	Level   string `koanf:"level"   validate:"omitempty,oneof=debug info warn error"`
	Dir     string `koanf:"dir"`
	Console bool   `koanf:"console"`
}

//
// Metrics section
//

// Metrics configures the Prometheus listener.  It runs apart from the
// public listener.
type Metrics struct {
	Enabled bool   `koanf:"enabled"`
	Host    string `koanf:"host" validate:"required_if=Enabled true"`
	Port    uint16 `koanf:"port" validate:"required_if=Enabled true"`
}

//
// Root aggregate
//

// Settings is the immutable aggregate returned by Load.
type Settings struct {
	Environment Environment `koanf:"-"`
	Application Application `koanf:"application"`
	Database    Database    `koanf:"database"`
	Log         Log         `koanf:"log"`
	Metrics     Metrics     `koanf:"metrics"`
}

// WithDatabaseName returns a copy of s targeting another database.  The
// receiver is left untouched.
func (s *Settings) WithDatabaseName(name string) *Settings {
	c := *s
	c.Database.DatabaseName = name
	return &c
}
