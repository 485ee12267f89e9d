// internal/database/policy.go
//
// Connection policy.
//
// Context
// -------
// Settings carry one boolean, `database.require_ssl`.  The policy turns it
// into a transport mode and never lets a caller override it:
//
//   • true  → SSLRequire.  No encryption, no connection.
//   • false → SSLPrefer.   Encrypt when possible, plaintext otherwise.
//
// The prefer fallback is an availability trade-off for non-production
// environments; production overlays set require_ssl.
//
// Two descriptors exist per settings instance.  ServerDescriptor omits the
// database name so administrative statements (CREATE DATABASE) can run
// before the target exists.  DatabaseDescriptor adds the name and backs the
// request-serving pool.

package database

import "github.com/sangkhuudev/newsletter/internal/config"

// ServerDescriptor targets the server without selecting a database.
func ServerDescriptor(s config.Database) Descriptor {
	mode := SSLPrefer
	if s.RequireSSL {
		mode = SSLRequire
	}
	return Descriptor{
		Driver:   driverName(s.Driver),
		Host:     s.Host,
		Port:     s.Port,
		Username: s.Username,
		Password: s.Password,
		SSLMode:  mode,
	}
}

// DatabaseDescriptor is ServerDescriptor plus the target database.
func DatabaseDescriptor(s config.Database) Descriptor {
	d := ServerDescriptor(s)
	d.Database = s.DatabaseName
	return d
}

// driverName maps the configuration vocabulary to registered drivers.
func driverName(cfg string) string {
	if cfg == "mysql" {
		return DriverMySQL
	}
	return DriverPostgres
}
