package database

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jmoiron/sqlx"
)

// CreateDatabase issues CREATE DATABASE on a server-level pool.  The name
// is an identifier, so it is quoted rather than bound.
func CreateDatabase(ctx context.Context, db *sqlx.DB, name string) error {
	if name == "" {
		return fmt.Errorf("%w: empty database name", ErrDescriptor)
	}
	_, err := db.ExecContext(ctx, "CREATE DATABASE "+quoteIdent(db.DriverName(), name))
	return err
}

func quoteIdent(driver, name string) string {
	if driver == DriverMySQL {
		return "`" + strings.ReplaceAll(name, "`", "``") + "`"
	}
	return pgx.Identifier{name}.Sanitize()
}
