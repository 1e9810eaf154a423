package postgres

import (
	"context"
	"embed"
	"fmt"
	"slices"

	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" database/sql driver
	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var migrations embed.FS

// MigrateCommands lists the goose commands Migrate accepts.
var MigrateCommands = []string{"up", "down", "status", "version", "redo", "reset"}

// Migrate applies a goose command to the database at dsn using the embedded
// migrations.
func Migrate(ctx context.Context, dsn, command string, args ...string) error {
	if !slices.Contains(MigrateCommands, command) {
		return fmt.Errorf("postgres.Migrate: unknown command %q", command)
	}

	db, err := goose.OpenDBWithDriver("pgx", dsn)
	if err != nil {
		return fmt.Errorf("postgres.Migrate: open db: %w", err)
	}
	defer db.Close()

	goose.SetBaseFS(migrations)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("postgres.Migrate: dialect: %w", err)
	}

	if err := goose.RunContext(ctx, command, db, "migrations", args...); err != nil {
		return fmt.Errorf("postgres.Migrate: %s: %w", command, err)
	}

	return nil
}
