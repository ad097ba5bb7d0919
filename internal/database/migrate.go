package database

import (
	"context"
	"fmt"

	"github.com/ghostofweb/portfolio-api/migrations"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

// Migrate applies pending goose migrations using the embedded SQL files.
// Goose needs a database/sql handle, so the pool config is re-opened through
// the pgx stdlib adapter for the duration of the run.
func (db *DB) Migrate(ctx context.Context) error {
	goose.SetBaseFS(migrations.Embed)

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}

	sqlDB := stdlib.OpenDB(*db.Pool.Config().ConnConfig)
	defer sqlDB.Close()

	if err := goose.UpContext(ctx, sqlDB, "."); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	return nil
}
