package db

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joy095/venue/logger"
)

//go:embed schema.sql
var schemaSQL string

// Migrate applies the idempotent schema, including the exclusion constraint that
// keeps live bookings on a venue from overlapping.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, schemaSQL); err != nil {
		logger.ErrorLogger.Errorf("Failed to apply schema: %v", err)
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	logger.InfoLogger.Info("Database schema is up to date")
	return nil
}
