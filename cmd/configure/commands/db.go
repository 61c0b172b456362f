package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/benvon/mindful-harmony/internal/config"
	"github.com/benvon/mindful-harmony/internal/database"
)

// openDB loads configuration and connects. Callers close the returned DB
// with closeDB.
func openDB(ctx context.Context) (*database.DB, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	db, err := database.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	return db, nil
}

func closeDB(db *database.DB) {
	if err := db.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to close database: %v\n", err)
	}
}
