package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

// NewTestCmd creates the test command
func NewTestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "test",
		Short: "Test database connectivity",
		Long:  "Connect to DATABASE_URL, ping it and check that migrations have created the configuration tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
			defer cancel()

			db, err := openDB(ctx)
			if err != nil {
				return err
			}
			defer closeDB(db)

			out := cmd.OutOrStdout()
			if err := db.Ping(ctx); err != nil {
				return fmt.Errorf("ping database: %w", err)
			}
			fmt.Fprintln(out, "✓ Database is reachable")

			for _, table := range []string{"users", "journal_entries", "ratelimit_config", "cors_config"} {
				var exists bool
				if err := db.QueryRowContext(ctx, `SELECT to_regclass($1) IS NOT NULL`, table).Scan(&exists); err != nil {
					return fmt.Errorf("check table %s: %w", table, err)
				}
				if !exists {
					return fmt.Errorf("table %s is missing; start the server once to run migrations", table)
				}
			}
			fmt.Fprintln(out, "✓ Schema is migrated")
			return nil
		},
	}

	return cmd
}
