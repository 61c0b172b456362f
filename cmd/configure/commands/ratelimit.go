package commands

import (
	"fmt"
	"io"
	"strings"

	"github.com/benvon/mindful-harmony/internal/database"
	"github.com/benvon/mindful-harmony/internal/models"
	"github.com/spf13/cobra"
	"github.com/ulule/limiter/v3"
)

// NewRatelimitCmd creates the ratelimit configuration command with list and set subcommands.
func NewRatelimitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ratelimit",
		Short: "Manage rate limit configuration",
		Long:  "List or update rate limits (e.g. 5-S, 100-M) per key. The server reads key \"default\" for all API routes and \"ai\" for journal and voice routes.",
	}
	cmd.AddCommand(newRatelimitListCmd())
	cmd.AddCommand(newRatelimitSetCmd())
	return cmd
}

func newRatelimitListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored rate limits",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openDB(cmd.Context())
			if err != nil {
				return err
			}
			defer closeDB(db)

			configs, err := database.NewRatelimitConfigRepository(db).List(cmd.Context())
			if err != nil {
				return err
			}
			printRatelimits(cmd.OutOrStdout(), configs)
			return nil
		},
	}
}

func printRatelimits(w io.Writer, configs []models.RatelimitConfig) {
	if len(configs) == 0 {
		fmt.Fprintln(w, "No rate limit configuration in database. Use 'ratelimit set' to add one.")
		return
	}
	fmt.Fprintln(w, "Rate limit configuration:")
	for _, c := range configs {
		fmt.Fprintf(w, "  %s: %s\n", c.ConfigKey, c.Rate)
	}
}

func newRatelimitSetCmd() *cobra.Command {
	var rate, key string
	cmd := &cobra.Command{
		Use:   "set",
		Short: "Set a rate limit",
		Long:  "Update the rate stored under --key (e.g. 5-S, 100-M, 1000-H). Running servers pick it up on their next reload.",
		RunE: func(cmd *cobra.Command, args []string) error {
			rate = strings.TrimSpace(rate)
			if rate == "" {
				return fmt.Errorf("--rate is required (e.g. 5-S, 100-M)")
			}
			if _, err := limiter.NewRateFromFormatted(rate); err != nil {
				return fmt.Errorf("invalid rate %q: %w", rate, err)
			}

			db, err := openDB(cmd.Context())
			if err != nil {
				return err
			}
			defer closeDB(db)

			c := &models.RatelimitConfig{ConfigKey: key, Rate: rate}
			if err := database.NewRatelimitConfigRepository(db).Set(cmd.Context(), c); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Rate limit configuration updated.")
			return nil
		},
	}
	cmd.Flags().StringVar(&rate, "rate", "", "Rate (e.g. 5-S, 100-M, 1000-H) (required)")
	cmd.Flags().StringVar(&key, "key", models.DefaultConfigKey, "Config key (default or ai)")
	return cmd
}
