package commands

import (
	"fmt"

	"github.com/benvon/mindful-harmony/internal/database"
	"github.com/spf13/cobra"
)

// NewListCmd creates the list command
func NewListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List all runtime configuration",
		Long:  "Print every rate limit and the CORS policy stored in the database",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openDB(cmd.Context())
			if err != nil {
				return err
			}
			defer closeDB(db)

			rates, err := database.NewRatelimitConfigRepository(db).List(cmd.Context())
			if err != nil {
				return err
			}
			corsCfg, err := database.NewCorsConfigRepository(db).Get(cmd.Context())
			if err != nil {
				return fmt.Errorf("get cors config: %w", err)
			}

			out := cmd.OutOrStdout()
			printRatelimits(out, rates)
			fmt.Fprintln(out)
			printCors(out, corsCfg)
			return nil
		},
	}

	return cmd
}
