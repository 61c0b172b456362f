package commands

import (
	"fmt"
	"io"
	"strings"

	"github.com/benvon/mindful-harmony/internal/database"
	"github.com/benvon/mindful-harmony/internal/models"
	"github.com/spf13/cobra"
)

// NewCorsCmd creates the cors configuration command with show and set subcommands.
func NewCorsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cors",
		Short: "Manage CORS configuration",
		Long:  "Show or update CORS allowed origins and options (stored in database).",
	}
	cmd.AddCommand(newCorsShowCmd())
	cmd.AddCommand(newCorsSetCmd())
	return cmd
}

func newCorsShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "show",
		Aliases: []string{"list"},
		Short:   "Show current CORS configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openDB(cmd.Context())
			if err != nil {
				return err
			}
			defer closeDB(db)

			c, err := database.NewCorsConfigRepository(db).Get(cmd.Context())
			if err != nil {
				return fmt.Errorf("get cors config: %w", err)
			}
			printCors(cmd.OutOrStdout(), c)
			return nil
		},
	}
}

func printCors(w io.Writer, c *models.CorsConfig) {
	if c == nil {
		fmt.Fprintln(w, "No CORS configuration in database. Use 'cors set' to add one.")
		return
	}
	fmt.Fprintln(w, "CORS configuration:")
	fmt.Fprintf(w, "  Allowed origins: %s\n", strings.Join(database.AllowedOriginsSlice(c.AllowedOrigins), ", "))
	fmt.Fprintf(w, "  Allow credentials: %v\n", c.AllowCredentials)
	fmt.Fprintf(w, "  Max-Age: %d\n", c.MaxAge)
}

func newCorsSetCmd() *cobra.Command {
	var origins string
	var allowCreds bool
	var maxAge int
	cmd := &cobra.Command{
		Use:   "set",
		Short: "Set CORS configuration",
		Long:  "Update CORS allowed origins (comma-separated). Stored in database.",
		RunE: func(cmd *cobra.Command, args []string) error {
			origins = strings.TrimSpace(origins)
			if len(database.AllowedOriginsSlice(origins)) == 0 {
				return fmt.Errorf("--origins is required (comma-separated list)")
			}
			if maxAge < 0 {
				return fmt.Errorf("--max-age must not be negative")
			}

			db, err := openDB(cmd.Context())
			if err != nil {
				return err
			}
			defer closeDB(db)

			c := &models.CorsConfig{
				AllowedOrigins:   origins,
				AllowCredentials: allowCreds,
				MaxAge:           maxAge,
			}
			if err := database.NewCorsConfigRepository(db).Set(cmd.Context(), c); err != nil {
				return fmt.Errorf("set cors config: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "CORS configuration updated.")
			return nil
		},
	}
	cmd.Flags().StringVar(&origins, "origins", "", "Comma-separated allowed origins (required)")
	cmd.Flags().BoolVar(&allowCreds, "allow-credentials", true, "Allow credentials")
	cmd.Flags().IntVar(&maxAge, "max-age", 86400, "Access-Control-Max-Age (seconds)")
	return cmd
}
