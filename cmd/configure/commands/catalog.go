package commands

import (
	"fmt"
	"io"

	"github.com/benvon/mindful-harmony/internal/services/recommend"
	"github.com/spf13/cobra"
)

// defaultCatalogPath mirrors the CATALOG_PATH default.
const defaultCatalogPath = "seed/activities.yaml"

// NewCatalogCmd creates the catalog command.
func NewCatalogCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Inspect the activity catalog",
	}
	cmd.AddCommand(newCatalogValidateCmd())
	return cmd
}

func newCatalogValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate [path]",
		Short: "Validate an activity catalog file",
		Long:  "Load the catalog, print how many activities it holds and list every validation problem. Exits non-zero when problems are found.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := defaultCatalogPath
			if len(args) == 1 {
				path = args[0]
			}
			catalog, err := recommend.LoadCatalog(path)
			if err != nil {
				return err
			}
			return reportCatalog(cmd.OutOrStdout(), path, catalog)
		},
	}
}

func reportCatalog(w io.Writer, path string, catalog *recommend.Catalog) error {
	problems := catalog.Problems()
	fmt.Fprintf(w, "%s: %d activities\n", path, catalog.Len())
	if len(problems) == 0 {
		fmt.Fprintln(w, "✓ No problems found")
		return nil
	}
	for _, p := range problems {
		fmt.Fprintf(w, "  - %v\n", p)
	}
	return fmt.Errorf("%d catalog problem(s)", len(problems))
}
