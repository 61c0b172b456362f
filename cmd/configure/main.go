package main

import (
	"fmt"
	"os"

	"github.com/benvon/mindful-harmony/cmd/configure/commands"
	"github.com/spf13/cobra"
)

func main() {
	var rootCmd = &cobra.Command{
		Use:   "mindful-harmony-configure",
		Short: "Configuration tool for Mindful Harmony",
		Long:  "CLI tool for rate limits, CORS, the activity catalog and recommendation dry runs",
	}

	rootCmd.AddCommand(commands.NewRatelimitCmd())
	rootCmd.AddCommand(commands.NewCorsCmd())
	rootCmd.AddCommand(commands.NewCatalogCmd())
	rootCmd.AddCommand(commands.NewRecommendCmd())
	rootCmd.AddCommand(commands.NewListCmd())
	rootCmd.AddCommand(commands.NewTestCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
