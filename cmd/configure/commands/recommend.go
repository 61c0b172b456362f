package commands

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/benvon/mindful-harmony/internal/models"
	"github.com/benvon/mindful-harmony/internal/services/recommend"
	"github.com/benvon/mindful-harmony/internal/validation"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// NewRecommendCmd creates the recommend dry-run command. It scores the
// catalog without history, so every activity counts as novel.
func NewRecommendCmd() *cobra.Command {
	var mood, energy, situation, catalogPath string
	var minutes int

	cmd := &cobra.Command{
		Use:   "recommend",
		Short: "Dry-run activity recommendations",
		Long:  "Score the activity catalog for a mood and print the ranked result. No database is needed.",
		RunE: func(cmd *cobra.Command, args []string) error {
			req := models.ScoringRequest{
				Mood:    mood,
				Energy:  models.Energy(energy),
				Context: situation,
			}
			if cmd.Flags().Changed("time") {
				req.TimeMin = &minutes
			}
			req = req.WithDefaults()
			if err := validation.ValidateEnergy(string(req.Energy)); err != nil {
				return err
			}
			if err := validation.Validate.Struct(req); err != nil {
				return fmt.Errorf("invalid request: %s", validation.FirstError(err))
			}

			catalog, err := recommend.LoadCatalog(catalogPath)
			if err != nil {
				return err
			}
			scorer := recommend.NewScorer(nil, zap.NewNop())
			results := scorer.ScoreAndRank(cmd.Context(), catalog, req)
			return printRecommendations(cmd.OutOrStdout(), req, results)
		},
	}

	cmd.Flags().StringVar(&mood, "mood", "", "Mood label (required)")
	cmd.Flags().StringVar(&energy, "energy", "", "Energy level: low, med or high (default med)")
	cmd.Flags().IntVar(&minutes, "time", models.DefaultTimeMin, "Available minutes")
	cmd.Flags().StringVar(&situation, "context", "", "Situation, e.g. home or work (default any)")
	cmd.Flags().StringVar(&catalogPath, "catalog", defaultCatalogPath, "Catalog file")
	_ = cmd.MarkFlagRequired("mood")

	return cmd
}

func printRecommendations(w io.Writer, req models.ScoringRequest, results []models.ScoredActivity) error {
	fmt.Fprintf(w, "mood=%s energy=%s time=%dm context=%s\n\n", req.Mood, req.Energy, req.Minutes(), req.Context)
	if len(results) == 0 {
		fmt.Fprintln(w, "No activities in catalog")
		return nil
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "RANK\tSCORE\tID\tTITLE\tMIN\tENERGY")
	for i, r := range results {
		fmt.Fprintf(tw, "%d\t%.3f\t%s\t%s\t%d\t%s\n", i+1, r.Score, r.Activity.ID, r.Activity.Title, r.Activity.DurationMin, r.Activity.Energy)
	}
	return tw.Flush()
}
