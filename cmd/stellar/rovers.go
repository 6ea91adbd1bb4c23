package main

import (
	"context"
	"io"

	"github.com/spf13/cobra"

	"github.com/Raffy0-1/Stellar-pathways-journey-to-Alpha-Centauri/internal/report"
	"github.com/Raffy0-1/Stellar-pathways-journey-to-Alpha-Centauri/pkg/pipeline"
)

var roversCmd = &cobra.Command{
	Use:   "rovers",
	Short: "Estimate crop health and waste reduction for sampled conditions",
	Long: `Trains the farming and recycling rover regressors on their logs, draws
random operating conditions and prints the predicted crop health and waste
reduction efficiency for each.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")
		samples, _ := cmd.Flags().GetInt("samples")
		seed, _ := cmd.Flags().GetInt64("seed")
		if samples > 0 {
			cfg.Sampler.Count = samples
		}
		if seed != 0 {
			cfg.Sampler.Seed = seed
		}
		return runRovers(cmd.Context(), cmd.OutOrStdout(), format)
	},
}

func init() {
	roversCmd.Flags().String("format", report.FormatText, "output format: text, json or yaml")
	roversCmd.Flags().Int("samples", 0, "sampled conditions per rover (default: sampler.count)")
	roversCmd.Flags().Int64("seed", 0, "condition sampler seed (default: sampler.seed)")
}

func runRovers(ctx context.Context, w io.Writer, format string) error {
	return runSession(ctx, w, format, func(ctx context.Context, s *pipeline.Session) (any, error) {
		return s.Rovers(ctx)
	})
}
