package main

import (
	"context"
	"io"

	"github.com/spf13/cobra"

	"github.com/Raffy0-1/Stellar-pathways-journey-to-Alpha-Centauri/internal/report"
	"github.com/Raffy0-1/Stellar-pathways-journey-to-Alpha-Centauri/pkg/pipeline"
)

var habitatCmd = &cobra.Command{
	Use:   "habitat",
	Short: "Rank candidate areas and name the most sustainable one",
	Long: `Loads the telemetry of every configured area, labels the area with the
highest mean oxygen plus soil quality, trains a classifier on all records and
reports the area with the most records predicted suitable.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")
		quiet, _ := cmd.Flags().GetBool("quiet")
		return runHabitat(cmd.Context(), cmd.OutOrStdout(), format, quiet)
	},
}

func init() {
	habitatCmd.Flags().String("format", report.FormatText, "output format: text, json or yaml")
	habitatCmd.Flags().Bool("quiet", false, "suppress rover status messages")
}

func runHabitat(ctx context.Context, w io.Writer, format string, quiet bool) error {
	var msgOut io.Writer
	if !quiet && (format == report.FormatText || format == "") {
		msgOut = w
	}
	n := newNarrator(msgOut)

	n.say("start")
	err := runSession(ctx, w, format, func(ctx context.Context, s *pipeline.Session) (any, error) {
		n.say("processing")
		d, err := s.Habitat(ctx)
		if err != nil {
			return nil, err
		}
		n.say("found")
		return d, nil
	})
	if err != nil {
		return err
	}
	n.say("end")
	return nil
}
