package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Raffy0-1/Stellar-pathways-journey-to-Alpha-Centauri/internal/config"
)

var (
	cfg     *config.Config
	cfgFile string
)

var rootCmd = &cobra.Command{
	Use:   "stellar",
	Short: "Habitat and rover decision pipeline",
	Long: `Ranks candidate areas for a settlement from environmental telemetry and
estimates crop health and waste reduction for the farming and recycling rovers.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load(cfgFile, flagOverrides(cmd))
		if err != nil {
			return eris.Wrap(err, "load config")
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return eris.Wrap(err, "init logger")
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("data-dir", "", "directory holding the source tables")
	rootCmd.PersistentFlags().String("driver", "", "table source: csv, xlsx, sqlite or synth")

	rootCmd.AddCommand(habitatCmd, roversCmd, generateCmd)
}

// flagOverrides maps explicitly set persistent flags onto config keys.
func flagOverrides(cmd *cobra.Command) map[string]any {
	keys := map[string]string{
		"log-level": "log.level",
		"data-dir":  "data.dir",
		"driver":    "data.driver",
	}
	out := make(map[string]any)
	for name, key := range keys {
		f := cmd.Root().PersistentFlags().Lookup(name)
		if f != nil && f.Changed {
			out[key] = f.Value.String()
		}
	}
	return out
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()

	if err != nil {
		os.Exit(1)
	}
}
