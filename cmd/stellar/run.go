package main

import (
	"context"
	"io"

	"go.uber.org/zap"

	"github.com/Raffy0-1/Stellar-pathways-journey-to-Alpha-Centauri/internal/metrics"
	"github.com/Raffy0-1/Stellar-pathways-journey-to-Alpha-Centauri/internal/report"
	"github.com/Raffy0-1/Stellar-pathways-journey-to-Alpha-Centauri/pkg/pipeline"
)

// runSession opens the configured source, runs fn against a fresh session
// and renders its result. Metrics are exported even when fn fails.
func runSession(ctx context.Context, w io.Writer, format string, fn func(context.Context, *pipeline.Session) (any, error)) error {
	src, release, err := openSource(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := release(); err != nil {
			zap.L().Warn("close source", zap.Error(err))
		}
	}()

	m := metrics.New()
	sess := pipeline.NewSession(cfg.Pipeline(), src,
		pipeline.WithLogger(zap.L()),
		pipeline.WithRecorder(m))

	result, runErr := fn(ctx, sess)
	if err := m.WriteTextfile(cfg.Metrics.Textfile); err != nil {
		zap.L().Warn("export metrics", zap.Error(err))
	}
	if runErr != nil {
		zap.L().Error("run failed", zap.Error(runErr))
		return runErr
	}
	return report.Render(w, format, result)
}
