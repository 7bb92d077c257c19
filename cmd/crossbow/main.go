package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/23skdu/crossbow/internal/config"
	"github.com/23skdu/crossbow/internal/core"
	"github.com/23skdu/crossbow/internal/dataset"
	"github.com/23skdu/crossbow/internal/engine"
	"github.com/23skdu/crossbow/internal/equiv"
	"github.com/23skdu/crossbow/internal/harness"
	"github.com/23skdu/crossbow/internal/logging"
	"github.com/23skdu/crossbow/internal/runner"
)

func main() {
	// Optional .env for local runs; absence is not an error.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		os.Stderr.WriteString("config: " + err.Error() + "\n")
		os.Exit(2)
	}

	logger, err := logging.NewLogger(logging.Config{Format: cfg.LogFormat, Level: cfg.LogLevel})
	if err != nil {
		os.Stderr.WriteString("logger: " + err.Error() + "\n")
		os.Exit(2)
	}
	defer func() { _ = logger.Sync() }()

	if cfg.MetricsAddr != "" {
		go func() {
			logger.Info("starting metrics server", zap.String("address", cfg.MetricsAddr))
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.Handler())
			if err := http.ListenAndServe(cfg.MetricsAddr, mux); err != nil {
				logger.Error("metrics server failed", zap.Error(err))
			}
		}()
	}

	ctrl := harness.New(buildProvider(cfg), harness.Options{
		Engine: engine.Kind(cfg.Engine),
		HNSW: engine.HNSWConfig{
			Metric:   core.DistanceMetric(cfg.Metric),
			M:        cfg.HNSWM,
			EfSearch: cfg.EfSearch,
			Logger:   logger,
		},
		Runner: runner.Config{
			K:               cfg.TopK,
			Metric:          core.DistanceMetric(cfg.Metric),
			Tolerance:       equiv.Tolerance{Mode: equiv.ToleranceMode(cfg.ToleranceMode), Value: cfg.Tolerance},
			RecallThreshold: cfg.RecallThreshold,
			EnforceRecall:   cfg.EnforceRecall,
			Logger:          logger,
		},
		Logger: logger,
	})

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout)
	defer cancel()

	syncOK := ctrl.RunTestSync(ctx)
	logger.Info("sync mode finished", zap.Bool("passed", syncOK))

	asyncOK := false
	if ctrl.RunTestAsync(ctx) {
		if _, err := ctrl.WaitAsync(ctx); err != nil {
			logger.Warn("async chain unresolved within timeout, abandoning", zap.Error(err))
			ctrl.AbandonAsync()
		}
		asyncOK = ctrl.AsyncTestResult()
		if out, ok := ctrl.AsyncOutcome(); ok {
			logger.Info("async mode finished",
				zap.Bool("passed", out.Passed),
				zap.String("diagnostic", out.Diagnostic))
		}
	} else {
		logger.Error("async mode failed to initiate")
	}

	if !syncOK || !asyncOK {
		os.Exit(1)
	}
}

// buildProvider selects the synthetic corpus or a parquet fixture.
func buildProvider(cfg config.Config) dataset.Provider {
	if cfg.DatasetPath != "" {
		return dataset.DeriveQueries{
			Inner: dataset.FileProvider{Name: "fixture", Path: cfg.DatasetPath},
			Seed:  cfg.Seed,
		}
	}
	return dataset.Synthetic{
		Name:  "synthetic",
		Count: cfg.CorpusSize,
		Dim:   cfg.Dimension,
		Seed:  cfg.Seed,
	}
}
