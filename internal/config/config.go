// Package config loads harness configuration from the environment.
package config

import (
	"errors"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config validation errors
var (
	ErrInvalidDimension  = errors.New("dimension must be positive")
	ErrInvalidCorpusSize = errors.New("corpus_size must be at least 2")
	ErrInvalidTopK       = errors.New("top_k must be positive")
	ErrInvalidEngine     = errors.New("engine must be 'hnsw' or 'brute'")
	ErrInvalidMetric     = errors.New("metric must be 'euclidean', 'l2_squared', or 'cosine'")
	ErrInvalidTolMode    = errors.New("tolerance_mode must be 'absolute' or 'relative'")
	ErrInvalidTolerance  = errors.New("tolerance must be positive")
	ErrInvalidRecall     = errors.New("recall_threshold must be in (0, 1]")
	ErrInvalidTimeout    = errors.New("timeout must be positive")
	ErrInvalidLogFormat  = errors.New("log_format must be 'json' or 'console'")
	ErrInvalidLogLevel   = errors.New("log_level must be debug, info, warn, or error")
)

// Config is the environment-driven harness configuration. Fields map to
// CROSSBOW_* variables.
type Config struct {
	Engine string `envconfig:"ENGINE" default:"hnsw"`

	Dimension  int   `envconfig:"DIMENSION" default:"4"`
	CorpusSize int   `envconfig:"CORPUS_SIZE" default:"1000"`
	TopK       int   `envconfig:"TOP_K" default:"10"`
	Seed       int64 `envconfig:"SEED" default:"42"`

	// DatasetPath, when set, loads a parquet fixture instead of the
	// synthetic corpus.
	DatasetPath string `envconfig:"DATASET_PATH" default:""`

	Metric          string  `envconfig:"METRIC" default:"l2_squared"`
	ToleranceMode   string  `envconfig:"TOLERANCE_MODE" default:"absolute"`
	Tolerance       float64 `envconfig:"TOLERANCE" default:"1e-6"`
	RecallThreshold float64 `envconfig:"RECALL_THRESHOLD" default:"0.8"`

	// EnforceRecall gates the verdict on RecallThreshold. Meaningful for
	// the exact engine; an approximate index reports recall as a
	// diagnostic only.
	EnforceRecall bool `envconfig:"ENFORCE_RECALL" default:"false"`

	// Timeout bounds how long the harness waits for the async chain.
	Timeout time.Duration `envconfig:"TIMEOUT" default:"30s"`

	// MetricsAddr serves /metrics when non-empty.
	MetricsAddr string `envconfig:"METRICS_ADDR" default:""`

	HNSWM    int `envconfig:"HNSW_M" default:"16"`
	EfSearch int `envconfig:"EF_SEARCH" default:"64"`

	LogFormat string `envconfig:"LOG_FORMAT" default:"json"`
	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
}

// Load reads CROSSBOW_* environment variables and validates the result.
func Load() (Config, error) {
	var cfg Config
	if err := envconfig.Process("crossbow", &cfg); err != nil {
		return Config{}, err
	}
	if err := Validate(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the configuration and returns an error if invalid.
func Validate(cfg *Config) error {
	if cfg.Dimension <= 0 {
		return ErrInvalidDimension
	}
	if cfg.CorpusSize < 2 {
		return ErrInvalidCorpusSize
	}
	if cfg.TopK <= 0 {
		return ErrInvalidTopK
	}
	if cfg.Engine != "hnsw" && cfg.Engine != "brute" {
		return ErrInvalidEngine
	}
	if cfg.Metric != "euclidean" && cfg.Metric != "l2_squared" && cfg.Metric != "cosine" {
		return ErrInvalidMetric
	}
	if cfg.ToleranceMode != "absolute" && cfg.ToleranceMode != "relative" {
		return ErrInvalidTolMode
	}
	if cfg.Tolerance <= 0 {
		return ErrInvalidTolerance
	}
	if cfg.RecallThreshold <= 0 || cfg.RecallThreshold > 1 {
		return ErrInvalidRecall
	}
	if cfg.Timeout <= 0 {
		return ErrInvalidTimeout
	}
	if cfg.LogFormat != "json" && cfg.LogFormat != "console" {
		return ErrInvalidLogFormat
	}
	if cfg.LogLevel != "debug" && cfg.LogLevel != "info" && cfg.LogLevel != "warn" && cfg.LogLevel != "error" {
		return ErrInvalidLogLevel
	}
	return nil
}
