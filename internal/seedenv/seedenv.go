// Where: internal/seedenv/seedenv.go
// What: Process environment configuration and import-source path handling.
// Why: Keep environment lookups in one place instead of ambient os.Getenv calls.
package seedenv

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config carries the environment-driven settings of a seeding run.
type Config struct {
	Environment string `env:"SEEDBOX_ENV" envDefault:"dev"`
	ContentRoot string `env:"SEEDBOX_CONTENT_ROOT"`
	ImportedBy  string `env:"SEEDBOX_IMPORTED_BY" envDefault:"seedbox"`
	SeedCount   int    `env:"SEEDBOX_SEED_COUNT" envDefault:"10"`

	LogLevel  string `env:"SEEDBOX_LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"SEEDBOX_LOG_FORMAT" envDefault:"console"`

	Region         string        `env:"AWS_REGION" envDefault:"ap-northeast-1"`
	WaitTimeout    time.Duration `env:"SEEDBOX_WAIT_TIMEOUT" envDefault:"60s"`
	ComposeProject string        `env:"SEEDBOX_COMPOSE_PROJECT" envDefault:"seedbox"`

	DatabasePort int `env:"SEEDBOX_PORT_DATABASE"`
	StoragePort  int `env:"SEEDBOX_PORT_STORAGE"`
	QueuePort    int `env:"SEEDBOX_PORT_QUEUE"`

	// Emulator credentials; empty values fall back to the static dev
	// defaults downstream.
	DatabaseAccessKey string `env:"SEEDBOX_DATABASE_ACCESS_KEY"`
	DatabaseSecretKey string `env:"SEEDBOX_DATABASE_SECRET_KEY"`
	StorageAccessKey  string `env:"SEEDBOX_STORAGE_ACCESS_KEY"`
	StorageSecretKey  string `env:"SEEDBOX_STORAGE_SECRET_KEY"`
}

// Load parses the configuration from the process environment.
// ContentRoot defaults to the current working directory.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse environment: %w", err)
	}
	if cfg.ContentRoot == "" {
		wd, err := os.Getwd()
		if err != nil {
			return Config{}, fmt.Errorf("resolve content root: %w", err)
		}
		cfg.ContentRoot = wd
	}
	if cfg.SeedCount < 1 {
		return Config{}, fmt.Errorf("seed count must be positive, got %d", cfg.SeedCount)
	}
	return cfg, nil
}

// ImportSourcePath returns <contentRoot>/<environment>/import. The path is
// used as the shared partition key of a seeding batch and as log context; its
// contents are never read.
func (c Config) ImportSourcePath() string {
	return filepath.Join(c.ContentRoot, c.Environment, "import")
}

// EnsureImportSource creates the import-source directory if absent and
// returns its path.
func (c Config) EnsureImportSource() (string, error) {
	path := c.ImportSourcePath()
	if err := os.MkdirAll(path, 0o755); err != nil {
		return "", fmt.Errorf("create import source %s: %w", path, err)
	}
	return path, nil
}
