package testsupport

import (
	"path/filepath"
	"testing"

	"aircheck/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Station.BaseURL = "https://example.org"
	cfg.Paths.DataDir = filepath.Join(base, "data")
	cfg.Paths.FeedDir = filepath.Join(base, "feeds")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.FetchCache.Path = filepath.Join(base, "data", "fetch_cache.db")

	for _, opt := range opts {
		opt(&cfg)
	}

	return &cfg
}

// WithBaseURL overrides the station base URL on the test config.
func WithBaseURL(url string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Station.BaseURL = url
	}
}

// WithShowsPath overrides the sitemap path filter on the test config.
func WithShowsPath(path string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Station.ShowsPath = path
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.DataDir)
}
