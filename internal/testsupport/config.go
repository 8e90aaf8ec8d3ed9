package testsupport

import (
	"path/filepath"
	"testing"

	"bagger/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.StagingDir = filepath.Join(base, "staging")
	cfgVal.Paths.OutputDir = filepath.Join(base, "output")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Drupal.BaseURL = "http://127.0.0.1:0"
	cfgVal.Drupal.HTTPTimeout = 5

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithDrupal points the test config at a fake Drupal server.
func WithDrupal(server *DrupalServer) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Drupal.BaseURL = server.URL
	}
}

// WithMediaTags sets the media use allowlist.
func WithMediaTags(tags ...string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Media.DrupalMediaTags = tags
	}
}

// WithMediaUseList enables the media use summary.
func WithMediaUseList() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Media.IncludeMediaUseList = true
	}
}

// WithPlugins replaces the configured plugin list.
func WithPlugins(names ...string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Bag.Plugins = names
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.StagingDir)
}
