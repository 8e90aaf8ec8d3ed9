package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeDrupal()
	c.normalizeMedia()
	c.normalizeBag()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.StagingDir) == "" {
		c.Paths.StagingDir = defaultStagingDir
	}
	if c.Paths.StagingDir, err = expandPath(c.Paths.StagingDir); err != nil {
		return fmt.Errorf("paths.staging_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.OutputDir) == "" {
		c.Paths.OutputDir = defaultOutputDir
	}
	if c.Paths.OutputDir, err = expandPath(c.Paths.OutputDir); err != nil {
		return fmt.Errorf("paths.output_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeDrupal() {
	c.Drupal.BaseURL = strings.TrimSpace(c.Drupal.BaseURL)
	if c.Drupal.BaseURL == "" {
		if value, ok := os.LookupEnv("DRUPAL_BASE_URL"); ok {
			c.Drupal.BaseURL = strings.TrimSpace(value)
		}
	}
	c.Drupal.BaseURL = strings.TrimRight(c.Drupal.BaseURL, "/")
	c.Drupal.Token = strings.TrimSpace(c.Drupal.Token)
	if c.Drupal.Token == "" {
		if value, ok := os.LookupEnv("DRUPAL_TOKEN"); ok {
			c.Drupal.Token = strings.TrimSpace(value)
		}
	}
	if c.Drupal.HTTPTimeout <= 0 {
		c.Drupal.HTTPTimeout = defaultHTTPTimeout
	}
}

func (c *Config) normalizeMedia() {
	// Tag URLs are compared verbatim against term URLs, so only surrounding
	// whitespace is removed.
	tags := make([]string, 0, len(c.Media.DrupalMediaTags))
	seen := make(map[string]struct{}, len(c.Media.DrupalMediaTags))
	for _, tag := range c.Media.DrupalMediaTags {
		trimmed := strings.TrimSpace(tag)
		if trimmed == "" {
			continue
		}
		if _, exists := seen[trimmed]; exists {
			continue
		}
		seen[trimmed] = struct{}{}
		tags = append(tags, trimmed)
	}
	c.Media.DrupalMediaTags = tags
}

func (c *Config) normalizeBag() {
	c.Bag.NameTemplate = strings.ToLower(strings.TrimSpace(c.Bag.NameTemplate))
	if c.Bag.NameTemplate == "" {
		c.Bag.NameTemplate = defaultNameTemplate
	}
	c.Bag.Serialize = strings.ToLower(strings.TrimSpace(c.Bag.Serialize))
	if c.Bag.Serialize == "tar.gz" {
		c.Bag.Serialize = SerializeTGZ
	}

	algorithms := make([]string, 0, len(c.Bag.Algorithms))
	seenAlg := make(map[string]struct{}, len(c.Bag.Algorithms))
	for _, alg := range c.Bag.Algorithms {
		normalized := strings.ToLower(strings.TrimSpace(alg))
		if normalized == "" {
			continue
		}
		if _, exists := seenAlg[normalized]; exists {
			continue
		}
		seenAlg[normalized] = struct{}{}
		algorithms = append(algorithms, normalized)
	}
	if len(algorithms) == 0 {
		algorithms = []string{defaultAlgorithm}
	}
	c.Bag.Algorithms = algorithms

	plugins := make([]string, 0, len(c.Bag.Plugins))
	for _, name := range c.Bag.Plugins {
		if trimmed := strings.TrimSpace(name); trimmed != "" {
			plugins = append(plugins, trimmed)
		}
	}
	if len(plugins) == 0 {
		plugins = []string{defaultMediaPluginName}
	}
	c.Bag.Plugins = plugins

	if c.Bag.Info == nil {
		c.Bag.Info = map[string]string{}
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
