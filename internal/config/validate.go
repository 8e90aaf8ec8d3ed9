package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// SupportedAlgorithms lists the manifest checksum algorithms bags may use.
var SupportedAlgorithms = []string{"md5", "sha1", "sha256", "sha512"}

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateDrupal(); err != nil {
		return err
	}
	if err := c.validateBag(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateDrupal() error {
	if c.Drupal.BaseURL == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			defaultPath = defaultConfigPath
		}
		return fmt.Errorf("drupal.base_url is required. Set DRUPAL_BASE_URL env var or edit %s (create with 'bagger config init')", defaultPath)
	}
	parsed, err := url.Parse(c.Drupal.BaseURL)
	if err != nil {
		return fmt.Errorf("drupal.base_url: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("drupal.base_url must use http or https, got %q", c.Drupal.BaseURL)
	}
	if parsed.Host == "" {
		return fmt.Errorf("drupal.base_url must include a host, got %q", c.Drupal.BaseURL)
	}
	if c.Drupal.HTTPTimeout <= 0 {
		return errors.New("drupal.http_timeout must be positive")
	}
	return nil
}

func (c *Config) validateBag() error {
	switch c.Bag.NameTemplate {
	case NameTemplateNodeID, NameTemplateUUID:
	default:
		return fmt.Errorf("bag.name_template must be %q or %q, got %q", NameTemplateNodeID, NameTemplateUUID, c.Bag.NameTemplate)
	}
	switch c.Bag.Serialize {
	case SerializeNone, SerializeTar, SerializeTGZ:
	default:
		return fmt.Errorf("bag.serialize must be empty, %q or %q, got %q", SerializeTar, SerializeTGZ, c.Bag.Serialize)
	}
	for _, alg := range c.Bag.Algorithms {
		if !isSupportedAlgorithm(alg) {
			return fmt.Errorf("bag.algorithms: unsupported algorithm %q (supported: %s)", alg, strings.Join(SupportedAlgorithms, ", "))
		}
	}
	if len(c.Bag.Plugins) == 0 {
		return errors.New("bag.plugins must list at least one plugin")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	return nil
}

func isSupportedAlgorithm(alg string) bool {
	for _, supported := range SupportedAlgorithms {
		if alg == supported {
			return true
		}
	}
	return false
}
