// Package config loads, normalizes, and validates bagger configuration.
//
// Configuration is read from TOML (default ~/.config/bagger/config.toml,
// falling back to ./bagger.toml), layered over the defaults in defaults.go.
// Normalization expands ~ in paths, trims values, dedupes media tags and
// checksum algorithms, and pulls DRUPAL_BASE_URL and DRUPAL_TOKEN from the
// environment when the file leaves them empty. Missing values are defaulted,
// never treated as errors; Validate only rejects values that cannot work.
//
// Components that must not observe later changes take a snapshot instead of
// the live Config; MediaSettings is the snapshot used by the media attacher.
package config
