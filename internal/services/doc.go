// Package services defines shared utilities consumed by bag plugins and the
// Drupal integration.
//
// Key responsibilities:
//   - Context helpers that stamp node IDs, plugin names, and correlation
//     identifiers for logging.
//   - Structured error markers plus the Wrap helper that classify failures
//     (transport, malformed response, filesystem, configuration) so the CLI
//     can report them consistently.
//
// Use these helpers when wiring new plugin logic so error handling and
// observability stay uniform across bag runs.
package services
