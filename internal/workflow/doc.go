// Package workflow builds one bag per Drupal node.
//
// Builder.Create takes a per-node file lock in the staging root, fetches the
// node JSON, names the bag from the node ID or UUID, and runs the configured
// plugins in order against a fresh bag in the output directory. The bag is
// then finalized, optionally serialized to tar or tgz, and recorded in the
// ledger. Staging files are removed afterwards unless bag.keep_staging is set.
package workflow
