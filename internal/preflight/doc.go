// Package preflight provides readiness checks for the Drupal site and the
// filesystem paths bagger writes to. The "bagger status" command runs
// RunAll and renders one row per check.
package preflight
