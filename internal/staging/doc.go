// Package staging inspects and prunes the per-bag download directories that
// runs leave under staging_dir when keep_staging is set or a run fails.
package staging
