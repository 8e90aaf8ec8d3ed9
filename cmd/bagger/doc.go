// Package main hosts the bagger CLI entrypoint and command graph.
//
// Commands resolve configuration once through commandContext, then hand off
// to the internal packages: create runs the workflow builder, attach-media
// runs only the media plugin against an existing bag, inspect validates a
// bag on disk, history reads the run ledger, status runs preflight checks,
// and staging prunes leftover download directories. Errors carry the
// services markers so main can pick an exit code.
package main
