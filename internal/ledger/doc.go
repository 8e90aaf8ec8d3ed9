// Package ledger keeps a SQLite history of completed bag runs.
//
// The database lives at <log_dir>/bagger.db. Each successful build records
// its run ID, node, bag location, optional archive path, and payload totals
// so operators can answer "when was this node last bagged, and where".
package ledger
