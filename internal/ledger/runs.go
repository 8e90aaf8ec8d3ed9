package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Run is one completed bag build.
type Run struct {
	ID             int64
	RunID          string
	NodeID         string
	BagName        string
	BagPath        string
	SerializedPath string
	PayloadFiles   int
	PayloadBytes   int64
	CreatedAt      time.Time
}

const runColumns = "id, run_id, node_id, bag_name, bag_path, serialized_path, payload_files, payload_bytes, created_at"

// Record inserts run and returns it with ID and CreatedAt populated.
func (s *Store) Record(ctx context.Context, run Run) (Run, error) {
	if strings.TrimSpace(run.RunID) == "" || strings.TrimSpace(run.NodeID) == "" {
		return Run{}, errors.New("record run: run id and node id are required")
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now()
	}
	run.CreatedAt = run.CreatedAt.UTC()

	res, err := s.execWithRetry(
		ctx,
		`INSERT INTO bag_runs (
            run_id, node_id, bag_name, bag_path, serialized_path,
            payload_files, payload_bytes, created_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		run.RunID,
		run.NodeID,
		run.BagName,
		run.BagPath,
		nullableString(run.SerializedPath),
		run.PayloadFiles,
		run.PayloadBytes,
		run.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return Run{}, fmt.Errorf("insert run: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return Run{}, fmt.Errorf("last insert id: %w", err)
	}
	run.ID = id
	return run, nil
}

// List returns the most recent runs, newest first. limit <= 0 returns all.
func (s *Store) List(ctx context.Context, limit int) ([]Run, error) {
	query := `SELECT ` + runColumns + ` FROM bag_runs ORDER BY created_at DESC, id DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	return s.query(ensureContext(ctx), query, args...)
}

// ByNode returns every run for nodeID, newest first.
func (s *Store) ByNode(ctx context.Context, nodeID string) ([]Run, error) {
	return s.query(
		ensureContext(ctx),
		`SELECT `+runColumns+` FROM bag_runs WHERE node_id = ? ORDER BY created_at DESC, id DESC`,
		nodeID,
	)
}

func (s *Store) query(ctx context.Context, query string, args ...any) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

func scanRun(scanner interface{ Scan(dest ...any) error }) (Run, error) {
	var (
		run        Run
		serialized sql.NullString
		createdRaw string
	)
	if err := scanner.Scan(
		&run.ID,
		&run.RunID,
		&run.NodeID,
		&run.BagName,
		&run.BagPath,
		&serialized,
		&run.PayloadFiles,
		&run.PayloadBytes,
		&createdRaw,
	); err != nil {
		return Run{}, fmt.Errorf("scan run: %w", err)
	}
	run.SerializedPath = serialized.String
	if created, err := time.Parse(time.RFC3339Nano, createdRaw); err == nil {
		run.CreatedAt = created
	}
	return run, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}
