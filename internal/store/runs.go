package store

import (
	"database/sql"
	"time"
)

const runColumns = `id, created_at, root, artifact, format, compressed,
	total_files, included_files, skipped_files, total_bytes,
	token_estimate, truncated, duration_ms, version`

// InsertRun inserts a completed run and returns its ID.
// A zero CreatedAt is filled with the current time.
func (db *DB) InsertRun(r *Run) (int64, error) {
	createdAt := r.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	result, err := db.conn.Exec(
		`INSERT INTO runs
		(created_at, root, artifact, format, compressed, total_files,
		 included_files, skipped_files, total_bytes, token_estimate,
		 truncated, duration_ms, version)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		createdAt.Format(time.RFC3339), r.Root, r.Artifact, r.Format,
		r.Compressed, r.TotalFiles, r.IncludedFiles, r.SkippedFiles,
		r.TotalBytes, r.TokenEstimate, r.Truncated, r.DurationMs, r.Version,
	)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

// LatestRun returns the most recent run for the given root, or the most
// recent run overall when root is empty. Returns nil if none exist.
func (db *DB) LatestRun(root string) (*Run, error) {
	var row *sql.Row
	if root == "" {
		row = db.conn.QueryRow(
			"SELECT " + runColumns + " FROM runs ORDER BY id DESC LIMIT 1")
	} else {
		row = db.conn.QueryRow(
			"SELECT "+runColumns+" FROM runs WHERE root = ? ORDER BY id DESC LIMIT 1", root)
	}
	return scanRun(row)
}

// GetRun returns a run by ID, or nil if it does not exist.
func (db *DB) GetRun(id int64) (*Run, error) {
	row := db.conn.QueryRow("SELECT "+runColumns+" FROM runs WHERE id = ?", id)
	return scanRun(row)
}

// ListRuns returns up to limit runs, newest first. An empty root lists
// runs across all roots; a non-positive limit applies a default of 20.
func (db *DB) ListRuns(root string, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}

	var (
		rows *sql.Rows
		err  error
	)
	if root == "" {
		rows, err = db.conn.Query(
			"SELECT "+runColumns+" FROM runs ORDER BY id DESC LIMIT ?", limit)
	} else {
		rows, err = db.conn.Query(
			"SELECT "+runColumns+" FROM runs WHERE root = ? ORDER BY id DESC LIMIT ?", root, limit)
	}
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var runs []Run
	for rows.Next() {
		var r Run
		var createdAt string
		if err := rows.Scan(
			&r.ID, &createdAt, &r.Root, &r.Artifact, &r.Format, &r.Compressed,
			&r.TotalFiles, &r.IncludedFiles, &r.SkippedFiles, &r.TotalBytes,
			&r.TokenEstimate, &r.Truncated, &r.DurationMs, &r.Version,
		); err != nil {
			return nil, err
		}
		r.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// PruneRuns deletes all but the newest keep runs for the given root.
func (db *DB) PruneRuns(root string, keep int) (int64, error) {
	if keep < 0 {
		keep = 0
	}
	result, err := db.conn.Exec(
		`DELETE FROM runs WHERE root = ? AND id NOT IN
		 (SELECT id FROM runs WHERE root = ? ORDER BY id DESC LIMIT ?)`,
		root, root, keep,
	)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func scanRun(row *sql.Row) (*Run, error) {
	var r Run
	var createdAt string
	err := row.Scan(
		&r.ID, &createdAt, &r.Root, &r.Artifact, &r.Format, &r.Compressed,
		&r.TotalFiles, &r.IncludedFiles, &r.SkippedFiles, &r.TotalBytes,
		&r.TokenEstimate, &r.Truncated, &r.DurationMs, &r.Version,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	r.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return &r, nil
}

// Delta compares two runs, typically consecutive runs of the same root.
// Returns nil if either side is missing.
func Delta(previous, current *Run) *RunDelta {
	if previous == nil || current == nil {
		return nil
	}
	return &RunDelta{
		Previous:   previous,
		Current:    current,
		FilesDelta: current.IncludedFiles - previous.IncludedFiles,
		BytesDelta: current.TotalBytes - previous.TotalBytes,
	}
}
