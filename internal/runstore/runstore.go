// Package runstore keeps an append-only, queryable log of completed
// evolution runs in DuckDB: which phylogeny and parameter set produced
// which output FASTA, when, and how many mutations were laid down per
// chromosome.
//
// Grounded on internal/duckdb/store.go's database/sql + go-duckdb
// driver pattern (open-or-create, ensure-schema-on-open).
package runstore

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/marcboeker/go-duckdb"
)

// Store manages a DuckDB connection logging evolution runs.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens or creates a DuckDB database at path. An empty path opens
// an in-memory database.
func Open(path string) (*Store, error) {
	if path != "" {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("runstore: create directory: %w", err)
		}
	}

	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, fmt.Errorf("runstore: open duckdb: %w", err)
	}

	s := &Store{db: db, path: path}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("runstore: ensure schema: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying *sql.DB for direct access.
func (s *Store) DB() *sql.DB {
	return s.db
}

func (s *Store) ensureSchema() error {
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS runs (
		run_id VARCHAR PRIMARY KEY,
		started_at TIMESTAMP,
		finished_at TIMESTAMP,
		newick_path VARCHAR,
		reference_path VARCHAR,
		seed BIGINT,
		num_chromosomes INTEGER,
		status VARCHAR
	)`)
	if err != nil {
		return err
	}

	_, err = s.db.Exec(`CREATE TABLE IF NOT EXISTS chrom_runs (
		run_id VARCHAR,
		chrom_name VARCHAR,
		num_substitutions BIGINT,
		num_insertions BIGINT,
		num_deletions BIGINT,
		final_size BIGINT,
		PRIMARY KEY (run_id, chrom_name)
	)`)
	return err
}

// Run is one logged evolution run.
type Run struct {
	RunID          string
	StartedAt      string
	FinishedAt     string
	NewickPath     string
	ReferencePath  string
	Seed           int64
	NumChromosomes int
	Status         string
}

// ChromRun is one chromosome's per-run mutation tally.
type ChromRun struct {
	RunID            string
	ChromName        string
	NumSubstitutions int64
	NumInsertions    int64
	NumDeletions     int64
	FinalSize        int64
}

// InsertRun records a new run's metadata.
func (s *Store) InsertRun(r Run) error {
	_, err := s.db.Exec(`INSERT INTO runs
		(run_id, started_at, finished_at, newick_path, reference_path, seed, num_chromosomes, status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		r.RunID, r.StartedAt, r.FinishedAt, r.NewickPath, r.ReferencePath, r.Seed, r.NumChromosomes, r.Status)
	if err != nil {
		return fmt.Errorf("runstore: insert run: %w", err)
	}
	return nil
}

// UpdateRunStatus sets a run's status and finished_at timestamp.
func (s *Store) UpdateRunStatus(runID, status, finishedAt string) error {
	_, err := s.db.Exec(`UPDATE runs SET status = ?, finished_at = ? WHERE run_id = ?`,
		status, finishedAt, runID)
	if err != nil {
		return fmt.Errorf("runstore: update run status: %w", err)
	}
	return nil
}

// InsertChromRuns batch-inserts per-chromosome tallies for a run.
func (s *Store) InsertChromRuns(rows []ChromRun) error {
	if len(rows) == 0 {
		return nil
	}
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("runstore: begin transaction: %w", err)
	}
	stmt, err := tx.Prepare(`INSERT INTO chrom_runs
		(run_id, chrom_name, num_substitutions, num_insertions, num_deletions, final_size)
		VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("runstore: prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range rows {
		if _, err := stmt.Exec(r.RunID, r.ChromName, r.NumSubstitutions, r.NumInsertions, r.NumDeletions, r.FinalSize); err != nil {
			tx.Rollback()
			return fmt.Errorf("runstore: insert chrom run: %w", err)
		}
	}
	return tx.Commit()
}

// GetRun looks up a run by id, returning sql.ErrNoRows if not found.
func (s *Store) GetRun(runID string) (Run, error) {
	var r Run
	err := s.db.QueryRow(`SELECT run_id, started_at, finished_at, newick_path, reference_path, seed, num_chromosomes, status
		FROM runs WHERE run_id = ?`, runID).Scan(
		&r.RunID, &r.StartedAt, &r.FinishedAt, &r.NewickPath, &r.ReferencePath, &r.Seed, &r.NumChromosomes, &r.Status)
	if err != nil {
		return Run{}, err
	}
	return r, nil
}

// ListChromRuns returns the per-chromosome tallies for a run.
func (s *Store) ListChromRuns(runID string) ([]ChromRun, error) {
	rows, err := s.db.Query(`SELECT run_id, chrom_name, num_substitutions, num_insertions, num_deletions, final_size
		FROM chrom_runs WHERE run_id = ? ORDER BY chrom_name`, runID)
	if err != nil {
		return nil, fmt.Errorf("runstore: query chrom runs: %w", err)
	}
	defer rows.Close()

	var out []ChromRun
	for rows.Next() {
		var c ChromRun
		if err := rows.Scan(&c.RunID, &c.ChromName, &c.NumSubstitutions, &c.NumInsertions, &c.NumDeletions, &c.FinalSize); err != nil {
			return nil, fmt.Errorf("runstore: scan chrom run: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("runstore: iterate chrom runs: %w", err)
	}
	return out, nil
}

// ListRuns returns all logged runs, most recently started first.
func (s *Store) ListRuns() ([]Run, error) {
	rows, err := s.db.Query(`SELECT run_id, started_at, finished_at, newick_path, reference_path, seed, num_chromosomes, status
		FROM runs ORDER BY started_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("runstore: query runs: %w", err)
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		var r Run
		if err := rows.Scan(&r.RunID, &r.StartedAt, &r.FinishedAt, &r.NewickPath, &r.ReferencePath, &r.Seed, &r.NumChromosomes, &r.Status); err != nil {
			return nil, fmt.Errorf("runstore: scan run: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("runstore: iterate runs: %w", err)
	}
	return out, nil
}
