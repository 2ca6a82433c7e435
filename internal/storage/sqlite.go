package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/TickyWill/BiblioMeter-sub001/internal/fingerprint"
	"github.com/TickyWill/BiblioMeter-sub001/internal/reference"
	"github.com/TickyWill/BiblioMeter-sub001/internal/resolve"
)

// DB wraps a SQLite database connection holding run history.
type DB struct {
	db *sql.DB
}

// Run summarizes one stored resolution run.
type Run struct {
	ID             string    `json:"id"`
	CreatedAt      time.Time `json:"created_at"`
	CorpusYears    []string  `json:"corpus_years"`
	RequestedDepth int       `json:"requested_depth"`
	EffectiveDepth int       `json:"effective_depth"`
	Submitted      int       `json:"submitted"`
	Orphans        int       `json:"orphans"`
	Homonyms       int       `json:"homonyms"`
	Dropped        int       `json:"dropped"`
}

// RunData is what SaveRun persists alongside the summary.
type RunData struct {
	Submitted    []resolve.Submission
	Orphans      []reference.AuthorRow
	Fingerprints []fingerprint.Entry
}

// ErrRunNotFound is returned by GetRun for an unknown ID.
var ErrRunNotFound = errors.New("run not found")

// NewRunID returns a fresh run identifier.
func NewRunID() string {
	return uuid.NewString()
}

// OpenDB opens or creates a SQLite database at the given path.
func OpenDB(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("creating database dir: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	db.SetMaxOpenConns(1) // SQLite doesn't support concurrent writes

	if err := createSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &DB{db: db}, nil
}

// Close closes the database connection.
func (d *DB) Close() error {
	return d.db.Close()
}

func createSchema(db *sql.DB) error {
	schema := `
		CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			created_at INTEGER NOT NULL,
			corpus_years TEXT NOT NULL,
			requested_depth INTEGER NOT NULL,
			effective_depth INTEGER NOT NULL,
			submitted INTEGER NOT NULL,
			orphans INTEGER NOT NULL,
			homonyms INTEGER NOT NULL,
			dropped INTEGER NOT NULL
		);

		CREATE TABLE IF NOT EXISTS submitted (
			run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
			pub_id TEXT NOT NULL,
			author_idx INTEGER NOT NULL,
			author TEXT NOT NULL,
			last_name TEXT NOT NULL,
			first_initials TEXT NOT NULL,
			pub_year INTEGER NOT NULL,
			homonym TEXT NOT NULL,
			staff_id TEXT NOT NULL,
			registry_year TEXT NOT NULL,
			method TEXT NOT NULL,
			attributes_json TEXT
		);
		CREATE INDEX IF NOT EXISTS idx_submitted_run ON submitted(run_id);

		CREATE TABLE IF NOT EXISTS orphans (
			run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
			pub_id TEXT NOT NULL,
			author_idx INTEGER NOT NULL,
			author TEXT NOT NULL,
			last_name TEXT NOT NULL,
			first_initials TEXT NOT NULL,
			pub_year INTEGER NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_orphans_run ON orphans(run_id);

		CREATE TABLE IF NOT EXISTS fingerprints (
			run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
			pub_id TEXT NOT NULL,
			fingerprint TEXT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_fingerprints_run ON fingerprints(run_id);
	`

	_, err := db.Exec(schema)
	return err
}

// SaveRun stores a run summary and its rows in one transaction.
func (d *DB) SaveRun(run Run, data RunData) error {
	tx, err := d.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT INTO runs (id, created_at, corpus_years, requested_depth, effective_depth,
			submitted, orphans, homonyms, dropped)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.CreatedAt.Unix(), strings.Join(run.CorpusYears, ","),
		run.RequestedDepth, run.EffectiveDepth,
		run.Submitted, run.Orphans, run.Homonyms, run.Dropped)
	if err != nil {
		return fmt.Errorf("inserting run: %w", err)
	}

	subStmt, err := tx.Prepare(`
		INSERT INTO submitted (run_id, pub_id, author_idx, author, last_name, first_initials,
			pub_year, homonym, staff_id, registry_year, method, attributes_json)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing submitted insert: %w", err)
	}
	defer subStmt.Close()

	for _, s := range data.Submitted {
		var attrs []byte
		if len(s.Employee.Attributes) > 0 {
			if attrs, err = json.Marshal(s.Employee.Attributes); err != nil {
				return fmt.Errorf("encoding attributes for %s: %w", s.Key(), err)
			}
		}
		_, err := subStmt.Exec(run.ID, s.PubID, s.AuthorIdx, s.Author, s.LastName, s.Initials,
			s.PubYear, string(s.Homonym), s.Employee.StaffID, s.Year, string(s.Method), nullString(attrs))
		if err != nil {
			return fmt.Errorf("inserting submitted %s: %w", s.Key(), err)
		}
	}

	orphanStmt, err := tx.Prepare(`
		INSERT INTO orphans (run_id, pub_id, author_idx, author, last_name, first_initials, pub_year)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing orphans insert: %w", err)
	}
	defer orphanStmt.Close()

	for _, o := range data.Orphans {
		if _, err := orphanStmt.Exec(run.ID, o.PubID, o.AuthorIdx, o.Author, o.LastName, o.Initials, o.PubYear); err != nil {
			return fmt.Errorf("inserting orphan %s: %w", o.Key(), err)
		}
	}

	fpStmt, err := tx.Prepare(`INSERT INTO fingerprints (run_id, pub_id, fingerprint) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing fingerprints insert: %w", err)
	}
	defer fpStmt.Close()

	for _, e := range data.Fingerprints {
		if _, err := fpStmt.Exec(run.ID, e.PubID, e.Fingerprint); err != nil {
			return fmt.Errorf("inserting fingerprint %s: %w", e.PubID, err)
		}
	}

	return tx.Commit()
}

const selectRunFields = `id, created_at, corpus_years, requested_depth, effective_depth,
	submitted, orphans, homonyms, dropped`

// ListRuns returns stored runs, most recent first. limit <= 0 returns all.
func (d *DB) ListRuns(limit int) ([]Run, error) {
	query := `SELECT ` + selectRunFields + ` FROM runs ORDER BY created_at DESC, id`
	var args []any
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := d.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
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

// GetRun returns one run by ID.
func (d *DB) GetRun(id string) (Run, error) {
	row := d.db.QueryRow(`SELECT `+selectRunFields+` FROM runs WHERE id = ?`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	return run, err
}

// RunSubmittedStaff returns, for a run, the number of submitted rows per
// staff ID.
func (d *DB) RunSubmittedStaff(id string) (map[string]int, error) {
	rows, err := d.db.Query(`SELECT staff_id, COUNT(*) FROM submitted WHERE run_id = ? GROUP BY staff_id`, id)
	if err != nil {
		return nil, fmt.Errorf("querying submitted: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var staffID string
		var n int
		if err := rows.Scan(&staffID, &n); err != nil {
			return nil, fmt.Errorf("scanning submitted: %w", err)
		}
		counts[staffID] = n
	}
	return counts, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(s scanner) (Run, error) {
	var (
		run       Run
		createdAt int64
		years     string
	)
	err := s.Scan(&run.ID, &createdAt, &years, &run.RequestedDepth, &run.EffectiveDepth,
		&run.Submitted, &run.Orphans, &run.Homonyms, &run.Dropped)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Run{}, err
		}
		return Run{}, fmt.Errorf("scanning run: %w", err)
	}
	run.CreatedAt = time.Unix(createdAt, 0).UTC()
	if years != "" {
		run.CorpusYears = strings.Split(years, ",")
	}
	return run, nil
}

func nullString(b []byte) sql.NullString {
	if len(b) == 0 {
		return sql.NullString{}
	}
	return sql.NullString{String: string(b), Valid: true}
}
