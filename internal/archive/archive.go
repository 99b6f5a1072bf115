// Package archive keeps an audit trail of validation runs in a local SQLite
// database. Each run is stored once and never read back by the validator
// itself.
package archive

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/diveops/deco-validate/pkg/migrate"
)

// ErrNotFound is returned when no run matches a lookup
var ErrNotFound = errors.New("run not found")

//go:embed migrations/*.sql
var migrations embed.FS

// Migrations returns the archive schema migrations
func Migrations() migrate.Source {
	return migrate.NewFSSource(migrations, "migrations")
}

// Run is one archived validation
type Run struct {
	ID           uuid.UUID
	CreatedAt    time.Time
	ToolVersion  string
	InputHash    string
	GFLow        float64
	GFHigh       float64
	CeilingM     float64
	TTSMin       float64
	NDLMin       *uint64
	DecoRequired bool
	Output       []byte
}

// Store writes runs to a SQLite database
type Store struct {
	db     *sql.DB
	path   string
	logger *zap.SugaredLogger
}

// Open opens (creating if needed) the archive at path and brings its schema
// up to date
func Open(ctx context.Context, path string, logger *zap.SugaredLogger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open archive database: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping archive database: %w", err)
	}

	if err := migrate.NewMigrator(db, Migrations(), logger).Up(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate archive schema: %w", err)
	}

	return &Store{db: db, path: path, logger: logger}, nil
}

// Close closes the database
func (s *Store) Close() error {
	return s.db.Close()
}

// Record inserts a run, assigning an ID and timestamp when they are unset,
// and returns the ID it was stored under
func (s *Store) Record(ctx context.Context, run Run) (uuid.UUID, error) {
	if run.ID == uuid.Nil {
		run.ID = uuid.New()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}

	var ndl sql.NullInt64
	if run.NDLMin != nil {
		ndl = sql.NullInt64{Int64: int64(*run.NDLMin), Valid: true}
	}

	query := `INSERT INTO runs (id, created_at, tool_version, input_hash, gf_low, gf_high,
		ceiling_m, tts_min, ndl_min, deco_required, output)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := s.db.ExecContext(ctx, query,
		run.ID.String(), run.CreatedAt, run.ToolVersion, run.InputHash, run.GFLow, run.GFHigh,
		run.CeilingM, run.TTSMin, ndl, run.DecoRequired, run.Output)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to insert run: %w", err)
	}

	s.logger.Debugf("archived run %s (input %s) to %s", run.ID, run.InputHash, s.path)
	return run.ID, nil
}

// Get returns the run stored under id
func (s *Store) Get(ctx context.Context, id uuid.UUID) (Run, error) {
	query := `SELECT id, created_at, tool_version, input_hash, gf_low, gf_high,
		ceiling_m, tts_min, ndl_min, deco_required, output FROM runs WHERE id = ?`
	run, err := scanRun(s.db.QueryRowContext(ctx, query, id.String()))
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return run, err
}

// ByInputHash returns every run of the given input, oldest first
func (s *Store) ByInputHash(ctx context.Context, hash string) ([]Run, error) {
	query := `SELECT id, created_at, tool_version, input_hash, gf_low, gf_high,
		ceiling_m, tts_min, ndl_min, deco_required, output FROM runs
		WHERE input_hash = ? ORDER BY created_at, id`
	rows, err := s.db.QueryContext(ctx, query, hash)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
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

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (Run, error) {
	var (
		run Run
		id  string
		ndl sql.NullInt64
	)
	err := row.Scan(&id, &run.CreatedAt, &run.ToolVersion, &run.InputHash, &run.GFLow, &run.GFHigh,
		&run.CeilingM, &run.TTSMin, &ndl, &run.DecoRequired, &run.Output)
	if err != nil {
		return Run{}, err
	}

	run.ID, err = uuid.Parse(id)
	if err != nil {
		return Run{}, fmt.Errorf("corrupt run id %q: %w", id, err)
	}
	if ndl.Valid {
		v := uint64(ndl.Int64)
		run.NDLMin = &v
	}
	return run, nil
}
