// Package storage keeps a history of analysis runs in SQLite: the run
// summary, the ranked wells table and the field-wide series pairs.
//
// Old runs are rotated out so the database does not grow without bound.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rewired-gh/seiscorr/internal/models"
	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a run does not exist.
var ErrNotFound = errors.New("run not found")

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id              TEXT PRIMARY KEY,
	created_at      INTEGER NOT NULL,
	events_source   TEXT NOT NULL,
	wells_source    TEXT NOT NULL,
	volumes_source  TEXT NOT NULL,
	min_magnitude   REAL,
	event_count     INTEGER NOT NULL,
	period_count    INTEGER NOT NULL,
	well_count      INTEGER NOT NULL,
	dropped_rows    INTEGER NOT NULL,
	join_mismatch   INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS runs_created_at ON runs (created_at);

CREATE TABLE IF NOT EXISTS well_correlations (
	run_id          TEXT NOT NULL REFERENCES runs (id) ON DELETE CASCADE,
	rank            INTEGER NOT NULL,
	well_id         TEXT NOT NULL,
	name            TEXT NOT NULL,
	type            TEXT NOT NULL,
	x               REAL NOT NULL,
	y               REAL NOT NULL,
	z               REAL NOT NULL,
	oil             REAL NOT NULL,
	water           REAL NOT NULL,
	steam_injection REAL NOT NULL,
	water_injection REAL NOT NULL,
	injected        REAL NOT NULL,
	produced        REAL NOT NULL,
	net             REAL NOT NULL,
	correlation     REAL,
	PRIMARY KEY (run_id, well_id)
);

CREATE TABLE IF NOT EXISTS series_correlations (
	run_id      TEXT NOT NULL REFERENCES runs (id) ON DELETE CASCADE,
	series_a    TEXT NOT NULL,
	series_b    TEXT NOT NULL,
	correlation REAL,
	PRIMARY KEY (run_id, series_a, series_b)
);
`

// Storage persists run history in a SQLite database.
type Storage struct {
	db *sql.DB
}

func toMillis(t time.Time) int64 {
	return t.UTC().UnixMilli()
}

func fromMillis(v int64) time.Time {
	return time.UnixMilli(v).UTC()
}

func nullable(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

func pointer(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}

// Open opens (creating if needed) the database at path and applies the schema.
func Open(path string) (*Storage, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("storage path is required")
	}
	clean := filepath.Clean(path)
	if err := os.MkdirAll(filepath.Dir(clean), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}

	dsn := clean + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000&_synchronous=NORMAL"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &Storage{db: db}, nil
}

// Close closes the database handle.
func (s *Storage) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Storage) ready(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.db == nil {
		return errors.New("storage is not configured")
	}
	return nil
}

// SaveRun stores a run with its wells and series pairs in one transaction.
func (s *Storage) SaveRun(ctx context.Context, run *models.Run, wells []models.WellCorrelation, series []models.SeriesCorrelation) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	if err := run.Validate(); err != nil {
		return fmt.Errorf("invalid run: %w", err)
	}
	for i := range wells {
		if err := wells[i].Validate(); err != nil {
			return fmt.Errorf("invalid well %s: %w", wells[i].WellID, err)
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (
		   id, created_at, events_source, wells_source, volumes_source, min_magnitude,
		   event_count, period_count, well_count, dropped_rows, join_mismatch
		 ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID,
		toMillis(run.CreatedAt),
		run.EventsSource,
		run.WellsSource,
		run.VolumesSource,
		nullable(run.MinMagnitude),
		run.EventCount,
		run.PeriodCount,
		run.WellCount,
		run.DroppedRows,
		run.JoinMismatch,
	)
	if err != nil {
		return fmt.Errorf("insert run %s: %w", run.ID, err)
	}

	for _, w := range wells {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO well_correlations (
			   run_id, rank, well_id, name, type, x, y, z,
			   oil, water, steam_injection, water_injection, injected, produced, net, correlation
			 ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			run.ID, w.Rank, w.WellID, w.Name, w.TypeLabel, w.X, w.Y, w.Z,
			w.Oil, w.Water, w.SteamInjection, w.WaterInjection, w.Injected, w.Produced, w.Net,
			nullable(w.Correlation),
		)
		if err != nil {
			return fmt.Errorf("insert well %s: %w", w.WellID, err)
		}
	}

	for _, p := range series {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO series_correlations (run_id, series_a, series_b, correlation) VALUES (?, ?, ?, ?)`,
			run.ID, p.SeriesA, p.SeriesB, nullable(p.Correlation),
		)
		if err != nil {
			return fmt.Errorf("insert series pair %s/%s: %w", p.SeriesA, p.SeriesB, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit run %s: %w", run.ID, err)
	}
	return nil
}

const runColumns = `id, created_at, events_source, wells_source, volumes_source, min_magnitude,
	event_count, period_count, well_count, dropped_rows, join_mismatch`

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (models.Run, error) {
	var (
		r         models.Run
		createdAt int64
		minMag    sql.NullFloat64
	)
	err := row.Scan(&r.ID, &createdAt, &r.EventsSource, &r.WellsSource, &r.VolumesSource, &minMag,
		&r.EventCount, &r.PeriodCount, &r.WellCount, &r.DroppedRows, &r.JoinMismatch)
	if err != nil {
		return models.Run{}, err
	}
	r.CreatedAt = fromMillis(createdAt)
	r.MinMagnitude = pointer(minMag)
	return r, nil
}

// GetRun returns one run by ID.
func (s *Storage) GetRun(ctx context.Context, id string) (*models.Run, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	row := s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id = ?`, id)
	r, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("get run %s: %w", id, err)
	}
	return &r, nil
}

// ListRuns returns up to limit runs, newest first. limit <= 0 returns all.
func (s *Storage) ListRuns(ctx context.Context, limit int) ([]models.Run, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+runColumns+` FROM runs ORDER BY created_at DESC, id ASC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []models.Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// GetWellCorrelations returns the wells table of a run in rank order.
func (s *Storage) GetWellCorrelations(ctx context.Context, runID string) ([]models.WellCorrelation, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT rank, well_id, name, type, x, y, z,
		        oil, water, steam_injection, water_injection, injected, produced, net, correlation
		   FROM well_correlations WHERE run_id = ? ORDER BY rank ASC`, runID)
	if err != nil {
		return nil, fmt.Errorf("get wells for run %s: %w", runID, err)
	}
	defer rows.Close()

	var wells []models.WellCorrelation
	for rows.Next() {
		w := models.WellCorrelation{RunID: runID}
		var corr sql.NullFloat64
		if err := rows.Scan(&w.Rank, &w.WellID, &w.Name, &w.TypeLabel, &w.X, &w.Y, &w.Z,
			&w.Oil, &w.Water, &w.SteamInjection, &w.WaterInjection, &w.Injected, &w.Produced, &w.Net, &corr); err != nil {
			return nil, fmt.Errorf("scan well: %w", err)
		}
		w.Correlation = pointer(corr)
		wells = append(wells, w)
	}
	return wells, rows.Err()
}

// GetSeriesCorrelations returns the field-wide series pairs of a run.
func (s *Storage) GetSeriesCorrelations(ctx context.Context, runID string) ([]models.SeriesCorrelation, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT series_a, series_b, correlation FROM series_correlations
		  WHERE run_id = ? ORDER BY series_a, series_b`, runID)
	if err != nil {
		return nil, fmt.Errorf("get series for run %s: %w", runID, err)
	}
	defer rows.Close()

	var pairs []models.SeriesCorrelation
	for rows.Next() {
		p := models.SeriesCorrelation{RunID: runID}
		var corr sql.NullFloat64
		if err := rows.Scan(&p.SeriesA, &p.SeriesB, &corr); err != nil {
			return nil, fmt.Errorf("scan series pair: %w", err)
		}
		p.Correlation = pointer(corr)
		pairs = append(pairs, p)
	}
	return pairs, rows.Err()
}

// RotateRuns keeps the newest maxRuns runs and deletes the rest with their
// rows. It returns the number of runs removed. maxRuns <= 0 disables rotation.
func (s *Storage) RotateRuns(ctx context.Context, maxRuns int) (int, error) {
	if err := s.ready(ctx); err != nil {
		return 0, err
	}
	if maxRuns <= 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	const stale = `SELECT id FROM runs ORDER BY created_at DESC, id ASC LIMIT -1 OFFSET ?`
	for _, table := range []string{"well_correlations", "series_correlations"} {
		if _, err := tx.ExecContext(ctx, `DELETE FROM `+table+` WHERE run_id IN (`+stale+`)`, maxRuns); err != nil {
			return 0, fmt.Errorf("rotate %s: %w", table, err)
		}
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM runs WHERE id IN (`+stale+`)`, maxRuns)
	if err != nil {
		return 0, fmt.Errorf("rotate runs: %w", err)
	}
	removed, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit rotation: %w", err)
	}
	return int(removed), nil
}
