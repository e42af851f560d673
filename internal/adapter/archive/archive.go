// Package archive persists zone batches in SQLite so the latest result can be
// served after a restart.
package archive

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/couchcryptid/smoke-zone-etl/internal/domain"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// schemaVersion is stored in PRAGMA user_version. Version 0 files hold
// generated_at as RFC 3339 text and are rebuilt on open.
const schemaVersion = 2

// zoneInsertChunk bounds the rows per INSERT; 13 columns per row keeps each
// statement far below SQLite's bound-variable limit.
const zoneInsertChunk = 500

const dropLegacy = `
DROP TABLE IF EXISTS zones;
DROP TABLE IF EXISTS runs;
`

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	run_id        TEXT PRIMARY KEY,
	generated_at  INTEGER NOT NULL, -- unix nanoseconds, UTC
	wind_ref_time TEXT,
	fire_count    INTEGER NOT NULL,
	params        TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_runs_generated_at ON runs(generated_at);

CREATE TABLE IF NOT EXISTS zones (
	run_id        TEXT NOT NULL REFERENCES runs(run_id) ON DELETE CASCADE,
	idx           INTEGER NOT NULL,
	source_lat    REAL NOT NULL,
	source_lon    REAL NOT NULL,
	red_lat       REAL NOT NULL,
	red_lon       REAL NOT NULL,
	red_area      REAL NOT NULL,
	red_radius    REAL NOT NULL,
	yellow_lat    REAL NOT NULL,
	yellow_lon    REAL NOT NULL,
	yellow_area   REAL NOT NULL,
	yellow_radius REAL NOT NULL,
	intensity     REAL NOT NULL,
	PRIMARY KEY (run_id, idx)
);

CREATE TABLE IF NOT EXISTS reports (
	id                INTEGER PRIMARY KEY AUTOINCREMENT,
	heard_wildfire    INTEGER NOT NULL,
	air_quality       TEXT NOT NULL,
	smoke_intensity   INTEGER NOT NULL,
	smoke_description TEXT NOT NULL,
	latitude          REAL NOT NULL,
	longitude         REAL NOT NULL,
	reported_at       INTEGER NOT NULL, -- unix nanoseconds, UTC
	received_at       INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_reports_reported_at ON reports(reported_at);
`

// Store archives zone batches. It implements pipeline.BatchLoader.
type Store struct {
	db *sqlx.DB
}

type runRow struct {
	RunID       string         `db:"run_id"`
	GeneratedAt int64          `db:"generated_at"`
	WindRefTime sql.NullString `db:"wind_ref_time"`
	FireCount   int            `db:"fire_count"`
	Params      string         `db:"params"`
}

type zoneRow struct {
	RunID        string  `db:"run_id"`
	Idx          int     `db:"idx"`
	SourceLat    float64 `db:"source_lat"`
	SourceLon    float64 `db:"source_lon"`
	RedLat       float64 `db:"red_lat"`
	RedLon       float64 `db:"red_lon"`
	RedArea      float64 `db:"red_area"`
	RedRadius    float64 `db:"red_radius"`
	YellowLat    float64 `db:"yellow_lat"`
	YellowLon    float64 `db:"yellow_lon"`
	YellowArea   float64 `db:"yellow_area"`
	YellowRadius float64 `db:"yellow_radius"`
	Intensity    float64 `db:"intensity"`
}

// Open opens (creating if needed) the SQLite archive at path and applies the schema.
func Open(ctx context.Context, path string) (*Store, error) {
	dsn := path + "?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}
	// SQLite allows a single writer.
	db.SetMaxOpenConns(1)

	if err := migrate(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate archive: %w", err)
	}
	return &Store{db: db}, nil
}

func migrate(ctx context.Context, db *sqlx.DB) error {
	var version int
	if err := db.GetContext(ctx, &version, "PRAGMA user_version"); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if version >= schemaVersion {
		return nil
	}

	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	if version < 2 {
		if _, err := tx.ExecContext(ctx, dropLegacy); err != nil {
			return fmt.Errorf("drop legacy tables: %w", err)
		}
	}
	if _, err := tx.ExecContext(ctx, schema); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d", schemaVersion)); err != nil {
		return fmt.Errorf("set schema version: %w", err)
	}
	return tx.Commit()
}

func (s *Store) Close() error {
	return s.db.Close()
}

// CheckReadiness pings the database.
func (s *Store) CheckReadiness(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// LoadBatch stores the run and all of its zones in one transaction.
func (s *Store) LoadBatch(ctx context.Context, batch domain.ZoneBatch) error {
	params, err := json.Marshal(batch.Params)
	if err != nil {
		return fmt.Errorf("encode params: %w", err)
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin archive tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	run := runRow{
		RunID:       batch.RunID,
		GeneratedAt: batch.GeneratedAt.UnixNano(),
		FireCount:   batch.FireCount,
		Params:      string(params),
	}
	if !batch.WindRefTime.IsZero() {
		run.WindRefTime = sql.NullString{String: batch.WindRefTime.UTC().Format(time.RFC3339), Valid: true}
	}
	_, err = tx.NamedExecContext(ctx, `
		INSERT INTO runs (run_id, generated_at, wind_ref_time, fire_count, params)
		VALUES (:run_id, :generated_at, :wind_ref_time, :fire_count, :params)`, run)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	for start := 0; start < len(batch.Zones); start += zoneInsertChunk {
		end := min(start+zoneInsertChunk, len(batch.Zones))
		rows := make([]zoneRow, 0, end-start)
		for i := start; i < end; i++ {
			rows = append(rows, toZoneRow(batch.RunID, i, batch.Zones[i]))
		}
		_, err = tx.NamedExecContext(ctx, `
			INSERT INTO zones (run_id, idx, source_lat, source_lon, red_lat, red_lon, red_area, red_radius,
				yellow_lat, yellow_lon, yellow_area, yellow_radius, intensity)
			VALUES (:run_id, :idx, :source_lat, :source_lon, :red_lat, :red_lon, :red_area, :red_radius,
				:yellow_lat, :yellow_lon, :yellow_area, :yellow_radius, :intensity)`, rows)
		if err != nil {
			return fmt.Errorf("insert zones %d-%d: %w", start, end-1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit archive tx: %w", err)
	}
	return nil
}

// Latest returns the most recently generated batch, or domain.ErrNoBatch.
func (s *Store) Latest(ctx context.Context) (domain.ZoneBatch, error) {
	var run runRow
	err := s.db.GetContext(ctx, &run, `
		SELECT run_id, generated_at, wind_ref_time, fire_count, params
		FROM runs ORDER BY generated_at DESC, rowid DESC LIMIT 1`)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ZoneBatch{}, domain.ErrNoBatch
	}
	if err != nil {
		return domain.ZoneBatch{}, fmt.Errorf("query latest run: %w", err)
	}
	return s.hydrate(ctx, run)
}

// Prune deletes runs generated before cutoff and returns how many were removed.
func (s *Store) Prune(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM runs WHERE generated_at < ?`, cutoff.UnixNano())
	if err != nil {
		return 0, fmt.Errorf("prune runs: %w", err)
	}
	return res.RowsAffected()
}

func (s *Store) hydrate(ctx context.Context, run runRow) (domain.ZoneBatch, error) {
	batch := domain.ZoneBatch{
		RunID:       run.RunID,
		GeneratedAt: time.Unix(0, run.GeneratedAt).UTC(),
		FireCount:   run.FireCount,
	}
	if run.WindRefTime.Valid {
		if t, err := time.Parse(time.RFC3339, run.WindRefTime.String); err == nil {
			batch.WindRefTime = t
		}
	}
	if err := json.Unmarshal([]byte(run.Params), &batch.Params); err != nil {
		return domain.ZoneBatch{}, fmt.Errorf("decode params: %w", err)
	}

	var rows []zoneRow
	err := s.db.SelectContext(ctx, &rows, `
		SELECT run_id, idx, source_lat, source_lon, red_lat, red_lon, red_area, red_radius,
			yellow_lat, yellow_lon, yellow_area, yellow_radius, intensity
		FROM zones WHERE run_id = ? ORDER BY idx`, run.RunID)
	if err != nil {
		return domain.ZoneBatch{}, fmt.Errorf("query zones: %w", err)
	}

	batch.Zones = make([]domain.DispersedZone, len(rows))
	for i, r := range rows {
		batch.Zones[i] = fromZoneRow(r)
	}
	return batch, nil
}

func toZoneRow(runID string, i int, z domain.DispersedZone) zoneRow {
	return zoneRow{
		RunID:        runID,
		Idx:          i,
		SourceLat:    z.SourceLat,
		SourceLon:    z.SourceLon,
		RedLat:       z.RedLat,
		RedLon:       z.RedLon,
		RedArea:      z.RedArea,
		RedRadius:    z.RedRadius,
		YellowLat:    z.YellowLat,
		YellowLon:    z.YellowLon,
		YellowArea:   z.YellowArea,
		YellowRadius: z.YellowRadius,
		Intensity:    z.Intensity,
	}
}

func fromZoneRow(r zoneRow) domain.DispersedZone {
	return domain.DispersedZone{
		SourceLat:    r.SourceLat,
		SourceLon:    r.SourceLon,
		RedLat:       r.RedLat,
		RedLon:       r.RedLon,
		RedArea:      r.RedArea,
		RedRadius:    r.RedRadius,
		YellowLat:    r.YellowLat,
		YellowLon:    r.YellowLon,
		YellowArea:   r.YellowArea,
		YellowRadius: r.YellowRadius,
		Intensity:    r.Intensity,
	}
}
