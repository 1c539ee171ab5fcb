// Package store keeps a log of viewport summaries in SQLite so sessions
// can be compared later.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"ejmap/internal/histogram"
	"ejmap/internal/rangefilter"
	"ejmap/internal/viewport"
)

const schema = `
CREATE TABLE IF NOT EXISTS snapshots (
  id                TEXT PRIMARY KEY,
  taken_at          INTEGER NOT NULL,
  style             TEXT NOT NULL,
  indicator         TEXT NOT NULL,
  zoom              REAL NOT NULL,
  lon               REAL NOT NULL,
  lat               REAL NOT NULL,
  available         INTEGER NOT NULL,
  total_population  REAL,
  distinct_features INTEGER,
  sample_count      INTEGER,
  range_low         REAL NOT NULL,
  range_high        REAL NOT NULL,
  bins              TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_snapshots_indicator_taken
  ON snapshots (indicator, taken_at);
`

// Snapshot is one persisted viewport summary.
type Snapshot struct {
	ID               uuid.UUID
	TakenAt          time.Time
	Style            string
	Indicator        string
	Zoom             float64
	Lon              float64
	Lat              float64
	Available        bool
	TotalPopulation  float64
	DistinctFeatures int
	SampleCount      int
	Range            rangefilter.Selection
	Bins             []histogram.Bin
}

// FromView captures v taken at the given centre and time.
func FromView(v viewport.View, lon, lat float64, at time.Time) Snapshot {
	s := Snapshot{
		TakenAt:   at,
		Style:     v.Style,
		Indicator: v.Indicator,
		Zoom:      v.Zoom,
		Lon:       lon,
		Lat:       lat,
		Range:     v.Range,
		Bins:      v.Bins,
	}
	if v.Summary != nil {
		s.Available = true
		s.TotalPopulation = v.Summary.TotalPopulation
		s.DistinctFeatures = v.Summary.DistinctFeatureCount
		s.SampleCount = len(v.Summary.SortedSample)
	}
	return s
}

type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the database at path and applies the
// schema.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, eris.Wrapf(err, "store: open %s", path)
	}
	// One connection: SQLite serialises writers anyway.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, eris.Wrapf(err, "store: connect %s", path)
	}
	for _, pragma := range []string{"PRAGMA journal_mode=WAL", "PRAGMA busy_timeout=5000"} {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			zap.L().Warn("sqlite pragma skipped", zap.String("pragma", pragma), zap.Error(err))
		}
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, eris.Wrap(err, "store: migrate")
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error { return s.db.Close() }

// Save inserts snap, assigning an id when it has none.
func (s *Store) Save(ctx context.Context, snap Snapshot) (uuid.UUID, error) {
	if snap.ID == uuid.Nil {
		snap.ID = uuid.New()
	}
	if snap.TakenAt.IsZero() {
		snap.TakenAt = time.Now()
	}
	bins := snap.Bins
	if bins == nil {
		bins = []histogram.Bin{}
	}
	binsJSON, err := json.Marshal(bins)
	if err != nil {
		return uuid.Nil, eris.Wrap(err, "store: encode bins")
	}
	_, err = s.db.ExecContext(ctx, `
INSERT INTO snapshots (id, taken_at, style, indicator, zoom, lon, lat, available,
  total_population, distinct_features, sample_count, range_low, range_high, bins)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		snap.ID.String(), snap.TakenAt.UnixMilli(), snap.Style, snap.Indicator, snap.Zoom,
		snap.Lon, snap.Lat, snap.Available, snap.TotalPopulation, snap.DistinctFeatures,
		snap.SampleCount, snap.Range.Low, snap.Range.High, string(binsJSON))
	if err != nil {
		return uuid.Nil, eris.Wrapf(err, "store: insert snapshot %s", snap.ID)
	}
	return snap.ID, nil
}

// Recent returns up to limit snapshots, newest first. An empty indicator
// matches all.
func (s *Store) Recent(ctx context.Context, indicator string, limit int) ([]Snapshot, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `
SELECT id, taken_at, style, indicator, zoom, lon, lat, available,
  total_population, distinct_features, sample_count, range_low, range_high, bins
FROM snapshots
WHERE ? = '' OR indicator = ?
ORDER BY taken_at DESC, id
LIMIT ?`, indicator, indicator, limit)
	if err != nil {
		return nil, eris.Wrap(err, "store: query snapshots")
	}
	defer rows.Close()

	var out []Snapshot
	for rows.Next() {
		var (
			snap     Snapshot
			id       string
			takenAt  int64
			binsJSON string
		)
		if err := rows.Scan(&id, &takenAt, &snap.Style, &snap.Indicator, &snap.Zoom,
			&snap.Lon, &snap.Lat, &snap.Available, &snap.TotalPopulation, &snap.DistinctFeatures,
			&snap.SampleCount, &snap.Range.Low, &snap.Range.High, &binsJSON); err != nil {
			return nil, eris.Wrap(err, "store: scan snapshot")
		}
		if snap.ID, err = uuid.Parse(id); err != nil {
			return nil, eris.Wrapf(err, "store: snapshot id %q", id)
		}
		snap.TakenAt = time.UnixMilli(takenAt)
		if err := json.Unmarshal([]byte(binsJSON), &snap.Bins); err != nil {
			return nil, eris.Wrapf(err, "store: decode bins of %s", id)
		}
		out = append(out, snap)
	}
	return out, eris.Wrap(rows.Err(), "store: iterate snapshots")
}
