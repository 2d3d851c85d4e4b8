// Package iotrack records training runs and their per-epoch metrics in
// a local sqlite registry. It plays the experiment-tracking role of a
// hosted logger: observability only, never part of correctness.
package iotrack

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/gnames/herbid/pkg/herbid"
	"github.com/gnames/herbid/pkg/run"

	// pure go sqlite driver
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	run_id     TEXT PRIMARY KEY,
	backbone   TEXT NOT NULL,
	image_size INTEGER NOT NULL,
	started    TEXT NOT NULL,
	config     TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS metrics (
	run_id TEXT NOT NULL,
	epoch  INTEGER NOT NULL,
	name   TEXT NOT NULL,
	value  REAL NOT NULL,
	PRIMARY KEY (run_id, epoch, name)
);`

// tracker implements the herbid.Tracker interface.
type tracker struct {
	db *sql.DB
}

// New opens (and if needed creates) the run registry at path.
func New(path string) (herbid.Tracker, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, OpenError(path, err)
	}
	if _, err = db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, OpenError(path, err)
	}
	return &tracker{db: db}, nil
}

// StartRun registers a run with its configuration snapshot.
func (t *tracker) StartRun(ctx context.Context, r *run.Run) error {
	_, err := t.db.ExecContext(ctx,
		`INSERT INTO runs (run_id, backbone, image_size, started, config)
		 VALUES (?, ?, ?, ?, ?)`,
		r.ID, r.Backbone, r.ImageSize,
		r.Started.UTC().Format("2006-01-02T15:04:05Z"),
		r.ConfigJSON,
	)
	if err != nil {
		return WriteError(r.ID, err)
	}
	slog.Info("Registered run",
		"run_id", r.ID,
		"backbone", r.Backbone,
		"image_size", r.ImageSize,
	)
	return nil
}

// Scalar records one named per-epoch scalar.
func (t *tracker) Scalar(
	ctx context.Context,
	runID string, epoch int, name string, value float64,
) error {
	_, err := t.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO metrics (run_id, epoch, name, value)
		 VALUES (?, ?, ?, ?)`,
		runID, epoch, name, value,
	)
	if err != nil {
		return WriteError(runID, err)
	}
	return nil
}

// Close releases the registry.
func (t *tracker) Close() error {
	return t.db.Close()
}
