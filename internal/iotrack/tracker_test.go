package iotrack_test

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/gnames/herbid/internal/iotrack"
	"github.com/gnames/herbid/pkg/run"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func TestStartRun(t *testing.T) {
	assert := assert.New(t)
	path := filepath.Join(t.TempDir(), "runs.db")
	trk, err := iotrack.New(path)
	require.NoError(t, err)
	defer trk.Close()

	r := run.New("cnn_m", 320)
	r.ConfigJSON = `{"batchSize":24}`
	err = trk.StartRun(context.Background(), r)
	assert.NoError(err)

	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	defer db.Close()

	var backbone string
	var size int
	err = db.QueryRow(
		"SELECT backbone, image_size FROM runs WHERE run_id = ?", r.ID,
	).Scan(&backbone, &size)
	require.NoError(t, err)
	assert.Equal("cnn_m", backbone)
	assert.Equal(320, size)
}

func TestScalar(t *testing.T) {
	assert := assert.New(t)
	path := filepath.Join(t.TempDir(), "runs.db")
	trk, err := iotrack.New(path)
	require.NoError(t, err)
	defer trk.Close()

	r := run.New("cnn_s", 224)
	err = trk.StartRun(context.Background(), r)
	require.NoError(t, err)

	for epoch := 1; epoch <= 3; epoch++ {
		err = trk.Scalar(
			context.Background(), r.ID, epoch, "val_f1", 0.1*float64(epoch),
		)
		assert.NoError(err)
	}
	// same epoch and name overwrite, no duplicates
	err = trk.Scalar(context.Background(), r.ID, 3, "val_f1", 0.5)
	assert.NoError(err)

	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	defer db.Close()

	var count int
	err = db.QueryRow(
		"SELECT count(*) FROM metrics WHERE run_id = ?", r.ID,
	).Scan(&count)
	require.NoError(t, err)
	assert.Equal(3, count)

	var val float64
	err = db.QueryRow(
		`SELECT value FROM metrics
		 WHERE run_id = ? AND epoch = 3 AND name = 'val_f1'`, r.ID,
	).Scan(&val)
	require.NoError(t, err)
	assert.InDelta(0.5, val, 1e-9)
}

func TestReopen(t *testing.T) {
	assert := assert.New(t)
	path := filepath.Join(t.TempDir(), "runs.db")

	trk, err := iotrack.New(path)
	require.NoError(t, err)
	r := run.New("cnn_l", 384)
	require.NoError(t, trk.StartRun(context.Background(), r))
	require.NoError(t, trk.Close())

	// registry survives process restarts
	trk, err = iotrack.New(path)
	require.NoError(t, err)
	defer trk.Close()

	r2 := run.New("cnn_l", 384)
	err = trk.StartRun(context.Background(), r2)
	assert.NoError(err)
}
