package herbid_test

import (
	"path/filepath"
	"testing"

	"github.com/gnames/herbid/internal/iometa"
	"github.com/gnames/herbid/internal/iopredict"
	"github.com/gnames/herbid/internal/iotrack"
	"github.com/gnames/herbid/internal/iotrain"
	"github.com/gnames/herbid/pkg/herbid"
	"github.com/stretchr/testify/require"
)

// Compile-time checks that the io packages satisfy the pipeline
// interfaces.
var (
	_ herbid.MetadataLoader = iometa.New(nil, nil)
	_ herbid.FineTuner      = iotrain.New(nil, nil)
	_ herbid.Predictor      = iopredict.New(nil, nil, "")
)

func TestTrackerContract(t *testing.T) {
	trk, err := iotrack.New(filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	defer trk.Close()

	var _ herbid.Tracker = trk
}
