package run_test

import (
	"testing"

	"github.com/gnames/herbid/pkg/run"
	"github.com/stretchr/testify/assert"
)

func TestArtifactNames(t *testing.T) {
	r := &run.Run{ID: "ab12cd34", Backbone: "cnn_m", ImageSize: 320}

	assert.Equal(t,
		"herbarium-classif-ab12cd34_cnn_m-320px", r.CheckpointName())
	assert.Equal(t,
		"submission_herbarium-ab12cd34_cnn_m-320.csv", r.SubmissionName())
}

func TestArtifactNameUniqueness(t *testing.T) {
	runs := []*run.Run{
		{ID: "a", Backbone: "cnn_s", ImageSize: 320},
		{ID: "a", Backbone: "cnn_s", ImageSize: 384},
		{ID: "a", Backbone: "cnn_m", ImageSize: 320},
		{ID: "b", Backbone: "cnn_s", ImageSize: 320},
	}

	ckpts := make(map[string]bool)
	subs := make(map[string]bool)
	for _, r := range runs {
		ckpts[r.CheckpointName()] = true
		subs[r.SubmissionName()] = true
	}

	assert.Len(t, ckpts, len(runs),
		"distinct configurations must not collide")
	assert.Len(t, subs, len(runs))
}

func TestNewID(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := run.NewID()
		assert.Len(t, id, 8)
		assert.False(t, seen[id], "ids must be unique")
		seen[id] = true
	}
}
