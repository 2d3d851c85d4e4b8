package iomodel_test

import (
	"testing"

	"github.com/gnames/herbid/internal/iomodel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBackboneRegistry(t *testing.T) {
	names := iomodel.Backbones()
	assert.Equal(t, []string{"cnn_l", "cnn_m", "cnn_s"}, names)
}

func TestNewClassifier(t *testing.T) {
	c, err := iomodel.New("cnn_m", 15501)
	require.NoError(t, err)
	assert.Equal(t, "cnn_m", c.Backbone())
	assert.Equal(t, 15501, c.NumClasses())
}

func TestNewClassifierUnknownBackbone(t *testing.T) {
	_, err := iomodel.New("efficientnet_b3", 10)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "efficientnet_b3")
}

func TestNewClassifierBadClasses(t *testing.T) {
	_, err := iomodel.New("cnn_s", 0)
	assert.Error(t, err)
}
