package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestGetPredictCmd_Exists verifies getPredictCmd returns
// a valid command.
func TestGetPredictCmd_Exists(t *testing.T) {
	cmd := getPredictCmd()
	require.NotNil(t, cmd, "Predict command should exist")
	assert.Equal(t, "predict", cmd.Use,
		"Command name should be predict")
	assert.Contains(t, cmd.Aliases, "infer",
		"Predict command should have the infer alias")
}

// TestGetPredictCmd_Descriptions verifies descriptions.
func TestGetPredictCmd_Descriptions(t *testing.T) {
	cmd := getPredictCmd()

	assert.NotEmpty(t, cmd.Short,
		"Short description should not be empty")
	assert.Contains(t, cmd.Long, "test_metadata.json",
		"Long description should mention the metadata file")
	assert.Contains(t, cmd.Long, "checkpoint",
		"Long description should mention checkpoints")
}

// TestGetPredictCmd_HasRunE verifies run function is set.
func TestGetPredictCmd_HasRunE(t *testing.T) {
	cmd := getPredictCmd()

	assert.NotNil(t, cmd.RunE,
		"RunE should be set")
}

// TestGetPredictCmd_Flags verifies the inference flags exist.
func TestGetPredictCmd_Flags(t *testing.T) {
	cmd := getPredictCmd()
	flags := []string{
		"dataset-dir", "checkpoints-dir", "checkpoint",
		"backbone", "predict-size", "batch-size", "jobs",
	}
	for _, name := range flags {
		assert.NotNil(t, cmd.Flags().Lookup(name),
			"Flag %s should exist", name)
	}
}
