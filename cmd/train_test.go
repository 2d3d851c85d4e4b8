package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestGetTrainCmd_Exists verifies getTrainCmd returns
// a valid command.
func TestGetTrainCmd_Exists(t *testing.T) {
	cmd := getTrainCmd()
	require.NotNil(t, cmd, "Train command should exist")
	assert.Equal(t, "train", cmd.Use,
		"Command name should be train")
	assert.Contains(t, cmd.Aliases, "fit",
		"Train command should have the fit alias")
}

// TestGetTrainCmd_Descriptions verifies descriptions.
func TestGetTrainCmd_Descriptions(t *testing.T) {
	cmd := getTrainCmd()

	assert.NotEmpty(t, cmd.Short,
		"Short description should not be empty")
	assert.Contains(t, cmd.Long, "macro F1",
		"Long description should mention the selection metric")
	assert.Contains(t, cmd.Long, "train_metadata.json",
		"Long description should mention the metadata file")
}

// TestGetTrainCmd_HasRunE verifies run function is set.
func TestGetTrainCmd_HasRunE(t *testing.T) {
	cmd := getTrainCmd()

	assert.NotNil(t, cmd.RunE,
		"RunE should be set")
}

// TestGetTrainCmd_Flags verifies the hyperparameter flags exist.
func TestGetTrainCmd_Flags(t *testing.T) {
	cmd := getTrainCmd()
	flags := []string{
		"dataset-dir", "checkpoints-dir", "batch-size", "jobs",
		"backbone", "pretrained", "pretrained-dir", "optimizer",
		"image-size", "lr-scheduler", "learning-rate",
		"label-smoothing", "max-epochs", "freeze-epochs", "val-split",
		"early-stopping", "swa", "run-inference", "predict-size",
		"strict-join", "seed", "trainer-opt",
	}
	for _, name := range flags {
		assert.NotNil(t, cmd.Flags().Lookup(name),
			"Flag %s should exist", name)
	}
}

// TestParseKeyValues verifies trainer option parsing.
func TestParseKeyValues(t *testing.T) {
	assert := assert.New(t)

	m, err := parseKeyValues([]string{
		"num_threads=8", "platform=Host",
	})
	require.NoError(t, err)
	assert.Equal("8", m["num_threads"])
	assert.Equal("Host", m["platform"])

	// values may contain the separator
	m, err = parseKeyValues([]string{"note=a=b"})
	require.NoError(t, err)
	assert.Equal("a=b", m["note"])

	_, err = parseKeyValues([]string{"no-separator"})
	assert.Error(err, "missing separator should fail")

	_, err = parseKeyValues([]string{"=value"})
	assert.Error(err, "empty key should fail")
}
