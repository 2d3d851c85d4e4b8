package iotrain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseTrainerOptsDefaults(t *testing.T) {
	assert := assert.New(t)
	opts, err := parseTrainerOpts(nil)
	assert.NoError(err)
	assert.Equal(-1, opts.numThreads)
	assert.Equal("", opts.platform)
	assert.Equal(3, opts.checkpointKeep)
}

func TestParseTrainerOpts(t *testing.T) {
	assert := assert.New(t)
	opts, err := parseTrainerOpts(map[string]string{
		"num_threads":     "8",
		"platform":        "Host",
		"checkpoint_keep": "5",
	})
	assert.NoError(err)
	assert.Equal(8, opts.numThreads)
	assert.Equal("Host", opts.platform)
	assert.Equal(5, opts.checkpointKeep)
}

func TestParseTrainerOptsBad(t *testing.T) {
	assert := assert.New(t)
	tests := []struct {
		msg string
		raw map[string]string
	}{
		{"unknown key", map[string]string{"learning_rate": "0.1"}},
		{"non-numeric threads", map[string]string{"num_threads": "many"}},
		{"zero threads", map[string]string{"num_threads": "0"}},
		{"empty platform", map[string]string{"platform": ""}},
		{"zero keep", map[string]string{"checkpoint_keep": "0"}},
	}

	for _, v := range tests {
		_, err := parseTrainerOpts(v.raw)
		assert.Error(err, v.msg)
	}
}
