package iopredict

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/gnames/herbid/pkg/metadata"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteSubmission(t *testing.T) {
	assert := assert.New(t)
	path := filepath.Join(t.TempDir(), "submission.csv")

	// a model that always answers class 7
	ids := []metadata.ImageID{"1", "2", "3"}
	preds := []int{7, 7, 7}

	err := writeSubmission(path, ids, preds)
	require.NoError(t, err)

	bs, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal("Id,Predicted\n1,7\n2,7\n3,7\n", string(bs))
}

func TestWriteSubmissionOrder(t *testing.T) {
	assert := assert.New(t)
	path := filepath.Join(t.TempDir(), "submission.csv")

	// row order of the test table is preserved, not sorted
	ids := []metadata.ImageID{"30", "10", "20"}
	preds := []int{2, 0, 1}

	err := writeSubmission(path, ids, preds)
	require.NoError(t, err)

	bs, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal("Id,Predicted\n30,2\n10,0\n20,1\n", string(bs))
}

func TestWriteSubmissionBadPath(t *testing.T) {
	assert := assert.New(t)
	err := writeSubmission(
		filepath.Join(t.TempDir(), "no", "such", "dir", "s.csv"),
		[]metadata.ImageID{"1"}, []int{0},
	)
	assert.Error(err)
}
