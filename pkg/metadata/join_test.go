package metadata_test

import (
	"encoding/json"
	"testing"

	"github.com/gnames/herbid/pkg/metadata"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testMeta() *metadata.TrainMetadata {
	return &metadata.TrainMetadata{
		Annotations: []metadata.Annotation{
			{ImageID: "1", CategoryID: 10, InstitutionID: 100},
			{ImageID: "2", CategoryID: 11, InstitutionID: 100},
			{ImageID: "3", CategoryID: 10, InstitutionID: 101},
		},
		Images: []metadata.Image{
			{ImageID: "1", FileName: "000/1.jpg"},
			{ImageID: "2", FileName: "000/2.jpg"},
			{ImageID: "3", FileName: "001/3.jpg"},
		},
		Categories: []metadata.Category{
			{CategoryID: 10, ScientificName: "Acer rubrum L.",
				Family: "Sapindaceae", Genus: "Acer"},
			{CategoryID: 11, ScientificName: "Quercus alba L.",
				Family: "Fagaceae", Genus: "Quercus"},
		},
		Institutions: []metadata.Institution{
			{InstitutionID: 100, Name: "NY"},
			{InstitutionID: 101, Name: "MO"},
		},
	}
}

func TestJoinTraining(t *testing.T) {
	m := testMeta()
	table, stats := metadata.JoinTraining(m)

	require.NotNil(t, table)
	assert.Len(t, table.Rows, len(m.Annotations),
		"one row per annotation")
	assert.False(t, stats.HasMissing())
	assert.Equal(t, 12, table.NumClasses)

	for _, row := range table.Rows {
		assert.NotEmpty(t, row.FileName)
		assert.NotEmpty(t, row.ScientificName)
		assert.NotEmpty(t, row.Institution)
	}

	assert.Equal(t, "Acer rubrum L.", table.Rows[0].ScientificName)
	assert.Equal(t, "NY", table.Rows[0].Institution)
	assert.Equal(t, "001/3.jpg", table.Rows[2].FileName)
	assert.Equal(t, "MO", table.Rows[2].Institution)
}

func TestJoinTrainingMissingKeys(t *testing.T) {
	m := testMeta()
	// Orphan annotation: no image, category, or institution resolves.
	m.Annotations = append(m.Annotations, metadata.Annotation{
		ImageID: "99", CategoryID: 99, InstitutionID: 99,
	})

	table, stats := metadata.JoinTraining(m)

	assert.Len(t, table.Rows, 4, "unresolved rows are kept")
	assert.True(t, stats.HasMissing())
	assert.Equal(t, 1, stats.MissingImages)
	assert.Equal(t, 1, stats.MissingCategories)
	assert.Equal(t, 1, stats.MissingInstitutions)

	orphan := table.Rows[3]
	assert.Empty(t, orphan.FileName)
	assert.Empty(t, orphan.ScientificName)
	assert.Empty(t, orphan.Institution)
}

func TestImageIDDecoding(t *testing.T) {
	tests := []struct {
		msg, json, res string
	}{
		{"string id", `{"image_id": "07-abc", "file_name": "a.jpg"}`, "07-abc"},
		{"numeric id", `{"image_id": 42, "file_name": "b.jpg"}`, "42"},
	}

	for _, v := range tests {
		var row metadata.TestRow
		err := json.Unmarshal([]byte(v.json), &row)
		require.NoError(t, err, v.msg)
		assert.Equal(t, v.res, row.ImageID.String(), v.msg)
	}
}

func TestTestTable(t *testing.T) {
	table := metadata.NewTestTable([]metadata.TestRow{
		{ImageID: "1", FileName: "a.jpg"},
		{ImageID: "2", FileName: "b.jpg"},
		{ImageID: "3", FileName: "c.jpg"},
	})

	assert.Equal(t, 3, table.Len())
	assert.Equal(t,
		[]metadata.ImageID{"1", "2", "3"}, table.IDs(),
		"IDs preserve file order")

	row, ok := table.ByID("2")
	require.True(t, ok)
	assert.Equal(t, "b.jpg", row.FileName)

	_, ok = table.ByID("7")
	assert.False(t, ok)
}
