package iodataset

import (
	"math/rand"

	"github.com/gnames/herbid/pkg/metadata"
)

// Split partitions training rows into train and validation slices by
// valFraction. The partition is deterministic for a given seed: rows
// are shuffled with the seed, then the validation fraction is taken
// from the front.
func Split(
	table *metadata.TrainTable,
	valFraction float64,
	seed int64,
) (train, val []metadata.TrainRow, err error) {
	if valFraction <= 0 || valFraction >= 1 {
		return nil, nil, SplitError(valFraction)
	}

	rows := make([]metadata.TrainRow, len(table.Rows))
	copy(rows, table.Rows)

	rng := rand.New(rand.NewSource(seed))
	rng.Shuffle(len(rows), func(i, j int) {
		rows[i], rows[j] = rows[j], rows[i]
	})

	nVal := int(float64(len(rows)) * valFraction)
	if nVal == 0 && len(rows) > 1 {
		nVal = 1
	}
	return rows[nVal:], rows[:nVal], nil
}
