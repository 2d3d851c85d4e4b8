// Package iometa reads the dataset metadata files and produces the
// joined training table and the test table.
// This is an impure I/O package; the join itself lives in pkg/metadata.
package iometa

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/gnames/gnfmt"
	"github.com/gnames/herbid/pkg/config"
	"github.com/gnames/herbid/pkg/herbid"
	"github.com/gnames/herbid/pkg/metadata"
	"github.com/gnames/herbid/pkg/parserpool"
	"golang.org/x/sync/errgroup"
)

const (
	trainMetaFile = "train_metadata.json"
	testMetaFile  = "test_metadata.json"
)

// loader implements the herbid.MetadataLoader interface.
type loader struct {
	cfg  *config.Config
	pool parserpool.Pool
	enc  gnfmt.Encoder
}

// New creates a new MetadataLoader. The parser pool may be nil, in
// which case category names are not canonicalized.
func New(cfg *config.Config, pool parserpool.Pool) herbid.MetadataLoader {
	return &loader{cfg: cfg, pool: pool, enc: gnfmt.GNjson{}}
}

// LoadTrain reads train_metadata.json, joins the metadata arrays into
// the training table and canonicalizes category names.
func (l *loader) LoadTrain(
	ctx context.Context,
) (*metadata.TrainTable, error) {
	start := time.Now()
	path := filepath.Join(l.cfg.Dataset.Dir, trainMetaFile)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, MetaFileMissingError(path, err)
	}

	var meta metadata.TrainMetadata
	if err = l.enc.Decode(data, &meta); err != nil {
		return nil, MetaDecodeError(path, err)
	}
	if err = checkTrainKeys(path, &meta); err != nil {
		return nil, err
	}

	table, stats := metadata.JoinTraining(&meta)
	if stats.HasMissing() {
		if l.cfg.Dataset.StrictJoin {
			return nil, MetaJoinError(path, stats)
		}
		slog.Warn("Metadata join left unresolved foreign keys",
			"missing_images", stats.MissingImages,
			"missing_categories", stats.MissingCategories,
			"missing_institutions", stats.MissingInstitutions,
		)
	}

	if l.pool != nil {
		l.canonicalize(ctx, table, meta.Categories)
	}

	slog.Info("Loaded training metadata",
		"rows", len(table.Rows),
		"classes", table.NumClasses,
		"duration", gnfmt.TimeString(time.Since(start).Seconds()),
	)
	return table, nil
}

// LoadTest reads test_metadata.json into a table indexed by image ID.
func (l *loader) LoadTest(
	_ context.Context,
) (*metadata.TestTable, error) {
	path := filepath.Join(l.cfg.Dataset.Dir, testMetaFile)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, MetaFileMissingError(path, err)
	}

	var rows []metadata.TestRow
	if err = l.enc.Decode(data, &rows); err != nil {
		return nil, MetaDecodeError(path, err)
	}
	if len(rows) == 0 {
		return nil, MetaEmptyTestError(path)
	}

	table := metadata.NewTestTable(rows)
	slog.Info("Loaded test metadata", "rows", table.Len())
	return table, nil
}

// canonicalize fills TrainRow.CanonicalName with the gnparser canonical
// form of each category's scientific name. Names that do not parse
// keep an empty canonical form.
func (l *loader) canonicalize(
	ctx context.Context,
	table *metadata.TrainTable,
	categories []metadata.Category,
) {
	canonical := make([]string, len(categories))

	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(l.cfg.JobsNumber)
	for i, cat := range categories {
		g.Go(func() error {
			canonical[i] = l.pool.Canonical(cat.ScientificName)
			return nil
		})
	}
	// workers never return errors, the group is used for its limit
	_ = g.Wait()

	byID := make(map[int]string, len(categories))
	for i, cat := range categories {
		byID[cat.CategoryID] = canonical[i]
	}
	for i := range table.Rows {
		table.Rows[i].CanonicalName = byID[table.Rows[i].CategoryID]
	}
}

// checkTrainKeys rejects metadata files that miss one of the four
// expected arrays.
func checkTrainKeys(path string, m *metadata.TrainMetadata) error {
	switch {
	case len(m.Annotations) == 0:
		return MetaMissingKeyError(path, "annotations")
	case len(m.Images) == 0:
		return MetaMissingKeyError(path, "images")
	case len(m.Categories) == 0:
		return MetaMissingKeyError(path, "categories")
	case len(m.Institutions) == 0:
		return MetaMissingKeyError(path, "institutions")
	}
	return nil
}
