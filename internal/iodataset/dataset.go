// Package iodataset feeds herbarium images to the GoMLX training loop.
//
// It turns metadata tables into train.Dataset implementations: images
// are decoded and transformed in parallel worker goroutines and packed
// into NHWC float32 batch tensors. Shuffling, the train/validation
// split and epoch accounting happen here; the optimization loop itself
// belongs to GoMLX.
package iodataset

import (
	"hash/fnv"
	"io"
	"math/rand"
	"path/filepath"
	"sync"

	"github.com/disintegration/imaging"
	"github.com/gnames/herbid/pkg/metadata"
	"github.com/gnames/herbid/pkg/transform"
	"github.com/gomlx/gomlx/types/tensor"
	"golang.org/x/sync/errgroup"
)

// sample is one image reference with an optional label.
type sample struct {
	id       metadata.ImageID
	fileName string
	label    int32
}

// Dataset implements the GoMLX train.Dataset interface over a slice of
// samples.
type Dataset struct {
	name      string
	imagesDir string
	tr        *transform.Transform
	batchSize int
	jobs      int

	// augment switches the training pipeline on; otherwise the
	// deterministic evaluation pipeline is used.
	augment bool
	// infinite reshuffles and restarts after each epoch instead of
	// returning io.EOF.
	infinite bool
	// labeled datasets yield a labels tensor, predict datasets don't.
	labeled bool

	seed int64

	mu      sync.Mutex
	samples []sample
	pos     int
	epoch   int
}

// Option configures a Dataset.
type Option func(*Dataset)

// WithAugment enables the randomized training transform.
func WithAugment() Option {
	return func(d *Dataset) { d.augment = true }
}

// WithInfinite makes the dataset restart with a fresh shuffle after
// every epoch, as the training loop expects.
func WithInfinite() Option {
	return func(d *Dataset) { d.infinite = true }
}

// WithSeed fixes the shuffle and augmentation randomness.
func WithSeed(seed int64) Option {
	return func(d *Dataset) { d.seed = seed }
}

// FromTrainRows builds a labeled dataset from joined training rows.
func FromTrainRows(
	name string,
	rows []metadata.TrainRow,
	imagesDir string,
	tr *transform.Transform,
	batchSize, jobs int,
	opts ...Option,
) *Dataset {
	samples := make([]sample, len(rows))
	for i, r := range rows {
		samples[i] = sample{
			id:       r.ImageID,
			fileName: r.FileName,
			label:    int32(r.CategoryID),
		}
	}
	return newDataset(name, samples, imagesDir, tr, batchSize, jobs, true, opts)
}

// FromTestTable builds an unlabeled dataset over the test table in
// file order.
func FromTestTable(
	name string,
	table *metadata.TestTable,
	imagesDir string,
	tr *transform.Transform,
	batchSize, jobs int,
	opts ...Option,
) *Dataset {
	samples := make([]sample, table.Len())
	for i, r := range table.Rows {
		samples[i] = sample{id: r.ImageID, fileName: r.FileName}
	}
	return newDataset(name, samples, imagesDir, tr, batchSize, jobs, false, opts)
}

func newDataset(
	name string,
	samples []sample,
	imagesDir string,
	tr *transform.Transform,
	batchSize, jobs int,
	labeled bool,
	opts []Option,
) *Dataset {
	if jobs < 1 {
		jobs = 1
	}
	d := &Dataset{
		name:      name,
		imagesDir: imagesDir,
		tr:        tr,
		batchSize: batchSize,
		jobs:      jobs,
		labeled:   labeled,
		seed:      1,
		samples:   samples,
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.infinite {
		d.shuffle()
	}
	return d
}

// Name implements train.Dataset.
func (d *Dataset) Name() string { return d.name }

// Len returns the number of samples.
func (d *Dataset) Len() int { return len(d.samples) }

// StepsPerEpoch returns the number of batches covering all samples
// once, with a partial final batch.
func (d *Dataset) StepsPerEpoch() int {
	return (len(d.samples) + d.batchSize - 1) / d.batchSize
}

// Yield implements train.Dataset. It returns the next batch as one
// NHWC image tensor and, for labeled datasets, one int32 labels
// tensor. At the end of an epoch finite datasets return io.EOF;
// infinite datasets reshuffle and continue.
func (d *Dataset) Yield() (any, []tensor.Tensor, []tensor.Tensor, error) {
	batch := d.nextBatch()
	if len(batch) == 0 {
		return nil, nil, nil, io.EOF
	}

	inputs, labels, err := d.assemble(batch)
	if err != nil {
		return nil, nil, nil, err
	}
	return nil, inputs, labels, nil
}

// Reset implements train.Dataset: it rewinds the dataset to a fresh
// epoch.
func (d *Dataset) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.pos = 0
	if d.infinite {
		d.shuffleLocked()
	}
}

// nextBatch reserves the next batch of samples under the lock.
func (d *Dataset) nextBatch() []sample {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.pos >= len(d.samples) {
		if !d.infinite {
			return nil
		}
		d.pos = 0
		d.shuffleLocked()
	}

	end := d.pos + d.batchSize
	if end > len(d.samples) {
		end = len(d.samples)
	}
	batch := d.samples[d.pos:end]
	d.pos = end
	return batch
}

// assemble decodes and transforms a batch in parallel and packs it
// into tensors.
func (d *Dataset) assemble(
	batch []sample,
) ([]tensor.Tensor, []tensor.Tensor, error) {
	size := d.tr.Size
	pixels := size * size * transform.Channels
	flat := make([]float32, len(batch)*pixels)
	labels := make([]int32, len(batch))

	var g errgroup.Group
	g.SetLimit(d.jobs)
	for i, s := range batch {
		g.Go(func() error {
			path := filepath.Join(d.imagesDir, s.fileName)
			img, err := imaging.Open(path)
			if err != nil {
				return ImageOpenError(path, err)
			}
			var vec []float32
			if d.augment {
				rng := rand.New(rand.NewSource(d.sampleSeed(s)))
				vec = d.tr.Train(img, rng)
			} else {
				vec = d.tr.Eval(img)
			}
			copy(flat[i*pixels:(i+1)*pixels], vec)
			labels[i] = s.label
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	images := tensor.FromFlatDataAndDimensions(
		flat, len(batch), size, size, transform.Channels)
	inputs := []tensor.Tensor{images}
	if !d.labeled {
		return inputs, nil, nil
	}
	labelsT := tensor.FromFlatDataAndDimensions(labels, len(batch))
	return inputs, []tensor.Tensor{labelsT}, nil
}

// sampleSeed derives a per-sample augmentation seed that changes every
// epoch.
func (d *Dataset) sampleSeed(s sample) int64 {
	d.mu.Lock()
	epoch := d.epoch
	d.mu.Unlock()

	h := fnv.New64a()
	_, _ = h.Write([]byte(s.fileName))
	return d.seed ^ int64(h.Sum64()>>1) ^ int64(epoch)<<32
}

func (d *Dataset) shuffle() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.shuffleLocked()
}

func (d *Dataset) shuffleLocked() {
	d.epoch++
	rng := rand.New(rand.NewSource(d.seed + int64(d.epoch)))
	rng.Shuffle(len(d.samples), func(i, j int) {
		d.samples[i], d.samples[j] = d.samples[j], d.samples[i]
	})
}

// IDs returns the sample image identifiers in current order.
func (d *Dataset) IDs() []metadata.ImageID {
	d.mu.Lock()
	defer d.mu.Unlock()
	res := make([]metadata.ImageID, len(d.samples))
	for i, s := range d.samples {
		res[i] = s.id
	}
	return res
}

// Labels returns the sample labels in current order.
func (d *Dataset) Labels() []int32 {
	d.mu.Lock()
	defer d.mu.Unlock()
	res := make([]int32, len(d.samples))
	for i, s := range d.samples {
		res[i] = s.label
	}
	return res
}
