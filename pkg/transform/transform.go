// Package transform builds the image-preprocessing pipelines used for
// training, validation and inference.
//
// Both pipelines share the same conceptual shape: decode → augment →
// resize → normalize. The evaluation pipeline is deterministic and
// idempotent; the training pipeline draws every randomized step
// independently per sample from a caller-supplied random source.
// The output is a flat []float32 in HWC order, normalized by
// per-channel statistics, ready to be packed into an NHWC batch tensor.
package transform

import (
	"image"
	"math/rand"

	"github.com/disintegration/imaging"
)

// Per-channel statistics of the herbarium training images.
var (
	DefaultMean = [3]float64{0.781, 0.759, 0.710}
	DefaultStd  = [3]float64{0.241, 0.245, 0.249}
)

// Channels is the number of color channels of the pipeline output.
const Channels = 3

// Transform produces normalized fixed-size tensors from images.
type Transform struct {
	// Size is the square output resolution.
	Size int
	// Mean and Std are per-channel normalization statistics.
	Mean [3]float64
	Std  [3]float64
}

// New creates a Transform with the default channel statistics.
func New(size int) *Transform {
	return &Transform{Size: size, Mean: DefaultMean, Std: DefaultStd}
}

// Eval is the deterministic pipeline used for validation, test and
// inference: resize to a fixed square, then normalize by channel
// statistics.
func (t *Transform) Eval(img image.Image) []float32 {
	resized := imaging.Resize(img, t.Size, t.Size, imaging.Lanczos)
	return t.normalize(resized)
}

// Train is the randomized training pipeline: wide random augment,
// posterization, resize, horizontal flip, contrast stretch, sharpness,
// Gaussian blur and a random affine warp, then normalization. Each
// randomized step draws independently from rng.
func (t *Transform) Train(img image.Image, rng *rand.Rand) []float32 {
	out := wideAugment(img, rng)
	if rng.Float64() < 0.5 {
		out = posterize(out, 2)
	}
	out = imaging.Resize(out, t.Size, t.Size, imaging.Lanczos)
	if rng.Float64() < 0.5 {
		out = imaging.FlipH(out)
	}
	if rng.Float64() < 0.5 {
		out = autoContrast(out)
	}
	if rng.Float64() < 0.5 {
		out = imaging.Sharpen(out, 1.0)
	}
	if rng.Float64() < 0.5 {
		// sigma in [0.1, 5)
		out = imaging.Blur(out, 0.1+4.9*rng.Float64())
	}
	out = randomAffine(out, rng, 10, 0.9, 1.1, 0.1)
	return t.normalize(out)
}

// normalize converts img to a flat HWC float32 slice with channel
// values scaled to (v/255 - mean) / std. The image must already be
// Size×Size.
func (t *Transform) normalize(img *image.NRGBA) []float32 {
	res := make([]float32, t.Size*t.Size*Channels)
	i := 0
	for y := 0; y < t.Size; y++ {
		row := img.Pix[y*img.Stride : y*img.Stride+t.Size*4]
		for x := 0; x < t.Size; x++ {
			for c := 0; c < Channels; c++ {
				v := float64(row[x*4+c]) / 255
				res[i] = float32((v - t.Mean[c]) / t.Std[c])
				i++
			}
		}
	}
	return res
}
