package transform_test

import (
	"image"
	"image/color"
	"math/rand"
	"testing"

	"github.com/gnames/herbid/pkg/transform"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// gradientImage returns a deterministic non-uniform test image.
func gradientImage(w, h int) image.Image {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{
				R: uint8(x * 255 / w),
				G: uint8(y * 255 / h),
				B: uint8((x + y) * 255 / (w + h)),
				A: 255,
			})
		}
	}
	return img
}

func TestEvalDeterministic(t *testing.T) {
	tr := transform.New(32)
	img := gradientImage(57, 43)

	first := tr.Eval(img)
	second := tr.Eval(img)

	require.Len(t, first, 32*32*transform.Channels)
	assert.Equal(t, first, second,
		"evaluation pipeline must be deterministic")
}

func TestTrainOutputSize(t *testing.T) {
	tests := []struct {
		msg  string
		w, h int
	}{
		{"landscape", 120, 60},
		{"portrait", 41, 99},
		{"square", 64, 64},
		{"tiny", 8, 8},
	}

	tr := transform.New(48)
	rng := rand.New(rand.NewSource(7))

	for _, v := range tests {
		// Several draws per shape to cover different augment paths.
		for i := 0; i < 10; i++ {
			res := tr.Train(gradientImage(v.w, v.h), rng)
			assert.Len(t, res, 48*48*transform.Channels, v.msg)
		}
	}
}

func TestTrainRandomized(t *testing.T) {
	tr := transform.New(32)
	img := gradientImage(100, 100)

	a := tr.Train(img, rand.New(rand.NewSource(1)))
	b := tr.Train(img, rand.New(rand.NewSource(2)))

	assert.NotEqual(t, a, b,
		"different seeds should produce different augmentations")
}

func TestNormalizationRange(t *testing.T) {
	tr := transform.New(16)
	// A pure white image normalizes to (1-mean)/std per channel.
	img := image.NewNRGBA(image.Rect(0, 0, 16, 16))
	for i := range img.Pix {
		img.Pix[i] = 255
	}

	res := tr.Eval(img)
	for c := 0; c < transform.Channels; c++ {
		want := float32((1 - transform.DefaultMean[c]) / transform.DefaultStd[c])
		assert.InDelta(t, want, res[c], 1e-5)
	}
}
