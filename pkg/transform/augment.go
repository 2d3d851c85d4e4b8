package transform

import (
	"image"
	"image/color"
	"math/rand"

	"github.com/disintegration/imaging"
)

// wideAugment applies one operator drawn uniformly from a menu of
// photometric adjustments, with a random magnitude. Roughly the
// "trivial augment" recipe: one op, one strength, per sample.
func wideAugment(img image.Image, rng *rand.Rand) *image.NRGBA {
	// magnitude in [-1, 1]
	m := rng.Float64()*2 - 1
	switch rng.Intn(6) {
	case 0:
		return imaging.Clone(img)
	case 1:
		return imaging.AdjustBrightness(img, m*30)
	case 2:
		return imaging.AdjustContrast(img, m*30)
	case 3:
		return imaging.AdjustGamma(img, 1+m*0.3)
	case 4:
		return imaging.AdjustSaturation(img, m*40)
	default:
		return imaging.Sharpen(img, 0.5+rng.Float64()*1.5)
	}
}

// posterize keeps the top bits of every channel.
func posterize(img *image.NRGBA, bits uint) *image.NRGBA {
	mask := uint8(0xff << (8 - bits))
	out := imaging.Clone(img)
	for i := 0; i < len(out.Pix); i += 4 {
		out.Pix[i] &= mask
		out.Pix[i+1] &= mask
		out.Pix[i+2] &= mask
	}
	return out
}

// autoContrast stretches every channel's histogram to the full [0,255]
// range.
func autoContrast(img *image.NRGBA) *image.NRGBA {
	out := imaging.Clone(img)
	for c := 0; c < Channels; c++ {
		lo, hi := uint8(255), uint8(0)
		for i := c; i < len(out.Pix); i += 4 {
			v := out.Pix[i]
			if v < lo {
				lo = v
			}
			if v > hi {
				hi = v
			}
		}
		if hi <= lo {
			continue
		}
		scale := 255 / float64(hi-lo)
		for i := c; i < len(out.Pix); i += 4 {
			out.Pix[i] = uint8(float64(out.Pix[i]-lo) * scale)
		}
	}
	return out
}

// randomAffine rotates by up to ±maxDeg degrees, scales by a factor in
// [minScale, maxScale] and translates by up to ±maxShift of the image
// size, keeping the original dimensions. Uncovered regions are black.
func randomAffine(
	img *image.NRGBA,
	rng *rand.Rand,
	maxDeg float64,
	minScale, maxScale float64,
	maxShift float64,
) *image.NRGBA {
	w := img.Bounds().Dx()
	h := img.Bounds().Dy()

	angle := (rng.Float64()*2 - 1) * maxDeg
	rotated := imaging.Rotate(img, angle, color.NRGBA{A: 255})
	// Rotation grows the canvas; crop back to the original size.
	rotated = imaging.CropCenter(rotated, w, h)

	scale := minScale + rng.Float64()*(maxScale-minScale)
	sw := int(float64(w) * scale)
	sh := int(float64(h) * scale)
	scaled := imaging.Resize(rotated, sw, sh, imaging.Linear)

	dx := int((rng.Float64()*2 - 1) * maxShift * float64(w))
	dy := int((rng.Float64()*2 - 1) * maxShift * float64(h))

	canvas := imaging.New(w, h, color.NRGBA{A: 255})
	pos := image.Pt((w-sw)/2+dx, (h-sh)/2+dy)
	return imaging.Paste(canvas, scaled, pos)
}
