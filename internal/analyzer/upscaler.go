package analyzer

import (
	"image"
	"math"

	"github.com/disintegration/imaging"
)

type upscaler struct {
	targetWidth  int
	targetHeight int
	minDimension int
}

// NewUpscaler creates an upscaler that enlarges images narrower or shorter than
// minDimension to fit a targetWidth x targetHeight canvas
func NewUpscaler(targetWidth, targetHeight, minDimension int) Upscaler {
	return &upscaler{
		targetWidth:  targetWidth,
		targetHeight: targetHeight,
		minDimension: minDimension,
	}
}

// NeedsUpscale reports whether either side is below the minimum dimension
func (u *upscaler) NeedsUpscale(bounds image.Rectangle) bool {
	return bounds.Dx() < u.minDimension || bounds.Dy() < u.minDimension
}

// TargetSize returns the uniformly scaled size for the given bounds.
// The scale never drops below 1, so an image is never shrunk.
func (u *upscaler) TargetSize(bounds image.Rectangle) (int, int) {
	w, h := bounds.Dx(), bounds.Dy()
	if w == 0 || h == 0 {
		return w, h
	}
	scale := math.Min(float64(u.targetWidth)/float64(w), float64(u.targetHeight)/float64(h))
	scale = math.Max(scale, 1)
	return int(math.Round(float64(w) * scale)), int(math.Round(float64(h) * scale))
}

// Upscale resizes small images with Lanczos resampling. Other images are returned as is.
func (u *upscaler) Upscale(img image.Image) image.Image {
	bounds := img.Bounds()
	if bounds.Empty() || !u.NeedsUpscale(bounds) {
		return img
	}
	w, h := u.TargetSize(bounds)
	if w == bounds.Dx() && h == bounds.Dy() {
		return img
	}
	return imaging.Resize(img, w, h, imaging.Lanczos)
}
