package analyzer

import (
	"bytes"
	"fmt"
	"image"
	"math"

	"github.com/disintegration/imaging"
)

// EnhancementParams holds the constants of the text-readability transform
type EnhancementParams struct {
	LowContrastCutoff    float64 // global max-min below this uses LowContrastFactor
	LowContrastFactor    float64
	NormalContrastFactor float64
	DarkCutoff           float64 // average below this is brightened
	BrightCutoff         float64 // average above this is darkened
	BrightnessShift      float64
	ThresholdWeight      float64 // threshold = 128 + (avg-128)*ThresholdWeight
	NoiseBand            float64 // values this close to the threshold pass through
	EdgeBoost            float64
}

// DefaultEnhancementParams returns the tuned defaults for scanned lab reports
func DefaultEnhancementParams() EnhancementParams {
	return EnhancementParams{
		LowContrastCutoff:    100,
		LowContrastFactor:    1.5,
		NormalContrastFactor: 1.2,
		DarkCutoff:           100,
		BrightCutoff:         200,
		BrightnessShift:      40,
		ThresholdWeight:      0.2,
		NoiseBand:            10,
		EdgeBoost:            1.1,
	}
}

type enhancer struct {
	params EnhancementParams
}

// NewEnhancer creates an enhancer with default parameters
func NewEnhancer() Enhancer {
	return &enhancer{params: DefaultEnhancementParams()}
}

// Enhance converts img to a binarized, sharpened grayscale image.
// It is a pure function of its input.
func (e *enhancer) Enhance(img image.Image) *image.Gray {
	src := toNRGBA(img)
	width, height := src.Bounds().Dx(), src.Bounds().Dy()
	out := image.NewGray(image.Rect(0, 0, width, height))
	if width == 0 || height == 0 {
		return out
	}

	gray := make([]float64, width*height)
	var sum float64
	minG, maxG := math.Inf(1), math.Inf(-1)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			off := y*src.Stride + x*4
			g := luminance(src.Pix[off], src.Pix[off+1], src.Pix[off+2])
			gray[y*width+x] = g
			sum += g
			minG = math.Min(minG, g)
			maxG = math.Max(maxG, g)
		}
	}
	avg := sum / float64(len(gray))

	p := e.params
	factor := p.NormalContrastFactor
	if maxG-minG < p.LowContrastCutoff {
		factor = p.LowContrastFactor
	}
	shift := 0.0
	switch {
	case avg < p.DarkCutoff:
		shift = p.BrightnessShift
	case avg > p.BrightCutoff:
		shift = -p.BrightnessShift
	}
	threshold := 128 + (avg-128)*p.ThresholdWeight

	for i, g := range gray {
		v := (g-128)*factor + 128 + shift
		if math.Abs(v-threshold) > p.NoiseBand {
			if v > threshold {
				v = 255
			} else {
				v = 0
			}
		}
		out.Pix[(i/width)*out.Stride+i%width] = clampByte(v * p.EdgeBoost)
	}

	sharpen(out)
	return out
}

// EnhanceToPNG runs Enhance and encodes the result losslessly
func (e *enhancer) EnhanceToPNG(img image.Image) ([]byte, error) {
	return encodePNG(e.Enhance(img))
}

// sharpen applies the 3x3 kernel [0 -1 0; -1 5 -1; 0 -1 0] in place, reading
// from a snapshot. The 1-pixel border is left untouched.
func sharpen(img *image.Gray) {
	width, height := img.Rect.Dx(), img.Rect.Dy()
	if width < 3 || height < 3 {
		return
	}
	snapshot := make([]uint8, len(img.Pix))
	copy(snapshot, img.Pix)
	stride := img.Stride

	for y := 1; y < height-1; y++ {
		for x := 1; x < width-1; x++ {
			i := y*stride + x
			v := 5*float64(snapshot[i]) -
				float64(snapshot[i-stride]) -
				float64(snapshot[i+stride]) -
				float64(snapshot[i-1]) -
				float64(snapshot[i+1])
			img.Pix[i] = clampByte(v)
		}
	}
}

func clampByte(v float64) uint8 {
	switch {
	case v <= 0:
		return 0
	case v >= 255:
		return 255
	}
	return uint8(math.Round(v))
}

func encodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return nil, fmt.Errorf("failed to encode png: %w", err)
	}
	return buf.Bytes(), nil
}
