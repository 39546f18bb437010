package analyzer

import (
	"image"
	"math"
	"runtime"
	"sync"

	"github.com/anime-shed/lab-report-inspector-go/pkg/models"
	"github.com/disintegration/imaging"
	"gonum.org/v1/gonum/stat"
)

// maxStdDevSamples bounds the luminance sample used for the spread estimate
const maxStdDevSamples = 1 << 16

// metricsCalculator implements MetricsCalculator with parallel strip scans and Gonum aggregation
type metricsCalculator struct{}

// NewMetricsCalculator creates a new metrics calculator using Gonum
func NewMetricsCalculator() MetricsCalculator {
	return &metricsCalculator{}
}

type stripResult struct {
	sum        float64
	min, max   float64
	pixelCount int
}

// Calculate computes the quality gate metrics. Brightness is the mean of
// (R+G+B)/3 on the 0-255 scale and contrast is (max-min)/255 of that luminance.
func (mc *metricsCalculator) Calculate(img image.Image) models.QualityMetrics {
	src := toNRGBA(img)
	bounds := src.Bounds()
	width, height := bounds.Dx(), bounds.Dy()

	// Handle empty images
	if width == 0 || height == 0 {
		return models.QualityMetrics{Width: width, Height: height}
	}

	numWorkers := runtime.NumCPU()
	if height < numWorkers {
		numWorkers = height
	}
	rowsPerWorker := (height + numWorkers - 1) / numWorkers // ceil division

	results := make([]stripResult, numWorkers)
	var wg sync.WaitGroup

	// Process image in horizontal strips for better cache locality
	for i := 0; i < numWorkers; i++ {
		startY := i * rowsPerWorker
		endY := startY + rowsPerWorker
		if endY > height {
			endY = height
		}
		if startY >= endY {
			results[i] = stripResult{min: math.Inf(1), max: math.Inf(-1)}
			continue
		}
		wg.Add(1)
		go func(i, startY, endY int) {
			defer wg.Done()
			res := stripResult{min: math.Inf(1), max: math.Inf(-1)}
			for y := startY; y < endY; y++ {
				row := src.Pix[y*src.Stride : y*src.Stride+width*4]
				for x := 0; x < width*4; x += 4 {
					lum := luminance(row[x], row[x+1], row[x+2])
					res.sum += lum
					if lum < res.min {
						res.min = lum
					}
					if lum > res.max {
						res.max = lum
					}
					res.pixelCount++
				}
			}
			results[i] = res
		}(i, startY, endY)
	}
	wg.Wait()

	// Weighted mean of the strip means
	means := make([]float64, 0, numWorkers)
	weights := make([]float64, 0, numWorkers)
	minLum, maxLum := math.Inf(1), math.Inf(-1)
	for _, res := range results {
		if res.pixelCount == 0 {
			continue
		}
		means = append(means, res.sum/float64(res.pixelCount))
		weights = append(weights, float64(res.pixelCount))
		minLum = math.Min(minLum, res.min)
		maxLum = math.Max(maxLum, res.max)
	}

	return models.QualityMetrics{
		Width:           width,
		Height:          height,
		Brightness:      stat.Mean(means, weights),
		Contrast:        (maxLum - minLum) / 255.0,
		LuminanceStdDev: mc.sampledStdDev(src),
	}
}

// sampledStdDev estimates the luminance spread from an evenly strided sample
func (mc *metricsCalculator) sampledStdDev(src *image.NRGBA) float64 {
	width, height := src.Bounds().Dx(), src.Bounds().Dy()
	total := width * height
	step := 1
	if total > maxStdDevSamples {
		step = total / maxStdDevSamples
	}

	samples := make([]float64, 0, total/step+1)
	for i := 0; i < total; i += step {
		x, y := i%width, i/width
		off := y*src.Stride + x*4
		samples = append(samples, luminance(src.Pix[off], src.Pix[off+1], src.Pix[off+2]))
	}
	if len(samples) < 2 {
		return 0
	}
	_, std := stat.MeanStdDev(samples, nil)
	return std
}

// luminance is the unweighted channel mean on the 0-255 scale
func luminance(r, g, b uint8) float64 {
	return (float64(r) + float64(g) + float64(b)) / 3.0
}

// toNRGBA returns img as a zero-origin *image.NRGBA, copying only when needed
func toNRGBA(img image.Image) *image.NRGBA {
	if n, ok := img.(*image.NRGBA); ok && n.Rect.Min == (image.Point{}) {
		return n
	}
	return imaging.Clone(img)
}
