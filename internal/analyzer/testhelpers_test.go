package analyzer

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"
)

// createTestImage creates a uniform image of the given color
func createTestImage(width, height int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

// createTextLikeImage draws dark horizontal "text lines" on a light page
func createTextLikeImage(width, height int) *image.RGBA {
	img := createTestImage(width, height, color.RGBA{190, 190, 185, 255})
	for y := 20; y < height-20; y += 24 {
		for dy := 0; dy < 6; dy++ {
			for x := 30; x < width-30; x++ {
				if (x/7)%3 != 0 {
					img.Set(x, y+dy, color.RGBA{20, 20, 25, 255})
				}
			}
		}
	}
	return img
}

func encodeTestPNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("Failed to encode test image: %v", err)
	}
	return buf.Bytes()
}
