package analyzer

import (
	"bytes"
	"image"
	"image/color"
	"testing"
)

func TestEnhance_IsDeterministic(t *testing.T) {
	enhancer := NewEnhancer()
	img := createTextLikeImage(200, 150)

	first, err := enhancer.EnhanceToPNG(img)
	if err != nil {
		t.Fatalf("EnhanceToPNG failed: %v", err)
	}
	for i := 0; i < 3; i++ {
		again, err := enhancer.EnhanceToPNG(img)
		if err != nil {
			t.Fatalf("EnhanceToPNG failed: %v", err)
		}
		if !bytes.Equal(first, again) {
			t.Fatal("Expected byte-identical output across calls")
		}
	}
}

func TestEnhance_BinarizesTextLikeImage(t *testing.T) {
	out := NewEnhancer().Enhance(createTextLikeImage(200, 150))

	// Background far above the threshold clips to white, ink far below clips to black
	if got := out.GrayAt(5, 5).Y; got != 255 {
		t.Errorf("Expected white background, got %d", got)
	}
	if got := out.GrayAt(40, 22).Y; got != 0 {
		t.Errorf("Expected black ink, got %d", got)
	}
}

func TestEnhance_NoiseBandPassesThroughAndBoosts(t *testing.T) {
	// Uniform 128: contrast 0 so factor 1.5, avg 128 so no shift and threshold 128.
	// 128 is inside the noise band, so it passes through and only the 1.1 boost applies.
	out := NewEnhancer().Enhance(createTestImage(5, 5, color.RGBA{128, 128, 128, 255}))

	if got := out.GrayAt(0, 0).Y; got != 141 {
		t.Errorf("Expected border pixel 141 (128*1.1), got %d", got)
	}
	// Interior: 5*141 - 4*141 = 141
	if got := out.GrayAt(2, 2).Y; got != 141 {
		t.Errorf("Expected interior pixel 141, got %d", got)
	}
}

func TestEnhance_DarkImageIsBrightened(t *testing.T) {
	// avg 60: shift +40, factor 1.5. v = (60-128)*1.5+128+40 = 66, threshold = 128-13.6 = 114.4 -> black
	out := NewEnhancer().Enhance(createTestImage(4, 4, color.RGBA{60, 60, 60, 255}))
	if got := out.GrayAt(0, 0).Y; got != 0 {
		t.Errorf("Expected dark uniform image to clip to 0, got %d", got)
	}

	// A single pixel near the shifted threshold survives the band
	img := createTestImage(4, 4, color.RGBA{60, 60, 60, 255})
	img.Set(0, 0, color.RGBA{90, 90, 90, 255})
	// new avg = (15*60+90)/16 = 61.875; contrast 30 -> factor 1.5; threshold = 128 + (61.875-128)*0.2 = 114.775
	// v = (90-128)*1.5+128+40 = 111, |111-114.775| < 10 so it passes: round(111*1.1) = 122
	out = NewEnhancer().Enhance(img)
	if got := out.GrayAt(0, 0).Y; got != 122 {
		t.Errorf("Expected pass-through pixel 122, got %d", got)
	}
}

func TestSharpen_LeavesBorderUntouched(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 5, 5))
	for i := range img.Pix {
		img.Pix[i] = 100
	}
	img.SetGray(2, 2, color.Gray{Y: 200})

	sharpen(img)

	// Centre: 5*200 - 4*100 = 600 -> 255
	if got := img.GrayAt(2, 2).Y; got != 255 {
		t.Errorf("Expected centre 255, got %d", got)
	}
	// Neighbour reads the snapshot: 5*100 - 200 - 3*100 = 0
	if got := img.GrayAt(2, 1).Y; got != 0 {
		t.Errorf("Expected neighbour 0, got %d", got)
	}
	// Border row untouched
	if got := img.GrayAt(2, 0).Y; got != 100 {
		t.Errorf("Expected border 100, got %d", got)
	}
}

func TestEnhance_TinyImage(t *testing.T) {
	out := NewEnhancer().Enhance(createTestImage(2, 1, color.RGBA{10, 10, 10, 255}))
	if out.Bounds().Dx() != 2 || out.Bounds().Dy() != 1 {
		t.Errorf("Expected 2x1 output, got %v", out.Bounds())
	}
}
