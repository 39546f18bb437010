package ocr

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMeasure(t *testing.T) {
	tests := []struct {
		name             string
		expected, actual string
		wer, cer         float64
	}{
		{"identical", "LDL 125 mg/dL", "LDL 125 mg/dL", 0, 0},
		{"case and spacing ignored", "LDL  125\nmg/dL", "ldl 125 mg/dl", 0, 0},
		{"one substituted character", "HDL 58", "HDL 53", 0.5, 1.0 / 6.0},
		{"missing word", "glucose 95 fasting", "glucose 95", 1.0 / 3.0, 8.0 / 18.0},
		{"empty reference and output", "", "", 0, 0},
		{"empty reference", "", "noise", 1, 1},
		{"nothing recognized", "TSH 2.1", "", 1, 1},
		{"substitution deletion and insertion", "Hemoglobin 13.5 g/dL normal range", "Hemoglobin 13.8 g/dL range extra", 0.6, 12.0 / 33.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Measure(tt.expected, tt.actual)
			assert.InDelta(t, tt.wer, got.WER, 1e-9)
			assert.InDelta(t, tt.cer, got.CER, 1e-9)
		})
	}
}
