package ocr

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConfigVariables(t *testing.T) {
	primary := PrimaryConfig("eng").Variables()
	assert.Equal(t, "1", primary["tessedit_ocr_engine_mode"])
	assert.Equal(t, "1", primary["tessedit_do_invert"])
	assert.Equal(t, "1", primary["load_system_dawg"])
	assert.Equal(t, "1", primary["load_bigram_dawg"])
	assert.Equal(t, LabReportWhitelist, primary["tessedit_char_whitelist"])

	alternate := AlternateConfig("eng").Variables()
	assert.Equal(t, "2", alternate["tessedit_ocr_engine_mode"])
	assert.Equal(t, "0", alternate["tessedit_do_invert"])

	bare := EngineConfig{Name: "bare"}.Variables()
	assert.NotContains(t, bare, "tessedit_char_whitelist")
	assert.Equal(t, "0", bare["load_system_dawg"])
}

func TestConfigsDifferInSegmentation(t *testing.T) {
	assert.Equal(t, PSMAuto, PrimaryConfig("eng").PageSegMode)
	assert.Equal(t, PSMSingleBlock, AlternateConfig("eng").PageSegMode)
	assert.Equal(t, "deu", AlternateConfig("deu").Language)
}
