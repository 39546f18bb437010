package ocr

import "strconv"

// PageSegMode mirrors Tesseract's page segmentation modes
type PageSegMode int

const (
	PSMAuto        PageSegMode = 3
	PSMSingleBlock PageSegMode = 6
)

// EngineMode mirrors Tesseract's OCR engine modes
type EngineMode int

const (
	EngineLSTM          EngineMode = 1
	EngineLegacyAndLSTM EngineMode = 2
)

// LabReportWhitelist restricts recognition to characters found on lab reports
const LabReportWhitelist = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789" +
	" .,:;()[]/-+%<>=*#&'\"µ"

// EngineConfig is one recognizer configuration
type EngineConfig struct {
	Name          string
	Language      string
	PageSegMode   PageSegMode
	EngineMode    EngineMode
	UseDictionary bool
	UseBigrams    bool
	Whitelist     string
	Invert        bool
}

// PrimaryConfig is tried first: automatic segmentation, LSTM, dictionary and bigram correction
func PrimaryConfig(language string) EngineConfig {
	return EngineConfig{
		Name:          "primary",
		Language:      language,
		PageSegMode:   PSMAuto,
		EngineMode:    EngineLSTM,
		UseDictionary: true,
		UseBigrams:    true,
		Whitelist:     LabReportWhitelist,
		Invert:        true,
	}
}

// AlternateConfig is used after a short or failed primary attempt
func AlternateConfig(language string) EngineConfig {
	return EngineConfig{
		Name:          "alternate",
		Language:      language,
		PageSegMode:   PSMSingleBlock,
		EngineMode:    EngineLegacyAndLSTM,
		UseDictionary: true,
		UseBigrams:    true,
		Whitelist:     LabReportWhitelist,
		Invert:        false,
	}
}

// Variables returns the Tesseract variables that express the configuration
func (c EngineConfig) Variables() map[string]string {
	vars := map[string]string{
		"tessedit_ocr_engine_mode": strconv.Itoa(int(c.EngineMode)),
		"load_system_dawg":         boolFlag(c.UseDictionary),
		"load_freq_dawg":           boolFlag(c.UseDictionary),
		"load_bigram_dawg":         boolFlag(c.UseBigrams),
		"tessedit_do_invert":       boolFlag(c.Invert),
	}
	if c.Whitelist != "" {
		vars["tessedit_char_whitelist"] = c.Whitelist
	}
	return vars
}

func boolFlag(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

