package ocr

import (
	"strings"
	"unicode/utf8"

	"github.com/arbovm/levenshtein"
	"github.com/codycollier/wer"
)

// Accuracy compares recognized text against a known reference transcription
type Accuracy struct {
	WER float64 `json:"word_error_rate"`
	CER float64 `json:"character_error_rate"`
}

// Measure computes word and character error rates of actual against expected.
// Both texts are lowercased and whitespace-normalized first. Rates are edit
// distances divided by the reference length, so they may exceed 1.
func Measure(expected, actual string) Accuracy {
	exp := normalize(expected)
	act := normalize(actual)

	return Accuracy{
		WER: wordErrorRate(exp, act),
		CER: characterErrorRate(exp, act),
	}
}

func characterErrorRate(expected, actual string) float64 {
	n := utf8.RuneCountInString(expected)
	if n == 0 {
		if actual == "" {
			return 0
		}
		return 1
	}
	return float64(levenshtein.Distance(expected, actual)) / float64(n)
}

func wordErrorRate(expected, actual string) float64 {
	expWords := strings.Fields(expected)
	actWords := strings.Fields(actual)
	if len(expWords) == 0 {
		if len(actWords) == 0 {
			return 0
		}
		return 1
	}
	rate, _ := wer.WER(expWords, actWords)
	return rate
}

func normalize(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}
