package parser

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

const bulletMarkers = "-•*"

var (
	headerLabel     = regexp.MustCompile(`(?i)^(KEY_FINDINGS|RECOMMENDATIONS|RISK_FACTORS|SUMMARY):?$`)
	sentenceBreak   = regexp.MustCompile(`[.;]`)
	leadingListMark = regexp.MustCompile(`^[0-9.\-*•]+\s*`)
)

// ExtractItems splits a captured section into list entries. Bullets are tried
// first, then numbering, then plain lines, then sentences of a single line.
func ExtractItems(section string) []string {
	if items := markedItems(section, isBullet, skipBullet, bulletFollows); len(items) > 0 {
		return items
	}
	if items := markedItems(section, isDigit, skipNumber, digitFollows); len(items) > 0 {
		return items
	}
	if items := lineItems(section); len(items) > 0 {
		return items
	}
	return sentenceItems(section)
}

// markedItems cuts the text at every newline directly followed by a marker.
// The first item starts at the first marker anywhere in the text.
func markedItems(text string, isMarker func(rune) bool, skipMarker func(string) int, follows func(string) bool) []string {
	var items []string
	start := indexFunc(text, 0, isMarker)
	for start >= 0 {
		body := start + skipMarker(text[start:])
		body += len(text[body:]) - len(strings.TrimLeftFunc(text[body:], unicode.IsSpace))

		end := len(text)
		for i := body; i < len(text); i++ {
			if text[i] == '\n' && follows(text[i+1:]) {
				end = i
				break
			}
		}

		if item := strings.TrimSpace(text[body:end]); item != "" {
			items = append(items, item)
		}
		if end == len(text) {
			break
		}
		start = indexFunc(text, end, isMarker)
	}
	return items
}

func lineItems(text string) []string {
	var items []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if utf8.RuneCountInString(line) > 5 && !headerLabel.MatchString(line) {
			items = append(items, line)
		}
	}
	return items
}

func sentenceItems(text string) []string {
	if utf8.RuneCountInString(text) <= 20 || strings.Contains(text, "\n") {
		return nil
	}
	var items []string
	for _, part := range sentenceBreak.Split(text, -1) {
		part = strings.TrimSpace(part)
		if utf8.RuneCountInString(part) > 10 {
			items = append(items, part)
		}
	}
	return items
}

// fallbackFindings takes the first five non-blank lines with list markers stripped
func fallbackFindings(text string) []string {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) != "" {
			lines = append(lines, line)
		}
		if len(lines) == 5 {
			break
		}
	}

	var findings []string
	for _, line := range lines {
		line = strings.TrimSpace(leadingListMark.ReplaceAllString(line, ""))
		if utf8.RuneCountInString(line) > 10 {
			findings = append(findings, line)
		}
	}
	return findings
}

func isBullet(r rune) bool { return strings.ContainsRune(bulletMarkers, r) }

func isDigit(r rune) bool { return r >= '0' && r <= '9' }

func skipBullet(s string) int {
	_, size := utf8.DecodeRuneInString(s)
	return size
}

// skipNumber consumes the digits of a list number and an optional dot
func skipNumber(s string) int {
	i := 0
	for i < len(s) && isDigit(rune(s[i])) {
		i++
	}
	if i < len(s) && s[i] == '.' {
		i++
	}
	return i
}

func bulletFollows(s string) bool {
	r, _ := utf8.DecodeRuneInString(s)
	return s != "" && isBullet(r)
}

func digitFollows(s string) bool {
	return s != "" && isDigit(rune(s[0]))
}

func indexFunc(s string, from int, f func(rune) bool) int {
	if from >= len(s) {
		return -1
	}
	i := strings.IndexFunc(s[from:], f)
	if i < 0 {
		return -1
	}
	return from + i
}
