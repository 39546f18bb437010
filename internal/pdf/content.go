package pdf

import (
	"encoding/hex"
	"strconv"
	"strings"
)

// kerningSpace is the TJ adjustment (thousandths of an em) treated as a word gap
const kerningSpace = -200

// ContentText recovers the text drawn by the show-text operators of a page
// content stream. Line-moving operators start a new line.
func ContentText(content []byte) string {
	s := &scanner{src: content}
	var lines []string
	var line, pending strings.Builder
	inArray := false

	newLine := func() {
		if t := strings.TrimSpace(line.String()); t != "" {
			lines = append(lines, t)
		}
		line.Reset()
	}

	for {
		tok, kind := s.next()
		if kind == tokEOF {
			break
		}
		switch kind {
		case tokString:
			pending.WriteString(tok)
		case tokArrayStart:
			inArray = true
		case tokArrayEnd:
			inArray = false
		case tokNumber:
			if inArray {
				if v, err := strconv.ParseFloat(tok, 64); err == nil && v <= kerningSpace {
					pending.WriteByte(' ')
				}
			}
		case tokOperator:
			switch tok {
			case "Tj", "TJ":
				line.WriteString(pending.String())
			case "'", "\"":
				newLine()
				line.WriteString(pending.String())
			case "Td", "TD", "T*", "ET":
				newLine()
			}
			pending.Reset()
		}
	}
	newLine()

	return strings.Join(lines, "\n")
}

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokString
	tokNumber
	tokOperator
	tokArrayStart
	tokArrayEnd
	tokOther
)

type scanner struct {
	src []byte
	pos int
}

func (s *scanner) next() (string, tokenKind) {
	for s.pos < len(s.src) {
		c := s.src[s.pos]
		switch {
		case isSpace(c):
			s.pos++
		case c == '%':
			for s.pos < len(s.src) && s.src[s.pos] != '\n' && s.src[s.pos] != '\r' {
				s.pos++
			}
		case c == '(':
			s.pos++
			return s.literal(), tokString
		case c == '<' && s.peek(1) == '<':
			s.pos += 2
			return "<<", tokOther
		case c == '>' && s.peek(1) == '>':
			s.pos += 2
			return ">>", tokOther
		case c == '<':
			s.pos++
			return s.hexString(), tokString
		case c == '[':
			s.pos++
			return "[", tokArrayStart
		case c == ']':
			s.pos++
			return "]", tokArrayEnd
		case c == '/':
			start := s.pos
			s.pos++
			s.skipRegular()
			return string(s.src[start:s.pos]), tokOther
		case c == '+' || c == '-' || c == '.' || (c >= '0' && c <= '9'):
			start := s.pos
			s.pos++
			s.skipRegular()
			return string(s.src[start:s.pos]), tokNumber
		default:
			start := s.pos
			s.skipRegular()
			if s.pos == start {
				s.pos++
			}
			return string(s.src[start:s.pos]), tokOperator
		}
	}
	return "", tokEOF
}

func (s *scanner) peek(offset int) byte {
	if s.pos+offset < len(s.src) {
		return s.src[s.pos+offset]
	}
	return 0
}

func (s *scanner) skipRegular() {
	for s.pos < len(s.src) && !isSpace(s.src[s.pos]) && !isDelimiter(s.src[s.pos]) {
		s.pos++
	}
}

// literal reads a parenthesised string; the opening paren is already consumed
func (s *scanner) literal() string {
	var b strings.Builder
	depth := 1
	for s.pos < len(s.src) {
		c := s.src[s.pos]
		s.pos++
		switch c {
		case '\\':
			if s.pos >= len(s.src) {
				return b.String()
			}
			e := s.src[s.pos]
			s.pos++
			switch e {
			case 'n':
				b.WriteByte('\n')
			case 'r':
				b.WriteByte('\r')
			case 't':
				b.WriteByte('\t')
			case 'b', 'f':
			case '\n':
			case '\r':
				if s.peek(0) == '\n' {
					s.pos++
				}
			case '0', '1', '2', '3', '4', '5', '6', '7':
				v := int(e - '0')
				for i := 0; i < 2 && s.pos < len(s.src) && s.src[s.pos] >= '0' && s.src[s.pos] <= '7'; i++ {
					v = v*8 + int(s.src[s.pos]-'0')
					s.pos++
				}
				b.WriteByte(byte(v))
			default:
				b.WriteByte(e)
			}
		case '(':
			depth++
			b.WriteByte(c)
		case ')':
			depth--
			if depth == 0 {
				return b.String()
			}
			b.WriteByte(c)
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

// hexString reads <...>; glyph-id strings that do not decode to printable ASCII are dropped
func (s *scanner) hexString() string {
	var digits []byte
	for s.pos < len(s.src) && s.src[s.pos] != '>' {
		if c := s.src[s.pos]; !isSpace(c) {
			digits = append(digits, c)
		}
		s.pos++
	}
	s.pos++
	if len(digits)%2 == 1 {
		digits = append(digits, '0')
	}
	decoded, err := hex.DecodeString(string(digits))
	if err != nil {
		return ""
	}
	for _, c := range decoded {
		if c < 0x20 || c > 0x7e {
			return ""
		}
	}
	return string(decoded)
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f' || c == 0
}

func isDelimiter(c byte) bool {
	switch c {
	case '(', ')', '<', '>', '[', ']', '{', '}', '/', '%':
		return true
	}
	return false
}
