package extract

import (
	"encoding/hex"
	"strconv"
	"strings"
	"unicode/utf16"
)

type tokenKind int

const (
	tokOther tokenKind = iota
	tokString
	tokNumber
	tokOperator
	tokArrayStart
	tokArrayEnd
)

type token struct {
	kind  tokenKind
	text  string
	num   float64
	items []token // set for completed arrays
}

// TJ adjustments below this (in thousandths of text space) are word gaps.
const wordGapThreshold = -200

// decodeContentStream returns the text shown by a page content stream.
// Only the text-showing operators are interpreted; glyph positioning is
// approximated by line breaks on vertical moves.
func decodeContentStream(data []byte) string {
	s := &scanner{data: data}
	var (
		out      strings.Builder
		operands []token
		arrays   [][]token
	)
	newline := func() {
		if out.Len() > 0 && !strings.HasSuffix(out.String(), "\n") {
			out.WriteByte('\n')
		}
	}
	lastString := func() (string, bool) {
		for i := len(operands) - 1; i >= 0; i-- {
			if operands[i].kind == tokString {
				return operands[i].text, true
			}
		}
		return "", false
	}

	for {
		tok, ok := s.next()
		if !ok {
			break
		}
		switch tok.kind {
		case tokArrayStart:
			arrays = append(arrays, nil)
			continue
		case tokArrayEnd:
			if len(arrays) == 0 {
				continue
			}
			items := arrays[len(arrays)-1]
			arrays = arrays[:len(arrays)-1]
			tok = token{kind: tokOther, items: items}
		case tokOperator:
			if len(arrays) > 0 {
				arrays = arrays[:0]
			}
		}
		if len(arrays) > 0 {
			arrays[len(arrays)-1] = append(arrays[len(arrays)-1], tok)
			continue
		}
		if tok.kind != tokOperator {
			operands = append(operands, tok)
			continue
		}

		switch tok.text {
		case "Tj":
			if text, ok := lastString(); ok {
				out.WriteString(text)
			}
		case "'", "\"":
			newline()
			if text, ok := lastString(); ok {
				out.WriteString(text)
			}
		case "TJ":
			for i := len(operands) - 1; i >= 0; i-- {
				if operands[i].items == nil {
					continue
				}
				for _, item := range operands[i].items {
					switch {
					case item.kind == tokString:
						out.WriteString(item.text)
					case item.kind == tokNumber && item.num < wordGapThreshold:
						if !strings.HasSuffix(out.String(), " ") {
							out.WriteByte(' ')
						}
					}
				}
				break
			}
		case "Td", "TD":
			if len(operands) >= 2 && operands[len(operands)-1].num != 0 {
				newline()
			}
		case "T*", "ET":
			newline()
		case "ID":
			s.skipInlineImage()
		}
		operands = operands[:0]
	}

	lines := strings.Split(out.String(), "\n")
	kept := lines[:0]
	for _, line := range lines {
		if line = strings.TrimSpace(line); line != "" {
			kept = append(kept, line)
		}
	}
	return strings.Join(kept, "\n")
}

type scanner struct {
	data []byte
	pos  int
}

func isWhitespace(c byte) bool {
	switch c {
	case ' ', '\t', '\r', '\n', '\f', 0:
		return true
	}
	return false
}

func isDelimiter(c byte) bool {
	switch c {
	case '(', ')', '<', '>', '[', ']', '{', '}', '/', '%':
		return true
	}
	return isWhitespace(c)
}

func (s *scanner) next() (token, bool) {
	for s.pos < len(s.data) {
		c := s.data[s.pos]
		if isWhitespace(c) {
			s.pos++
			continue
		}
		if c == '%' {
			for s.pos < len(s.data) && s.data[s.pos] != '\n' && s.data[s.pos] != '\r' {
				s.pos++
			}
			continue
		}
		break
	}
	if s.pos >= len(s.data) {
		return token{}, false
	}

	c := s.data[s.pos]
	switch {
	case c == '(':
		s.pos++
		return token{kind: tokString, text: s.literal()}, true
	case c == '<' && s.peek(1) == '<', c == '>' && s.peek(1) == '>':
		s.pos += 2
		return token{kind: tokOther}, true
	case c == '<':
		s.pos++
		return token{kind: tokString, text: s.hexString()}, true
	case c == '[':
		s.pos++
		return token{kind: tokArrayStart}, true
	case c == ']':
		s.pos++
		return token{kind: tokArrayEnd}, true
	case c == '/':
		s.pos++
		s.regular()
		return token{kind: tokOther}, true
	case isDelimiter(c):
		s.pos++
		return token{kind: tokOther}, true
	}

	word := s.regular()
	if word[0] == '+' || word[0] == '-' || word[0] == '.' || (word[0] >= '0' && word[0] <= '9') {
		if n, err := strconv.ParseFloat(word, 64); err == nil {
			return token{kind: tokNumber, num: n, text: word}, true
		}
	}
	return token{kind: tokOperator, text: word}, true
}

func (s *scanner) peek(offset int) byte {
	if s.pos+offset < len(s.data) {
		return s.data[s.pos+offset]
	}
	return 0
}

func (s *scanner) regular() string {
	start := s.pos
	for s.pos < len(s.data) && !isDelimiter(s.data[s.pos]) {
		s.pos++
	}
	return string(s.data[start:s.pos])
}

func (s *scanner) literal() string {
	var buf []byte
	depth := 1
	for s.pos < len(s.data) {
		c := s.data[s.pos]
		s.pos++
		switch c {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return decodeTextBytes(buf)
			}
		case '\\':
			if s.pos >= len(s.data) {
				continue
			}
			e := s.data[s.pos]
			s.pos++
			switch e {
			case 'n':
				buf = append(buf, '\n')
			case 'r':
				buf = append(buf, '\r')
			case 't':
				buf = append(buf, '\t')
			case 'b':
				buf = append(buf, '\b')
			case 'f':
				buf = append(buf, '\f')
			case '\r':
				if s.peek(0) == '\n' {
					s.pos++
				}
			case '\n':
			default:
				if e >= '0' && e <= '7' {
					v := int(e - '0')
					for i := 0; i < 2 && s.pos < len(s.data) && s.data[s.pos] >= '0' && s.data[s.pos] <= '7'; i++ {
						v = v*8 + int(s.data[s.pos]-'0')
						s.pos++
					}
					buf = append(buf, byte(v))
				} else {
					buf = append(buf, e)
				}
			}
			continue
		}
		buf = append(buf, c)
	}
	return decodeTextBytes(buf)
}

func (s *scanner) hexString() string {
	var digits []byte
	for s.pos < len(s.data) && s.data[s.pos] != '>' {
		if c := s.data[s.pos]; !isWhitespace(c) {
			digits = append(digits, c)
		}
		s.pos++
	}
	s.pos++
	if len(digits)%2 == 1 {
		digits = append(digits, '0')
	}
	raw, err := hex.DecodeString(string(digits))
	if err != nil {
		return ""
	}
	return decodeTextBytes(raw)
}

// skipInlineImage advances past binary inline image data up to "EI".
func (s *scanner) skipInlineImage() {
	for s.pos+2 <= len(s.data) {
		if s.data[s.pos] == 'E' && s.data[s.pos+1] == 'I' &&
			(s.pos == 0 || isWhitespace(s.data[s.pos-1])) &&
			(s.pos+2 == len(s.data) || isWhitespace(s.data[s.pos+2])) {
			s.pos += 2
			return
		}
		s.pos++
	}
	s.pos = len(s.data)
}

// decodeTextBytes interprets string bytes as UTF-16BE when they carry a byte
// order mark and as single-byte text otherwise. Control bytes are dropped.
func decodeTextBytes(raw []byte) string {
	if len(raw) >= 2 && raw[0] == 0xFE && raw[1] == 0xFF {
		units := make([]uint16, 0, (len(raw)-2)/2)
		for i := 2; i+1 < len(raw); i += 2 {
			units = append(units, uint16(raw[i])<<8|uint16(raw[i+1]))
		}
		return string(utf16.Decode(units))
	}
	var b strings.Builder
	for _, c := range raw {
		if c < 0x20 && c != '\n' && c != '\t' {
			continue
		}
		b.WriteRune(rune(c))
	}
	return b.String()
}
