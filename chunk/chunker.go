// Package chunk splits plain text into bounded-length segments for embedding.
//
// Text is split into paragraphs on blank lines and each paragraph into
// sentences at terminal punctuation. Sentences are packed greedily into
// segments of at most MaxLength characters; a sentence that does not fit on
// its own is packed word by word. Segments shorter than MinLength characters
// are dropped as noise. Lengths are counted in runes.
//
// Chunking is deterministic: the same input always produces the same output.
package chunk

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	// DefaultMaxLength is the default upper bound on segment length.
	DefaultMaxLength = 1000

	// MinLength is the shortest segment that is kept.
	MinLength = 10
)

var paragraphBreak = regexp.MustCompile(`\n[ \t\r\f\v]*\n`)

// Chunker splits text into segments.
type Chunker struct {
	maxLength int
	minLength int
}

// Option configures a Chunker.
type Option func(*Chunker) error

// WithMaxLength sets the maximum segment length in characters.
func WithMaxLength(n int) Option {
	return func(c *Chunker) error {
		if n <= 0 {
			return fmt.Errorf("max chunk length must be positive, got %d", n)
		}
		c.maxLength = n
		return nil
	}
}

// WithMinLength sets the length below which segments are discarded.
func WithMinLength(n int) Option {
	return func(c *Chunker) error {
		if n < 0 {
			return fmt.Errorf("min chunk length must not be negative, got %d", n)
		}
		c.minLength = n
		return nil
	}
}

// NewChunker creates a Chunker using DefaultMaxLength and MinLength.
func NewChunker(opts ...Option) (*Chunker, error) {
	c := &Chunker{maxLength: DefaultMaxLength, minLength: MinLength}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// MaxLength returns the configured maximum segment length.
func (c *Chunker) MaxLength() int {
	return c.maxLength
}

// Split chunks text with a maximum length of maxLength characters.
// A non-positive maxLength selects DefaultMaxLength.
func Split(text string, maxLength int) []string {
	if maxLength <= 0 {
		maxLength = DefaultMaxLength
	}
	c := &Chunker{maxLength: maxLength, minLength: MinLength}
	return c.Chunk(text)
}

// Chunk splits text into segments. If every segment is too short to keep but
// the text is not blank, the whole trimmed text is returned as one segment,
// truncated to the maximum length when it is more than half again as long.
func (c *Chunker) Chunk(text string) []string {
	var segments []string
	for _, para := range paragraphBreak.Split(text, -1) {
		for _, seg := range c.packParagraph(para) {
			if utf8.RuneCountInString(seg) >= c.minLength {
				segments = append(segments, seg)
			}
		}
	}
	if len(segments) > 0 {
		return segments
	}

	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil
	}
	if utf8.RuneCountInString(trimmed) > c.maxLength+c.maxLength/2 {
		trimmed = strings.TrimSpace(string([]rune(trimmed)[:c.maxLength]))
	}
	return []string{trimmed}
}

// packParagraph packs the sentences of one paragraph into segments.
func (c *Chunker) packParagraph(para string) []string {
	var (
		segments []string
		current  []string
		size     int
	)
	flush := func() {
		if len(current) > 0 {
			segments = append(segments, strings.Join(current, " "))
			current, size = nil, 0
		}
	}
	// add appends one word, starting a new segment when it would overflow.
	add := func(word string) {
		n := utf8.RuneCountInString(word)
		if len(current) > 0 && size+1+n > c.maxLength {
			flush()
		}
		if len(current) > 0 {
			size++
		}
		current = append(current, word)
		size += n
	}

	for _, sentence := range sentences(para) {
		words := strings.Fields(sentence)
		if len(words) == 0 {
			continue
		}
		length := len(words) - 1
		for _, w := range words {
			length += utf8.RuneCountInString(w)
		}

		switch {
		case len(current) > 0 && size+1+length <= c.maxLength:
			current = append(current, words...)
			size += 1 + length
		case length <= c.maxLength:
			flush()
			current = append(current, words...)
			size = length
		default:
			flush()
			for _, w := range words {
				add(w)
			}
		}
	}
	flush()
	return segments
}

// sentences splits a paragraph after each run of terminal punctuation that
// is followed by whitespace or the end of the paragraph. Text after the last
// boundary is kept as its own sentence.
func sentences(para string) []string {
	var out []string
	start := 0
	runes := []rune(para)
	for i := 0; i < len(runes); i++ {
		if !isTerminal(runes[i]) {
			continue
		}
		j := i
		for j+1 < len(runes) && isTerminal(runes[j+1]) {
			j++
		}
		if j+1 == len(runes) || unicode.IsSpace(runes[j+1]) {
			out = append(out, string(runes[start:j+1]))
			start = j + 1
		}
		i = j
	}
	if start < len(runes) {
		out = append(out, string(runes[start:]))
	}
	return out
}

func isTerminal(r rune) bool {
	return r == '.' || r == '!' || r == '?'
}
