package chunk

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplit_SingleParagraph(t *testing.T) {
	text := "Paris is the capital of France. It has a population of over 2 million."

	chunks := Split(text, 1000)

	require.Len(t, chunks, 1)
	assert.Equal(t, text, chunks[0])
}

func TestSplit_Empty(t *testing.T) {
	assert.Empty(t, Split("", 1000))
	assert.Empty(t, Split("   \n\n\t  ", 1000))
}

func TestSplit_Paragraphs(t *testing.T) {
	text := "First paragraph has one sentence.\n\nSecond paragraph is here.\nIt continues on a new line."

	chunks := Split(text, 1000)

	assert.Equal(t, []string{
		"First paragraph has one sentence.",
		"Second paragraph is here. It continues on a new line.",
	}, chunks)
}

func TestSplit_SentencePacking(t *testing.T) {
	text := "Alpha beta gamma. Delta epsilon zeta! Eta theta iota? Kappa lambda"

	chunks := Split(text, 40)

	assert.Equal(t, []string{
		"Alpha beta gamma. Delta epsilon zeta!",
		"Eta theta iota? Kappa lambda",
	}, chunks)
}

func TestSplit_NoPunctuation(t *testing.T) {
	chunks := Split("a paragraph without any terminal punctuation", 1000)
	assert.Equal(t, []string{"a paragraph without any terminal punctuation"}, chunks)
}

func TestSplit_PunctuationInsideWords(t *testing.T) {
	chunks := Split("Version 1.5 of example.com shipped today. Good news", 1000)
	assert.Equal(t, []string{"Version 1.5 of example.com shipped today. Good news"}, chunks)
	assert.Equal(t, []string{"Version 1.5 of example.com shipped today.", " Good news"},
		sentences("Version 1.5 of example.com shipped today. Good news"))
}

func TestSplit_LongSentenceIsWordPacked(t *testing.T) {
	words := make([]string, 50)
	for i := range words {
		words[i] = "word"
	}
	text := strings.Join(words, " ") + "."

	chunks := Split(text, 24)

	require.NotEmpty(t, chunks)
	for _, c := range chunks {
		assert.LessOrEqual(t, utf8.RuneCountInString(c), 24)
	}
	assert.Equal(t, strings.Fields(text), strings.Fields(strings.Join(chunks, " ")))
}

func TestSplit_OversizedWord(t *testing.T) {
	long := strings.Repeat("x", 30)

	chunks := Split("short words here "+long+" and more words", 20)

	assert.Contains(t, chunks, long)
	for _, c := range chunks {
		if c != long {
			assert.LessOrEqual(t, utf8.RuneCountInString(c), 20)
		}
	}
}

func TestSplit_DropsNoise(t *testing.T) {
	text := "A real sentence with content.\n\nok.\n\nAnother real sentence here."

	chunks := Split(text, 1000)

	assert.Equal(t, []string{"A real sentence with content.", "Another real sentence here."}, chunks)
}

func TestSplit_FallbackToWholeText(t *testing.T) {
	t.Run("only noise", func(t *testing.T) {
		chunks := Split("Hi.\n\nYo!", 1000)
		assert.Equal(t, []string{"Hi.\n\nYo!"}, chunks)
	})

	t.Run("truncated when much longer", func(t *testing.T) {
		c, err := NewChunker(WithMaxLength(4), WithMinLength(20))
		require.NoError(t, err)

		chunks := c.Chunk("  abcdefgh  ")
		assert.Equal(t, []string{"abcd"}, chunks)
	})

	t.Run("kept when slightly longer", func(t *testing.T) {
		c, err := NewChunker(WithMaxLength(4), WithMinLength(20))
		require.NoError(t, err)

		chunks := c.Chunk("abcde")
		assert.Equal(t, []string{"abcde"}, chunks)
	})
}

func TestSplit_Deterministic(t *testing.T) {
	text := strings.Repeat("The quick brown fox jumps over the lazy dog. ", 80) +
		"\n\n" + strings.Repeat("Pack my box with five dozen liquor jugs! ", 40)

	first := Split(text, 200)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, Split(text, 200))
	}
}

func TestSplit_CoversAllContent(t *testing.T) {
	text := "Mitochondria are organelles. They produce ATP through respiration!\n\n" +
		"Chloroplasts perform photosynthesis? Yes, in plant cells.\n\n" +
		strings.Repeat("Ribosomes synthesize proteins from amino acids. ", 30)

	chunks := Split(text, 120)

	assert.Equal(t, strings.Fields(text), strings.Fields(strings.Join(chunks, " ")))
	for _, c := range chunks {
		assert.LessOrEqual(t, utf8.RuneCountInString(c), 120)
	}
}

func TestSplit_DefaultLength(t *testing.T) {
	text := strings.Repeat("Sentence number one is fine. ", 100)
	chunks := Split(text, 0)
	for _, c := range chunks {
		assert.LessOrEqual(t, utf8.RuneCountInString(c), DefaultMaxLength)
	}
	assert.Greater(t, len(chunks), 1)
}

func TestNewChunker_InvalidOptions(t *testing.T) {
	_, err := NewChunker(WithMaxLength(0))
	assert.Error(t, err)

	_, err = NewChunker(WithMinLength(-1))
	assert.Error(t, err)

	c, err := NewChunker(WithMaxLength(500))
	require.NoError(t, err)
	assert.Equal(t, 500, c.MaxLength())
}
