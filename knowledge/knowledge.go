// Package knowledge derives a summary, facts and study questions from a chunk
// of document text.
//
// TemplateExtractor is deterministic and needs no model; LLMExtractor asks a
// generator for the same structure and falls back to the template output
// when the model cannot produce it.
package knowledge

import (
	"context"
	"fmt"
)

// Knowledge is the structured information derived from one chunk.
type Knowledge struct {
	Summary   string   `json:"summary"`
	Facts     []string `json:"facts"`
	Questions []string `json:"questions"`
}

// Extractor derives Knowledge from chunk text. It is called once per chunk,
// after that chunk has been embedded.
type Extractor interface {
	Extract(ctx context.Context, chunkText string) (Knowledge, error)
}

// TemplateExtractor builds Knowledge by truncating the chunk text.
type TemplateExtractor struct{}

var _ Extractor = TemplateExtractor{}

// Extract never fails.
func (TemplateExtractor) Extract(_ context.Context, chunkText string) (Knowledge, error) {
	return Template(chunkText), nil
}

// Template returns the deterministic Knowledge for text.
func Template(text string) Knowledge {
	return Knowledge{
		Summary:   fmt.Sprintf("Summary of: %s...", prefix(text, 50)),
		Facts:     []string{fmt.Sprintf("Fact about: %s...", prefix(text, 30))},
		Questions: []string{fmt.Sprintf("What is %s...?", prefix(text, 20))},
	}
}

func prefix(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
