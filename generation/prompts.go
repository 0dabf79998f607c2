package generation

import (
	"fmt"
	"strings"

	"github.com/poiesic/scholia/core"
	"github.com/tmc/langchaingo/prompts"
)

// NoContextMarker stands in for the context block when retrieval found nothing.
const NoContextMarker = "No relevant context found."

var chatPrompt = prompts.NewPromptTemplate(`You are a helpful assistant. Answer the user's query based on the following context. If the context is not sufficient, say so.
Context:
---
{{.context}}
---
User Query: {{.query}}
Answer:`, []string{"context", "query"})

const contentSystemPrompt = "You are a study companion that writes clear, well organised study material. " +
	"Use only the source material provided. Do not invent facts."

// contentInstructions holds the per-type task description.
var contentInstructions = map[core.ContentType]string{
	core.ContentTypeStudyGuide:  `Write a study guide for the notebook below. Start with a short overview, then list the key concepts with one or two sentence explanations, and finish with a set of review questions. Use headings for each section.`,
	core.ContentTypeFAQ:         `Write a list of frequently asked questions with answers covering the material below. Prefer the questions found in the sources, merge duplicates, and answer each in a few sentences. Start every question with Q: and every answer with A:.`,
	core.ContentTypeBriefingDoc: `Write a briefing document for someone who has not read the sources below. Open with an executive summary, then cover the main themes with the most important facts under each, and close with open questions.`,
	core.ContentTypeTimeline:    `Build a chronological timeline from the material below. List each dated or ordered event on its own line, starting with the date or period, followed by a short cast of the people or entities involved. If the sources contain no dates, order events as they are described.`,
}

var contentPrompt = prompts.NewPromptTemplate(`{{.instructions}}

Notebook: {{.notebook}}

Source material:
{{.material}}`, []string{"instructions", "notebook", "material"})

// documentMaterial is the knowledge gathered for one document.
type documentMaterial struct {
	name      string
	summaries []string
	facts     []string
	questions []string
	excerpts  []string
}

func (m documentMaterial) empty() bool {
	return len(m.summaries) == 0 && len(m.facts) == 0 && len(m.questions) == 0 && len(m.excerpts) == 0
}

// renderMaterial groups every document's knowledge under its name.
func renderMaterial(docs []documentMaterial) string {
	var b strings.Builder
	for i, doc := range docs {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "## %s\n", doc.name)
		if doc.empty() {
			b.WriteString("(no processed content)\n")
			continue
		}
		writeSection(&b, "Summaries", doc.summaries)
		writeSection(&b, "Facts", doc.facts)
		writeSection(&b, "Questions", doc.questions)
		writeSection(&b, "Excerpts", doc.excerpts)
	}
	return b.String()
}

func writeSection(b *strings.Builder, title string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(b, "%s:\n", title)
	for _, item := range items {
		fmt.Fprintf(b, "- %s\n", item)
	}
}

func formatChatPrompt(contextText, query string) (string, error) {
	if strings.TrimSpace(contextText) == "" {
		contextText = NoContextMarker
	}
	return chatPrompt.Format(map[string]any{
		"context": contextText,
		"query":   query,
	})
}

func formatContentPrompt(contentType core.ContentType, notebook string, docs []documentMaterial) (string, error) {
	instructions, ok := contentInstructions[contentType]
	if !ok {
		return "", fmt.Errorf("%w: %q", core.ErrInvalidContentType, contentType)
	}
	return contentPrompt.Format(map[string]any{
		"instructions": instructions,
		"notebook":     notebook,
		"material":     renderMaterial(docs),
	})
}
