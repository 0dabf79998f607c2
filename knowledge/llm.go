package knowledge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/poiesic/scholia/ai"
	"github.com/tmc/langchaingo/prompts"
)

const (
	defaultParseAttempts  = 3
	defaultAttemptTimeout = 60 * time.Second
)

const extractionSystemPrompt = `You extract study material from document excerpts.

Output ONLY valid JSON. Do not include any preamble, explanation, greeting, or acknowledgment.
Start your response directly with the opening brace { and end with the closing brace }.
The object must have exactly these keys:
  "summary": one or two sentences summarizing the excerpt
  "facts": an array of short factual statements taken from the excerpt
  "questions": an array of study questions the excerpt answers

Include only information stated in or clearly implied by the excerpt. Do not hallucinate.`

var extractionPrompt = prompts.NewPromptTemplate(
	"Excerpt:\n{{.text}}\n\nReturn the JSON object now.",
	[]string{"text"},
)

var errIncompleteKnowledge = errors.New("response has no summary")

// LLMExtractor implements Extractor with a text generation model.
type LLMExtractor struct {
	generator ai.Generator
	fallback  Extractor
	attempts  int
	timeout   time.Duration
	logger    *slog.Logger
}

var _ Extractor = (*LLMExtractor)(nil)

// LLMOption configures an LLMExtractor.
type LLMOption func(*LLMExtractor) error

// WithParseAttempts sets how many replies are requested before giving up
// on malformed JSON.
func WithParseAttempts(n int) LLMOption {
	return func(e *LLMExtractor) error {
		if n < 1 {
			return fmt.Errorf("parse attempts must be at least 1, got %d", n)
		}
		e.attempts = n
		return nil
	}
}

// WithTimeout bounds each generation attempt. A model that does not answer
// in time is treated like a failed generation. Default is 60 seconds.
func WithTimeout(d time.Duration) LLMOption {
	return func(e *LLMExtractor) error {
		if d <= 0 {
			return fmt.Errorf("timeout must be positive, got %s", d)
		}
		e.timeout = d
		return nil
	}
}

// WithFallback sets the extractor used when the model fails.
// The default is TemplateExtractor.
func WithFallback(fallback Extractor) LLMOption {
	return func(e *LLMExtractor) error {
		e.fallback = fallback
		return nil
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) LLMOption {
	return func(e *LLMExtractor) error {
		e.logger = logger.With("component", "knowledge-extractor")
		return nil
	}
}

// NewLLMExtractor creates an extractor backed by generator.
func NewLLMExtractor(generator ai.Generator, opts ...LLMOption) (*LLMExtractor, error) {
	if generator == nil {
		return nil, errors.New("generator is required")
	}
	e := &LLMExtractor{
		generator: generator,
		fallback:  TemplateExtractor{},
		attempts:  defaultParseAttempts,
		timeout:   defaultAttemptTimeout,
		logger:    slog.Default().With("component", "knowledge-extractor"),
	}
	for _, opt := range opts {
		if err := opt(e); err != nil {
			return nil, err
		}
	}
	return e, nil
}

// Extract asks the model for Knowledge, retrying on malformed replies.
// Generation failures, attempt timeouts and parse failures fall back to the
// fallback extractor; only cancellation of ctx is returned as an error.
func (e *LLMExtractor) Extract(ctx context.Context, chunkText string) (Knowledge, error) {
	prompt, err := extractionPrompt.Format(map[string]any{"text": chunkText})
	if err != nil {
		return Knowledge{}, err
	}

	temperature := 0.0
	req := ai.GenerateRequest{
		System:      extractionSystemPrompt,
		Prompt:      prompt,
		Temperature: &temperature,
		JSON:        true,
	}

	var lastErr error
	for attempt := 1; attempt <= e.attempts; attempt++ {
		attemptCtx, cancel := context.WithTimeout(ctx, e.timeout)
		response, err := e.generator.Generate(attemptCtx, req)
		cancel()
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return Knowledge{}, ctxErr
			}
			e.logger.Warn("knowledge generation failed, using fallback",
				"attempt", attempt,
				"timedOut", errors.Is(err, context.DeadlineExceeded),
				"err", err)
			return e.fallback.Extract(ctx, chunkText)
		}

		k, err := parseKnowledge(response)
		if err == nil {
			return k, nil
		}
		lastErr = err
		e.logger.Warn("error parsing knowledge response",
			"attempt", attempt,
			"response", response,
			"err", err)
	}

	e.logger.Error("failed to parse knowledge response after retries", "err", lastErr)
	return e.fallback.Extract(ctx, chunkText)
}

func parseKnowledge(response string) (Knowledge, error) {
	var k Knowledge
	if err := json.Unmarshal([]byte(repairJSON(cleanResponse(response))), &k); err != nil {
		return Knowledge{}, err
	}
	k.Summary = strings.TrimSpace(k.Summary)
	if k.Summary == "" {
		return Knowledge{}, errIncompleteKnowledge
	}
	k.Facts = compact(k.Facts)
	k.Questions = compact(k.Questions)
	return k, nil
}

// compact trims items and drops empty ones, never returning nil.
func compact(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
