package gemini

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/poiesic/scholia/ai"
	"google.golang.org/genai"
)

// Generator implements ai.Generator with Gemini chat models.
type Generator struct {
	client      *genai.Client
	model       string
	temperature float64
	logger      *slog.Logger
}

var _ ai.Generator = (*Generator)(nil)

func newGenerator(client *genai.Client, config *ai.Config) *Generator {
	return &Generator{
		client:      client,
		model:       config.GenerationModel,
		temperature: config.Temperature,
		logger:      slog.Default().With("component", "gemini-generator"),
	}
}

// Generate sends req as a single user turn with an optional system instruction.
func (g *Generator) Generate(ctx context.Context, req ai.GenerateRequest) (string, error) {
	if g.client == nil {
		return "", fmt.Errorf("gemini: %w", ai.ErrNotConfigured)
	}

	temperature := g.temperature
	if req.Temperature != nil {
		temperature = *req.Temperature
	}
	config := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(float32(temperature)),
	}
	if req.System != "" {
		config.SystemInstruction = genai.NewContentFromText(req.System, genai.RoleUser)
	}
	if req.JSON {
		config.ResponseMIMEType = "application/json"
	}

	g.logger.Debug("generating content", "model", g.model, "promptLength", len(req.Prompt))
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(req.Prompt), config)
	if err != nil {
		g.logger.Error("failed to generate content", "err", err)
		return "", err
	}
	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", ai.ErrEmptyResponse
	}
	return text, nil
}
