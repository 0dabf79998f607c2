package scholia

import (
	"context"
	"fmt"

	"github.com/poiesic/scholia/ai"
	"github.com/poiesic/scholia/ai/gemini"
	"github.com/poiesic/scholia/ai/mock"
	"github.com/poiesic/scholia/ai/openai"
)

// NewProvider builds the AI provider named by cfg.Provider.
func NewProvider(ctx context.Context, cfg *ai.Config) (ai.AIProvider, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	switch cfg.Provider {
	case ai.ProviderOpenAI:
		return openai.NewProvider(cfg)
	case ai.ProviderGemini:
		return gemini.NewProvider(ctx, cfg)
	case ai.ProviderMock:
		return mock.NewProviderFromConfig(cfg), nil
	}
	return nil, fmt.Errorf("%w: %q", ai.ErrUnknownProvider, cfg.Provider)
}
