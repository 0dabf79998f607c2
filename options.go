package scholia

import (
	"log/slog"
	"time"

	"github.com/poiesic/scholia/ai"
	"github.com/poiesic/scholia/config"
	"github.com/poiesic/scholia/metrics"
)

// DatabaseOption configures a Database.
type DatabaseOption func(*databaseOptions)

type databaseOptions struct {
	aiConfig        *ai.Config
	provider        ai.AIProvider
	inMemory        bool
	logger          *slog.Logger
	metrics         *metrics.Metrics
	poolSize        int
	maxChunkLength  int
	fetchTimeout    time.Duration
	extractTimeout  time.Duration
	generateTimeout time.Duration
	topK            int
	llmKnowledge    bool
	localFiles      bool
}

// WithAIConfig sets the AI provider configuration. Default is ai.DefaultConfig().
func WithAIConfig(cfg *ai.Config) DatabaseOption {
	return func(o *databaseOptions) {
		o.aiConfig = cfg
	}
}

// WithProvider uses an already constructed AI provider instead of building
// one from the AI configuration. The Database closes it on Close.
func WithProvider(provider ai.AIProvider) DatabaseOption {
	return func(o *databaseOptions) {
		o.provider = provider
	}
}

// WithInMemory keeps all data in memory. The path passed to NewDatabase is ignored.
func WithInMemory(inMemory bool) DatabaseOption {
	return func(o *databaseOptions) {
		o.inMemory = inMemory
	}
}

func WithLogger(logger *slog.Logger) DatabaseOption {
	return func(o *databaseOptions) {
		o.logger = logger
	}
}

// WithMetrics records ingestion, embedding, search and generation metrics
// into m. Default is a fresh registry, see Database.Metrics.
func WithMetrics(m *metrics.Metrics) DatabaseOption {
	return func(o *databaseOptions) {
		o.metrics = m
	}
}

// WithPoolSize sets the number of concurrent ingestion runs. 0 selects NumCPU/2.
func WithPoolSize(size int) DatabaseOption {
	return func(o *databaseOptions) {
		o.poolSize = size
	}
}

func WithMaxChunkLength(n int) DatabaseOption {
	return func(o *databaseOptions) {
		o.maxChunkLength = n
	}
}

// WithFetchTimeout bounds downloads of document sources.
func WithFetchTimeout(timeout time.Duration) DatabaseOption {
	return func(o *databaseOptions) {
		o.fetchTimeout = timeout
	}
}

// WithExtractTimeout bounds text extraction of one document.
func WithExtractTimeout(timeout time.Duration) DatabaseOption {
	return func(o *databaseOptions) {
		o.extractTimeout = timeout
	}
}

// WithGenerateTimeout bounds one chat answer or content generation.
func WithGenerateTimeout(timeout time.Duration) DatabaseOption {
	return func(o *databaseOptions) {
		o.generateTimeout = timeout
	}
}

// WithTopK sets how many chunks ground a chat answer.
func WithTopK(k int) DatabaseOption {
	return func(o *databaseOptions) {
		o.topK = k
	}
}

// WithLLMKnowledge derives knowledge entries with the generator instead of
// the summary templates.
func WithLLMKnowledge(enabled bool) DatabaseOption {
	return func(o *databaseOptions) {
		o.llmKnowledge = enabled
	}
}

// WithLocalFiles admits file:// source URLs and lets ingestion read them from
// the local filesystem. Leave it off for databases reachable over the network.
func WithLocalFiles(enabled bool) DatabaseOption {
	return func(o *databaseOptions) {
		o.localFiles = enabled
	}
}

// WithConfig applies every setting of a loaded configuration file.
// Later options override it.
func WithConfig(cfg *config.Config) DatabaseOption {
	return func(o *databaseOptions) {
		o.aiConfig = cfg.AIConfig()
		o.inMemory = cfg.Storage.InMemory
		o.poolSize = cfg.Ingestion.PoolSize
		o.maxChunkLength = cfg.Ingestion.MaxChunkLength
		o.fetchTimeout = cfg.FetchTimeout()
		o.extractTimeout = cfg.ExtractTimeout()
		o.generateTimeout = cfg.GenerateTimeout()
		o.topK = cfg.Generation.TopK
		o.llmKnowledge = cfg.AI.LLMKnowledge
	}
}
