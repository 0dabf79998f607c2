package generation

import (
	"log/slog"
	"time"

	"github.com/poiesic/scholia/access"
	"github.com/poiesic/scholia/ai"
	"github.com/poiesic/scholia/metrics"
	"github.com/poiesic/scholia/search"
	"github.com/poiesic/scholia/storage"
)

const defaultGenerateTimeout = 2 * time.Minute

// Repositories are the stores the orchestrator reads and appends to.
type Repositories struct {
	Chats     storage.ChatRepository
	Contents  storage.ContentRepository
	Chunks    storage.ChunkRepository
	Knowledge storage.KnowledgeRepository
}

// Orchestrator answers chat turns and generates structured content.
type Orchestrator struct {
	guard     *access.Guard
	repos     Repositories
	searcher  *search.Searcher
	generator ai.Generator

	topK    int
	timeout time.Duration
	metrics *metrics.Metrics
	logger  *slog.Logger
	locks   *notebookLocks
}

// Option configures an Orchestrator.
type Option func(*Orchestrator) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) error {
		if logger == nil {
			logger = slog.Default()
		}
		o.logger = logger
		return nil
	}
}

// WithTopK sets how many chunks ground a chat answer.
// Default is search.DefaultK.
func WithTopK(k int) Option {
	return func(o *Orchestrator) error {
		if k < 1 {
			return ErrInvalidTopK
		}
		o.topK = k
		return nil
	}
}

// WithGenerateTimeout bounds each generation call.
// Default is two minutes.
func WithGenerateTimeout(timeout time.Duration) Option {
	return func(o *Orchestrator) error {
		if timeout <= 0 {
			return ErrInvalidTimeout
		}
		o.timeout = timeout
		return nil
	}
}

// WithMetrics records generation requests into m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(o *Orchestrator) error {
		o.metrics = m
		return nil
	}
}

// NewOrchestrator creates an orchestrator.
func NewOrchestrator(guard *access.Guard, repos Repositories, searcher *search.Searcher, generator ai.Generator, opts ...Option) (*Orchestrator, error) {
	switch {
	case guard == nil:
		return nil, ErrGuardRequired
	case repos.Chats == nil:
		return nil, ErrChatRepositoryRequired
	case repos.Contents == nil:
		return nil, ErrContentRepositoryRequired
	case repos.Chunks == nil:
		return nil, ErrChunkRepositoryRequired
	case repos.Knowledge == nil:
		return nil, ErrKnowledgeRepositoryRequired
	case searcher == nil:
		return nil, ErrSearcherRequired
	case generator == nil:
		return nil, ErrGeneratorRequired
	}

	o := &Orchestrator{
		guard:     guard,
		repos:     repos,
		searcher:  searcher,
		generator: generator,
		topK:      search.DefaultK,
		timeout:   defaultGenerateTimeout,
		logger:    slog.Default(),
		locks:     newNotebookLocks(),
	}
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}
	o.logger = o.logger.With("component", "generation")
	return o, nil
}
