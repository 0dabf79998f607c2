package ai

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/time/rate"
)

// EmbedObserver is told the duration and outcome of every embedding call.
type EmbedObserver func(elapsed time.Duration, err error)

// ResilientEmbedder wraps an Embedder with a per-call timeout, rate limiting,
// retries with exponential backoff and vector validation.
type ResilientEmbedder struct {
	inner       Embedder
	timeout     time.Duration
	limiter     *rate.Limiter
	maxAttempts int
	retryDelay  time.Duration
	dimension   int
	observer    EmbedObserver
	logger      *slog.Logger
}

var _ Embedder = (*ResilientEmbedder)(nil)

// ResilientOption configures a ResilientEmbedder.
type ResilientOption func(*ResilientEmbedder) error

// WithTimeout bounds each attempt.
func WithTimeout(timeout time.Duration) ResilientOption {
	return func(r *ResilientEmbedder) error {
		if timeout <= 0 {
			return fmt.Errorf("timeout must be positive, got %s", timeout)
		}
		r.timeout = timeout
		return nil
	}
}

// WithRateLimit allows rps calls per second with the given burst. rps 0 disables limiting.
func WithRateLimit(rps float64, burst int) ResilientOption {
	return func(r *ResilientEmbedder) error {
		if rps <= 0 {
			r.limiter = nil
			return nil
		}
		if burst < 1 {
			burst = 1
		}
		r.limiter = rate.NewLimiter(rate.Limit(rps), burst)
		return nil
	}
}

// WithBackoff sets the retry policy.
func WithBackoff(maxAttempts int, baseDelay time.Duration) ResilientOption {
	return func(r *ResilientEmbedder) error {
		if maxAttempts <= 0 {
			return ErrInvalidMaxAttempts
		}
		r.maxAttempts = maxAttempts
		r.retryDelay = baseDelay
		return nil
	}
}

// WithDimension rejects vectors whose length differs from dim. 0 accepts any length.
func WithDimension(dim int) ResilientOption {
	return func(r *ResilientEmbedder) error {
		r.dimension = dim
		return nil
	}
}

// WithObserver installs a callback for latency and error reporting.
func WithObserver(observer EmbedObserver) ResilientOption {
	return func(r *ResilientEmbedder) error {
		r.observer = observer
		return nil
	}
}

// WithEmbedLogger sets the logger.
func WithEmbedLogger(logger *slog.Logger) ResilientOption {
	return func(r *ResilientEmbedder) error {
		r.logger = logger.With("component", "resilient-embedder")
		return nil
	}
}

// NewResilientEmbedder wraps inner. Defaults: 30s timeout, 3 attempts, 500ms base delay, no rate limit.
func NewResilientEmbedder(inner Embedder, opts ...ResilientOption) (*ResilientEmbedder, error) {
	r := &ResilientEmbedder{
		inner:       inner,
		timeout:     30 * time.Second,
		maxAttempts: 3,
		retryDelay:  500 * time.Millisecond,
		logger:      slog.Default().With("component", "resilient-embedder"),
	}
	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// NewResilientEmbedderFromConfig wraps inner using the timeouts and limits in cfg.
func NewResilientEmbedderFromConfig(inner Embedder, cfg *Config, opts ...ResilientOption) (*ResilientEmbedder, error) {
	base := []ResilientOption{
		WithTimeout(cfg.RequestTimeout),
		WithBackoff(cfg.MaxAttempts, cfg.RetryDelay),
		WithRateLimit(cfg.RequestsPerSecond, 1),
		WithDimension(cfg.EmbeddingDimension),
	}
	return NewResilientEmbedder(inner, append(base, opts...)...)
}

// EmbedText embeds one text, retrying transient failures.
func (r *ResilientEmbedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	var vector []float32
	err := r.do(ctx, func(callCtx context.Context) error {
		v, err := r.inner.EmbedText(callCtx, text)
		if err != nil {
			return err
		}
		if err := r.check(v); err != nil {
			return err
		}
		vector = v
		return nil
	})
	return vector, err
}

// EmbedTexts embeds a batch, retrying the whole batch on transient failures.
func (r *ResilientEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	var vectors [][]float32
	err := r.do(ctx, func(callCtx context.Context) error {
		vs, err := r.inner.EmbedTexts(callCtx, texts)
		if err != nil {
			return err
		}
		if len(vs) != len(texts) {
			return fmt.Errorf("%w: expected %d vectors, got %d", ErrEmptyEmbedding, len(texts), len(vs))
		}
		for _, v := range vs {
			if err := r.check(v); err != nil {
				return err
			}
		}
		vectors = vs
		return nil
	})
	return vectors, err
}

func (r *ResilientEmbedder) do(ctx context.Context, call func(context.Context) error) error {
	return RetryWithBackoff(ctx, func() error {
		if r.limiter != nil {
			if err := r.limiter.Wait(ctx); err != nil {
				return err
			}
		}
		callCtx, cancel := context.WithTimeout(ctx, r.timeout)
		defer cancel()

		start := time.Now()
		err := call(callCtx)
		if r.observer != nil {
			r.observer(time.Since(start), err)
		}
		if err != nil {
			r.logger.Debug("embedding attempt failed", "err", err)
		}
		return err
	}, r.maxAttempts, r.retryDelay)
}

func (r *ResilientEmbedder) check(v []float32) error {
	if len(v) == 0 {
		return ErrEmptyEmbedding
	}
	if r.dimension > 0 && len(v) != r.dimension {
		return fmt.Errorf("%w: expected %d, got %d", ErrDimensionMismatch, r.dimension, len(v))
	}
	return nil
}
