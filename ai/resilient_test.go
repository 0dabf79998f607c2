package ai

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubEmbedder fails the first failures calls with err and then returns vector.
type stubEmbedder struct {
	calls    atomic.Int32
	failures int32
	err      error
	vector   []float32
	delay    time.Duration
}

func (s *stubEmbedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	n := s.calls.Add(1)
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if n <= s.failures {
		return nil, s.err
	}
	return s.vector, nil
}

func (s *stubEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		v, err := s.EmbedText(ctx, text)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func TestResilientEmbedder_RetriesTransientFailures(t *testing.T) {
	stub := &stubEmbedder{failures: 2, err: errors.New("503"), vector: []float32{1, 0}}
	var observed atomic.Int32
	r, err := NewResilientEmbedder(stub,
		WithBackoff(3, time.Millisecond),
		WithObserver(func(time.Duration, error) { observed.Add(1) }),
	)
	require.NoError(t, err)

	v, err := r.EmbedText(context.Background(), "x")
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 0}, v)
	assert.Equal(t, int32(3), stub.calls.Load())
	assert.Equal(t, int32(3), observed.Load())
}

func TestResilientEmbedder_GivesUp(t *testing.T) {
	stub := &stubEmbedder{failures: 10, err: errors.New("503"), vector: []float32{1}}
	r, err := NewResilientEmbedder(stub, WithBackoff(2, time.Millisecond))
	require.NoError(t, err)

	_, err = r.EmbedText(context.Background(), "x")
	assert.EqualError(t, err, "503")
	assert.Equal(t, int32(2), stub.calls.Load())
}

func TestResilientEmbedder_NotConfiguredIsNotRetried(t *testing.T) {
	stub := &stubEmbedder{failures: 10, err: ErrNotConfigured}
	r, err := NewResilientEmbedder(stub, WithBackoff(5, time.Millisecond))
	require.NoError(t, err)

	_, err = r.EmbedText(context.Background(), "x")
	assert.ErrorIs(t, err, ErrNotConfigured)
	assert.Equal(t, int32(1), stub.calls.Load())
}

func TestResilientEmbedder_RejectsBadVectors(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		stub := &stubEmbedder{vector: []float32{}}
		r, err := NewResilientEmbedder(stub, WithBackoff(2, time.Millisecond))
		require.NoError(t, err)

		_, err = r.EmbedText(context.Background(), "x")
		assert.ErrorIs(t, err, ErrEmptyEmbedding)
	})

	t.Run("wrong dimension", func(t *testing.T) {
		stub := &stubEmbedder{vector: []float32{1, 2, 3}}
		r, err := NewResilientEmbedder(stub, WithBackoff(3, time.Millisecond), WithDimension(2))
		require.NoError(t, err)

		_, err = r.EmbedTexts(context.Background(), []string{"a"})
		assert.ErrorIs(t, err, ErrDimensionMismatch)
		assert.Equal(t, int32(1), stub.calls.Load())
	})
}

func TestResilientEmbedder_Timeout(t *testing.T) {
	stub := &stubEmbedder{vector: []float32{1}, delay: time.Second}
	r, err := NewResilientEmbedder(stub, WithTimeout(10*time.Millisecond), WithBackoff(2, time.Millisecond))
	require.NoError(t, err)

	start := time.Now()
	_, err = r.EmbedText(context.Background(), "x")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 500*time.Millisecond)
}

func TestResilientEmbedder_RateLimit(t *testing.T) {
	stub := &stubEmbedder{vector: []float32{1}}
	r, err := NewResilientEmbedder(stub, WithRateLimit(20, 1))
	require.NoError(t, err)

	start := time.Now()
	for i := 0; i < 3; i++ {
		_, err := r.EmbedText(context.Background(), "x")
		require.NoError(t, err)
	}
	// Three calls at 20/s with burst 1 need at least two 50ms intervals.
	assert.GreaterOrEqual(t, time.Since(start), 90*time.Millisecond)
}

func TestNewResilientEmbedder_InvalidOptions(t *testing.T) {
	_, err := NewResilientEmbedder(&stubEmbedder{}, WithBackoff(0, time.Millisecond))
	assert.ErrorIs(t, err, ErrInvalidMaxAttempts)

	_, err = NewResilientEmbedder(&stubEmbedder{}, WithTimeout(0))
	assert.Error(t, err)
}

func TestNewResilientEmbedderFromConfig(t *testing.T) {
	cfg := NewConfig(WithEmbeddingDimension(2), WithRetry(1, time.Millisecond))
	r, err := NewResilientEmbedderFromConfig(&stubEmbedder{vector: []float32{1, 2}}, cfg)
	require.NoError(t, err)

	v, err := r.EmbedText(context.Background(), "x")
	require.NoError(t, err)
	assert.Len(t, v, 2)
}
