package ai

import "errors"

var (
	// ErrNotConfigured is returned when a service has no credentials.
	// It is never retried.
	ErrNotConfigured = errors.New("AI service is not configured")

	// ErrEmptyEmbedding is returned when a service answers with an empty vector.
	ErrEmptyEmbedding = errors.New("embedding service returned an empty vector")

	// ErrDimensionMismatch is returned when a vector does not have the configured dimension.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")

	// ErrEmptyResponse is returned when a generator produces no choices.
	ErrEmptyResponse = errors.New("model returned no response")

	// ErrUnknownProvider is returned for an unsupported provider name.
	ErrUnknownProvider = errors.New("unknown AI provider")

	// ErrInvalidMaxAttempts is returned when maxAttempts is not positive.
	ErrInvalidMaxAttempts = errors.New("maxAttempts must be greater than 0")
)
