package scholia

import "errors"

var (
	// ErrInvalidRequest indicates a request that failed validation.
	ErrInvalidRequest = errors.New("invalid request")
	// ErrEmptyQuery indicates a search without query text.
	ErrEmptyQuery = errors.New("query must not be empty")
)
