// Package extract converts raw document bytes into plain text.
//
// Extraction never fails a pipeline run: unsupported types produce
// UnsupportedPlaceholder and any parse error or timeout produces
// ErrorPlaceholder. The placeholder text is then chunked like any other text.
package extract

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/poiesic/scholia/core"
)

const (
	// UnsupportedPlaceholder is the text produced for unknown document types.
	UnsupportedPlaceholder = "[Unsupported file type]"

	// ErrorPlaceholder is the text produced when extraction fails.
	ErrorPlaceholder = "Error extracting text"

	defaultTimeout = 60 * time.Second
)

// ErrUnsupportedType is returned by ExtractText for unknown document types.
var ErrUnsupportedType = errors.New("unsupported document type")

// Extractor turns document bytes into text.
type Extractor struct {
	timeout time.Duration
	tempDir string
	logger  *slog.Logger
}

// Option configures an Extractor.
type Option func(*Extractor) error

// WithTimeout bounds each extraction.
func WithTimeout(timeout time.Duration) Option {
	return func(e *Extractor) error {
		if timeout <= 0 {
			return fmt.Errorf("timeout must be positive, got %s", timeout)
		}
		e.timeout = timeout
		return nil
	}
}

// WithTempDir sets the scratch directory used for PDF processing.
func WithTempDir(dir string) Option {
	return func(e *Extractor) error {
		e.tempDir = dir
		return nil
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Extractor) error {
		e.logger = logger.With("component", "extractor")
		return nil
	}
}

// NewExtractor creates an Extractor with a 60 second timeout.
func NewExtractor(opts ...Option) (*Extractor, error) {
	e := &Extractor{
		timeout: defaultTimeout,
		tempDir: os.TempDir(),
		logger:  slog.Default().With("component", "extractor"),
	}
	for _, opt := range opts {
		if err := opt(e); err != nil {
			return nil, err
		}
	}
	return e, nil
}

// Extract returns the text of data interpreted as docType. It never fails;
// see the package documentation for the placeholder texts.
func (e *Extractor) Extract(ctx context.Context, data []byte, docType core.DocumentType) string {
	text, err := e.ExtractText(ctx, data, docType)
	switch {
	case errors.Is(err, ErrUnsupportedType):
		e.logger.Warn("unsupported document type", "type", docType)
		return UnsupportedPlaceholder
	case err != nil:
		e.logger.Error("text extraction failed", "type", docType, "err", err)
		return ErrorPlaceholder
	}
	return text
}

// ExtractText is Extract with errors reported instead of replaced by placeholders.
func (e *Extractor) ExtractText(ctx context.Context, data []byte, docType core.DocumentType) (string, error) {
	var parse func([]byte) (string, error)
	switch docType {
	case core.DocumentTypeText:
		parse = plainText
	case core.DocumentTypeURL:
		parse = webText
	case core.DocumentTypeWord:
		parse = docxText
	case core.DocumentTypePDF:
		parse = e.pdfText
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedType, docType)
	}

	if err := ctx.Err(); err != nil {
		return "", err
	}
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	type result struct {
		text string
		err  error
	}
	done := make(chan result, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- result{err: fmt.Errorf("extractor panic: %v", r)}
			}
		}()
		text, err := parse(data)
		done <- result{text: text, err: err}
	}()

	select {
	case r := <-done:
		return r.text, r.err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}
