package ingestion

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"time"
)

const (
	defaultFetchTimeout = 30 * time.Second
	defaultMaxBodySize  = 64 << 20
)

// Fetcher retrieves the raw bytes of a document source.
type Fetcher interface {
	Fetch(ctx context.Context, sourceURL string) ([]byte, error)
}

// FetchStatusError reports a non-success response from a remote source.
type FetchStatusError struct {
	StatusCode int
	Status     string
}

func (e *FetchStatusError) Error() string {
	return "Failed to fetch document content: " + e.Status
}

// SourceFetcher reads http(s):// URLs with an HTTP client. file:// URLs are
// read from the local filesystem only when enabled with WithLocalFiles.
type SourceFetcher struct {
	client      *http.Client
	timeout     time.Duration
	maxBodySize int64
	localFiles  bool
}

var _ Fetcher = (*SourceFetcher)(nil)

// FetcherOption configures a SourceFetcher.
type FetcherOption func(*SourceFetcher)

// WithLocalFiles allows file:// sources. Only trusted callers such as the
// command line should enable it.
func WithLocalFiles(enabled bool) FetcherOption {
	return func(f *SourceFetcher) {
		f.localFiles = enabled
	}
}

// WithMaxBodySize caps the bytes read from any source. Non-positive values are ignored.
func WithMaxBodySize(n int64) FetcherOption {
	return func(f *SourceFetcher) {
		if n > 0 {
			f.maxBodySize = n
		}
	}
}

// NewSourceFetcher creates a fetcher. A nil client selects a default client.
// A non-positive timeout selects 30 seconds.
func NewSourceFetcher(client *http.Client, timeout time.Duration, opts ...FetcherOption) *SourceFetcher {
	if client == nil {
		client = &http.Client{}
	}
	if timeout <= 0 {
		timeout = defaultFetchTimeout
	}
	f := &SourceFetcher{client: client, timeout: timeout, maxBodySize: defaultMaxBodySize}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch returns the body at sourceURL.
func (f *SourceFetcher) Fetch(ctx context.Context, sourceURL string) ([]byte, error) {
	u, err := url.Parse(sourceURL)
	if err != nil {
		return nil, fmt.Errorf("invalid source URL: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	switch u.Scheme {
	case "http", "https":
		return f.fetchHTTP(ctx, u.String())
	case "file":
		if f.localFiles {
			return f.fetchFile(ctx, u.Path)
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrUnsupportedScheme, u.Scheme)
}

func (f *SourceFetcher) fetchHTTP(ctx context.Context, target string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, err
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		status := http.StatusText(resp.StatusCode)
		if status == "" {
			status = resp.Status
		}
		return nil, &FetchStatusError{StatusCode: resp.StatusCode, Status: status}
	}
	return io.ReadAll(io.LimitReader(resp.Body, f.maxBodySize))
}

func (f *SourceFetcher) fetchFile(ctx context.Context, path string) ([]byte, error) {
	type result struct {
		data []byte
		err  error
	}
	done := make(chan result, 1)
	go func() {
		file, err := os.Open(path)
		if err != nil {
			done <- result{nil, err}
			return
		}
		defer file.Close()
		data, err := io.ReadAll(io.LimitReader(file, f.maxBodySize))
		done <- result{data, err}
	}()
	select {
	case r := <-done:
		return r.data, r.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
