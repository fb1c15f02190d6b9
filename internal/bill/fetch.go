package bill

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

const (
	// DefaultFetchTimeout bounds a whole document download
	DefaultFetchTimeout = 20 * time.Second

	// DefaultMaxDocumentSize caps downloaded and uploaded documents
	DefaultMaxDocumentSize = 50 << 20
)

// ErrFetch marks failures to retrieve a document from its URL
var ErrFetch = errors.New("could not fetch document")

// Fetcher downloads a document by URL
type Fetcher interface {
	Fetch(ctx context.Context, documentURL string) (data []byte, contentType string, err error)
}

// HTTPFetcher implements Fetcher with a plain HTTP GET
type HTTPFetcher struct {
	client  *http.Client
	maxSize int64
}

// NewHTTPFetcher creates a fetcher; zero values fall back to the defaults
func NewHTTPFetcher(timeout time.Duration, maxSize int64) *HTTPFetcher {
	if timeout <= 0 {
		timeout = DefaultFetchTimeout
	}
	if maxSize <= 0 {
		maxSize = DefaultMaxDocumentSize
	}
	return &HTTPFetcher{
		client:  &http.Client{Timeout: timeout},
		maxSize: maxSize,
	}
}

// Fetch downloads documentURL. Non-2xx responses and bodies over the size
// cap are errors.
func (f *HTTPFetcher) Fetch(ctx context.Context, documentURL string) ([]byte, string, error) {
	u, err := url.Parse(documentURL)
	if err != nil {
		return nil, "", fmt.Errorf("parsing url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, "", fmt.Errorf("unsupported url scheme %q", u.Scheme)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, "", fmt.Errorf("creating request: %w", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("downloading document: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, "", fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, f.maxSize+1))
	if err != nil {
		return nil, "", fmt.Errorf("reading body: %w", err)
	}
	if int64(len(data)) > f.maxSize {
		return nil, "", fmt.Errorf("document exceeds %d bytes", f.maxSize)
	}

	return data, resp.Header.Get("Content-Type"), nil
}
