package analyzer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/net/html/charset"
)

var (
	// ErrInvalidURL is returned for anything that is not an absolute http(s) URL.
	ErrInvalidURL = errors.New("invalid URL")
	// ErrFetch covers transport failures, timeouts and non-2xx responses.
	ErrFetch = errors.New("upstream fetch failed")
)

const (
	DefaultFetchTimeout = 15 * time.Second
	maxBodySize         = 10 * 1024 * 1024
	userAgent           = "SEOAnalyzer/1.0"
)

// PageFetcher retrieves the raw HTML of a page.
type PageFetcher interface {
	Fetch(ctx context.Context, rawURL string) (string, error)
}

// Fetcher performs a single GET per call. It never retries.
type Fetcher struct {
	client  *http.Client
	headers http.Header
}

// NewFetcher creates a fetcher whose requests are bounded by timeout.
func NewFetcher(timeout time.Duration) *Fetcher {
	if timeout <= 0 {
		timeout = DefaultFetchTimeout
	}
	transport := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	}
	return &Fetcher{
		client: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
		headers: http.Header{
			"User-Agent":      []string{userAgent},
			"Accept":          []string{"text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8"},
			"Accept-Language": []string{"en-US,en;q=0.5"},
		},
	}
}

// ValidateURL parses rawURL and requires an absolute http or https URL.
func ValidateURL(rawURL string) (*url.URL, error) {
	if rawURL == "" {
		return nil, fmt.Errorf("%w: URL is required", ErrInvalidURL)
	}
	u, err := url.ParseRequestURI(rawURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("%w: %s must be an absolute http(s) URL", ErrInvalidURL, rawURL)
	}
	return u, nil
}

// Fetch returns the page body decoded to UTF-8.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (string, error) {
	if _, err := ValidateURL(rawURL); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", fmt.Errorf("%w: failed to create request: %v", ErrFetch, err)
	}
	for key, vals := range f.headers {
		for _, val := range vals {
			req.Header.Add(key, val)
		}
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrFetch, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("%w: %s returned %s", ErrFetch, rawURL, resp.Status)
	}

	body, err := charset.NewReader(io.LimitReader(resp.Body, maxBodySize), resp.Header.Get("Content-Type"))
	if err != nil {
		return "", fmt.Errorf("%w: unsupported charset: %v", ErrFetch, err)
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return "", fmt.Errorf("%w: reading body: %v", ErrFetch, err)
	}
	return string(data), nil
}
