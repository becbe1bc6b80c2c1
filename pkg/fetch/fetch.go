package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/edgemirror/image-cache-server/pkg/e"
	"github.com/edgemirror/image-cache-server/pkg/metrics"
	"github.com/edgemirror/image-cache-server/pkg/s"
)

//go:generate mockgen -destination=../../tests/mock_backend/fetcher.go -package=mock_backend github.com/edgemirror/image-cache-server/pkg/fetch Fetcher

// Fetcher retrieves an image from the source CDN, working around its
// anti-hotlinking protections.
type Fetcher interface {
	Fetch(ctx context.Context, sourceURL string) (s.FetchResult, error)
}

// Config holds the fixed fetch strategy parameters. Immutable after
// construction.
type Config struct {
	// MirrorHosts is the pair of interchangeable source hostnames.
	MirrorHosts [2]string
	// Headers sent with every attempt. The CDN's hotlink protection keys
	// off these, not the path.
	Headers map[string]string
	// KeepParams are the only query parameters retained on the first
	// attempt, render parameters rather than signing tokens.
	KeepParams []string
	// Extensions the final URL's last path segment may end in.
	Extensions []string
	// Timeout bounds each individual attempt.
	Timeout time.Duration
}

// DefaultConfig returns the strategy tuned for the Discord CDN pair.
func DefaultConfig() Config {
	return Config{
		MirrorHosts: [2]string{"cdn.discordapp.com", "media.discordapp.net"},
		Headers: map[string]string{
			"User-Agent": "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
			"Accept":     "image/avif,image/webp,image/apng,image/*,*/*;q=0.8",
			"Referer":    "https://discord.com/",
			"Origin":     "https://discord.com",
		},
		KeepParams: []string{"format", "quality"},
		Extensions: []string{"jpg", "jpeg", "png", "gif", "webp"},
		Timeout:    30 * time.Second,
	}
}

// Client implements Fetcher over net/http. Stateless apart from the
// underlying connection pool, safe for concurrent use.
type Client struct {
	httpClient *http.Client
	cfg        Config
}

func New(cfg Config) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		cfg:        cfg,
	}
}

// NewWithHTTPClient is used by tests to substitute a transport.
func NewWithHTTPClient(cfg Config, httpClient *http.Client) *Client {
	return &Client{httpClient: httpClient, cfg: cfg}
}

const maxAttempts = 3

// Fetch runs the ordered fallback sequence, stopping at the first HTTP
// success:
//
//	1. URL with non-essential query params stripped, browser-like headers
//	2. on 403 only, mirror host swap
//	3. on 403 again, all query params stripped
//
// Any non-forbidden failure terminates the sequence. Every variant tried is
// retained on the returned error for diagnostics.
func (c *Client) Fetch(ctx context.Context, sourceURL string) (s.FetchResult, error) {
	variant := stripParams(sourceURL, c.cfg.KeepParams)
	attempts := make([]s.Attempt, 0, maxAttempts)

	for attemptNo := 0; ; attemptNo++ {
		status, headers, body, err := c.do(ctx, variant)

		attempt := s.Attempt{URL: variant, Status: status}
		if err != nil {
			attempt.Error = err.Error()
		}
		attempts = append(attempts, attempt)

		if err != nil {
			metrics.ObserveFetchAttempt(attemptNo, "network_error")
			return s.FetchResult{}, e.Fetch("failed to fetch image from source", 0, err).
				WithContext("attempts", attempts)
		}

		if status >= http.StatusOK && status < http.StatusMultipleChoices {
			metrics.ObserveFetchAttempt(attemptNo, "success")
			return c.validate(body, headers.Get("Content-Type"), variant, attempts)
		}

		if status != http.StatusForbidden || attemptNo == maxAttempts-1 {
			metrics.ObserveFetchAttempt(attemptNo, "upstream_error")
			return s.FetchResult{}, e.Fetch(fmt.Sprintf("source responded with status %d", status), status, nil).
				WithContext("attempts", attempts).
				WithContext("response_headers", flattenHeaders(headers))
		}

		metrics.ObserveFetchAttempt(attemptNo, "forbidden")
		switch attemptNo {
		case 0:
			variant = swapMirrorHost(variant, c.cfg.MirrorHosts)
		case 1:
			variant = stripParams(variant, nil)
		}
	}
}

func (c *Client) do(ctx context.Context, target string) (int, http.Header, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return 0, nil, nil, err
	}
	for key, value := range c.cfg.Headers {
		req.Header.Set(key, value)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, nil, err
	}

	return resp.StatusCode, resp.Header, body, nil
}

// validate checks a structurally successful response actually carries an
// image. Failures here are validation errors, not fetch errors, and never
// trigger further retries.
func (c *Client) validate(body []byte, contentType, finalURL string, attempts []s.Attempt) (s.FetchResult, error) {
	if !strings.HasPrefix(contentType, "image/") {
		return s.FetchResult{}, e.Validation("source did not return an image").
			WithContext("content_type", contentType).
			WithContext("final_url", finalURL)
	}

	ext := extensionOf(finalURL)
	allowed := false
	for _, candidate := range c.cfg.Extensions {
		if ext == candidate {
			allowed = true
			break
		}
	}
	if !allowed {
		return s.FetchResult{}, e.Validation("file extension is not an allowed image type").
			WithContext("extension", ext).
			WithContext("final_url", finalURL)
	}

	return s.FetchResult{
		Body:        body,
		ContentType: contentType,
		FinalURL:    finalURL,
		Extension:   ext,
		Attempts:    attempts,
	}, nil
}

func flattenHeaders(headers http.Header) map[string]string {
	flat := make(map[string]string, len(headers))
	for key := range headers {
		flat[key] = headers.Get(key)
	}
	return flat
}
