package source

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"aircheck/internal/logging"
)

// HTTPSource fetches documents from the live station site. References are
// paths relative to the configured base URL.
type HTTPSource struct {
	base       *url.URL
	userAgent  string
	httpClient *http.Client
	cache      *Cache
	refresh    bool
	logger     *slog.Logger
}

// Option configures an HTTPSource.
type Option func(*HTTPSource)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(s *HTTPSource) {
		if client != nil {
			s.httpClient = client
		}
	}
}

// WithUserAgent sets the User-Agent header sent on every request.
func WithUserAgent(agent string) Option {
	return func(s *HTTPSource) {
		s.userAgent = strings.TrimSpace(agent)
	}
}

// WithCache attaches an on-disk document cache. When refresh is true the
// cache is written through but never read, forcing live fetches.
func WithCache(cache *Cache, refresh bool) Option {
	return func(s *HTTPSource) {
		s.cache = cache
		s.refresh = refresh
	}
}

// WithLogger sets the source logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *HTTPSource) {
		if logger != nil {
			s.logger = logging.NewComponentLogger(logger, "source")
		}
	}
}

// NewHTTP creates a live source rooted at baseURL.
func NewHTTP(baseURL string, opts ...Option) (*HTTPSource, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, fmt.Errorf("base url required")
	}
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("base url %q must be absolute", baseURL)
	}
	src := &HTTPSource{
		base:       base,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     logging.NewNop(),
	}
	for _, opt := range opts {
		opt(src)
	}
	return src, nil
}

// GetReference fetches the document behind ref. Missing documents (404,
// 410) report ok=false with a nil error; other non-2xx statuses are
// transport errors.
func (s *HTTPSource) GetReference(ctx context.Context, ref string) ([]byte, bool, error) {
	ref = strings.TrimLeft(strings.TrimSpace(ref), "/")

	if s.cache != nil && !s.refresh {
		if body, ok, err := s.cache.Get(ctx, ref); err != nil {
			s.logger.Warn("cache read failed", logging.String("ref", ref), logging.Error(err))
		} else if ok {
			return body, true, nil
		}
	}

	endpoint := s.base.String() + "/" + ref
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, false, fmt.Errorf("build request for %q: %w", endpoint, err)
	}
	if s.userAgent != "" {
		req.Header.Set("User-Agent", s.userAgent)
	}

	requestStart := time.Now()
	resp, err := s.httpClient.Do(req)
	latency := time.Since(requestStart)
	if err != nil {
		return nil, false, fmt.Errorf("fetch %q (latency=%v): %w", endpoint, latency, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone:
		return nil, false, nil
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, false, fmt.Errorf("fetch %q returned %d (latency=%v)", endpoint, resp.StatusCode, latency)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, false, fmt.Errorf("read body of %q: %w", endpoint, err)
	}
	s.logger.Debug("fetched document",
		logging.String("ref", ref),
		logging.Int("bytes", len(body)),
		logging.Duration("latency", latency))

	if s.cache != nil {
		if err := s.cache.Put(ctx, ref, body); err != nil {
			s.logger.Warn("cache write failed", logging.String("ref", ref), logging.Error(err))
		}
	}
	return body, true, nil
}

// RelativePath converts an absolute URL under the base into a reference.
func (s *HTTPSource) RelativePath(rawURL string) string {
	trimmed := strings.TrimSpace(rawURL)
	if rest, ok := strings.CutPrefix(trimmed, s.base.String()); ok {
		return strings.Trim(rest, "/")
	}
	parsed, err := url.Parse(trimmed)
	if err != nil {
		return strings.Trim(trimmed, "/")
	}
	return strings.Trim(parsed.Path, "/")
}

// Reference resolves a possibly relative URL against the base.
func (s *HTTPSource) Reference(rawURL string) string {
	trimmed := strings.TrimSpace(rawURL)
	if trimmed == "" {
		return ""
	}
	parsed, err := url.Parse(trimmed)
	if err != nil {
		return ""
	}
	return strings.TrimRight(s.base.ResolveReference(parsed).String(), "/")
}

// UsesSitemap reports that live sources are discovered through sitemaps.
func (s *HTTPSource) UsesSitemap() bool { return true }
