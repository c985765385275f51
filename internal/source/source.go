package source

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"aircheck/internal/config"
	"aircheck/internal/station"
)

// FromConfig builds the source the configuration calls for: a mirror
// source when mirror_dir is set, otherwise a live HTTP source with the
// optional fetch cache attached. The returned closer releases the cache
// when one was opened.
func FromConfig(cfg *config.Config, refresh bool, logger *slog.Logger) (station.Source, func() error, error) {
	noop := func() error { return nil }

	if cfg.Station.MirrorDir != "" {
		mirror, err := NewMirror(cfg.Station.MirrorDir, cfg.Station.BaseURL, logger)
		if err != nil {
			return nil, nil, fmt.Errorf("mirror source: %w", err)
		}
		return mirror, noop, nil
	}

	opts := []Option{
		WithHTTPClient(&http.Client{Timeout: cfg.RequestTimeout()}),
		WithUserAgent(cfg.Station.UserAgent),
		WithLogger(logger),
	}
	closer := noop
	if cfg.FetchCache.Enabled {
		cache, err := OpenCache(cfg.FetchCache.Path, time.Duration(cfg.FetchCache.MaxAge)*time.Hour)
		if err != nil {
			return nil, nil, fmt.Errorf("fetch cache: %w", err)
		}
		opts = append(opts, WithCache(cache, refresh))
		closer = cache.Close
	}

	live, err := NewHTTP(cfg.Station.BaseURL, opts...)
	if err != nil {
		_ = closer()
		return nil, nil, fmt.Errorf("live source: %w", err)
	}
	return live, closer, nil
}
