package config

import (
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizeStation(); err != nil {
		return err
	}
	if err := c.normalizePaths(); err != nil {
		return err
	}
	if err := c.normalizeFetchCache(); err != nil {
		return err
	}
	c.normalizeFeeds()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizeStation() error {
	c.Station.BaseURL = strings.TrimRight(strings.TrimSpace(c.Station.BaseURL), "/")
	c.Station.ShowsPath = strings.Trim(strings.TrimSpace(c.Station.ShowsPath), "/")
	if c.Station.ShowsPath == "" {
		c.Station.ShowsPath = defaultShowsPath
	}
	c.Station.PlayerSuffix = strings.Trim(strings.TrimSpace(c.Station.PlayerSuffix), "/")
	if c.Station.PlayerSuffix == "" {
		c.Station.PlayerSuffix = defaultPlayerSuffix
	}
	if c.Station.RequestTimeout <= 0 {
		c.Station.RequestTimeout = defaultRequestTimeout
	}
	c.Station.UserAgent = strings.TrimSpace(c.Station.UserAgent)
	if c.Station.UserAgent == "" {
		c.Station.UserAgent = defaultUserAgent
	}
	if c.Station.MirrorDir != "" {
		expanded, err := expandPath(c.Station.MirrorDir)
		if err != nil {
			return fmt.Errorf("station.mirror_dir: %w", err)
		}
		c.Station.MirrorDir = expanded
	}
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if c.Paths.FeedDir, err = expandPath(c.Paths.FeedDir); err != nil {
		return fmt.Errorf("paths.feed_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeFetchCache() error {
	if strings.TrimSpace(c.FetchCache.Path) == "" {
		c.FetchCache.Path = filepath.Join(c.Paths.DataDir, "fetch_cache.db")
		return nil
	}
	expanded, err := expandPath(c.FetchCache.Path)
	if err != nil {
		return fmt.Errorf("fetch_cache.path: %w", err)
	}
	c.FetchCache.Path = expanded
	if c.FetchCache.MaxAge <= 0 {
		c.FetchCache.MaxAge = defaultCacheMaxAge
	}
	return nil
}

func (c *Config) normalizeFeeds() {
	c.Feeds.BaseURL = strings.TrimRight(strings.TrimSpace(c.Feeds.BaseURL), "/")
	if c.Feeds.Language == "" {
		c.Feeds.Language = defaultFeedLanguage
	}
	if c.Feeds.MaxEpisodes <= 0 {
		c.Feeds.MaxEpisodes = defaultFeedMaxEpisodes
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

func validBaseURL(raw string) bool {
	parsed, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (parsed.Scheme == "http" || parsed.Scheme == "https") && parsed.Host != ""
}
