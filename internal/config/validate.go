package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateStation(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateStation() error {
	if c.Station.MirrorDir == "" && c.Station.BaseURL == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			defaultPath = "~/.config/aircheck/config.toml"
		}
		return fmt.Errorf("station.base_url is required. Edit %s (create with 'aircheck config init')", defaultPath)
	}
	if c.Station.BaseURL != "" && !validBaseURL(c.Station.BaseURL) {
		return fmt.Errorf("station.base_url %q must be an absolute http(s) URL", c.Station.BaseURL)
	}
	if strings.Contains(c.Station.ShowsPath, "://") {
		return errors.New("station.shows_path must be a path fragment, not a URL")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format %q must be console or json", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level %q must be debug, info, warn, or error", c.Logging.Level)
	}
	return nil
}
