package config

const (
	defaultDataDir         = "~/.local/share/aircheck/data"
	defaultFeedDir         = "~/.local/share/aircheck/feeds"
	defaultLogDir          = "~/.local/share/aircheck/logs"
	defaultShowsPath       = "music/shows"
	defaultPlayerSuffix    = "player"
	defaultRequestTimeout  = 30
	defaultUserAgent       = "aircheck/dev"
	defaultLogFormat       = "console"
	defaultLogLevel        = "info"
	defaultFeedLanguage    = "en-us"
	defaultFeedMaxEpisodes = 100
	defaultCacheMaxAge     = 24
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Station: Station{
			ShowsPath:      defaultShowsPath,
			PlayerSuffix:   defaultPlayerSuffix,
			RequestTimeout: defaultRequestTimeout,
			UserAgent:      defaultUserAgent,
		},
		Paths: Paths{
			DataDir: defaultDataDir,
			FeedDir: defaultFeedDir,
			LogDir:  defaultLogDir,
		},
		FetchCache: FetchCache{
			Enabled: true,
			MaxAge:  defaultCacheMaxAge,
		},
		Feeds: Feeds{
			Language:    defaultFeedLanguage,
			MaxEpisodes: defaultFeedMaxEpisodes,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
