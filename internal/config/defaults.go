package config

const (
	defaultLogDir           = "~/.local/share/justwatcharr/logs"
	defaultRegion           = "US"
	defaultLanguage         = "en"
	defaultJustWatchBaseURL = "https://apis.justwatch.com/graphql"
	defaultDiscordBaseURL   = "https://discord.com/api/v10"
	defaultRequestTimeout   = 30
	defaultExcludeTag       = "jw-exclude"
	defaultLogFormat        = "console"
	defaultLogLevel         = "info"
)

// defaultContentTypes returns the monetization kinds treated as "streamable"
// when the config file does not override them.
func defaultContentTypes() []string {
	return []string{"FREE", "FLATRATE"}
}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		JustWatch: JustWatch{
			ContentTypes:   defaultContentTypes(),
			Region:         defaultRegion,
			Language:       defaultLanguage,
			BaseURL:        defaultJustWatchBaseURL,
			RequestTimeout: defaultRequestTimeout,
		},
		Discord: Discord{
			BaseURL:        defaultDiscordBaseURL,
			RequestTimeout: defaultRequestTimeout,
		},
		Reconcile: Reconcile{
			ExcludeTag:  defaultExcludeTag,
			DeleteFiles: true,
		},
		Paths: Paths{
			LogDir: defaultLogDir,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
