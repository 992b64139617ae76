package config

import (
	"fmt"
	"os"
	"strings"
)

// normalize trims user input, applies defaults for blank optional fields,
// pulls secrets from the environment, and expands filesystem paths.
func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeRadarr()
	c.normalizeSonarr()
	c.normalizeJustWatch()
	c.normalizeDiscord()
	c.normalizeReconcile()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeRadarr() {
	c.Radarr.URL = strings.TrimRight(strings.TrimSpace(c.Radarr.URL), "/")
	c.Radarr.APIKey = strings.TrimSpace(c.Radarr.APIKey)
	if c.Radarr.APIKey == "" {
		if value, ok := os.LookupEnv("RADARR_API_KEY"); ok {
			c.Radarr.APIKey = strings.TrimSpace(value)
		}
	}
	if c.Radarr.URL == "" {
		if value, ok := os.LookupEnv("RADARR_URL"); ok {
			c.Radarr.URL = strings.TrimRight(strings.TrimSpace(value), "/")
		}
	}
}

func (c *Config) normalizeSonarr() {
	c.Sonarr.URL = strings.TrimRight(strings.TrimSpace(c.Sonarr.URL), "/")
	c.Sonarr.APIKey = strings.TrimSpace(c.Sonarr.APIKey)
	if c.Sonarr.APIKey == "" {
		if value, ok := os.LookupEnv("SONARR_API_KEY"); ok {
			c.Sonarr.APIKey = strings.TrimSpace(value)
		}
	}
	if c.Sonarr.URL == "" {
		if value, ok := os.LookupEnv("SONARR_URL"); ok {
			c.Sonarr.URL = strings.TrimRight(strings.TrimSpace(value), "/")
		}
	}
}

func (c *Config) normalizeJustWatch() {
	c.JustWatch.Providers = normalizeList(c.JustWatch.Providers)
	if len(c.JustWatch.Providers) == 0 {
		if value, ok := os.LookupEnv("JUSTWATCH_PROVIDERS"); ok {
			c.JustWatch.Providers = normalizeList(strings.Split(value, ","))
		}
	}
	c.JustWatch.ContentTypes = normalizeList(c.JustWatch.ContentTypes)
	if len(c.JustWatch.ContentTypes) == 0 {
		c.JustWatch.ContentTypes = defaultContentTypes()
	}
	for i, kind := range c.JustWatch.ContentTypes {
		c.JustWatch.ContentTypes[i] = strings.ToUpper(kind)
	}
	c.JustWatch.Region = strings.ToUpper(strings.TrimSpace(c.JustWatch.Region))
	if c.JustWatch.Region == "" {
		c.JustWatch.Region = defaultRegion
	}
	c.JustWatch.PromoteRegion = strings.ToUpper(strings.TrimSpace(c.JustWatch.PromoteRegion))
	if c.JustWatch.PromoteRegion == "" {
		c.JustWatch.PromoteRegion = c.JustWatch.Region
	}
	c.JustWatch.Language = strings.ToLower(strings.TrimSpace(c.JustWatch.Language))
	if c.JustWatch.Language == "" {
		c.JustWatch.Language = defaultLanguage
	}
	c.JustWatch.BaseURL = strings.TrimRight(strings.TrimSpace(c.JustWatch.BaseURL), "/")
	if c.JustWatch.BaseURL == "" {
		c.JustWatch.BaseURL = defaultJustWatchBaseURL
	}
	if c.JustWatch.RequestTimeout <= 0 {
		c.JustWatch.RequestTimeout = defaultRequestTimeout
	}
}

func (c *Config) normalizeDiscord() {
	c.Discord.BotToken = strings.TrimSpace(c.Discord.BotToken)
	if c.Discord.BotToken == "" {
		if value, ok := os.LookupEnv("DISCORD_BOT_TOKEN"); ok {
			c.Discord.BotToken = strings.TrimSpace(value)
		}
	}
	c.Discord.ChannelID = strings.TrimSpace(c.Discord.ChannelID)
	c.Discord.BaseURL = strings.TrimRight(strings.TrimSpace(c.Discord.BaseURL), "/")
	if c.Discord.BaseURL == "" {
		c.Discord.BaseURL = defaultDiscordBaseURL
	}
	if c.Discord.RequestTimeout <= 0 {
		c.Discord.RequestTimeout = defaultRequestTimeout
	}
}

func (c *Config) normalizeReconcile() {
	c.Reconcile.ExcludeTag = strings.TrimSpace(c.Reconcile.ExcludeTag)
	if c.Reconcile.ExcludeTag == "" {
		c.Reconcile.ExcludeTag = defaultExcludeTag
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

func normalizeList(values []string) []string {
	out := make([]string, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, value := range values {
		trimmed := strings.TrimSpace(value)
		if trimmed == "" {
			continue
		}
		if _, ok := seen[trimmed]; ok {
			continue
		}
		seen[trimmed] = struct{}{}
		out = append(out, trimmed)
	}
	return out
}
