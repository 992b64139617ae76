package config

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/language"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateJustWatch(); err != nil {
		return err
	}
	if err := c.validateLibraries(); err != nil {
		return err
	}
	if err := c.validateDiscord(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateJustWatch() error {
	if len(c.JustWatch.Providers) == 0 {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			defaultPath = "~/.config/justwatcharr/config.toml"
		}
		return fmt.Errorf("justwatch.providers is required. Set JUSTWATCH_PROVIDERS env var or edit %s (create with 'justwatcharr config init')", defaultPath)
	}
	if _, err := language.ParseRegion(c.JustWatch.Region); err != nil {
		return fmt.Errorf("justwatch.region %q is not a valid region code: %w", c.JustWatch.Region, err)
	}
	if _, err := language.ParseRegion(c.JustWatch.PromoteRegion); err != nil {
		return fmt.Errorf("justwatch.promote_region %q is not a valid region code: %w", c.JustWatch.PromoteRegion, err)
	}
	return nil
}

func (c *Config) validateLibraries() error {
	if c.Radarr.URL == "" && c.Sonarr.URL == "" {
		return errors.New("at least one of radarr.url or sonarr.url must be set")
	}
	if c.Radarr.URL != "" && c.Radarr.APIKey == "" {
		return errors.New("radarr.api_key must be set when radarr.url is configured (or export RADARR_API_KEY)")
	}
	if c.Radarr.APIKey != "" && c.Radarr.URL == "" {
		return errors.New("radarr.url must be set when radarr.api_key is configured")
	}
	if c.Sonarr.URL != "" && c.Sonarr.APIKey == "" {
		return errors.New("sonarr.api_key must be set when sonarr.url is configured (or export SONARR_API_KEY)")
	}
	if c.Sonarr.APIKey != "" && c.Sonarr.URL == "" {
		return errors.New("sonarr.url must be set when sonarr.api_key is configured")
	}
	return nil
}

func (c *Config) validateDiscord() error {
	if c.Discord.BotToken == "" {
		return nil
	}
	if strings.TrimSpace(c.Discord.ChannelID) == "" {
		return errors.New("discord.channel_id must be set when discord.bot_token is configured")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	return nil
}
