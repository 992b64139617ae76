package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Radarr contains connection settings for the movie library.
type Radarr struct {
	URL    string `toml:"url"`
	APIKey string `toml:"api_key"`
}

// Sonarr contains connection settings for the series library.
type Sonarr struct {
	URL    string `toml:"url"`
	APIKey string `toml:"api_key"`
}

// JustWatch contains availability lookup settings.
type JustWatch struct {
	// Providers is the streaming service allow-list. Offer package names
	// must match one of these entries exactly (e.g. "Netflix").
	Providers []string `toml:"providers"`
	// ContentTypes is the monetization allow-list (e.g. "FLATRATE", "FREE").
	ContentTypes []string `toml:"content_types"`
	// Region is the locale used for availability lookups on items that are
	// already monitored or downloaded.
	Region string `toml:"region"`
	// PromoteRegion is the locale used when deciding whether to re-monitor
	// an item that is neither monitored nor downloaded. Defaults to Region.
	PromoteRegion  string `toml:"promote_region"`
	Language       string `toml:"language"`
	BaseURL        string `toml:"base_url"`
	RequestTimeout int    `toml:"request_timeout"`
}

// Discord contains settings for the operator notification channel.
type Discord struct {
	BotToken       string `toml:"bot_token"`
	ChannelID      string `toml:"channel_id"`
	BaseURL        string `toml:"base_url"`
	RequestTimeout int    `toml:"request_timeout"`
}

// Reconcile contains decision-engine policy knobs.
type Reconcile struct {
	// ExcludeTag marks library items that reconciliation must never touch.
	ExcludeTag string `toml:"exclude_tag"`
	// DeleteFiles controls whether local media files are purged after an
	// item is unmonitored.
	DeleteFiles bool `toml:"delete_files"`
}

// Paths contains directory configuration.
type Paths struct {
	LogDir string `toml:"log_dir"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for justwatcharr.
//
// Configuration sections by subsystem:
//   - Radarr / Sonarr: library backend connections
//   - JustWatch: availability lookup and allow-lists
//   - Discord: operator notification channel
//   - Reconcile: exclusion tag and file purge policy
//   - Paths: log and lock file locations
//   - Logging: log format and level
type Config struct {
	Radarr    Radarr    `toml:"radarr"`
	Sonarr    Sonarr    `toml:"sonarr"`
	JustWatch JustWatch `toml:"justwatch"`
	Discord   Discord   `toml:"discord"`
	Reconcile Reconcile `toml:"reconcile"`
	Paths     Paths     `toml:"paths"`
	Logging   Logging   `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/justwatcharr/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned
// config has defaults applied, secrets pulled from the environment where
// the file leaves them blank, and all path fields expanded.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("justwatcharr.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates required directories for a run.
func (c *Config) EnsureDirectories() error {
	if err := os.MkdirAll(c.Paths.LogDir, 0o755); err != nil {
		return fmt.Errorf("create directory %q: %w", c.Paths.LogDir, err)
	}
	return nil
}

// LockFilePath returns the path of the single-run lock file.
func (c *Config) LockFilePath() string {
	return filepath.Join(c.Paths.LogDir, "justwatcharr.lock")
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
