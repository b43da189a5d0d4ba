package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/exyezed/xmeta/pkg/filesystem"
	"github.com/spf13/viper"
)

// Config holds the central application configuration
type Config struct {
	// Auth holds the x.com session credentials
	Auth struct {
		Token string `mapstructure:"token"` // auth_token session cookie
	} `mapstructure:"auth"`

	// Timeline extraction defaults
	Timeline struct {
		Type      string `mapstructure:"type"`       // media, timeline, tweets, with_replies
		BatchSize int    `mapstructure:"batch_size"` // items per page, 0 = fetch all
		MediaType string `mapstructure:"media_type"` // all, image, video, gif
		Retweets  bool   `mapstructure:"retweets"`   // include retweets
	} `mapstructure:"timeline"`

	// Search defaults for date range extraction
	Search struct {
		MediaFilter string `mapstructure:"media_filter"` // extra query clause
	} `mapstructure:"search"`

	// Database configuration
	Database struct {
		Path string `mapstructure:"path"` // account store path
	} `mapstructure:"database"`
}

// ResolveTimeline merges command line timeline options with the configured
// defaults. An empty kind or media type, a batch size of -1 and a nil
// retweets flag mean the option was not given on the command line.
func (c *Config) ResolveTimeline(kind string, batchSize int, mediaType string, retweets *bool) (string, int, string, bool) {
	if kind == "" {
		kind = c.Timeline.Type
	}
	if batchSize == -1 {
		batchSize = c.Timeline.BatchSize
	}
	if mediaType == "" {
		mediaType = c.Timeline.MediaType
	}
	rt := c.Timeline.Retweets
	if retweets != nil {
		rt = *retweets
	}
	return kind, batchSize, mediaType, rt
}

// ResolveMediaFilter returns the configured search media filter when none was
// given on the command line.
func (c *Config) ResolveMediaFilter(filter string) string {
	if filter == "" {
		return c.Search.MediaFilter
	}
	return filter
}

// LoadConfig loads the configuration from a file
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		path = "config.yaml"
	}

	// If path is relative, try current directory first, then executable directory
	if !filepath.IsAbs(path) {
		if _, err := os.Stat(path); err != nil {
			if execPath, err := filesystem.GetDefaultPath(path); err == nil {
				if _, err := os.Stat(execPath); err == nil {
					path = execPath
				}
			}
			// If both fail, use original path and let Viper handle the error
		}
	}

	viper.SetConfigFile(path)
	viper.SetConfigType("yaml")

	// Set default values
	viper.SetDefault("auth.token", "")
	viper.SetDefault("timeline.type", "timeline")
	viper.SetDefault("timeline.batch_size", 100)
	viper.SetDefault("timeline.media_type", "all")
	viper.SetDefault("timeline.retweets", false)
	viper.SetDefault("search.media_filter", "filter:media")
	viper.SetDefault("database.path", "")

	// Environment overrides, XMETA_AUTH_TOKEN in particular
	viper.SetEnvPrefix("xmeta")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Read configuration file
	if err := viper.ReadInConfig(); err != nil {
		// If config file doesn't exist, that's okay - we'll use defaults
		_, notFound := err.(viper.ConfigFileNotFoundError)
		if !notFound && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	return &config, nil
}

// SaveConfig saves the configuration to a file
func SaveConfig(config *Config, path string) error {
	if path == "" {
		path = "config.yaml"
	}

	if !filepath.IsAbs(path) {
		if _, err := os.Stat(path); err != nil {
			if execPath, err := filesystem.GetDefaultPath(path); err == nil {
				if _, err := os.Stat(execPath); err == nil {
					path = execPath
				}
			}
		}
	}

	viper.SetConfigFile(path)
	viper.SetConfigType("yaml")

	viper.Set("auth.token", config.Auth.Token)
	viper.Set("timeline.type", config.Timeline.Type)
	viper.Set("timeline.batch_size", config.Timeline.BatchSize)
	viper.Set("timeline.media_type", config.Timeline.MediaType)
	viper.Set("timeline.retweets", config.Timeline.Retweets)
	viper.Set("search.media_filter", config.Search.MediaFilter)
	viper.Set("database.path", config.Database.Path)

	return viper.WriteConfig()
}
