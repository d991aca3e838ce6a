// Package config loads pairui settings from pairui.yaml and the environment.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. PAIRUI_API_URL.
const EnvPrefix = "PAIRUI"

// Config holds application configuration.
type Config struct {
	API    APIConfig    `mapstructure:"api"`
	Notify NotifyConfig `mapstructure:"notify"`
	Pair   PairConfig   `mapstructure:"pair"`
	Log    LogConfig    `mapstructure:"log"`
}

// APIConfig locates the pairing service.
type APIConfig struct {
	URL     string        `mapstructure:"url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// NotifyConfig holds notification settings.
type NotifyConfig struct {
	Delay time.Duration `mapstructure:"delay"`
}

// PairConfig holds pairing flow settings.
type PairConfig struct {
	RedirectDelay time.Duration `mapstructure:"redirect_delay"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `mapstructure:"level"`
}

// Level parses Log.Level, falling back to info.
func (c Config) Level() slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return slog.LevelInfo
	}
	return l
}

// Load reads configuration from path, or from PAIRUI_CONFIG, or from
// pairui.yaml in the working directory or ~/.config/pairui. A missing file is
// not an error. Env vars override file values; nested keys use underscores
// (PAIRUI_NOTIFY_DELAY).
func Load(path string) (Config, error) {
	v := viper.New()

	v.SetDefault("api.url", "http://localhost:8081")
	v.SetDefault("api.timeout", 2*time.Minute)
	v.SetDefault("notify.delay", 3*time.Second)
	v.SetDefault("pair.redirect_delay", 2*time.Second)
	v.SetDefault("log.level", "info")

	v.SetConfigType("yaml")

	if path == "" {
		path = os.Getenv(EnvPrefix + "_CONFIG")
	}
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("pairui")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "pairui"))
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if c.API.URL == "" {
		return Config{}, fmt.Errorf("config: api.url must not be empty")
	}
	return c, nil
}
