package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable name,
// e.g. MEMORYGAME_SERVER_PORT or MEMORYGAME_STORAGE_URL.
const EnvPrefix = "MEMORYGAME"

// Default values applied before files and environment are read.
var defaults = map[string]any{
	"server.port":                    8080,
	"server.log_level":               "info",
	"storage.backend":                "sqlite",
	"storage.url":                    "memorygame.db",
	"storage.key":                    "@memory_game_sets",
	"conversion.endpoint":            "",
	"conversion.access_token":        "",
	"conversion.timeout_seconds":     30,
	"conversion.requests_per_minute": 30,
	"game.max_card_text_length":      80,
	"game.min_review_cards":          3,
	"game.session_ttl_minutes":       120,
	"cli.log_level":                  "warn",
}

// Load configuration from environment variables and optionally config files.
// Environment variables take precedence over values from config files.
// Returns a populated Config struct or an error if loading/validation fails.
func Load() (*Config, error) {
	v := viper.New()

	// 1. Defaults
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	// 2. Optional config.yaml in the working directory
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// 3. Environment variables, e.g. MEMORYGAME_SERVER_PORT
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// AutomaticEnv only applies to keys viper already knows about, so bind
	// every key explicitly to make Unmarshal see environment overrides.
	for key := range defaults {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("failed to bind environment variable for %s: %w", key, err)
		}
	}

	// 4. Unmarshal
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// 5. Validate
	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks cfg against its struct tags.
func Validate(cfg *Config) error {
	validate := validator.New()
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	return nil
}
