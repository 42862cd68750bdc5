package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server     ServerConfig     `mapstructure:"server" validate:"required"`
	Storage    StorageConfig    `mapstructure:"storage" validate:"required"`
	Conversion ConversionConfig `mapstructure:"conversion"`
	Game       GameConfig       `mapstructure:"game" validate:"required"`
	CLI        CLIConfig        `mapstructure:"cli"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// StorageConfig selects where the card set collection is persisted.
type StorageConfig struct {
	// Backend is one of "postgres", "sqlite" or "memory".
	Backend string `mapstructure:"backend" validate:"required,oneof=postgres sqlite memory"`
	// URL is a Postgres connection URL or a SQLite file path/DSN.
	URL string `mapstructure:"url" validate:"required_unless=Backend memory"`
	// Key names the blob holding the serialized collection.
	Key string `mapstructure:"key" validate:"required"`
}

// ConversionConfig configures the remote document-to-text service used for
// DOCX imports. An empty Endpoint disables DOCX import.
type ConversionConfig struct {
	Endpoint          string `mapstructure:"endpoint" validate:"omitempty,url"`
	AccessToken       string `mapstructure:"access_token" validate:"required_with=Endpoint"`
	TimeoutSeconds    int    `mapstructure:"timeout_seconds" validate:"gt=0"`
	RequestsPerMinute int    `mapstructure:"requests_per_minute" validate:"gt=0"`
}

// GameConfig contains card and game-session limits.
type GameConfig struct {
	MaxCardTextLength int `mapstructure:"max_card_text_length" validate:"gt=0"`
	MinReviewCards    int `mapstructure:"min_review_cards" validate:"gt=0"`
	SessionTTLMinutes int `mapstructure:"session_ttl_minutes" validate:"gt=0"`
}

// CLIConfig contains settings for the memorygame command line.
type CLIConfig struct {
	// LogLevel applies to the logs the command line writes to stderr.
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}
