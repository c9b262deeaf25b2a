package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server" validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Review   ReviewConfig   `mapstructure:"review" validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"required,url"`
}

// ReviewConfig contains the review pipeline defaults.
type ReviewConfig struct {
	// DefaultStrategy is the scheduling strategy assigned to decks whose
	// settings leave it blank.
	DefaultStrategy string `mapstructure:"default_strategy" validate:"required"`

	// DefaultAlgorithm is the selection algorithm assigned to decks whose
	// settings leave it blank.
	DefaultAlgorithm string `mapstructure:"default_algorithm" validate:"required"`

	// ReviewLogLimit caps how many review events a single deck listing
	// returns.
	ReviewLogLimit int `mapstructure:"review_log_limit" validate:"required,gt=0"`
}
