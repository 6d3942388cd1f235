// /internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	DiscordToken      string   `env:"DISCORD_TOKEN" validate:"required"`
	DiscordGuildIDs   []string `env:"DISCORD_GUILD_IDS" envSeparator:","`
	InitSlashCommands bool     `env:"INIT_SLASH_COMMANDS" envDefault:"true"`
	Presence          string   `env:"PRESENCE" envDefault:"linker's basement" validate:"max=128"`

	LogLevel      string `env:"LOG_LEVEL" envDefault:"info" validate:"oneof=trace debug info warn error"`
	LogFormat     string `env:"LOG_FORMAT" envDefault:"console" validate:"oneof=console json"`
	LogFile       string `env:"LOG_FILE"`
	LogMaxSizeMB  int    `env:"LOG_MAX_SIZE_MB" envDefault:"50" validate:"gte=1"`
	LogMaxBackups int    `env:"LOG_MAX_BACKUPS" envDefault:"3" validate:"gte=0"`
	LogMaxAgeDays int    `env:"LOG_MAX_AGE_DAYS" envDefault:"14" validate:"gte=0"`

	YouTubeAPIKey string `env:"YOUTUBE_API_KEY"`
	YouTubeProxy  string `env:"YOUTUBE_PROXY" validate:"omitempty,url"`

	AudioBitrate   int           `env:"AUDIO_BITRATE" envDefault:"96" validate:"gte=8,lte=512"`
	LookupTimeout  time.Duration `env:"LOOKUP_TIMEOUT" envDefault:"15s" validate:"gt=0"`
	LookupAttempts int           `env:"LOOKUP_ATTEMPTS" envDefault:"3" validate:"gte=1,lte=10"`

	CommandTimeout  time.Duration `env:"COMMAND_TIMEOUT" envDefault:"2m" validate:"gt=0"`
	CommandRate     float64       `env:"COMMAND_RATE" envDefault:"1" validate:"gt=0"`
	CommandBurst    int           `env:"COMMAND_BURST" envDefault:"3" validate:"gte=1"`
	RegisterRate    float64       `env:"REGISTER_RATE" envDefault:"40" validate:"gt=0"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"30s" validate:"gt=0"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Load reads an optional .env file and then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}
	return FromEnv()
}

// FromEnv parses and validates the configuration from the environment only.
func FromEnv() (*Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}
	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// GlobalCommands reports whether the command schema is registered application-wide
// instead of per guild.
func (c *Config) GlobalCommands() bool {
	return len(c.DiscordGuildIDs) == 0
}
