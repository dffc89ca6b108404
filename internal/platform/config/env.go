package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"

	"snowman/internal/game"
)

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Web configures the game server.
type Web struct {
	Port string `env:"PORT" envDefault:"8080"`
	// GatewayURL points at a remote gateway service. When empty the server
	// keeps users in a local SQLite file at UsersDBPath.
	GatewayURL     string        `env:"GATEWAY_URL"`
	GatewayTimeout time.Duration `env:"GATEWAY_TIMEOUT" envDefault:"5s"`
	UsersDBPath    string        `env:"USERS_DB_PATH" envDefault:"snowman.db"`

	// Sessions nobody has touched or watched for SessionTTL are ended.
	SessionTTL         time.Duration `env:"SESSION_TTL" envDefault:"30m"`
	SessionSweepPeriod time.Duration `env:"SESSION_SWEEP_PERIOD" envDefault:"1m"`

	Tuning game.Tuning `envPrefix:"SNOWMAN_"`
}

// Gateway configures the users service.
type Gateway struct {
	Port        string `env:"PORT" envDefault:"8081"`
	UsersDBPath string `env:"USERS_DB_PATH" envDefault:"snowman.db"`
}

// Terminal configures the terminal client.
type Terminal struct {
	UsersDBPath    string        `env:"USERS_DB_PATH" envDefault:"snowman.db"`
	GatewayURL     string        `env:"GATEWAY_URL"`
	GatewayTimeout time.Duration `env:"GATEWAY_TIMEOUT" envDefault:"5s"`
	Mute           bool          `env:"SNOWMAN_MUTE"`
	// LogPath receives log output while the terminal is in raw mode.
	LogPath string `env:"SNOWMAN_LOG_PATH" envDefault:"snowman-tui.log"`

	Tuning game.Tuning `envPrefix:"SNOWMAN_"`
}

// LoadWeb parses and validates the game server configuration.
func LoadWeb() (Web, error) {
	var cfg Web
	if err := ParseEnv(&cfg); err != nil {
		return Web{}, err
	}
	if err := cfg.Tuning.Validate(); err != nil {
		return Web{}, fmt.Errorf("tuning: %w", err)
	}
	if cfg.SessionTTL <= 0 || cfg.SessionSweepPeriod <= 0 {
		return Web{}, fmt.Errorf("session ttl and sweep period must be positive")
	}
	return cfg, nil
}

// LoadGateway parses the users service configuration.
func LoadGateway() (Gateway, error) {
	var cfg Gateway
	if err := ParseEnv(&cfg); err != nil {
		return Gateway{}, err
	}
	return cfg, nil
}

// LoadTerminal parses and validates the terminal client configuration.
func LoadTerminal() (Terminal, error) {
	var cfg Terminal
	if err := ParseEnv(&cfg); err != nil {
		return Terminal{}, err
	}
	if err := cfg.Tuning.Validate(); err != nil {
		return Terminal{}, fmt.Errorf("tuning: %w", err)
	}
	return cfg, nil
}
