package config

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	HTTPAddr string     `env:"HTTP_ADDR" envDefault:":8080"`
	DBPath   string     `env:"DB_PATH" envDefault:"data/werebot.db"`
	LogLevel slog.Level `env:"LOG_LEVEL" envDefault:"INFO"`

	// Game rules. Overridable per deployment, read (never computed) by the engine.
	MinPlayers int `env:"MIN_PLAYERS" envDefault:"6"`
	MaxPlayers int `env:"MAX_PLAYERS" envDefault:"18"`

	// Reaper. A room with no mutating command within the timeout for its phase
	// is force-ended with winner "inactive" and archived.
	ReaperInterval time.Duration `env:"REAPER_INTERVAL" envDefault:"1m"`
	SetupTimeout   time.Duration `env:"SETUP_TIMEOUT" envDefault:"20m"`
	PlayTimeout    time.Duration `env:"PLAY_TIMEOUT" envDefault:"30m"`

	// Ops login seeded at startup when both are set.
	AdminEmail    string `env:"ADMIN_EMAIL"`
	AdminPassword string `env:"ADMIN_PASSWORD"`
}

func Load() (*Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}
	return &cfg, nil
}
