// Package config holds application configuration and logger setup shared by
// the binaries.
package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog/log"
)

// Config groups all tunables. Values are taken from environment variables
// with the prefix "UNIHUB". Example: UNIHUB_BACKEND_URL=http://campus:8000 .
type Config struct {
	BackendURL string `envconfig:"BACKEND_URL" default:"http://localhost:8000"`
	StatePath  string `envconfig:"STATE_PATH"`
	LogLevel   string `envconfig:"LOG_LEVEL"   default:"info"`
	ProxyAddr  string `envconfig:"PROXY_ADDR"  default:":3000"`
}

// Load populates Config from environment variables (prefix UNIHUB).
func Load() (Config, error) {
	var c Config
	if err := envconfig.Process("UNIHUB", &c); err != nil {
		return Config{}, fmt.Errorf("load config: %w", err)
	}
	return c, nil
}

// Log writes the effective configuration at startup.
func (c Config) Log() {
	log.Info().
		Str("backend_url", c.BackendURL).
		Str("state_path", c.StatePath).
		Str("log_level", c.LogLevel).
		Msg("configuration loaded")
}
