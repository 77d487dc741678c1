package mainconfig

import (
	"errors"
	"io/fs"

	"github.com/joho/godotenv"

	appconfig "github.com/onetriage/leadintake/internal/config"
)

// Load centralizes startup configuration so every binary reads .env, the
// environment and validation the same way. A missing .env file is not an error.
func Load(files ...string) (*appconfig.Config, error) {
	if err := godotenv.Load(files...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}
	cfg := appconfig.Load()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
