package main

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds settings read from the environment. A .env file in the
// working directory is loaded first when present.
type Config struct {
	LogLevel  string `env:"FSM_LOG_LEVEL" envDefault:"warn"`
	LogFormat string `env:"FSM_LOG_FORMAT" envDefault:"console"`
}

// loadConfig reads the given env files, ".env" when none are named, then
// parses the environment. Missing files are skipped.
func loadConfig(envFiles ...string) (Config, error) {
	var cfg Config

	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, file := range envFiles {
		if err := godotenv.Load(file); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return cfg, fmt.Errorf("failed to load %s: %w", file, err)
		}
	}

	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse environment: %w", err)
	}
	return cfg, nil
}
