// Package config reads server settings from the environment, optionally
// seeded from a .env file.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

const (
	defaultPort = 8080

	envPort = "SHABD_PORT"
	envDev  = "SHABD_DEV"
)

type Config struct {
	Port int
	Dev  bool // development logging
}

func Load() (Config, error) {
	// Missing .env is fine; the environment alone is enough.
	_ = godotenv.Load()

	cfg := Config{Port: defaultPort}

	if v := os.Getenv(envPort); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid %s %q: %w", envPort, v, err)
		}
		if port < 1 || port > 65535 {
			return Config{}, fmt.Errorf("invalid %s: %d", envPort, port)
		}
		cfg.Port = port
	}

	if v := os.Getenv(envDev); v != "" {
		dev, err := strconv.ParseBool(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid %s %q: %w", envDev, v, err)
		}
		cfg.Dev = dev
	}

	return cfg, nil
}
