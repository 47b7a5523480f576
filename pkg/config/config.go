// Package config loads environment-based configuration structs. It wraps
// caarlos0/env with a one-time .env load via godotenv so local
// development and production share the same code path.
package config

import (
	"errors"
	"fmt"
	"sync"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

var (
	ErrNilPointer    = errors.New("config: nil pointer provided")
	ErrParsingConfig = errors.New("config: failed to parse env variables")
)

var loadDotEnv sync.Once

// Load populates cfg from environment variables according to its `env`
// struct tags. The .env file, if present, is loaded once per process.
func Load[T any](cfg *T) error {
	loadDotEnv.Do(func() {
		// A missing .env file is fine; real environments set vars directly.
		_ = godotenv.Load()
	})

	if cfg == nil {
		return ErrNilPointer
	}
	if err := env.Parse(cfg); err != nil {
		return errors.Join(ErrParsingConfig, err)
	}
	return nil
}

// MustLoad is Load but panics on failure. Use for configuration the
// process cannot start without.
func MustLoad[T any](cfg *T) {
	if err := Load(cfg); err != nil {
		panic(fmt.Sprintf("failed to load required configuration: %v", err))
	}
}
