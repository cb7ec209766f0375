// Package config loads typed configuration structs from environment
// variables, with a .env file picked up automatically in development.
// Each config type is parsed once per process and cached, so independently
// constructed components can load the same struct without re-reading the
// environment.
package config

import (
	"errors"
	"fmt"
	"reflect"
	"sync"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

var (
	// ErrParsingConfig is returned when the environment cannot be parsed
	// into the config struct.
	ErrParsingConfig = errors.New("failed to parse environment into config")

	// ErrNilPointer is returned when Load receives a nil destination.
	ErrNilPointer = errors.New("nil pointer passed to config loader")
)

var (
	dotenvOnce sync.Once

	cacheMu sync.Mutex
	cache   = make(map[string]any)
)

// Load parses environment variables into v based on its `env` field tags.
// The first Load of each struct type does the parse; later calls return the
// cached copy.
//
//	type CatalogConfig struct {
//		ConnURL string `env:"TENANCY_CATALOG_URL,required"`
//	}
//
//	var cfg CatalogConfig
//	if err := config.Load(&cfg); err != nil { ... }
func Load[T any](v *T) error {
	if v == nil {
		return ErrNilPointer
	}

	dotenvOnce.Do(func() {
		// Missing .env is the normal case outside development.
		_ = godotenv.Load()
	})

	key := typeKey[T]()

	cacheMu.Lock()
	defer cacheMu.Unlock()

	if cached, ok := cache[key]; ok {
		*v = cached.(T)
		return nil
	}

	if err := env.Parse(v); err != nil {
		return errors.Join(ErrParsingConfig, err)
	}
	// Cache a copy so later mutations of v do not poison other loaders.
	cache[key] = *v
	return nil
}

// MustLoad is Load panicking on failure, for configs the process cannot
// start without.
func MustLoad[T any](v *T) {
	if err := Load(v); err != nil {
		panic(fmt.Sprintf("config: %v", err))
	}
}

func typeKey[T any]() string {
	var zero T
	if t := reflect.TypeOf(zero); t != nil {
		return t.String()
	}
	return fmt.Sprintf("%T", *new(T))
}
