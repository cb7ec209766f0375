package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/routegrid/tenancy/pkg/config"
)

// Each test uses its own struct type: parsed configs are cached per type
// for the life of the process.

func TestLoad(t *testing.T) {
	t.Run("parses env tags", func(t *testing.T) {
		type testCfg struct {
			URL  string `env:"TEST_CONFIG_URL"`
			Size int    `env:"TEST_CONFIG_SIZE" envDefault:"10"`
		}
		t.Setenv("TEST_CONFIG_URL", "postgres://localhost:5432/registry")

		var cfg testCfg
		require.NoError(t, config.Load(&cfg))
		assert.Equal(t, "postgres://localhost:5432/registry", cfg.URL)
		assert.Equal(t, 10, cfg.Size)
	})

	t.Run("second load returns the cached copy", func(t *testing.T) {
		type cachedCfg struct {
			Value string `env:"TEST_CONFIG_CACHED"`
		}
		t.Setenv("TEST_CONFIG_CACHED", "first")

		var first cachedCfg
		require.NoError(t, config.Load(&first))

		// The environment changes, but the parsed value is pinned.
		t.Setenv("TEST_CONFIG_CACHED", "second")

		var second cachedCfg
		require.NoError(t, config.Load(&second))
		assert.Equal(t, "first", second.Value)
	})

	t.Run("missing required variable fails typed", func(t *testing.T) {
		type requiredCfg struct {
			Token string `env:"TEST_CONFIG_REQUIRED_TOKEN,required"`
		}

		var cfg requiredCfg
		err := config.Load(&cfg)
		assert.ErrorIs(t, err, config.ErrParsingConfig)
	})

	t.Run("nil destination is rejected", func(t *testing.T) {
		type nilCfg struct{}

		var cfg *nilCfg
		assert.ErrorIs(t, config.Load(cfg), config.ErrNilPointer)
	})
}

func TestMustLoad(t *testing.T) {
	t.Run("returns the config on success", func(t *testing.T) {
		type mustCfg struct {
			Name string `env:"TEST_CONFIG_MUST_NAME" envDefault:"routegrid"`
		}

		var cfg mustCfg
		assert.NotPanics(t, func() { config.MustLoad(&cfg) })
		assert.Equal(t, "routegrid", cfg.Name)
	})

	t.Run("panics when parsing fails", func(t *testing.T) {
		type brokenCfg struct {
			Port int `env:"TEST_CONFIG_BROKEN_PORT"`
		}
		t.Setenv("TEST_CONFIG_BROKEN_PORT", "not-a-number")

		var cfg brokenCfg
		assert.Panics(t, func() { config.MustLoad(&cfg) })
	})
}
