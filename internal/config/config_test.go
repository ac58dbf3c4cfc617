package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() Config {
	return Config{
		Storage: StorageConfig{Driver: DriverSQLite},
		JWT:     JWTConfig{Secret: "secret", ExpiresIn: 3600},
		Tickets: TicketsConfig{CodeLength: 8, MaxGenerateAttempts: 5, MaxBatchSize: 10},
	}
}

func TestValidate(t *testing.T) {
	cfg := validConfig()
	require.NoError(t, cfg.Validate())

	cases := map[string]func(*Config){
		"missing secret":   func(c *Config) { c.JWT.Secret = "" },
		"zero expiry":      func(c *Config) { c.JWT.ExpiresIn = 0 },
		"unknown driver":   func(c *Config) { c.Storage.Driver = "postgres" },
		"short codes":      func(c *Config) { c.Tickets.CodeLength = 4 },
		"no attempts":      func(c *Config) { c.Tickets.MaxGenerateAttempts = 0 },
		"empty batch size": func(c *Config) { c.Tickets.MaxBatchSize = 0 },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := validConfig()
			mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("JWT_SECRET", "from-env")
	t.Setenv("STORAGE_DRIVER", "sqlite")
	t.Setenv("TICKETS_CODELENGTH", "10")
	t.Setenv("TICKETS_CREDITTIMEOUT", "2s")

	cfg, err := Load(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.JWT.Secret)
	assert.Equal(t, DriverSQLite, cfg.Storage.Driver)
	assert.Equal(t, 10, cfg.Tickets.CodeLength)
	assert.Equal(t, 2*time.Second, cfg.Tickets.CreditTimeout)
	assert.Equal(t, 5, cfg.Tickets.MaxGenerateAttempts)
	assert.Equal(t, "5000", cfg.Server.Port)
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	yaml := "jwt:\n  secret: from-file\nserver:\n  port: \"8080\"\nlog:\n  level: debug\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o600))

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "from-file", cfg.JWT.Secret)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoadRequiresSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	_, err := Load(t.TempDir())
	assert.Error(t, err)
}
