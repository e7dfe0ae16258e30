package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("DB_DSN", "file::memory:")
	t.Setenv("JWT_SECRET", "test-secret")
}

func TestFromEnvDefaults(t *testing.T) {
	setRequired(t)

	cfg, err := FromEnv()
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 10, cfg.Database.MaxOpenConns)
	assert.Equal(t, 24*time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, "30 0 * * *", cfg.Reporting.CronSchedule)
	assert.Equal(t, "0 2 * * *", cfg.Reporting.MLBatchCronSchedule)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.Server.AllowedOrigins)
	assert.False(t, cfg.Sheets.Enabled())
	assert.False(t, cfg.MongoDB.Enabled())
}

func TestFromEnvOverrides(t *testing.T) {
	setRequired(t)
	t.Setenv("DB_MAX_OPEN_CONNS", "25")
	t.Setenv("JWT_TTL", "2h")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example ,")
	t.Setenv("DB_DRIVER", "MySQL")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, 25, cfg.Database.MaxOpenConns)
	assert.Equal(t, 2*time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, "mysql", cfg.Database.Driver)
}

func TestFromEnvRejectsMalformedNumbers(t *testing.T) {
	setRequired(t)
	t.Setenv("DB_MAX_OPEN_CONNS", "ten")
	_, err := FromEnv()
	assert.ErrorContains(t, err, "DB_MAX_OPEN_CONNS")

	t.Setenv("DB_MAX_OPEN_CONNS", "")
	t.Setenv("ML_TIMEOUT", "soon")
	_, err = FromEnv()
	assert.ErrorContains(t, err, "ML_TIMEOUT")
}

func TestValidate(t *testing.T) {
	setRequired(t)

	cases := map[string]func(c *Config){
		"missing secret": func(c *Config) { c.Auth.JWTSecret = "" },
		"bad driver":     func(c *Config) { c.Database.Driver = "oracle" },
		"missing dsn":    func(c *Config) { c.Database.DSN = "" },
		"half sheets":    func(c *Config) { c.Sheets.CredentialsPath = "/tmp/creds.json" },
		"zero pool":      func(c *Config) { c.Database.MaxOpenConns = 0 },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg, err := FromEnv()
			require.NoError(t, err)
			mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}

	var nilCfg *Config
	assert.Error(t, nilCfg.Validate())
}
