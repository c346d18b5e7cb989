package config

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		ServerPort:       "8080",
		RequestTimeout:   30 * time.Second,
		LogFormat:        "pretty",
		DatabaseDriver:   DriverSQLite,
		DatabaseURL:      "file::memory:",
		DBMaxConns:       4,
		DBMinConns:       1,
		JWTSecret:        "secret",
		JWTAccessTTL:     15 * time.Minute,
		JWTRefreshTTL:    24 * time.Hour,
		CookieSecure:     true,
		RateLimitRPM:     100,
		AuthRateLimitRPM: 10,
		BcryptCost:       10,
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("JWT_SECRET", "from-env")
	t.Setenv("DATABASE_DRIVER", "sqlite")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("JWT_ACCESS_TTL", "5m")
	t.Setenv("JWT_REFRESH_TTL", "not-a-duration")
	t.Setenv("COOKIE_SECURE", "false")
	t.Setenv("COOKIE_SAMESITE", "lax")
	t.Setenv("CORS_ORIGINS", "http://a.test, ,http://b.test")
	t.Setenv("TRUST_PROXY_HEADERS", "true")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "from-env", cfg.JWTSecret)
	require.Equal(t, "file:todo.db", cfg.DatabaseURL)
	require.Equal(t, 5*time.Minute, cfg.JWTAccessTTL)
	require.Equal(t, 168*time.Hour, cfg.JWTRefreshTTL)
	require.False(t, cfg.CookieSecure)
	require.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORSOrigins)
	require.True(t, cfg.TrustProxyHeaders)

	opts := cfg.CookieOptions()
	require.Equal(t, http.SameSiteLaxMode, opts.SameSite)
	require.False(t, opts.Secure)
}

func TestValidate(t *testing.T) {
	t.Parallel()

	require.NoError(t, validConfig().Validate())

	cases := map[string]func(*Config){
		"missing secret":          func(c *Config) { c.JWTSecret = " " },
		"unknown driver":          func(c *Config) { c.DatabaseDriver = "mysql" },
		"missing database url":    func(c *Config) { c.DatabaseURL = "" },
		"access outlives refresh": func(c *Config) { c.JWTAccessTTL = 48 * time.Hour },
		"bad samesite":            func(c *Config) { c.CookieSameSite = "sometimes" },
		"samesite none insecure": func(c *Config) {
			c.CookieSameSite = "none"
			c.CookieSecure = false
		},
		"bcrypt cost too low":  func(c *Config) { c.BcryptCost = 1 },
		"min conns above max":  func(c *Config) { c.DBMinConns = 10 },
		"unknown log format":   func(c *Config) { c.LogFormat = "xml" },
		"non positive timeout": func(c *Config) { c.RequestTimeout = 0 },
	}

	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := validConfig()
			mutate(cfg)
			require.Error(t, cfg.Validate())
		})
	}
}
