package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	apierrors "carpulse/internal/errors"
	"carpulse/internal/pricing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestDefault tests the default configuration
func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 30*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, int64(DefaultMaxBodyBytes), cfg.Server.MaxBodyBytes)
	assert.True(t, cfg.Security.EnableCORS)
	assert.True(t, cfg.Security.RateLimit.Enabled)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "stdout", cfg.Logging.Output)
	assert.Equal(t, "none", cfg.Metrics.TraceExporter)
	assert.Equal(t, pricing.DefaultParams(), cfg.Pricing.Params())

	require.NoError(t, cfg.Validate())
}

// TestLoad tests the layering of file and environment sources
func TestLoad(t *testing.T) {
	tests := []struct {
		name        string
		yaml        string
		env         map[string]string
		wantErr     string
		validateCfg func(*testing.T, *Config)
	}{
		{
			name: "defaults only",
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 8080, cfg.Server.Port)
				assert.Equal(t, 15000.0, cfg.Pricing.ExpectedKmPerYear)
			},
		},
		{
			name: "environment overrides defaults",
			env: map[string]string{
				"CARPULSE_SERVER_PORT":                  "9090",
				"CARPULSE_LOGGING_LEVEL":                "debug",
				"CARPULSE_SECURITY_ALLOWED_ORIGINS":     "https://a.example,https://b.example",
				"CARPULSE_PRICING_EXPECTED_KM_PER_YEAR": "18000",
				"CARPULSE_PRICING_POPULAR_BRANDS":       "Toyota,Kia",
				"CARPULSE_PRICING_REFERENCE_YEAR":       "2024",
			},
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 9090, cfg.Server.Port)
				assert.Equal(t, "debug", cfg.Logging.Level)
				assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Security.AllowedOrigins)
				assert.Equal(t, 18000.0, cfg.Pricing.ExpectedKmPerYear)
				assert.Equal(t, []string{"Toyota", "Kia"}, cfg.Pricing.PopularBrands)
				assert.Equal(t, 2024, cfg.Pricing.ReferenceYear)
				assert.Len(t, cfg.Pricing.KmSteps, 6, "step table keeps its default")
			},
		},
		{
			name: "file overlays defaults",
			yaml: `
server:
  port: 7070
  write_timeout: 20s
pricing:
  clamp_min: 0.8
  kilometraje_steps:
    - {up_to: -10000, percent: 0.05}
    - {up_to: 10000, inclusive: true, percent: 0}
  beyond_percent: -0.05
`,
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 7070, cfg.Server.Port)
				assert.Equal(t, 20*time.Second, cfg.Server.WriteTimeout)
				assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
				assert.Equal(t, 0.8, cfg.Pricing.ClampMin)
				assert.Equal(t, 1.15, cfg.Pricing.ClampMax)
				assert.Equal(t, []pricing.KmStep{
					{UpTo: -10000, Percent: 0.05},
					{UpTo: 10000, Inclusive: true, Percent: 0},
				}, cfg.Pricing.KmSteps)
			},
		},
		{
			name: "environment wins over file",
			yaml: "server:\n  port: 7070\n",
			env:  map[string]string{"CARPULSE_SERVER_PORT": "6060"},
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 6060, cfg.Server.Port)
			},
		},
		{
			name:    "invalid pricing section",
			yaml:    "pricing:\n  clamp_min: 2\n",
			wantErr: "invalid pricing config",
		},
		{
			name:    "malformed yaml",
			yaml:    "server: [",
			wantErr: "failed to load config from file",
		},
		{
			name:    "malformed environment value",
			env:     map[string]string{"CARPULSE_SERVER_PORT": "eighty"},
			wantErr: "failed to load config from env",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.yaml != "" {
				path := filepath.Join(t.TempDir(), "config.yaml")
				require.NoError(t, os.WriteFile(path, []byte(tt.yaml), 0o600))
				t.Setenv("CARPULSE_CONFIG_FILE", path)
			}
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			cfg, err := Load()
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				assertConfigError(t, err)
				return
			}
			require.NoError(t, err)
			tt.validateCfg(t, cfg)
		})
	}
}

func assertConfigError(t *testing.T, err error) {
	t.Helper()
	var appErr *apierrors.AppError
	require.True(t, errors.As(err, &appErr), "want *AppError, got %T", err)
	assert.Equal(t, apierrors.ErrTypeConfig, appErr.Type)
	assert.NotNil(t, appErr.Unwrap())
}

// TestLoadDotEnv tests .env handling
func TestLoadDotEnv(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		assert.NoError(t, loadDotEnv(filepath.Join(t.TempDir(), ".env")))
	})

	t.Run("does not override the environment", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), ".env")
		content := "CARPULSE_TEST_DOTENV_A=from-file\nCARPULSE_TEST_DOTENV_B=from-file\n"
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

		t.Setenv("CARPULSE_TEST_DOTENV_A", "from-env")
		t.Setenv("CARPULSE_TEST_DOTENV_B", "")
		require.NoError(t, os.Unsetenv("CARPULSE_TEST_DOTENV_B"))

		require.NoError(t, loadDotEnv(path))
		assert.Equal(t, "from-env", os.Getenv("CARPULSE_TEST_DOTENV_A"))
		assert.Equal(t, "from-file", os.Getenv("CARPULSE_TEST_DOTENV_B"))
	})
}

// TestValidate tests configuration validation
func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"invalid port", func(c *Config) { c.Server.Port = 70000 }, "invalid server port"},
		{"zero read timeout", func(c *Config) { c.Server.ReadTimeout = 0 }, "read timeout"},
		{"zero write timeout", func(c *Config) { c.Server.WriteTimeout = 0 }, "write timeout"},
		{"zero body limit", func(c *Config) { c.Server.MaxBodyBytes = 0 }, "max body bytes"},
		{"cors without origins", func(c *Config) { c.Security.AllowedOrigins = nil }, "allowed origin"},
		{"bad rate limit", func(c *Config) { c.Security.RateLimit.RPS = 0 }, "rate limit"},
		{"bad log level", func(c *Config) { c.Logging.Level = "verbose" }, "invalid log level"},
		{"bad trace exporter", func(c *Config) { c.Metrics.TraceExporter = "jaeger" }, "trace exporter"},
		{"pong before ping", func(c *Config) { c.WebSocket.PongWait = time.Second }, "pong wait"},
		{"bad pricing", func(c *Config) { c.Pricing.QuartileThreshold = 1 }, "invalid pricing config"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
			assertConfigError(t, err)
		})
	}

	t.Run("normalises logging output", func(t *testing.T) {
		cfg := Default()
		cfg.Logging.Output = "console"
		cfg.Logging.FilePath = ""
		require.NoError(t, cfg.Validate())
		assert.Equal(t, "stdout", cfg.Logging.Output)

		cfg.Logging.Output = "both"
		require.NoError(t, cfg.Validate())
		assert.Equal(t, DefaultLogFile, cfg.Logging.FilePath)
	})

	t.Run("rate limit and cors may be disabled", func(t *testing.T) {
		cfg := Default()
		cfg.Security.EnableCORS = false
		cfg.Security.AllowedOrigins = nil
		cfg.Security.RateLimit = RateLimitConfig{}
		assert.NoError(t, cfg.Validate())
	})
}

// TestPricingConfigParams tests that the conversion copies slices
func TestPricingConfigParams(t *testing.T) {
	pc := DefaultPricing()
	params := pc.Params()

	params.PopularBrands[0] = "Lada"
	params.KmSteps[0].Percent = 0.5
	assert.Equal(t, "Toyota", pc.PopularBrands[0])
	assert.Equal(t, 0.15, pc.KmSteps[0].Percent)
}
