package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jonesrussell/north-cloud/civic-classifier/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := config.Load(filepath.Join(t.TempDir(), "absent.yml"))
	require.NoError(t, err)

	assert.Equal(t, "civic-classifier", cfg.Service.Name)
	assert.Equal(t, 30*time.Second, cfg.Analysis.Timeout)
	assert.Equal(t, config.ProviderNone, cfg.Captioning.Provider)
	assert.Equal(t, "http://localhost:8090", cfg.Captioning.URL)
	assert.Equal(t, "http://localhost:8091", cfg.Transcription.URL)
	assert.Equal(t, "info", cfg.Logging.Level)
	require.NoError(t, cfg.Validate())
}

func TestLoad_YAMLValues(t *testing.T) {
	path := writeConfig(t, `
analysis:
  timeout: 5s
  concurrency: 8
captioning:
  provider: sidecar
  url: http://caption:9000
  prompt_selection: true
logging:
  level: warn
`)

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, 5*time.Second, cfg.Analysis.Timeout)
	assert.Equal(t, 8, cfg.Analysis.Concurrency)
	assert.Equal(t, config.ProviderSidecar, cfg.Captioning.Provider)
	assert.Equal(t, "http://caption:9000", cfg.Captioning.URL)
	assert.True(t, cfg.Captioning.PromptSelection)
	assert.Equal(t, 3, cfg.Captioning.MaxAttempts)
	assert.Equal(t, "warn", cfg.Logging.Level)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("CIVIC_CONCURRENCY", "12")
	t.Setenv("CIVIC_ANALYSIS_TIMEOUT", "2s")
	t.Setenv("CIVIC_TRANSCRIBE_PROVIDER", "sidecar")
	t.Setenv("CIVIC_TRANSCRIBE_URL", "http://stt:7000")
	t.Setenv("GEMINI_API_KEY", "key-from-env")

	cfg, err := config.Load(writeConfig(t, "analysis:\n  concurrency: 3\n"))
	require.NoError(t, err)

	assert.Equal(t, 12, cfg.Analysis.Concurrency)
	assert.Equal(t, 2*time.Second, cfg.Analysis.Timeout)
	assert.Equal(t, config.ProviderSidecar, cfg.Transcription.Provider)
	assert.Equal(t, "http://stt:7000", cfg.Transcription.URL)
	assert.Equal(t, "key-from-env", cfg.Gemini.APIKey)
}

func TestLoad_InvalidYAML(t *testing.T) {
	_, err := config.Load(writeConfig(t, "analysis: [unterminated"))
	require.Error(t, err)
}

func TestGetConfigPath(t *testing.T) {
	assert.Equal(t, "config.yml", config.GetConfigPath("config.yml"))

	t.Setenv("CONFIG_PATH", "/etc/civic.yml")
	assert.Equal(t, "/etc/civic.yml", config.GetConfigPath("config.yml"))
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*config.Config)
		wantErr bool
	}{
		{name: "defaults", mutate: func(*config.Config) {}},
		{
			name:    "unknown provider",
			mutate:  func(c *config.Config) { c.Captioning.Provider = "magic" },
			wantErr: true,
		},
		{
			name:    "gemini without key",
			mutate:  func(c *config.Config) { c.Transcription.Provider = config.ProviderGemini },
			wantErr: true,
		},
		{
			name: "gemini with key",
			mutate: func(c *config.Config) {
				c.Captioning.Provider = config.ProviderGemini
				c.Gemini.APIKey = "k"
			},
		},
		{
			name: "sidecar with zero rate",
			mutate: func(c *config.Config) {
				c.Captioning.Provider = config.ProviderSidecar
				c.Captioning.RateLimit = -1
			},
			wantErr: true,
		},
		{
			name:    "zero concurrency",
			mutate:  func(c *config.Config) { c.Analysis.Concurrency = -1 },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := &config.Config{}
			config.SetDefaults(cfg)
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr {
				require.ErrorIs(t, err, config.ErrInvalidConfig)
				return
			}
			require.NoError(t, err)
		})
	}
}
