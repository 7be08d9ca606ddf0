// Package config loads the civic classifier configuration from YAML with
// environment variable overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/jonesrussell/north-cloud/civic-classifier/internal/logger"
)

// Default configuration values.
const (
	defaultServiceName      = "civic-classifier"
	defaultServiceVersion   = "1.0.0"
	defaultAnalysisTimeout  = 30 * time.Second
	defaultConcurrency      = 4
	defaultSidecarTimeout   = 10 * time.Second
	defaultMaxAttempts      = 3
	defaultInitialBackoff   = 200 * time.Millisecond
	defaultMaxBackoff       = 2 * time.Second
	defaultRateLimit        = 5.0
	defaultRateBurst        = 5
	defaultBreakerThreshold = 5
	defaultBreakerTimeout   = 30 * time.Second
	defaultCaptionURL       = "http://localhost:8090"
	defaultTranscribeURL    = "http://localhost:8091"
	defaultGeminiModel      = "gemini-2.0-flash"
)

// Collaborator backends.
const (
	ProviderSidecar = "sidecar"
	ProviderGemini  = "gemini"
	ProviderNone    = "none"
)

// ErrInvalidConfig is wrapped by every Validate failure.
var ErrInvalidConfig = errors.New("invalid config")

// Config holds all configuration for the civic classifier.
type Config struct {
	Service       ServiceConfig      `yaml:"service"`
	Logging       logger.Config      `yaml:"logging"`
	Analysis      AnalysisConfig     `yaml:"analysis"`
	Captioning    CollaboratorConfig `yaml:"captioning"`
	Transcription CollaboratorConfig `yaml:"transcription"`
	Gemini        GeminiConfig       `yaml:"gemini"`
	Telemetry     TelemetryConfig    `yaml:"telemetry"`
}

// ServiceConfig holds service identity.
type ServiceConfig struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`
	Debug   bool   `env:"APP_DEBUG" yaml:"debug"`
}

// AnalysisConfig bounds a single analysis and the batch worker pool.
type AnalysisConfig struct {
	Timeout     time.Duration `env:"CIVIC_ANALYSIS_TIMEOUT" yaml:"timeout"`
	Concurrency int           `env:"CIVIC_CONCURRENCY"      yaml:"concurrency"`
}

// CollaboratorConfig configures the captioning or transcription backend.
type CollaboratorConfig struct {
	Provider         string        `yaml:"provider"`
	URL              string        `yaml:"url"`
	Timeout          time.Duration `yaml:"timeout"`
	MaxAttempts      int           `yaml:"max_attempts"`
	InitialBackoff   time.Duration `yaml:"initial_backoff"`
	MaxBackoff       time.Duration `yaml:"max_backoff"`
	RateLimit        float64       `yaml:"rate_limit"`
	RateBurst        int           `yaml:"rate_burst"`
	BreakerThreshold int           `yaml:"breaker_threshold"`
	BreakerTimeout   time.Duration `yaml:"breaker_timeout"`
	PromptSelection  bool          `yaml:"prompt_selection"`
}

// GeminiConfig configures the hosted multimodal backend.
type GeminiConfig struct {
	APIKey string `env:"GEMINI_API_KEY" yaml:"api_key"`
	Model  string `env:"GEMINI_MODEL"   yaml:"model"`
}

// TelemetryConfig controls metrics export.
type TelemetryConfig struct {
	MetricsFile string `env:"CIVIC_METRICS_FILE" yaml:"metrics_file"`
}

// Load loads configuration from path.
func Load(path string) (*Config, error) {
	cfg, err := LoadWithDefaults[Config](path, SetDefaults)
	if err != nil {
		return nil, err
	}
	applyProviderEnv(&cfg.Captioning, "CIVIC_CAPTION_PROVIDER", "CIVIC_CAPTION_URL")
	applyProviderEnv(&cfg.Transcription, "CIVIC_TRANSCRIBE_PROVIDER", "CIVIC_TRANSCRIBE_URL")
	return cfg, nil
}

// applyProviderEnv handles the per-section overrides that a shared struct
// tag cannot express.
func applyProviderEnv(c *CollaboratorConfig, providerVar, urlVar string) {
	if v := os.Getenv(providerVar); v != "" {
		c.Provider = v
	}
	if v := os.Getenv(urlVar); v != "" {
		c.URL = v
	}
}

// SetDefaults applies default values to unset fields.
func SetDefaults(cfg *Config) {
	setServiceDefaults(&cfg.Service)
	cfg.Logging.SetDefaults()
	setAnalysisDefaults(&cfg.Analysis)
	setCollaboratorDefaults(&cfg.Captioning, defaultCaptionURL)
	setCollaboratorDefaults(&cfg.Transcription, defaultTranscribeURL)
	if cfg.Gemini.Model == "" {
		cfg.Gemini.Model = defaultGeminiModel
	}
	if cfg.Service.Debug {
		cfg.Logging.Level = "debug"
	}
}

func setServiceDefaults(s *ServiceConfig) {
	if s.Name == "" {
		s.Name = defaultServiceName
	}
	if s.Version == "" {
		s.Version = defaultServiceVersion
	}
}

func setAnalysisDefaults(a *AnalysisConfig) {
	if a.Timeout == 0 {
		a.Timeout = defaultAnalysisTimeout
	}
	if a.Concurrency == 0 {
		a.Concurrency = defaultConcurrency
	}
}

func setCollaboratorDefaults(c *CollaboratorConfig, url string) {
	if c.Provider == "" {
		c.Provider = ProviderNone
	}
	if c.URL == "" {
		c.URL = url
	}
	if c.Timeout == 0 {
		c.Timeout = defaultSidecarTimeout
	}
	if c.MaxAttempts == 0 {
		c.MaxAttempts = defaultMaxAttempts
	}
	if c.InitialBackoff == 0 {
		c.InitialBackoff = defaultInitialBackoff
	}
	if c.MaxBackoff == 0 {
		c.MaxBackoff = defaultMaxBackoff
	}
	if c.RateLimit == 0 {
		c.RateLimit = defaultRateLimit
	}
	if c.RateBurst == 0 {
		c.RateBurst = defaultRateBurst
	}
	if c.BreakerThreshold == 0 {
		c.BreakerThreshold = defaultBreakerThreshold
	}
	if c.BreakerTimeout == 0 {
		c.BreakerTimeout = defaultBreakerTimeout
	}
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if c.Analysis.Timeout <= 0 {
		return fmt.Errorf("%w: analysis.timeout must be positive", ErrInvalidConfig)
	}
	if c.Analysis.Concurrency <= 0 {
		return fmt.Errorf("%w: analysis.concurrency must be positive", ErrInvalidConfig)
	}
	if err := c.Captioning.validate("captioning"); err != nil {
		return err
	}
	if err := c.Transcription.validate("transcription"); err != nil {
		return err
	}
	usesGemini := c.Captioning.Provider == ProviderGemini || c.Transcription.Provider == ProviderGemini
	if usesGemini && c.Gemini.APIKey == "" {
		return fmt.Errorf("%w: gemini provider requires GEMINI_API_KEY", ErrInvalidConfig)
	}
	return nil
}

func (c *CollaboratorConfig) validate(section string) error {
	switch c.Provider {
	case ProviderSidecar, ProviderGemini, ProviderNone:
	default:
		return fmt.Errorf("%w: %s.provider %q is not one of sidecar, gemini, none",
			ErrInvalidConfig, section, c.Provider)
	}
	if c.Provider != ProviderSidecar {
		return nil
	}
	if c.URL == "" {
		return fmt.Errorf("%w: %s.url is required for the sidecar provider", ErrInvalidConfig, section)
	}
	if c.Timeout <= 0 || c.MaxAttempts <= 0 || c.RateLimit <= 0 || c.RateBurst <= 0 || c.BreakerThreshold <= 0 {
		return fmt.Errorf("%w: %s limits must be positive", ErrInvalidConfig, section)
	}
	return nil
}
