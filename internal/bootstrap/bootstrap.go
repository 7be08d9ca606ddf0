// Package bootstrap wires configuration into a ready-to-use analyzer and
// batch processor.
package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/jonesrussell/north-cloud/civic-classifier/internal/analyzer"
	"github.com/jonesrussell/north-cloud/civic-classifier/internal/captioning"
	"github.com/jonesrussell/north-cloud/civic-classifier/internal/circuitbreaker"
	"github.com/jonesrussell/north-cloud/civic-classifier/internal/config"
	"github.com/jonesrussell/north-cloud/civic-classifier/internal/gemini"
	"github.com/jonesrussell/north-cloud/civic-classifier/internal/logger"
	"github.com/jonesrussell/north-cloud/civic-classifier/internal/mltransport"
	"github.com/jonesrussell/north-cloud/civic-classifier/internal/processor"
	"github.com/jonesrussell/north-cloud/civic-classifier/internal/retry"
	"github.com/jonesrussell/north-cloud/civic-classifier/internal/telemetry"
	"github.com/jonesrussell/north-cloud/civic-classifier/internal/transcription"
)

const (
	collaboratorCaptioning    = "captioning"
	collaboratorTranscription = "transcription"
	healthTimeout             = 5 * time.Second
)

// Components holds everything a command needs to analyze complaints.
type Components struct {
	Config    *config.Config
	Logger    logger.Logger
	Telemetry *telemetry.Provider
	Analyzer  *analyzer.Analyzer
	Processor *processor.BatchProcessor

	sidecars map[string]*mltransport.Client
	backends map[string]string
}

// New builds the component graph described by cfg. Collaborators whose
// provider is "none" are left unset and every image or audio input is then
// reported with the failure placeholder.
func New(ctx context.Context, cfg *config.Config, log logger.Logger) (*Components, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = logger.NewNop()
	}

	c := &Components{
		Config:    cfg,
		Logger:    log,
		Telemetry: telemetry.NewProvider(),
		sidecars:  make(map[string]*mltransport.Client),
		backends: map[string]string{
			collaboratorCaptioning:    cfg.Captioning.Provider,
			collaboratorTranscription: cfg.Transcription.Provider,
		},
	}

	var gem *gemini.Client
	if cfg.Captioning.Provider == config.ProviderGemini || cfg.Transcription.Provider == config.ProviderGemini {
		var err error
		gem, err = gemini.New(ctx, cfg.Gemini.APIKey, cfg.Gemini.Model)
		if err != nil {
			return nil, fmt.Errorf("setup gemini: %w", err)
		}
		log.Info("Gemini backend initialized", logger.String("model", cfg.Gemini.Model))
	}

	captioner := c.setupCaptioner(gem)
	transcriber := c.setupTranscriber(gem)

	c.Analyzer = analyzer.New(analyzer.Config{
		Captioner:   captioner,
		Transcriber: transcriber,
		Telemetry:   c.Telemetry,
		Logger:      log,
		Timeout:     cfg.Analysis.Timeout,
	})
	c.Processor = processor.NewBatchProcessor(c.Analyzer, cfg.Analysis.Concurrency, c.Telemetry, log)

	log.Info("Civic classifier initialized",
		logger.String("captioning", cfg.Captioning.Provider),
		logger.String("transcription", cfg.Transcription.Provider),
		logger.Bool("prompt_selection", cfg.Captioning.PromptSelection),
		logger.Duration("timeout", cfg.Analysis.Timeout),
		logger.Int("concurrency", cfg.Analysis.Concurrency))

	return c, nil
}

func (c *Components) setupCaptioner(gem *gemini.Client) analyzer.Captioner {
	cc := c.Config.Captioning

	var backend captioning.PromptCaptioner
	switch cc.Provider {
	case config.ProviderSidecar:
		transport := c.newTransport(collaboratorCaptioning, cc)
		c.sidecars[collaboratorCaptioning] = transport
		backend = captioning.NewClient(transport)
	case config.ProviderGemini:
		backend = gem
	default:
		return nil
	}

	if cc.PromptSelection {
		return captioning.NewPromptSelector(backend, c.Logger.With(logger.String("collaborator", collaboratorCaptioning)))
	}
	return backend
}

func (c *Components) setupTranscriber(gem *gemini.Client) analyzer.Transcriber {
	tc := c.Config.Transcription

	switch tc.Provider {
	case config.ProviderSidecar:
		transport := c.newTransport(collaboratorTranscription, tc)
		c.sidecars[collaboratorTranscription] = transport
		return transcription.NewClient(transport)
	case config.ProviderGemini:
		return gem
	default:
		return nil
	}
}

func (c *Components) newTransport(name string, cc config.CollaboratorConfig) *mltransport.Client {
	retryCfg := retry.DefaultConfig()
	retryCfg.MaxAttempts = cc.MaxAttempts
	retryCfg.InitialDelay = cc.InitialBackoff
	retryCfg.MaxDelay = cc.MaxBackoff

	return mltransport.NewClient(mltransport.Options{
		Name:      name,
		BaseURL:   cc.URL,
		Timeout:   cc.Timeout,
		RateLimit: cc.RateLimit,
		RateBurst: cc.RateBurst,
		Retry:     retryCfg,
		Breaker: circuitbreaker.Config{
			FailureThreshold: cc.BreakerThreshold,
			Timeout:          cc.BreakerTimeout,
		},
		Telemetry: c.Telemetry,
		Logger:    c.Logger,
	})
}

// HealthResult describes one collaborator backend.
type HealthResult struct {
	Collaborator string        `json:"collaborator"`
	Provider     string        `json:"provider"`
	Reachable    bool          `json:"reachable"`
	Latency      time.Duration `json:"latency"`
	ModelVersion string        `json:"modelVersion,omitempty"`
	Error        string        `json:"error,omitempty"`
}

// Health probes every sidecar backend. Gemini and disabled collaborators
// are reported without a network call.
func (c *Components) Health(ctx context.Context) []HealthResult {
	ctx, cancel := context.WithTimeout(ctx, healthTimeout)
	defer cancel()

	results := make([]HealthResult, 0, len(c.backends))
	for _, name := range []string{collaboratorCaptioning, collaboratorTranscription} {
		hr := HealthResult{Collaborator: name, Provider: c.backends[name]}

		transport, ok := c.sidecars[name]
		if !ok {
			hr.Reachable = hr.Provider == config.ProviderGemini
			results = append(results, hr)
			continue
		}

		status, err := transport.Health(ctx)
		hr.Reachable = status.Reachable
		hr.Latency = status.Latency
		hr.ModelVersion = status.ModelVersion
		if err != nil {
			hr.Error = err.Error()
			c.Logger.Warn("Collaborator health check failed",
				logger.String("collaborator", name),
				logger.Error(err))
		}
		results = append(results, hr)
	}
	return results
}

// Close flushes metrics to the configured textfile and syncs the logger.
func (c *Components) Close() error {
	if err := c.Telemetry.WriteTextfile(c.Config.Telemetry.MetricsFile); err != nil {
		return err
	}
	_ = c.Logger.Sync()
	return nil
}
