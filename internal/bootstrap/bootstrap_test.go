package bootstrap_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/jonesrussell/north-cloud/civic-classifier/internal/bootstrap"
	"github.com/jonesrussell/north-cloud/civic-classifier/internal/config"
	"github.com/jonesrussell/north-cloud/civic-classifier/internal/domain"
	"github.com/jonesrussell/north-cloud/civic-classifier/internal/testhelpers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func defaultConfig() *config.Config {
	cfg := &config.Config{}
	config.SetDefaults(cfg)
	return cfg
}

type sidecar struct {
	*httptest.Server
	captions atomic.Int64
}

func newSidecar(t *testing.T, caption, transcript string) *sidecar {
	t.Helper()

	s := &sidecar{}
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{"model_version": "blip-test"})
	})
	mux.HandleFunc("POST /caption", func(w http.ResponseWriter, _ *http.Request) {
		s.captions.Add(1)
		_ = json.NewEncoder(w).Encode(map[string]string{"caption": caption})
	})
	mux.HandleFunc("POST /transcribe", func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{"text": transcript})
	})
	s.Server = httptest.NewServer(mux)
	t.Cleanup(s.Close)
	return s
}

func TestNew_NoProviders(t *testing.T) {
	t.Parallel()

	comps, err := bootstrap.New(context.Background(), defaultConfig(), nil)
	require.NoError(t, err)

	resp := comps.Analyzer.Analyze(context.Background(), &domain.Request{Image: testhelpers.PNG(t), Text: "bus stop shelter broken"})
	require.True(t, resp.Success)
	assert.Equal(t, domain.CaptionFailed, resp.Data.ImageCaption)
	assert.Equal(t, domain.PublicTransport, resp.Data.ProblemIdentified)

	health := comps.Health(context.Background())
	require.Len(t, health, 2)
	for _, h := range health {
		assert.Equal(t, config.ProviderNone, h.Provider)
		assert.False(t, h.Reachable)
	}
}

func TestNew_InvalidConfig(t *testing.T) {
	t.Parallel()

	cfg := defaultConfig()
	cfg.Captioning.Provider = config.ProviderGemini
	cfg.Gemini.APIKey = ""

	_, err := bootstrap.New(context.Background(), cfg, nil)
	require.ErrorIs(t, err, config.ErrInvalidConfig)
}

func TestNew_Sidecars(t *testing.T) {
	t.Parallel()

	sc := newSidecar(t, "a deep pothole on the road", "paani ka pipe toot gaya")
	cfg := defaultConfig()
	cfg.Captioning.Provider = config.ProviderSidecar
	cfg.Captioning.URL = sc.URL
	cfg.Transcription.Provider = config.ProviderSidecar
	cfg.Transcription.URL = sc.URL

	comps, err := bootstrap.New(context.Background(), cfg, nil)
	require.NoError(t, err)

	resp := comps.Analyzer.Analyze(context.Background(), &domain.Request{
		Image: testhelpers.PNG(t),
		Audio: testhelpers.WAV(),
	})
	require.True(t, resp.Success)
	assert.Equal(t, "a deep pothole on the road", resp.Data.ImageCaption)
	assert.Equal(t, "water ka pipe toot gaya", resp.Data.ComplaintText)
	assert.Equal(t, domain.PotholeRoadDamage, resp.Data.ProblemIdentified)
	assert.Equal(t, domain.PriorityHigh, resp.Data.Priority)
	assert.Equal(t, int64(1), sc.captions.Load())

	health := comps.Health(context.Background())
	require.Len(t, health, 2)
	for _, h := range health {
		assert.True(t, h.Reachable, h.Collaborator)
		assert.Equal(t, "blip-test", h.ModelVersion)
		assert.Empty(t, h.Error)
	}
}

func TestNew_PromptSelection(t *testing.T) {
	t.Parallel()

	sc := newSidecar(t, "broken street light at night", "")
	cfg := defaultConfig()
	cfg.Captioning.Provider = config.ProviderSidecar
	cfg.Captioning.URL = sc.URL
	cfg.Captioning.PromptSelection = true

	comps, err := bootstrap.New(context.Background(), cfg, nil)
	require.NoError(t, err)

	resp := comps.Analyzer.Analyze(context.Background(), &domain.Request{Image: testhelpers.PNG(t)})
	require.True(t, resp.Success)
	assert.Equal(t, domain.StreetlightElectrical, resp.Data.ProblemIdentified)
	assert.Equal(t, int64(4), sc.captions.Load())
}

func TestHealth_Unreachable(t *testing.T) {
	t.Parallel()

	sc := newSidecar(t, "", "")
	url := sc.URL
	sc.Close()

	cfg := defaultConfig()
	cfg.Captioning.Provider = config.ProviderSidecar
	cfg.Captioning.URL = url

	comps, err := bootstrap.New(context.Background(), cfg, nil)
	require.NoError(t, err)

	health := comps.Health(context.Background())
	assert.False(t, health[0].Reachable)
	assert.NotEmpty(t, health[0].Error)
}

func TestClose_WritesMetrics(t *testing.T) {
	t.Parallel()

	cfg := defaultConfig()
	cfg.Telemetry.MetricsFile = filepath.Join(t.TempDir(), "civic.prom")

	comps, err := bootstrap.New(context.Background(), cfg, nil)
	require.NoError(t, err)

	comps.Analyzer.Analyze(context.Background(), &domain.Request{Text: "garbage"})
	require.NoError(t, comps.Close())
	assert.FileExists(t, cfg.Telemetry.MetricsFile)
}
