package mltransport_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jonesrussell/north-cloud/civic-classifier/internal/circuitbreaker"
	"github.com/jonesrussell/north-cloud/civic-classifier/internal/mltransport"
	"github.com/jonesrussell/north-cloud/civic-classifier/internal/retry"
	"github.com/jonesrussell/north-cloud/civic-classifier/internal/telemetry"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type echoRequest struct {
	Value string `json:"value"`
}

type echoResponse struct {
	Result string `json:"result"`
}

func newClient(url string, tp *telemetry.Provider) *mltransport.Client {
	return mltransport.NewClient(mltransport.Options{
		Name:      "test",
		BaseURL:   url + "/",
		Timeout:   time.Second,
		RateLimit: 1000,
		RateBurst: 1000,
		Retry: retry.Config{
			MaxAttempts:  3,
			InitialDelay: time.Millisecond,
			MaxDelay:     time.Millisecond,
		},
		Breaker:   circuitbreaker.Config{FailureThreshold: 2, Timeout: time.Hour},
		Telemetry: tp,
	})
}

func TestPostJSON_Success(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/caption", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req echoRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(echoResponse{Result: "got " + req.Value})
	}))
	defer srv.Close()

	var got echoResponse
	err := newClient(srv.URL, nil).PostJSON(context.Background(), "/caption", echoRequest{Value: "x"}, &got)
	require.NoError(t, err)
	assert.Equal(t, "got x", got.Result)
}

func TestPostJSON_RetriesServerErrors(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_ = json.NewEncoder(w).Encode(echoResponse{Result: "ok"})
	}))
	defer srv.Close()

	var got echoResponse
	require.NoError(t, newClient(srv.URL, nil).PostJSON(context.Background(), "/x", echoRequest{}, &got))
	assert.Equal(t, "ok", got.Result)
	assert.Equal(t, int32(2), calls.Load())
}

func TestPostJSON_ClientErrorNotRetried(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		http.Error(w, "bad image", http.StatusBadRequest)
	}))
	defer srv.Close()

	var got echoResponse
	err := newClient(srv.URL, nil).PostJSON(context.Background(), "/x", echoRequest{}, &got)
	require.ErrorIs(t, err, mltransport.ErrUnavailable)

	var statusErr *mltransport.StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusBadRequest, statusErr.Code)
	assert.Equal(t, "bad image", statusErr.Body)
	assert.Equal(t, int32(1), calls.Load())
}

func TestPostJSON_BreakerOpens(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	tp := telemetry.NewProvider()
	client := newClient(srv.URL, tp)
	var got echoResponse

	// two failed attempts open the breaker; the third is rejected locally
	err := client.PostJSON(context.Background(), "/x", echoRequest{}, &got)
	require.ErrorIs(t, err, circuitbreaker.ErrCircuitOpen)
	assert.Equal(t, int32(2), calls.Load())

	err = client.PostJSON(context.Background(), "/x", echoRequest{}, &got)
	require.ErrorIs(t, err, circuitbreaker.ErrCircuitOpen)
	assert.Equal(t, int32(2), calls.Load())
	assert.InDelta(t, 2, testutil.ToFloat64(tp.Metrics.BreakerRejections.WithLabelValues("test")), 0)
}

func TestPostJSON_DecodeError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("not json"))
	}))
	defer srv.Close()

	var got echoResponse
	err := newClient(srv.URL, nil).PostJSON(context.Background(), "/x", echoRequest{}, &got)
	require.ErrorIs(t, err, mltransport.ErrUnavailable)
}

func TestPostJSON_Unreachable(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	var got echoResponse
	err := newClient(url, nil).PostJSON(context.Background(), "/x", echoRequest{}, &got)
	require.ErrorIs(t, err, mltransport.ErrUnavailable)
}

func TestHealth(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/health", r.URL.Path)
		_, _ = w.Write([]byte(`{"model_version":"blip-large"}`))
	}))
	defer srv.Close()

	status, err := newClient(srv.URL, nil).Health(context.Background())
	require.NoError(t, err)
	assert.True(t, status.Reachable)
	assert.Equal(t, "blip-large", status.ModelVersion)
}

func TestHealth_Unhealthy(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	status, err := newClient(srv.URL, nil).Health(context.Background())
	require.ErrorIs(t, err, mltransport.ErrUnavailable)
	assert.False(t, status.Reachable)
}

func TestStatusError_Temporary(t *testing.T) {
	t.Parallel()

	assert.True(t, (&mltransport.StatusError{Code: 500}).Temporary())
	assert.True(t, (&mltransport.StatusError{Code: 429}).Temporary())
	assert.False(t, (&mltransport.StatusError{Code: 404}).Temporary())
}
