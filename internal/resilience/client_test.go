package resilience_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smokyabdulrahman/salat/internal/resilience"
)

func fastConfig(name string, retries uint64) resilience.ClientConfig {
	cfg := resilience.DefaultClientConfig(name)
	cfg.Timeout = 2 * time.Second
	cfg.MaxRetries = retries
	cfg.InitialInterval = 5 * time.Millisecond
	cfg.MaxInterval = 20 * time.Millisecond
	cfg.Breaker.ReadyToTrip = func(counts gobreaker.Counts) bool {
		return counts.Requests >= 100
	}
	return cfg
}

func TestClient_GetJSON(t *testing.T) {
	var userAgent atomic.Value
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userAgent.Store(r.Header.Get("User-Agent"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"city":"Mecca","lat":21.4225}`))
	}))
	defer server.Close()

	client := resilience.NewClient(fastConfig("test-json", 0))

	var got struct {
		City string  `json:"city"`
		Lat  float64 `json:"lat"`
	}
	require.NoError(t, client.GetJSON(context.Background(), server.URL, &got))

	assert.Equal(t, "Mecca", got.City)
	assert.InDelta(t, 21.4225, got.Lat, 1e-9)
	assert.Equal(t, resilience.DefaultUserAgent, userAgent.Load())
}

func TestClient_RetryOn5xx(t *testing.T) {
	var attempts atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if attempts.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := resilience.NewClient(fastConfig("test-retry", 5))

	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, server.URL, http.NoBody)
	require.NoError(t, err)

	resp, err := client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, int32(3), attempts.Load(), "should have retried until success")
}

func TestClient_RetryOnTooManyRequests(t *testing.T) {
	var attempts atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if attempts.Add(1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client := resilience.NewClient(fastConfig("test-429", 2))

	var v map[string]any
	require.NoError(t, client.GetJSON(context.Background(), server.URL, &v))
	assert.Equal(t, int32(2), attempts.Load())
}

func TestClient_RetriesExhausted(t *testing.T) {
	var attempts atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := resilience.NewClient(fastConfig("test-exhausted", 2))

	var v map[string]any
	err := client.GetJSON(context.Background(), server.URL, &v)
	require.Error(t, err)

	var se *resilience.StatusError
	require.True(t, errors.As(err, &se), "error should be a *StatusError, got %T", err)
	assert.Equal(t, http.StatusBadGateway, se.StatusCode)
	assert.Equal(t, int32(3), attempts.Load(), "one attempt plus two retries")
}

func TestClient_4xxNotRetried(t *testing.T) {
	var attempts atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := resilience.NewClient(fastConfig("test-4xx", 3))

	var v map[string]any
	err := client.GetJSON(context.Background(), server.URL, &v)

	var se *resilience.StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusNotFound, se.StatusCode)
	assert.False(t, se.Temporary())
	assert.Equal(t, int32(1), attempts.Load(), "should not retry 4xx errors")
}

func TestClient_CircuitBreakerTrips(t *testing.T) {
	var attempts atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	cfg := fastConfig("test-trip", 0)
	cfg.Breaker = resilience.BreakerConfig{
		MaxRequests: 1,
		Timeout:     time.Minute,
		ReadyToTrip: resilience.DefaultReadyToTrip,
	}
	client := resilience.NewClient(cfg)

	for i := 0; i < 5; i++ {
		var v map[string]any
		_ = client.GetJSON(context.Background(), server.URL, &v)
	}
	assert.Equal(t, gobreaker.StateOpen, client.State())

	before := attempts.Load()
	var v map[string]any
	err := client.GetJSON(context.Background(), server.URL, &v)
	assert.ErrorIs(t, err, resilience.ErrCircuitOpen)
	assert.Equal(t, before, attempts.Load(), "open breaker must not reach the upstream")
}

func TestClient_ContextCancellation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(500 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := resilience.NewClient(fastConfig("test-cancel", 3))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	var v map[string]any
	err := client.GetJSON(ctx, server.URL, &v)
	assert.Error(t, err, "should be canceled")
}

func TestClient_DecodeError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`not json`))
	}))
	defer server.Close()

	client := resilience.NewClient(fastConfig("test-decode", 0))

	var v map[string]any
	err := client.GetJSON(context.Background(), server.URL, &v)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decoding test-decode response")
}

func TestDefaultReadyToTrip(t *testing.T) {
	tests := []struct {
		name     string
		counts   gobreaker.Counts
		expected bool
	}{
		{"not enough requests", gobreaker.Counts{Requests: 4, TotalFailures: 4}, false},
		{"low failure rate", gobreaker.Counts{Requests: 10, TotalFailures: 4}, false},
		{"high failure rate", gobreaker.Counts{Requests: 10, TotalFailures: 5}, true},
		{"exactly 5 requests all failing", gobreaker.Counts{Requests: 5, TotalFailures: 5}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, resilience.DefaultReadyToTrip(tt.counts))
		})
	}
}

func TestDefaultClientConfig(t *testing.T) {
	cfg := resilience.DefaultClientConfig("nominatim")

	assert.Equal(t, "nominatim", cfg.Name)
	assert.Equal(t, 10*time.Second, cfg.Timeout)
	assert.Equal(t, uint64(3), cfg.MaxRetries)
	assert.Equal(t, resilience.DefaultUserAgent, cfg.UserAgent)
	assert.Equal(t, time.Minute, cfg.Breaker.Timeout)
	assert.NotNil(t, cfg.Breaker.ReadyToTrip)
}

func TestStatusError(t *testing.T) {
	err := &resilience.StatusError{StatusCode: http.StatusServiceUnavailable, URL: "http://example.test"}
	assert.Contains(t, err.Error(), "Service Unavailable")
	assert.True(t, err.Temporary())
}
