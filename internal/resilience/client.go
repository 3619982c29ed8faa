package resilience

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"
	"github.com/sony/gobreaker/v2"
)

// ErrCircuitOpen is returned without contacting the upstream while its breaker is open.
var ErrCircuitOpen = errors.New("circuit breaker is open")

// DefaultUserAgent identifies the CLI to public APIs; Nominatim rejects anonymous clients.
const DefaultUserAgent = "prayer-times (+https://github.com/smokyabdulrahman/salat)"

// StatusError reports an unexpected HTTP status from an upstream.
type StatusError struct {
	StatusCode int
	URL        string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: unexpected status %d %s", e.URL, e.StatusCode, http.StatusText(e.StatusCode))
}

// Temporary reports whether the request is worth retrying.
func (e *StatusError) Temporary() bool {
	return e.StatusCode >= 500 || e.StatusCode == http.StatusTooManyRequests
}

// ClientConfig configures a Client.
type ClientConfig struct {
	// Name identifies the upstream in logs and breaker state.
	Name string

	// Timeout bounds each individual attempt.
	Timeout time.Duration

	// MaxRetries is the number of attempts after the first one.
	MaxRetries uint64

	// InitialInterval and MaxInterval bound the exponential backoff.
	InitialInterval time.Duration
	MaxInterval     time.Duration

	// UserAgent is sent on every request.
	UserAgent string

	Breaker BreakerConfig
	Logger  zerolog.Logger
}

// DefaultClientConfig returns three retries starting at 200ms, a 10s
// per-attempt timeout and the default breaker.
func DefaultClientConfig(name string) ClientConfig {
	return ClientConfig{
		Name:            name,
		Timeout:         10 * time.Second,
		MaxRetries:      3,
		InitialInterval: 200 * time.Millisecond,
		MaxInterval:     5 * time.Second,
		UserAgent:       DefaultUserAgent,
		Breaker:         DefaultBreakerConfig(),
		Logger:          zerolog.Nop(),
	}
}

// Client is an HTTP client that retries transient failures with exponential
// backoff behind a circuit breaker. It satisfies the Doer interface used by
// the lookup packages.
type Client struct {
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker[*http.Response]
	cfg        ClientConfig
}

// NewClient creates a Client. Zero durations fall back to the defaults.
func NewClient(cfg ClientConfig) *Client {
	def := DefaultClientConfig(cfg.Name)
	if cfg.Timeout == 0 {
		cfg.Timeout = def.Timeout
	}
	if cfg.InitialInterval == 0 {
		cfg.InitialInterval = def.InitialInterval
	}
	if cfg.MaxInterval == 0 {
		cfg.MaxInterval = def.MaxInterval
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = def.UserAgent
	}
	if cfg.Breaker.Timeout == 0 {
		cfg.Breaker = def.Breaker
	}

	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		breaker:    newBreaker[*http.Response](cfg.Name, cfg.Breaker, cfg.Logger), //nolint:bodyclose // type parameter
		cfg:        cfg,
	}
}

// Do sends req, retrying network errors, 5xx and 429 responses. Other
// responses, including 4xx, are returned to the caller who must close the body.
// When retries are exhausted on a status error the error is a *StatusError.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	ctx := req.Context()

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = c.cfg.InitialInterval
	bo.MaxInterval = c.cfg.MaxInterval
	bo.MaxElapsedTime = 0

	policy := backoff.WithContext(backoff.WithMaxRetries(bo, c.cfg.MaxRetries), ctx)

	var resp *http.Response
	attempt := func() error {
		r, err := c.breaker.Execute(func() (*http.Response, error) { //nolint:bodyclose // closed below or by the caller
			out := req.Clone(ctx)
			if out.Header.Get("User-Agent") == "" {
				out.Header.Set("User-Agent", c.cfg.UserAgent)
			}

			r, err := c.httpClient.Do(out)
			if err != nil {
				return nil, err
			}

			se := &StatusError{StatusCode: r.StatusCode, URL: req.URL.Redacted()}
			if se.Temporary() {
				drain(r)
				return nil, se
			}
			return r, nil
		})

		switch {
		case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
			return backoff.Permanent(fmt.Errorf("%s: %w", c.cfg.Name, ErrCircuitOpen))
		case err != nil:
			return err
		}
		resp = r
		return nil
	}

	notify := func(err error, wait time.Duration) {
		c.cfg.Logger.Debug().
			Err(err).
			Str("upstream", c.cfg.Name).
			Dur("wait", wait).
			Msg("retrying request")
	}

	if err := backoff.RetryNotify(attempt, policy, notify); err != nil {
		return nil, err
	}
	return resp, nil
}

// GetJSON fetches url and decodes a 2xx JSON body into v.
func (c *Client) GetJSON(ctx context.Context, url string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{StatusCode: resp.StatusCode, URL: req.URL.Redacted()}
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decoding %s response: %w", c.cfg.Name, err)
	}
	return nil
}

// State returns the breaker state.
func (c *Client) State() gobreaker.State {
	return c.breaker.State()
}

// Counts returns the breaker counters.
func (c *Client) Counts() gobreaker.Counts {
	return c.breaker.Counts()
}

func drain(r *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(r.Body, 64<<10))
	r.Body.Close()
}
