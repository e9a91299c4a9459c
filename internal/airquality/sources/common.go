// Package sources contains the concrete air-quality provider adapters and
// the resilience plumbing they share.
package sources

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"time"

	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"github.com/blueforce/skyshield/internal/airquality"
)

// BackoffConfig controls exponential backoff behaviour.
type BackoffConfig struct {
	MaxRetries      int
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

// HTTPClientConfig bundles HTTP client and resilience settings.
type HTTPClientConfig struct {
	Client  *http.Client
	Backoff BackoffConfig
}

var (
	errRateLimited   = errors.New("rate limited")
	errServerError   = errors.New("server error")
	errUnexpected    = errors.New("unexpected status code")
	errCircuitOpen   = errors.New("circuit breaker open")
	errNoHTTPClient  = errors.New("http client not configured")
	errInvalidConfig = errors.New("invalid backoff configuration")
)

func defaultBackoff() BackoffConfig {
	return BackoffConfig{
		MaxRetries:      3,
		InitialInterval: 500 * time.Millisecond,
		MaxInterval:     5 * time.Second,
	}
}

func newBreaker(name string) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 5,
		Interval:    1 * time.Minute,
		Timeout:     2 * time.Minute,
	})
}

// doRequestWithResilience executes the HTTP request with retries,
// exponential backoff, and a circuit breaker. Status-level failures come
// back as protocol errors, everything else as transport errors, so the
// aggregator can label the degradation.
func doRequestWithResilience(
	ctx context.Context,
	cfg HTTPClientConfig,
	cb *gobreaker.CircuitBreaker,
	source string,
	buildRequest func() (*http.Request, error),
) (*http.Response, error) {
	if cfg.Client == nil {
		return nil, &airquality.SourceError{Kind: airquality.ErrKindConfig, Source: source, Err: errNoHTTPClient}
	}
	if cfg.Backoff.MaxRetries < 0 || cfg.Backoff.InitialInterval <= 0 {
		return nil, &airquality.SourceError{Kind: airquality.ErrKindConfig, Source: source, Err: errInvalidConfig}
	}

	var attempt int
	var lastErr error

	for {
		if ctx.Err() != nil {
			return nil, &airquality.SourceError{Kind: airquality.ErrKindTransport, Source: source, Err: ctx.Err()}
		}

		req, err := buildRequest()
		if err != nil {
			return nil, &airquality.SourceError{Kind: airquality.ErrKindTransport, Source: source, Err: err}
		}

		// Ensure the request obeys context cancellation.
		req = req.WithContext(ctx)

		result, err := cb.Execute(func() (interface{}, error) {
			resp, execErr := cfg.Client.Do(req)
			if execErr != nil {
				return nil, execErr
			}

			// Handle rate limiting and server errors explicitly.
			if resp.StatusCode == http.StatusTooManyRequests {
				resp.Body.Close()
				return nil, errRateLimited
			}
			if resp.StatusCode >= 500 {
				resp.Body.Close()
				return nil, errServerError
			}
			if resp.StatusCode < 200 || resp.StatusCode >= 300 {
				resp.Body.Close()
				return nil, fmt.Errorf("%w: %d", errUnexpected, resp.StatusCode)
			}

			return resp, nil
		})

		if err == nil {
			resp, ok := result.(*http.Response)
			if !ok {
				return nil, &airquality.SourceError{
					Kind:   airquality.ErrKindTransport,
					Source: source,
					Err:    errors.New("unexpected result type from circuit breaker"),
				}
			}
			return resp, nil
		}

		// If circuit is open, propagate immediately.
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, &airquality.SourceError{
				Kind:   airquality.ErrKindTransport,
				Source: source,
				Err:    fmt.Errorf("%w: %v", errCircuitOpen, err),
			}
		}

		lastErr = err
		if attempt >= cfg.Backoff.MaxRetries {
			return nil, classifyRequestError(source, lastErr)
		}

		// Backoff with exponential delay.
		delay := cfg.Backoff.InitialInterval * time.Duration(math.Pow(2, float64(attempt)))
		if delay > cfg.Backoff.MaxInterval && cfg.Backoff.MaxInterval > 0 {
			delay = cfg.Backoff.MaxInterval
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, &airquality.SourceError{Kind: airquality.ErrKindTransport, Source: source, Err: ctx.Err()}
		case <-timer.C:
			// continue to next attempt
		}

		attempt++
	}
}

func classifyRequestError(source string, err error) error {
	kind := airquality.ErrKindTransport
	if errors.Is(err, errRateLimited) || errors.Is(err, errServerError) || errors.Is(err, errUnexpected) {
		kind = airquality.ErrKindProtocol
	}
	return &airquality.SourceError{Kind: kind, Source: source, Err: err}
}

// RateLimitedSource wraps a source with a token-bucket rate limiter so a
// key-gated provider's quota cannot be exceeded across cycles.
type RateLimitedSource struct {
	source  airquality.Source
	limiter *rate.Limiter
}

// NewRateLimitedSource allows rps requests per second with the given burst.
// Fractional rps values express less than one request per second.
func NewRateLimitedSource(source airquality.Source, rps float64, burst int) *RateLimitedSource {
	return &RateLimitedSource{
		source:  source,
		limiter: rate.NewLimiter(rate.Limit(rps), burst),
	}
}

func (r *RateLimitedSource) Name() string { return r.source.Name() }

// Fetch waits for limiter permission, then forwards to the wrapped source.
func (r *RateLimitedSource) Fetch(ctx context.Context, loc airquality.Location) ([]airquality.Measurement, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return nil, &airquality.SourceError{
			Kind:   airquality.ErrKindTransport,
			Source: r.source.Name(),
			Err:    fmt.Errorf("rate limit wait canceled: %w", err),
		}
	}
	return r.source.Fetch(ctx, loc)
}

var _ airquality.Source = (*RateLimitedSource)(nil)
