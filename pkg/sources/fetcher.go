package sources

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/samvad-hq/samvad-health-news/internal/domain"
	"github.com/samvad-hq/samvad-health-news/internal/logger"
	"github.com/samvad-hq/samvad-health-news/internal/retry"
	"github.com/samvad-hq/samvad-health-news/pkg/httpclient"
	"github.com/sony/gobreaker"
)

var (
	// ErrRateLimited is returned when a quota-limited endpoint answers 429.
	ErrRateLimited = errors.New("rate limited")
	// ErrNoFeedURL is returned for sources that only exist for the API or heuristics.
	ErrNoFeedURL = errors.New("source has no feed url")
)

// StatusError reports a non-success HTTP status.
type StatusError struct {
	Code    int
	Snippet string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("status %d: %s", e.Code, e.Snippet)
}

// Tripper records a rate-limit trip for a key.
type Tripper interface {
	Trip(key string)
}

// Request is one outbound GET.
type Request struct {
	URL     string
	Headers map[string]string
	// Timeout bounds each attempt; zero uses the fetcher default.
	Timeout time.Duration
	// RateLimitKey marks a quota-limited endpoint. A 429 trips it.
	RateLimitKey string
}

// FetcherOptions configures a Fetcher.
type FetcherOptions struct {
	Timeout          time.Duration
	Retry            retry.Policy
	Guard            Tripper
	BreakerThreshold int
	BreakerCooldown  time.Duration
	Logger           logger.Logger
}

const defaultFeedTimeout = 4 * time.Second

// Fetcher issues GETs with per-attempt timeouts, retry with backoff, and a
// per-source circuit breaker.
type Fetcher struct {
	client  httpclient.Client
	timeout time.Duration
	policy  retry.Policy
	guard   Tripper
	log     logger.Logger

	breakerThreshold int
	breakerCooldown  time.Duration
	breakersMu       sync.Mutex
	breakers         map[string]*gobreaker.CircuitBreaker
}

// DefaultHTTPClient returns the resty client used for feed fetches.
func DefaultHTTPClient() httpclient.Client {
	return httpclient.NewRestyClient(15 * time.Second)
}

// NewFetcher builds a Fetcher. A nil client uses DefaultHTTPClient.
func NewFetcher(client httpclient.Client, opts FetcherOptions) *Fetcher {
	if client == nil {
		client = DefaultHTTPClient()
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultFeedTimeout
	}
	if opts.BreakerCooldown <= 0 {
		opts.BreakerCooldown = 10 * time.Minute
	}
	return &Fetcher{
		client:           client,
		timeout:          opts.Timeout,
		policy:           opts.Retry,
		guard:            opts.Guard,
		log:              logger.OrNop(opts.Logger),
		breakerThreshold: opts.BreakerThreshold,
		breakerCooldown:  opts.BreakerCooldown,
		breakers:         make(map[string]*gobreaker.CircuitBreaker),
	}
}

// FetchSource downloads the feed body for cfg.
func (f *Fetcher) FetchSource(ctx context.Context, cfg domain.SourceConfig) ([]byte, error) {
	if !cfg.HasFeed() {
		return nil, ErrNoFeedURL
	}
	req := Request{
		URL:          cfg.FeedURL,
		Headers:      Headers(cfg),
		RateLimitKey: cfg.RateLimitKey,
	}

	cb := f.breakerFor(cfg.Name)
	if cb == nil {
		resp, err := f.Do(ctx, req)
		if err != nil {
			return nil, err
		}
		return resp.Body(), nil
	}

	out, err := cb.Execute(func() (interface{}, error) {
		resp, err := f.Do(ctx, req)
		if err != nil {
			var interrupted *interruptedError
			if errors.As(err, &interrupted) || errors.Is(err, ErrRateLimited) {
				return nil, excusedError{err}
			}
			return nil, err
		}
		return resp.Body(), nil
	})
	var excused excusedError
	if errors.As(err, &excused) {
		return nil, excused.error
	}
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, fmt.Errorf("source %q skipped: %w", cfg.Name, err)
	}
	if err != nil {
		return nil, err
	}
	return out.([]byte), nil
}

// Do performs req with retry. Transport errors and 5xx are retried; other
// statuses >= 400 are returned as *StatusError without retry, and a 429 on a
// rate-limited request trips the guard and returns ErrRateLimited.
func (f *Fetcher) Do(ctx context.Context, req Request) (httpclient.Response, error) {
	timeout := req.Timeout
	if timeout <= 0 {
		timeout = f.timeout
	}

	var (
		resp     httpclient.Response
		failures int
	)
	err := retry.Do(ctx, f.policy, func(attempt int) error {
		attemptCtx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		r, err := f.client.Get(attemptCtx, req.URL, req.Headers)
		if err != nil {
			if ctx.Err() != nil {
				if failures == 0 {
					return retry.Permanent(&interruptedError{err: ctx.Err()})
				}
				return retry.Permanent(fmt.Errorf("get %s: %w", req.URL, err))
			}
			failures++
			f.log.DebugObj("fetch attempt failed", "fetch_attempt", map[string]any{
				"url":     req.URL,
				"attempt": attempt,
				"error":   err.Error(),
			})
			return fmt.Errorf("get %s: %w", req.URL, err)
		}

		code := r.StatusCode()
		switch {
		case code == http.StatusTooManyRequests && req.RateLimitKey != "":
			if f.guard != nil {
				f.guard.Trip(req.RateLimitKey)
			}
			return retry.Permanent(ErrRateLimited)
		case code >= http.StatusInternalServerError:
			failures++
			return &StatusError{Code: code, Snippet: responseSnippet(r.Body())}
		case code >= http.StatusBadRequest:
			return retry.Permanent(&StatusError{Code: code, Snippet: responseSnippet(r.Body())})
		}
		resp = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// excusedError wraps outcomes that say nothing about a source's health.
type excusedError struct{ error }

// interruptedError means the caller's context ended before any attempt
// failed on its own. An attempt that hit its own timeout first is a real
// failure even if the caller gives up during the retries that follow.
type interruptedError struct{ err error }

func (e *interruptedError) Error() string { return e.err.Error() }
func (e *interruptedError) Unwrap() error { return e.err }

func (f *Fetcher) breakerFor(name string) *gobreaker.CircuitBreaker {
	if f.breakerThreshold <= 0 {
		return nil
	}
	key := strings.ToLower(strings.TrimSpace(name))

	f.breakersMu.Lock()
	defer f.breakersMu.Unlock()

	if cb, ok := f.breakers[key]; ok {
		return cb
	}
	threshold := uint32(f.breakerThreshold)
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Timeout:     f.breakerCooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		IsSuccessful: func(err error) bool {
			var excused excusedError
			return err == nil || errors.As(err, &excused)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			f.log.WarnObj("source breaker state changed", "breaker_state", map[string]any{
				"source": name,
				"from":   from.String(),
				"to":     to.String(),
			})
		},
	})
	f.breakers[key] = cb
	return cb
}

func responseSnippet(body []byte) string {
	const maxLen = 512
	s := strings.TrimSpace(string(body))
	if len(s) > maxLen {
		return s[:maxLen] + "..."
	}
	if s == "" {
		return "<empty>"
	}
	return s
}
