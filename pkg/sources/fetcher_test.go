package sources

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/samvad-hq/samvad-health-news/internal/domain"
	"github.com/samvad-hq/samvad-health-news/internal/retry"
	"github.com/samvad-hq/samvad-health-news/pkg/httpclient"
	"github.com/sony/gobreaker"
)

var fastRetry = retry.Policy{MaxRetries: 2, BaseDelay: time.Millisecond}

func feedSource() domain.SourceConfig {
	return domain.SourceConfig{Name: "Feed", FeedURL: "https://feed.example/rss", Language: domain.LanguageEnglish}
}

func TestFetchSourceRetriesServerErrors(t *testing.T) {
	client := &scriptedClient{t: t, replies: []scriptedReply{
		{status: http.StatusBadGateway, body: "down"},
		{err: errors.New("connection reset")},
		{status: http.StatusOK, body: "<rss/>"},
	}}
	f := NewFetcher(client, FetcherOptions{Retry: fastRetry})

	body, err := f.FetchSource(context.Background(), feedSource())
	if err != nil {
		t.Fatalf("FetchSource: %v", err)
	}
	if string(body) != "<rss/>" {
		t.Fatalf("body = %q", body)
	}
	if client.calls != 3 {
		t.Fatalf("expected 3 attempts, got %d", client.calls)
	}
	if got := client.headers[0]["Accept"]; got != DefaultAccept {
		t.Fatalf("Accept header = %q", got)
	}
}

func TestFetchSourceDoesNotRetryClientErrors(t *testing.T) {
	client := &scriptedClient{t: t, replies: []scriptedReply{{status: http.StatusNotFound, body: "nope"}}}
	f := NewFetcher(client, FetcherOptions{Retry: fastRetry})

	_, err := f.FetchSource(context.Background(), feedSource())
	var statusErr *StatusError
	if !errors.As(err, &statusErr) || statusErr.Code != http.StatusNotFound {
		t.Fatalf("expected 404 StatusError, got %v", err)
	}
	if client.calls != 1 {
		t.Fatalf("expected a single attempt, got %d", client.calls)
	}
}

func TestFetchSourceGivesUpAfterRetryBudget(t *testing.T) {
	client := &scriptedClient{t: t, replies: []scriptedReply{{status: http.StatusServiceUnavailable}}}
	f := NewFetcher(client, FetcherOptions{Retry: fastRetry})

	if _, err := f.FetchSource(context.Background(), feedSource()); err == nil {
		t.Fatalf("expected error after retries")
	}
	if client.calls != 3 {
		t.Fatalf("expected 1 attempt + 2 retries, got %d", client.calls)
	}
}

func TestFetchSourceWithoutFeedURL(t *testing.T) {
	f := NewFetcher(&scriptedClient{t: t}, FetcherOptions{})
	if _, err := f.FetchSource(context.Background(), domain.SourceConfig{Name: "CNN Health"}); !errors.Is(err, ErrNoFeedURL) {
		t.Fatalf("expected ErrNoFeedURL, got %v", err)
	}
}

func TestDoTripsGuardOn429(t *testing.T) {
	client := &scriptedClient{t: t, replies: []scriptedReply{{status: http.StatusTooManyRequests}}}
	guard := newRecordingGuard()
	f := NewFetcher(client, FetcherOptions{Retry: fastRetry, Guard: guard})

	_, err := f.Do(context.Background(), Request{URL: "https://api.example", RateLimitKey: "k"})
	if !errors.Is(err, ErrRateLimited) {
		t.Fatalf("expected ErrRateLimited, got %v", err)
	}
	if !guard.IsTripped("k") || client.calls != 1 {
		t.Fatalf("expected one call and a trip, calls=%d trips=%d", client.calls, guard.trips)
	}
}

func TestBreakerOpensAfterConsecutiveFailures(t *testing.T) {
	client := &scriptedClient{t: t, replies: []scriptedReply{{status: http.StatusGone}}}
	f := NewFetcher(client, FetcherOptions{
		Retry:            retry.Policy{},
		BreakerThreshold: 2,
		BreakerCooldown:  time.Hour,
	})

	for i := 0; i < 2; i++ {
		if _, err := f.FetchSource(context.Background(), feedSource()); err == nil {
			t.Fatalf("attempt %d: expected failure", i)
		}
	}
	_, err := f.FetchSource(context.Background(), feedSource())
	if !errors.Is(err, gobreaker.ErrOpenState) {
		t.Fatalf("expected open breaker, got %v", err)
	}
	if client.calls != 2 {
		t.Fatalf("open breaker must short-circuit the request, calls=%d", client.calls)
	}
}

func TestBreakerIgnoresCancellation(t *testing.T) {
	client := &scriptedClient{t: t, replies: []scriptedReply{{err: errors.New("canceled")}}}
	f := NewFetcher(client, FetcherOptions{BreakerThreshold: 1, BreakerCooldown: time.Hour})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	for i := 0; i < 3; i++ {
		_, err := f.FetchSource(ctx, feedSource())
		if err == nil || strings.Contains(err.Error(), "skipped") {
			t.Fatalf("cancelled fetch must not trip the breaker, got %v", err)
		}
	}
}

// hangingClient never answers; every call ends when its context does.
type hangingClient struct {
	calls atomic.Int32
}

func (h *hangingClient) Get(ctx context.Context, _ string, _ map[string]string) (httpclient.Response, error) {
	h.calls.Add(1)
	<-ctx.Done()
	return nil, ctx.Err()
}

func TestBreakerOpensForSourceThatAlwaysHangs(t *testing.T) {
	client := &hangingClient{}
	f := NewFetcher(client, FetcherOptions{
		Timeout:          40 * time.Millisecond,
		Retry:            retry.Policy{MaxRetries: 2, BaseDelay: 5 * time.Millisecond},
		BreakerThreshold: 2,
		BreakerCooldown:  time.Hour,
	})

	cycle := func() error {
		ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
		defer cancel()
		_, err := f.FetchSource(ctx, feedSource())
		return err
	}

	for i := 0; i < 2; i++ {
		if err := cycle(); err == nil {
			t.Fatalf("cycle %d: expected failure", i)
		}
	}
	hits := client.calls.Load()
	for i := 2; i < 5; i++ {
		if err := cycle(); !errors.Is(err, gobreaker.ErrOpenState) {
			t.Fatalf("cycle %d: expected open breaker, got %v", i, err)
		}
	}
	if got := client.calls.Load(); got != hits {
		t.Fatalf("open breaker must skip the source, calls went from %d to %d", hits, got)
	}
}

func TestDoReportsInterruptionOnlyBeforeAnyFailure(t *testing.T) {
	f := NewFetcher(&hangingClient{}, FetcherOptions{Timeout: time.Second, Retry: fastRetry})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := f.Do(ctx, Request{URL: "https://feed.example/rss"})
	var interrupted *interruptedError
	if !errors.As(err, &interrupted) || !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected interruption wrapping the deadline, got %v", err)
	}

	f = NewFetcher(&hangingClient{}, FetcherOptions{Timeout: 10 * time.Millisecond, Retry: retry.Policy{MaxRetries: 5, BaseDelay: 5 * time.Millisecond}})
	ctx2, cancel2 := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel2()
	_, err = f.Do(ctx2, Request{URL: "https://feed.example/rss"})
	if err == nil || errors.As(err, &interrupted) {
		t.Fatalf("attempt timeouts must surface as failures, got %v", err)
	}
}
