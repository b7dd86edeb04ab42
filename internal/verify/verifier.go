// Package verify probes configured feed URLs and reports which ones still
// serve a feed.
package verify

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/samvad-hq/samvad-health-news/internal/domain"
	"github.com/samvad-hq/samvad-health-news/internal/feedparser"
	"github.com/samvad-hq/samvad-health-news/internal/logger"
	"github.com/samvad-hq/samvad-health-news/pkg/httpclient"
	"github.com/samvad-hq/samvad-health-news/pkg/sources"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// Status is the outcome of probing one URL.
type Status string

const (
	StatusSuccess Status = "success"
	StatusInvalid Status = "invalid"
	StatusFailed  Status = "failed"
)

const (
	DefaultTimeout       = 8 * time.Second
	DefaultMaxRedirects  = 5
	DefaultConcurrency   = 3
	DefaultRatePerSecond = 3.0

	// VerifyAccept widens the feed Accept header so servers that negotiate
	// Atom or fall back to */* still answer.
	VerifyAccept = "application/rss+xml, application/xml, text/xml, application/atom+xml, */*"
)

var feedIndicators = []string{"<rss", "<feed", "<channel", "<?xml", "xmlns", "<item", "<entry"}

// Result describes one probed URL.
type Result struct {
	Name        string        `json:"name"`
	URL         string        `json:"url"`
	Alternate   bool          `json:"alternate"`
	Status      Status        `json:"status"`
	StatusCode  int           `json:"status_code,omitempty"`
	Error       string        `json:"error,omitempty"`
	ItemCount   int           `json:"item_count"`
	ContentType string        `json:"content_type,omitempty"`
	Elapsed     time.Duration `json:"elapsed"`
}

// Options configures a Verifier.
type Options struct {
	Timeout       time.Duration
	Concurrency   int
	RatePerSecond float64
	Logger        logger.Logger
}

// Verifier probes feed URLs with bounded concurrency and a request pace.
type Verifier struct {
	client  httpclient.Client
	opts    Options
	limiter *rate.Limiter
	log     logger.Logger
}

// New builds a Verifier. A nil client gets a resty client that follows at
// most DefaultMaxRedirects redirects.
func New(client httpclient.Client, opts Options) *Verifier {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = DefaultConcurrency
	}
	if opts.RatePerSecond <= 0 {
		opts.RatePerSecond = DefaultRatePerSecond
	}
	if client == nil {
		client = httpclient.NewRestyClientWithRedirects(opts.Timeout, DefaultMaxRedirects)
	}
	return &Verifier{
		client:  client,
		opts:    opts,
		limiter: rate.NewLimiter(rate.Limit(opts.RatePerSecond), opts.Concurrency),
		log:     logger.OrNop(opts.Logger),
	}
}

// Verify probes a single URL with the default feed headers.
func (v *Verifier) Verify(ctx context.Context, name, url string) Result {
	return v.probe(ctx, name, url, probeHeaders(domain.SourceConfig{}), false)
}

// VerifyAll probes every source's feed URL followed by its alternates.
// Results come back in that order regardless of completion order.
func (v *Verifier) VerifyAll(ctx context.Context, srcs []domain.SourceConfig) []Result {
	type target struct {
		name      string
		url       string
		headers   map[string]string
		alternate bool
	}
	var targets []target
	for _, s := range srcs {
		h := probeHeaders(s)
		if s.HasFeed() {
			targets = append(targets, target{s.Name, s.FeedURL, h, false})
		}
		for _, alt := range s.Alternates {
			targets = append(targets, target{s.Name, alt, h, true})
		}
	}

	results := make([]Result, len(targets))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(v.opts.Concurrency)
	for i, t := range targets {
		g.Go(func() error {
			if err := v.limiter.Wait(gctx); err != nil {
				results[i] = Result{Name: t.name, URL: t.url, Alternate: t.alternate, Status: StatusFailed, Error: err.Error()}
				return nil
			}
			results[i] = v.probe(gctx, t.name, t.url, t.headers, t.alternate)
			return nil
		})
	}
	_ = g.Wait()
	return results
}

func (v *Verifier) probe(ctx context.Context, name, url string, headers map[string]string, alternate bool) Result {
	res := Result{Name: name, URL: url, Alternate: alternate}
	start := time.Now()

	ctx, cancel := context.WithTimeout(ctx, v.opts.Timeout)
	defer cancel()

	resp, err := v.client.Get(ctx, url, headers)
	res.Elapsed = time.Since(start)
	if err != nil {
		res.Status = StatusFailed
		res.Error = err.Error()
		v.log.DebugObj("feed probe failed", "verify_error", map[string]any{
			"source": name,
			"url":    url,
			"error":  res.Error,
		})
		return res
	}

	res.StatusCode = resp.StatusCode()
	if h := resp.Header(); h != nil {
		res.ContentType = h.Get("Content-Type")
	}
	if res.StatusCode >= http.StatusBadRequest {
		res.Status = StatusFailed
		res.Error = fmt.Sprintf("HTTP %d", res.StatusCode)
		return res
	}

	body := resp.Body()
	if looksLikeFeed(body) {
		res.Status = StatusSuccess
	} else {
		res.Status = StatusInvalid
	}
	res.ItemCount = feedparser.CountItems(body)
	return res
}

func looksLikeFeed(body []byte) bool {
	s := strings.ToLower(strings.TrimSpace(string(body)))
	if s == "" {
		return false
	}
	for _, ind := range feedIndicators {
		if strings.Contains(s, ind) {
			return true
		}
	}
	return false
}

func probeHeaders(s domain.SourceConfig) map[string]string {
	h := sources.Headers(s)
	if sources.ConfigString(s, sources.ConfigAcceptKey, "") == "" {
		h["Accept"] = VerifyAccept
	}
	return h
}

// Tally counts results by status.
func Tally(results []Result) (success, failed, invalid int) {
	for _, r := range results {
		switch r.Status {
		case StatusSuccess:
			success++
		case StatusInvalid:
			invalid++
		default:
			failed++
		}
	}
	return success, failed, invalid
}
