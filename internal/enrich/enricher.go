// Package enrich fills in missing thumbnails by scraping article pages.
package enrich

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/samvad-hq/samvad-health-news/internal/domain"
	"github.com/samvad-hq/samvad-health-news/internal/logger"
	"github.com/samvad-hq/samvad-health-news/pkg/httpclient"
	"golang.org/x/sync/errgroup"
)

const (
	maxHTMLBodyBytes = 1 << 20 // 1 MiB

	DefaultMaxItems = 5
	DefaultTimeout  = 2 * time.Second
	DefaultBudget   = 3 * time.Second
	DefaultWorkers  = 5
)

// Options configures an Enricher. Zero values take the defaults above.
type Options struct {
	MaxItems int
	// Timeout bounds a single page fetch.
	Timeout time.Duration
	// Budget bounds the whole enrichment pass.
	Budget  time.Duration
	Workers int
	Headers map[string]string
	Logger  logger.Logger
}

// Enricher fetches article pages for items without an image.
type Enricher struct {
	client httpclient.Client
	opts   Options
	log    logger.Logger
}

// New constructs an Enricher. A nil client gets a resty client sized to the
// per-page timeout.
func New(client httpclient.Client, opts Options) *Enricher {
	if opts.MaxItems <= 0 {
		opts.MaxItems = DefaultMaxItems
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.Budget <= 0 {
		opts.Budget = DefaultBudget
	}
	if opts.Workers <= 0 {
		opts.Workers = DefaultWorkers
	}
	if client == nil {
		client = httpclient.NewRestyClient(opts.Timeout)
	}
	return &Enricher{client: client, opts: opts, log: logger.OrNop(opts.Logger)}
}

type found struct {
	idx   int
	image string
}

// Enrich returns a copy of items where up to MaxItems of the first
// image-less items have ImageURL filled from their article page. Failures
// leave the item untouched. Whatever has not finished when the budget runs
// out is returned as-is.
func (e *Enricher) Enrich(ctx context.Context, items []domain.NewsItem) []domain.NewsItem {
	out := append([]domain.NewsItem(nil), items...)

	var targets []int
	for i, it := range out {
		if len(targets) == e.opts.MaxItems {
			break
		}
		if it.ImageURL == "" && strings.HasPrefix(it.Link, "http") {
			targets = append(targets, i)
		}
	}
	if len(targets) == 0 {
		return out
	}

	links := make([]string, len(targets))
	for n, idx := range targets {
		links[n] = out[idx].Link
	}

	ctx, cancel := context.WithTimeout(ctx, e.opts.Budget)
	defer cancel()

	results := make(chan found, len(targets))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.opts.Workers)

	go func() {
		for n, idx := range targets {
			link := links[n]
			g.Go(func() error {
				image, err := e.imageFor(gctx, link)
				if err != nil {
					e.log.DebugObj("image enrichment skipped", "enrich_error", map[string]any{
						"url":   link,
						"error": err.Error(),
					})
					return nil
				}
				if image != "" {
					results <- found{idx: idx, image: image}
				}
				return nil
			})
		}
		_ = g.Wait()
		close(results)
	}()

	filled := 0
	for {
		select {
		case r, ok := <-results:
			if !ok {
				e.logDone(len(targets), filled, false)
				return out
			}
			out[r.idx].ImageURL = r.image
			filled++
		case <-ctx.Done():
			e.logDone(len(targets), filled, true)
			return out
		}
	}
}

func (e *Enricher) logDone(attempted, filled int, timedOut bool) {
	e.log.DebugObj("image enrichment finished", "enrich_result", map[string]any{
		"attempted": attempted,
		"filled":    filled,
		"timed_out": timedOut,
	})
}

func (e *Enricher) imageFor(ctx context.Context, link string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, e.opts.Timeout)
	defer cancel()

	resp, err := e.client.Get(ctx, link, e.opts.Headers)
	if err != nil {
		return "", fmt.Errorf("http fetch: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return "", fmt.Errorf("status %d", resp.StatusCode())
	}

	body := resp.Body()
	if len(body) > maxHTMLBodyBytes {
		body = body[:maxHTMLBodyBytes]
	}
	return ExtractImage(body, link), nil
}

// ExtractImage picks the best thumbnail candidate from an HTML page: the
// og:image tag, the twitter:image tag, a "featured" <img>, then the first
// <img> pointing at a jpg, png or gif. Relative URLs are resolved against
// pageURL. It returns "" when nothing usable is found.
func ExtractImage(body []byte, pageURL string) string {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return ""
	}

	attr := func(sel, name string) string {
		var v string
		doc.Find(sel).EachWithBreak(func(_ int, s *goquery.Selection) bool {
			if val, ok := s.Attr(name); ok && strings.TrimSpace(val) != "" {
				v = strings.TrimSpace(val)
				return false
			}
			return true
		})
		return v
	}

	candidates := []string{
		attr(`meta[property="og:image"]`, "content"),
		attr(`meta[name="twitter:image"], meta[property="twitter:image"]`, "content"),
		attr(`img[class*="featured"], img[id*="featured"]`, "src"),
	}
	for _, c := range candidates {
		if abs := resolveURL(c, pageURL); abs != "" {
			return abs
		}
	}

	var picked string
	doc.Find("img[src]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		src, _ := s.Attr("src")
		if !hasImageExt(src) {
			return true
		}
		if abs := resolveURL(src, pageURL); abs != "" {
			picked = abs
			return false
		}
		return true
	})
	return picked
}

func hasImageExt(src string) bool {
	u, err := url.Parse(strings.TrimSpace(src))
	if err != nil {
		return false
	}
	switch strings.ToLower(path.Ext(u.Path)) {
	case ".jpg", ".jpeg", ".png", ".gif":
		return true
	}
	return false
}

// resolveURL makes raw absolute relative to base. Non-http results are dropped.
func resolveURL(raw, base string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	ref, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	if !ref.IsAbs() {
		b, err := url.Parse(base)
		if err != nil {
			return ""
		}
		ref = b.ResolveReference(ref)
	}
	if ref.Scheme != "http" && ref.Scheme != "https" {
		return ""
	}
	return ref.String()
}
