// Package engine builds the ranked health-news feed. A build fans out one
// task per enabled source plus the search API, waits for them up to a hard
// deadline, then runs the classify, rank and enrich stages and caches the
// result.
package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/samvad-hq/samvad-health-news/internal/cache"
	"github.com/samvad-hq/samvad-health-news/internal/classify"
	"github.com/samvad-hq/samvad-health-news/internal/domain"
	"github.com/samvad-hq/samvad-health-news/internal/feedparser"
	"github.com/samvad-hq/samvad-health-news/internal/logger"
	"github.com/samvad-hq/samvad-health-news/internal/rank"
	"golang.org/x/sync/singleflight"
)

// ErrNoSources is returned when a build has nothing to fetch from.
var ErrNoSources = errors.New("no sources configured")

const (
	DefaultDeadline          = 10 * time.Second
	DefaultMaxSources        = 10
	DefaultMaxItemsPerSource = 10

	buildKey = "health-news"
)

// SourceLister yields the sources a build should fetch.
type SourceLister interface {
	Enabled(limit int) []domain.SourceConfig
}

// FeedFetcher downloads the raw feed for a source.
type FeedFetcher interface {
	FetchSource(ctx context.Context, cfg domain.SourceConfig) ([]byte, error)
}

// FeedParser turns a raw feed into items stamped with the source metadata.
type FeedParser interface {
	ParseSource(raw []byte, src domain.SourceConfig) []domain.NewsItem
}

// APISource is a search-API adapter producing items directly.
type APISource interface {
	Name() string
	Fetch(ctx context.Context) ([]domain.NewsItem, error)
}

// ImageEnricher fills missing images on a ranked list.
type ImageEnricher interface {
	Enrich(ctx context.Context, items []domain.NewsItem) []domain.NewsItem
}

// Deps are the collaborators of an Engine. Sources and Fetcher are required.
type Deps struct {
	Sources  SourceLister
	Fetcher  FeedFetcher
	Parser   FeedParser
	API      APISource
	Enricher ImageEnricher
	Cache    *cache.Cache
}

// Options tunes a build.
type Options struct {
	MaxSources        int
	MaxItemsPerSource int
	// Deadline is the hard cutoff for the fetch fan-out.
	Deadline time.Duration
	Logger   logger.Logger
	Now      func() time.Time
}

// Engine serves GetHealthNews. It is safe for concurrent use; concurrent
// cache misses share a single build.
type Engine struct {
	sources  SourceLister
	fetcher  FeedFetcher
	parser   FeedParser
	api      APISource
	enricher ImageEnricher
	cache    *cache.Cache
	opts     Options
	log      logger.Logger
	group    singleflight.Group
}

// New wires an Engine from its collaborators.
func New(deps Deps, opts Options) (*Engine, error) {
	if deps.Sources == nil {
		return nil, fmt.Errorf("engine: source lister is required")
	}
	if deps.Fetcher == nil {
		return nil, fmt.Errorf("engine: feed fetcher is required")
	}
	if opts.MaxSources <= 0 {
		opts.MaxSources = DefaultMaxSources
	}
	if opts.MaxItemsPerSource <= 0 {
		opts.MaxItemsPerSource = DefaultMaxItemsPerSource
	}
	if opts.Deadline <= 0 {
		opts.Deadline = DefaultDeadline
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if deps.Parser == nil {
		deps.Parser = &feedparser.Parser{Now: opts.Now}
	}
	if deps.Cache == nil {
		deps.Cache = cache.New(cache.DefaultTTL, cache.WithClock(opts.Now))
	}

	return &Engine{
		sources:  deps.Sources,
		fetcher:  deps.Fetcher,
		parser:   deps.Parser,
		api:      deps.API,
		enricher: deps.Enricher,
		cache:    deps.Cache,
		opts:     opts,
		log:      logger.OrNop(opts.Logger),
	}, nil
}

// GetHealthNews returns the ranked feed, from cache when it is fresh.
// Individual source failures never surface here; the only build error is
// ErrNoSources. A cancelled ctx abandons the wait, not the build.
func (e *Engine) GetHealthNews(ctx context.Context) ([]domain.NewsItem, error) {
	snap, err := e.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return snap.Items, nil
}

// Snapshot is GetHealthNews with the build time attached.
func (e *Engine) Snapshot(ctx context.Context) (cache.Snapshot, error) {
	if snap, ok := e.cache.Get(); ok {
		e.log.DebugObj("serving cached feed", "cache_hit", map[string]any{
			"items":    len(snap.Items),
			"built_at": snap.BuiltAt,
		})
		return snap, nil
	}

	// The build must outlive any single waiter, so it runs detached from ctx.
	buildCtx := context.WithoutCancel(ctx)
	ch := e.group.DoChan(buildKey, func() (interface{}, error) {
		if snap, ok := e.cache.Get(); ok {
			return snap, nil
		}
		snap, err := e.build(buildCtx)
		if err != nil {
			return nil, err
		}
		e.cache.Put(snap)
		return snap, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return cache.Snapshot{}, res.Err
		}
		snap := res.Val.(cache.Snapshot)
		items := make([]domain.NewsItem, len(snap.Items))
		copy(items, snap.Items)
		return cache.Snapshot{Items: items, BuiltAt: snap.BuiltAt}, nil
	case <-ctx.Done():
		return cache.Snapshot{}, ctx.Err()
	}
}

// Invalidate forces the next call to rebuild.
func (e *Engine) Invalidate() { e.cache.Invalidate() }

func (e *Engine) build(ctx context.Context) (cache.Snapshot, error) {
	started := e.opts.Now()

	tasks := e.tasks()
	if len(tasks) == 0 {
		return cache.Snapshot{}, ErrNoSources
	}

	raw, stats := e.fanOut(ctx, tasks)
	items := classify.Classify(classify.Filter(raw))
	items = rank.DedupAndSort(items)
	if e.enricher != nil {
		items = e.enricher.Enrich(ctx, items)
	}

	e.log.InfoObj("health feed built", "build_result", map[string]any{
		"tasks":      len(tasks),
		"succeeded":  stats.succeeded,
		"failed":     stats.failed,
		"abandoned":  stats.abandoned,
		"fetched":    len(raw),
		"items":      len(items),
		"elapsed_ms": e.opts.Now().Sub(started).Milliseconds(),
	})
	return cache.Snapshot{Items: items, BuiltAt: e.opts.Now()}, nil
}
