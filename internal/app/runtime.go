package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/samvad-hq/samvad-health-news/internal/cache"
	"github.com/samvad-hq/samvad-health-news/internal/config"
	"github.com/samvad-hq/samvad-health-news/internal/enrich"
	"github.com/samvad-hq/samvad-health-news/internal/engine"
	"github.com/samvad-hq/samvad-health-news/internal/feedparser"
	"github.com/samvad-hq/samvad-health-news/internal/logger"
	"github.com/samvad-hq/samvad-health-news/internal/ratelimit"
	"github.com/samvad-hq/samvad-health-news/internal/retry"
	"github.com/samvad-hq/samvad-health-news/internal/storage"
	"github.com/samvad-hq/samvad-health-news/pkg/httpclient"
	"github.com/samvad-hq/samvad-health-news/pkg/publishers"
	"github.com/samvad-hq/samvad-health-news/pkg/sources"
)

// Runtime owns every component of the health-news service. It serves
// one-shot builds and the refresh loop that publishes snapshots.
type Runtime struct {
	cfg      *config.Config
	registry *sources.Registry
	engine   *engine.Engine
	fanout   *publishers.Fanout
	store    storage.Store
	interval time.Duration
	log      logger.Logger

	lastPublished time.Time
}

// NewRuntime builds a runtime from config.
func NewRuntime(ctx context.Context, cfg *config.Config, log logger.Logger) (*Runtime, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	log = logger.OrNop(log)
	if ctx == nil {
		ctx = context.Background()
	}

	registry, err := loadSources(cfg.SourcesFile)
	if err != nil {
		return nil, err
	}
	log.InfoObj("sources registry loaded", "sources_meta", map[string]any{
		"file":    cfg.SourcesFile,
		"count":   len(registry.All()),
		"enabled": len(registry.Enabled(0)),
	})

	store, err := storage.NewStore(cfg.StorageType, cfg.StoragePath, storage.Options{
		Retention:       cfg.StorageRetention,
		CleanupInterval: cfg.StorageCleanupInterval,
	})
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}
	log.InfoObj("storage initialized", "storage_config", map[string]any{
		"type":                     cfg.StorageType,
		"path":                     cfg.StoragePath,
		"retention_seconds":        int(cfg.StorageRetention.Seconds()),
		"cleanup_interval_seconds": int(cfg.StorageCleanupInterval.Seconds()),
	})

	rt := &Runtime{
		cfg:      cfg,
		registry: registry,
		store:    store,
		interval: cfg.RefreshInterval,
		log:      log,
	}

	guard := ratelimit.New(store, ratelimit.Options{
		Cooldown: cfg.RateLimitCooldown,
		Logger:   log,
	})
	fetcher := sources.NewFetcher(nil, sources.FetcherOptions{
		Timeout:          cfg.FeedTimeout,
		Retry:            retry.Policy{MaxRetries: cfg.MaxRetries, BaseDelay: cfg.RetryBaseDelay},
		Guard:            guard,
		BreakerThreshold: cfg.BreakerFailureThreshold,
		BreakerCooldown:  cfg.BreakerCooldown,
		Logger:           log,
	})

	deps := engine.Deps{
		Sources: registry,
		Fetcher: fetcher,
		Parser:  &feedparser.Parser{},
		Enricher: enrich.New(httpclient.NewRestyClient(cfg.EnrichTimeout), enrich.Options{
			MaxItems: cfg.EnrichMaxItems,
			Timeout:  cfg.EnrichTimeout,
			Budget:   cfg.EnrichBudget,
			Workers:  cfg.EnrichWorkers,
			Logger:   log,
		}),
		Cache: cache.New(cfg.CacheTTL),
	}
	if strings.TrimSpace(cfg.NewsAPIKey) != "" {
		deps.API = sources.NewNewsAPI(fetcher, guard, sources.NewsAPIOptions{
			BaseURL:  cfg.NewsAPIBaseURL,
			APIKey:   cfg.NewsAPIKey,
			Query:    cfg.NewsAPIQuery,
			PageSize: cfg.NewsAPIPageSize,
			Timeout:  cfg.APITimeout,
			Logger:   log,
		})
	} else {
		log.InfoObj("news api key not set; api adapter disabled", "newsapi_state", map[string]any{
			"base_url": cfg.NewsAPIBaseURL,
		})
	}

	eng, err := engine.New(deps, engine.Options{
		MaxSources:        cfg.MaxSources,
		MaxItemsPerSource: cfg.MaxItemsPerSource,
		Deadline:          cfg.GlobalDeadline,
		Logger:            log,
	})
	if err != nil {
		rt.closeStore()
		return nil, fmt.Errorf("init engine: %w", err)
	}
	rt.engine = eng

	fanout, err := buildFanout(ctx, cfg.PublishersFile, log)
	if err != nil {
		rt.closeStore()
		return nil, err
	}
	rt.fanout = fanout

	return rt, nil
}

func loadSources(path string) (*sources.Registry, error) {
	if strings.TrimSpace(path) == "" {
		reg, err := sources.NewRegistry(sources.DefaultSources())
		if err != nil {
			return nil, fmt.Errorf("load default sources: %w", err)
		}
		return reg, nil
	}
	reg, err := sources.LoadRegistry(path)
	if err != nil {
		return nil, fmt.Errorf("load sources registry: %w", err)
	}
	return reg, nil
}

// buildFanout returns an empty fanout when no publishers file is configured.
func buildFanout(ctx context.Context, path string, log logger.Logger) (*publishers.Fanout, error) {
	if strings.TrimSpace(path) == "" {
		return publishers.NewFanout(nil), nil
	}

	publisherReg, err := publishers.LoadRegistry(path)
	if err != nil {
		return nil, fmt.Errorf("load publishers registry: %w", err)
	}
	enabled := publisherReg.Enabled()
	pubClients, err := publishers.BuildAll(ctx, publishers.DefaultRegistry(), enabled, log)
	if err != nil {
		return nil, fmt.Errorf("build publishers: %w", err)
	}

	summaries := make([]map[string]string, 0, len(enabled))
	for _, pubCfg := range enabled {
		summaries = append(summaries, map[string]string{
			"id":   pubCfg.ID,
			"type": pubCfg.Type,
		})
	}
	log.InfoObj("publishers registry loaded", "publishers_meta", map[string]any{
		"count":      len(summaries),
		"publishers": summaries,
	})
	return publishers.NewFanout(pubClients), nil
}

// Once returns the current snapshot, building it if the cache is cold.
func (r *Runtime) Once(ctx context.Context) (cache.Snapshot, error) {
	if r == nil || r.engine == nil {
		return cache.Snapshot{}, fmt.Errorf("runtime is not initialized")
	}
	return r.engine.Snapshot(ctx)
}

// Run refreshes the feed every interval and publishes each new snapshot
// until ctx is cancelled.
func (r *Runtime) Run(ctx context.Context) error {
	if r == nil || r.engine == nil {
		return fmt.Errorf("runtime is not initialized")
	}

	r.log.InfoObj("refresh loop starting", "runtime_state", map[string]any{
		"sources_count":    len(r.registry.Enabled(r.cfg.MaxSources)),
		"publishers_count": r.fanout.Size(),
		"refresh_interval": r.interval.String(),
	})

	if err := r.refresh(ctx); err != nil {
		if errors.Is(err, engine.ErrNoSources) {
			return err
		}
		r.log.ErrorObj("initial refresh failed", "error", err.Error())
	}

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.log.InfoObj("refresh loop exiting", "reason", ctx.Err().Error())
			return nil
		case <-ticker.C:
			if err := r.refresh(ctx); err != nil {
				r.log.ErrorObj("scheduled refresh failed", "error", err.Error())
			}
		}
	}
}

// refresh rebuilds the snapshot and publishes it. The cache is dropped first
// so every tick yields a fresh build regardless of the cache TTL; callers of
// Once in between still share the cached copy.
func (r *Runtime) refresh(ctx context.Context) error {
	start := time.Now()
	r.engine.Invalidate()
	snap, err := r.engine.Snapshot(ctx)
	if err != nil {
		return err
	}
	r.log.InfoObj("refresh completed", "refresh_meta", map[string]any{
		"items":      len(snap.Items),
		"built_at":   snap.BuiltAt,
		"elapsed_ms": time.Since(start).Milliseconds(),
	})

	if r.fanout.Size() == 0 || !snap.BuiltAt.After(r.lastPublished) {
		return nil
	}
	evt := publishers.NewEvent(snap.Items, snap.BuiltAt)
	sent, err := r.fanout.Publish(ctx, evt)
	if err != nil {
		r.log.WarnObj("snapshot publish incomplete", "publish_error", map[string]any{
			"event_id":  evt.ID,
			"delivered": sent,
			"error":     err.Error(),
		})
	} else {
		r.log.InfoObj("snapshot published", "publish_meta", map[string]any{
			"event_id":   evt.ID,
			"delivered":  sent,
			"item_count": evt.ItemCount,
		})
	}
	r.lastPublished = snap.BuiltAt
	return nil
}

// Close releases publishers and the storage backend.
func (r *Runtime) Close() error {
	if r == nil {
		return nil
	}
	var errs []error
	if err := r.fanout.Close(); err != nil {
		errs = append(errs, err)
	}
	if r.store != nil {
		if err := r.store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close storage: %w", err))
		}
		r.store = nil
	}
	return errors.Join(errs...)
}

func (r *Runtime) closeStore() {
	if r.store == nil {
		return
	}
	if err := r.store.Close(); err != nil {
		r.log.ErrorObj("storage close failed", "error", err.Error())
	}
	r.store = nil
}
