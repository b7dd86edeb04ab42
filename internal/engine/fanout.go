package engine

import (
	"context"
	"errors"

	"github.com/samvad-hq/samvad-health-news/internal/domain"
	"github.com/samvad-hq/samvad-health-news/pkg/sources"
)

type task struct {
	name string
	run  func(ctx context.Context) ([]domain.NewsItem, error)
}

type taskResult struct {
	idx   int
	items []domain.NewsItem
	err   error
}

type fanOutStats struct {
	succeeded int
	failed    int
	abandoned int
}

func (e *Engine) tasks() []task {
	srcs := e.sources.Enabled(e.opts.MaxSources)
	out := make([]task, 0, len(srcs)+1)
	for _, src := range srcs {
		out = append(out, task{
			name: src.Name,
			run: func(ctx context.Context) ([]domain.NewsItem, error) {
				body, err := e.fetcher.FetchSource(ctx, src)
				if err != nil {
					return nil, err
				}
				return e.parser.ParseSource(body, src), nil
			},
		})
	}
	if e.api != nil {
		out = append(out, task{name: e.api.Name(), run: e.api.Fetch})
	}
	return out
}

// fanOut runs every task concurrently and collects what finishes before the
// deadline. Late results are dropped. Items are flattened in task order so
// completion order never leaks into the ranked output.
func (e *Engine) fanOut(parent context.Context, tasks []task) ([]domain.NewsItem, fanOutStats) {
	ctx, cancel := context.WithTimeout(parent, e.opts.Deadline)
	defer cancel()

	results := make(chan taskResult, len(tasks))
	for i, t := range tasks {
		go func() {
			items, err := t.run(ctx)
			results <- taskResult{idx: i, items: items, err: err}
		}()
	}

	var stats fanOutStats
	perTask := make([][]domain.NewsItem, len(tasks))
	done := make([]bool, len(tasks))
	pending := len(tasks)

collect:
	for pending > 0 {
		select {
		case r := <-results:
			if ctx.Err() != nil {
				break collect
			}
			pending--
			done[r.idx] = true
			if r.err != nil {
				stats.failed++
				e.logTaskError(tasks[r.idx].name, r.err)
				continue
			}
			stats.succeeded++
			items := r.items
			if len(items) > e.opts.MaxItemsPerSource {
				items = items[:e.opts.MaxItemsPerSource]
			}
			perTask[r.idx] = items
		case <-ctx.Done():
			break collect
		}
	}

	for i, ok := range done {
		if !ok {
			stats.abandoned++
			e.log.WarnObj("source abandoned at deadline", "source_timeout", map[string]any{
				"source":      tasks[i].name,
				"deadline_ms": e.opts.Deadline.Milliseconds(),
			})
		}
	}

	var flat []domain.NewsItem
	for _, items := range perTask {
		flat = append(flat, items...)
	}
	return flat, stats
}

func (e *Engine) logTaskError(name string, err error) {
	fields := map[string]any{"source": name, "error": err.Error()}
	if errors.Is(err, sources.ErrNoFeedURL) {
		e.log.DebugObj("source has nothing to fetch", "source_error", fields)
		return
	}
	e.log.WarnObj("source fetch failed", "source_error", fields)
}
