// Package rank removes repeated stories and orders the feed for display.
package rank

import (
	"sort"

	"github.com/samvad-hq/samvad-health-news/internal/domain"
)

// Dedup drops items whose DedupKey was already seen. The first occurrence
// wins and the relative order of survivors is preserved.
func Dedup(items []domain.NewsItem) []domain.NewsItem {
	seen := make(map[string]struct{}, len(items))
	out := make([]domain.NewsItem, 0, len(items))
	for _, it := range items {
		key := it.DedupKey()
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, it)
	}
	return out
}

// Sort orders items in place: local before global, then by priority, then
// newest first. Zero publish dates sort after every real date.
func Sort(items []domain.NewsItem) {
	sort.SliceStable(items, func(i, j int) bool {
		return less(items[i], items[j])
	})
}

// DedupAndSort returns a deduplicated, ranked copy of items.
func DedupAndSort(items []domain.NewsItem) []domain.NewsItem {
	out := Dedup(items)
	Sort(out)
	return out
}

func less(a, b domain.NewsItem) bool {
	if a.IsLocal != b.IsLocal {
		return a.IsLocal
	}
	if ra, rb := a.Priority.Rank(), b.Priority.Rank(); ra != rb {
		return ra > rb
	}
	// zero time is the oldest possible value, so After handles it
	return a.PublishedAt.After(b.PublishedAt)
}
