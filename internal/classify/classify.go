// Package classify decides which items are health news and tags them with a
// category and a priority. Every function here is a pure function of the
// item's title and description.
package classify

import (
	"strings"

	"github.com/samvad-hq/samvad-health-news/internal/domain"
)

// IsRelevant reports whether the item mentions any health, medical or
// lifestyle term in English or Sinhala. Matching is substring containment
// over the case-folded title and description.
func IsRelevant(item domain.NewsItem) bool {
	if strings.TrimSpace(item.Title) == "" {
		return false
	}
	text := content(item)
	return containsAny(text, englishTerms) ||
		containsAny(text, sinhalaTerms) ||
		containsAny(text, lifestyleTerms)
}

// Filter keeps the relevant items, preserving their order.
func Filter(items []domain.NewsItem) []domain.NewsItem {
	out := make([]domain.NewsItem, 0, len(items))
	for _, it := range items {
		if IsRelevant(it) {
			out = append(out, it)
		}
	}
	return out
}

// Categorize returns the first bucket whose vocabulary appears in the item,
// or CategoryHealth when none does.
func Categorize(item domain.NewsItem) domain.Category {
	text := content(item)
	for _, b := range categoryBuckets {
		if containsAny(text, b.terms) {
			return b.category
		}
	}
	return domain.CategoryHealth
}

// Score rates urgency: high for outbreak-style terms, medium for research
// and treatment news, low otherwise.
func Score(item domain.NewsItem) domain.Priority {
	text := content(item)
	switch {
	case containsAny(text, urgentTerms):
		return domain.PriorityHigh
	case containsAny(text, developmentTerms):
		return domain.PriorityMedium
	default:
		return domain.PriorityLow
	}
}

// Classify returns a copy of items with Category and Priority set. Labels an
// adapter already assigned are kept.
func Classify(items []domain.NewsItem) []domain.NewsItem {
	out := make([]domain.NewsItem, len(items))
	for i, it := range items {
		if it.Category == "" {
			it.Category = Categorize(it)
		}
		if it.Priority == "" {
			it.Priority = Score(it)
		}
		out[i] = it
	}
	return out
}

func content(item domain.NewsItem) string {
	return strings.ToLower(item.Title + " " + item.Description)
}

func containsAny(text string, terms []string) bool {
	for _, t := range terms {
		if strings.Contains(text, t) {
			return true
		}
	}
	return false
}
