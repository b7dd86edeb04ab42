package domain

import (
	"strings"
	"time"
)

// Domain contains core models shared by the aggregation pipeline.

// Language tags the script/vocabulary of a source.
type Language string

const (
	LanguageEnglish Language = "en"
	LanguageSinhala Language = "si"
)

// Locality marks a source as regional ("local") or international ("global").
type Locality string

const (
	LocalityLocal  Locality = "local"
	LocalityGlobal Locality = "global"
)

// SourceKind records which adapter produced an item.
type SourceKind string

const (
	KindRSS     SourceKind = "rss"
	KindAPI     SourceKind = "api"
	KindSitemap SourceKind = "sitemap"
)

// Category is the topical bucket assigned by the classifier.
type Category string

const (
	CategoryFitness   Category = "fitness"
	CategoryNutrition Category = "nutrition"
	CategoryWellness  Category = "wellness"
	CategoryLifestyle Category = "lifestyle"
	CategoryMedical   Category = "medical"
	CategoryHealth    Category = "health"
)

// Priority is the urgency score assigned by the classifier.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// Rank orders priorities for sorting; unknown values rank with low.
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	default:
		return 1
	}
}

// NewsItem is the normalized record every adapter produces.
type NewsItem struct {
	Title       string     `json:"title"`
	Link        string     `json:"link"`
	Source      string     `json:"source"`
	PublishedAt time.Time  `json:"published_at"`
	Description string     `json:"description"`
	ImageURL    string     `json:"image_url,omitempty"`
	Language    Language   `json:"language"`
	Category    Category   `json:"category"`
	Priority    Priority   `json:"priority"`
	IsLocal     bool       `json:"is_local"`
	SourceKind  SourceKind `json:"source_kind"`
}

// DedupKey is the identity used to collapse repeated stories from one source.
func (n NewsItem) DedupKey() string {
	return strings.ToLower(strings.TrimSpace(n.Title)) + "|" + n.Source
}

// SourceConfig identifies a fetch target and the metadata stamped onto its items.
type SourceConfig struct {
	Name     string   `json:"name" yaml:"name"`
	BaseURL  string   `json:"base_url" yaml:"base_url"`
	FeedURL  string   `json:"feed_url" yaml:"feed_url"`
	Language Language `json:"language" yaml:"language"`
	Locality Locality `json:"locality" yaml:"locality"`
	Enabled  *bool    `json:"enabled" yaml:"enabled"`

	// RateLimitKey, when set, marks the endpoint as quota-limited: a 429
	// trips the guard under this key.
	RateLimitKey string            `json:"rate_limit_key,omitempty" yaml:"rate_limit_key,omitempty"`
	Headers      map[string]string `json:"headers,omitempty" yaml:"headers,omitempty"`
	Alternates   []string          `json:"alternates,omitempty" yaml:"alternates,omitempty"`
}

// EnabledValue returns the enabled flag defaulting to true.
func (s SourceConfig) EnabledValue() bool {
	if s.Enabled == nil {
		return true
	}
	return *s.Enabled
}

// IsLocal reports whether items from this source rank as local.
func (s SourceConfig) IsLocal() bool {
	return s.Locality == LocalityLocal
}

// HasFeed reports whether the source exposes a fetchable feed URL.
func (s SourceConfig) HasFeed() bool {
	return strings.TrimSpace(s.FeedURL) != ""
}
