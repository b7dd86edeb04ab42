// Package export renders a ranked feed for consumers outside the process.
package export

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/gorilla/feeds"
	"github.com/samvad-hq/samvad-health-news/internal/domain"
)

// Format names an output encoding.
type Format string

const (
	FormatJSON     Format = "json"
	FormatJSONFeed Format = "jsonfeed"
	FormatRSS      Format = "rss"
	FormatAtom     Format = "atom"
)

// ParseFormat accepts a case-insensitive format name.
func ParseFormat(raw string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(raw))); f {
	case FormatJSON, FormatJSONFeed, FormatRSS, FormatAtom:
		return f, nil
	case "":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("unknown export format %q", raw)
	}
}

// Meta describes the feed as a whole.
type Meta struct {
	Title       string
	Link        string
	Description string
	Updated     time.Time
}

type envelope struct {
	Title   string            `json:"title"`
	Link    string            `json:"link,omitempty"`
	Updated time.Time         `json:"updated"`
	Count   int               `json:"count"`
	Items   []domain.NewsItem `json:"items"`
}

// Render encodes items in the requested format.
func Render(items []domain.NewsItem, format Format, meta Meta) ([]byte, error) {
	if meta.Updated.IsZero() {
		meta.Updated = time.Now()
	}
	if items == nil {
		items = []domain.NewsItem{}
	}

	if format == FormatJSON {
		out, err := json.MarshalIndent(envelope{
			Title:   meta.Title,
			Link:    meta.Link,
			Updated: meta.Updated,
			Count:   len(items),
			Items:   items,
		}, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("encode json: %w", err)
		}
		return out, nil
	}

	feed := buildFeed(items, meta)
	var (
		s   string
		err error
	)
	switch format {
	case FormatRSS:
		s, err = feed.ToRss()
	case FormatAtom:
		s, err = feed.ToAtom()
	case FormatJSONFeed:
		s, err = feed.ToJSON()
	default:
		return nil, fmt.Errorf("unknown export format %q", format)
	}
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", format, err)
	}
	return []byte(s), nil
}

func buildFeed(items []domain.NewsItem, meta Meta) *feeds.Feed {
	feed := &feeds.Feed{
		Title:       meta.Title,
		Link:        &feeds.Link{Href: meta.Link},
		Description: meta.Description,
		Created:     meta.Updated,
		Items:       make([]*feeds.Item, 0, len(items)),
	}
	for _, it := range items {
		fi := &feeds.Item{
			Id:          it.Link,
			Title:       it.Title,
			Link:        &feeds.Link{Href: it.Link},
			Author:      &feeds.Author{Name: it.Source},
			Description: it.Description,
			Created:     it.PublishedAt,
		}
		if it.ImageURL != "" {
			fi.Enclosure = &feeds.Enclosure{Url: it.ImageURL, Type: imageType(it.ImageURL), Length: "0"}
		}
		feed.Items = append(feed.Items, fi)
	}
	return feed
}

func imageType(u string) string {
	lower := strings.ToLower(u)
	if i := strings.IndexAny(lower, "?#"); i >= 0 {
		lower = lower[:i]
	}
	switch {
	case strings.HasSuffix(lower, ".png"):
		return "image/png"
	case strings.HasSuffix(lower, ".gif"):
		return "image/gif"
	case strings.HasSuffix(lower, ".webp"):
		return "image/webp"
	default:
		return "image/jpeg"
	}
}
