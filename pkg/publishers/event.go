package publishers

import (
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/samvad-hq/samvad-health-news/internal/domain"
	"github.com/samvad-hq/samvad-health-news/internal/engine"
)

// Event is the payload published downstream whenever a new feed is built.
type Event struct {
	ID          string            `json:"id"`
	BuiltAt     time.Time         `json:"built_at"`
	PublishedAt time.Time         `json:"published_at"`
	ItemCount   int               `json:"item_count"`
	Summary     engine.Summary    `json:"summary"`
	Items       []domain.NewsItem `json:"items"`
}

// NewEvent wraps a built feed in an Event with a fresh id.
func NewEvent(items []domain.NewsItem, builtAt time.Time) Event {
	return Event{
		ID:          uuid.NewString(),
		BuiltAt:     builtAt.UTC(),
		PublishedAt: time.Now().UTC(),
		ItemCount:   len(items),
		Summary:     engine.Summarize(items),
		Items:       items,
	}
}

// attributes are the routing attributes attached to queue and topic messages.
func (e Event) attributes() map[string]string {
	return map[string]string{
		"event_id":   e.ID,
		"item_count": strconv.Itoa(e.ItemCount),
		"built_at":   e.BuiltAt.Format(time.RFC3339),
	}
}
