package sources

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/samvad-hq/samvad-health-news/internal/domain"
	"github.com/samvad-hq/samvad-health-news/internal/feedparser"
	"github.com/samvad-hq/samvad-health-news/internal/logger"
)

// NewsAPIRateLimitKey is the persisted guard key for the search API.
const NewsAPIRateLimitKey = "newsapi_ratelimit_timestamp"

// NewsAPIName labels the adapter in logs and task names.
const NewsAPIName = "NewsAPI"

// Guard reports and records rate-limit trips.
type Guard interface {
	IsTripped(key string) bool
	Trip(key string)
}

// NewsAPIOptions configures the search API adapter.
type NewsAPIOptions struct {
	BaseURL  string
	APIKey   string
	Query    string
	PageSize int
	Timeout  time.Duration
	Logger   logger.Logger
	Now      func() time.Time
}

// NewsAPI queries the /v2/everything endpoint and substitutes a fixed
// fallback set while the endpoint is rate limited.
type NewsAPI struct {
	fetcher *Fetcher
	guard   Guard
	opts    NewsAPIOptions
	log     logger.Logger
}

type newsAPIResponse struct {
	Status   string           `json:"status"`
	Code     string           `json:"code"`
	Message  string           `json:"message"`
	Articles []newsAPIArticle `json:"articles"`
}

type newsAPIArticle struct {
	Source struct {
		Name string `json:"name"`
	} `json:"source"`
	Title       string `json:"title"`
	Description string `json:"description"`
	URL         string `json:"url"`
	URLToImage  string `json:"urlToImage"`
	PublishedAt string `json:"publishedAt"`
}

// NewNewsAPI builds the adapter. guard may be nil, in which case 429s still
// produce the fallback set but nothing is remembered.
func NewNewsAPI(fetcher *Fetcher, guard Guard, opts NewsAPIOptions) *NewsAPI {
	if opts.BaseURL == "" {
		opts.BaseURL = "https://newsapi.org/v2"
	}
	if opts.Query == "" {
		opts.Query = "health OR medical OR wellness"
	}
	if opts.PageSize <= 0 {
		opts.PageSize = 10
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 5 * time.Second
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &NewsAPI{fetcher: fetcher, guard: guard, opts: opts, log: logger.OrNop(opts.Logger)}
}

// Name identifies the adapter.
func (n *NewsAPI) Name() string { return NewsAPIName }

// Fetch returns API items, or the fallback set when the endpoint is (or just became) rate limited.
func (n *NewsAPI) Fetch(ctx context.Context) ([]domain.NewsItem, error) {
	if n.guard != nil && n.guard.IsTripped(NewsAPIRateLimitKey) {
		n.log.InfoObj("news api in cooldown; serving fallback", "newsapi_state", map[string]any{
			"key": NewsAPIRateLimitKey,
		})
		return FallbackItems(n.opts.Now()), nil
	}

	resp, err := n.fetcher.Do(ctx, Request{
		URL:          n.endpoint(),
		Headers:      map[string]string{"Accept": "application/json", "User-Agent": DefaultUserAgent},
		Timeout:      n.opts.Timeout,
		RateLimitKey: NewsAPIRateLimitKey,
	})
	if errors.Is(err, ErrRateLimited) {
		if n.guard != nil && !n.guard.IsTripped(NewsAPIRateLimitKey) {
			n.guard.Trip(NewsAPIRateLimitKey)
		}
		return FallbackItems(n.opts.Now()), nil
	}
	if err != nil {
		return nil, fmt.Errorf("news api query: %w", err)
	}

	var payload newsAPIResponse
	if err := json.Unmarshal(resp.Body(), &payload); err != nil {
		return nil, fmt.Errorf("decode news api response: %w", err)
	}
	if payload.Status == "error" {
		return nil, fmt.Errorf("news api error %s: %s", payload.Code, payload.Message)
	}
	return n.mapArticles(payload.Articles), nil
}

func (n *NewsAPI) endpoint() string {
	q := url.Values{}
	q.Set("q", n.opts.Query)
	q.Set("language", "en")
	q.Set("sortBy", "publishedAt")
	q.Set("pageSize", strconv.Itoa(n.opts.PageSize))
	q.Set("apiKey", n.opts.APIKey)
	return strings.TrimRight(n.opts.BaseURL, "/") + "/everything?" + q.Encode()
}

func (n *NewsAPI) mapArticles(articles []newsAPIArticle) []domain.NewsItem {
	items := make([]domain.NewsItem, 0, len(articles))
	now := n.opts.Now()
	for _, a := range articles {
		title := strings.TrimSpace(a.Title)
		link := strings.TrimSpace(a.URL)
		if title == "" || !strings.HasPrefix(link, "http") {
			continue
		}
		published := now
		if strings.TrimSpace(a.PublishedAt) != "" {
			published = feedparser.ParseDate(a.PublishedAt)
		}
		items = append(items, domain.NewsItem{
			Title:       feedparser.CleanHTML(title),
			Link:        link,
			Source:      strings.TrimSpace(a.Source.Name),
			PublishedAt: published,
			Description: feedparser.CleanHTML(a.Description),
			ImageURL:    validImageURL(a.URLToImage),
			Language:    domain.LanguageEnglish,
			IsLocal:     false,
			SourceKind:  domain.KindAPI,
		})
	}
	return items
}

func validImageURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "null" || raw == "undefined" || !strings.HasPrefix(raw, "http") {
		return ""
	}
	return raw
}
