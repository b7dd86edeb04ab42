// Package feedparser turns raw RSS, Atom and sitemap payloads into NewsItems.
//
// Parsing is regex-driven on purpose: real-world regional feeds are often not
// well-formed XML, and a strict decoder would reject whole feeds over one bad
// entity. Field extraction follows the ordered alternatives in patterns.go.
// Payloads with no recognizable item blocks are handed to gofeed, which
// covers JSON Feed and namespaced variants the pattern table does not.
package feedparser

import (
	"html"
	"regexp"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
	"github.com/samvad-hq/samvad-health-news/internal/domain"
)

var xmlPrologRe = regexp.MustCompile(`(?s)^\s*<\?xml[^>]*\?>`)

// Parser holds the clock used for items that carry no date.
type Parser struct {
	Now func() time.Time
}

var defaultParser = &Parser{Now: time.Now}

// Parse parses raw with the default parser. Items are stamped as global;
// use ParseSource when the originating source's locality is known.
func Parse(raw []byte, sourceName string, language domain.Language) []domain.NewsItem {
	return defaultParser.ParseSource(raw, domain.SourceConfig{Name: sourceName, Language: language})
}

// ParseSource parses raw with the default parser, stamping items from src.
func ParseSource(raw []byte, src domain.SourceConfig) []domain.NewsItem {
	return defaultParser.ParseSource(raw, src)
}

// CountItems reports how many item, entry, article or url blocks raw contains.
func CountItems(raw []byte) int {
	s := string(raw)
	if isSitemap(s) {
		return len(urlBlockRe.FindAllStringIndex(s, -1))
	}
	for _, re := range blockPatterns {
		if n := len(re.FindAllStringIndex(s, -1)); n > 0 {
			return n
		}
	}
	return 0
}

// ParseSource sniffs the payload format and extracts valid items. Invalid
// items are skipped; an unrecognizable payload yields no items.
func (p *Parser) ParseSource(raw []byte, src domain.SourceConfig) []domain.NewsItem {
	s := xmlPrologRe.ReplaceAllString(string(raw), "")
	if strings.TrimSpace(s) == "" {
		return nil
	}
	if isSitemap(s) {
		return p.parseSitemap(s, src)
	}

	for _, re := range blockPatterns {
		blocks := re.FindAllString(s, -1)
		if len(blocks) == 0 {
			continue
		}
		items := make([]domain.NewsItem, 0, len(blocks))
		for _, block := range blocks {
			if item, ok := p.parseItem(block, src); ok {
				items = append(items, item)
			}
		}
		return items
	}

	return p.parseWithGofeed(s, src)
}

func isSitemap(s string) bool {
	return strings.Contains(s, "<urlset") || strings.Contains(s, "<sitemap>")
}

func (p *Parser) parseItem(block string, src domain.SourceConfig) (domain.NewsItem, bool) {
	title := CleanHTML(firstTag(block, itemFields.title))

	link := html.UnescapeString(firstTag(block, itemFields.link))
	if !strings.HasPrefix(link, "http") {
		link = html.UnescapeString(firstAttr(block, itemFields.linkAttr))
	}
	link = strings.TrimSpace(link)

	if title == "" || !strings.HasPrefix(link, "http") {
		return domain.NewsItem{}, false
	}

	rawDesc := firstTag(block, itemFields.description)

	image := firstAttr(block, itemFields.image)
	if image == "" && rawDesc != "" {
		image = imgSrcPattern.match(html.UnescapeString(rawDesc))
	}

	return domain.NewsItem{
		Title:       title,
		Link:        link,
		Source:      src.Name,
		PublishedAt: p.date(firstTag(block, itemFields.date)),
		Description: CleanHTML(rawDesc),
		ImageURL:    absoluteImage(image),
		Language:    src.Language,
		IsLocal:     src.IsLocal(),
		SourceKind:  domain.KindRSS,
	}, true
}

// date treats a missing value as "now" and an unparseable one as the zero time.
func (p *Parser) date(raw string) time.Time {
	raw = strings.TrimSpace(CleanHTML(raw))
	if raw == "" {
		return p.now()
	}
	return ParseDate(raw)
}

func (p *Parser) now() time.Time {
	if p == nil || p.Now == nil {
		return time.Now()
	}
	return p.Now()
}

func absoluteImage(raw string) string {
	raw = strings.TrimSpace(html.UnescapeString(raw))
	if !strings.HasPrefix(raw, "http") {
		return ""
	}
	return raw
}

func (p *Parser) parseWithGofeed(s string, src domain.SourceConfig) []domain.NewsItem {
	feed, err := gofeed.NewParser().ParseString(s)
	if err != nil || feed == nil {
		return nil
	}

	items := make([]domain.NewsItem, 0, len(feed.Items))
	for _, it := range feed.Items {
		if it == nil {
			continue
		}
		title := CleanHTML(it.Title)
		link := strings.TrimSpace(it.Link)
		if title == "" || !strings.HasPrefix(link, "http") {
			continue
		}

		published := p.now()
		switch {
		case it.PublishedParsed != nil:
			published = *it.PublishedParsed
		case it.UpdatedParsed != nil:
			published = *it.UpdatedParsed
		case strings.TrimSpace(it.Published) != "":
			published = ParseDate(it.Published)
		}

		desc := it.Description
		if strings.TrimSpace(desc) == "" {
			desc = it.Content
		}

		items = append(items, domain.NewsItem{
			Title:       title,
			Link:        link,
			Source:      src.Name,
			PublishedAt: published,
			Description: CleanHTML(desc),
			ImageURL:    absoluteImage(gofeedImage(it, desc)),
			Language:    src.Language,
			IsLocal:     src.IsLocal(),
			SourceKind:  domain.KindRSS,
		})
	}
	return items
}

func gofeedImage(it *gofeed.Item, desc string) string {
	if it.Image != nil && it.Image.URL != "" {
		return it.Image.URL
	}
	for _, enc := range it.Enclosures {
		if enc != nil && enc.URL != "" {
			return enc.URL
		}
	}
	return imgSrcPattern.match(html.UnescapeString(desc))
}
