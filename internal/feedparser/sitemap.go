package feedparser

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/samvad-hq/samvad-health-news/internal/domain"
)

// MaxSitemapEntries caps how many <url> entries are parsed per fetch.
const MaxSitemapEntries = 20

var (
	urlBlockRe    = regexp.MustCompile(`(?is)<url>.*?</url>`)
	imageLocRe    = regexp.MustCompile(`(?is)<image:image>.*?<image:loc>\s*(?:<!\[CDATA\[)?(.*?)(?:\]\]>)?\s*</image:loc>`)
	locPattern    = newTagPattern("loc")
	lastmodPat    = newTagPattern("lastmod")
	newsTitlePat  = newTagPattern("news:title")
	newsDatePat   = newTagPattern("news:publication_date")
	slugExtension = regexp.MustCompile(`(?i)\.(html?|php|aspx?)$`)

	mntArticleRe = regexp.MustCompile(`/articles/([^/?#]+)`)
	healthlineRe = regexp.MustCompile(`/health/([^/?#]+)`)
)

// imageGuessers build a likely header-image URL for publishers whose CDN
// layout is predictable. The result is a guess and may not resolve.
var imageGuessers = map[string]func(link string) string{
	"medical news today": func(link string) string {
		m := mntArticleRe.FindStringSubmatch(link)
		if m == nil {
			return ""
		}
		id := m[1]
		prefix := id
		if len(prefix) > 3 {
			prefix = prefix[:3]
		}
		return "https://cdn-prod.medicalnewstoday.com/content/images/articles/" + prefix + "/" + id + "-header-image.jpg"
	},
	"healthline": func(link string) string {
		m := healthlineRe.FindStringSubmatch(link)
		if m == nil {
			return ""
		}
		return "https://i0.wp.com/images-prod.healthline.com/" + m[1] + "-header.jpg"
	},
}

// ParseSitemap parses a sitemap payload with the default parser.
func ParseSitemap(raw []byte, src domain.SourceConfig) []domain.NewsItem {
	return defaultParser.parseSitemap(string(raw), src)
}

func (p *Parser) parseSitemap(s string, src domain.SourceConfig) []domain.NewsItem {
	entries := urlBlockRe.FindAllString(s, -1)
	if len(entries) > MaxSitemapEntries {
		entries = entries[:MaxSitemapEntries]
	}

	guess := imageGuessers[strings.ToLower(src.Name)]
	items := make([]domain.NewsItem, 0, len(entries))
	for _, entry := range entries {
		link := CleanHTML(locPattern.match(entry))
		if !strings.HasPrefix(link, "http") {
			continue
		}

		title := CleanHTML(newsTitlePat.match(entry))
		if title == "" {
			title = slugTitle(link)
		}
		if title == "" {
			continue
		}

		rawDate := lastmodPat.match(entry)
		if rawDate == "" {
			rawDate = newsDatePat.match(entry)
		}

		image := ""
		if m := imageLocRe.FindStringSubmatch(entry); m != nil {
			image = absoluteImage(m[1])
		}
		if image == "" && guess != nil {
			image = guess(link)
		}

		items = append(items, domain.NewsItem{
			Title:       title,
			Link:        link,
			Source:      src.Name,
			PublishedAt: p.date(rawDate),
			Description: "Health article from " + src.Name,
			ImageURL:    image,
			Language:    src.Language,
			IsLocal:     src.IsLocal(),
			SourceKind:  domain.KindSitemap,
		})
	}
	return items
}

// slugTitle turns the last path segment of link into a title-cased phrase.
func slugTitle(link string) string {
	if i := strings.IndexAny(link, "?#"); i >= 0 {
		link = link[:i]
	}
	parts := strings.Split(strings.TrimRight(link, "/"), "/")
	if len(parts) < 4 {
		// scheme, empty, host: no path segment to work with
		return ""
	}
	slug := slugExtension.ReplaceAllString(parts[len(parts)-1], "")
	slug = strings.NewReplacer("-", " ", "_", " ").Replace(slug)

	words := strings.Fields(slug)
	for i, w := range words {
		r, size := utf8.DecodeRuneInString(w)
		words[i] = string(unicode.ToUpper(r)) + w[size:]
	}
	return strings.Join(words, " ")
}
