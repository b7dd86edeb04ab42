package feedparser

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/samvad-hq/samvad-health-news/internal/domain"
)

var fixedNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func testParser() *Parser { return &Parser{Now: func() time.Time { return fixedNow }} }

const malformedRSS = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0" xmlns:media="http://search.yahoo.com/mrss/">
<channel>
  <title>Ada Derana</title>
  <link>https://www.adaderana.lk</link>
  <item>
    <title><![CDATA[Dengue cases rise in Colombo]]></title>
    <link>https://www.adaderana.lk/news/1</link>
    <description><![CDATA[<p>Health officials &amp; doctors warn.</p><img src="https://img.adaderana.lk/1.jpg"/>]]></description>
    <pubDate>Fri, 31 May 2024 09:30:00 +0530</pubDate>
  </item>
  <item>
    <title>Hospital opens new ward</title>
    <link>https://www.adaderana.lk/news/2</link>
    <description>&lt;b&gt;Ward&lt;/b&gt; opened</description>
    <enclosure url="https://img.adaderana.lk/2.jpg" type="image/jpeg"/>
    <media:thumbnail url="https://img.adaderana.lk/2-thumb.jpg"/>
  </item>
  <item>
    <title>Item without link</title>
    <description>This one is broken</description>
  </item>
  <item>
    <title>Vaccine drive extended</title>
    <link>https://www.adaderana.lk/news/4</link>
    <pubDate>sometime last week</pubDate>
    <media:content url="https://img.adaderana.lk/4.jpg" medium="image"/>
  </item>
</channel>
</rss>`

func TestParseSkipsItemsWithoutLink(t *testing.T) {
	items := testParser().ParseSource([]byte(malformedRSS), domain.SourceConfig{
		Name:     "Ada Derana",
		Language: domain.LanguageEnglish,
		Locality: domain.LocalityLocal,
	})
	if len(items) != 3 {
		t.Fatalf("expected 3 items, got %d", len(items))
	}

	first := items[0]
	if first.Title != "Dengue cases rise in Colombo" {
		t.Fatalf("CDATA title not unwrapped: %q", first.Title)
	}
	if first.Description != "Health officials & doctors warn." {
		t.Fatalf("description not cleaned: %q", first.Description)
	}
	if first.ImageURL != "https://img.adaderana.lk/1.jpg" {
		t.Fatalf("expected description img fallback, got %q", first.ImageURL)
	}
	want := time.Date(2024, 5, 31, 4, 0, 0, 0, time.UTC)
	if !first.PublishedAt.Equal(want) {
		t.Fatalf("PublishedAt = %v, want %v", first.PublishedAt, want)
	}
	if !first.IsLocal || first.Source != "Ada Derana" || first.SourceKind != domain.KindRSS {
		t.Fatalf("source metadata not stamped: %+v", first)
	}

	second := items[1]
	if second.ImageURL != "https://img.adaderana.lk/2.jpg" {
		t.Fatalf("enclosure should win over media:thumbnail, got %q", second.ImageURL)
	}
	if second.Description != "Ward opened" {
		t.Fatalf("escaped markup not stripped: %q", second.Description)
	}
	if !second.PublishedAt.Equal(fixedNow) {
		t.Fatalf("missing date should default to now, got %v", second.PublishedAt)
	}

	third := items[2]
	if !third.PublishedAt.IsZero() {
		t.Fatalf("unparseable date should be zero, got %v", third.PublishedAt)
	}
	if third.ImageURL != "https://img.adaderana.lk/4.jpg" {
		t.Fatalf("expected media:content image, got %q", third.ImageURL)
	}
}

const atomFeed = `<?xml version="1.0" encoding="utf-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <title>WHO</title>
  <entry>
    <title type="html">Cholera &amp;amp; outbreak update</title>
    <link rel="alternate" href="https://www.who.int/news/item/1"/>
    <summary>Situation report</summary>
    <updated>2024-05-30T08:00:00Z</updated>
  </entry>
  <entry>
    <title>Second entry</title>
    <link href="https://www.who.int/news/item/2"/>
    <published>2024-05-29T08:00:00Z</published>
  </entry>
</feed>`

func TestParseAtomEntries(t *testing.T) {
	items := testParser().ParseSource([]byte(atomFeed), domain.SourceConfig{Name: "WHO News", Language: domain.LanguageEnglish})
	if len(items) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(items))
	}
	if items[0].Link != "https://www.who.int/news/item/1" {
		t.Fatalf("expected href link, got %q", items[0].Link)
	}
	if items[0].Description != "Situation report" {
		t.Fatalf("expected summary as description, got %q", items[0].Description)
	}
	if items[1].PublishedAt.Day() != 29 {
		t.Fatalf("expected published date, got %v", items[1].PublishedAt)
	}
	if items[0].IsLocal {
		t.Fatalf("global source produced local item")
	}
}

func TestParsePackageLevelDefaultsToGlobal(t *testing.T) {
	items := Parse([]byte(malformedRSS), "Ada Derana", domain.LanguageEnglish)
	if len(items) != 3 {
		t.Fatalf("expected 3 items, got %d", len(items))
	}
	for _, it := range items {
		if it.IsLocal || it.Language != domain.LanguageEnglish {
			t.Fatalf("unexpected stamping %+v", it)
		}
	}
}

func TestParseFallsBackToGofeedForJSONFeed(t *testing.T) {
	raw := `{
  "version": "https://jsonfeed.org/version/1.1",
  "title": "Clinic notes",
  "items": [
    {"id": "1", "url": "https://clinic.example/a", "title": "Sleep and recovery",
     "summary": "Why sleep matters", "date_published": "2024-05-01T10:00:00Z",
     "image": "https://clinic.example/a.png"},
    {"id": "2", "title": "No link here"}
  ]
}`
	items := testParser().ParseSource([]byte(raw), domain.SourceConfig{Name: "Clinic", Language: domain.LanguageEnglish})
	if len(items) != 1 {
		t.Fatalf("expected 1 item from JSON feed, got %d", len(items))
	}
	if items[0].Title != "Sleep and recovery" || items[0].Link != "https://clinic.example/a" {
		t.Fatalf("unexpected item %+v", items[0])
	}
	if items[0].PublishedAt.Year() != 2024 {
		t.Fatalf("expected parsed publish date, got %v", items[0].PublishedAt)
	}
}

func TestParseGarbageYieldsNothing(t *testing.T) {
	for _, raw := range []string{"", "   ", "<html><body>not a feed</body></html>", "{broken"} {
		if items := Parse([]byte(raw), "x", domain.LanguageEnglish); len(items) != 0 {
			t.Fatalf("expected no items for %q, got %d", raw, len(items))
		}
	}
}

func TestCountItems(t *testing.T) {
	if got := CountItems([]byte(malformedRSS)); got != 4 {
		t.Fatalf("CountItems rss = %d, want 4", got)
	}
	if got := CountItems([]byte(atomFeed)); got != 2 {
		t.Fatalf("CountItems atom = %d, want 2", got)
	}
	if got := CountItems([]byte(buildSitemap(7))); got != 7 {
		t.Fatalf("CountItems sitemap = %d, want 7", got)
	}
}

func TestCleanHTML(t *testing.T) {
	cases := map[string]string{
		"&lt;b&gt;Hi&lt;/b&gt; &amp; you":    "Hi & you",
		"<p>Line\n\n  two</p>":                "Line two",
		"Tom&#39;s &quot;clinic&quot;&nbsp;!": `Tom's "clinic" !`,
		"":                                    "",
	}
	for in, want := range cases {
		if got := CleanHTML(in); got != want {
			t.Fatalf("CleanHTML(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestParseDateLayouts(t *testing.T) {
	valid := []string{
		"Fri, 31 May 2024 09:30:00 +0530",
		"Fri, 31 May 2024 09:30:00 GMT",
		"2024-05-31T09:30:00Z",
		"2024-05-31T09:30:00.123+05:30",
		"2024-05-31",
	}
	for _, v := range valid {
		if ParseDate(v).IsZero() {
			t.Fatalf("expected %q to parse", v)
		}
	}
	if !ParseDate("yesterday-ish").IsZero() {
		t.Fatalf("expected zero time for garbage")
	}
}

func buildSitemap(n int) string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>
<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9" xmlns:image="http://www.google.com/schemas/sitemap-image/1.1">`)
	for i := 0; i < n; i++ {
		fmt.Fprintf(&b, "\n  <url><loc>https://www.medicalnewstoday.com/articles/health-story-%d</loc></url>", i)
	}
	b.WriteString("\n</urlset>")
	return b.String()
}
