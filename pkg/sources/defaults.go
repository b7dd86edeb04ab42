package sources

import "github.com/samvad-hq/samvad-health-news/internal/domain"

func boolPtr(v bool) *bool { return &v }

// DefaultSources is the built-in source table used when no sources file is configured.
func DefaultSources() []domain.SourceConfig {
	local := func(name, base, feed string, lang domain.Language) domain.SourceConfig {
		return domain.SourceConfig{Name: name, BaseURL: base, FeedURL: feed, Language: lang, Locality: domain.LocalityLocal}
	}
	global := func(name, base, feed string) domain.SourceConfig {
		return domain.SourceConfig{Name: name, BaseURL: base, FeedURL: feed, Language: domain.LanguageEnglish, Locality: domain.LocalityGlobal}
	}

	mnt := global("Medical News Today", "https://www.medicalnewstoday.com", "https://www.medicalnewstoday.com/news-sitemap.xml")
	mnt.Enabled = boolPtr(false)

	list := []domain.SourceConfig{
		local("Ada Derana", "https://www.adaderana.lk", "https://www.adaderana.lk/rss.php", domain.LanguageEnglish),
		local("Daily Mirror", "https://www.dailymirror.lk", "https://www.dailymirror.lk/rss", domain.LanguageEnglish),
		local("Ceylon Today", "https://www.ceylontoday.lk", "https://www.ceylontoday.lk/rss", domain.LanguageEnglish),
		local("Daily News", "https://www.dailynews.lk", "https://www.dailynews.lk/rss", domain.LanguageEnglish),
		local("Daily FT", "https://www.ft.lk", "https://www.ft.lk/rss", domain.LanguageEnglish),
		local("Lankadeepa", "https://www.lankadeepa.lk", "https://www.lankadeepa.lk/rss", domain.LanguageSinhala),
		local("Divaina", "https://divaina.lk", "https://divaina.lk/feed/", domain.LanguageSinhala),
		global("BBC Health", "https://www.bbc.com/news/health", "https://feeds.bbci.co.uk/news/health/rss.xml"),
		mnt,
		global("Healthline", "https://www.healthline.com", "https://www.healthline.com/rss/health-news"),
		global("CNN Health", "https://edition.cnn.com/health", ""),
		global("Reuters Health", "https://www.reuters.com/business/healthcare-pharmaceuticals", ""),
		global("WHO News", "https://www.who.int", "https://www.who.int/rss-feeds/news-english.xml"),
	}
	for i := range list {
		list[i].Alternates = defaultAlternates[list[i].Name]
	}
	return list
}

// defaultAlternates are other known feed locations, probed by the verifier.
var defaultAlternates = map[string][]string{
	"BBC Health": {
		"https://feeds.bbci.co.uk/news/rss.xml",
		"https://www.bbc.com/news/health/rss.xml",
	},
	"CNN Health": {
		"http://rss.cnn.com/rss/edition_health.rss",
		"https://rss.cnn.com/rss/edition_health.rss",
		"http://rss.cnn.com/rss/cnn_health.rss",
	},
	"Reuters Health": {
		"https://www.reuters.com/arc/outboundfeeds/rss/category/health/?outputType=xml",
		"https://feeds.reuters.com/reuters/health",
	},
	"Ada Derana": {
		"https://adaderana.lk/rss.php",
		"http://www.adaderana.lk/rss.php",
	},
	"Daily Mirror": {
		"https://dailymirror.lk/rss",
		"http://www.dailymirror.lk/rss",
	},
	"Divaina": {
		"https://www.divaina.lk/feed",
		"http://divaina.lk/feed/",
	},
	"Medical News Today": {
		"https://www.medicalnewstoday.com/content.xml",
		"https://www.medicalnewstoday.com/news/feed",
	},
}
