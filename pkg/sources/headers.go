package sources

import (
	"strings"

	"github.com/samvad-hq/samvad-health-news/internal/domain"
)

// Header override keys accepted in a source's headers map.
const (
	ConfigUserAgentKey      = "user_agent"
	ConfigAcceptKey         = "accept"
	ConfigAcceptLanguageKey = "accept_language"
	ConfigCacheControlKey   = "cache_control"
)

// Browser-like defaults; several regional publishers reject non-browser agents.
const (
	DefaultUserAgent      = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"
	DefaultAccept         = "application/rss+xml, application/xml, text/xml"
	DefaultAcceptLanguage = "en-US,en;q=0.9"
	DefaultCacheControl   = "no-cache"
)

// ConfigString returns the trimmed override for key, or fallback.
func ConfigString(cfg domain.SourceConfig, key, fallback string) string {
	if cfg.Headers != nil {
		if v := strings.TrimSpace(cfg.Headers[key]); v != "" {
			return v
		}
	}
	return fallback
}

// Headers builds the outbound feed request headers for cfg.
func Headers(cfg domain.SourceConfig) map[string]string {
	return map[string]string{
		"User-Agent":      ConfigString(cfg, ConfigUserAgentKey, DefaultUserAgent),
		"Accept":          ConfigString(cfg, ConfigAcceptKey, DefaultAccept),
		"Accept-Language": ConfigString(cfg, ConfigAcceptLanguageKey, DefaultAcceptLanguage),
		"Cache-Control":   ConfigString(cfg, ConfigCacheControlKey, DefaultCacheControl),
	}
}
