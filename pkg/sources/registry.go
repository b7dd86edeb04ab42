package sources

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/samvad-hq/samvad-health-news/internal/domain"
	"gopkg.in/yaml.v3"
)

// Package sources holds the source registry, the HTTP fetcher and the news-search API adapter.

type registryFile struct {
	Sources []domain.SourceConfig `json:"sources" yaml:"sources"`
}

// Registry is a read-only view over the configured sources.
type Registry struct {
	mu      sync.RWMutex
	sources []domain.SourceConfig
	idx     map[string]domain.SourceConfig
}

// NewRegistry sanitizes and validates list. Names must be unique (case-insensitive).
func NewRegistry(list []domain.SourceConfig) (*Registry, error) {
	reg := &Registry{
		sources: make([]domain.SourceConfig, 0, len(list)),
		idx:     make(map[string]domain.SourceConfig, len(list)),
	}
	for i := range list {
		src := sanitizeSource(list[i])
		if err := validateSource(src); err != nil {
			return nil, fmt.Errorf("sources[%d]: %w", i, err)
		}
		key := strings.ToLower(src.Name)
		if _, exists := reg.idx[key]; exists {
			return nil, fmt.Errorf("duplicate source name %q", src.Name)
		}
		reg.sources = append(reg.sources, src)
		reg.idx[key] = src
	}
	return reg, nil
}

// LoadRegistry loads sources from a YAML/JSON file. An empty path yields the built-in defaults.
func LoadRegistry(path string) (*Registry, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return NewRegistry(DefaultSources())
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open sources file: %w", err)
	}
	defer file.Close()

	raw, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("read sources file: %w", err)
	}

	parsed, err := parseRegistry(raw, filepath.Ext(path))
	if err != nil {
		return nil, err
	}
	if len(parsed.Sources) == 0 {
		return nil, errors.New("sources file contains no sources entries")
	}
	return NewRegistry(parsed.Sources)
}

func parseRegistry(data []byte, ext string) (registryFile, error) {
	ext = strings.ToLower(strings.TrimSpace(ext))

	decoders := []struct {
		name string
		ext  string
		fn   func([]byte, any) error
	}{
		{name: "yaml", ext: ".yaml", fn: yaml.Unmarshal},
		{name: "yaml", ext: ".yml", fn: yaml.Unmarshal},
		{name: "json", ext: ".json", fn: json.Unmarshal},
	}

	for _, d := range decoders {
		if ext != "" && ext != d.ext {
			continue
		}
		var reg registryFile
		if err := d.fn(data, &reg); err == nil {
			return reg, nil
		}
	}

	return registryFile{}, errors.New("sources file format not recognized (expected YAML or JSON)")
}

func sanitizeSource(s domain.SourceConfig) domain.SourceConfig {
	s.Name = strings.TrimSpace(s.Name)
	s.BaseURL = strings.TrimSpace(s.BaseURL)
	s.FeedURL = strings.TrimSpace(s.FeedURL)
	s.RateLimitKey = strings.TrimSpace(s.RateLimitKey)
	s.Language = domain.Language(strings.ToLower(strings.TrimSpace(string(s.Language))))
	if s.Language == "" {
		s.Language = domain.LanguageEnglish
	}
	s.Locality = domain.Locality(strings.ToLower(strings.TrimSpace(string(s.Locality))))
	if s.Locality == "" {
		s.Locality = domain.LocalityGlobal
	}

	alts := make([]string, 0, len(s.Alternates))
	for _, a := range s.Alternates {
		if a = strings.TrimSpace(a); a != "" {
			alts = append(alts, a)
		}
	}
	s.Alternates = alts
	return s
}

func validateSource(s domain.SourceConfig) error {
	if s.Name == "" {
		return errors.New("name is required")
	}
	switch s.Language {
	case domain.LanguageEnglish, domain.LanguageSinhala:
	default:
		return fmt.Errorf("unsupported language %q for source %q", s.Language, s.Name)
	}
	switch s.Locality {
	case domain.LocalityLocal, domain.LocalityGlobal:
	default:
		return fmt.Errorf("unsupported locality %q for source %q", s.Locality, s.Name)
	}
	if s.FeedURL != "" && !isHTTPURL(s.FeedURL) {
		return fmt.Errorf("feed_url must be an absolute http(s) url for source %q", s.Name)
	}
	return nil
}

func isHTTPURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// All returns every configured source, enabled or not, in declaration order.
func (r *Registry) All() []domain.SourceConfig {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.SourceConfig, len(r.sources))
	copy(out, r.sources)
	return out
}

// ByName looks a source up case-insensitively.
func (r *Registry) ByName(name string) (domain.SourceConfig, bool) {
	if r == nil {
		return domain.SourceConfig{}, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	src, ok := r.idx[strings.ToLower(strings.TrimSpace(name))]
	return src, ok
}

// Enabled returns enabled sources with feed-URL sources first (stable within
// each group), truncated to limit when limit > 0.
func (r *Registry) Enabled(limit int) []domain.SourceConfig {
	all := r.All()
	out := make([]domain.SourceConfig, 0, len(all))
	for _, src := range all {
		if src.EnabledValue() {
			out = append(out, src)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].HasFeed() && !out[j].HasFeed()
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}
