package sources

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/samvad-hq/samvad-health-news/internal/domain"
)

func TestLoadRegistryYAML(t *testing.T) {
	file := filepath.Join(t.TempDir(), "sources.yaml")
	content := `
sources:
  - name: Ada Derana
    base_url: https://www.adaderana.lk
    feed_url: https://www.adaderana.lk/rss.php
    language: EN
    locality: local
  - name: Lankadeepa
    feed_url: https://www.lankadeepa.lk/rss
    language: si
    locality: local
    headers:
      user_agent: custom-agent
  - name: Disabled One
    feed_url: https://example.com/rss
    enabled: false
`
	if err := os.WriteFile(file, []byte(content), 0o644); err != nil {
		t.Fatalf("write sources file: %v", err)
	}

	reg, err := LoadRegistry(file)
	if err != nil {
		t.Fatalf("LoadRegistry: %v", err)
	}
	if got := len(reg.All()); got != 3 {
		t.Fatalf("expected 3 sources, got %d", got)
	}
	if got := len(reg.Enabled(0)); got != 2 {
		t.Fatalf("expected 2 enabled sources, got %d", got)
	}

	src, ok := reg.ByName("ada derana")
	if !ok {
		t.Fatalf("expected case-insensitive lookup")
	}
	if src.Language != domain.LanguageEnglish || !src.IsLocal() {
		t.Fatalf("unexpected sanitized source: %+v", src)
	}

	lk, _ := reg.ByName("Lankadeepa")
	if got := Headers(lk)["User-Agent"]; got != "custom-agent" {
		t.Fatalf("expected header override, got %q", got)
	}

	disabled, _ := reg.ByName("Disabled One")
	if disabled.Locality != domain.LocalityGlobal {
		t.Fatalf("expected locality default global, got %q", disabled.Locality)
	}
}

func TestNewRegistryRejectsDuplicatesAndBadValues(t *testing.T) {
	cases := map[string][]domain.SourceConfig{
		"duplicate": {
			{Name: "BBC"},
			{Name: "bbc"},
		},
		"language": {
			{Name: "X", Language: "fr"},
		},
		"feed url": {
			{Name: "X", FeedURL: "ftp://example.com/rss"},
		},
		"missing name": {
			{FeedURL: "https://example.com"},
		},
	}
	for name, list := range cases {
		if _, err := NewRegistry(list); err == nil {
			t.Fatalf("%s: expected validation error", name)
		}
	}
}

func TestEnabledOrdersFeedSourcesFirstAndCaps(t *testing.T) {
	reg, err := NewRegistry([]domain.SourceConfig{
		{Name: "No Feed A"},
		{Name: "Feed 1", FeedURL: "https://a.example/rss"},
		{Name: "No Feed B"},
		{Name: "Feed 2", FeedURL: "https://b.example/rss"},
	})
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}

	got := reg.Enabled(0)
	want := []string{"Feed 1", "Feed 2", "No Feed A", "No Feed B"}
	for i, w := range want {
		if got[i].Name != w {
			t.Fatalf("position %d = %q, want %q", i, got[i].Name, w)
		}
	}

	if capped := reg.Enabled(3); len(capped) != 3 || capped[2].Name != "No Feed A" {
		t.Fatalf("unexpected capped list: %+v", capped)
	}
}

func TestDefaultSourcesShape(t *testing.T) {
	reg, err := LoadRegistry("")
	if err != nil {
		t.Fatalf("LoadRegistry defaults: %v", err)
	}
	if got := len(reg.All()); got != 13 {
		t.Fatalf("expected 13 default sources, got %d", got)
	}
	enabled := reg.Enabled(10)
	if len(enabled) != 10 {
		t.Fatalf("expected top 10 enabled sources, got %d", len(enabled))
	}
	for _, src := range enabled {
		if !src.HasFeed() {
			t.Fatalf("expected feed sources to fill the top 10, found %q", src.Name)
		}
		if src.Name == "Medical News Today" {
			t.Fatalf("disabled source leaked into enabled list")
		}
	}
}

func TestHeadersDefaults(t *testing.T) {
	h := Headers(domain.SourceConfig{Name: "x"})
	if h["Accept"] != DefaultAccept || h["Cache-Control"] != "no-cache" || h["User-Agent"] != DefaultUserAgent {
		t.Fatalf("unexpected default headers: %#v", h)
	}
}
