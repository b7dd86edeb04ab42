package verify

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/samvad-hq/samvad-health-news/internal/domain"
)

const rssBody = `<?xml version="1.0"?><rss><channel>
<item><title>a</title></item><item><title>b</title></item>
</channel></rss>`

func newFeedServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/rss", func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.Header.Get("Accept"), "application/atom+xml") {
			t.Errorf("expected widened Accept header, got %q", r.Header.Get("Accept"))
		}
		w.Header().Set("Content-Type", "application/rss+xml")
		_, _ = w.Write([]byte(rssBody))
	})
	mux.HandleFunc("/html", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte("<html><body>Moved to our app</body></html>"))
	})
	mux.HandleFunc("/missing", http.NotFound)
	mux.HandleFunc("/loop", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/loop", http.StatusFound)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestVerifyAllClassifiesEachURL(t *testing.T) {
	srv := newFeedServer(t)
	v := New(nil, Options{Timeout: 2 * time.Second, RatePerSecond: 100})

	srcs := []domain.SourceConfig{
		{Name: "Good", FeedURL: srv.URL + "/rss", Alternates: []string{srv.URL + "/html"}},
		{Name: "NoFeed", Alternates: []string{srv.URL + "/missing", srv.URL + "/loop"}},
	}
	results := v.VerifyAll(context.Background(), srcs)
	if len(results) != 4 {
		t.Fatalf("expected 4 results, got %d", len(results))
	}

	want := []struct {
		url       string
		status    Status
		alternate bool
	}{
		{"/rss", StatusSuccess, false},
		{"/html", StatusInvalid, true},
		{"/missing", StatusFailed, true},
		{"/loop", StatusFailed, true},
	}
	for i, w := range want {
		r := results[i]
		if r.URL != srv.URL+w.url || r.Status != w.status || r.Alternate != w.alternate {
			t.Fatalf("result %d = %+v, want url %s status %s alternate %v", i, r, w.url, w.status, w.alternate)
		}
	}
	if results[0].ItemCount != 2 || results[0].ContentType != "application/rss+xml" || results[0].StatusCode != 200 {
		t.Fatalf("unexpected success details %+v", results[0])
	}
	if results[2].StatusCode != 404 || results[2].Error != "HTTP 404" {
		t.Fatalf("unexpected 404 details %+v", results[2])
	}
	if results[3].Error == "" {
		t.Fatalf("expected redirect loop to carry an error")
	}
}

func TestVerifySingle(t *testing.T) {
	srv := newFeedServer(t)
	v := New(nil, Options{Timeout: 2 * time.Second})
	r := v.Verify(context.Background(), "Good", srv.URL+"/rss")
	if r.Status != StatusSuccess || r.Name != "Good" {
		t.Fatalf("unexpected result %+v", r)
	}
}

func TestLooksLikeFeed(t *testing.T) {
	if !looksLikeFeed([]byte(`  <FEED xmlns="http://www.w3.org/2005/Atom">`)) {
		t.Fatalf("atom feed not recognised")
	}
	if looksLikeFeed([]byte("   ")) || looksLikeFeed([]byte("<html></html>")) {
		t.Fatalf("non-feed recognised as feed")
	}
}

func TestReportGroupsByStatus(t *testing.T) {
	results := []Result{
		{Name: "Good", URL: "https://good.example/rss", Status: StatusSuccess, ItemCount: 12, StatusCode: 200},
		{Name: "Gone", URL: "https://gone.example/rss", Status: StatusFailed, StatusCode: 404, Error: "HTTP 404"},
		{Name: "Page", URL: "https://page.example/", Status: StatusInvalid, Alternate: true},
	}
	out := Report(results)
	for _, want := range []string{
		"Total URLs tested: 3",
		"https://good.example/rss",
		"Items: 12",
		"Error: HTTP 404",
		"Status code: 404",
		"https://page.example/",
		"alternate",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("report missing %q:\n%s", want, out)
		}
	}

	s, f, i := Tally(results)
	if s != 1 || f != 1 || i != 1 {
		t.Fatalf("Tally = %d/%d/%d", s, f, i)
	}
}
