package publishers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestHTTPPublisherPostsSnapshotEvent(t *testing.T) {
	evt := sampleEvent()

	var (
		received Event
		eventID  string
		custom   string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut {
			t.Errorf("expected PUT, got %s", r.Method)
		}
		eventID = r.Header.Get("X-Event-Id")
		custom = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&received); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	pub, err := newHTTPPublisher(context.Background(), PublisherConfig{
		ID:   "hook",
		Type: TypeHTTP,
		HTTP: &HTTPPublisherConfig{
			URL:            srv.URL,
			Method:         http.MethodPut,
			Headers:        map[string]string{"Authorization": "Bearer t0k"},
			TimeoutSeconds: 2,
		},
	}, nil)
	if err != nil {
		t.Fatalf("newHTTPPublisher: %v", err)
	}

	if err := pub.Publish(context.Background(), evt); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if eventID != evt.ID {
		t.Fatalf("X-Event-Id = %q, want %q", eventID, evt.ID)
	}
	if custom != "Bearer t0k" {
		t.Fatalf("configured header missing, got %q", custom)
	}
	if received.ID != evt.ID || received.ItemCount != 2 || len(received.Items) != 2 {
		t.Fatalf("unexpected body %+v", received)
	}
	if received.Items[0].Title != "Heatwave advisory" {
		t.Fatalf("items out of order: %+v", received.Items)
	}
	if received.Summary.Total != 2 || received.Summary.BySource["Medical News Today"] != 1 {
		t.Fatalf("summary not carried: %+v", received.Summary)
	}
}

func TestHTTPPublisherErrorIncludesStatusAndBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	pub, err := newHTTPPublisher(context.Background(), PublisherConfig{
		ID:   "hook",
		Type: TypeHTTP,
		HTTP: &HTTPPublisherConfig{URL: srv.URL},
	}, nil)
	if err != nil {
		t.Fatalf("newHTTPPublisher: %v", err)
	}

	err = pub.Publish(context.Background(), sampleEvent())
	if err == nil {
		t.Fatal("expected error on non-2xx response")
	}
	if want := "http response status 429: quota exceeded"; err.Error() != want {
		t.Fatalf("error = %q, want %q", err.Error(), want)
	}
}

func TestHTTPPublisherRequiresConfigBlock(t *testing.T) {
	if _, err := newHTTPPublisher(context.Background(), PublisherConfig{ID: "hook", Type: TypeHTTP}, nil); err == nil {
		t.Fatal("expected error without http block")
	}
}
