package publishers

import (
	"context"
	"errors"
	"strings"
	"testing"
)

type stubPublisher struct {
	id       string
	typ      string
	err      error
	received []Event
}

func (s *stubPublisher) ID() string   { return s.id }
func (s *stubPublisher) Type() string { return s.typ }
func (s *stubPublisher) Publish(_ context.Context, evt Event) error {
	s.received = append(s.received, evt)
	return s.err
}

// closingPublisher also holds a connection that Fanout.Close must release.
type closingPublisher struct {
	stubPublisher
	closed   int
	closeErr error
}

func (c *closingPublisher) Close() error {
	c.closed++
	return c.closeErr
}

func TestFanoutDeliversSnapshotAndAggregatesErrors(t *testing.T) {
	ok := &stubPublisher{id: "hook", typ: TypeHTTP}
	bad := &stubPublisher{id: "queue", typ: TypeSQS, err: errors.New("throttled")}
	fanout := NewFanout([]Publisher{ok, nil, bad})
	if fanout.Size() != 2 {
		t.Fatalf("nil publishers must be dropped, size=%d", fanout.Size())
	}

	evt := sampleEvent()
	count, err := fanout.Publish(context.Background(), evt)
	if count != 1 {
		t.Fatalf("expected 1 success, got %d", count)
	}
	if err == nil || !strings.Contains(err.Error(), "sqs publisher[queue]") {
		t.Fatalf("expected error naming the failed publisher, got %v", err)
	}
	if len(ok.received) != 1 || ok.received[0].ID != evt.ID || ok.received[0].ItemCount != 2 {
		t.Fatalf("snapshot not forwarded intact: %+v", ok.received)
	}
	if len(bad.received) != 1 {
		t.Fatalf("failing publisher must still be attempted")
	}
}

func TestFanoutCloseReleasesClosers(t *testing.T) {
	plain := &stubPublisher{id: "hook", typ: TypeHTTP}
	good := &closingPublisher{stubPublisher: stubPublisher{id: "pubsub", typ: TypeGCPPubSub}}
	broken := &closingPublisher{
		stubPublisher: stubPublisher{id: "pubsub-2", typ: TypeGCPPubSub},
		closeErr:      errors.New("stream reset"),
	}

	err := NewFanout([]Publisher{plain, good, broken}).Close()
	if good.closed != 1 || broken.closed != 1 {
		t.Fatalf("expected every closer closed once, got %d/%d", good.closed, broken.closed)
	}
	if err == nil || !strings.Contains(err.Error(), "pubsub-2") {
		t.Fatalf("expected close error for pubsub-2, got %v", err)
	}

	var empty *Fanout
	if err := empty.Close(); err != nil {
		t.Fatalf("nil fanout close: %v", err)
	}
}

func TestBuildAllSkipsDisabledEntries(t *testing.T) {
	off := false
	pubs, err := BuildAll(context.Background(), DefaultRegistry(), []PublisherConfig{
		{ID: "hook", Type: TypeHTTP, HTTP: &HTTPPublisherConfig{URL: "https://example.com/hook"}},
		{ID: "old-hook", Type: TypeHTTP, Enabled: &off, HTTP: &HTTPPublisherConfig{URL: "https://example.com/old"}},
	}, nil)
	if err != nil {
		t.Fatalf("BuildAll: %v", err)
	}
	if len(pubs) != 1 || pubs[0].ID() != "hook" || pubs[0].Type() != TypeHTTP {
		t.Fatalf("unexpected publishers %+v", pubs)
	}

	if _, err := BuildAll(context.Background(), DefaultRegistry(), []PublisherConfig{{ID: "k", Type: "kafka"}}, nil); err == nil {
		t.Fatal("expected error for unregistered type")
	}
}
