package cache

import (
	"testing"
	"time"

	"github.com/samvad-hq/samvad-health-news/internal/domain"
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func TestSnapshotServedUntilTTL(t *testing.T) {
	start := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)
	clk := &clock{t: start}
	c := New(15*time.Minute, WithClock(clk.now))

	if _, ok := c.Get(); ok {
		t.Fatalf("empty cache reported a hit")
	}

	c.Put(Snapshot{Items: []domain.NewsItem{{Title: "one"}}, BuiltAt: start})

	for _, offset := range []time.Duration{0, time.Minute, 15*time.Minute - time.Nanosecond} {
		clk.t = start.Add(offset)
		snap, ok := c.Get()
		if !ok {
			t.Fatalf("expected hit at +%s", offset)
		}
		if len(snap.Items) != 1 || !snap.BuiltAt.Equal(start) {
			t.Fatalf("unexpected snapshot at +%s: %+v", offset, snap)
		}
	}

	clk.t = start.Add(15*time.Minute + time.Millisecond)
	if _, ok := c.Get(); ok {
		t.Fatalf("expected miss after TTL")
	}
}

func TestPutStampsBuiltAt(t *testing.T) {
	clk := &clock{t: time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)}
	c := New(time.Minute, WithClock(clk.now))
	c.Put(Snapshot{})
	snap, ok := c.Get()
	if !ok || !snap.BuiltAt.Equal(clk.t) {
		t.Fatalf("expected BuiltAt stamped with clock, got %+v ok=%v", snap, ok)
	}
}

func TestGetReturnsCopy(t *testing.T) {
	c := New(time.Minute)
	c.Put(Snapshot{Items: []domain.NewsItem{{Title: "original"}}})

	snap, _ := c.Get()
	snap.Items[0].Title = "changed"

	again, _ := c.Get()
	if again.Items[0].Title != "original" {
		t.Fatalf("cached snapshot was mutated through Get")
	}
}

func TestInvalidate(t *testing.T) {
	c := New(0)
	if c.TTL() != DefaultTTL {
		t.Fatalf("expected default ttl, got %s", c.TTL())
	}
	c.Put(Snapshot{Items: []domain.NewsItem{{Title: "x"}}})
	c.Invalidate()
	if _, ok := c.Get(); ok {
		t.Fatalf("expected miss after Invalidate")
	}
}
