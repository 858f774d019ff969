package limits

import (
	"fmt"
	"testing"
	"time"
)

func TestCachePutGet(t *testing.T) {
	c := NewCache[string](time.Hour, 10)

	if _, ok := c.Get("a"); ok {
		t.Fatalf("expected miss on empty cache")
	}

	c.Put("a", "one")
	got, ok := c.Get("a")
	if !ok || got != "one" {
		t.Fatalf("expected hit with %q, got %q (hit=%v)", "one", got, ok)
	}
}

func TestCacheExpiry(t *testing.T) {
	c := NewCache[string](time.Hour, 10)

	base := time.Now()
	c.now = func() time.Time { return base }

	c.Put("a", "one")

	c.now = func() time.Time { return base.Add(59 * time.Minute) }
	if _, ok := c.Get("a"); !ok {
		t.Fatalf("expected hit before TTL elapsed")
	}

	c.now = func() time.Time { return base.Add(time.Hour) }
	if _, ok := c.Get("a"); ok {
		t.Fatalf("expected miss after TTL elapsed")
	}

	if c.Len() != 0 {
		t.Fatalf("expected expired entry to be removed, len=%d", c.Len())
	}
}

func TestCacheEvictsLeastRecentlyCached(t *testing.T) {
	c := NewCache[int](time.Hour, 3)

	for i := 0; i < 3; i++ {
		c.Put(fmt.Sprintf("k%d", i), i)
	}

	c.Put("k3", 3)

	if _, ok := c.Get("k0"); ok {
		t.Fatalf("expected oldest entry to be evicted")
	}
	for i := 1; i <= 3; i++ {
		if _, ok := c.Get(fmt.Sprintf("k%d", i)); !ok {
			t.Fatalf("expected k%d to survive eviction", i)
		}
	}
	if c.Len() != 3 {
		t.Fatalf("expected len 3, got %d", c.Len())
	}
}

func TestCacheReputrefreshesEntry(t *testing.T) {
	c := NewCache[int](time.Hour, 2)

	c.Put("a", 1)
	c.Put("b", 2)
	c.Put("a", 3) // re-store: "a" becomes the newest entry
	c.Put("c", 4) // evicts "b", not "a"

	if _, ok := c.Get("b"); ok {
		t.Fatalf("expected b to be evicted")
	}
	got, ok := c.Get("a")
	if !ok || got != 3 {
		t.Fatalf("expected refreshed a=3, got %d (hit=%v)", got, ok)
	}
}
