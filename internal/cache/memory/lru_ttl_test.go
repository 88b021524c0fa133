package memory

import (
	"testing"
	"time"
)

func TestLRUTTLEvictsOldest(t *testing.T) {
	c := NewLRUTTL[string, int](2, time.Minute)
	c.Set("a", 1)
	c.Set("b", 2)
	c.Set("c", 3)

	if _, ok := c.Get("a"); ok {
		t.Fatal("oldest entry should have been evicted")
	}
	if v, ok := c.Get("b"); !ok || v != 2 {
		t.Fatalf("b = %d, %v", v, ok)
	}
	if c.Len() != 2 {
		t.Fatalf("len = %d", c.Len())
	}
}

func TestLRUTTLGetRefreshesRecency(t *testing.T) {
	c := NewLRUTTL[string, int](2, time.Minute)
	c.Set("a", 1)
	c.Set("b", 2)
	c.Get("a")
	c.Set("c", 3)

	if _, ok := c.Get("a"); !ok {
		t.Fatal("recently read entry evicted")
	}
	if _, ok := c.Get("b"); ok {
		t.Fatal("least recently used entry survived")
	}
}

func TestLRUTTLExpiry(t *testing.T) {
	c := NewLRUTTL[string, string](4, 10*time.Millisecond)
	c.Set("k", "v")
	if _, ok := c.Get("k"); !ok {
		t.Fatal("fresh entry missing")
	}
	time.Sleep(20 * time.Millisecond)
	if _, ok := c.Get("k"); ok {
		t.Fatal("expired entry returned")
	}
	c.Set("k", "w")
	if v, ok := c.Get("k"); !ok || v != "w" {
		t.Fatalf("rewrite after expiry = %q, %v", v, ok)
	}
}

func TestLRUTTLNilSafe(t *testing.T) {
	var c *LRUTTL[string, int]
	c.Set("a", 1)
	c.Delete("a")
	if _, ok := c.Get("a"); ok {
		t.Fatal("nil cache returned a value")
	}
	if c.Len() != 0 {
		t.Fatal("nil cache has entries")
	}
}
