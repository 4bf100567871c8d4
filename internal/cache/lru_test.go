package cache

import (
	"testing"
	"time"
)

func TestGetSet(t *testing.T) {
	c := NewLRU[int](4, time.Minute)

	if _, ok := c.Get("missing"); ok {
		t.Errorf("hit on empty cache")
	}

	c.Set("a", 1)
	got, ok := c.Get("a")
	if !ok || got != 1 {
		t.Errorf("Get(a) = %d, %v", got, ok)
	}

	c.Set("a", 2)
	got, _ = c.Get("a")
	if got != 2 {
		t.Errorf("overwrite lost: %d", got)
	}
	if c.Len() != 1 {
		t.Errorf("Len = %d, want 1", c.Len())
	}
}

func TestEvictsLeastRecentlyUsed(t *testing.T) {
	c := NewLRU[int](2, time.Minute)

	c.Set("a", 1)
	c.Set("b", 2)
	c.Get("a") // refresh a; b is now oldest
	c.Set("c", 3)

	if _, ok := c.Get("b"); ok {
		t.Errorf("b survived eviction")
	}
	if _, ok := c.Get("a"); !ok {
		t.Errorf("a evicted despite recent use")
	}
	if _, ok := c.Get("c"); !ok {
		t.Errorf("c missing")
	}
}

func TestTTLExpiry(t *testing.T) {
	c := NewLRU[int](4, 10*time.Millisecond)

	c.Set("a", 1)
	time.Sleep(20 * time.Millisecond)

	if _, ok := c.Get("a"); ok {
		t.Errorf("expired entry returned")
	}
	// Lazy expiry drops the entry on read.
	if c.Len() != 0 {
		t.Errorf("Len = %d after expired read, want 0", c.Len())
	}
}

func TestDelete(t *testing.T) {
	c := NewLRU[string](4, time.Minute)

	c.Set("a", "x")
	c.Delete("a")
	c.Delete("never-existed")

	if _, ok := c.Get("a"); ok {
		t.Errorf("deleted entry returned")
	}
}
