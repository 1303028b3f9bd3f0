package cache

import (
	"testing"
	"time"
)

func TestLRUCacheGetSet(t *testing.T) {
	c := NewLRUCache[string](2, time.Minute)

	if _, ok := c.Get("missing"); ok {
		t.Error("expected miss")
	}

	c.Set("a", "1")
	if got, ok := c.Get("a"); !ok || got != "1" {
		t.Errorf("got %q, %v", got, ok)
	}

	c.Set("a", "2")
	if got, _ := c.Get("a"); got != "2" {
		t.Errorf("overwrite got %q", got)
	}
	if c.Size() != 1 {
		t.Errorf("size = %d", c.Size())
	}
}

func TestLRUCacheEviction(t *testing.T) {
	c := NewLRUCache[int](2, time.Minute)
	c.Set("a", 1)
	c.Set("b", 2)
	c.Get("a") // a is now most recently used
	c.Set("c", 3)

	if _, ok := c.Get("b"); ok {
		t.Error("expected b evicted")
	}
	if _, ok := c.Get("a"); !ok {
		t.Error("expected a retained")
	}
}

func TestLRUCacheTTL(t *testing.T) {
	c := NewLRUCache[int](10, time.Millisecond)
	c.Set("a", 1)
	time.Sleep(5 * time.Millisecond)

	if _, ok := c.Get("a"); ok {
		t.Error("expected expiry")
	}

	c.Set("b", 2)
	time.Sleep(5 * time.Millisecond)
	if got := c.CleanExpired(); got != 1 {
		t.Errorf("CleanExpired = %d", got)
	}
	if c.Size() != 0 {
		t.Errorf("size = %d", c.Size())
	}
}

func TestLRUCacheDeletePrefix(t *testing.T) {
	c := NewLRUCache[int](10, time.Minute)
	c.Set("summary:alice:ytd", 1)
	c.Set("summary:alice:q1", 2)
	c.Set("summary:bob:ytd", 3)

	if got := c.DeletePrefix("summary:alice:"); got != 2 {
		t.Errorf("DeletePrefix = %d", got)
	}
	if _, ok := c.Get("summary:bob:ytd"); !ok {
		t.Error("unrelated key removed")
	}
	if c.Size() != 1 {
		t.Errorf("size = %d", c.Size())
	}
}
