package cache

import (
	"fmt"
	"testing"
	"time"
)

func TestLRUCache_GetSet(t *testing.T) {
	c := NewLRUCache[string](2, time.Minute)
	c.Set("a", "1")
	c.Set("b", "2")

	if v, ok := c.Get("a"); !ok || v != "1" {
		t.Fatalf("Get(a) = %q, %v", v, ok)
	}

	// "b" is now least recently used.
	c.Set("c", "3")
	if _, ok := c.Get("b"); ok {
		t.Error("expected b to be evicted")
	}
	if c.Size() != 2 {
		t.Errorf("Size() = %d, want 2", c.Size())
	}

	c.Set("a", "10")
	if v, _ := c.Get("a"); v != "10" {
		t.Errorf("overwrite: Get(a) = %q, want 10", v)
	}
}

func TestLRUCache_Expiry(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewLRUCache[int](10, time.Minute)
	c.now = func() time.Time { return now }

	c.Set("a", 1)
	c.Set("b", 2)
	now = now.Add(30 * time.Second)
	c.Set("c", 3)

	now = now.Add(45 * time.Second)
	if _, ok := c.Get("a"); ok {
		t.Error("expected a to be expired")
	}
	if removed := c.CleanExpired(); removed != 1 {
		t.Errorf("CleanExpired() = %d, want 1", removed)
	}
	if v, ok := c.Get("c"); !ok || v != 3 {
		t.Errorf("Get(c) = %d, %v", v, ok)
	}
}

func TestLRUCache_Generation(t *testing.T) {
	c := NewLRUCache[int](10, time.Minute)

	gen := c.Generation()
	c.Delete("other")
	if c.SetIfGeneration("a", 1, gen) {
		t.Fatal("stale generation must not store")
	}
	if _, ok := c.Get("a"); ok {
		t.Fatal("value stored despite invalidation")
	}

	gen = c.Generation()
	if !c.SetIfGeneration("a", 2, gen) {
		t.Fatal("current generation should store")
	}
	if v, ok := c.Get("a"); !ok || v != 2 {
		t.Fatalf("Get(a) = %d, %v", v, ok)
	}
}

func TestManager_CleanNow(t *testing.T) {
	now := time.Now()
	c := NewLRUCache[int](100, time.Second)
	c.now = func() time.Time { return now }
	for i := 0; i < 5; i++ {
		c.Set(fmt.Sprint(i), i)
	}

	m := NewManager()
	m.Register(c)
	now = now.Add(2 * time.Second)
	if n := m.CleanNow(); n != 5 {
		t.Errorf("CleanNow() = %d, want 5", n)
	}

	m.StartCleanup(10 * time.Millisecond)
	m.Stop()
	m.Stop()
}
