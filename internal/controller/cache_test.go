package controller

import (
	"fmt"
	"testing"
	"time"
)

func TestResponseCacheTTL(t *testing.T) {
	cache := newResponseCache(time.Minute, 10)
	now := time.Unix(1000, 0)
	cache.now = func() time.Time { return now }

	cache.put("k", []byte("payload"))

	if _, ok := cache.get("k"); !ok {
		t.Fatal("expected fresh entry to hit")
	}

	now = now.Add(59 * time.Second)
	if _, ok := cache.get("k"); !ok {
		t.Error("entry expired before TTL")
	}

	now = now.Add(2 * time.Second)
	if _, ok := cache.get("k"); ok {
		t.Error("entry survived past TTL")
	}
}

func TestResponseCacheEvictsOldest(t *testing.T) {
	cache := newResponseCache(time.Hour, 3)
	now := time.Unix(1000, 0)
	cache.now = func() time.Time { return now }

	for i := 0; i < 3; i++ {
		cache.put(fmt.Sprintf("k%d", i), []byte("v"))
		now = now.Add(time.Second)
	}

	// Over the limit: the globally oldest entry (k0) goes.
	cache.put("k3", []byte("v"))

	if _, ok := cache.get("k0"); ok {
		t.Error("oldest entry k0 should have been evicted")
	}
	for _, k := range []string{"k1", "k2", "k3"} {
		if _, ok := cache.get(k); !ok {
			t.Errorf("entry %s should have survived eviction", k)
		}
	}
}

func TestResponseCacheOverwriteDoesNotEvict(t *testing.T) {
	cache := newResponseCache(time.Hour, 2)
	now := time.Unix(1000, 0)
	cache.now = func() time.Time { return now }

	cache.put("a", []byte("1"))
	now = now.Add(time.Second)
	cache.put("b", []byte("1"))
	now = now.Add(time.Second)
	cache.put("a", []byte("2"))

	got, ok := cache.get("b")
	if !ok {
		t.Fatal("overwriting an existing key must not evict others")
	}
	_ = got

	if v, _ := cache.get("a"); string(v) != "2" {
		t.Errorf("a = %q, want overwritten value 2", v)
	}
}
