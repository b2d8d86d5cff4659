package relay

import (
	"testing"
	"time"
)

func TestModelsCacheMissWhenEmpty(t *testing.T) {
	cache := NewModelsCache(time.Hour)
	if got := cache.Get(); got != nil {
		t.Errorf("Get() on empty cache = %v, want nil", got)
	}
}

func TestModelsCacheHitWithinTTL(t *testing.T) {
	cache := NewModelsCache(time.Hour)
	cache.Set([]string{"gemini-1.5-pro", "gemini-1.5-flash"})

	got := cache.Get()
	if len(got) != 2 || got[0] != "gemini-1.5-pro" {
		t.Errorf("Get() = %v, want the stored list", got)
	}
	if cache.FetchedAt().IsZero() {
		t.Errorf("FetchedAt() is zero after Set")
	}
}

func TestModelsCacheExpiry(t *testing.T) {
	cache := NewModelsCache(time.Nanosecond)
	cache.Set([]string{"gemini-1.5-pro"})

	time.Sleep(time.Millisecond)
	if got := cache.Get(); got != nil {
		t.Errorf("Get() past TTL = %v, want nil", got)
	}
}
