package cache

import (
	"sync"
	"testing"
	"time"
)

func TestCacheMetrics_TaskListReads(t *testing.T) {
	c := NewMultiLevelCache(nil, time.Minute)
	defer c.Close()
	key := "tasks:user:42"

	var list []string
	if err := c.Get(key, &list); err != ErrCacheMiss {
		t.Fatalf("Expected a miss on a cold list, got %v", err)
	}
	_ = c.Set(key, []string{"write report"}, time.Minute)
	_ = c.Get(key, &list)
	_ = c.Get(key, &list)
	_ = c.Delete(key)

	stats := c.GetMetrics().GetStats()
	want := CacheStats{Hits: 2, Misses: 1, Sets: 1, Deletes: 1}
	if stats != want {
		t.Errorf("GetStats() = %+v, want %+v", stats, want)
	}

	if rate := c.GetMetrics().HitRate(); rate < 66.6 || rate > 66.7 {
		t.Errorf("Expected a two-thirds hit rate, got %.2f", rate)
	}
	if c.Stats()["metrics"] != want {
		t.Errorf("Expected Stats() to report the same counters, got %v", c.Stats()["metrics"])
	}

	c.GetMetrics().Reset()
	if c.GetMetrics().GetStats() != (CacheStats{}) || c.GetMetrics().HitRate() != 0 {
		t.Error("Expected Reset to clear every counter")
	}
}

func TestCacheMetrics_ConcurrentReaders(t *testing.T) {
	c := NewMultiLevelCache(nil, time.Minute)
	defer c.Close()
	_ = c.Set("tasks:user:1", []string{"a"}, time.Minute)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			var list []string
			for j := 0; j < 50; j++ {
				_ = c.Get("tasks:user:1", &list)
				_ = c.Get("tasks:user:missing", &list)
			}
		}()
	}
	wg.Wait()

	stats := c.GetMetrics().GetStats()
	if stats.Hits != 400 || stats.Misses != 400 {
		t.Errorf("Expected 400 hits and 400 misses, got %+v", stats)
	}
}
