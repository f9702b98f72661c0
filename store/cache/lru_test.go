package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLRU_BasicOperations(t *testing.T) {
	lru := NewLRU(100, time.Minute)

	t.Run("SetAndGet", func(t *testing.T) {
		lru.Set("key1", []byte("value1"), 0)

		val, ok, _ := lru.Get("key1")
		assert.True(t, ok)
		assert.Equal(t, []byte("value1"), val)
	})

	t.Run("GetNonExistent", func(t *testing.T) {
		val, ok, _ := lru.Get("nonexistent")
		assert.False(t, ok)
		assert.Nil(t, val)
	})

	t.Run("UpdateExisting", func(t *testing.T) {
		lru.Set("key2", []byte("original"), 0)
		lru.Set("key2", []byte("updated"), 0)

		val, ok, _ := lru.Get("key2")
		assert.True(t, ok)
		assert.Equal(t, []byte("updated"), val)
	})
}

func TestLRU_Expiration(t *testing.T) {
	lru := NewLRU(100, time.Minute)

	lru.Set("expiring", []byte("value"), 50*time.Millisecond)

	val, ok, _ := lru.Get("expiring")
	assert.True(t, ok)
	assert.Equal(t, []byte("value"), val)

	time.Sleep(60 * time.Millisecond)

	// Expired entry is removed on lookup and counted as a miss.
	before := lru.Stats().Count
	val, ok, events := lru.Get("expiring")
	assert.False(t, ok)
	assert.Nil(t, val)
	require.Len(t, events, 1)
	assert.Equal(t, OpDelete, events[0].Op)
	assert.Equal(t, before-1, lru.Stats().Count)
}

func TestLRU_Eviction(t *testing.T) {
	lru := NewLRU(3, time.Minute)

	lru.Set("key1", []byte("1"), 0)
	lru.Set("key2", []byte("2"), 0)
	lru.Set("key3", []byte("3"), 0)
	assert.Equal(t, 3, lru.Stats().Count)

	// Reading key1 makes key2 the least recently accessed.
	lru.Get("key1")

	events := lru.Set("key4", []byte("4"), 0)

	// Exactly one eviction: key2.
	deletes := 0
	for _, e := range events {
		if e.Op == OpDelete {
			deletes++
			assert.Equal(t, "key2", e.Key)
		}
	}
	assert.Equal(t, 1, deletes)
	assert.Equal(t, 3, lru.Stats().Count)

	_, ok, _ := lru.Get("key1")
	assert.True(t, ok, "recently-read entry must survive eviction")
	_, ok, _ = lru.Get("key2")
	assert.False(t, ok)
	_, ok, _ = lru.Get("key4")
	assert.True(t, ok)
}

func TestLRU_EvictionTieBreaksByInsertionOrder(t *testing.T) {
	lru := NewLRU(2, time.Minute)

	// Neither entry is ever read; the earlier insert loses.
	lru.Set("older", []byte("a"), 0)
	lru.Set("newer", []byte("b"), 0)
	lru.Set("newest", []byte("c"), 0)

	_, ok, _ := lru.Get("older")
	assert.False(t, ok)
	_, ok, _ = lru.Get("newer")
	assert.True(t, ok)
}

func TestLRU_HitRate(t *testing.T) {
	lru := NewLRU(10, time.Minute)
	lru.Set("k", []byte("v"), 0)

	lru.Get("k")
	lru.Get("k")
	lru.Get("k")
	lru.Get("absent")

	stats := lru.Stats()
	assert.Equal(t, int64(3), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)
	assert.InDelta(t, 75.0, stats.HitRate, 0.001)
}

func TestLRU_Clear(t *testing.T) {
	lru := NewLRU(10, time.Minute)
	lru.Set("k1", []byte("v1"), 0)
	lru.Set("k2", []byte("v2"), 0)
	lru.Get("k1")
	lru.Get("missing")

	events := lru.Clear()
	assert.Len(t, events, 2)

	stats := lru.Stats()
	assert.Equal(t, 0, stats.Count)
	assert.Equal(t, int64(0), stats.Hits)
	assert.Equal(t, int64(0), stats.Misses)
	assert.Equal(t, int64(0), stats.ApproxBytes)
}

func TestLRU_SweepExpired(t *testing.T) {
	lru := NewLRU(10, time.Minute)
	lru.Set("short", []byte("v"), 30*time.Millisecond)
	lru.Set("long", []byte("v"), time.Minute)

	time.Sleep(40 * time.Millisecond)

	events := lru.SweepExpired()
	require.Len(t, events, 1)
	assert.Equal(t, "short", events[0].Key)
	assert.Equal(t, 1, lru.Stats().Count)
}

func TestLRU_ApproxBytes(t *testing.T) {
	lru := NewLRU(10, time.Minute)
	lru.Set("k1", []byte("12345"), 0)
	assert.Equal(t, int64(5), lru.Stats().ApproxBytes)

	lru.Set("k1", []byte("123"), 0)
	assert.Equal(t, int64(3), lru.Stats().ApproxBytes)

	lru.Invalidate(func(string) bool { return true })
	assert.Equal(t, int64(0), lru.Stats().ApproxBytes)
}
