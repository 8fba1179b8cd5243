package caches

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"bim-review-service/internal/storage/cache"
)

type MemoryCache struct {
	data        sync.Map // map[string][]byte
	metadata    sync.Map // map[string]*MemoryCacheEntry
	maxSize     int64
	currentSize int64
	ttl         time.Duration
	log         *zap.Logger
	stop        chan struct{}
	stopOnce    sync.Once

	hits   atomic.Int64
	misses atomic.Int64
}

type MemoryCacheEntry struct {
	Size        int64
	CreatedAt   time.Time
	LastAccess  atomic.Int64 // unix nanos
	AccessCount atomic.Int64
}

func NewMemoryCache(maxSizeBytes int64, ttl time.Duration, log *zap.Logger) *MemoryCache {
	mc := &MemoryCache{
		maxSize: maxSizeBytes,
		ttl:     ttl,
		log:     log.Named("memory_cache"),
		stop:    make(chan struct{}),
	}
	go mc.cleanupExpired(5 * time.Minute)
	return mc
}

func (mc *MemoryCache) Name() string {
	return "MEMORY"
}

func (mc *MemoryCache) Store(key string, data []byte) error {
	size := int64(len(data))
	if size > mc.maxSize {
		return fmt.Errorf("object of size %d exceeds memory cache capacity %d", size, mc.maxSize)
	}
	if _, loaded := mc.data.Load(key); loaded {
		mc.Delete(key)
	}

	for atomic.LoadInt64(&mc.currentSize)+size > mc.maxSize {
		if !mc.evictLRU() {
			return fmt.Errorf("unable to free space for object of size %d", size)
		}
	}

	entry := &MemoryCacheEntry{Size: size, CreatedAt: time.Now()}
	entry.LastAccess.Store(time.Now().UnixNano())
	mc.data.Store(key, data)
	mc.metadata.Store(key, entry)
	atomic.AddInt64(&mc.currentSize, size)
	mc.log.Debug("stored", zap.String("key", key), zap.Int64("bytes", size))
	return nil
}

func (mc *MemoryCache) Get(key string) ([]byte, error) {
	if value, ok := mc.data.Load(key); ok {
		mc.updateAccess(key)
		mc.hits.Add(1)
		return value.([]byte), nil
	}
	mc.misses.Add(1)
	return nil, cache.ErrMiss
}

func (mc *MemoryCache) Exists(key string) (bool, error) {
	_, exists := mc.data.Load(key)
	return exists, nil
}

func (mc *MemoryCache) Delete(key string) error {
	if meta, ok := mc.metadata.LoadAndDelete(key); ok {
		entry := meta.(*MemoryCacheEntry)
		atomic.AddInt64(&mc.currentSize, -entry.Size)
		mc.data.Delete(key)
	}
	return nil
}

func (mc *MemoryCache) Clear() error {
	mc.data.Range(func(key, _ any) bool {
		mc.data.Delete(key)
		return true
	})
	mc.metadata.Range(func(key, _ any) bool {
		mc.metadata.Delete(key)
		return true
	})
	atomic.StoreInt64(&mc.currentSize, 0)
	mc.hits.Store(0)
	mc.misses.Store(0)
	return nil
}

func (mc *MemoryCache) GetStats() cache.LayerStats {
	hits := mc.hits.Load()
	misses := mc.misses.Load()

	objectCount := 0
	mc.data.Range(func(_, _ any) bool {
		objectCount++
		return true
	})

	return cache.LayerStats{
		Name:         "Memory",
		Objects:      objectCount,
		SizeBytes:    atomic.LoadInt64(&mc.currentSize),
		Hits:         hits,
		Misses:       misses,
		HitRate:      cache.HitRate(hits, misses),
		AvgLatencyMs: 0.1,
	}
}

// Close stops the expiry loop.
func (mc *MemoryCache) Close() {
	mc.stopOnce.Do(func() { close(mc.stop) })
}

func (mc *MemoryCache) updateAccess(key string) {
	if meta, ok := mc.metadata.Load(key); ok {
		entry := meta.(*MemoryCacheEntry)
		entry.LastAccess.Store(time.Now().UnixNano())
		entry.AccessCount.Add(1)
	}
}

func (mc *MemoryCache) evictLRU() bool {
	var oldestKey string
	var oldest int64

	mc.metadata.Range(func(key, value any) bool {
		entry := value.(*MemoryCacheEntry)
		if last := entry.LastAccess.Load(); oldestKey == "" || last < oldest {
			oldestKey = key.(string)
			oldest = last
		}
		return true
	})

	if oldestKey == "" {
		return false
	}
	mc.Delete(oldestKey)
	return true
}

func (mc *MemoryCache) cleanupExpired(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-mc.stop:
			return
		case now := <-ticker.C:
			mc.expire(now)
		}
	}
}

func (mc *MemoryCache) expire(now time.Time) int {
	var expiredKeys []string
	mc.metadata.Range(func(key, value any) bool {
		entry := value.(*MemoryCacheEntry)
		if now.Sub(entry.CreatedAt) > mc.ttl {
			expiredKeys = append(expiredKeys, key.(string))
		}
		return true
	})
	for _, key := range expiredKeys {
		mc.Delete(key)
	}
	if len(expiredKeys) > 0 {
		mc.log.Info("cleaned up expired revisions", zap.Int("count", len(expiredKeys)))
	}
	return len(expiredKeys)
}
