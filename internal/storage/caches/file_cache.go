package caches

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"bim-review-service/internal/storage/cache"
)

const cacheFileExt = ".rev"

type FileSystemCache struct {
	basePath    string
	maxSize     int64
	currentSize int64
	ttl         time.Duration
	mu          sync.RWMutex
	log         *zap.Logger

	hits   atomic.Int64
	misses atomic.Int64
}

func NewFileSystemCache(basePath string, maxSizeBytes int64, ttl time.Duration, log *zap.Logger) (*FileSystemCache, error) {
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("create cache dir %s: %w", basePath, err)
	}
	fsc := &FileSystemCache{
		basePath: basePath,
		maxSize:  maxSizeBytes,
		ttl:      ttl,
		log:      log.Named("file_cache"),
	}
	fsc.calculateCurrentSize()
	return fsc, nil
}

func (fsc *FileSystemCache) Name() string {
	return "FILESYSTEM"
}

func (fsc *FileSystemCache) Store(key string, data []byte) error {
	fsc.mu.Lock()
	defer fsc.mu.Unlock()

	size := int64(len(data))
	if size > fsc.maxSize {
		return fmt.Errorf("object of size %d exceeds file cache capacity %d", size, fsc.maxSize)
	}
	filePath := fsc.getFilePath(key)
	if stat, err := os.Stat(filePath); err == nil {
		atomic.AddInt64(&fsc.currentSize, -stat.Size())
	}

	for atomic.LoadInt64(&fsc.currentSize)+size > fsc.maxSize {
		if !fsc.evictOldestFile() {
			return fmt.Errorf("unable to free space for file of size %d", size)
		}
	}

	if err := os.WriteFile(filePath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write cache file: %w", err)
	}
	atomic.AddInt64(&fsc.currentSize, size)
	fsc.log.Debug("stored", zap.String("key", key), zap.Int64("bytes", size))
	return nil
}

func (fsc *FileSystemCache) Get(key string) ([]byte, error) {
	fsc.mu.RLock()
	defer fsc.mu.RUnlock()

	filePath := fsc.getFilePath(key)
	stat, err := os.Stat(filePath)
	if os.IsNotExist(err) || (err == nil && time.Since(stat.ModTime()) > fsc.ttl) {
		fsc.misses.Add(1)
		return nil, cache.ErrMiss
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		fsc.misses.Add(1)
		return nil, fmt.Errorf("failed to read cache file: %w", err)
	}
	fsc.hits.Add(1)
	return data, nil
}

func (fsc *FileSystemCache) Exists(key string) (bool, error) {
	_, err := os.Stat(fsc.getFilePath(key))
	return !os.IsNotExist(err), nil
}

func (fsc *FileSystemCache) Delete(key string) error {
	fsc.mu.Lock()
	defer fsc.mu.Unlock()

	filePath := fsc.getFilePath(key)
	if stat, err := os.Stat(filePath); err == nil {
		if err := os.Remove(filePath); err != nil {
			return err
		}
		atomic.AddInt64(&fsc.currentSize, -stat.Size())
	}
	return nil
}

func (fsc *FileSystemCache) Clear() error {
	fsc.mu.Lock()
	defer fsc.mu.Unlock()

	if err := os.RemoveAll(fsc.basePath); err != nil {
		return err
	}
	if err := os.MkdirAll(fsc.basePath, 0o755); err != nil {
		return err
	}
	atomic.StoreInt64(&fsc.currentSize, 0)
	fsc.hits.Store(0)
	fsc.misses.Store(0)
	return nil
}

func (fsc *FileSystemCache) GetStats() cache.LayerStats {
	hits := fsc.hits.Load()
	misses := fsc.misses.Load()

	return cache.LayerStats{
		Name:         "FileSystem",
		Objects:      fsc.countFiles(),
		SizeBytes:    atomic.LoadInt64(&fsc.currentSize),
		Hits:         hits,
		Misses:       misses,
		HitRate:      cache.HitRate(hits, misses),
		AvgLatencyMs: 5,
	}
}

// getFilePath maps a revision key, which contains slashes, to a flat file name.
func (fsc *FileSystemCache) getFilePath(key string) string {
	sum := sha256.Sum256([]byte(key))
	return filepath.Join(fsc.basePath, hex.EncodeToString(sum[:])+cacheFileExt)
}

func (fsc *FileSystemCache) walkCacheFiles(fn func(path string, info os.FileInfo)) {
	filepath.Walk(fsc.basePath, func(path string, info os.FileInfo, err error) error {
		if err == nil && !info.IsDir() && filepath.Ext(path) == cacheFileExt {
			fn(path, info)
		}
		return nil
	})
}

func (fsc *FileSystemCache) calculateCurrentSize() {
	var totalSize int64
	fsc.walkCacheFiles(func(_ string, info os.FileInfo) {
		totalSize += info.Size()
	})
	atomic.StoreInt64(&fsc.currentSize, totalSize)
}

func (fsc *FileSystemCache) countFiles() int {
	count := 0
	fsc.walkCacheFiles(func(string, os.FileInfo) { count++ })
	return count
}

func (fsc *FileSystemCache) evictOldestFile() bool {
	var oldestPath string
	var oldestTime time.Time
	var oldestSize int64

	fsc.walkCacheFiles(func(path string, info os.FileInfo) {
		if oldestPath == "" || info.ModTime().Before(oldestTime) {
			oldestPath, oldestTime, oldestSize = path, info.ModTime(), info.Size()
		}
	})
	if oldestPath == "" || os.Remove(oldestPath) != nil {
		return false
	}
	atomic.AddInt64(&fsc.currentSize, -oldestSize)
	return true
}
