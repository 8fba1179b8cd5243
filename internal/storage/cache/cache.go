// Package cache defines the layer contract shared by the revision cache tiers.
package cache

import "github.com/pkg/errors"

// ErrMiss is returned by Get when the key is not cached.
var ErrMiss = errors.New("cache miss")

type CacheLayer interface {
	Name() string
	Store(key string, data []byte) error
	Get(key string) ([]byte, error)
	Exists(key string) (bool, error)
	Delete(key string) error
	Clear() error
	GetStats() LayerStats
}

type LayerStats struct {
	Name         string  `json:"name"`
	Objects      int     `json:"objects"`
	SizeBytes    int64   `json:"sizeBytes"`
	Hits         int64   `json:"hits"`
	Misses       int64   `json:"misses"`
	HitRate      float64 `json:"hitRate"`
	AvgLatencyMs float64 `json:"avgLatencyMs"`
}

// HitRate returns hits as a percentage of all lookups.
func HitRate(hits, misses int64) float64 {
	total := hits + misses
	if total == 0 {
		return 0
	}
	return float64(hits) / float64(total) * 100
}
