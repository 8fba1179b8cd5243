package storage

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"bim-review-service/internal/metrics"
	"bim-review-service/internal/storage/cache"
)

const (
	SmallRevisionThreshold  = 8 << 20   // memory layer
	MediumRevisionThreshold = 32 << 20  // file system layer
	LargeRevisionThreshold  = 100 << 20 // redis layer
)

// Tiers are the cache layers of a CachedStore. Nil layers are skipped.
type Tiers struct {
	Memory     cache.CacheLayer
	FileSystem cache.CacheLayer
	Redis      cache.CacheLayer
}

// CachedStore caches revision reads in front of another ContentStore.
// Revisions are immutable, so entries are never invalidated; reads of the
// latest content always go to the backing store.
type CachedStore struct {
	ContentStore
	tiers   Tiers
	metrics *metrics.Metrics
	log     *zap.Logger
}

func NewCachedStore(backing ContentStore, tiers Tiers, m *metrics.Metrics, log *zap.Logger) *CachedStore {
	return &CachedStore{ContentStore: backing, tiers: tiers, metrics: m, log: log.Named("revision_cache")}
}

func revisionKey(path, revision string) string {
	return path + "@" + revision
}

// GetOptimalCache picks the layer for an object of the given size, moving
// to a larger tier when the preferred one is not configured. It returns nil
// when the object is too large to cache.
func (s *CachedStore) GetOptimalCache(size int64) cache.CacheLayer {
	var candidates []cache.CacheLayer
	switch {
	case size <= SmallRevisionThreshold:
		candidates = []cache.CacheLayer{s.tiers.Memory, s.tiers.FileSystem, s.tiers.Redis}
	case size <= MediumRevisionThreshold:
		candidates = []cache.CacheLayer{s.tiers.FileSystem, s.tiers.Redis}
	case size <= LargeRevisionThreshold:
		candidates = []cache.CacheLayer{s.tiers.Redis}
	}
	for _, l := range candidates {
		if l != nil {
			return l
		}
	}
	return nil
}

func (s *CachedStore) layers() []cache.CacheLayer {
	var out []cache.CacheLayer
	for _, l := range []cache.CacheLayer{s.tiers.Memory, s.tiers.FileSystem, s.tiers.Redis} {
		if l != nil {
			out = append(out, l)
		}
	}
	return out
}

func (s *CachedStore) Get(ctx context.Context, path, revision string) (Content, error) {
	lm := metrics.LatencyFrom(ctx)

	if revision != "" {
		key := revisionKey(path, revision)
		for _, layer := range s.layers() {
			var attempt *metrics.LayerMetrics
			if lm != nil {
				attempt = lm.StartCacheLayerAttempt(layer.Name())
			}
			data, err := layer.Get(key)
			hit := err == nil
			if lm != nil {
				if errors.Is(err, cache.ErrMiss) {
					err = nil
				}
				lm.EndCacheLayerAttempt(attempt, hit, err, int64(len(data)))
			}
			if hit {
				s.metrics.CacheHit(layer.Name())
				s.log.Debug("cache hit", zap.String("key", key), zap.String("layer", layer.Name()))
				// Hash is left empty: it is only meaningful for the latest content.
				return Content{Path: path, Data: data, Revision: revision}, nil
			}
			s.metrics.CacheMiss(layer.Name())
		}
	}

	content, err := s.ContentStore.Get(ctx, path, revision)
	if err != nil {
		return Content{}, err
	}
	if content.Revision != "" {
		s.store(revisionKey(path, content.Revision), content.Data)
	}
	return content, nil
}

func (s *CachedStore) store(key string, data []byte) {
	layer := s.GetOptimalCache(int64(len(data)))
	if layer == nil {
		return
	}
	if err := layer.Store(key, data); err != nil {
		s.log.Warn("failed to cache revision", zap.String("key", key), zap.String("layer", layer.Name()), zap.Error(err))
		return
	}
	s.metrics.SetCacheSize(layer.Name(), layer.GetStats().SizeBytes)
}

// GetStatistics returns the stats of every configured layer.
func (s *CachedStore) GetStatistics() []cache.LayerStats {
	var out []cache.LayerStats
	for _, l := range s.layers() {
		out = append(out, l.GetStats())
	}
	return out
}

// ClearAll empties every layer.
func (s *CachedStore) ClearAll() error {
	var errs []error
	for _, l := range s.layers() {
		if err := l.Clear(); err != nil {
			errs = append(errs, errors.Wrap(err, l.Name()))
		}
	}
	if len(errs) > 0 {
		return errors.Errorf("clear errors: %v", errs)
	}
	return nil
}

// InstrumentedStore records per-operation latency for any ContentStore.
type InstrumentedStore struct {
	ContentStore
	backend string
	metrics *metrics.Metrics
}

func NewInstrumentedStore(backing ContentStore, backend string, m *metrics.Metrics) *InstrumentedStore {
	return &InstrumentedStore{ContentStore: backing, backend: backend, metrics: m}
}

func (s *InstrumentedStore) Get(ctx context.Context, path, revision string) (Content, error) {
	defer s.observe("get", time.Now())
	return s.ContentStore.Get(ctx, path, revision)
}

func (s *InstrumentedStore) Put(ctx context.Context, path string, data []byte, expectedHash string) (string, error) {
	defer s.observe("put", time.Now())
	hash, err := s.ContentStore.Put(ctx, path, data, expectedHash)
	if IsConflict(err) {
		s.metrics.RecordConflict()
	}
	return hash, err
}

func (s *InstrumentedStore) Revisions(ctx context.Context, path string) ([]Revision, error) {
	defer s.observe("revisions", time.Now())
	return s.ContentStore.Revisions(ctx, path)
}

func (s *InstrumentedStore) List(ctx context.Context, prefix string) ([]Entry, error) {
	defer s.observe("list", time.Now())
	return s.ContentStore.List(ctx, prefix)
}

func (s *InstrumentedStore) observe(op string, start time.Time) {
	s.metrics.ObserveStore(s.backend, op, time.Since(start))
}
