package storage

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"bim-review-service/internal/metrics"
	"bim-review-service/internal/storage/cache"
)

type mapLayer struct {
	name string
	data map[string][]byte
	gets int
}

func newMapLayer(name string) *mapLayer {
	return &mapLayer{name: name, data: map[string][]byte{}}
}

func (l *mapLayer) Name() string { return l.name }
func (l *mapLayer) Store(key string, data []byte) error {
	l.data[key] = data
	return nil
}
func (l *mapLayer) Get(key string) ([]byte, error) {
	l.gets++
	if d, ok := l.data[key]; ok {
		return d, nil
	}
	return nil, cache.ErrMiss
}
func (l *mapLayer) Exists(key string) (bool, error) { _, ok := l.data[key]; return ok, nil }
func (l *mapLayer) Delete(key string) error         { delete(l.data, key); return nil }
func (l *mapLayer) Clear() error                    { l.data = map[string][]byte{}; return nil }
func (l *mapLayer) GetStats() cache.LayerStats {
	return cache.LayerStats{Name: l.name, Objects: len(l.data)}
}

type countingStore struct {
	ContentStore
	gets int
}

func (s *countingStore) Get(ctx context.Context, path, revision string) (Content, error) {
	s.gets++
	return s.ContentStore.Get(ctx, path, revision)
}

func TestCachedStoreServesRevisionsFromCache(t *testing.T) {
	ctx := context.Background()
	mem := NewMemoryStore()
	h, err := mem.Put(ctx, "m.bim", []byte("first"), "")
	require.NoError(t, err)
	_, err = mem.Put(ctx, "m.bim", []byte("second"), h)
	require.NoError(t, err)

	backing := &countingStore{ContentStore: mem}
	layer := newMapLayer("MEMORY")
	s := NewCachedStore(backing, Tiers{Memory: layer}, metrics.NewMetrics(prometheus.NewRegistry()), zaptest.NewLogger(t))

	c, err := s.Get(ctx, "m.bim", "v1")
	require.NoError(t, err)
	require.Equal(t, []byte("first"), c.Data)
	require.Equal(t, 1, backing.gets)

	lm := metrics.NewLatencyMetrics("m.bim")
	c, err = s.Get(metrics.WithLatency(ctx, lm), "m.bim", "v1")
	require.NoError(t, err)
	require.Equal(t, []byte("first"), c.Data)
	require.Equal(t, 1, backing.gets)
	require.True(t, lm.CacheHit)
	require.Equal(t, "MEMORY", lm.CacheLayerUsed)

	// latest reads always hit the backing store but seed the cache
	c, err = s.Get(ctx, "m.bim", "")
	require.NoError(t, err)
	require.Equal(t, []byte("second"), c.Data)
	require.Equal(t, 2, backing.gets)
	require.Contains(t, layer.data, "m.bim@v2")

	require.Len(t, s.GetStatistics(), 1)
	require.NoError(t, s.ClearAll())
	require.Empty(t, layer.data)
}

func TestGetOptimalCache(t *testing.T) {
	mem, file, redis := newMapLayer("MEMORY"), newMapLayer("FILESYSTEM"), newMapLayer("REDIS")
	s := NewCachedStore(NewMemoryStore(), Tiers{Memory: mem, FileSystem: file, Redis: redis}, nil, zaptest.NewLogger(t))

	require.Equal(t, "MEMORY", s.GetOptimalCache(1<<10).Name())
	require.Equal(t, "FILESYSTEM", s.GetOptimalCache(16<<20).Name())
	require.Equal(t, "REDIS", s.GetOptimalCache(64<<20).Name())
	require.Nil(t, s.GetOptimalCache(200<<20))

	s = NewCachedStore(NewMemoryStore(), Tiers{Redis: redis}, nil, zaptest.NewLogger(t))
	require.Equal(t, "REDIS", s.GetOptimalCache(1<<10).Name())

	s = NewCachedStore(NewMemoryStore(), Tiers{Memory: mem}, nil, zaptest.NewLogger(t))
	require.Nil(t, s.GetOptimalCache(16<<20))
}

func TestInstrumentedStorePassesThrough(t *testing.T) {
	ctx := context.Background()
	s := NewInstrumentedStore(NewMemoryStore(), "memory", metrics.NewMetrics(prometheus.NewRegistry()))

	h, err := s.Put(ctx, "a.json", []byte("{}"), "")
	require.NoError(t, err)
	_, err = s.Put(ctx, "a.json", []byte("{}"), "")
	require.True(t, IsConflict(err))

	c, err := s.Get(ctx, "a.json", "")
	require.NoError(t, err)
	require.Equal(t, h, c.Hash)
}
