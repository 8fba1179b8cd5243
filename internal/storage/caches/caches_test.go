package caches

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"bim-review-service/internal/storage/cache"
)

func TestMemoryCacheEvictsLeastRecentlyUsed(t *testing.T) {
	mc := NewMemoryCache(10, time.Hour, zaptest.NewLogger(t))
	defer mc.Close()

	require.NoError(t, mc.Store("a@v1", []byte("aaaa")))
	time.Sleep(time.Millisecond)
	require.NoError(t, mc.Store("b@v1", []byte("bbbb")))
	time.Sleep(time.Millisecond)
	_, err := mc.Get("a@v1")
	require.NoError(t, err)

	require.NoError(t, mc.Store("c@v1", []byte("cccc")))
	_, err = mc.Get("b@v1")
	require.ErrorIs(t, err, cache.ErrMiss)

	stats := mc.GetStats()
	require.Equal(t, 2, stats.Objects)
	require.Equal(t, int64(8), stats.SizeBytes)
	require.Equal(t, int64(1), stats.Hits)

	require.Error(t, mc.Store("huge", make([]byte, 11)))
}

func TestMemoryCacheExpire(t *testing.T) {
	mc := NewMemoryCache(1<<10, time.Minute, zaptest.NewLogger(t))
	defer mc.Close()

	require.NoError(t, mc.Store("a@v1", []byte("x")))
	require.Equal(t, 0, mc.expire(time.Now()))
	require.Equal(t, 1, mc.expire(time.Now().Add(2*time.Minute)))
	ok, _ := mc.Exists("a@v1")
	require.False(t, ok)
}

func TestFileSystemCache(t *testing.T) {
	fc, err := NewFileSystemCache(t.TempDir(), 1<<10, time.Hour, zaptest.NewLogger(t))
	require.NoError(t, err)

	require.NoError(t, fc.Store("models/a.bim@v1", []byte("payload")))
	data, err := fc.Get("models/a.bim@v1")
	require.NoError(t, err)
	require.Equal(t, []byte("payload"), data)

	_, err = fc.Get("models/a.bim@v2")
	require.ErrorIs(t, err, cache.ErrMiss)

	stats := fc.GetStats()
	require.Equal(t, 1, stats.Objects)
	require.Equal(t, int64(7), stats.SizeBytes)

	require.NoError(t, fc.Delete("models/a.bim@v1"))
	require.NoError(t, fc.Clear())
	require.Equal(t, 0, fc.GetStats().Objects)
}
