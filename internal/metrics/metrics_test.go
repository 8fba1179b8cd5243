package metrics

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestMetricsCounters(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())

	m.RecordImport("ifc", "ok", 40*time.Millisecond)
	m.RecordImport("ifc", "ok", 60*time.Millisecond)
	m.RecordImport("canonical", "rejected", time.Millisecond)
	m.RecordSkipped("geometry")
	m.CacheHit("MEMORY")
	m.CacheMiss("REDIS")
	m.SetSessionGauges(3, 7)

	require.Equal(t, 2.0, testutil.ToFloat64(m.importsTotal.WithLabelValues("ifc", "ok")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.importsTotal.WithLabelValues("canonical", "rejected")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.skippedCandidates.WithLabelValues("geometry")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.layerHits.WithLabelValues("MEMORY")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.layerMisses.WithLabelValues("REDIS")))
	require.Equal(t, 3.0, testutil.ToFloat64(m.loadedModels))
	require.Equal(t, 7.0, testutil.ToFloat64(m.commentedElements))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	require.NotPanics(t, func() {
		m.RecordImport("ifc", "ok", time.Second)
		m.RecordConflict()
		m.SetCacheSize("MEMORY", 10)
	})
}

func TestLatencyHeaders(t *testing.T) {
	lm := NewLatencyMetrics("models/tower.ifc")
	ctx := WithLatency(context.Background(), lm)
	require.Same(t, lm, LatencyFrom(ctx))
	require.Nil(t, LatencyFrom(context.Background()))

	lm.StartStage("store_fetch")
	lm.EndStage("store_fetch")
	lm.EndStage("never_started")

	layer := lm.StartCacheLayerAttempt("MEMORY")
	lm.EndCacheLayerAttempt(layer, true, nil, 128)
	lm.SetObjectSize(128)
	lm.SetResult("ifc", 2)
	lm.Finalize()

	h := lm.GetHeaders()
	require.Contains(t, h, "X-Latency-Store-Fetch-Ms")
	require.Contains(t, h, "X-Latency-Cache-MEMORY-Ms")
	require.NotContains(t, h, "X-Latency-Never-Started-Ms")
	require.Equal(t, "true", h["X-Cache-Hit"])
	require.Equal(t, "MEMORY", h["X-Cache-Layer-Used"])
	require.Equal(t, "128", h["X-Object-Size-Bytes"])
	require.Equal(t, "ifc", h["X-Model-Format"])
	require.Equal(t, "2", h["X-Skipped-Candidates"])
}
