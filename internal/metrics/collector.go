package metrics

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"
)

// LatencyMetrics holds the timing breakdown of one model load: content
// fetch, revision cache attempts, decode and normalization.
type LatencyMetrics struct {
	mu sync.RWMutex

	TotalStartTime time.Time `json:"-"`
	TotalLatencyMs float64   `json:"totalLatencyMs"`

	// Cache layer attempts, in the order they were tried
	CacheLayers []LayerMetrics `json:"cacheLayers"`

	Subject           string `json:"subject"`
	ObjectSize        int64  `json:"objectSize"`
	CacheHit          bool   `json:"cacheHit"`
	CacheLayerUsed    string `json:"cacheLayerUsed"`
	Format            string `json:"format"`
	SkippedCandidates int    `json:"skippedCandidates"`

	stageStarts map[string]time.Time
	stageOrder  []string

	// Timings by stage name, in milliseconds
	Timings map[string]float64 `json:"timings"`
}

// LayerMetrics represents metrics for a single cache layer attempt
type LayerMetrics struct {
	LayerName  string    `json:"layerName"`
	StartTime  time.Time `json:"-"`
	LatencyMs  float64   `json:"latencyMs"`
	Hit        bool      `json:"hit"`
	Error      string    `json:"error,omitempty"`
	ObjectSize int64     `json:"objectSize,omitempty"`
}

func NewLatencyMetrics(subject string) *LatencyMetrics {
	return &LatencyMetrics{
		TotalStartTime: time.Now(),
		Subject:        subject,
		CacheLayers:    make([]LayerMetrics, 0),
		Timings:        make(map[string]float64),
		stageStarts:    make(map[string]time.Time),
	}
}

// StartStage marks the start of a named pipeline stage.
func (m *LatencyMetrics) StartStage(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stageStarts[name] = time.Now()
}

// EndStage records the time since the matching StartStage.
func (m *LatencyMetrics) EndStage(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	start, ok := m.stageStarts[name]
	if !ok {
		return
	}
	delete(m.stageStarts, name)
	if _, seen := m.Timings[name]; !seen {
		m.stageOrder = append(m.stageOrder, name)
	}
	m.Timings[name] = float64(time.Since(start).Microseconds()) / 1000.0
}

// StartCacheLayerAttempt starts timing for a cache layer attempt
func (m *LatencyMetrics) StartCacheLayerAttempt(layerName string) *LayerMetrics {
	layer := LayerMetrics{
		LayerName: layerName,
		StartTime: time.Now(),
	}
	return &layer
}

// EndCacheLayerAttempt ends timing for a cache layer attempt
func (m *LatencyMetrics) EndCacheLayerAttempt(layer *LayerMetrics, hit bool, err error, size int64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if layer.StartTime.IsZero() {
		return
	}
	layer.LatencyMs = float64(time.Since(layer.StartTime).Microseconds()) / 1000.0
	layer.Hit = hit
	layer.ObjectSize = size
	if err != nil {
		layer.Error = err.Error()
	}

	m.CacheLayers = append(m.CacheLayers, *layer)
	m.Timings["cache_"+strings.ToLower(layer.LayerName)] = layer.LatencyMs

	if hit {
		m.CacheHit = true
		m.CacheLayerUsed = layer.LayerName
	}
}

func (m *LatencyMetrics) SetObjectSize(size int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ObjectSize = size
}

// SetResult records the detected format and how many candidates were dropped.
func (m *LatencyMetrics) SetResult(format string, skipped int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Format = format
	m.SkippedCandidates = skipped
}

// Finalize calculates final metrics
func (m *LatencyMetrics) Finalize() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.TotalStartTime.IsZero() {
		m.TotalLatencyMs = float64(time.Since(m.TotalStartTime).Microseconds()) / 1000.0
		m.Timings["total"] = m.TotalLatencyMs
	}

	var cacheWaterfall float64
	for _, layer := range m.CacheLayers {
		cacheWaterfall += layer.LatencyMs
	}
	if cacheWaterfall > 0 {
		m.Timings["cache_waterfall"] = cacheWaterfall
	}
}

// GetHeaders returns HTTP headers with latency metrics
func (m *LatencyMetrics) GetHeaders() map[string]string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	headers := make(map[string]string)
	headers["X-Latency-Total-Ms"] = formatFloat(m.TotalLatencyMs)
	for _, stage := range m.stageOrder {
		headers["X-Latency-"+headerName(stage)+"-Ms"] = formatFloat(m.Timings[stage])
	}

	headers["X-Cache-Hit"] = formatBool(m.CacheHit)
	if m.CacheHit {
		headers["X-Cache-Layer-Used"] = m.CacheLayerUsed
	}
	for _, layer := range m.CacheLayers {
		headers["X-Latency-Cache-"+layer.LayerName+"-Ms"] = formatFloat(layer.LatencyMs)
	}
	if waterfall, ok := m.Timings["cache_waterfall"]; ok && waterfall > 0 {
		headers["X-Latency-Cache-Waterfall-Ms"] = formatFloat(waterfall)
	}

	headers["X-Object-Size-Bytes"] = formatInt64(m.ObjectSize)
	if m.Format != "" {
		headers["X-Model-Format"] = m.Format
	}
	headers["X-Skipped-Candidates"] = fmt.Sprintf("%d", m.SkippedCandidates)
	return headers
}

type latencyKey struct{}

// WithLatency attaches m to ctx so lower layers can record into it.
func WithLatency(ctx context.Context, m *LatencyMetrics) context.Context {
	return context.WithValue(ctx, latencyKey{}, m)
}

// LatencyFrom returns the LatencyMetrics attached to ctx, or nil.
func LatencyFrom(ctx context.Context) *LatencyMetrics {
	m, _ := ctx.Value(latencyKey{}).(*LatencyMetrics)
	return m
}

// headerName turns "store_fetch" into "Store-Fetch".
func headerName(stage string) string {
	parts := strings.FieldsFunc(stage, func(r rune) bool { return r == '_' || r == '-' })
	for i, p := range parts {
		parts[i] = strings.ToUpper(p[:1]) + p[1:]
	}
	return strings.Join(parts, "-")
}

func formatFloat(f float64) string {
	return fmt.Sprintf("%.2f", f)
}

func formatBool(b bool) string {
	if b {
		return "true"
	}
	return "false"
}

func formatInt64(i int64) string {
	return fmt.Sprintf("%d", i)
}
