package ai

import (
	"math"
	"sync"
)

// MetricsTracker accumulates ModelMetrics across requests. The zero value is
// ready to use.
type MetricsTracker struct {
	mu      sync.Mutex
	metrics ModelMetrics
}

// Add folds m into the running totals and hands it to the per-request sink
// of opts, if any.
func (t *MetricsTracker) Add(m ModelMetrics, opts GenerateOptions) {
	if m.TotalTokens == 0 {
		m.TotalTokens = m.InputTokens + m.OutputTokens
	}
	if opts.Metrics != nil {
		*opts.Metrics = m
		opts.Metrics.TokenPerSecond = tokensPerSecond(m.TotalTokens, m.DurationMs)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	t.metrics.InputTokens += m.InputTokens
	t.metrics.OutputTokens += m.OutputTokens
	t.metrics.TotalTokens += m.TotalTokens
	t.metrics.DurationMs += m.DurationMs
	t.metrics.WallClockMs += m.WallClockMs
	t.metrics.TokenPerSecond = tokensPerSecond(t.metrics.TotalTokens, t.metrics.DurationMs)
}

// Reset clears all accumulated token and timing metrics to zero.
func (t *MetricsTracker) Reset() {
	t.mu.Lock()
	t.metrics = ModelMetrics{}
	t.mu.Unlock()
}

// Get returns the accumulated metrics since the last reset.
func (t *MetricsTracker) Get() ModelMetrics {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.metrics
}

func tokensPerSecond(tokens int, durationMs int64) float32 {
	if durationMs <= 0 {
		return 0
	}
	tps := (float64(tokens) * 1000.0) / float64(durationMs)
	return float32(math.Round(tps*100) / 100)
}
