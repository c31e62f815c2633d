package usage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tagexplorer/backend/internal/db/dbtest"
	"github.com/tagexplorer/backend/pkg/ai"
)

func TestCost(t *testing.T) {
	tests := []struct {
		count int64
		per   float64
		want  float64
	}{
		{0, DefaultCostPerAnalysis, 0},
		{1, DefaultCostPerAnalysis, 0.001},
		{3, DefaultCostPerAnalysis, 0.003},
		{250, 0.002, 0.5},
	}
	for _, tc := range tests {
		if got := Cost(tc.count, tc.per); got != tc.want {
			t.Fatalf("Cost(%d, %v) = %v, want %v", tc.count, tc.per, got, tc.want)
		}
	}
}

func TestTracker(t *testing.T) {
	pool := dbtest.Pool(t)
	tr := NewTracker(pool, DefaultCostPerAnalysis)
	ctx := context.Background()

	empty, err := tr.GetUsage(ctx)
	require.NoError(t, err)
	assert.Equal(t, Summary{}, empty)

	require.NoError(t, tr.RecordAnalysis(ctx, "m", ai.ModelMetrics{InputTokens: 100, OutputTokens: 20, WallClockMs: 400}))
	require.NoError(t, tr.RecordAnalysis(ctx, "m", ai.ModelMetrics{InputTokens: 50, OutputTokens: 10, DurationMs: 200}))

	s, err := tr.GetUsage(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), s.AnalysisCount)
	assert.Equal(t, int64(150), s.InputTokens)
	assert.Equal(t, int64(30), s.OutputTokens)
	assert.Equal(t, int64(300), s.AvgDurationMs)
	assert.Equal(t, 0.002, s.TotalCost)

	require.NoError(t, tr.Reset(ctx))
	s, err = tr.GetUsage(ctx)
	require.NoError(t, err)
	assert.Zero(t, s.AnalysisCount)
}
