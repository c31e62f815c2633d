// Package usage records AI analysis calls and derives the running cost shown
// to the user.
package usage

import (
	"context"
	"math"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/tagexplorer/backend/pkg/ai"
)

// DefaultCostPerAnalysis is the estimated price of one analysis in USD.
const DefaultCostPerAnalysis = 0.001

type dbConn interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Summary aggregates all recorded analyses since the last reset.
type Summary struct {
	AnalysisCount int64   `json:"analysis_count"`
	TotalCost     float64 `json:"total_cost"`
	InputTokens   int64   `json:"input_tokens"`
	OutputTokens  int64   `json:"output_tokens"`
	AvgDurationMs int64   `json:"avg_duration_ms"`
}

type Tracker struct {
	db              dbConn
	costPerAnalysis float64
}

func NewTracker(db dbConn, costPerAnalysis float64) *Tracker {
	if costPerAnalysis < 0 {
		costPerAnalysis = DefaultCostPerAnalysis
	}
	return &Tracker{db: db, costPerAnalysis: costPerAnalysis}
}

// RecordAnalysis stores one analysis call with the metrics reported by the
// AI adapter.
func (t *Tracker) RecordAnalysis(ctx context.Context, model string, metrics ai.ModelMetrics) error {
	duration := metrics.WallClockMs
	if duration <= 0 {
		duration = metrics.DurationMs
	}
	_, err := t.db.Exec(ctx, `
		INSERT INTO ai_usage (input_tokens, output_tokens, duration_ms, model)
		VALUES ($1, $2, $3, $4)`,
		metrics.InputTokens, metrics.OutputTokens, duration, model,
	)
	return err
}

func (t *Tracker) GetUsage(ctx context.Context) (Summary, error) {
	var s Summary
	var avg float64
	err := t.db.QueryRow(ctx, `
		SELECT count(*),
			COALESCE(sum(input_tokens), 0),
			COALESCE(sum(output_tokens), 0),
			COALESCE(avg(duration_ms), 0)::float8
		FROM ai_usage`,
	).Scan(&s.AnalysisCount, &s.InputTokens, &s.OutputTokens, &avg)
	if err != nil {
		return Summary{}, err
	}
	s.AvgDurationMs = int64(math.Round(avg))
	s.TotalCost = Cost(s.AnalysisCount, t.costPerAnalysis)
	return s, nil
}

func (t *Tracker) Reset(ctx context.Context) error {
	_, err := t.db.Exec(ctx, `DELETE FROM ai_usage`)
	return err
}

// Cost returns count analyses priced at perAnalysis, rounded to micro-dollars.
func Cost(count int64, perAnalysis float64) float64 {
	return math.Round(float64(count)*perAnalysis*1e6) / 1e6
}
