package perf

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/wesleyorama2/tracehttp/internal/bench"
	tracehttp "github.com/wesleyorama2/tracehttp/internal/http"
)

type (
	// Summary is the per-phase distribution of a repeat run.
	Summary = bench.Summary
	// PhaseSummary is the distribution of one phase, in milliseconds.
	PhaseSummary = bench.PhaseSummary
)

// Options control a repeat run.
type Options struct {
	// Count is the number of exchanges. Values below 1 mean 1.
	Count int

	// Interval is the pause between exchanges.
	Interval time.Duration

	// P99 maps a phase name to the highest acceptable 99th percentile in
	// milliseconds.
	P99 map[string]int64

	// MaxErrorRate is the highest acceptable share of failed exchanges,
	// between 0 and 1.
	MaxErrorRate float64
}

// ThresholdResult is the outcome of one threshold.
type ThresholdResult struct {
	Metric string `json:"metric"`
	Limit  string `json:"limit"`
	Value  string `json:"value"`
	Passed bool   `json:"passed"`
}

// Result is a finished repeat run.
type Result struct {
	StartTime  time.Time         `json:"startTime"`
	EndTime    time.Time         `json:"endTime"`
	Duration   time.Duration     `json:"duration"`
	Summary    *Summary          `json:"summary"`
	Thresholds []ThresholdResult `json:"thresholds,omitempty"`
	Passed     bool              `json:"passed"`
}

// Repeat sends req opts.Count times, one after the other, and evaluates the
// thresholds against the phase summary. A canceled ctx ends the run early;
// the partial result is returned with the context error.
func Repeat(ctx context.Context, client *tracehttp.Client, req *tracehttp.RequestSpec,
	timeout *tracehttp.Timeout, opts Options) (*Result, error) {
	runner := &bench.Runner{Count: opts.Count, Interval: opts.Interval}

	result := &Result{StartTime: time.Now()}
	summary, err := runner.Run(ctx, func(ctx context.Context) (*tracehttp.Response, error) {
		return client.Do(ctx, req, timeout)
	})
	result.EndTime = time.Now()
	result.Duration = result.EndTime.Sub(result.StartTime)
	result.Summary = summary
	result.Thresholds = evaluateThresholds(opts, summary)

	result.Passed = err == nil
	for _, t := range result.Thresholds {
		if !t.Passed {
			result.Passed = false
		}
	}
	return result, err
}

// evaluateThresholds checks every configured threshold. A phase that was
// never recorded fails its threshold.
func evaluateThresholds(opts Options, summary *Summary) []ThresholdResult {
	var results []ThresholdResult

	phases := make([]string, 0, len(opts.P99))
	for name := range opts.P99 {
		phases = append(phases, name)
	}
	sort.Strings(phases)

	for _, name := range phases {
		limit := opts.P99[name]
		r := ThresholdResult{
			Metric: name + "_p99",
			Limit:  fmt.Sprintf("%dms", limit),
			Value:  "n/a",
		}
		if p, ok := summary.Phase(name); ok {
			r.Value = fmt.Sprintf("%dms", p.P99)
			r.Passed = p.P99 <= limit
		}
		results = append(results, r)
	}

	if opts.MaxErrorRate > 0 {
		rate := 0.0
		if summary.Runs > 0 {
			rate = float64(summary.Errors) / float64(summary.Runs)
		}
		results = append(results, ThresholdResult{
			Metric: "error_rate",
			Limit:  formatRate(opts.MaxErrorRate),
			Value:  formatRate(rate),
			Passed: rate <= opts.MaxErrorRate,
		})
	}

	return results
}

func formatRate(f float64) string {
	return fmt.Sprintf("%.2f%%", f*100)
}
