// Package bench repeats an exchange and summarizes each phase with HDR
// histograms.
package bench

import (
	"sync"
	"sync/atomic"

	"github.com/HdrHistogram/hdrhistogram-go"

	"github.com/wesleyorama2/tracehttp/internal/timing"
)

const (
	histogramMin     = 1
	histogramMax     = 3_600_000 // one hour in milliseconds
	histogramSigFigs = 3
)

// PhaseSummary holds the distribution of one phase, in milliseconds.
type PhaseSummary struct {
	Name string  `json:"name" yaml:"name"`
	Min  int64   `json:"min" yaml:"min"`
	Mean float64 `json:"mean" yaml:"mean"`
	P50  int64   `json:"p50" yaml:"p50"`
	P90  int64   `json:"p90" yaml:"p90"`
	P99  int64   `json:"p99" yaml:"p99"`
	Max  int64   `json:"max" yaml:"max"`
}

// Summary is the aggregate of a repeat run.
type Summary struct {
	Runs   int64          `json:"runs" yaml:"runs"`
	Errors int64          `json:"errors" yaml:"errors"`
	Phases []PhaseSummary `json:"phases" yaml:"phases"`
}

// Recorder accumulates phase timings. It is safe for concurrent use.
//
// HDR histogram RecordValue is not thread-safe, so every histogram access
// holds mu.
type Recorder struct {
	mu     sync.Mutex
	hists  map[string]*hdrhistogram.Histogram
	order  []string
	runs   atomic.Int64
	errors atomic.Int64
}

// NewRecorder creates an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{hists: make(map[string]*hdrhistogram.Histogram)}
}

// Record adds the phases of one successful exchange.
func (r *Recorder) Record(stats timing.Stats) {
	r.runs.Add(1)

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range stats.Phases() {
		hist, ok := r.hists[p.Name]
		if !ok {
			hist = hdrhistogram.New(histogramMin, histogramMax, histogramSigFigs)
			r.hists[p.Name] = hist
			r.order = append(r.order, p.Name)
		}
		v := int64(p.Millis)
		if v > histogramMax {
			v = histogramMax
		}
		hist.RecordValue(v)
	}
}

// RecordError counts a failed exchange.
func (r *Recorder) RecordError() {
	r.runs.Add(1)
	r.errors.Add(1)
}

// Summary snapshots the distributions in phase order.
func (r *Recorder) Summary() *Summary {
	r.mu.Lock()
	defer r.mu.Unlock()

	s := &Summary{
		Runs:   r.runs.Load(),
		Errors: r.errors.Load(),
		Phases: make([]PhaseSummary, 0, len(r.order)),
	}
	for _, name := range r.order {
		h := r.hists[name]
		s.Phases = append(s.Phases, PhaseSummary{
			Name: name,
			Min:  h.Min(),
			Mean: h.Mean(),
			P50:  h.ValueAtQuantile(50),
			P90:  h.ValueAtQuantile(90),
			P99:  h.ValueAtQuantile(99),
			Max:  h.Max(),
		})
	}
	return s
}

// Phase returns the summary for name, or false.
func (s *Summary) Phase(name string) (PhaseSummary, bool) {
	for _, p := range s.Phases {
		if p.Name == name {
			return p, true
		}
	}
	return PhaseSummary{}, false
}
