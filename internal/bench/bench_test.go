package bench

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	http "github.com/wesleyorama2/tracehttp/internal/http"
	"github.com/wesleyorama2/tracehttp/internal/timing"
)

func TestRecorder_Summary(t *testing.T) {
	rec := NewRecorder()
	for _, total := range []uint32{10, 20, 30, 40} {
		rec.Record(timing.Stats{TCP: total / 10, Total: total})
	}
	rec.RecordError()

	s := rec.Summary()
	assert.Equal(t, int64(5), s.Runs)
	assert.Equal(t, int64(1), s.Errors)
	require.Len(t, s.Phases, 7)
	assert.Equal(t, timing.PhaseDNSLookup, s.Phases[0].Name)
	assert.Equal(t, timing.PhaseTotal, s.Phases[6].Name)

	total, ok := s.Phase(timing.PhaseTotal)
	require.True(t, ok)
	assert.Equal(t, int64(10), total.Min)
	assert.Equal(t, int64(40), total.Max)
	assert.InDelta(t, 25.0, total.Mean, 0.5)
	assert.Equal(t, int64(20), total.P50)

	tcp, ok := s.Phase(timing.PhaseTCP)
	require.True(t, ok)
	assert.Equal(t, int64(1), tcp.Min)
	assert.Equal(t, int64(4), tcp.Max)

	_, ok = s.Phase("nope")
	assert.False(t, ok)
}

func TestRecorder_Empty(t *testing.T) {
	s := NewRecorder().Summary()
	assert.Zero(t, s.Runs)
	assert.Empty(t, s.Phases)
}

func TestRecorder_Concurrent(t *testing.T) {
	rec := NewRecorder()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			rec.Record(timing.Stats{Total: uint32(i)})
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int64(20), rec.Summary().Runs)
}

func TestRunner_Run(t *testing.T) {
	calls := 0
	var seen []int
	r := &Runner{
		Count: 3,
		OnResult: func(i int, resp *http.Response, err error) {
			seen = append(seen, i)
		},
	}

	s, err := r.Run(context.Background(), func(ctx context.Context) (*http.Response, error) {
		calls++
		if calls == 2 {
			return nil, errors.New("boom")
		}
		return &http.Response{Stats: timing.Stats{Total: uint32(calls * 10)}}, nil
	})
	require.NoError(t, err)

	assert.Equal(t, 3, calls)
	assert.Equal(t, []int{1, 2, 3}, seen)
	assert.Equal(t, int64(3), s.Runs)
	assert.Equal(t, int64(1), s.Errors)

	total, ok := s.Phase(timing.PhaseTotal)
	require.True(t, ok)
	assert.Equal(t, int64(10), total.Min)
	assert.Equal(t, int64(30), total.Max)
}

func TestRunner_ZeroCountRunsOnce(t *testing.T) {
	calls := 0
	s, err := (&Runner{}).Run(context.Background(), func(ctx context.Context) (*http.Response, error) {
		calls++
		return &http.Response{}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
	assert.Equal(t, int64(1), s.Runs)
}

func TestRunner_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	calls := 0
	r := &Runner{Count: 10, Interval: 10 * time.Millisecond}
	s, err := r.Run(ctx, func(ctx context.Context) (*http.Response, error) {
		calls++
		if calls == 2 {
			cancel()
		}
		return &http.Response{}, nil
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 2, calls)
	assert.Equal(t, int64(2), s.Runs)
}
