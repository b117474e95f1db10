package bench

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	http "github.com/wesleyorama2/tracehttp/internal/http"
)

// ExchangeFunc performs one exchange.
type ExchangeFunc func(ctx context.Context) (*http.Response, error)

// ResultFunc observes each run. i counts from 1.
type ResultFunc func(i int, resp *http.Response, err error)

// Runner repeats an exchange sequentially.
type Runner struct {
	Count    int
	Interval time.Duration
	Logger   *logrus.Logger
	OnResult ResultFunc
}

// Run executes the exchange Count times, waiting Interval between runs, and
// returns the summary. Failed runs are counted, not fatal. A canceled ctx
// stops the run early and the partial summary is returned with ctx.Err().
func (r *Runner) Run(ctx context.Context, exchange ExchangeFunc) (*Summary, error) {
	rec := NewRecorder()
	count := r.Count
	if count < 1 {
		count = 1
	}

	for i := 1; i <= count; i++ {
		if i > 1 && r.Interval > 0 {
			select {
			case <-ctx.Done():
				return rec.Summary(), ctx.Err()
			case <-time.After(r.Interval):
			}
		}
		if err := ctx.Err(); err != nil {
			return rec.Summary(), err
		}

		resp, err := exchange(ctx)
		if err != nil {
			rec.RecordError()
			if r.Logger != nil {
				r.Logger.WithError(err).WithField("run", i).Debug("exchange failed")
			}
		} else {
			rec.Record(resp.Stats)
		}
		if r.OnResult != nil {
			r.OnResult(i, resp, err)
		}
	}
	return rec.Summary(), nil
}
