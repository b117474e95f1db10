// Package perf repeats one traced exchange and summarizes each phase with
// HDR histograms.
//
// # Quick Start
//
//	client := http.NewClient()
//	req := http.NewRequest("GET", "https://api.example.com/health")
//
//	result, err := perf.Repeat(ctx, client, req, nil, perf.Options{
//	    Count:    50,
//	    Interval: 100 * time.Millisecond,
//	    P99:      map[string]int64{"server_processing": 200},
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	p, _ := result.Summary.Phase("total")
//	fmt.Printf("p50 %dms, p99 %dms, passed %v\n", p.P50, p.P99, result.Passed)
//
// Exchanges run one after the other, each on a fresh connection.
package perf
