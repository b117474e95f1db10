// Package http is the public API of tracehttp: an HTTP client that reports,
// next to every response, a waterfall of the phases the exchange went
// through.
//
// Each exchange records into its own phase clock, so one Client may be used
// from many goroutines at once.
//
// Basic Usage:
//
//	client := http.NewClient(
//	    http.WithHeader("Authorization", "Bearer token"),
//	)
//
//	req := http.NewRequest("GET", "https://api.example.com/users").
//	    WithQueryParam("limit", "10")
//
//	resp, err := client.Do(context.Background(), req, &http.Timeout{Connect: 5})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	fmt.Printf("Status: %d\n", resp.Status)
//	fmt.Printf("Server processing: %dms\n", resp.Stats.ServerProcessing)
//
// Disabled entries stay in the request description but never reach the
// wire:
//
//	req.Headers = append(req.Headers, http.KeyValue{Key: "X-Debug", Value: "1"})
//
// Errors:
//
// Every error returned by Do is an *Error. KindOf tells input problems
// (KindURL, KindHeader) apart from failures on the wire (KindNetwork,
// KindEncoding, KindIO):
//
//	if http.KindOf(err) == http.KindNetwork {
//	    // retry later
//	}
//
// Diagnostic Events:
//
// The transport narrates each exchange as free-text events. Observe them
// with OnEvent:
//
//	stop := http.OnEvent(func(e http.Event) {
//	    log.Printf("%s %s: %s", e.RequestID, e.Source, e.Message)
//	})
//	defer stop()
package http
