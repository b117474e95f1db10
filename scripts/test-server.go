//go:build ignore

// Local target with endpoints that stretch one phase each, for trying out
// the waterfall by hand:
//
//	go run scripts/test-server.go &
//	tracehttp get localhost:8080/slow
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/klauspost/compress/gzip"
)

func delay(r *http.Request, def time.Duration) time.Duration {
	if ms, err := strconv.Atoi(r.URL.Query().Get("ms")); err == nil {
		return time.Duration(ms) * time.Millisecond
	}
	return def
}

func main() {
	addr := flag.String("addr", ":8080", "listen address")
	flag.Parse()

	http.HandleFunc("/get", func(w http.ResponseWriter, r *http.Request) {
		response := map[string]interface{}{
			"method":  r.Method,
			"url":     r.URL.String(),
			"headers": r.Header,
			"time":    time.Now().Format(time.RFC3339),
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(response)
	})

	// server processing
	http.HandleFunc("/slow", func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(delay(r, 300*time.Millisecond))
		w.Write([]byte("slow\n"))
	})

	// content transfer
	http.HandleFunc("/drip", func(w http.ResponseWriter, r *http.Request) {
		pause := delay(r, 50*time.Millisecond)
		flusher, _ := w.(http.Flusher)
		for i := 0; i < 10; i++ {
			fmt.Fprintf(w, "chunk %d\n", i)
			if flusher != nil {
				flusher.Flush()
			}
			time.Sleep(pause)
		}
	})

	http.HandleFunc("/gzip", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Encoding", "gzip")
		w.Header().Set("Content-Type", "application/json")
		zw := gzip.NewWriter(w)
		defer zw.Close()
		json.NewEncoder(zw).Encode(map[string]string{"encoding": "gzip"})
	})

	http.HandleFunc("/redirect", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/get", http.StatusFound)
	})

	http.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	fmt.Printf("Starting test server on http://localhost%s\n", *addr)
	fmt.Println("Endpoints:")
	fmt.Println("  - GET /get")
	fmt.Println("  - GET /slow?ms=300")
	fmt.Println("  - GET /drip?ms=50")
	fmt.Println("  - GET /gzip")
	fmt.Println("  - GET /redirect")
	fmt.Println("  - GET /health")
	fmt.Println()

	if err := http.ListenAndServe(*addr, nil); err != nil {
		log.Fatal(err)
	}
}
