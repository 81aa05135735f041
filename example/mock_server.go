package main

import (
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"
)

// StartMockServer serves one route per classification the monitor knows:
//
//	/ok       200 after a short delay        -> AMAN
//	/slow     200 after 1.5s                 -> LAMBAT with a 1s slow threshold
//	/blocked  429                            -> CEK BY BK / NAWALA
//	/missing  404                            -> ERR 404
//	/flaky    alternates between 200 and 503 on every request
//
// Call this in a goroutine before starting the monitor.
func StartMockServer(addr string) {
	mux := http.NewServeMux()

	mux.HandleFunc("/ok", func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(40 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/slow", func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(1500 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/blocked", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	})
	mux.HandleFunc("/missing", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	var flips atomic.Int64
	mux.HandleFunc("/flaky", func(w http.ResponseWriter, r *http.Request) {
		if flips.Add(1)%2 == 0 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	})

	if err := http.ListenAndServe(addr, mux); err != nil {
		slog.Error("mock server error", "error", err)
	}
}
