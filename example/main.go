package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jpalmerr/linkmonitor"
)

func main() {
	// start mock server (see mock_server.go)
	go StartMockServer(":9999")
	time.Sleep(100 * time.Millisecond)

	dataDir, err := os.MkdirTemp("", "linkmonitor-demo-")
	if err != nil {
		slog.Error("failed to create data dir", "error", err)
		os.Exit(1)
	}
	defer os.RemoveAll(dataDir)

	m, err := linkmonitor.New(
		linkmonitor.WithDataDir(dataDir),
		linkmonitor.WithInterval(time.Minute),
		linkmonitor.WithPort(8080),
		linkmonitor.WithTitle("LinkMonitor Demo"),
		linkmonitor.WithSlowThreshold(time.Second),
		linkmonitor.WithRetryPolicy(2, 500*time.Millisecond, time.Second),
		linkmonitor.WithStatusCallback(func(r linkmonitor.StatusResult) {
			fmt.Printf("  %-32s %-20s %4dms (attempts: %d)\n",
				r.URL, r.Status, r.Latency.Milliseconds(), r.Attempts)
		}),
	)
	if err != nil {
		slog.Error("failed to create monitor", "error", err)
		os.Exit(1)
	}

	if _, err := m.SaveTargets([]string{
		"http://localhost:9999/ok",
		"http://localhost:9999/slow",
		"http://localhost:9999/blocked",
		"http://localhost:9999/missing",
		"http://localhost:9999/flaky",
		"http://localhost:1", // refused -> DOWN
	}); err != nil {
		slog.Error("failed to save targets", "error", err)
		os.Exit(1)
	}

	fmt.Println()
	fmt.Println("  LinkMonitor Demo")
	fmt.Println()
	fmt.Println("  Targets: 6 mock URLs, one cycle per minute")
	fmt.Println("  API:     http://localhost:8080/api/targets")
	fmt.Println("           http://localhost:8080/api/system")
	fmt.Println("  Trigger: http://localhost:8080/api/trigger")
	fmt.Println()
	fmt.Println("  Press Ctrl+C to stop")
	fmt.Println()

	// set up context with signal handling for graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := m.Start(ctx); err != nil {
		slog.Error("linkmonitor error", "error", err)
		os.Exit(1)
	}
}
