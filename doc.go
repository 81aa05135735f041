// Package linkmonitor provides a periodic URL availability monitor.
//
// A Monitor keeps an editable list of URLs, checks every URL once per cycle
// (optionally through an HTTP proxy), classifies each outcome and persists
// the result after every target so observers see progress. A small liveness
// record tells observers whether the checker is working, waiting for its
// next run, or gone.
//
// # Quick Start
//
//	m, _ := linkmonitor.New(
//	    linkmonitor.WithDataDir("./data"),
//	    linkmonitor.WithInterval(10 * time.Minute),
//	)
//
//	// Set up graceful shutdown on SIGINT/SIGTERM
//	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
//	defer stop()
//
//	m.Start(ctx) // blocks until context is cancelled
//
// # Classification
//
// Each check is one GET with a browser-like User-Agent:
//
//   - HTTP 200: AMAN (or LAMBAT above [WithSlowThreshold])
//   - HTTP 429: CEK BY BK / NAWALA, read as a likely block
//   - other HTTP codes: ERR <code>
//   - transport failure after retries: DOWN
//   - proxy refused or timed out: PROXY_ERROR
//
// # Modes
//
// In [ModeLoop] cycles run forever, each starting one interval after the
// previous start. In [ModeTrigger] cycles run only when requested through
// GET /api/trigger or [Monitor.RunOnce], for hosts driven by an external
// cron pinger.
//
// # Architecture
//
// The internal packages (under internal/) are:
//
//   - internal/store: target list persistence with pub/sub for live updates
//   - internal/poller: HTTP checks, classification, retry and the cycle scheduler
//   - internal/liveness: heartbeat record and the observer state machine
//   - internal/proxy: proxy string normalisation
//   - internal/server: observer and admin HTTP API with SSE and WebSocket
//   - internal/atomicfile: crash-safe whole-file writes
//
// The internal packages are not part of the public API and may change
// without notice.
package linkmonitor
