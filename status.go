package linkmonitor

import (
	"time"

	"github.com/jpalmerr/linkmonitor/internal/liveness"
	"github.com/jpalmerr/linkmonitor/internal/poller"
	"github.com/jpalmerr/linkmonitor/internal/store"
)

// Status is the classification of a target's latest check.
//
// Status is a closed set; its String form is the display text persisted in
// the target list ("AMAN", "CEK BY BK / NAWALA", "ERR 404", "DOWN",
// "PROXY_ERROR", "LAMBAT", "PENDING").
type Status = store.Status

// StatusKind identifies which classification a [Status] holds.
type StatusKind = store.Kind

// Status kinds.
const (
	KindPending     = store.KindPending
	KindSafe        = store.KindSafe
	KindBlocked     = store.KindBlocked
	KindHTTPError   = store.KindHTTPError
	KindDown        = store.KindDown
	KindProxyError  = store.KindProxyError
	KindTimeoutSlow = store.KindTimeoutSlow
	KindUnknown     = store.KindUnknown
)

// Target is one monitored URL and the result of its latest check.
type Target = store.Target

// Summary aggregates a target list.
type Summary = store.Summary

// CycleReport summarises one check cycle.
type CycleReport = poller.CycleReport

// SystemView is the observer-facing liveness state: offline, working,
// waiting with a countdown, or due.
type SystemView = liveness.View

// ErrCycleRunning is returned when a cycle is requested while another one
// is in progress.
var ErrCycleRunning = poller.ErrCycleRunning

// Mode selects how check cycles are started.
type Mode string

const (
	// ModeLoop runs cycles forever, one interval apart.
	ModeLoop Mode = "loop"

	// ModeTrigger runs a cycle only when asked, via the HTTP trigger
	// endpoint or [Monitor.RunOnce]. Used with external cron pingers.
	ModeTrigger Mode = "trigger"
)

// Valid reports whether m is a known mode.
func (m Mode) Valid() bool {
	return m == ModeLoop || m == ModeTrigger
}

// StatusResult holds the outcome of checking a single target.
//
// StatusResult is passed to callbacks registered with [WithStatusCallback]
// after the result has been persisted.
type StatusResult struct {
	// URL is the checked target.
	URL string

	// Status is the classification of the check.
	Status Status

	// Code is the HTTP status code as a string, or ERR / PRX for
	// transport and proxy failures.
	Code string

	// Latency is the measured round trip, zero for failures.
	Latency time.Duration

	// Attempts is the number of requests made, retries included.
	Attempts int

	// CheckedAt is when the check completed.
	CheckedAt time.Time

	// Error is the last transport error, nil when an HTTP response arrived.
	Error error
}
