// Package poller checks monitored URLs and drives the polling cycle.
//
// The main components are:
//
//   - [Client]: HTTP client wrapper with proxy support, a fixed browser-like
//     user agent, per-request timeouts and proxy-failure detection
//   - [Prober]: one classified check of one URL with bounded retry
//   - [Scheduler]: sequential cycle over the target store with incremental
//     persistence, liveness reporting and a perpetual loop
//   - [Result]: outcome of probing a single URL
//
// Users of the linkmonitor library should not need to interact with this
// package directly. Configuration is done through the main linkmonitor package.
package poller
