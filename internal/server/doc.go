// Package server provides the HTTP observer and admin API for linkmonitor.
//
// Endpoints:
//
//   - GET /api/targets: the persisted target list
//   - PUT /api/targets?mode=admin: replace the URL set (merge-on-edit)
//   - GET /api/system: liveness record with derived state and countdown
//   - GET /api/summary: per-status counts
//   - GET|POST /api/trigger: run one check cycle synchronously
//   - GET /api/sse: Server-Sent Events, a "targets" and a "summary" event per save
//   - GET /api/ws: WebSocket pushing the system view every second
//
// The server is designed for graceful shutdown via context cancellation.
// Long-lived SSE and WebSocket connections exit when the server context is
// cancelled.
package server
