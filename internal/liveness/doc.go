// Package liveness records whether the scheduler is alive and what it is
// doing, and derives the state an observer should display.
//
// The scheduler only writes the record ([Reporter]); observers only read it
// ([Observe]). The heartbeat timestamp is refreshed on every write, and a
// heartbeat older than [StaleThreshold] marks the scheduler offline no
// matter what the record claims.
package liveness
