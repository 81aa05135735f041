package liveness

import (
	"fmt"
	"time"
)

// Display is the mutually exclusive state an observer shows.
type Display string

const (
	DisplayOffline Display = "OFFLINE"
	DisplayWorking Display = "WORKING"
	DisplayWaiting Display = "WAITING"
	DisplayDue     Display = "DUE"
)

// View is the observer-facing interpretation of a [Record] at one instant.
type View struct {
	Display Display `json:"state"`

	// Remaining is the time left until NextRun; only set when waiting.
	Remaining time.Duration `json:"-"`

	// RemainingSeconds is Remaining truncated to whole seconds.
	RemainingSeconds int64 `json:"remaining_seconds"`

	Record Record `json:"record"`
}

// Observe derives the display state for rec at now.
//
// Precedence: a heartbeat older than [StaleThreshold] is Offline regardless
// of the other fields; then WORKING; then Waiting while NextRun is in the
// future; otherwise Due.
func Observe(rec Record, now time.Time) View {
	v := View{Record: rec}

	age := now.Sub(rec.HeartbeatTime())
	switch {
	case rec.HeartbeatTime().IsZero() || age > StaleThreshold:
		v.Display = DisplayOffline
	case rec.MachineStatus == StateWorking:
		v.Display = DisplayWorking
	default:
		next := rec.NextRunTime()
		if !next.IsZero() && next.After(now) {
			v.Display = DisplayWaiting
			v.Remaining = next.Sub(now)
			v.RemainingSeconds = int64(v.Remaining / time.Second)
		} else {
			v.Display = DisplayDue
		}
	}
	return v
}

// Message renders the view as an operator-facing line.
func (v View) Message() string {
	switch v.Display {
	case DisplayOffline:
		return "SYSTEM OFFLINE: checker is not running"
	case DisplayWorking:
		return "checker is working: updating data"
	case DisplayWaiting:
		secs := v.RemainingSeconds
		return fmt.Sprintf("online: next update in %dm %ds", secs/60, secs%60)
	default:
		return "online: waiting for checker to start"
	}
}
