package liveness

import (
	"math"
	"time"
)

// State is the machine status advertised by the scheduler.
type State string

const (
	// StateWorking means a cycle is in progress.
	StateWorking State = "WORKING"
	// StateWaiting means the scheduler is idle until NextRun.
	StateWaiting State = "WAITING"
	// StateUnknown is the default when no record exists.
	StateUnknown State = "UNKNOWN"
)

// StaleThreshold is the heartbeat age after which the scheduler is
// considered offline.
const StaleThreshold = 720 * time.Second

// Record is the persisted liveness document.
//
// Timestamps are epoch seconds so observers can do arithmetic on them
// directly. NextRun is nil (JSON null) unless the scheduler is waiting.
type Record struct {
	MachineStatus State    `json:"machine_status"`
	NextRun       *float64 `json:"next_run"`
	LastHeartbeat float64  `json:"last_heartbeat"`
	CycleID       string   `json:"cycle_id,omitempty"`
}

// DefaultRecord is returned when no usable record exists.
func DefaultRecord() Record {
	zero := 0.0
	return Record{
		MachineStatus: StateUnknown,
		NextRun:       &zero,
		LastHeartbeat: 0,
	}
}

// NewRecord builds the record written at now. A zero nextRun is stored as
// null.
func NewRecord(state State, nextRun, now time.Time, cycleID string) Record {
	rec := Record{
		MachineStatus: state,
		LastHeartbeat: epochSeconds(now),
		CycleID:       cycleID,
	}
	if !nextRun.IsZero() {
		next := epochSeconds(nextRun)
		rec.NextRun = &next
	}
	return rec
}

// NextRunTime returns NextRun as a time, or the zero time when unset.
func (r Record) NextRunTime() time.Time {
	if r.NextRun == nil || *r.NextRun == 0 {
		return time.Time{}
	}
	return fromEpochSeconds(*r.NextRun)
}

// HeartbeatTime returns LastHeartbeat as a time, or the zero time when unset.
func (r Record) HeartbeatTime() time.Time {
	if r.LastHeartbeat == 0 {
		return time.Time{}
	}
	return fromEpochSeconds(r.LastHeartbeat)
}

func epochSeconds(t time.Time) float64 {
	return float64(t.UnixNano()) / float64(time.Second)
}

func fromEpochSeconds(s float64) time.Time {
	sec, frac := math.Modf(s)
	return time.Unix(int64(sec), int64(frac*float64(time.Second)))
}
