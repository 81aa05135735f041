package liveness

import (
	"testing"
	"time"
)

var now = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func TestObserve(t *testing.T) {
	tests := []struct {
		name    string
		rec     Record
		want    Display
		remains time.Duration
	}{
		{
			name: "stale heartbeat wins over working",
			rec:  NewRecord(StateWorking, time.Time{}, now.Add(-721*time.Second), ""),
			want: DisplayOffline,
		},
		{
			name: "stale heartbeat wins over future next run",
			rec:  NewRecord(StateWaiting, now.Add(time.Hour), now.Add(-721*time.Second), ""),
			want: DisplayOffline,
		},
		{
			name: "heartbeat exactly at threshold is still online",
			rec:  NewRecord(StateWorking, time.Time{}, now.Add(-720*time.Second), ""),
			want: DisplayWorking,
		},
		{
			name: "no record is offline",
			rec:  DefaultRecord(),
			want: DisplayOffline,
		},
		{
			name: "working",
			rec:  NewRecord(StateWorking, time.Time{}, now.Add(-5*time.Second), ""),
			want: DisplayWorking,
		},
		{
			name:    "waiting with countdown",
			rec:     NewRecord(StateWaiting, now.Add(550*time.Second), now.Add(-2*time.Second), ""),
			want:    DisplayWaiting,
			remains: 550 * time.Second,
		},
		{
			name: "next run passed is due",
			rec:  NewRecord(StateWaiting, now.Add(-time.Second), now.Add(-2*time.Second), ""),
			want: DisplayDue,
		},
		{
			name: "unknown with fresh heartbeat and no next run is due",
			rec:  NewRecord(StateUnknown, time.Time{}, now, ""),
			want: DisplayDue,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := Observe(tt.rec, now)
			if v.Display != tt.want {
				t.Errorf("Observe().Display = %v, want %v", v.Display, tt.want)
			}
			if v.Remaining != tt.remains {
				t.Errorf("Observe().Remaining = %v, want %v", v.Remaining, tt.remains)
			}
		})
	}
}

func TestView_Message(t *testing.T) {
	v := Observe(NewRecord(StateWaiting, now.Add(550*time.Second), now, ""), now)
	if got, want := v.Message(), "online: next update in 9m 10s"; got != want {
		t.Errorf("Message() = %q, want %q", got, want)
	}

	v = Observe(DefaultRecord(), now)
	if got := v.Message(); got != "SYSTEM OFFLINE: checker is not running" {
		t.Errorf("Message() = %q", got)
	}
}

func TestRecord_TimeRoundTrip(t *testing.T) {
	next := now.Add(600 * time.Second)
	rec := NewRecord(StateWaiting, next, now, "cycle-1")

	if got := rec.NextRunTime(); got.Sub(next).Abs() > time.Millisecond {
		t.Errorf("NextRunTime() = %v, want %v", got, next)
	}
	if got := rec.HeartbeatTime(); got.Sub(now).Abs() > time.Millisecond {
		t.Errorf("HeartbeatTime() = %v, want %v", got, now)
	}

	working := NewRecord(StateWorking, time.Time{}, now, "")
	if working.NextRun != nil {
		t.Errorf("NewRecord(WORKING).NextRun = %v, want nil", *working.NextRun)
	}
	if !working.NextRunTime().IsZero() {
		t.Error("NextRunTime() should be zero without next run")
	}
}
