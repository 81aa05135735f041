package liveness

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/jpalmerr/linkmonitor/internal/atomicfile"
)

// Reporter is the write side used by the scheduler.
type Reporter interface {
	// Report persists state with a fresh heartbeat. A zero nextRun means
	// "no next run scheduled".
	Report(state State, nextRun time.Time, cycleID string) error
}

// Reader is the read side used by observers.
type Reader interface {
	// Read returns the current record, or [DefaultRecord] if none is usable.
	Read() Record
}

// FileReporter persists the liveness record as a JSON file.
type FileReporter struct {
	path   string
	now    func() time.Time
	logger *slog.Logger
	mu     sync.Mutex
}

// NewFileReporter creates a [FileReporter] writing to path.
func NewFileReporter(path string, logger *slog.Logger) *FileReporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileReporter{
		path:   path,
		now:    time.Now,
		logger: logger,
	}
}

// Path returns the backing file path.
func (r *FileReporter) Path() string {
	return r.path
}

// Report implements [Reporter] with an atomic file replacement.
func (r *FileReporter) Report(state State, nextRun time.Time, cycleID string) error {
	rec := NewRecord(state, nextRun, r.now(), cycleID)

	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode liveness: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if err := atomicfile.WriteFile(r.path, data, 0o644); err != nil {
		return fmt.Errorf("write liveness: %w", err)
	}
	return nil
}

// Read implements [Reader]. Missing or corrupt files yield [DefaultRecord].
func (r *FileReporter) Read() Record {
	data, err := os.ReadFile(r.path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			r.logger.Warn("failed to read liveness record", "path", r.path, "error", err)
		}
		return DefaultRecord()
	}

	rec := DefaultRecord()
	if err := json.Unmarshal(data, &rec); err != nil {
		r.logger.Warn("liveness record is corrupt, using defaults", "path", r.path, "error", err)
		return DefaultRecord()
	}
	if rec.MachineStatus == "" {
		rec.MachineStatus = StateUnknown
	}
	return rec
}

// MemoryReporter keeps the record in memory. It implements both [Reporter]
// and [Reader] and remembers every state it was given.
type MemoryReporter struct {
	mu      sync.Mutex
	now     func() time.Time
	current *Record
	history []Record
}

// NewMemoryReporter creates a [MemoryReporter] using clock for heartbeats.
// A nil clock uses time.Now.
func NewMemoryReporter(clock func() time.Time) *MemoryReporter {
	if clock == nil {
		clock = time.Now
	}
	return &MemoryReporter{now: clock}
}

// Report implements [Reporter].
func (m *MemoryReporter) Report(state State, nextRun time.Time, cycleID string) error {
	rec := NewRecord(state, nextRun, m.now(), cycleID)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.current = &rec
	m.history = append(m.history, rec)
	return nil
}

// Read implements [Reader].
func (m *MemoryReporter) Read() Record {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == nil {
		return DefaultRecord()
	}
	return *m.current
}

// History returns a copy of every record reported so far.
func (m *MemoryReporter) History() []Record {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Record, len(m.history))
	copy(out, m.history)
	return out
}
