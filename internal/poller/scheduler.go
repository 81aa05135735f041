package poller

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jpalmerr/linkmonitor/internal/liveness"
	"github.com/jpalmerr/linkmonitor/internal/store"
)

// ErrCycleRunning is returned by [Scheduler.TryRunCycle] when a cycle is
// already in progress in this process.
var ErrCycleRunning = errors.New("check cycle already running")

// Defaults used when [SchedulerConfig] leaves a field zero.
const (
	DefaultInterval          = 10 * time.Minute
	DefaultPolitenessDelay   = 500 * time.Millisecond
	DefaultHeartbeatInterval = 10 * time.Second
)

// Checker probes one URL. [Prober] is the production implementation.
type Checker interface {
	Probe(ctx context.Context, url string) Result
}

// SchedulerConfig configures a [Scheduler].
type SchedulerConfig struct {
	// Interval is the target period between cycle starts.
	Interval time.Duration

	// PolitenessDelay is the pause between two consecutive targets.
	// Zero disables it.
	PolitenessDelay time.Duration

	// HeartbeatInterval is how often the WAITING record is refreshed while
	// the perpetual loop sleeps between cycles.
	HeartbeatInterval time.Duration

	// OnResult is called after each target's result has been persisted.
	// It runs on the cycle goroutine and must not block for long.
	OnResult func(Result)
}

// CycleReport summarises one completed or aborted cycle.
type CycleReport struct {
	CycleID    string
	StartedAt  time.Time
	FinishedAt time.Time

	// NextRun is zero when the cycle was aborted.
	NextRun time.Time

	// Checked is the number of targets probed.
	Checked int

	// Targets is the snapshot as last persisted.
	Targets []store.Target
}

// Scheduler runs check cycles over the targets in a [store.Store].
//
// A cycle probes every target sequentially, persisting the whole list after
// each one so observers see progress. [Scheduler.Start] runs cycles forever
// (loop mode); [Scheduler.TryRunCycle] runs a single cycle on demand
// (trigger mode). At most one cycle runs at a time.
//
// All lifecycle methods (Start, Stop) are safe for concurrent use.
type Scheduler struct {
	store    store.Store
	checker  Checker
	reporter liveness.Reporter
	cfg      SchedulerConfig
	logger   *slog.Logger

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error

	cycleMu sync.Mutex

	mu      sync.Mutex
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	started bool
	stopped bool
}

// NewScheduler creates a [Scheduler]. A zero Interval or HeartbeatInterval
// takes the package default.
func NewScheduler(st store.Store, checker Checker, reporter liveness.Reporter, cfg SchedulerConfig, logger *slog.Logger) *Scheduler {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultInterval
	}
	if cfg.HeartbeatInterval <= 0 {
		cfg.HeartbeatInterval = DefaultHeartbeatInterval
	}
	return &Scheduler{
		store:    st,
		checker:  checker,
		reporter: reporter,
		cfg:      cfg,
		logger:   logger,
		now:      time.Now,
		sleep:    sleepContext,
	}
}

// NextRun returns when the next cycle should start: interval after start,
// but never before end.
func NextRun(start, end time.Time, interval time.Duration) time.Time {
	wait := interval - end.Sub(start)
	if wait < 0 {
		wait = 0
	}
	return end.Add(wait)
}

// RunCycle runs one cycle, waiting for any cycle already in progress.
//
// Persistence and liveness failures do not stop the cycle; they are logged
// and returned joined once it ends. A cancelled ctx stops the cycle between
// targets and is returned as part of the error.
func (s *Scheduler) RunCycle(ctx context.Context) (CycleReport, error) {
	s.cycleMu.Lock()
	defer s.cycleMu.Unlock()
	return s.runCycle(ctx)
}

// TryRunCycle runs one cycle unless one is already running, in which case
// it returns [ErrCycleRunning] immediately.
func (s *Scheduler) TryRunCycle(ctx context.Context) (CycleReport, error) {
	if !s.cycleMu.TryLock() {
		return CycleReport{}, ErrCycleRunning
	}
	defer s.cycleMu.Unlock()
	return s.runCycle(ctx)
}

func (s *Scheduler) runCycle(ctx context.Context) (CycleReport, error) {
	report := CycleReport{
		CycleID:   uuid.NewString(),
		StartedAt: s.now(),
	}
	logger := s.logger.With("cycle_id", report.CycleID)

	var errs []error
	s.report(logger, &errs, liveness.StateWorking, time.Time{}, report.CycleID)

	targets := s.store.Load()
	logger.Info("cycle started", "targets", len(targets))

	for i := range targets {
		if i > 0 {
			if err := s.sleep(ctx, s.cfg.PolitenessDelay); err != nil {
				return s.abort(logger, report, targets, errs, err)
			}
		} else if err := ctx.Err(); err != nil {
			return s.abort(logger, report, targets, errs, err)
		}

		res := s.probeSafe(ctx, logger, targets[i].URL)

		targets[i].Status = res.Status
		targets[i].Code = res.Code
		targets[i].Latency = res.LatencyMs
		targets[i].LastCheck = store.FormatClock(s.now())

		// Edits made while the cycle runs stay in the store; a target removed
		// meanwhile is checked but not written back.
		found, err := store.RecordResult(s.store, targets[i])
		if err != nil {
			logger.Error("failed to persist targets", "url", res.URL, "error", err)
			errs = append(errs, err)
		} else if !found {
			logger.Debug("target removed during cycle", "url", res.URL)
		}
		s.report(logger, &errs, liveness.StateWorking, time.Time{}, report.CycleID)
		report.Checked++

		logger.Debug("target checked",
			"url", res.URL,
			"status", res.Status.String(),
			"code", res.Code,
			"latency_ms", res.LatencyMs,
			"attempts", res.Attempts,
		)

		if s.cfg.OnResult != nil {
			s.cfg.OnResult(res)
		}
	}

	report.FinishedAt = s.now()
	report.NextRun = NextRun(report.StartedAt, report.FinishedAt, s.cfg.Interval)
	report.Targets = targets

	s.report(logger, &errs, liveness.StateWaiting, report.NextRun, report.CycleID)

	logger.Info("cycle finished",
		"checked", report.Checked,
		"duration", report.FinishedAt.Sub(report.StartedAt),
		"next_run", store.FormatClock(report.NextRun),
	)
	return report, errors.Join(errs...)
}

func (s *Scheduler) abort(logger *slog.Logger, report CycleReport, targets []store.Target, errs []error, cause error) (CycleReport, error) {
	report.FinishedAt = s.now()
	report.Targets = targets
	logger.Warn("cycle aborted", "checked", report.Checked, "error", cause)
	return report, errors.Join(append(errs, cause)...)
}

func (s *Scheduler) report(logger *slog.Logger, errs *[]error, state liveness.State, nextRun time.Time, cycleID string) {
	if err := s.reporter.Report(state, nextRun, cycleID); err != nil {
		logger.Error("failed to report liveness", "state", state, "error", err)
		*errs = append(*errs, err)
	}
}

// probeSafe calls the checker with panic recovery.
// If the checker panics, it logs the full stack trace with a correlation ID
// and returns a DOWN result with an error containing the ID.
func (s *Scheduler) probeSafe(ctx context.Context, logger *slog.Logger, url string) (res Result) {
	defer func() {
		if r := recover(); r != nil {
			correlationID := uuid.NewString()
			stack := debug.Stack()

			logger.Error("probe panic",
				"url", url,
				"correlation_id", correlationID,
				"panic", fmt.Sprintf("%v", r),
				"stack", string(stack),
			)

			res = Result{
				URL:       url,
				Status:    store.Down(),
				Code:      store.CodeTransport,
				CheckedAt: s.now(),
				Error:     fmt.Errorf("probe panic (correlation_id: %s)", correlationID),
			}
		}
	}()
	return s.checker.Probe(ctx, url)
}

// Start begins the perpetual loop in a background goroutine.
//
// Start is non-blocking and returns immediately. The loop will:
//  1. Run a cycle immediately
//  2. Wait until the cycle's next run, refreshing the WAITING heartbeat
//  3. Repeat until [Scheduler.Stop] is called or the context is cancelled
//
// If ctx is nil, context.Background() is used as the parent context.
// Start is idempotent; subsequent calls after the first are no-ops.
// If Stop was called before Start, Start is a no-op.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	if s.started || s.stopped {
		s.mu.Unlock()
		return
	}
	s.started = true

	if ctx == nil {
		ctx = context.Background()
	}
	s.ctx, s.cancel = context.WithCancel(ctx)
	runCtx := s.ctx // capture under lock to avoid race
	s.wg.Add(1)
	s.mu.Unlock()

	go func() {
		defer s.wg.Done()
		s.Run(runCtx)
	}()
}

// Stop halts the loop and waits for the running cycle to finish.
//
// Stop is idempotent and safe to call multiple times. Calling Stop before
// Start is a safe no-op.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.stopped {
		s.stopped = true
		if s.cancel != nil {
			s.cancel()
		}
	}
	s.mu.Unlock()

	s.wg.Wait()
}

// Run runs cycles until ctx is cancelled. It blocks.
func (s *Scheduler) Run(ctx context.Context) {
	for {
		report, err := s.RunCycle(ctx)
		if ctx.Err() != nil {
			return
		}
		if err != nil {
			s.logger.Error("cycle completed with errors", "cycle_id", report.CycleID, "error", err)
		}
		if !s.waitUntil(ctx, report.NextRun, report.CycleID) {
			return
		}
	}
}

// waitUntil sleeps until next, refreshing the WAITING record every
// heartbeat interval. It returns false when ctx is cancelled.
func (s *Scheduler) waitUntil(ctx context.Context, next time.Time, cycleID string) bool {
	for {
		remaining := next.Sub(s.now())
		if remaining <= 0 {
			return ctx.Err() == nil
		}
		step := min(remaining, s.cfg.HeartbeatInterval)
		if err := s.sleep(ctx, step); err != nil {
			return false
		}
		if s.now().Before(next) {
			if err := s.reporter.Report(liveness.StateWaiting, next, cycleID); err != nil {
				s.logger.Error("failed to refresh heartbeat", "cycle_id", cycleID, "error", err)
			}
		}
	}
}
