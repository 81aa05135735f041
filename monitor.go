package linkmonitor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/jpalmerr/linkmonitor/internal/liveness"
	"github.com/jpalmerr/linkmonitor/internal/poller"
	"github.com/jpalmerr/linkmonitor/internal/proxy"
	"github.com/jpalmerr/linkmonitor/internal/server"
	"github.com/jpalmerr/linkmonitor/internal/store"
)

const (
	defaultInterval = 10 * time.Minute
	defaultPort     = 8080
	defaultSeedURL  = "https://google.com"
	defaultDataDir  = "."
)

// File names inside the data directory.
const (
	TargetsFile  = "data_monitoring.json"
	LivenessFile = "status_info.json"
)

// livenessBackend writes and reads the liveness record.
type livenessBackend interface {
	liveness.Reporter
	liveness.Reader
}

// Monitor is the main orchestrator for URL checking and the observer API.
//
// Monitor owns the target list, runs check cycles over it and publishes a
// liveness record that observers turn into "working", "next update in
// 9m 10s" or "offline". It is created using [New] with functional options
// and started with [Monitor.Start].
//
// The typical lifecycle is:
//
//	m, err := linkmonitor.New(linkmonitor.WithDataDir("./data"))
//	if err != nil {
//	    slog.Error("failed to create monitor", "error", err)
//	    os.Exit(1)
//	}
//
//	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
//	defer cancel()
//
//	m.Start(ctx) // blocks until context cancelled
//
// The caller controls the lifecycle via the context. Cancel the context to
// trigger graceful shutdown; a running cycle stops between targets.
type Monitor struct {
	title           string
	dataDir         string
	mode            Mode
	interval        time.Duration
	port            int
	serve           bool
	seedURL         string
	proxy           *proxy.Config
	logger          *slog.Logger
	statusCallbacks []func(StatusResult)

	store     store.Store
	liveness  livenessBackend
	client    *poller.Client
	scheduler *poller.Scheduler
	now       func() time.Time
}

// New creates a new [Monitor] instance with the given options.
//
// Defaults:
//   - Interval: 10 minutes, loop mode
//   - Data directory: the working directory
//   - Port: 8080
//   - Seed URL: https://google.com
//   - Timeouts: 20s direct, 30s through a proxy
//   - Retry: 3 attempts, 1s backoff, 2s after proxy failures
//   - Politeness delay: 500ms, heartbeat refresh: 10s
//
// Returns an error if any option is invalid.
func New(opts ...Option) (*Monitor, error) {
	cfg := &monitorConfig{
		dataDir:           defaultDataDir,
		interval:          defaultInterval,
		mode:              ModeLoop,
		port:              defaultPort,
		serve:             true,
		seedURL:           defaultSeedURL,
		timeout:           poller.DefaultTimeout,
		proxyTimeout:      poller.DefaultProxyTimeout,
		retry:             poller.DefaultRetryPolicy(),
		politenessDelay:   poller.DefaultPolitenessDelay,
		heartbeatInterval: poller.DefaultHeartbeatInterval,
	}

	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}

	// default to slog.Default() if no logger provided
	logger := cfg.logger
	if logger == nil {
		logger = slog.Default()
	}

	var (
		st store.Store
		lv livenessBackend
	)
	if cfg.inMemory {
		st = store.NewMemoryStore()
		lv = liveness.NewMemoryReporter(nil)
	} else {
		st = store.NewFileStore(filepath.Join(cfg.dataDir, TargetsFile), logger)
		lv = liveness.NewFileReporter(filepath.Join(cfg.dataDir, LivenessFile), logger)
	}

	proxyCfg := proxy.Format(cfg.proxy)
	timeout := cfg.timeout
	if proxyCfg != nil {
		timeout = cfg.proxyTimeout
	}

	client := poller.NewClient(proxyCfg)
	prober := poller.NewProber(client, poller.ProbeConfig{
		Retry:         cfg.retry,
		Timeout:       timeout,
		SlowThreshold: cfg.slowThreshold,
	}, logger)

	m := &Monitor{
		title:           cfg.title,
		dataDir:         cfg.dataDir,
		mode:            cfg.mode,
		interval:        cfg.interval,
		port:            cfg.port,
		serve:           cfg.serve,
		seedURL:         cfg.seedURL,
		proxy:           proxyCfg,
		logger:          logger,
		statusCallbacks: cfg.statusCallbacks,
		store:           st,
		liveness:        lv,
		client:          client,
		now:             time.Now,
	}
	m.scheduler = poller.NewScheduler(st, prober, lv, poller.SchedulerConfig{
		Interval:          cfg.interval,
		PolitenessDelay:   cfg.politenessDelay,
		HeartbeatInterval: cfg.heartbeatInterval,
		OnResult:          m.dispatch,
	}, logger)

	return m, nil
}

// Start seeds the target list, serves the API and, in [ModeLoop], runs
// check cycles until the context is cancelled.
//
// Start is a blocking call. The first cycle starts immediately; after that
// each cycle starts one interval after the previous one started, or right
// away when a cycle overran the interval.
//
// Returns nil on graceful shutdown. Returns an error if the target list
// cannot be seeded or the HTTP server fails to start.
func (m *Monitor) Start(ctx context.Context) error {
	if m.mode == ModeTrigger && !m.serve {
		return errors.New("trigger mode needs the HTTP server; use RunOnce instead")
	}

	m.logger.Info("linkmonitor starting",
		"mode", string(m.mode),
		"interval", m.interval.String(),
		"data_dir", m.dataDir,
		"proxy", m.proxy.Redacted(),
	)

	// check if context already cancelled
	if ctx.Err() != nil {
		return nil
	}

	targets, err := store.Seed(m.store, m.seedURL)
	if err != nil {
		return fmt.Errorf("seed targets: %w", err)
	}
	m.logger.Info("targets loaded", "count", len(targets))

	defer m.client.Close()

	if m.serve {
		httpServer := server.NewServer(m.store, m.liveness, m.scheduler.TryRunCycle, m.port, m.title, m.logger)
		if err := httpServer.Start(ctx); err != nil {
			return fmt.Errorf("failed to start HTTP server: %w", err)
		}
		m.logger.Info("api available", "url", fmt.Sprintf("http://localhost:%d/api/system", m.port))
	}

	if m.mode == ModeLoop {
		m.scheduler.Start(ctx)
	}

	<-ctx.Done()
	m.scheduler.Stop()
	m.logger.Info("linkmonitor stopped")
	return nil
}

// RunOnce seeds the target list if needed and runs a single cycle.
//
// Returns [ErrCycleRunning] if a cycle is already running in this process.
// Persistence failures during the cycle are returned joined, alongside a
// report of what was checked.
func (m *Monitor) RunOnce(ctx context.Context) (CycleReport, error) {
	if _, err := store.Seed(m.store, m.seedURL); err != nil {
		return CycleReport{}, fmt.Errorf("seed targets: %w", err)
	}
	return m.scheduler.TryRunCycle(ctx)
}

// SaveTargets replaces the URL set.
//
// Each raw URL is trimmed and given https:// when it lacks a scheme; blank
// entries are dropped. URLs already monitored keep their last result, new
// ones start as PENDING, URLs no longer listed are removed.
func (m *Monitor) SaveTargets(rawURLs []string) ([]Target, error) {
	targets, err := store.Edit(m.store, rawURLs)
	if err != nil {
		return nil, err
	}
	m.logger.Info("targets edited", "count", len(targets))
	return targets, nil
}

// Targets returns the persisted target list.
func (m *Monitor) Targets() []Target {
	return m.store.Load()
}

// Summary returns per-status counts of the persisted target list.
func (m *Monitor) Summary() Summary {
	return store.Summarize(m.store.Load())
}

// System returns the liveness state as an observer sees it now.
func (m *Monitor) System() SystemView {
	return liveness.Observe(m.liveness.Read(), m.now())
}

// Mode returns the configured cycle mode.
func (m *Monitor) Mode() Mode {
	return m.mode
}

// Interval returns the configured interval between cycle starts.
func (m *Monitor) Interval() time.Duration {
	return m.interval
}

// Port returns the configured HTTP port for the API server.
func (m *Monitor) Port() int {
	return m.port
}

// DataDir returns the directory holding the state files.
func (m *Monitor) DataDir() string {
	return m.dataDir
}

// dispatch forwards a persisted result to the status callbacks.
func (m *Monitor) dispatch(res poller.Result) {
	if res.Error != nil {
		m.logger.Warn("check failed",
			"url", res.URL,
			"status", res.Status.String(),
			"attempts", res.Attempts,
			"error", res.Error.Error(),
		)
	}

	if len(m.statusCallbacks) == 0 {
		return
	}
	public := StatusResult{
		URL:       res.URL,
		Status:    res.Status,
		Code:      res.Code,
		Latency:   time.Duration(res.LatencyMs) * time.Millisecond,
		Attempts:  res.Attempts,
		CheckedAt: res.CheckedAt,
		Error:     res.Error,
	}
	for _, cb := range m.statusCallbacks {
		invokeCallbackSafe(cb, public, m.logger)
	}
}

// invokeCallbackSafe calls a status callback with panic recovery.
// Panics are logged but do not propagate.
func invokeCallbackSafe(cb func(StatusResult), result StatusResult, logger *slog.Logger) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("status callback panicked",
				"panic", r,
				"url", result.URL,
			)
		}
	}()
	cb(result)
}
