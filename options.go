package linkmonitor

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jpalmerr/linkmonitor/internal/liveness"
	"github.com/jpalmerr/linkmonitor/internal/poller"
)

// monitorConfig holds mutable state during Monitor construction.
type monitorConfig struct {
	title             string
	dataDir           string
	inMemory          bool
	interval          time.Duration
	mode              Mode
	proxy             string
	port              int
	serve             bool
	seedURL           string
	timeout           time.Duration
	proxyTimeout      time.Duration
	retry             poller.RetryPolicy
	politenessDelay   time.Duration
	heartbeatInterval time.Duration
	slowThreshold     time.Duration
	logger            *slog.Logger
	statusCallbacks   []func(StatusResult)
}

// Option is a function that configures a [Monitor] instance during construction.
//
// Option implements the functional options pattern, allowing optional
// configuration to be passed to [New] in a type-safe, extensible way.
// Options return an error if validation fails.
type Option func(*monitorConfig) error

// WithDataDir sets the directory holding the target list and liveness
// files. Defaults to the working directory.
//
// Returns an error if dir is empty.
func WithDataDir(dir string) Option {
	return func(cfg *monitorConfig) error {
		if dir == "" {
			return errors.New("data directory cannot be empty")
		}
		cfg.dataDir = dir
		cfg.inMemory = false
		return nil
	}
}

// WithInMemoryState keeps the target list and liveness record in process
// memory instead of files. Nothing survives a restart and other processes
// cannot observe the state.
func WithInMemoryState() Option {
	return func(cfg *monitorConfig) error {
		cfg.inMemory = true
		return nil
	}
}

// WithInterval sets the target period between the starts of two cycles.
// Defaults to 10 minutes.
//
// Example:
//
//	m, err := linkmonitor.New(
//	    linkmonitor.WithInterval(15 * time.Minute),
//	)
//
// Returns an error if the interval is below one minute.
func WithInterval(d time.Duration) Option {
	return func(cfg *monitorConfig) error {
		if d < time.Minute {
			return fmt.Errorf("interval must be at least 1m, got %s", d)
		}
		cfg.interval = d
		return nil
	}
}

// WithMode selects the perpetual loop ([ModeLoop], the default) or
// external triggering ([ModeTrigger]).
func WithMode(m Mode) Option {
	return func(cfg *monitorConfig) error {
		if !m.Valid() {
			return fmt.Errorf("unknown mode %q (want %q or %q)", m, ModeLoop, ModeTrigger)
		}
		cfg.mode = m
		return nil
	}
}

// WithProxy routes every check through the given proxy.
//
// raw may omit the scheme (http:// is assumed) and may carry credentials
// with reserved characters in the password; they are percent-encoded.
// An empty string means direct connections.
//
// Example:
//
//	m, err := linkmonitor.New(
//	    linkmonitor.WithProxy("user:p@ss@proxy.example.com:3128"),
//	)
func WithProxy(raw string) Option {
	return func(cfg *monitorConfig) error {
		cfg.proxy = raw
		return nil
	}
}

// WithPort sets the HTTP port for the observer API.
//
// Defaults to 8080 if not specified.
//
// Returns an error if the port is outside the valid range (1-65535).
func WithPort(port int) Option {
	return func(cfg *monitorConfig) error {
		if port < 1 || port > 65535 {
			return errors.New("port must be between 1 and 65535")
		}
		cfg.port = port
		return nil
	}
}

// WithoutServer disables the HTTP API. Only valid in [ModeLoop].
func WithoutServer() Option {
	return func(cfg *monitorConfig) error {
		cfg.serve = false
		return nil
	}
}

// WithTitle sets the instance title reported by the API.
func WithTitle(title string) Option {
	return func(cfg *monitorConfig) error {
		cfg.title = title
		return nil
	}
}

// WithLogger sets a custom [slog.Logger] for the Monitor instance.
//
// If not specified, [slog.Default] is used.
//
// Returns an error if the logger is nil.
func WithLogger(logger *slog.Logger) Option {
	return func(cfg *monitorConfig) error {
		if logger == nil {
			return errors.New("logger cannot be nil")
		}
		cfg.logger = logger
		return nil
	}
}

// WithSeedURL sets the single target written on first boot, when no target
// list exists yet. Defaults to https://google.com. An empty string seeds an
// empty list.
func WithSeedURL(rawURL string) Option {
	return func(cfg *monitorConfig) error {
		cfg.seedURL = rawURL
		return nil
	}
}

// WithTimeouts sets the per-request timeout for direct and proxied checks.
// Defaults are 20s and 30s.
//
// Returns an error if either timeout is zero or negative.
func WithTimeouts(direct, proxied time.Duration) Option {
	return func(cfg *monitorConfig) error {
		if direct <= 0 || proxied <= 0 {
			return errors.New("timeouts must be positive")
		}
		cfg.timeout = direct
		cfg.proxyTimeout = proxied
		return nil
	}
}

// WithRetryPolicy sets the attempt bound and the waits after ordinary and
// proxy transport failures. Defaults are 3 attempts, 1s and 2s.
//
// Returns an error if attempts is below 1 or a backoff is negative.
func WithRetryPolicy(attempts int, backoff, proxyBackoff time.Duration) Option {
	return func(cfg *monitorConfig) error {
		if attempts < 1 {
			return errors.New("retry attempts must be at least 1")
		}
		if backoff < 0 || proxyBackoff < 0 {
			return errors.New("retry backoff cannot be negative")
		}
		cfg.retry = poller.RetryPolicy{
			MaxAttempts:  attempts,
			Backoff:      backoff,
			ProxyBackoff: proxyBackoff,
		}
		return nil
	}
}

// WithPolitenessDelay sets the pause between two consecutive targets.
// Defaults to 500ms; zero disables it.
func WithPolitenessDelay(d time.Duration) Option {
	return func(cfg *monitorConfig) error {
		if d < 0 {
			return errors.New("politeness delay cannot be negative")
		}
		cfg.politenessDelay = d
		return nil
	}
}

// WithHeartbeatInterval sets how often the loop refreshes its liveness
// record while waiting between cycles. Defaults to 10s.
//
// Returns an error unless 0 < d < 720s, the staleness threshold observers
// use to declare the checker offline.
func WithHeartbeatInterval(d time.Duration) Option {
	return func(cfg *monitorConfig) error {
		if d <= 0 || d >= liveness.StaleThreshold {
			return fmt.Errorf("heartbeat interval must be between 0 and %s", liveness.StaleThreshold)
		}
		cfg.heartbeatInterval = d
		return nil
	}
}

// WithSlowThreshold reports an HTTP 200 slower than d as LAMBAT instead of
// AMAN. Zero (the default) disables the check.
func WithSlowThreshold(d time.Duration) Option {
	return func(cfg *monitorConfig) error {
		if d < 0 {
			return errors.New("slow threshold cannot be negative")
		}
		cfg.slowThreshold = d
		return nil
	}
}

// WithStatusCallback registers a function to be called after every target
// check has been persisted.
//
// Multiple callbacks may be registered by calling WithStatusCallback multiple
// times; they execute in registration order.
//
// IMPORTANT: Callbacks must be non-blocking. They run on the cycle goroutine
// and delay the next target while they run.
//
// Panics within callbacks are recovered and logged; they do not stop the
// cycle.
//
// Example:
//
//	m, err := linkmonitor.New(
//	    linkmonitor.WithStatusCallback(func(r linkmonitor.StatusResult) {
//	        if r.Status.Kind() == linkmonitor.KindBlocked {
//	            log.Printf("ALERT: %s looks blocked", r.URL)
//	        }
//	    }),
//	)
//
// Nil callbacks are silently ignored.
func WithStatusCallback(cb func(StatusResult)) Option {
	return func(cfg *monitorConfig) error {
		if cb == nil {
			return nil // no-op for nil callback (safe to call)
		}
		cfg.statusCallbacks = append(cfg.statusCallbacks, cb)
		return nil
	}
}
