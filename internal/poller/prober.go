package poller

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/jpalmerr/linkmonitor/internal/store"
)

// Default request timeouts. A proxied request gets more time because it
// crosses an extra hop.
const (
	DefaultTimeout      = 20 * time.Second
	DefaultProxyTimeout = 30 * time.Second
)

// Fetcher performs one HTTP check. [Client] is the production implementation.
type Fetcher interface {
	Fetch(ctx context.Context, url string, timeout time.Duration) Response
}

// RetryPolicy bounds how often a transport failure is retried.
type RetryPolicy struct {
	// MaxAttempts is the total number of attempts, including the first.
	MaxAttempts int

	// Backoff is the wait after an ordinary transport failure.
	Backoff time.Duration

	// ProxyBackoff is the wait after a proxy failure.
	ProxyBackoff time.Duration
}

// DefaultRetryPolicy returns three attempts with 1s and 2s backoffs.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts:  3,
		Backoff:      time.Second,
		ProxyBackoff: 2 * time.Second,
	}
}

func (p RetryPolicy) attempts() int {
	if p.MaxAttempts < 1 {
		return 1
	}
	return p.MaxAttempts
}

func (p RetryPolicy) backoff(resp Response) time.Duration {
	if resp.ProxyFailed {
		return p.ProxyBackoff
	}
	return p.Backoff
}

// ProbeConfig configures a [Prober].
type ProbeConfig struct {
	Retry RetryPolicy

	// Timeout is the per-attempt request timeout.
	Timeout time.Duration

	// SlowThreshold turns an HTTP 200 slower than this into LAMBAT.
	// Zero disables the check.
	SlowThreshold time.Duration
}

// Result is the classified outcome of probing one URL.
type Result struct {
	URL       string
	Status    store.Status
	Code      string
	LatencyMs int64
	Attempts  int
	CheckedAt time.Time

	// Error is the last transport error, nil when an HTTP response arrived.
	Error error
}

// Prober checks a single URL with bounded retry and classifies the outcome.
type Prober struct {
	fetcher Fetcher
	cfg     ProbeConfig
	sleep   func(ctx context.Context, d time.Duration) error
	logger  *slog.Logger
}

// NewProber creates a [Prober]. A zero cfg.Timeout uses [DefaultTimeout].
func NewProber(fetcher Fetcher, cfg ProbeConfig, logger *slog.Logger) *Prober {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &Prober{
		fetcher: fetcher,
		cfg:     cfg,
		sleep:   sleepContext,
		logger:  logger,
	}
}

// Probe checks url. Transport failures are retried up to the policy's
// attempt count; any HTTP response, whatever its code, ends the retries.
// Probe never returns an error: failures are expressed as a Status.
func (p *Prober) Probe(ctx context.Context, url string) Result {
	attempts := p.cfg.Retry.attempts()

	var resp Response
	attempt := 0
	for attempt < attempts {
		attempt++
		resp = p.fetcher.Fetch(ctx, url, p.cfg.Timeout)
		if resp.Error == nil {
			break
		}

		p.logger.Debug("check attempt failed",
			"url", url,
			"attempt", attempt,
			"proxy_failed", resp.ProxyFailed,
			"error", resp.Error,
		)

		if attempt == attempts {
			break
		}
		if err := p.sleep(ctx, p.cfg.Retry.backoff(resp)); err != nil {
			break
		}
	}

	res := Classify(resp, p.cfg.SlowThreshold)
	res.URL = url
	res.Attempts = attempt
	res.CheckedAt = time.Now()
	return res
}

// Classify maps a single [Response] to a status, code and latency.
//
// A proxy failure wins over any other transport failure; transport failures
// carry no latency. HTTP 200 is AMAN (or LAMBAT past slowThreshold when it is
// positive), 429 is the block indicator and every other code is ERR <code>.
func Classify(resp Response, slowThreshold time.Duration) Result {
	if resp.Error != nil {
		if resp.ProxyFailed {
			return Result{Status: store.ProxyError(), Code: store.CodeProxy, Error: resp.Error}
		}
		return Result{Status: store.Down(), Code: store.CodeTransport, Error: resp.Error}
	}

	res := Result{
		Code:      strconv.Itoa(resp.StatusCode),
		LatencyMs: resp.Latency.Round(time.Millisecond).Milliseconds(),
	}
	switch resp.StatusCode {
	case http.StatusOK:
		if slowThreshold > 0 && resp.Latency > slowThreshold {
			res.Status = store.TimeoutSlow()
		} else {
			res.Status = store.Safe()
		}
	case http.StatusTooManyRequests:
		res.Status = store.Blocked()
	default:
		res.Status = store.HTTPError(resp.StatusCode)
	}
	return res
}

// sleepContext waits for d or until ctx is done, whichever comes first.
func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
