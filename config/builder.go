package config

import (
	"github.com/jpalmerr/linkmonitor"
)

// BuildOptions converts parsed configuration into SDK options for
// [linkmonitor.New].
//
// The logger is not part of the result; callers build it from
// [Config.Logging] and append [linkmonitor.WithLogger].
func BuildOptions(cfg *Config) []linkmonitor.Option {
	opts := []linkmonitor.Option{
		linkmonitor.WithDataDir(cfg.DataDir),
		linkmonitor.WithMode(linkmonitor.Mode(cfg.Mode)),
		linkmonitor.WithInterval(cfg.Interval()),
		linkmonitor.WithPort(cfg.Port),
		linkmonitor.WithSeedURL(cfg.SeedURL),
		linkmonitor.WithTimeouts(cfg.Timeout.Duration(), cfg.ProxyTimeout.Duration()),
		linkmonitor.WithRetryPolicy(
			cfg.Retry.MaxAttempts,
			cfg.Retry.Backoff.Duration(),
			cfg.Retry.ProxyBackoff.Duration(),
		),
		linkmonitor.WithPolitenessDelay(cfg.PolitenessDelay.Duration()),
		linkmonitor.WithHeartbeatInterval(cfg.HeartbeatInterval.Duration()),
		linkmonitor.WithSlowThreshold(cfg.SlowThreshold.Duration()),
	}

	if cfg.Title != "" {
		opts = append(opts, linkmonitor.WithTitle(cfg.Title))
	}
	if cfg.Proxy != "" {
		opts = append(opts, linkmonitor.WithProxy(cfg.Proxy))
	}

	return opts
}
