package batch

import "time"

// EngineConfig holds the tunables spec'd in spec.md §6's environment
// configuration, bound from the process environment by
// internal/config via viper.
type EngineConfig struct {
	// LeaseSeconds is how long a claimed item may run before the
	// Watchdog considers its lease expired.
	LeaseSeconds int
	// MaxRetries is the default retry ceiling assigned to new items.
	MaxRetries int
	// WorkerBackoffBaseMS is the initial interval of the worker's
	// exponential backoff (backoff/v4 defaults for growth and jitter,
	// capped at 30s) between self-reschedules after an empty claim or
	// a failed iteration.
	WorkerBackoffBaseMS int
	// WatchdogIntervalMS is how often the Watchdog sweeps for expired
	// leases.
	WatchdogIntervalMS int
	// StorageBucket names the object-store root the Object Store
	// Gateway writes under.
	StorageBucket string
}

// DefaultEngineConfig returns the spec's reference defaults.
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		LeaseSeconds:        90,
		MaxRetries:          3,
		WorkerBackoffBaseMS: 2000,
		WatchdogIntervalMS:  5000,
	}
}

// LeaseDuration is LeaseSeconds as a time.Duration.
func (c EngineConfig) LeaseDuration() time.Duration {
	return time.Duration(c.LeaseSeconds) * time.Second
}

// WatchdogInterval is WatchdogIntervalMS as a time.Duration.
func (c EngineConfig) WatchdogInterval() time.Duration {
	return time.Duration(c.WatchdogIntervalMS) * time.Millisecond
}

// BackoffBase is WorkerBackoffBaseMS as a time.Duration.
func (c EngineConfig) BackoffBase() time.Duration {
	return time.Duration(c.WorkerBackoffBaseMS) * time.Millisecond
}
