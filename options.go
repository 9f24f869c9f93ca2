package recap

import (
	"fmt"
	"time"

	"github.com/turnwise/recap/backend"
	"github.com/turnwise/recap/hooks"
)

// internalConfig holds the wiring the functional options configure.
type internalConfig struct {
	backend backend.Backend
	logger  Logger
	now     func() time.Time
	hooks   *hooks.Registry
}

// Option configures a Compactor beyond the policy in Config.
type Option func(*internalConfig) error

// WithBackend sets the durable store for history offload. Without a backend
// the engine still compacts, but discarded turns are not archived and the
// summary turn carries no archive reference.
func WithBackend(b backend.Backend) Option {
	return func(ic *internalConfig) error {
		if b == nil {
			return fmt.Errorf("backend cannot be nil")
		}
		ic.backend = b
		return nil
	}
}

// WithLogger sets the engine logger, overriding Config.Logger.
func WithLogger(l Logger) Option {
	return func(ic *internalConfig) error {
		if l == nil {
			return fmt.Errorf("logger cannot be nil")
		}
		ic.logger = l
		return nil
	}
}

// WithClock overrides the time source used for archive section timestamps.
// Intended for tests.
func WithClock(now func() time.Time) Option {
	return func(ic *internalConfig) error {
		if now == nil {
			return fmt.Errorf("clock cannot be nil")
		}
		ic.now = now
		return nil
	}
}

// WithHooks sets the hook registry the engine notifies around compaction,
// offload and truncation. Hook errors abort the round.
func WithHooks(r *hooks.Registry) Option {
	return func(ic *internalConfig) error {
		if r == nil {
			return fmt.Errorf("hook registry cannot be nil")
		}
		ic.hooks = r
		return nil
	}
}
