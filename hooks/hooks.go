// Package hooks provides observation points for the compaction engine.
// Hosts register callbacks on a Registry and pass it to the engine; the
// engine invokes them around the phases of a round. Hooks run synchronously
// and in registration order. A hook error stops the remaining hooks and
// surfaces as the round's error, so a before-compaction hook can veto the
// round; later hooks fire after their phase has already happened.
package hooks

import (
	"context"
	"sync"
)

// CompactionResult describes one committed compaction round.
type CompactionResult struct {
	// SessionID is the session the round ran for
	SessionID string

	// CutoffIndex is the new absolute cutoff into the raw history
	CutoffIndex int

	// DiscardedTurns is how many effective turns were summarized away
	DiscardedTurns int

	// PreservedTurns is how many effective turns survived after the summary
	PreservedTurns int

	// OffloadPath is where the discarded turns were archived, empty when no
	// durable store is configured
	OffloadPath string

	// EstimatedSize is the size estimate that triggered the round, in
	// estimator units
	EstimatedSize int
}

// BeforeCompactionHook is called after a trigger fires, before any turn is
// discarded.
type BeforeCompactionHook func(ctx context.Context, sessionID string, estimated int) error

// AfterCompactionHook is called after a round committed its summary event.
type AfterCompactionHook func(ctx context.Context, result *CompactionResult) error

// OffloadHook is called after discarded turns were durably archived.
// Parameters: ctx, sessionID, archive path, bytes appended.
type OffloadHook func(ctx context.Context, sessionID, path string, size int) error

// TruncationHook is called when argument truncation modified old turns.
// truncated is the number of turns that changed.
type TruncationHook func(ctx context.Context, sessionID string, truncated int) error

// Registry holds all registered hooks
type Registry struct {
	mu               sync.RWMutex
	beforeCompaction []BeforeCompactionHook
	afterCompaction  []AfterCompactionHook
	offload          []OffloadHook
	truncation       []TruncationHook
}

// NewRegistry creates a new hook registry
func NewRegistry() *Registry {
	return &Registry{
		beforeCompaction: []BeforeCompactionHook{},
		afterCompaction:  []AfterCompactionHook{},
		offload:          []OffloadHook{},
		truncation:       []TruncationHook{},
	}
}

// OnBeforeCompaction registers a hook to be called before compaction
func (r *Registry) OnBeforeCompaction(hook BeforeCompactionHook) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.beforeCompaction = append(r.beforeCompaction, hook)
}

// OnAfterCompaction registers a hook to be called after compaction
func (r *Registry) OnAfterCompaction(hook AfterCompactionHook) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.afterCompaction = append(r.afterCompaction, hook)
}

// OnOffload registers a hook to be called after a successful archive write
func (r *Registry) OnOffload(hook OffloadHook) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.offload = append(r.offload, hook)
}

// OnTruncation registers a hook to be called after argument truncation
func (r *Registry) OnTruncation(hook TruncationHook) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.truncation = append(r.truncation, hook)
}

// TriggerBeforeCompaction calls all registered before-compaction hooks
func (r *Registry) TriggerBeforeCompaction(ctx context.Context, sessionID string, estimated int) error {
	r.mu.RLock()
	hooks := make([]BeforeCompactionHook, len(r.beforeCompaction))
	copy(hooks, r.beforeCompaction)
	r.mu.RUnlock()

	for _, hook := range hooks {
		if err := hook(ctx, sessionID, estimated); err != nil {
			return err
		}
	}
	return nil
}

// TriggerAfterCompaction calls all registered after-compaction hooks
func (r *Registry) TriggerAfterCompaction(ctx context.Context, result *CompactionResult) error {
	r.mu.RLock()
	hooks := make([]AfterCompactionHook, len(r.afterCompaction))
	copy(hooks, r.afterCompaction)
	r.mu.RUnlock()

	for _, hook := range hooks {
		if err := hook(ctx, result); err != nil {
			return err
		}
	}
	return nil
}

// TriggerOffload calls all registered offload hooks
func (r *Registry) TriggerOffload(ctx context.Context, sessionID, path string, size int) error {
	r.mu.RLock()
	hooks := make([]OffloadHook, len(r.offload))
	copy(hooks, r.offload)
	r.mu.RUnlock()

	for _, hook := range hooks {
		if err := hook(ctx, sessionID, path, size); err != nil {
			return err
		}
	}
	return nil
}

// TriggerTruncation calls all registered truncation hooks
func (r *Registry) TriggerTruncation(ctx context.Context, sessionID string, truncated int) error {
	r.mu.RLock()
	hooks := make([]TruncationHook, len(r.truncation))
	copy(hooks, r.truncation)
	r.mu.RUnlock()

	for _, hook := range hooks {
		if err := hook(ctx, sessionID, truncated); err != nil {
			return err
		}
	}
	return nil
}
