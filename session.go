package recap

import (
	"sync"

	"github.com/turnwise/recap/turns"
)

// Event records the outcome of one compaction round. Exactly one event is
// live per session at a time: each round overwrites it, never appends.
type Event struct {
	// CutoffIndex is an absolute index into the session's raw history:
	// turns [0, CutoffIndex) are represented only by Summary, turns
	// [CutoffIndex, len) are replayed verbatim.
	CutoffIndex int `json:"cutoff_index"`

	// Summary is the synthetic summary turn standing in for the discarded range
	Summary turns.Turn `json:"-"`

	// OffloadPath is the durable archive path; empty when no archive exists
	OffloadPath string `json:"offload_path,omitempty"`
}

// SessionState is the per-session compaction state. It is a derived cache:
// reconstructible from raw history plus the offload log, so it needs no
// independent persistence. Created on a session's first invocation, mutated
// in place by every compaction round, discarded when the session ends.
type SessionState struct {
	// SessionID keys the session's offload log
	SessionID string

	// LastEvent is the live summarization event, nil until the first round
	LastEvent *Event

	// EstimationMultiplier scales the size estimate when evaluating
	// triggers. Starts at 1.0; raised by overflow recovery when the
	// estimator proves to undercount for this session.
	EstimationMultiplier float64
}

// NewSessionState creates state for a fresh session.
func NewSessionState(sessionID string) *SessionState {
	return &SessionState{
		SessionID:            sessionID,
		EstimationMultiplier: 1.0,
	}
}

// EffectiveTurns reconstructs the turn list to replay for the current round:
// the raw history when no event exists, otherwise the last summary turn
// followed by the raw turns at and after the recorded cutoff. Raw history is
// never modified; the shrinking context is an illusion rebuilt on read.
//
// The caller must pass the same ever-growing raw history the recorded event
// was computed against; a cutoff beyond len(raw) panics.
func (s *SessionState) EffectiveTurns(raw []turns.Turn) []turns.Turn {
	if s.LastEvent == nil {
		return raw
	}
	ev := s.LastEvent
	out := make([]turns.Turn, 0, 1+len(raw)-ev.CutoffIndex)
	out = append(out, ev.Summary)
	return append(out, raw[ev.CutoffIndex:]...)
}

// absoluteCutoff maps a cutoff local to the effective list back into raw
// history's index space. With no prior event the effective list is the raw
// list and the local index is already absolute. With a prior event at P the
// effective list is [summary, raw[P], raw[P+1], ...], so effective[k] for
// k >= 1 corresponds to raw[P+k-1] and a local cutoff c maps to P + c - 1.
// The local cutoff is always >= 1 in that state: index 0 is the synthetic
// summary, which is never itself discarded.
func (s *SessionState) absoluteCutoff(local int) int {
	if s.LastEvent == nil {
		return local
	}
	return s.LastEvent.CutoffIndex + local - 1
}

// Tracker is the explicit session-state registry, keyed by session id.
// The engine never keeps global state: the surrounding loop owns a Tracker,
// fetches the state for the session it is serving, and passes it into
// Compact explicitly.
//
// The map is mutex-guarded because hosts may serve different sessions from
// different goroutines; at most one in-flight invocation per session remains
// the host's contract.
type Tracker struct {
	mu       sync.RWMutex
	sessions map[string]*SessionState
}

// NewTracker creates an empty session registry.
func NewTracker() *Tracker {
	return &Tracker{
		sessions: make(map[string]*SessionState),
	}
}

// Session returns the state for the given session id, creating it on first
// use.
func (t *Tracker) Session(id string) *SessionState {
	t.mu.Lock()
	defer t.mu.Unlock()
	if st, ok := t.sessions[id]; ok {
		return st
	}
	st := NewSessionState(id)
	t.sessions[id] = st
	return st
}

// Lookup returns the state for the given session id without creating it.
func (t *Tracker) Lookup(id string) (*SessionState, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	st, ok := t.sessions[id]
	return st, ok
}

// Drop discards the state for a finished session.
func (t *Tracker) Drop(id string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.sessions, id)
}

// Len returns the number of tracked sessions.
func (t *Tracker) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.sessions)
}
