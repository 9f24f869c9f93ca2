package recap

import (
	"errors"
	"fmt"

	"github.com/turnwise/recap/service"
)

// Common errors
var (
	// ErrInvalidConfig is returned when the engine configuration is invalid
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrNoService is returned when a compaction round needs the generative
	// service but none was provided
	ErrNoService = errors.New("no generative service provided")

	// ErrNoSessionState is returned when Compact is called with nil session state
	ErrNoSessionState = errors.New("no session state provided")

	// ErrSessionIDRequired is returned when session state carries an empty id
	ErrSessionIDRequired = errors.New("session id required")

	// =========================================================================
	// Cutoff errors
	// =========================================================================

	// ErrCutoffOutOfRange is returned when cutoff arithmetic produces an index
	// outside [0, len]. This indicates a bug in the engine, not bad input, so
	// it is surfaced loudly instead of being clamped.
	ErrCutoffOutOfRange = errors.New("cutoff index out of range")

	// ErrCutoffRegressed is returned when a new cutoff would move backwards
	// relative to the session's recorded event
	ErrCutoffRegressed = errors.New("cutoff index regressed")

	// =========================================================================
	// Round errors
	// =========================================================================

	// ErrSummaryFailed is returned when the generative service could not
	// produce a summary for the discarded range
	ErrSummaryFailed = errors.New("summary generation failed")
)

// ErrContextTooLarge reports that the generative service rejected the input
// for being over its size limit. It is the service package's sentinel,
// re-exported here so engine callers can classify failures without importing
// service directly.
var ErrContextTooLarge = service.ErrContextTooLarge

// CompactionError represents an engine error with additional context
type CompactionError struct {
	Op        string         // Operation that failed
	Err       error          // Underlying error
	SessionID string         // Session ID if applicable
	Context   map[string]any // Additional context
}

// Error implements the error interface
func (e *CompactionError) Error() string {
	if e.SessionID != "" {
		return fmt.Sprintf("%s (session=%s): %v", e.Op, e.SessionID, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error
func (e *CompactionError) Unwrap() error {
	return e.Err
}

// WithContext adds additional context to the error
func (e *CompactionError) WithContext(key string, value any) *CompactionError {
	if e.Context == nil {
		e.Context = make(map[string]any)
	}
	e.Context[key] = value
	return e
}

// NewCompactionError creates a new CompactionError
func NewCompactionError(op string, err error) *CompactionError {
	return &CompactionError{
		Op:  op,
		Err: err,
	}
}

// NewCompactionErrorWithSession creates a new CompactionError with session ID
func NewCompactionErrorWithSession(op string, sessionID string, err error) *CompactionError {
	return &CompactionError{
		Op:        op,
		Err:       err,
		SessionID: sessionID,
	}
}
