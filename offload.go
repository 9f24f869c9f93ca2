package recap

import (
	"context"
	"path"
	"time"

	"github.com/turnwise/recap/backend"
	"github.com/turnwise/recap/turns"
)

// Offloader appends to-be-discarded turns to a durable, append-only log
// keyed by session, before they are dropped from the live context. One log
// per session; sections are timestamped and concatenated, and existing log
// content is never read back or re-encoded.
type Offloader struct {
	backend backend.Backend
	prefix  string
	now     func() time.Time
	log     Logger
}

// NewOffloader creates an offloader writing under the given path prefix.
func NewOffloader(b backend.Backend, prefix string, log Logger) *Offloader {
	if log == nil {
		log = noopLogger{}
	}
	return &Offloader{
		backend: b,
		prefix:  prefix,
		now:     time.Now,
		log:     log,
	}
}

// PathFor returns the deterministic archive path for a session.
func (o *Offloader) PathFor(sessionID string) string {
	return path.Join(o.prefix, sessionID+".log")
}

// Offload renders the discarded turns and appends them as one timestamped
// section to the session's log, returning the path and how many bytes were
// written. Turns that are themselves summaries of earlier rounds are
// filtered out first: the archive should read as original conversation, not
// summaries of summaries.
//
// On write failure Offload logs the error and returns an empty path; the
// engine treats this as soft and aborts the round rather than discarding
// turns that were never durably recorded.
func (o *Offloader) Offload(ctx context.Context, sessionID string, discard []turns.Turn) (string, int, error) {
	p := o.PathFor(sessionID)

	kept := make([]turns.Turn, 0, len(discard))
	for _, t := range discard {
		if turns.IsSummary(t) {
			continue
		}
		kept = append(kept, t)
	}
	if len(kept) == 0 {
		return p, 0, nil
	}

	section := turns.SectionHeader(o.now(), len(kept)) + turns.RenderText(kept) + "\n"
	if err := o.backend.Append(ctx, p, []byte(section)); err != nil {
		o.log.Error("history offload failed",
			"session_id", sessionID,
			"path", p,
			"turns", len(kept),
			"error", err)
		return "", 0, err
	}

	o.log.Debug("history offloaded",
		"session_id", sessionID,
		"path", p,
		"turns", len(kept),
		"bytes", len(section))
	return p, len(section), nil
}
