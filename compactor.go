package recap

import (
	"context"
	"fmt"
	"time"

	"github.com/turnwise/recap/hooks"
	"github.com/turnwise/recap/service"
	"github.com/turnwise/recap/turns"
)

// Compactor is the transcript-compaction engine. It is stateless across
// calls: everything per-session lives in the SessionState the caller passes
// in, so one Compactor safely serves any number of sessions.
type Compactor struct {
	triggers      []Threshold
	keep          Threshold
	trunc         TruncationConfig
	truncKeys     map[string]bool
	trimBudget    int
	backscan      float64
	summaryPrompt string
	offloader     *Offloader
	hooks         *hooks.Registry
	log           Logger
}

// Result is the outcome of one engine call.
type Result struct {
	// Turns is the effective list to send to the generative service
	Turns []turns.Turn

	// State is the updated session state (the same pointer passed in)
	State *SessionState

	// Outcome summarizes what the round did
	Outcome RoundOutcome

	// Truncated reports whether argument truncation modified any turn
	Truncated bool

	// OffloadPath is the archive path written this round, empty otherwise
	OffloadPath string

	// Estimated is the size estimate the trigger decision used, in
	// estimator units (after truncation, side channel included)
	Estimated int

	// DiscardedTurns is how many effective turns were summarized this round
	DiscardedTurns int
}

// New creates a Compactor. A nil cfg uses DefaultConfig; a non-nil cfg is
// copied, defaulted and validated, so the caller's struct is never modified.
func New(cfg *Config, opts ...Option) (*Compactor, error) {
	var resolved Config
	if cfg != nil {
		resolved = *cfg
	}
	resolved.ApplyDefaults()
	if err := resolved.Validate(); err != nil {
		return nil, err
	}

	ic := internalConfig{
		logger: resolved.Logger,
		now:    time.Now,
	}
	for _, opt := range opts {
		if err := opt(&ic); err != nil {
			return nil, fmt.Errorf("apply option: %w", err)
		}
	}

	c := &Compactor{
		triggers:      resolved.Triggers,
		keep:          resolved.Keep,
		trunc:         resolved.Truncation,
		truncKeys:     make(map[string]bool, len(resolved.Truncation.PayloadKeys)),
		trimBudget:    resolved.TrimBudget,
		backscan:      resolved.SafetyBackscanRatio,
		summaryPrompt: resolved.SummaryPrompt,
		hooks:         ic.hooks,
		log:           ic.logger,
	}
	if c.hooks == nil {
		c.hooks = hooks.NewRegistry()
	}
	for _, k := range resolved.Truncation.PayloadKeys {
		c.truncKeys[k] = true
	}
	if ic.backend != nil {
		c.offloader = &Offloader{
			backend: ic.backend,
			prefix:  resolved.OffloadPrefix,
			now:     ic.now,
			log:     ic.logger,
		}
	}
	return c, nil
}

// Compact runs one engine round without side-channel context. See
// CompactWithSideChannel.
func (c *Compactor) Compact(ctx context.Context, raw []turns.Turn, st *SessionState, svc service.Service) (*Result, error) {
	return c.CompactWithSideChannel(ctx, raw, st, svc, SideChannel{})
}

// CompactWithSideChannel runs one engine round: reconstructs the effective
// turn list from the session's last event, truncates old oversized
// arguments, evaluates the compaction triggers, and, when one fires,
// offloads the to-be-discarded turns, asks the service for a summary, and
// overwrites the session's event. The returned turns are what the caller
// should send to the service; raw history is never modified.
//
// The side channel describes context that is sent alongside the turns on
// every call (leading instructions, tool schemas) and therefore counts
// toward the input limit.
//
// Below every threshold the call is a no-op: with no prior event and no
// truncation it returns the input slice itself and the unchanged state.
func (c *Compactor) CompactWithSideChannel(ctx context.Context, raw []turns.Turn, st *SessionState, svc service.Service, sc SideChannel) (*Result, error) {
	if st == nil {
		return nil, NewCompactionError("compact", ErrNoSessionState)
	}
	if st.SessionID == "" {
		return nil, NewCompactionError("compact", ErrSessionIDRequired)
	}
	if st.EstimationMultiplier == 0 {
		// Zero means the state was built by hand rather than through
		// NewSessionState; valid multipliers are >= 1.
		st.EstimationMultiplier = 1.0
	}
	if ev := st.LastEvent; ev != nil {
		if err := validateCutoff(ev.CutoffIndex, len(raw)); err != nil {
			return nil, NewCompactionErrorWithSession("compact", st.SessionID, err).
				WithContext("raw_len", len(raw))
		}
	}

	work := st.EffectiveTurns(raw)
	maxInput, haveMax := 0, false
	if svc != nil {
		maxInput, haveMax = service.MaxInput(svc)
	}
	if !haveMax && hasFraction(c.triggers) {
		c.log.Debug("fraction triggers inactive: service reports no input limit",
			"session_id", st.SessionID)
	}
	est := Estimate(work, sc)

	// Argument truncation runs first, against its own looser thresholds, so
	// it can sometimes bring the size back under the compaction triggers.
	truncated := false
	if !c.trunc.Trigger.isZero() &&
		shouldCompact(len(work), est, st.EstimationMultiplier, maxInput, haveMax, []Threshold{c.trunc.Trigger}) {
		if tCut := selectCutoff(work, c.trunc.Keep, maxInput, haveMax); tCut > 0 {
			var modified int
			work, modified = truncateOldArgs(work, tCut, c.trunc.MaxArgLength, c.trunc.Replacement, c.truncKeys)
			if modified > 0 {
				truncated = true
				est = Estimate(work, sc)
				c.log.Debug("old invocation arguments truncated",
					"session_id", st.SessionID,
					"turns", modified,
					"estimated", est)
				if err := c.hooks.TriggerTruncation(ctx, st.SessionID, modified); err != nil {
					return nil, NewCompactionErrorWithSession("truncation hook", st.SessionID, err)
				}
			}
		}
	}

	if !shouldCompact(len(work), est, st.EstimationMultiplier, maxInput, haveMax, c.triggers) {
		return &Result{
			Turns:     work,
			State:     st,
			Outcome:   RoundSkipped,
			Truncated: truncated,
			Estimated: est,
		}, nil
	}

	if svc == nil {
		return nil, NewCompactionErrorWithSession("compact", st.SessionID, ErrNoService)
	}

	local := makeSafe(work, selectCutoff(work, c.keep, maxInput, haveMax), c.backscan)
	if local <= 0 {
		c.log.Debug("compaction triggered but nothing to discard",
			"session_id", st.SessionID,
			"turns", len(work))
		return &Result{
			Turns:     work,
			State:     st,
			Outcome:   RoundSkipped,
			Truncated: truncated,
			Estimated: est,
		}, nil
	}
	if err := validateCutoff(local, len(work)); err != nil {
		return nil, NewCompactionErrorWithSession("compact", st.SessionID, err).
			WithContext("effective_len", len(work))
	}

	abs := st.absoluteCutoff(local)
	if err := validateCutoff(abs, len(raw)); err != nil {
		return nil, NewCompactionErrorWithSession("compact", st.SessionID, err).
			WithContext("local_cutoff", local).
			WithContext("raw_len", len(raw))
	}
	if ev := st.LastEvent; ev != nil && abs < ev.CutoffIndex {
		return nil, NewCompactionErrorWithSession("compact", st.SessionID, ErrCutoffRegressed).
			WithContext("previous", ev.CutoffIndex).
			WithContext("new", abs)
	}

	if err := c.hooks.TriggerBeforeCompaction(ctx, st.SessionID, est); err != nil {
		return nil, NewCompactionErrorWithSession("before-compaction hook", st.SessionID, err)
	}

	discard := work[:local]
	preserved := work[local:]

	// Offload is awaited to completion before the summary request: the
	// summary text may reference the archive path.
	offloadPath := ""
	if c.offloader != nil {
		p, n, err := c.offloader.Offload(ctx, st.SessionID, discard)
		if err != nil {
			c.log.Warn("compaction aborted: offload failed, passing turns through",
				"session_id", st.SessionID,
				"error", err)
			return &Result{
				Turns:     work,
				State:     st,
				Outcome:   RoundAborted,
				Truncated: truncated,
				Estimated: est,
			}, nil
		}
		offloadPath = p
		if err := c.hooks.TriggerOffload(ctx, st.SessionID, p, n); err != nil {
			return nil, NewCompactionErrorWithSession("offload hook", st.SessionID, err)
		}
	}

	text, err := c.summarize(ctx, svc, discard, st.SessionID)
	if err != nil {
		return nil, NewCompactionErrorWithSession("summarize", st.SessionID, err)
	}
	summary := renderSummaryTurn(text, offloadPath)

	// Commit only after offload and summary both succeeded; a cancellation
	// above this point leaves the previous event in place, safe to retry.
	st.LastEvent = &Event{
		CutoffIndex: abs,
		Summary:     summary,
		OffloadPath: offloadPath,
	}

	out := make([]turns.Turn, 0, 1+len(preserved))
	out = append(out, summary)
	out = append(out, preserved...)

	c.log.Info("compaction complete",
		"session_id", st.SessionID,
		"cutoff", abs,
		"discarded", local,
		"preserved", len(preserved),
		"offload_path", offloadPath)

	if err := c.hooks.TriggerAfterCompaction(ctx, &hooks.CompactionResult{
		SessionID:      st.SessionID,
		CutoffIndex:    abs,
		DiscardedTurns: local,
		PreservedTurns: len(preserved),
		OffloadPath:    offloadPath,
		EstimatedSize:  est,
	}); err != nil {
		return nil, NewCompactionErrorWithSession("after-compaction hook", st.SessionID, err)
	}

	return &Result{
		Turns:          out,
		State:          st,
		Outcome:        RoundCompacted,
		Truncated:      truncated,
		OffloadPath:    offloadPath,
		Estimated:      est,
		DiscardedTurns: local,
	}, nil
}

func hasFraction(ths []Threshold) bool {
	for _, t := range ths {
		if t.Kind == ThresholdFraction {
			return true
		}
	}
	return false
}
