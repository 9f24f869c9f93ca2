package recap

import (
	"context"

	"github.com/turnwise/recap/hooks"
	"github.com/turnwise/recap/service"
	"github.com/turnwise/recap/turns"
)

// toolResultPrunedMarker replaces tool-result content shrunk by overflow
// recovery.
const toolResultPrunedMarker = "... [tool output pruned]"

// Invoke runs one engine round and the service call it prepares, with
// overflow recovery. See InvokeWithSideChannel.
func (c *Compactor) Invoke(ctx context.Context, raw []turns.Turn, st *SessionState, svc service.Service) (turns.Turn, *Result, error) {
	return c.InvokeWithSideChannel(ctx, raw, st, svc, SideChannel{})
}

// InvokeWithSideChannel compacts, sends the effective turns to the service
// and returns its reply. If the service still rejects the input as too
// large, the engine recalibrates its size estimate for this session and
// retries exactly once with a maximally compacted context. A second
// rejection, like any failure unrelated to size, is returned to the caller
// unchanged. Loops that own the service call themselves can use Compact
// directly instead.
func (c *Compactor) InvokeWithSideChannel(ctx context.Context, raw []turns.Turn, st *SessionState, svc service.Service, sc SideChannel) (turns.Turn, *Result, error) {
	if svc == nil {
		return nil, nil, NewCompactionError("invoke", ErrNoService)
	}

	res, err := c.CompactWithSideChannel(ctx, raw, st, svc, sc)
	if err != nil {
		return nil, nil, err
	}

	reply, err := svc.Invoke(ctx, res.Turns)
	if err == nil {
		return reply, res, nil
	}
	if !service.IsContextTooLarge(err) {
		return nil, nil, err
	}
	return c.recoverOverflow(ctx, raw, st, svc, sc, res, err)
}

// recoverOverflow handles a context-too-large rejection that survived
// compaction. The session's estimation multiplier is raised so future
// rounds trigger earlier, then one retry is attempted: with the pending
// tool results shrunk in place when retention would otherwise preserve
// nothing, or with everything summarized down to a single summary turn.
func (c *Compactor) recoverOverflow(ctx context.Context, raw []turns.Turn, st *SessionState, svc service.Service, sc SideChannel, failed *Result, cause error) (turns.Turn, *Result, error) {
	maxInput, haveMax := service.MaxInput(svc)
	actual := Estimate(failed.Turns, sc)

	if haveMax && actual > 0 {
		observed := float64(maxInput) / float64(actual)
		if observed > st.EstimationMultiplier {
			// 10% safety margin on top of the observed miss.
			st.EstimationMultiplier = observed * 1.1
			c.log.Info("size estimate recalibrated after overflow",
				"session_id", st.SessionID,
				"observed_ratio", observed,
				"multiplier", st.EstimationMultiplier)
		}
	}

	// "Preserve zero" trap: when even the retained tail alone exceeds the
	// limit, discarding it would make the model immediately re-issue the
	// same tool calls. Shrinking the pending tool results keeps the shape
	// of the exchange intact.
	if haveMax {
		local := selectCutoff(failed.Turns, c.keep, maxInput, haveMax)
		if local >= len(failed.Turns) {
			if shrunk, ok := shrinkToolResults(failed.Turns, sc, maxInput); ok {
				c.log.Warn("retention would preserve nothing: shrinking pending tool results",
					"session_id", st.SessionID,
					"turns", len(shrunk))
				reply, err := svc.Invoke(ctx, shrunk)
				if err != nil {
					return nil, nil, err
				}
				out := *failed
				out.Turns = shrunk
				out.Outcome = RoundRecovered
				out.Estimated = Estimate(shrunk, sc)
				return reply, &out, nil
			}
		}
	}

	res, err := c.compactAll(ctx, raw, st, svc, sc, cause)
	if err != nil {
		return nil, nil, err
	}
	reply, err := svc.Invoke(ctx, res.Turns)
	if err != nil {
		// Fatal for this invocation; the surrounding loop may retry at a
		// higher level.
		return nil, nil, err
	}
	return reply, res, nil
}

// compactAll re-runs compaction with the entire effective list discardable,
// leaving only the new summary turn.
func (c *Compactor) compactAll(ctx context.Context, raw []turns.Turn, st *SessionState, svc service.Service, sc SideChannel, cause error) (*Result, error) {
	work := st.EffectiveTurns(raw)
	if len(work) == 0 {
		// Nothing to summarize: the overflow cannot be recovered by
		// discarding turns.
		return nil, cause
	}

	local := len(work)
	abs := st.absoluteCutoff(local)
	if err := validateCutoff(abs, len(raw)); err != nil {
		return nil, NewCompactionErrorWithSession("recover", st.SessionID, err).
			WithContext("local_cutoff", local)
	}

	est := Estimate(work, sc)
	if err := c.hooks.TriggerBeforeCompaction(ctx, st.SessionID, est); err != nil {
		return nil, NewCompactionErrorWithSession("before-compaction hook", st.SessionID, err)
	}

	offloadPath := ""
	if c.offloader != nil {
		p, n, err := c.offloader.Offload(ctx, st.SessionID, work)
		if err != nil {
			// Recovery cannot discard turns that were never durably
			// recorded; surface the original overflow instead.
			c.log.Warn("overflow recovery aborted: offload failed",
				"session_id", st.SessionID,
				"error", err)
			return nil, cause
		}
		offloadPath = p
		if err := c.hooks.TriggerOffload(ctx, st.SessionID, p, n); err != nil {
			return nil, NewCompactionErrorWithSession("offload hook", st.SessionID, err)
		}
	}

	text, err := c.summarize(ctx, svc, work, st.SessionID)
	if err != nil {
		return nil, NewCompactionErrorWithSession("recover", st.SessionID, err)
	}
	summary := renderSummaryTurn(text, offloadPath)

	st.LastEvent = &Event{
		CutoffIndex: abs,
		Summary:     summary,
		OffloadPath: offloadPath,
	}

	c.log.Info("maximal compaction after overflow",
		"session_id", st.SessionID,
		"cutoff", abs,
		"discarded", local,
		"offload_path", offloadPath)

	if err := c.hooks.TriggerAfterCompaction(ctx, &hooks.CompactionResult{
		SessionID:      st.SessionID,
		CutoffIndex:    abs,
		DiscardedTurns: local,
		OffloadPath:    offloadPath,
		EstimatedSize:  est,
	}); err != nil {
		return nil, NewCompactionErrorWithSession("after-compaction hook", st.SessionID, err)
	}

	return &Result{
		Turns:          []turns.Turn{summary},
		State:          st,
		Outcome:        RoundRecovered,
		OffloadPath:    offloadPath,
		Estimated:      Estimate([]turns.Turn{summary}, sc),
		DiscardedTurns: local,
	}, nil
}

// shrinkToolResults caps every ToolResult turn's content so the whole list
// fits maxInput, distributing the available budget evenly across the
// results. Copy-on-write; reports false when there are no results to shrink
// or no budget left after the other turns.
func shrinkToolResults(ts []turns.Turn, sc SideChannel, maxInput int) ([]turns.Turn, bool) {
	overhead := sc.Size()
	var resultIdx []int
	for i, t := range ts {
		if tr, ok := t.(turns.ToolResult); ok {
			resultIdx = append(resultIdx, i)
			overhead += turnOverhead + len(tr.InvocationID)
			continue
		}
		overhead += EstimateTurn(t)
	}
	if len(resultIdx) == 0 {
		return ts, false
	}
	available := maxInput - overhead
	if available <= 0 {
		return ts, false
	}
	per := available / len(resultIdx)

	changed := false
	out := append([]turns.Turn(nil), ts...)
	for _, i := range resultIdx {
		tr := out[i].(turns.ToolResult)
		if len(tr.Content) <= per {
			continue
		}
		keep := per - len(toolResultPrunedMarker)
		if keep < 0 {
			keep = 0
		}
		tr.Content = tr.Content[:keep] + toolResultPrunedMarker
		out[i] = tr
		changed = true
	}
	if !changed {
		return ts, false
	}
	return out, true
}
