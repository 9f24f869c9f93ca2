package recap

import (
	"fmt"

	"github.com/turnwise/recap/turns"
)

// selectCutoff picks the boundary index separating to-be-summarized turns
// [0, cutoff) from to-be-preserved turns [cutoff, len). The keep policy
// answers "how much of the tail must survive": a turn-count policy keeps the
// last k turns; a size or fraction policy walks backward from the end
// accumulating per-turn estimates until the keep budget is exceeded and cuts
// there. A cutoff of 0 means nothing to compact; callers treat any index
// <= 0 as a no-op, never as an error.
func selectCutoff(ts []turns.Turn, keep Threshold, maxInput int, haveMax bool) int {
	switch keep.Kind {
	case ThresholdTurns:
		k := int(keep.Value)
		if k >= len(ts) {
			return 0
		}
		return len(ts) - k
	case ThresholdSize, ThresholdFraction:
		budget, ok := keep.budget(maxInput, haveMax)
		if !ok {
			// Unresolvable keep budget (fraction without a known limit):
			// keep everything rather than guess.
			return 0
		}
		acc := 0
		for i := len(ts) - 1; i >= 0; i-- {
			acc += EstimateTurn(ts[i])
			if acc > budget {
				return i + 1
			}
		}
		return 0
	}
	return 0
}

// makeSafe adjusts a cutoff so it never separates a tool invocation from its
// result. If ts[idx] is a ToolResult turn, the contiguous ToolResult run
// starting at idx is collected together with its invocation ids, and the
// nearest preceding Agent turn whose invocations intersect that id set is
// located. When that Agent turn is within backscan*idx turns of the cutoff,
// the cutoff moves back to it, keeping the whole pair in the preserved set;
// otherwise the cutoff advances forward past the contiguous run, putting the
// whole pair in the summarized set. The backscan ratio bounds how much
// retained tail a single many-invocation turn can claw back.
func makeSafe(ts []turns.Turn, idx int, backscan float64) int {
	if idx <= 0 || idx >= len(ts) {
		return idx
	}
	if _, ok := ts[idx].(turns.ToolResult); !ok {
		return idx
	}

	ids := make(map[string]bool)
	end := idx
	for end < len(ts) {
		r, ok := ts[end].(turns.ToolResult)
		if !ok {
			break
		}
		ids[r.InvocationID] = true
		end++
	}

	for back := idx - 1; back >= 0; back-- {
		ag, ok := ts[back].(turns.Agent)
		if !ok {
			continue
		}
		if !intersects(ag.Invocations, ids) {
			continue
		}
		if float64(idx-back) <= backscan*float64(idx) {
			return back
		}
		break
	}

	return end
}

func intersects(invs []turns.Invocation, ids map[string]bool) bool {
	for _, inv := range invs {
		if ids[inv.ID] {
			return true
		}
	}
	return false
}

// validateCutoff fails loudly when cutoff arithmetic produced an index
// outside [0, len]. This is a bug in the engine, not bad input, so it is
// never silently clamped.
func validateCutoff(idx, n int) error {
	if idx < 0 || idx > n {
		return fmt.Errorf("%w: %d not in [0, %d]", ErrCutoffOutOfRange, idx, n)
	}
	return nil
}
