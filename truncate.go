package recap

import "github.com/turnwise/recap/turns"

// truncatedArgPrefix is how many characters of the original argument survive
// in front of the replacement marker.
const truncatedArgPrefix = 160

// truncateOldArgs shrinks oversized string arguments inside Agent turns
// strictly before cutoff. Only argument names known to carry large payloads
// are touched, and only when the value exceeds maxLen; the value is replaced
// by a short prefix plus the replacement marker. Turns at or after the
// cutoff are never modified: they must remain faithful for the live task.
//
// Copy-on-write: the input slice and its turns are never mutated. The
// returned count is how many turns changed, so callers can skip rebuilding
// downstream state when it is zero.
func truncateOldArgs(ts []turns.Turn, cutoff, maxLen int, replacement string, payloadKeys map[string]bool) ([]turns.Turn, int) {
	if cutoff > len(ts) {
		cutoff = len(ts)
	}
	modified := 0
	var out []turns.Turn
	for i := 0; i < cutoff; i++ {
		ag, ok := ts[i].(turns.Agent)
		if !ok {
			continue
		}
		shrunk, changed := truncateAgentArgs(ag, maxLen, replacement, payloadKeys)
		if !changed {
			continue
		}
		if out == nil {
			out = append([]turns.Turn(nil), ts...)
		}
		out[i] = shrunk
		modified++
	}
	if out == nil {
		return ts, 0
	}
	return out, modified
}

func truncateAgentArgs(ag turns.Agent, maxLen int, replacement string, payloadKeys map[string]bool) (turns.Agent, bool) {
	var invs []turns.Invocation
	for j, inv := range ag.Invocations {
		args, changed := truncateArgs(inv.Args, maxLen, replacement, payloadKeys)
		if !changed {
			continue
		}
		if invs == nil {
			invs = append([]turns.Invocation(nil), ag.Invocations...)
		}
		next := inv
		next.Args = args
		invs[j] = next
	}
	if invs == nil {
		return ag, false
	}
	ag.Invocations = invs
	return ag, true
}

func truncateArgs(args map[string]any, maxLen int, replacement string, payloadKeys map[string]bool) (map[string]any, bool) {
	var out map[string]any
	for k, v := range args {
		if !payloadKeys[k] {
			continue
		}
		s, ok := v.(string)
		if !ok || len(s) <= maxLen {
			continue
		}
		if out == nil {
			out = make(map[string]any, len(args))
			for k2, v2 := range args {
				out[k2] = v2
			}
		}
		prefix := truncatedArgPrefix
		if prefix > maxLen {
			prefix = maxLen
		}
		out[k] = s[:prefix] + replacement
	}
	if out == nil {
		return args, false
	}
	return out, true
}
