package recap

import (
	"encoding/json"
	"fmt"

	"github.com/turnwise/recap/tool"
	"github.com/turnwise/recap/turns"
)

// The estimator works in "estimator units": approximate characters of
// serialized content. It is deliberately a character-count heuristic, not a
// tokenizer; the estimation multiplier on the session state absorbs the
// systematic error (see overflow recovery). Service adapters report their
// input limits in the same unit.

// turnOverhead accounts for the structural framing (role labels, delimiters)
// each turn costs on the wire beyond its text.
const turnOverhead = 8

// SideChannel captures context that is always sent alongside the turn list
// and therefore counts toward the input limit: the leading instruction turn
// and the serialized tool schemas.
type SideChannel struct {
	Instructions string
	Tools        []tool.Schema
}

// Size returns the side channel's contribution in estimator units.
func (sc SideChannel) Size() int {
	n := len(sc.Instructions)
	for _, s := range sc.Tools {
		n += s.EstimatedSize()
	}
	return n
}

// Estimate approximates the serialized size of a turn list plus its side
// channel, in estimator units. Pure and total: no side effects, never fails,
// never negative.
func Estimate(ts []turns.Turn, sc SideChannel) int {
	return EstimateTurns(ts) + sc.Size()
}

// EstimateTurns approximates the serialized size of a turn list.
func EstimateTurns(ts []turns.Turn) int {
	n := 0
	for _, t := range ts {
		n += EstimateTurn(t)
	}
	return n
}

// EstimateTurn approximates the serialized size of a single turn.
func EstimateTurn(t turns.Turn) int {
	switch v := t.(type) {
	case turns.User:
		return turnOverhead + len(v.Text)
	case turns.Agent:
		n := turnOverhead + len(v.Text)
		for _, inv := range v.Invocations {
			n += invocationSize(inv)
		}
		return n
	case turns.ToolResult:
		return turnOverhead + len(v.InvocationID) + len(v.Content)
	case turns.System:
		return turnOverhead + len(v.Text)
	}
	return 0
}

func invocationSize(inv turns.Invocation) int {
	n := len(inv.ID) + len(inv.Name)
	if len(inv.Args) == 0 {
		return n
	}
	data, err := json.Marshal(inv.Args)
	if err != nil {
		// Unencodable args still weigh something; count key and value text.
		for k, v := range inv.Args {
			n += len(k) + len(fmt.Sprint(v))
		}
		return n
	}
	return n + len(data)
}
