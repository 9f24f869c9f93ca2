package recap

import (
	"testing"

	"github.com/turnwise/recap/tool"
	"github.com/turnwise/recap/turns"
)

func TestEstimateTurn(t *testing.T) {
	tests := []struct {
		name string
		turn turns.Turn
		want int
	}{
		{"user text", turns.User{Text: "hello"}, turnOverhead + 5},
		{"system text", turns.System{Text: "be brief"}, turnOverhead + 8},
		{"tool result", turns.ToolResult{InvocationID: "ab", Content: "result"}, turnOverhead + 2 + 6},
		{"agent without invocations", turns.Agent{Text: "reply"}, turnOverhead + 5},
		{
			"agent with argless invocation",
			turns.Agent{Text: "x", Invocations: []turns.Invocation{{ID: "id1", Name: "list"}}},
			turnOverhead + 1 + 3 + 4,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := EstimateTurn(tt.turn); got != tt.want {
				t.Errorf("got %d, want %d", got, tt.want)
			}
		})
	}
}

func TestEstimateCountsInvocationArgs(t *testing.T) {
	bare := turns.Agent{Text: "x", Invocations: []turns.Invocation{{ID: "i", Name: "write"}}}
	loaded := turns.Agent{Text: "x", Invocations: []turns.Invocation{
		{ID: "i", Name: "write", Args: map[string]any{"content": "0123456789"}},
	}}

	b, l := EstimateTurn(bare), EstimateTurn(loaded)
	if l <= b {
		t.Errorf("arguments must add weight: bare %d, loaded %d", b, l)
	}
	if l-b < 10 {
		t.Errorf("argument payload undercounted: bare %d, loaded %d", b, l)
	}
}

func TestEstimateSideChannel(t *testing.T) {
	sc := SideChannel{
		Instructions: "You are a helpful assistant.",
		Tools: []tool.Schema{
			{
				Name:        "read_file",
				Description: "Read a file from disk",
				Input: tool.InputSchema{
					Type: "object",
					Properties: map[string]tool.Property{
						"path": {Type: "string", Description: "File path"},
					},
					Required: []string{"path"},
				},
			},
		},
	}

	if sc.Size() <= len(sc.Instructions) {
		t.Errorf("tool schemas must add weight: got %d", sc.Size())
	}

	ts := userTurns(3)
	if got, want := Estimate(ts, sc), EstimateTurns(ts)+sc.Size(); got != want {
		t.Errorf("got %d, want %d", got, want)
	}
}

func TestEstimateNeverNegative(t *testing.T) {
	if got := Estimate(nil, SideChannel{}); got != 0 {
		t.Errorf("got %d, want 0 for empty input", got)
	}
	if got := EstimateTurns([]turns.Turn{nil}); got != 0 {
		t.Errorf("got %d, want 0 for a nil turn", got)
	}
}
