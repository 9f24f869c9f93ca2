package turns

import (
	"reflect"
	"strings"
	"testing"
)

func TestMarshalUnmarshalMixed(t *testing.T) {
	in := []Turn{
		System{Text: "instructions"},
		User{Text: "do the thing"},
		Agent{Text: "on it", Invocations: []Invocation{
			{ID: "i1", Name: "search", Args: map[string]any{"query": "thing", "limit": float64(3)}},
		}},
		ToolResult{InvocationID: "i1", Content: "found it"},
		User{Text: "summary of earlier work", Summary: true},
	}

	data, err := Marshal(in)
	if err != nil {
		t.Fatalf("Marshal() error: %v", err)
	}

	out, err := Unmarshal(data)
	if err != nil {
		t.Fatalf("Unmarshal() error: %v", err)
	}
	if !reflect.DeepEqual(in, out) {
		t.Errorf("round trip mismatch:\n in: %#v\nout: %#v", in, out)
	}
}

func TestUnmarshalUnknownKind(t *testing.T) {
	_, err := Unmarshal([]byte(`[{"kind":"telepathy","text":"hm"}]`))
	if err == nil {
		t.Fatal("expected error for unknown kind")
	}
	if !strings.Contains(err.Error(), "telepathy") {
		t.Errorf("error should name the unknown kind, got: %v", err)
	}
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		turn Turn
		want Kind
	}{
		{User{}, KindUser},
		{Agent{}, KindAgent},
		{ToolResult{}, KindToolResult},
		{System{}, KindSystem},
	}
	for _, tt := range tests {
		if got := KindOf(tt.turn); got != tt.want {
			t.Errorf("KindOf(%T) = %q, want %q", tt.turn, got, tt.want)
		}
	}
}
