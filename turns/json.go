package turns

import (
	"encoding/json"
	"fmt"
)

// Kind identifies a Turn variant on the wire.
type Kind string

const (
	// KindUser identifies a User turn
	KindUser Kind = "user"

	// KindAgent identifies an Agent turn
	KindAgent Kind = "agent"

	// KindToolResult identifies a ToolResult turn
	KindToolResult Kind = "tool_result"

	// KindSystem identifies a System turn
	KindSystem Kind = "system"
)

// KindOf returns the wire kind of a turn.
func KindOf(t Turn) Kind {
	switch t.(type) {
	case User:
		return KindUser
	case Agent:
		return KindAgent
	case ToolResult:
		return KindToolResult
	case System:
		return KindSystem
	}
	return ""
}

// envelope is the tagged wire form of a Turn.
type envelope struct {
	Kind Kind `json:"kind"`

	// User / Agent / System text
	Text string `json:"text,omitempty"`

	// User summary tag
	Summary bool `json:"summary,omitempty"`

	// Agent invocations
	Invocations []Invocation `json:"invocations,omitempty"`

	// ToolResult fields
	InvocationID string `json:"invocation_id,omitempty"`
	Content      string `json:"content,omitempty"`
}

func toEnvelope(t Turn) envelope {
	switch v := t.(type) {
	case User:
		return envelope{Kind: KindUser, Text: v.Text, Summary: v.Summary}
	case Agent:
		return envelope{Kind: KindAgent, Text: v.Text, Invocations: v.Invocations}
	case ToolResult:
		return envelope{Kind: KindToolResult, InvocationID: v.InvocationID, Content: v.Content}
	case System:
		return envelope{Kind: KindSystem, Text: v.Text}
	}
	return envelope{}
}

func (e envelope) turn() (Turn, error) {
	switch e.Kind {
	case KindUser:
		return User{Text: e.Text, Summary: e.Summary}, nil
	case KindAgent:
		return Agent{Text: e.Text, Invocations: e.Invocations}, nil
	case KindToolResult:
		return ToolResult{InvocationID: e.InvocationID, Content: e.Content}, nil
	case KindSystem:
		return System{Text: e.Text}, nil
	}
	return nil, fmt.Errorf("unknown turn kind %q", e.Kind)
}

// Marshal encodes a turn list as a JSON array of tagged objects.
func Marshal(ts []Turn) ([]byte, error) {
	envs := make([]envelope, len(ts))
	for i, t := range ts {
		envs[i] = toEnvelope(t)
	}
	return json.Marshal(envs)
}

// Unmarshal decodes a JSON array of tagged objects into a turn list.
func Unmarshal(data []byte) ([]Turn, error) {
	var envs []envelope
	if err := json.Unmarshal(data, &envs); err != nil {
		return nil, fmt.Errorf("decode turns: %w", err)
	}
	ts := make([]Turn, len(envs))
	for i, e := range envs {
		t, err := e.turn()
		if err != nil {
			return nil, fmt.Errorf("decode turn %d: %w", i, err)
		}
		ts[i] = t
	}
	return ts, nil
}
