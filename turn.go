package recap

import "github.com/turnwise/recap/turns"

// Re-exported turn types so callers can work with the engine without
// importing the turns package directly.
type (
	// Turn is one entry in a conversation transcript.
	Turn = turns.Turn

	// UserTurn is a message authored by the end user. A summary-flagged
	// UserTurn is the engine's own condensation of earlier turns.
	UserTurn = turns.User

	// AgentTurn is a model reply, optionally carrying tool invocations.
	AgentTurn = turns.Agent

	// ToolResultTurn is the output of one tool invocation, matched to it
	// by invocation ID.
	ToolResultTurn = turns.ToolResult

	// SystemTurn carries instructions injected by the harness.
	SystemTurn = turns.System

	// Invocation is a single tool call requested by an AgentTurn.
	Invocation = turns.Invocation
)

// NewUserTurn returns a user message turn.
func NewUserTurn(text string) UserTurn {
	return UserTurn{Text: text}
}

// NewAgentTurn returns a model reply turn.
func NewAgentTurn(text string, invocations ...Invocation) AgentTurn {
	return AgentTurn{Text: text, Invocations: invocations}
}

// NewToolResultTurn returns a tool output turn answering invocationID.
func NewToolResultTurn(invocationID, content string) ToolResultTurn {
	return ToolResultTurn{InvocationID: invocationID, Content: content}
}

// NewSystemTurn returns a harness instruction turn.
func NewSystemTurn(text string) SystemTurn {
	return SystemTurn{Text: text}
}

// NewInvocation returns a tool call with the given ID, tool name and
// arguments.
func NewInvocation(id, name string, args map[string]any) Invocation {
	return Invocation{ID: id, Name: name, Args: args}
}

// IsSummaryTurn reports whether t is a summary turn produced by the engine.
func IsSummaryTurn(t Turn) bool {
	return turns.IsSummary(t)
}
