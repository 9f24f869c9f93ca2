// Package turns defines the conversation data model shared by the engine,
// the service adapters, and the storage backends.
package turns

// Turn is one unit of conversation. The variant set is closed: User, Agent,
// ToolResult and System are the only implementations, and consumers are
// expected to switch exhaustively on the concrete type.
//
// Turns are immutable once created; a "modified" turn is a new value.
type Turn interface {
	isTurn()
}

// User represents a turn authored by the end user.
//
// A synthetic compaction summary is also delivered as a User turn with
// Summary set; use IsSummary to detect it.
type User struct {
	Text    string `json:"text"`
	Summary bool   `json:"summary,omitempty"`
}

// Agent represents a turn produced by the model, optionally carrying tool
// invocations.
type Agent struct {
	Text        string       `json:"text"`
	Invocations []Invocation `json:"invocations,omitempty"`
}

// ToolResult represents the outcome of a single tool invocation.
type ToolResult struct {
	InvocationID string `json:"invocation_id"`
	Content      string `json:"content"`
}

// System represents an instruction turn injected by the host.
type System struct {
	Text string `json:"text"`
}

func (User) isTurn()       {}
func (Agent) isTurn()      {}
func (ToolResult) isTurn() {}
func (System) isTurn()     {}

// Invocation is a tool call attached to an Agent turn. An invocation is
// dangling if no later ToolResult in the turns under consideration references
// its ID.
type Invocation struct {
	ID   string         `json:"id"`
	Name string         `json:"name"`
	Args map[string]any `json:"args,omitempty"`
}

// IsSummary reports whether t is a synthetic compaction summary turn.
func IsSummary(t Turn) bool {
	u, ok := t.(User)
	return ok && u.Summary
}

// Dangling returns the set of invocation IDs in ts that are never answered by
// a later ToolResult turn.
func Dangling(ts []Turn) map[string]bool {
	open := make(map[string]bool)
	for _, t := range ts {
		switch v := t.(type) {
		case Agent:
			for _, inv := range v.Invocations {
				open[inv.ID] = true
			}
		case ToolResult:
			delete(open, v.InvocationID)
		}
	}
	return open
}

// Text returns the primary text of a turn: the message text for User, Agent
// and System turns, and the content for ToolResult turns.
func Text(t Turn) string {
	switch v := t.(type) {
	case User:
		return v.Text
	case Agent:
		return v.Text
	case ToolResult:
		return v.Content
	case System:
		return v.Text
	}
	return ""
}
