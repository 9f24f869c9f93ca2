package recap

import (
	"strings"

	"github.com/turnwise/recap/turns"
)

// DefaultSummaryPrompt is the instruction turn sent with every summary
// request. It asks for a structured condensation that lets the agent keep
// working after the original turns are gone; hosts can replace it via
// configuration when their domain needs a different shape.
const DefaultSummaryPrompt = `You are a transcript compactor for a long-running agent conversation. Older turns are being replaced by your summary while recent turns stay verbatim, so your summary must carry everything the agent still needs.

Produce a structured summary with the following sections. Write "None" for a section with no relevant content.

1. **Goal and Constraints**
   - What the user is trying to accomplish
   - Requirements and constraints stated along the way

2. **Work Completed**
   - Actions already taken, in order
   - Tool invocations that mattered and what they returned

3. **Key Facts**
   - Identifiers, paths, names, values and decisions established so far
   - Exact quotes where the wording matters

4. **Problems and Resolutions**
   - Failures encountered and how they were handled
   - Dead ends that should not be retried

5. **In Progress**
   - What was happening most recently
   - Partial results the next step builds on

6. **Next Step**
   - The immediate action to take when work resumes

Be concise but complete. Never invent information that is not in the transcript; prefer dropping commentary over dropping facts.`

// buildSummaryRequest wraps the rendered conversation in the request sent to
// the generative service.
func buildSummaryRequest(conversationText string) string {
	return `Summarize the following conversation according to the format in your instructions.

<conversation>
` + conversationText + `
</conversation>

The summary will replace these turns entirely; include everything needed to continue.`
}

// summaryToolResultLimit caps how much of each tool result is shown to the
// summarizer. The durable archive keeps the full content; the summarizer
// only needs enough to describe it.
const summaryToolResultLimit = 500

// formatTurnsForSummary renders turns as readable text for the summary
// request. Unlike the archive rendering this is lossy: long tool results are
// capped, and invocation arguments are reduced to the tool name.
func formatTurnsForSummary(ts []turns.Turn) string {
	var sb strings.Builder
	for _, t := range ts {
		formatTurnForSummary(&sb, t)
		sb.WriteString("\n\n")
	}
	return sb.String()
}

func formatTurnForSummary(sb *strings.Builder, t turns.Turn) {
	switch v := t.(type) {
	case turns.User:
		if v.Summary {
			sb.WriteString("Summary of earlier turns:\n")
		} else {
			sb.WriteString("User:\n")
		}
		sb.WriteString(v.Text)
	case turns.Agent:
		sb.WriteString("Assistant:\n")
		sb.WriteString(v.Text)
		for _, inv := range v.Invocations {
			sb.WriteString("\n[tool call: ")
			sb.WriteString(inv.Name)
			sb.WriteString("]")
		}
	case turns.ToolResult:
		sb.WriteString("Tool result:\n")
		content := v.Content
		if len(content) > summaryToolResultLimit {
			content = content[:summaryToolResultLimit] + "... (truncated)"
		}
		sb.WriteString(content)
	case turns.System:
		sb.WriteString("System:\n")
		sb.WriteString(v.Text)
	}
}
