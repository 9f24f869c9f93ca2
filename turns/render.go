package turns

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// SectionMarker starts every archive section header written by the history
// offloader. Log readers split sections on it.
const SectionMarker = "==== offloaded "

// SectionHeader formats the header line the offloader writes before each
// appended archive span.
func SectionHeader(at time.Time, turnCount int) string {
	return fmt.Sprintf("%s%s (%d turns) ====\n", SectionMarker, at.UTC().Format(time.RFC3339), turnCount)
}

// RenderText formats turns as role-labelled plain text. The rendering is
// faithful: nothing is truncated, so the output is suitable for durable
// archives that should read as the original conversation.
func RenderText(ts []Turn) string {
	var sb strings.Builder
	for i, t := range ts {
		if i > 0 {
			sb.WriteString("\n")
		}
		renderTurn(&sb, t)
	}
	return sb.String()
}

func renderTurn(sb *strings.Builder, t Turn) {
	switch v := t.(type) {
	case User:
		if v.Summary {
			sb.WriteString("User (summary): ")
		} else {
			sb.WriteString("User: ")
		}
		sb.WriteString(v.Text)
		sb.WriteString("\n")
	case Agent:
		sb.WriteString("Assistant: ")
		sb.WriteString(v.Text)
		sb.WriteString("\n")
		for _, inv := range v.Invocations {
			fmt.Fprintf(sb, "  [tool call %s id=%s] %s\n", inv.Name, inv.ID, renderArgs(inv.Args))
		}
	case ToolResult:
		fmt.Fprintf(sb, "[tool result id=%s]: %s\n", v.InvocationID, v.Content)
	case System:
		sb.WriteString("System: ")
		sb.WriteString(v.Text)
		sb.WriteString("\n")
	}
}

func renderArgs(args map[string]any) string {
	if len(args) == 0 {
		return "{}"
	}
	data, err := json.Marshal(args)
	if err != nil {
		return "{unencodable args}"
	}
	return string(data)
}
