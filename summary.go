package recap

import (
	"context"
	"fmt"
	"strings"

	"github.com/turnwise/recap/service"
	"github.com/turnwise/recap/turns"
)

// trimForSummary keeps only the most recent tail of ts whose estimated size
// fits the trim budget. The summarizer's own input must stay cheap: when a
// discard range is huge (or already contains an earlier summary of a huge
// range), the oldest part is simply dropped from the summary request. The
// durable archive still holds everything.
func trimForSummary(ts []turns.Turn, budget int) []turns.Turn {
	if budget <= 0 {
		return ts
	}
	acc := 0
	for i := len(ts) - 1; i >= 0; i-- {
		acc += EstimateTurn(ts[i])
		if acc > budget {
			return ts[i+1:]
		}
	}
	return ts
}

// summarize asks the generative service for a condensed representation of
// the discarded turns.
func (c *Compactor) summarize(ctx context.Context, svc service.Service, discard []turns.Turn, sessionID string) (string, error) {
	input := trimForSummary(discard, c.trimBudget)
	if len(input) < len(discard) {
		c.log.Debug("summary input trimmed",
			"session_id", sessionID,
			"turns_in", len(discard),
			"turns_kept", len(input),
			"budget", c.trimBudget)
	}

	req := []turns.Turn{
		turns.System{Text: c.summaryPrompt},
		turns.User{Text: buildSummaryRequest(formatTurnsForSummary(input))},
	}
	reply, err := svc.Invoke(ctx, req)
	if err != nil {
		return "", err
	}
	text := strings.TrimSpace(turns.Text(reply))
	if text == "" {
		return "", fmt.Errorf("%w: %w", ErrSummaryFailed, service.ErrEmptyReply)
	}
	return text, nil
}

// renderSummaryTurn builds the synthetic turn that stands in for the
// discarded range. The offload path is referenced only when the archive
// write actually happened; a path-less summary explains itself instead of
// fabricating a reference.
func renderSummaryTurn(text, offloadPath string) turns.User {
	var sb strings.Builder
	sb.WriteString("Here is a summary of the conversation so far. ")
	if offloadPath != "" {
		sb.WriteString("The complete earlier transcript is archived at ")
		sb.WriteString(offloadPath)
		sb.WriteString(".")
	} else {
		sb.WriteString("The earlier transcript was not durably archived.")
	}
	sb.WriteString("\n\n")
	sb.WriteString(text)
	return turns.User{Text: sb.String(), Summary: true}
}
