// Package recap keeps long conversational transcripts inside a model's
// input limit by summarizing older turns and archiving their full text.
//
// Recap is opinionated (size-estimated triggers + offload-then-summarize),
// modular, and designed for agent loops whose transcripts outgrow the
// context window of the model serving them.
//
// # Key Features
//
//   - Threshold-driven compaction: turn count, estimated size, or a
//     fraction of the service's input limit
//   - Tool-call safety: a cutoff never separates an agent turn from the
//     tool results answering it
//   - Durable offload: discarded turns are appended to a per-session
//     archive before the summary replaces them
//   - Argument truncation for oversized tool-call payloads, on its own
//     earlier trigger
//   - Overflow recovery: a rejected request recalibrates the session's
//     size estimate and retries once with a maximally compacted context
//   - Pluggable storage backends (filesystem, memory, SQLite, PostgreSQL)
//     and summarization services (Anthropic, OpenAI)
//
// # Quick Start
//
// Create a compactor and run it before each model call:
//
//	backend, _ := fs.New("/var/lib/recap")
//	compactor, err := recap.New(
//	    recap.DefaultConfig(),
//	    recap.WithBackend(backend),
//	)
//
//	tracker := recap.NewTracker()
//	state := tracker.Session("session-123")
//
//	result, err := compactor.Compact(ctx, transcript, state, svc)
//	// result.Turns is what to send; result.State carries the compaction
//	// event forward.
//
// Or let the engine own the service call, including overflow recovery:
//
//	reply, result, err := compactor.Invoke(ctx, transcript, state, svc)
//
// # Compaction Lifecycle
//
// Each round re-derives the effective transcript from the raw history and
// the session's last compaction event, so callers keep appending to one
// append-only list:
//
//	effective := state.EffectiveTurns(raw)
//
// When a trigger fires, the engine picks a cutoff that honors the
// retention policy, moves it off any tool-call boundary, archives the
// discarded turns, asks the service for a summary, and only then commits
// the new event. A failed archive write aborts the round and leaves the
// session state untouched.
//
// # Thresholds
//
// Triggers and retention are both expressed as thresholds:
//
//	cfg := recap.DefaultConfig()
//	cfg.Triggers = []recap.Threshold{recap.Fraction(0.8), recap.Size(600_000)}
//	cfg.Keep = recap.Turns(10)
//
// Fraction thresholds resolve against the service's input limit and stay
// inert when the service does not report one.
package recap
