package hooks

import (
	"context"
	"log/slog"
)

// LoggingHooks provides built-in logging hooks for observability. Register
// its methods on a Registry to get a structured log line per engine phase.
type LoggingHooks struct {
	logger *slog.Logger
}

// NewLoggingHooks creates logging hooks with the provided logger
func NewLoggingHooks(logger *slog.Logger) *LoggingHooks {
	return &LoggingHooks{logger: logger}
}

// DefaultLoggingHooks creates logging hooks with the default slog logger
func DefaultLoggingHooks() *LoggingHooks {
	return &LoggingHooks{logger: slog.Default()}
}

// BeforeCompaction logs that a round is about to discard turns
func (h *LoggingHooks) BeforeCompaction(ctx context.Context, sessionID string, estimated int) error {
	h.logger.InfoContext(ctx, "compaction starting",
		"session_id", sessionID,
		"estimated", estimated)
	return nil
}

// AfterCompaction logs the committed round outcome
func (h *LoggingHooks) AfterCompaction(ctx context.Context, result *CompactionResult) error {
	total := result.DiscardedTurns + result.PreservedTurns
	reduction := float64(0)
	if total > 0 {
		reduction = float64(result.DiscardedTurns) / float64(total) * 100
	}

	h.logger.InfoContext(ctx, "compaction committed",
		"session_id", result.SessionID,
		"cutoff", result.CutoffIndex,
		"discarded", result.DiscardedTurns,
		"preserved", result.PreservedTurns,
		"reduction_pct", reduction,
		"offload_path", result.OffloadPath)
	return nil
}

// Offload logs a successful archive write
func (h *LoggingHooks) Offload(ctx context.Context, sessionID, path string, size int) error {
	h.logger.InfoContext(ctx, "turns archived",
		"session_id", sessionID,
		"path", path,
		"bytes", size)
	return nil
}

// Truncation logs how many old turns had arguments shrunk
func (h *LoggingHooks) Truncation(ctx context.Context, sessionID string, truncated int) error {
	h.logger.InfoContext(ctx, "old arguments truncated",
		"session_id", sessionID,
		"turns", truncated)
	return nil
}

// MetricsHooks collects metrics for monitoring
type MetricsHooks struct {
	OnMetric func(name string, value float64, tags map[string]string)
}

// NewMetricsHooks creates metrics collection hooks
func NewMetricsHooks(onMetric func(string, float64, map[string]string)) *MetricsHooks {
	return &MetricsHooks{OnMetric: onMetric}
}

// AfterCompaction records round outcome metrics
func (h *MetricsHooks) AfterCompaction(ctx context.Context, result *CompactionResult) error {
	tags := map[string]string{"session_id": result.SessionID}

	h.OnMetric("recap.compaction.discarded_turns", float64(result.DiscardedTurns), tags)
	h.OnMetric("recap.compaction.preserved_turns", float64(result.PreservedTurns), tags)
	h.OnMetric("recap.compaction.estimated_size", float64(result.EstimatedSize), tags)

	if total := result.DiscardedTurns + result.PreservedTurns; total > 0 {
		h.OnMetric("recap.compaction.reduction_pct",
			float64(result.DiscardedTurns)/float64(total)*100, tags)
	}
	return nil
}

// Offload records archive write metrics
func (h *MetricsHooks) Offload(ctx context.Context, sessionID, path string, size int) error {
	h.OnMetric("recap.offload.bytes", float64(size), map[string]string{"session_id": sessionID})
	return nil
}

// Truncation records truncation metrics
func (h *MetricsHooks) Truncation(ctx context.Context, sessionID string, truncated int) error {
	h.OnMetric("recap.truncation.turns", float64(truncated), map[string]string{"session_id": sessionID})
	return nil
}
