package recap

// ThresholdKind selects how a Threshold value is interpreted.
type ThresholdKind string

const (
	// ThresholdTurns compares against the number of turns in the effective list.
	ThresholdTurns ThresholdKind = "turns"

	// ThresholdSize compares against the estimated size in estimator units.
	ThresholdSize ThresholdKind = "size"

	// ThresholdFraction compares against a fraction of the service's maximum
	// input size. Resolved lazily: if the service does not report a limit,
	// fraction thresholds never fire (degraded mode, not an error).
	ThresholdFraction ThresholdKind = "fraction"
)

// String returns the string representation of the threshold kind.
func (k ThresholdKind) String() string {
	return string(k)
}

func (k ThresholdKind) valid() bool {
	return k == ThresholdTurns || k == ThresholdSize || k == ThresholdFraction
}

// RoundOutcome represents what a single compaction round did. A failing
// round returns an error instead of a Result, so every outcome here is one
// a caller can actually observe.
//
// Round flow:
//
//	evaluate ───────────────────┐
//	    │ (below every trigger) │
//	    ├──> skipped            │ (arguments may still be truncated)
//	    │ (trigger fired)       │
//	    v                       │
//	offload ────────────────────┤
//	    │ (backend write fails) │
//	    ├──> aborted            │ (uncompacted turns pass through)
//	    │ (archived or no       │
//	    │  backend configured)  │
//	    v                       │
//	summarize ──────────────────┘
//	    └──> compacted            (event committed)
type RoundOutcome string

const (
	RoundSkipped   RoundOutcome = "skipped"
	RoundAborted   RoundOutcome = "aborted"
	RoundCompacted RoundOutcome = "compacted"

	// RoundRecovered is reported by Invoke when a context-too-large
	// rejection was absorbed by overflow recovery and the retry succeeded.
	RoundRecovered RoundOutcome = "recovered"
)

// String returns the string representation of the round outcome.
func (o RoundOutcome) String() string {
	return string(o)
}
