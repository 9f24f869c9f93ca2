package recap

import "fmt"

// Default configuration values.
const (
	// DefaultTriggerFraction fires compaction at this share of the service's
	// input limit.
	DefaultTriggerFraction = 0.8

	// DefaultTriggerSize fires compaction at this absolute estimated size,
	// covering services that do not report an input limit.
	DefaultTriggerSize = 600_000

	// DefaultKeepTurns is how many tail turns survive compaction.
	DefaultKeepTurns = 10

	// DefaultTrimBudget bounds the summarizer's own input.
	DefaultTrimBudget = 160_000

	// DefaultSafetyBackscanRatio bounds the backward safety adjustment
	// relative to the cutoff index.
	DefaultSafetyBackscanRatio = 0.5

	// DefaultTruncationFraction engages argument truncation at this share of
	// the input limit, before compaction would fire.
	DefaultTruncationFraction = 0.6

	// DefaultTruncationKeepTurns is the tail whose arguments stay untouched.
	DefaultTruncationKeepTurns = 20

	// DefaultMaxArgLength is the length above which a payload argument is
	// truncated.
	DefaultMaxArgLength = 4_000

	// DefaultReplacement marks a truncated argument.
	DefaultReplacement = "... [argument truncated]"

	// DefaultOffloadPrefix is the path prefix for per-session archive logs.
	DefaultOffloadPrefix = "offload"
)

// defaultPayloadKeys are the argument names known to carry large literal
// payloads, such as file contents being written.
var defaultPayloadKeys = []string{"content", "file_text", "new_string", "body"}

// TruncationConfig configures the argument truncator, which runs before the
// trigger check with its own thresholds so it can sometimes avoid a full
// compaction.
type TruncationConfig struct {
	// Trigger activates truncation; typically looser than the compaction
	// triggers. Zero disables truncation.
	Trigger Threshold

	// Keep is the tail whose invocation arguments are never modified.
	Keep Threshold

	// MaxArgLength is the length above which a payload argument is replaced.
	MaxArgLength int

	// Replacement is appended to the kept prefix of a truncated argument.
	Replacement string

	// PayloadKeys names the arguments eligible for truncation. Only
	// string-valued arguments under these names are ever touched.
	PayloadKeys []string
}

// Config controls the compaction engine. All fields are optional; unset
// fields are filled by ApplyDefaults. An explicitly empty Triggers slice
// still disables compaction entirely (summarization is opt-in), so most
// hosts start from DefaultConfig.
type Config struct {
	// Triggers lists the thresholds that activate compaction; any match
	// fires.
	Triggers []Threshold

	// Keep describes how much of the tail must survive compaction.
	Keep Threshold

	// Truncation configures the independent argument truncator.
	Truncation TruncationConfig

	// TrimBudget bounds the summarizer's own input, in estimator units.
	TrimBudget int

	// SafetyBackscanRatio bounds how far, relative to the cutoff index, the
	// safety adjustment may move a cutoff backward to keep a tool pair in
	// the preserved set. In (0, 1]; see makeSafe.
	SafetyBackscanRatio float64

	// OffloadPrefix is the path prefix for per-session archive logs.
	OffloadPrefix string

	// SummaryPrompt replaces the default instruction turn on summary
	// requests.
	SummaryPrompt string

	// Logger receives engine logs. Nil disables logging.
	Logger Logger
}

// DefaultConfig returns a Config with every field set to its default.
func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.ApplyDefaults()
	return cfg
}

// ApplyDefaults fills unset fields with default values. A nil Triggers slice
// receives the default triggers; an explicitly empty one is preserved.
func (c *Config) ApplyDefaults() {
	if c.Triggers == nil {
		c.Triggers = []Threshold{Fraction(DefaultTriggerFraction), Size(DefaultTriggerSize)}
	}
	if c.Keep.isZero() {
		c.Keep = Turns(DefaultKeepTurns)
	}
	if c.Truncation.Trigger.isZero() {
		c.Truncation.Trigger = Fraction(DefaultTruncationFraction)
	}
	if c.Truncation.Keep.isZero() {
		c.Truncation.Keep = Turns(DefaultTruncationKeepTurns)
	}
	if c.Truncation.MaxArgLength == 0 {
		c.Truncation.MaxArgLength = DefaultMaxArgLength
	}
	if c.Truncation.Replacement == "" {
		c.Truncation.Replacement = DefaultReplacement
	}
	if c.Truncation.PayloadKeys == nil {
		c.Truncation.PayloadKeys = defaultPayloadKeys
	}
	if c.TrimBudget == 0 {
		c.TrimBudget = DefaultTrimBudget
	}
	if c.SafetyBackscanRatio == 0 {
		c.SafetyBackscanRatio = DefaultSafetyBackscanRatio
	}
	if c.OffloadPrefix == "" {
		c.OffloadPrefix = DefaultOffloadPrefix
	}
	if c.SummaryPrompt == "" {
		c.SummaryPrompt = DefaultSummaryPrompt
	}
	if c.Logger == nil {
		c.Logger = noopLogger{}
	}
}

// Validate checks the configuration for consistency. Call after
// ApplyDefaults.
func (c *Config) Validate() error {
	for i, tr := range c.Triggers {
		if err := tr.Validate(); err != nil {
			return fmt.Errorf("trigger %d: %w", i, err)
		}
	}
	if !c.Keep.isZero() {
		if err := c.Keep.Validate(); err != nil {
			return fmt.Errorf("keep policy: %w", err)
		}
	}
	if !c.Truncation.Trigger.isZero() {
		if err := c.Truncation.Trigger.Validate(); err != nil {
			return fmt.Errorf("truncation trigger: %w", err)
		}
		if err := c.Truncation.Keep.Validate(); err != nil {
			return fmt.Errorf("truncation keep policy: %w", err)
		}
		if c.Truncation.MaxArgLength < 1 {
			return fmt.Errorf("%w: truncation max arg length must be at least 1, got %d",
				ErrInvalidConfig, c.Truncation.MaxArgLength)
		}
	}
	if c.TrimBudget < 0 {
		return fmt.Errorf("%w: trim budget must be non-negative, got %d", ErrInvalidConfig, c.TrimBudget)
	}
	if c.SafetyBackscanRatio <= 0 || c.SafetyBackscanRatio > 1 {
		return fmt.Errorf("%w: safety backscan ratio must be in (0, 1], got %v",
			ErrInvalidConfig, c.SafetyBackscanRatio)
	}
	return nil
}
