// Package anthropic adapts the Anthropic Messages API to the service
// boundary consumed by the compaction engine.
package anthropic

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/turnwise/recap/service"
	"github.com/turnwise/recap/turns"
)

// charsPerToken converts the provider's token limits into estimator
// units (estimated characters).
const charsPerToken = 4

// ModelInfo contains model-specific parameters
type ModelInfo struct {
	MaxContextTokens int
	DefaultMaxTokens int
}

// KnownModels maps model IDs to their capabilities
var KnownModels = map[string]ModelInfo{
	// Claude 4 models
	"claude-sonnet-4-5-20250929": {MaxContextTokens: 200000, DefaultMaxTokens: 16384},
	"claude-opus-4-5-20251101":   {MaxContextTokens: 200000, DefaultMaxTokens: 16384},
	// Claude 3.5 models
	"claude-3-5-sonnet-20241022": {MaxContextTokens: 200000, DefaultMaxTokens: 8192},
	"claude-3-5-haiku-20241022":  {MaxContextTokens: 200000, DefaultMaxTokens: 8192},
	// Claude 3 models
	"claude-3-opus-20240229":   {MaxContextTokens: 200000, DefaultMaxTokens: 4096},
	"claude-3-sonnet-20240229": {MaxContextTokens: 200000, DefaultMaxTokens: 4096},
	"claude-3-haiku-20240307":  {MaxContextTokens: 200000, DefaultMaxTokens: 4096},
}

// GetModelInfo returns model info, using sensible defaults for unknown models
func GetModelInfo(model string) ModelInfo {
	if info, ok := KnownModels[model]; ok {
		return info
	}
	return ModelInfo{MaxContextTokens: 200000, DefaultMaxTokens: 8192}
}

// Config holds the configuration for the Anthropic adapter.
type Config struct {
	// Client is the Anthropic API client (required)
	Client *anthropic.Client

	// Model is the model ID to use (required)
	// Examples: "claude-sonnet-4-5-20250929", "claude-opus-4-5-20251101"
	Model string

	// MaxTokens caps the reply length.
	// Defaults to the model's DefaultMaxTokens when zero.
	MaxTokens int64
}

// Adapter invokes the Anthropic Messages API as a service.Service.
type Adapter struct {
	client    *anthropic.Client
	model     string
	maxTokens int64
	maxInput  int
}

// New creates an Anthropic service adapter.
func New(cfg Config) (*Adapter, error) {
	if cfg.Client == nil {
		return nil, errors.New("anthropic adapter requires a client")
	}
	if cfg.Model == "" {
		return nil, errors.New("anthropic adapter requires a model")
	}
	info := GetModelInfo(cfg.Model)
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = int64(info.DefaultMaxTokens)
	}
	return &Adapter{
		client:    cfg.Client,
		model:     cfg.Model,
		maxTokens: maxTokens,
		maxInput:  info.MaxContextTokens * charsPerToken,
	}, nil
}

// Invoke replays the turn list against the Messages API and returns the
// model's reply as an Agent turn.
func (a *Adapter) Invoke(ctx context.Context, ts []turns.Turn) (turns.Turn, error) {
	system, msgs := toMessageParams(ts)

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(a.model),
		MaxTokens: a.maxTokens,
		Messages:  msgs,
	}
	if len(system) > 0 {
		params.System = system
	}

	resp, err := a.client.Messages.New(ctx, params)
	if err != nil {
		return nil, a.classify(err)
	}
	return replyTurn(resp), nil
}

// MaxInputSize reports the model's context window in estimator units.
func (a *Adapter) MaxInputSize() int {
	return a.maxInput
}

// classify maps the provider's "input too large" rejection onto the
// shared overflow class; other errors pass through unchanged.
func (a *Adapter) classify(err error) error {
	var apiErr *anthropic.Error
	if !errors.As(err, &apiErr) {
		return err
	}
	msg := strings.ToLower(apiErr.Error())
	if apiErr.StatusCode == 413 ||
		strings.Contains(msg, "prompt is too long") ||
		strings.Contains(msg, "request_too_large") {
		return &service.OverflowError{Provider: "anthropic", Limit: a.maxInput, Err: err}
	}
	return err
}

// toMessageParams converts turns to API message parameters. System turns
// go in the request's system field, not the message list.
func toMessageParams(ts []turns.Turn) ([]anthropic.TextBlockParam, []anthropic.MessageParam) {
	var system []anthropic.TextBlockParam
	msgs := make([]anthropic.MessageParam, 0, len(ts))

	for _, t := range ts {
		switch v := t.(type) {
		case turns.System:
			system = append(system, anthropic.TextBlockParam{Text: v.Text})

		case turns.User:
			msgs = append(msgs, anthropic.NewUserMessage(anthropic.NewTextBlock(v.Text)))

		case turns.Agent:
			blocks := make([]anthropic.ContentBlockParamUnion, 0, 1+len(v.Invocations))
			if v.Text != "" {
				blocks = append(blocks, anthropic.NewTextBlock(v.Text))
			}
			for _, inv := range v.Invocations {
				input := any(inv.Args)
				if inv.Args == nil {
					// The API requires a dictionary, not null.
					input = map[string]any{}
				}
				blocks = append(blocks, anthropic.NewToolUseBlock(inv.ID, input, inv.Name))
			}
			if len(blocks) == 0 {
				blocks = append(blocks, anthropic.NewTextBlock(""))
			}
			msgs = append(msgs, anthropic.NewAssistantMessage(blocks...))

		case turns.ToolResult:
			msgs = append(msgs, anthropic.NewUserMessage(
				anthropic.NewToolResultBlock(v.InvocationID, v.Content, false)))
		}
	}
	return system, msgs
}

// replyTurn flattens the response content into a single Agent turn.
func replyTurn(msg *anthropic.Message) turns.Turn {
	var text strings.Builder
	var invocations []turns.Invocation

	for _, block := range msg.Content {
		switch block.Type {
		case "text":
			text.WriteString(block.AsText().Text)
		case "tool_use":
			tu := block.AsToolUse()
			var args map[string]any
			if err := json.Unmarshal(tu.Input, &args); err != nil {
				args = map[string]any{"raw": string(tu.Input)}
			}
			invocations = append(invocations, turns.Invocation{
				ID:   tu.ID,
				Name: tu.Name,
				Args: args,
			})
		}
	}
	return turns.Agent{Text: text.String(), Invocations: invocations}
}

var (
	_ service.Service = (*Adapter)(nil)
	_ service.Limiter = (*Adapter)(nil)
)
