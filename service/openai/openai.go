// Package openai adapts the OpenAI Chat Completions API to the service
// boundary consumed by the compaction engine.
package openai

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/openai/openai-go/v3"
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
	"gpt-4.1":       {MaxContextTokens: 1047576, DefaultMaxTokens: 32768},
	"gpt-4.1-mini":  {MaxContextTokens: 1047576, DefaultMaxTokens: 32768},
	"gpt-4o":        {MaxContextTokens: 128000, DefaultMaxTokens: 16384},
	"gpt-4o-mini":   {MaxContextTokens: 128000, DefaultMaxTokens: 16384},
	"o3-mini":       {MaxContextTokens: 200000, DefaultMaxTokens: 100000},
	"gpt-3.5-turbo": {MaxContextTokens: 16385, DefaultMaxTokens: 4096},
}

// GetModelInfo returns model info, using sensible defaults for unknown models
func GetModelInfo(model string) ModelInfo {
	if info, ok := KnownModels[model]; ok {
		return info
	}
	return ModelInfo{MaxContextTokens: 128000, DefaultMaxTokens: 16384}
}

// Config holds the configuration for the OpenAI adapter.
type Config struct {
	// Client is the OpenAI API client (required)
	Client *openai.Client

	// Model is the model ID to use (required)
	// Examples: "gpt-4o", "gpt-4.1-mini"
	Model string

	// MaxTokens caps the reply length.
	// Defaults to the model's DefaultMaxTokens when zero.
	MaxTokens int64
}

// Adapter invokes the Chat Completions API as a service.Service.
type Adapter struct {
	client    *openai.Client
	model     string
	maxTokens int64
	maxInput  int
}

// New creates an OpenAI service adapter.
func New(cfg Config) (*Adapter, error) {
	if cfg.Client == nil {
		return nil, errors.New("openai adapter requires a client")
	}
	if cfg.Model == "" {
		return nil, errors.New("openai adapter requires a model")
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

// Invoke replays the turn list against the Chat Completions API and
// returns the model's reply as an Agent turn.
func (a *Adapter) Invoke(ctx context.Context, ts []turns.Turn) (turns.Turn, error) {
	params := openai.ChatCompletionNewParams{
		Model:               a.model,
		Messages:            toChatMessages(ts),
		MaxCompletionTokens: openai.Opt(a.maxTokens),
	}

	resp, err := a.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, a.classify(err)
	}
	if resp == nil || len(resp.Choices) == 0 {
		return nil, service.ErrEmptyReply
	}
	return replyTurn(resp.Choices[0].Message), nil
}

// MaxInputSize reports the model's context window in estimator units.
func (a *Adapter) MaxInputSize() int {
	return a.maxInput
}

// classify maps the provider's "context length exceeded" rejection onto
// the shared overflow class; other errors pass through unchanged.
func (a *Adapter) classify(err error) error {
	var apiErr *openai.Error
	if !errors.As(err, &apiErr) {
		return err
	}
	msg := strings.ToLower(apiErr.Error())
	if apiErr.StatusCode == 413 ||
		strings.Contains(msg, "context_length_exceeded") ||
		strings.Contains(msg, "maximum context length") {
		return &service.OverflowError{Provider: "openai", Limit: a.maxInput, Err: err}
	}
	return err
}

// toChatMessages converts turns to chat message parameters.
func toChatMessages(ts []turns.Turn) []openai.ChatCompletionMessageParamUnion {
	out := make([]openai.ChatCompletionMessageParamUnion, 0, len(ts))
	for _, t := range ts {
		switch v := t.(type) {
		case turns.System:
			out = append(out, openai.SystemMessage(v.Text))
		case turns.User:
			out = append(out, openai.UserMessage(v.Text))
		case turns.Agent:
			out = append(out, assistantMessage(v))
		case turns.ToolResult:
			out = append(out, openai.ToolMessage(v.Content, v.InvocationID))
		}
	}
	return out
}

func assistantMessage(v turns.Agent) openai.ChatCompletionMessageParamUnion {
	assistant := openai.ChatCompletionAssistantMessageParam{}
	if v.Text != "" {
		assistant.Content.OfString = openai.String(v.Text)
	}
	for _, inv := range v.Invocations {
		args := "{}"
		if len(inv.Args) > 0 {
			if b, err := json.Marshal(inv.Args); err == nil {
				args = string(b)
			}
		}
		assistant.ToolCalls = append(assistant.ToolCalls, openai.ChatCompletionMessageToolCallUnionParam{
			OfFunction: &openai.ChatCompletionMessageFunctionToolCallParam{
				ID: inv.ID,
				Function: openai.ChatCompletionMessageFunctionToolCallFunctionParam{
					Name:      inv.Name,
					Arguments: args,
				},
			},
		})
	}
	return openai.ChatCompletionMessageParamUnion{OfAssistant: &assistant}
}

// replyTurn flattens the chosen completion into a single Agent turn.
func replyTurn(msg openai.ChatCompletionMessage) turns.Turn {
	var invocations []turns.Invocation
	for _, call := range msg.ToolCalls {
		fn, ok := call.AsAny().(openai.ChatCompletionMessageFunctionToolCall)
		if !ok {
			continue
		}
		args := map[string]any{}
		if strings.TrimSpace(fn.Function.Arguments) != "" {
			if err := json.Unmarshal([]byte(fn.Function.Arguments), &args); err != nil {
				args = map[string]any{"raw": fn.Function.Arguments}
			}
		}
		invocations = append(invocations, turns.Invocation{
			ID:   fn.ID,
			Name: fn.Function.Name,
			Args: args,
		})
	}
	return turns.Agent{Text: msg.Content, Invocations: invocations}
}

var (
	_ service.Service = (*Adapter)(nil)
	_ service.Limiter = (*Adapter)(nil)
)
