package main

import (
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/openai/openai-go/v3"

	"github.com/turnwise/recap/service"
	anthropicsvc "github.com/turnwise/recap/service/anthropic"
	openaisvc "github.com/turnwise/recap/service/openai"
)

const (
	defaultAnthropicModel = "claude-3-5-haiku-20241022"
	defaultOpenAIModel    = "gpt-4o-mini"
)

// fakeSummary stands in for a model reply when no provider is configured.
const fakeSummary = "Earlier turns were archived; this placeholder replaces them."

// buildService constructs the summary provider named by the config. The
// real providers read their API keys from the environment
// (ANTHROPIC_API_KEY, OPENAI_API_KEY).
func buildService(cfg cliConfig) (service.Service, error) {
	switch cfg.Provider {
	case "fake":
		return service.NewStatic(fakeSummary, 0), nil
	case "anthropic":
		model := cfg.Model
		if model == "" {
			model = defaultAnthropicModel
		}
		client := anthropic.NewClient()
		return anthropicsvc.New(anthropicsvc.Config{Client: &client, Model: model})
	case "openai":
		model := cfg.Model
		if model == "" {
			model = defaultOpenAIModel
		}
		client := openai.NewClient()
		return openaisvc.New(openaisvc.Config{Client: &client, Model: model})
	default:
		return nil, fmt.Errorf("unknown provider %q (want fake, anthropic or openai)", cfg.Provider)
	}
}
