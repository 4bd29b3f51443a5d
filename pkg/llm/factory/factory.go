package factory

import (
	"context"
	"fmt"

	"data-chat-be/pkg/llm"
	"data-chat-be/pkg/llm/anthropic"
	"data-chat-be/pkg/llm/gemini"
	"data-chat-be/pkg/llm/ollama"
	"data-chat-be/pkg/llm/openai"
)

// Models used when LLM_MODEL is not set.
var DefaultModels = map[string]string{
	"gemini":    "gemini-2.5-flash",
	"openai":    "gpt-4o-mini",
	"anthropic": "claude-3-5-sonnet-latest",
	"ollama":    "llama3.1",
}

type Params struct {
	Provider      string
	Model         string
	Temperature   float64
	GoogleAPIKey  string
	OpenAIAPIKey  string
	OpenAIBaseURL string
	AnthropicKey  string
	OllamaBaseURL string
}

func NewLLMProvider(ctx context.Context, p Params) (llm.LLMProvider, error) {
	if p.Provider == "" {
		p.Provider = "gemini"
	}
	if p.Model == "" {
		p.Model = DefaultModels[p.Provider]
	}

	switch p.Provider {
	case "gemini":
		return gemini.NewGeminiProvider(ctx, p.GoogleAPIKey, p.Model, p.Temperature)
	case "openai":
		return openai.NewOpenAIProvider(p.OpenAIAPIKey, p.OpenAIBaseURL, p.Model, p.Temperature)
	case "anthropic":
		return anthropic.NewAnthropicProvider(p.AnthropicKey, p.Model, p.Temperature)
	case "ollama":
		baseURL := p.OllamaBaseURL
		if baseURL == "" {
			baseURL = "http://localhost:11434" // Default
		}
		return ollama.NewOllamaProvider(baseURL, p.Model, p.Temperature), nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", p.Provider)
	}
}
