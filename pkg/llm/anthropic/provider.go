package anthropic

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"data-chat-be/pkg/llm"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

const defaultMaxTokens = 2048

type AnthropicProvider struct {
	client      sdk.Client
	modelName   string
	temperature float64
}

var _ llm.LLMProvider = &AnthropicProvider{}

func NewAnthropicProvider(apiKey, modelName string, temperature float64) (*AnthropicProvider, error) {
	if apiKey == "" {
		return nil, errors.New("missing ANTHROPIC_API_KEY")
	}
	return &AnthropicProvider{
		client:      sdk.NewClient(option.WithAPIKey(apiKey)),
		modelName:   modelName,
		temperature: temperature,
	}, nil
}

func (a *AnthropicProvider) Chat(ctx context.Context, history []llm.Message, opts ...llm.Option) (string, error) {
	options := llm.ApplyOptions(llm.Options{
		Temperature: a.temperature,
		Model:       a.modelName,
		MaxTokens:   defaultMaxTokens,
	}, opts...)

	system, turns := llm.SplitSystem(history)
	if len(turns) == 0 {
		return "", errors.New("anthropic: no message to send")
	}

	messages := make([]sdk.MessageParam, 0, len(turns))
	for _, msg := range turns {
		if msg.Role == llm.RoleAssistant || msg.Role == "model" {
			messages = append(messages, sdk.NewAssistantMessage(sdk.NewTextBlock(msg.Content)))
			continue
		}
		messages = append(messages, sdk.NewUserMessage(sdk.NewTextBlock(msg.Content)))
	}

	params := sdk.MessageNewParams{
		Model:       sdk.Model(options.Model),
		MaxTokens:   int64(options.MaxTokens),
		Messages:    messages,
		Temperature: sdk.Float(options.Temperature),
	}
	if system != "" {
		params.System = []sdk.TextBlockParam{{Text: system}}
	}

	msg, err := a.client.Messages.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("anthropic messages: %w", err)
	}

	var b strings.Builder
	for _, cb := range msg.Content {
		if tb, ok := cb.AsAny().(sdk.TextBlock); ok {
			b.WriteString(tb.Text)
		}
	}
	return b.String(), nil
}
