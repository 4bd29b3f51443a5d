package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"data-chat-be/pkg/llm"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

const roleModel = "model"

type GeminiProvider struct {
	client      *genai.Client
	modelName   string
	temperature float64
}

var _ llm.LLMProvider = &GeminiProvider{}

func NewGeminiProvider(ctx context.Context, apiKey, modelName string, temperature float64) (*GeminiProvider, error) {
	if apiKey == "" {
		return nil, errors.New("missing GOOGLE_API_KEY or GEMINI_API_KEY")
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("gemini init: %w", err)
	}
	return &GeminiProvider{
		client:      client,
		modelName:   modelName,
		temperature: temperature,
	}, nil
}

func (g *GeminiProvider) Chat(ctx context.Context, history []llm.Message, opts ...llm.Option) (string, error) {
	options := llm.ApplyOptions(llm.Options{
		Temperature: g.temperature,
		Model:       g.modelName,
	}, opts...)

	system, turns := llm.SplitSystem(history)
	if len(turns) == 0 {
		return "", errors.New("gemini: no user message to send")
	}
	last := turns[len(turns)-1]
	if last.Role != llm.RoleUser {
		return "", fmt.Errorf("gemini: last message must come from user, got %q", last.Role)
	}

	model := g.client.GenerativeModel(options.Model)
	model.SetTemperature(float32(options.Temperature))
	if options.MaxTokens > 0 {
		model.SetMaxOutputTokens(int32(options.MaxTokens))
	}
	if system != "" {
		model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(system)}}
	}

	cs := model.StartChat()
	for _, msg := range turns[:len(turns)-1] {
		role := llm.RoleUser
		if msg.Role == llm.RoleAssistant || msg.Role == roleModel {
			role = roleModel
		}
		cs.History = append(cs.History, &genai.Content{
			Role:  role,
			Parts: []genai.Part{genai.Text(msg.Content)},
		})
	}

	resp, err := cs.SendMessage(ctx, genai.Text(last.Content))
	if err != nil {
		return "", fmt.Errorf("gemini generate: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", errors.New("gemini: empty response")
	}

	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			b.WriteString(string(text))
		}
	}
	return b.String(), nil
}

func (g *GeminiProvider) Close() error {
	return g.client.Close()
}
