package report

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

const (
	temperature     = 0.65
	maxOutputTokens = 2500
)

// GeminiModel calls the Gemini API through the genai SDK.
type GeminiModel struct {
	client *genai.Client
}

// NewGeminiModel creates a Gemini API client for apiKey.
func NewGeminiModel(ctx context.Context, apiKey string) (*GeminiModel, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &GeminiModel{client: client}, nil
}

// GenerateText sends one single-turn request.
func (m *GeminiModel) GenerateText(ctx context.Context, modelName, system, prompt string) (string, error) {
	cfg := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr[float32](temperature),
		MaxOutputTokens: maxOutputTokens,
	}
	if system != "" {
		cfg.SystemInstruction = &genai.Content{Parts: []*genai.Part{{Text: system}}}
	}

	resp, err := m.client.Models.GenerateContent(ctx, modelName, genai.Text(prompt), cfg)
	if err != nil {
		return "", err
	}
	return resp.Text(), nil
}
