package advisor

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

// GeminiBackend calls Google's Gemini API.
type GeminiBackend struct {
	client    *genai.Client
	model     string
	maxTokens int32
}

func NewGeminiBackend(ctx context.Context, apiKey, model string, maxTokens int) (*GeminiBackend, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("GenAI API key is required")
	}
	if model == "" {
		model = defaultModel(ProviderGemini)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}

	return &GeminiBackend{client: client, model: model, maxTokens: int32(maxTokens)}, nil
}

// Generate folds System and Closing into the system instruction.
func (g *GeminiBackend) Generate(ctx context.Context, p Prompt) (string, error) {
	system := p.System
	if p.Closing != "" {
		system += "\n\n" + p.Closing
	}

	resp, err := g.client.Models.GenerateContent(ctx,
		g.model,
		genai.Text(p.User),
		&genai.GenerateContentConfig{
			SystemInstruction: genai.NewContentFromText(system, genai.RoleUser),
			MaxOutputTokens:   g.maxTokens,
		},
	)
	if err != nil {
		return "", fmt.Errorf("GenAI generate failed: %w", err)
	}
	return resp.Text(), nil
}
