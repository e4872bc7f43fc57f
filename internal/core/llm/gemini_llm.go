package llm

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/MaggPerez/stututor-backend/internal/core"
)

type GeminiLLM struct {
	client    *genai.Client
	modelName string
}

func NewGeminiLLM(ctx context.Context, apiKey, modelName string) (*GeminiLLM, error) {
	if apiKey == "" {
		apiKey = os.Getenv("GEMINI_API_KEY")
	}
	cl, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, err
	}
	if modelName == "" {
		modelName = "gemini-1.5-flash"
	}
	return &GeminiLLM{client: cl, modelName: modelName}, nil
}

func (g *GeminiLLM) Close() error {
	if g.client != nil {
		return g.client.Close()
	}
	return nil
}

func (g *GeminiLLM) Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	m := g.client.GenerativeModel(g.modelName)
	if systemPrompt != "" {
		m.SystemInstruction = &genai.Content{
			Parts: []genai.Part{genai.Text(systemPrompt)},
		}
	}

	resp, err := m.GenerateContent(ctx, genai.Text(userPrompt))
	if err != nil {
		return "", fmt.Errorf("gemini generate: %w", err)
	}
	return flatten(resp), nil
}

// GenerateJSON forces an application/json response for the given parts. Parts
// carrying Data are sent as inline blobs (PDF bytes), everything else as text.
func (g *GeminiLLM) GenerateJSON(ctx context.Context, systemPrompt string, parts []core.GenPart) (string, error) {
	m := g.client.GenerativeModel(g.modelName)
	m.ResponseMIMEType = "application/json"
	if systemPrompt != "" {
		m.SystemInstruction = &genai.Content{
			Parts: []genai.Part{genai.Text(systemPrompt)},
		}
	}

	in := make([]genai.Part, 0, len(parts))
	for _, p := range parts {
		if len(p.Data) > 0 {
			in = append(in, genai.Blob{MIMEType: p.MIMEType, Data: p.Data})
			continue
		}
		in = append(in, genai.Text(p.Text))
	}

	resp, err := m.GenerateContent(ctx, in...)
	if err != nil {
		return "", fmt.Errorf("gemini generate json: %w", err)
	}
	return flatten(resp), nil
}

func flatten(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var b strings.Builder
	for _, p := range resp.Candidates[0].Content.Parts {
		if t, ok := p.(genai.Text); ok {
			b.WriteString(string(t))
		}
	}
	return b.String()
}

var _ core.LLMProvider = (*GeminiLLM)(nil)
