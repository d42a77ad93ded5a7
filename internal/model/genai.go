package model

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"google.golang.org/genai"
)

// DefaultGenAIModel is used when no model name is configured.
const DefaultGenAIModel = "gemini-2.0-flash"

type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// GenAIClient invokes the model through the genai SDK and re-encodes the
// answer into the REST envelope so callers see the same raw text as HTTPClient.
type GenAIClient struct {
	models  contentGenerator
	model   string
	timeout time.Duration
}

// NewGenAIClient creates a GenAIClient for the Gemini API backend.
func NewGenAIClient(ctx context.Context, apiKey, model string, timeout time.Duration) (*GenAIClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("genai API key is required")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}
	return newGenAIClient(client.Models, model, timeout), nil
}

func newGenAIClient(models contentGenerator, model string, timeout time.Duration) *GenAIClient {
	if model == "" {
		model = DefaultGenAIModel
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &GenAIClient{models: models, model: model, timeout: timeout}
}

// Invoke implements Client.
func (g *GenAIClient) Invoke(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	resp, err := g.models.GenerateContent(ctx, g.model, genai.Text(prompt), nil)
	if err != nil {
		return "", fmt.Errorf("genai generate: %w", err)
	}
	if resp == nil {
		return "", ErrEmptyResponse
	}

	raw, err := json.Marshal(toEnvelope(resp))
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

type envelope struct {
	Candidates []candidate `json:"candidates"`
}

type candidate struct {
	Content *content `json:"content,omitempty"`
}

// toEnvelope keeps only the text parts of each candidate. Nil candidates and
// parts keep their slot as empty values so positions match the SDK response.
func toEnvelope(resp *genai.GenerateContentResponse) envelope {
	env := envelope{Candidates: make([]candidate, len(resp.Candidates))}
	for i, c := range resp.Candidates {
		if c == nil || c.Content == nil {
			continue
		}
		parts := make([]part, len(c.Content.Parts))
		for j, p := range c.Content.Parts {
			if p != nil {
				parts[j] = part{Text: p.Text}
			}
		}
		env.Candidates[i].Content = &content{Parts: parts}
	}
	return env
}
