package client

import (
	"context"
	"fmt"

	"github.com/tracelens/backend/internal/model"
	"google.golang.org/genai"
)

const (
	completionTemperature = 0.3
	completionMaxTokens   = 2000
)

// CompletionClient wraps the generative-model completion endpoint. One
// instance is built per request from workspace credentials.
type CompletionClient struct {
	client *genai.Client
	model  string
}

func NewCompletionClient(ctx context.Context, apiKey, modelName string) (*CompletionClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("missing model API key")
	}
	if modelName == "" {
		modelName = "gemini-2.0-flash"
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey})
	if err != nil {
		return nil, err
	}
	return &CompletionClient{client: client, model: modelName}, nil
}

func (c *CompletionClient) ModelName() string {
	return c.model
}

// Complete runs one chat-style completion with a low temperature and a
// capped output length.
func (c *CompletionClient) Complete(ctx context.Context, system, prompt string) (string, *model.TokenUsage, error) {
	cfg := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr[float32](completionTemperature),
		MaxOutputTokens: completionMaxTokens,
	}
	if system != "" {
		cfg.SystemInstruction = genai.NewContentFromText(system, genai.RoleUser)
	}

	res, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(prompt), cfg)
	if err != nil {
		return "", nil, err
	}

	text := res.Text()
	if text == "" {
		return "", nil, fmt.Errorf("empty completion result")
	}

	var usage *model.TokenUsage
	if res.UsageMetadata != nil {
		usage = &model.TokenUsage{TotalTokens: res.UsageMetadata.TotalTokenCount}
	}
	return text, usage, nil
}

// EmbeddingClient turns analysis summaries into vectors for similarity
// lookups.
type EmbeddingClient struct {
	client *genai.Client
	model  string
}

func NewEmbeddingClient(ctx context.Context, apiKey, modelName string) (*EmbeddingClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("missing model API key")
	}
	if modelName == "" {
		modelName = "text-embedding-004"
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey})
	if err != nil {
		return nil, err
	}
	return &EmbeddingClient{client: client, model: modelName}, nil
}

func (c *EmbeddingClient) EmbedText(ctx context.Context, text string) ([]float32, string, error) {
	res, err := c.client.Models.EmbedContent(ctx, c.model, genai.Text(text), nil)
	if err != nil {
		return nil, c.model, err
	}
	if res == nil || len(res.Embeddings) == 0 || res.Embeddings[0] == nil {
		return nil, c.model, fmt.Errorf("empty embedding result")
	}
	return res.Embeddings[0].Values, c.model, nil
}
