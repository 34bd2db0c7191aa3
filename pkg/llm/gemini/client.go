package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/artem13815/shortlist/pkg/llm"
)

const defaultModel = "gemini-2.5-flash"

// Client wraps the Google GenAI client for JSON-mode chat prompts.
type Client struct {
	client      *genai.Client
	modelName   string
	temperature float32
	maxTokens   int32
}

// New creates a Client configured for the Gemini API backend.
func New(ctx context.Context, apiKey, model string, temperature float32, maxTokens int) (*Client, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, llm.ErrNotConfigured
	}
	return newClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}, model, temperature, maxTokens)
}

func newClient(ctx context.Context, cc *genai.ClientConfig, model string, temperature float32, maxTokens int) (*Client, error) {
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	if model = strings.TrimSpace(model); model == "" {
		model = defaultModel
	}
	return &Client{client: client, modelName: model, temperature: temperature, maxTokens: int32(maxTokens)}, nil
}

func (c *Client) Name() string { return c.modelName }

func (c *Client) Ask(ctx context.Context, systemPrompt, userPrompt string) (llm.Completion, error) {
	if c == nil || c.client == nil {
		return llm.Completion{}, errors.New("gemini client is not initialized")
	}
	cfg := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(systemPrompt, genai.RoleUser),
		Temperature:       genai.Ptr(c.temperature),
		ResponseMIMEType:  "application/json",
	}
	if c.maxTokens > 0 {
		cfg.MaxOutputTokens = c.maxTokens
	}
	resp, err := c.client.Models.GenerateContent(ctx, c.modelName, genai.Text(userPrompt), cfg)
	if err != nil {
		return llm.Completion{}, fmt.Errorf("generate content: %w", err)
	}
	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return llm.Completion{}, errors.New("gemini returned an empty response")
	}
	out := llm.Completion{Content: text}
	if resp.UsageMetadata != nil {
		out.TotalTokens = int(resp.UsageMetadata.TotalTokenCount)
	}
	return out, nil
}
