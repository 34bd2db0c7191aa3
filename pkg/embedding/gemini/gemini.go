package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/artem13815/shortlist/pkg/embedding"
)

const (
	defaultModel = "text-embedding-004"
	// maxBatch is the largest number of contents accepted by one EmbedContent call.
	maxBatch = 100
)

// Embedder calls the Gemini embedding endpoint.
type Embedder struct {
	client *genai.Client
	model  string
	dim    int
}

// New creates a Gemini-backed embedder with a fixed output dimensionality.
func New(ctx context.Context, apiKey, model string, dim int) (*Embedder, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("gemini api key is required")
	}
	return newEmbedder(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}, model, dim)
}

func newEmbedder(ctx context.Context, cc *genai.ClientConfig, model string, dim int) (*Embedder, error) {
	if dim <= 0 {
		return nil, fmt.Errorf("invalid embedding dimension %d", dim)
	}
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	if model = strings.TrimSpace(model); model == "" {
		model = defaultModel
	}
	return &Embedder{client: client, model: model, dim: dim}, nil
}

func (e *Embedder) Dimension() int      { return e.dim }
func (e *Embedder) MaxInputTokens() int { return embedding.MaxInputWords }
func (e *Embedder) Name() string        { return e.model }

func (e *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	out, err := e.EmbedMany(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return out[0], nil
}

func (e *Embedder) EmbedMany(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, 0, len(texts))
	dim := int32(e.dim)
	for start := 0; start < len(texts); start += maxBatch {
		end := min(start+maxBatch, len(texts))
		contents := make([]*genai.Content, 0, end-start)
		for _, t := range texts[start:end] {
			contents = append(contents, genai.NewContentFromText(embedding.Preprocess(t), genai.RoleUser))
		}
		resp, err := e.client.Models.EmbedContent(ctx, e.model, contents, &genai.EmbedContentConfig{
			TaskType:             "SEMANTIC_SIMILARITY",
			OutputDimensionality: &dim,
		})
		if err != nil {
			return nil, fmt.Errorf("gemini embed: %w", err)
		}
		if len(resp.Embeddings) != len(contents) {
			return nil, fmt.Errorf("gemini embed: got %d embeddings for %d texts", len(resp.Embeddings), len(contents))
		}
		for _, emb := range resp.Embeddings {
			if len(emb.Values) != e.dim {
				return nil, fmt.Errorf("gemini embed: got dimension %d, want %d", len(emb.Values), e.dim)
			}
			out = append(out, emb.Values)
		}
	}
	return out, nil
}
