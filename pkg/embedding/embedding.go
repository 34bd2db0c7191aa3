package embedding

import (
	"context"
	"errors"

	"github.com/artem13815/shortlist/pkg/document"
)

// MaxInputWords is the number of whitespace-delimited tokens kept before encoding.
const MaxInputWords = 512

var ErrModelUnavailable = errors.New("embedding model unavailable")

// Embedder maps text to fixed-dimension dense vectors.
// Implementations must be safe for concurrent use.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	// EmbedMany returns one vector per input, index-aligned with texts.
	EmbedMany(ctx context.Context, texts []string) ([][]float32, error)
	Dimension() int
	MaxInputTokens() int
}

// Preprocess trims text, collapses whitespace runs and keeps the first MaxInputWords tokens.
func Preprocess(text string) string {
	chunks := document.Chunk(text, MaxInputWords)
	if len(chunks) == 0 {
		return ""
	}
	return chunks[0]
}
