package embed

import "context"

// Embedder generates vector embeddings from text.
// Implementations must be safe for concurrent use.
type Embedder interface {
	// EmbedText generates a vector embedding for a single text string.
	EmbedText(ctx context.Context, text string) ([]float32, error)

	// EmbedTexts generates embeddings for multiple texts in one batch.
	// The returned slice is in the same order as the input texts.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}
