package embedding

import "context"

// Embedder turns text into fixed-dimension vectors. EmbedBatch is
// all-or-nothing: either every input gets a vector, in order, or the call
// fails as a whole. Nothing is cached between documents.
type Embedder interface {
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}
