package vectordb

import "context"

// Handle names one document's private index. Handles are minted fresh per
// document and never shared or reused across documents.
type Handle string

type Match struct {
	ID       string
	Text     string
	Distance float32
}

// Index is the per-document nearest-neighbour store. Lifecycle is strictly
// create -> add -> query/peek -> delete; the chain guarantees Delete runs on
// every exit path so collections never pile up across runs.
type Index interface {
	// Create provisions an empty collection under a fresh globally-unique name.
	Create(ctx context.Context) (Handle, error)

	// Add upserts ids[i] <-> vectors[i] <-> documents[i]. The three slices
	// must be the same length.
	Add(ctx context.Context, h Handle, ids []string, vectors [][]float32, documents []string) error

	// Query returns up to k matches ordered by ascending cosine distance.
	// Fewer than k entries in the index means all of them come back.
	Query(ctx context.Context, h Handle, vector []float32, k int) ([]Match, error)

	// Peek returns up to limit entries with no ranking guarantee beyond
	// being stable within one process run. Used for content-based category
	// detection only.
	Peek(ctx context.Context, h Handle, limit int) ([]Match, error)

	// Delete tears the collection down. Idempotent; callers log failures
	// and move on, a leaked collection wastes storage but corrupts nothing.
	Delete(ctx context.Context, h Handle) error
}
