package memoryDB

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/akishore/ComplyAPI/internal/adapter/utils"
	"github.com/akishore/ComplyAPI/internal/control/vectordb"
	"github.com/akishore/ComplyAPI/pkg/logger_i"
)

// Store is a brute-force cosine index kept in process memory. It backs
// tests and degraded mode when Qdrant is unreachable; collections live
// under the same handle lifecycle as the real backend.
type Store struct {
	mu          sync.RWMutex
	collections map[vectordb.Handle]*collection
	logger      *logger_i.Logger
}

type collection struct {
	ids     []string
	vectors [][]float32
	texts   []string
}

func NewStore() *Store {
	return &Store{
		collections: make(map[vectordb.Handle]*collection),
		logger:      logger_i.NewLogger("InMem VectorIndex"),
	}
}

func (s *Store) Create(ctx context.Context) (vectordb.Handle, error) {
	h := vectordb.Handle("doc-" + utils.GetNewUUID())
	s.mu.Lock()
	defer s.mu.Unlock()
	s.collections[h] = &collection{}
	return h, nil
}

func (s *Store) Add(ctx context.Context, h vectordb.Handle, ids []string, vectors [][]float32, documents []string) error {
	if len(ids) != len(vectors) || len(ids) != len(documents) {
		return fmt.Errorf("mismatch: %d ids, %d vectors, %d documents", len(ids), len(vectors), len(documents))
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.collections[h]
	if !ok {
		return errors.New("unknown collection handle")
	}
	c.ids = append(c.ids, ids...)
	c.vectors = append(c.vectors, vectors...)
	c.texts = append(c.texts, documents...)
	return nil
}

func (s *Store) Query(ctx context.Context, h vectordb.Handle, vector []float32, k int) ([]vectordb.Match, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.collections[h]
	if !ok {
		return nil, errors.New("unknown collection handle")
	}

	matches := make([]vectordb.Match, 0, len(c.ids))
	for i := range c.ids {
		matches = append(matches, vectordb.Match{
			ID:       c.ids[i],
			Text:     c.texts[i],
			Distance: cosineDistance(vector, c.vectors[i]),
		})
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Distance < matches[j].Distance
	})

	if k < len(matches) {
		matches = matches[:k]
	}
	return matches, nil
}

func (s *Store) Peek(ctx context.Context, h vectordb.Handle, limit int) ([]vectordb.Match, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.collections[h]
	if !ok {
		return nil, errors.New("unknown collection handle")
	}

	n := len(c.ids)
	if limit < n {
		n = limit
	}
	matches := make([]vectordb.Match, 0, n)
	for i := 0; i < n; i++ { //insertion order, stable within a run
		matches = append(matches, vectordb.Match{ID: c.ids[i], Text: c.texts[i]})
	}
	return matches, nil
}

func (s *Store) Delete(ctx context.Context, h vectordb.Handle) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.collections, h)
	return nil
}

func cosineDistance(a, b []float32) float32 {
	var dot, normA, normB float64
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 1
	}
	return float32(1 - dot/(math.Sqrt(normA)*math.Sqrt(normB)))
}
