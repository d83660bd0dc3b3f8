package control_test

import (
	"context"

	"github.com/akishore/ComplyAPI/internal/control/vectordb"
)

// MockIndex implements vectordb.Index
type MockIndex struct {
	// Control fields to simulate different behaviors
	OnCreate func(ctx context.Context) (vectordb.Handle, error)
	OnAdd    func(ctx context.Context, h vectordb.Handle, ids []string, vectors [][]float32, documents []string) error
	OnQuery  func(ctx context.Context, h vectordb.Handle, vector []float32, k int) ([]vectordb.Match, error)
	OnPeek   func(ctx context.Context, h vectordb.Handle, limit int) ([]vectordb.Match, error)
	OnDelete func(ctx context.Context, h vectordb.Handle) error

	CreateCalls int
	DeleteCalls int
	Deleted     []vectordb.Handle
}

func (m *MockIndex) Create(ctx context.Context) (vectordb.Handle, error) {
	m.CreateCalls++
	if m.OnCreate != nil {
		return m.OnCreate(ctx)
	}
	return "mock-handle", nil
}

func (m *MockIndex) Add(ctx context.Context, h vectordb.Handle, ids []string, vectors [][]float32, documents []string) error {
	if m.OnAdd != nil {
		return m.OnAdd(ctx, h, ids, vectors, documents)
	}
	return nil
}

func (m *MockIndex) Query(ctx context.Context, h vectordb.Handle, vector []float32, k int) ([]vectordb.Match, error) {
	if m.OnQuery != nil {
		return m.OnQuery(ctx, h, vector, k)
	}
	return []vectordb.Match{{ID: "chunk-0", Text: "default evidence", Distance: 0.1}}, nil
}

func (m *MockIndex) Peek(ctx context.Context, h vectordb.Handle, limit int) ([]vectordb.Match, error) {
	if m.OnPeek != nil {
		return m.OnPeek(ctx, h, limit)
	}
	return nil, nil
}

func (m *MockIndex) Delete(ctx context.Context, h vectordb.Handle) error {
	m.DeleteCalls++
	m.Deleted = append(m.Deleted, h)
	if m.OnDelete != nil {
		return m.OnDelete(ctx, h)
	}
	return nil
}

// MockEmbedder implements embedding.Embedder
type MockEmbedder struct {
	OnEmbedQuery func(ctx context.Context, text string) ([]float32, error)
	OnEmbedBatch func(ctx context.Context, texts []string) ([][]float32, error)
}

func (m *MockEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	if m.OnEmbedQuery != nil {
		return m.OnEmbedQuery(ctx, text)
	}
	return []float32{0.1}, nil
}

func (m *MockEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if m.OnEmbedBatch != nil {
		return m.OnEmbedBatch(ctx, texts)
	}
	vectors := make([][]float32, len(texts))
	for i := range vectors {
		vectors[i] = []float32{0.1}
	}
	return vectors, nil
}

// MockProvider implements llm.Provider (evaluator and grader)
type MockProvider struct {
	OnEvaluate func(ctx context.Context, prompt string) (string, error)
	OnGrade    func(ctx context.Context, prompt string) (string, error)

	EvaluateCalls int
	GradeCalls    int
}

func (m *MockProvider) Evaluate(ctx context.Context, prompt string) (string, error) {
	m.EvaluateCalls++
	if m.OnEvaluate != nil {
		return m.OnEvaluate(ctx, prompt)
	}
	return "mocked evaluation", nil
}

func (m *MockProvider) Grade(ctx context.Context, prompt string) (string, error) {
	m.GradeCalls++
	if m.OnGrade != nil {
		return m.OnGrade(ctx, prompt)
	}
	return "3", nil
}

// MockHistory implements jobModel.RunHistoryStore
type MockHistory struct {
	OnAppendRun func(ctx context.Context, documentKey string, reportPath string) error

	Appended map[string][]string
}

func (m *MockHistory) AppendRun(ctx context.Context, documentKey string, reportPath string) error {
	if m.OnAppendRun != nil {
		return m.OnAppendRun(ctx, documentKey, reportPath)
	}
	if m.Appended == nil {
		m.Appended = make(map[string][]string)
	}
	m.Appended[documentKey] = append(m.Appended[documentKey], reportPath)
	return nil
}

func (m *MockHistory) GetRuns(ctx context.Context, documentKey string) ([]string, error) {
	return m.Appended[documentKey], nil
}
