package control_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/akishore/ComplyAPI/internal/config"
	"github.com/akishore/ComplyAPI/internal/control"
	"github.com/akishore/ComplyAPI/internal/control/category"
	"github.com/akishore/ComplyAPI/internal/control/consolidate"
	"github.com/akishore/ComplyAPI/internal/control/executor"
	"github.com/akishore/ComplyAPI/internal/control/grader"
	"github.com/akishore/ComplyAPI/internal/control/prompts"
	"github.com/akishore/ComplyAPI/internal/control/report"
	"github.com/akishore/ComplyAPI/internal/domain/jobModel"
	"github.com/akishore/ComplyAPI/pkg/logger_i"
)

func TestMain(m *testing.M) {
	logger_i.Init()
	os.Exit(m.Run())
}

type fixture struct {
	service control.Service
	index   *MockIndex
	model   *MockProvider
	history *MockHistory
	cfg     config.Pipeline
}

// newFixture builds a service around the mocks with a real prompt store,
// resolver, consolidator and reporter on temp directories.
func newFixture(t *testing.T, index *MockIndex, embedder *MockEmbedder, model *MockProvider) *fixture {
	t.Helper()

	cfg := config.PipelineFromEnv()
	cfg.PromptsDir = filepath.Join(t.TempDir(), "prompts")
	cfg.ReportsDir = filepath.Join(t.TempDir(), "reports")

	writeControl(t, cfg.PromptsDir, "KYC", "kyc_identity.json",
		`{"control_id":"KYC-01","description":"Verify identity evidence","meta_category":"KYC","prompt_instructions":["Check that identity documents are referenced"]}`)
	writeControl(t, cfg.PromptsDir, "KYC", "kyc_sanctions.json",
		`{"control_id":"KYC-02","description":"Verify sanctions screening","meta_category":"KYC","prompt_instructions":["Check for sanctions screening evidence"]}`)

	resolver, err := category.NewResolver(cfg)
	if err != nil {
		t.Fatalf("resolver setup failed: %v", err)
	}

	history := &MockHistory{}
	svc := control.NewService(
		index,
		embedder,
		executor.New(embedder, model, cfg),
		grader.New(model, cfg),
		resolver,
		prompts.NewStore(cfg.PromptsDir),
		consolidate.New(cfg),
		report.New(cfg),
		history,
		cfg,
	)
	return &fixture{service: svc, index: index, model: model, history: history, cfg: cfg}
}

func writeControl(t *testing.T, root, cat, name, content string) {
	t.Helper()
	dir := filepath.Join(root, cat)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

// writeDocument drops a document under a KYC directory so the resolver
// finds the category from the path.
func writeDocument(t *testing.T, name string, size int) string {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "KYC")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(strings.Repeat("customer identity record ", size/25+1)[:size]), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func runJob(f *fixture, targetPath string) jobModel.Job {
	ctx := context.WithValue(context.Background(), config.TRACE_ID_KEY, "test-trace")
	return f.service.RunControlChain(ctx, jobModel.Job{
		Id:      "test-job",
		JobType: jobModel.JobTypeControlRun,
		JobPayload: jobModel.JobPayload{
			TargetPath: targetPath,
		},
	})
}

func TestRunControlChain_EndToEnd(t *testing.T) {
	docPath := writeDocument(t, "onboarding.txt", 5000)

	index := &MockIndex{}
	f := newFixture(t, index, &MockEmbedder{}, &MockProvider{})

	result := runJob(f, docPath)

	if result.Status != jobModel.JobStatusComplete {
		t.Fatalf("Status got %v, want %v (error: %+v)", result.Status, jobModel.JobStatusComplete, result.Error)
	}
	if result.CurrentStep != jobModel.Complete {
		t.Errorf("Step got %v, want %v", result.CurrentStep, jobModel.Complete)
	}
	if result.JobPayload.Summary != "Tests Passed: 2 out of 2" {
		t.Errorf("Summary got %q, want %q", result.JobPayload.Summary, "Tests Passed: 2 out of 2")
	}

	if index.CreateCalls != 1 {
		t.Errorf("Create calls got %d, want 1", index.CreateCalls)
	}
	if index.DeleteCalls != 1 {
		t.Errorf("Delete calls got %d, want 1", index.DeleteCalls)
	}

	raw, err := os.ReadFile(result.JobPayload.ReportPath)
	if err != nil {
		t.Fatalf("report not readable: %v", err)
	}
	content := string(raw)
	for _, want := range []string{
		"--- Control Automation Report ---",
		"Tests Passed: 2 out of 2",
		"Control ID: KYC-01 (Global Risk Score: 3/10) [PASS]",
		"Control ID: KYC-02 (Global Risk Score: 3/10) [PASS]",
	} {
		if !strings.Contains(content, want) {
			t.Errorf("report missing %q", want)
		}
	}

	if len(f.history.Appended[docPath]) != 1 {
		t.Errorf("history entries got %d, want 1", len(f.history.Appended[docPath]))
	}
}

func TestRunControlChain_TeardownOnCategoryFailure(t *testing.T) {
	// no category in the path and no keyword match in content
	dir := t.TempDir()
	docPath := filepath.Join(dir, "menu.txt")
	if err := os.WriteFile(docPath, []byte("weekly cafeteria menu with soups and salads"), 0o644); err != nil {
		t.Fatal(err)
	}

	index := &MockIndex{}
	f := newFixture(t, index, &MockEmbedder{}, &MockProvider{})

	result := runJob(f, docPath)

	if result.Status != jobModel.JobStatusError {
		t.Fatalf("Status got %v, want %v", result.Status, jobModel.JobStatusError)
	}
	if result.Error.Message != "CATEGORY_RESOLUTION_FAILURE" {
		t.Errorf("Error message got %q, want CATEGORY_RESOLUTION_FAILURE", result.Error.Message)
	}

	// the collection must be torn down even though the chain died early
	if index.CreateCalls != 1 || index.DeleteCalls != 1 {
		t.Errorf("Create/Delete got %d/%d, want 1/1", index.CreateCalls, index.DeleteCalls)
	}

	if result.JobPayload.ReportPath == "" {
		t.Fatal("expected a failure report path")
	}
	if !strings.HasPrefix(filepath.Base(result.JobPayload.ReportPath), "FAILURE_report_") {
		t.Errorf("failure report name got %q", filepath.Base(result.JobPayload.ReportPath))
	}
}

func TestRunControlChain_ExtractionFailure(t *testing.T) {
	docPath := writeDocument(t, "image_scan.bmp", 100)

	index := &MockIndex{}
	f := newFixture(t, index, &MockEmbedder{}, &MockProvider{})

	result := runJob(f, docPath)

	if result.Status != jobModel.JobStatusError {
		t.Fatalf("Status got %v, want %v", result.Status, jobModel.JobStatusError)
	}
	if result.Error.Message != "EXTRACTION_FAILURE" {
		t.Errorf("Error message got %q, want EXTRACTION_FAILURE", result.Error.Message)
	}
	if index.CreateCalls != 0 {
		t.Errorf("no index should be created before extraction succeeds, got %d", index.CreateCalls)
	}
	if result.JobPayload.ReportPath == "" {
		t.Error("expected a failure report path")
	}
}

func TestRunControlChain_EmbeddingFailureTearsDown(t *testing.T) {
	docPath := writeDocument(t, "onboarding.txt", 1000)

	index := &MockIndex{}
	embedder := &MockEmbedder{
		OnEmbedBatch: func(ctx context.Context, texts []string) ([][]float32, error) {
			return nil, errors.New("api limit")
		},
	}
	f := newFixture(t, index, embedder, &MockProvider{})

	result := runJob(f, docPath)

	if result.Status != jobModel.JobStatusError {
		t.Fatalf("Status got %v, want %v", result.Status, jobModel.JobStatusError)
	}
	if result.Error.Message != "EMBEDDING_FAILURE" {
		t.Errorf("Error message got %q, want EMBEDDING_FAILURE", result.Error.Message)
	}
	if index.DeleteCalls != 1 {
		t.Errorf("Delete calls got %d, want 1", index.DeleteCalls)
	}
}

func TestRunControlChain_EvalFailureStillCompletes(t *testing.T) {
	docPath := writeDocument(t, "onboarding.txt", 1000)

	index := &MockIndex{}
	model := &MockProvider{
		OnEvaluate: func(ctx context.Context, prompt string) (string, error) {
			return "", errors.New("model down")
		},
	}
	f := newFixture(t, index, &MockEmbedder{}, model)

	result := runJob(f, docPath)

	// evaluation failures degrade to maximum-risk results, the run finishes
	if result.Status != jobModel.JobStatusComplete {
		t.Fatalf("Status got %v, want %v", result.Status, jobModel.JobStatusComplete)
	}
	if result.JobPayload.Summary != "Tests Passed: 0 out of 2" {
		t.Errorf("Summary got %q, want %q", result.JobPayload.Summary, "Tests Passed: 0 out of 2")
	}
	if model.GradeCalls != 0 {
		t.Errorf("failed evaluations must not be graded, got %d grade calls", model.GradeCalls)
	}
}

func TestRunControlChain_DirectoryTarget(t *testing.T) {
	base := t.TempDir()
	dir := filepath.Join(base, "KYC")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"a.txt", "b.txt"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(strings.Repeat("identity records ", 50)), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	index := &MockIndex{}
	f := newFixture(t, index, &MockEmbedder{}, &MockProvider{})

	result := runJob(f, dir)

	if result.Status != jobModel.JobStatusComplete {
		t.Fatalf("Status got %v, want %v (error: %+v)", result.Status, jobModel.JobStatusComplete, result.Error)
	}
	if len(result.JobPayload.ReportPaths) != 2 {
		t.Errorf("report paths got %d, want 2", len(result.JobPayload.ReportPaths))
	}
	if result.JobPayload.Summary != "Tests Passed: 4 out of 4" {
		t.Errorf("Summary got %q, want %q", result.JobPayload.Summary, "Tests Passed: 4 out of 4")
	}
	if index.CreateCalls != 2 || index.DeleteCalls != 2 {
		t.Errorf("Create/Delete got %d/%d, want 2/2", index.CreateCalls, index.DeleteCalls)
	}
}
