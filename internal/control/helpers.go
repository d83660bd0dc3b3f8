package control

import (
	"context"
	"net/http"
	"time"

	"github.com/akishore/ComplyAPI/internal/adapter/utils"
	"github.com/akishore/ComplyAPI/internal/control/chunk"
	"github.com/akishore/ComplyAPI/internal/control/extract"
	"github.com/akishore/ComplyAPI/internal/control/prompts"
	"github.com/akishore/ComplyAPI/internal/control/vectordb"
	"github.com/akishore/ComplyAPI/internal/domain/commonModels"
	"github.com/akishore/ComplyAPI/internal/domain/jobModel"
	"github.com/akishore/ComplyAPI/internal/metrics"
	"github.com/akishore/ComplyAPI/pkg/logger_i"
)

func logOutput(job jobModel.Job, status jobModel.InternalStatus, log *logger_i.Logger) jobModel.Job {
	job.CurrentStep = status
	log.Debug("RunControlChain", "Current Status", job.CurrentStep)
	return job
}

func (s *service) jobError(job jobModel.Job, err error, message string, canRetry bool) jobModel.Job {
	s.logger.Error(message, "error", err)

	job.Error = jobModel.JobError{
		Code:    http.StatusInternalServerError,
		Message: message,
		Retry:   canRetry,
	}
	job.Status = jobModel.JobStatusError
	job.EndTime = time.Now()
	return job
}

func (s *service) executeExtractionStep(ctx context.Context, log *logger_i.Logger, job *jobModel.Job, docPath string) (string, error) {
	*job = logOutput(*job, jobModel.Extraction, log)

	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("extraction", time.Since(start)) }()

	return extract.Text(docPath)
}

func (s *service) executeChunkingStep(log *logger_i.Logger, job *jobModel.Job, text string) []commonModels.TextChunk {
	*job = logOutput(*job, jobModel.Chunking, log)
	return chunk.Split(text, s.cfg.ChunkSize, s.cfg.ChunkOverlap)
}

func (s *service) executeEmbeddingStep(ctx context.Context, log *logger_i.Logger, job *jobModel.Job, chunks []commonModels.TextChunk) ([][]float32, error) {
	*job = logOutput(*job, jobModel.EmbeddingAPICall, log)

	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("embedding", time.Since(start)) }()

	texts := make([]string, 0, len(chunks))
	for _, c := range chunks {
		texts = append(texts, c.Text)
	}
	return s.embedder.EmbedBatch(ctx, texts)
}

func (s *service) executeIndexingStep(ctx context.Context, log *logger_i.Logger, job *jobModel.Job, h vectordb.Handle, chunks []commonModels.TextChunk, vectors [][]float32) ([]string, error) {
	*job = logOutput(*job, jobModel.VectorIndexing, log)

	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("vector_indexing", time.Since(start)) }()

	ids := make([]string, 0, len(chunks))
	texts := make([]string, 0, len(chunks))
	for _, c := range chunks {
		ids = append(ids, utils.GetNewUUID())
		texts = append(texts, c.Text)
	}
	if err := s.index.Add(ctx, h, ids, vectors, texts); err != nil {
		return nil, err
	}
	return ids, nil
}

func (s *service) executeCategoryStep(ctx context.Context, log *logger_i.Logger, job *jobModel.Job, docPath string, h vectordb.Handle) (string, error) {
	*job = logOutput(*job, jobModel.CategoryResolution, log)

	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("category_resolution", time.Since(start)) }()

	return s.resolver.Resolve(ctx, job.JobPayload.Category, docPath, s.index, h)
}

func (s *service) executeControlStep(ctx context.Context, log *logger_i.Logger, job *jobModel.Job, defs []commonModels.ControlDefinition, failures []prompts.LoadFailure, h vectordb.Handle, chunks []commonModels.TextChunk) []commonModels.ControlResult {
	*job = logOutput(*job, jobModel.ControlExecution, log)

	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("control_execution", time.Since(start)) }()

	return s.executor.Execute(ctx, defs, failures, s.index, h, chunks)
}

func (s *service) executeGradingStep(ctx context.Context, log *logger_i.Logger, job *jobModel.Job, results []commonModels.ControlResult) []commonModels.GradedResult {
	*job = logOutput(*job, jobModel.Grading, log)

	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("grading", time.Since(start)) }()

	return s.grader.GradeAll(ctx, results)
}

func (s *service) executeConsolidationStep(log *logger_i.Logger, job *jobModel.Job, graded []commonModels.GradedResult) ([]commonModels.ConsolidatedEntry, commonModels.Summary) {
	*job = logOutput(*job, jobModel.Consolidation, log)
	return s.consolidator.Consolidate(graded)
}

func (s *service) executeReportingStep(log *logger_i.Logger, job *jobModel.Job, docPath string, entries []commonModels.ConsolidatedEntry, summary commonModels.Summary) (string, error) {
	*job = logOutput(*job, jobModel.Reporting, log)

	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("reporting", time.Since(start)) }()

	return s.reporter.Write(docPath, entries, summary)
}
