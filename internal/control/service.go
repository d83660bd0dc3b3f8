package control

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/akishore/ComplyAPI/internal/config"
	"github.com/akishore/ComplyAPI/internal/control/category"
	"github.com/akishore/ComplyAPI/internal/control/consolidate"
	"github.com/akishore/ComplyAPI/internal/control/embedding"
	"github.com/akishore/ComplyAPI/internal/control/executor"
	"github.com/akishore/ComplyAPI/internal/control/extract"
	"github.com/akishore/ComplyAPI/internal/control/grader"
	"github.com/akishore/ComplyAPI/internal/control/prompts"
	"github.com/akishore/ComplyAPI/internal/control/report"
	"github.com/akishore/ComplyAPI/internal/control/vectordb"
	"github.com/akishore/ComplyAPI/internal/domain/commonModels"
	"github.com/akishore/ComplyAPI/internal/domain/jobModel"
	"github.com/akishore/ComplyAPI/internal/metrics"
	"github.com/akishore/ComplyAPI/pkg/logger_i"
)

// Service is the only thing the worker sees; the worker does not need to
// know about indexes, models or reports.
type Service interface {
	RunControlChain(ctx context.Context, job jobModel.Job) jobModel.Job
}

type service struct {
	index        vectordb.Index
	embedder     embedding.Embedder
	executor     *executor.Executor
	grader       *grader.Grader
	resolver     *category.Resolver
	prompts      *prompts.Store
	consolidator *consolidate.Consolidator
	reporter     *report.Reporter
	history      jobModel.RunHistoryStore
	cfg          config.Pipeline
	logger       *logger_i.Logger
}

// NewService wires the full control chain. history may be nil when run
// persistence is unavailable, the chain still completes.
func NewService(
	index vectordb.Index,
	embedder embedding.Embedder,
	exec *executor.Executor,
	grd *grader.Grader,
	resolver *category.Resolver,
	promptStore *prompts.Store,
	consolidator *consolidate.Consolidator,
	reporter *report.Reporter,
	history jobModel.RunHistoryStore,
	cfg config.Pipeline,
) Service {
	return &service{
		index:        index,
		embedder:     embedder,
		executor:     exec,
		grader:       grd,
		resolver:     resolver,
		prompts:      promptStore,
		consolidator: consolidator,
		reporter:     reporter,
		history:      history,
		cfg:          cfg,
		logger:       logger_i.NewLogger("Control Service :"),
	}
}

// RunControlChain processes one job. A file target runs the chain once;
// a directory target walks supported files and chains each of them.
func (s *service) RunControlChain(ctx context.Context, job jobModel.Job) jobModel.Job {
	start := time.Now()
	status := "success"
	defer func() { metrics.CaptureJobMetrics(status, time.Since(start)) }()

	chainCtx, cancel := context.WithTimeout(ctx, config.ChainTimeout)
	defer cancel()

	job.CurrentStep = jobModel.ControlRunInit
	target := job.JobPayload.TargetPath

	info, err := os.Stat(target)
	if err != nil {
		status = "error"
		return s.jobError(job, err, "TARGET_NOT_FOUND", false)
	}

	if info.IsDir() {
		job = s.runDirectory(chainCtx, job)
	} else {
		job = s.runDocument(chainCtx, job, target)
	}
	if job.Status == jobModel.JobStatusError {
		status = "error"
		return job
	}

	job.Status = jobModel.JobStatusComplete
	job.CurrentStep = jobModel.Complete
	job.EndTime = time.Now()
	return job
}

// runDirectory chains every supported file under the target directory.
// One bad document does not stop the others; the job fails only when no
// file could be processed at all.
func (s *service) runDirectory(ctx context.Context, job jobModel.Job) jobModel.Job {
	log := s.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY), "JobId", job.Id)

	var files []string
	err := filepath.WalkDir(job.JobPayload.TargetPath, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && extract.DocTypeOf(path) != commonModels.ERR {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return s.jobError(job, err, "TARGET_WALK_FAILURE", false)
	}
	if len(files) == 0 {
		return s.jobError(job, errors.New("no supported documents under "+job.JobPayload.TargetPath), "TARGET_EMPTY", false)
	}

	passed, total := 0, 0
	succeeded := 0
	for _, file := range files {
		sub := job
		sub.JobPayload.DocumentName = filepath.Base(file)
		sub = s.runDocument(ctx, sub, file)
		if sub.JobPayload.ReportPath != "" {
			job.JobPayload.ReportPaths = append(job.JobPayload.ReportPaths, sub.JobPayload.ReportPath)
		}
		if sub.Status != jobModel.JobStatusError {
			passed += sub.JobPayload.Passed
			total += sub.JobPayload.Total
			succeeded++
		} else {
			log.Warn("Document failed in directory run", "file", file)
		}
	}

	if succeeded == 0 {
		return s.jobError(job, errors.New("every document in the directory failed"), "DIRECTORY_RUN_FAILURE", true)
	}
	job.JobPayload.Passed = passed
	job.JobPayload.Total = total
	job.JobPayload.Summary = fmt.Sprintf("Tests Passed: %d out of %d", passed, total)
	if len(job.JobPayload.ReportPaths) > 0 {
		job.JobPayload.ReportPath = job.JobPayload.ReportPaths[len(job.JobPayload.ReportPaths)-1]
	}
	return job
}

// runDocument is the chain proper: extract, chunk, index, resolve,
// execute, grade, consolidate, report. The index collection is deleted on
// every exit path once it has been created.
func (s *service) runDocument(ctx context.Context, job jobModel.Job, docPath string) jobModel.Job {
	log := s.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY), "JobId", job.Id, "document", docPath)

	text, err := s.executeExtractionStep(ctx, log, &job, docPath)
	if err != nil {
		return s.failDocument(job, docPath, err, "EXTRACTION_FAILURE")
	}

	chunks := s.executeChunkingStep(log, &job, text)

	handle, err := s.index.Create(ctx)
	if err != nil {
		return s.failDocument(job, docPath, err, "INDEX_CREATE_FAILURE")
	}
	defer func() {
		if err := s.index.Delete(context.WithoutCancel(ctx), handle); err != nil {
			log.Error("Failed to delete index collection", "handle", handle, "error", err)
		}
	}()

	vectors, err := s.executeEmbeddingStep(ctx, log, &job, chunks)
	if err != nil {
		return s.failDocument(job, docPath, err, "EMBEDDING_FAILURE")
	}

	if _, err = s.executeIndexingStep(ctx, log, &job, handle, chunks, vectors); err != nil {
		return s.failDocument(job, docPath, err, "VECTOR_INDEXING_FAILURE")
	}

	cat, err := s.executeCategoryStep(ctx, log, &job, docPath, handle)
	if err != nil {
		return s.failDocument(job, docPath, err, "CATEGORY_RESOLUTION_FAILURE")
	}

	defs, loadFailures, err := s.prompts.List(cat)
	if err != nil {
		return s.failDocument(job, docPath, err, "CONTROL_LOAD_FAILURE")
	}

	results := s.executeControlStep(ctx, log, &job, defs, loadFailures, handle, chunks)
	graded := s.executeGradingStep(ctx, log, &job, results)
	entries, summary := s.executeConsolidationStep(log, &job, graded)

	reportPath, err := s.executeReportingStep(log, &job, docPath, entries, summary)
	if err != nil {
		return s.jobError(job, err, "REPORTING_FAILURE", true)
	}

	job.JobPayload.ReportPath = reportPath
	job.JobPayload.Passed = summary.Passed
	job.JobPayload.Total = summary.Total
	job.JobPayload.Summary = fmt.Sprintf("Tests Passed: %d out of %d", summary.Passed, summary.Total)

	s.appendHistory(ctx, log, docPath, reportPath)
	return job
}

// failDocument writes the failure report, records it in the run history
// and marks the job failed. Report write errors are logged, the original
// failure is what the job carries.
func (s *service) failDocument(job jobModel.Job, docPath string, cause error, code string) jobModel.Job {
	reportPath, err := s.reporter.WriteFailure(docPath, cause.Error())
	if err != nil {
		s.logger.Error("Failed to write failure report", "document", docPath, "error", err)
	} else {
		job.JobPayload.ReportPath = reportPath
		s.appendHistory(context.Background(), s.logger, docPath, reportPath)
	}
	return s.jobError(job, cause, code, true)
}

func (s *service) appendHistory(ctx context.Context, log *logger_i.Logger, docPath string, reportPath string) {
	if s.history == nil {
		return
	}
	if err := s.history.AppendRun(ctx, docPath, reportPath); err != nil {
		log.Warn("Failed to append run history", "document", docPath, "error", err)
	}
}
