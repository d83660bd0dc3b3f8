package handlers

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/akishore/ComplyAPI/internal/api"
	"github.com/akishore/ComplyAPI/internal/config"
	"github.com/akishore/ComplyAPI/internal/control/prompts"
	"github.com/akishore/ComplyAPI/internal/domain/jobModel"
	"github.com/akishore/ComplyAPI/internal/job"
	"github.com/akishore/ComplyAPI/internal/metrics"
	"github.com/akishore/ComplyAPI/pkg/logger_i"
)

var (
	handlerInstance *JobHandler //private singleton
	once            sync.Once
	logJH           *logger_i.Logger
)

type JobHandler struct {
	service     *job.Service
	pipeline    config.Pipeline
	promptStore *prompts.Store
}

func InitJobHandler(jobService *job.Service, pipeline config.Pipeline, promptStore *prompts.Store) {
	once.Do(func() {
		handlerInstance = &JobHandler{
			service:     jobService,
			pipeline:    pipeline,
			promptStore: promptStore,
		}

		logJH = logger_i.NewLogger("JobHandler")
		logRH = logger_i.NewLogger("RequestHandler")
		logJH.Info("Starting job handler")
	})

}

func CreateNewJob(newJob newJobData) {
	logJH.With("traceId", newJob.traceId, "job id", newJob.id)
	logJH.Info("To create new control run job")
	handlerInstance.pushToJobChannel(newJob)
}

func GetJobStatus(id string, traceId string) (result jobModel.Job, isFound bool) {
	ctxC := context.WithValue(context.Background(), config.TRACE_ID_KEY, traceId)
	if handlerInstance != nil {
		return handlerInstance.service.JobStore.GetJob(ctxC, id)
	}
	return result, false
}

// ValidateControlRunRequest resolves the requested target against the
// configured document base directory and rejects anything that escapes
// it or does not exist. Returns the absolute target path on success.
func ValidateControlRunRequest(req api.ControlRunRequest) (string, bool) {
	if handlerInstance == nil {
		return "", false
	}
	if req.TargetPath == "" {
		return "", false
	}

	if req.Category != "" && !handlerInstance.isKnownCategory(req.Category) {
		logJH.Warn("Unknown category in run request", "category", req.Category)
		return "", false
	}

	target, ok := handlerInstance.resolveTargetPath(req.TargetPath)
	if !ok {
		return "", false
	}
	if _, err := os.Stat(target); err != nil {
		logJH.Warn("Run target does not exist", "target", target, "err", err)
		return "", false
	}
	return target, true
}

func (h *JobHandler) isKnownCategory(category string) bool {
	for _, known := range h.pipeline.KnownCategories {
		if strings.EqualFold(known, category) {
			return true
		}
	}
	return false
}

// resolveTargetPath confines relative targets to the document base
// directory so a request cannot point the chain at arbitrary files.
func (h *JobHandler) resolveTargetPath(target string) (string, bool) {
	base, err := filepath.Abs(h.pipeline.TargetBaseDir)
	if err != nil {
		return "", false
	}

	resolved := target
	if !filepath.IsAbs(resolved) {
		resolved = filepath.Join(base, resolved)
	}
	resolved = filepath.Clean(resolved)

	if resolved != base && !strings.HasPrefix(resolved, base+string(os.PathSeparator)) {
		logJH.Warn("Run target escapes base directory", "target", target)
		return "", false
	}
	return resolved, true
}

// private methods
func (h *JobHandler) pushToJobChannel(newJob newJobData) {

	_job := jobModel.Job{}
	_job.Id = newJob.id
	_job.CreatedTime = time.Now()
	_job.TraceId = newJob.traceId
	_job.Status = jobModel.JobStatusQueued
	_job.JobType = jobModel.JobTypeControlRun
	_job.CurrentStep = jobModel.ControlRunInit
	_job.JobPayload.TargetPath = newJob.targetPath
	_job.JobPayload.DocumentName = newJob.documentName
	_job.JobPayload.Category = newJob.category

	//metrics
	metrics.IncrementJobsInQueue()

	h.service.JobChannel <- _job //this is a blocking send to prevent the system from being overwhelmed
	logJH.Info("Created new job")

	//we will start a new worker every 10 requests - can also be configured
	// or
	//for performance - a new worker is added for a directory target job
	//a directory chain runs every document under it which might take time
	//worker will be removed if it has idle time - so it should be ok
	//this also allows us to only keep 1 worker running at most times therefore cutting resource spend

	accurateCount := atomic.AddInt64(&h.service.RequestCount, 1) //after sending a request increment counter
	if accurateCount%config.RequestsPerNewWorkerCount == 0 || newJob.isDirectory {
		metrics.StartDispatcherSignalCount() //metrics
		logJH.Debug("Worker count ", accurateCount)
		h.service.DispatcherChannel <- true
	}
}
