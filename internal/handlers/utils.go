package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/akishore/ComplyAPI/internal/adapter"
	"github.com/akishore/ComplyAPI/internal/adapter/utils"
	"github.com/akishore/ComplyAPI/internal/config"
	"github.com/akishore/ComplyAPI/internal/domain/jobModel"
)

func writeJsonResponse(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		// Log the error but can't send a clean status code now
		logRH.Error("Error encoding response: %v", err)
	}
}

func validateId(id string, traceId string) (result jobModel.Job, isFound bool) {
	if id == "" {
		logRH.Warn("Empty Job ID")
		return jobModel.Job{}, false
	}
	return GetJobStatus(id, traceId)
}

func validateContext(ctx context.Context) bool {
	logRH.With("traceId:", ctx.Value(config.TRACE_ID_KEY).(string))
	if ctx.Err() != nil {
		logRH.Warn("context error", ctx.Err())
		return false
	}

	select {
	case <-ctx.Done():
		logRH.Warn("context cancelled")
		return false
	default:
		return true

	}
}

func WriteErrorResponse(w http.ResponseWriter, httpCode int, id string, error string) {
	writeJsonResponse(w, httpCode, adapter.BadRequest(id, error, httpCode))
}

// getTargetDirectory returns the upload landing directory. Uploads land
// inside the document base directory so a later run request can reach
// them through the same path confinement rules.
func getTargetDirectory() (string, string) {
	if handlerInstance == nil {
		return "", "Storage Error"
	}
	base, err := filepath.Abs(handlerInstance.pipeline.TargetBaseDir)
	if err != nil {
		return "", "Storage Error"
	}

	targetDir := filepath.Join(base, "uploads")
	if err := os.MkdirAll(targetDir, 0750); err != nil {
		return "", "Storage Error"
	}
	return targetDir, ""
}

// resolveReportPath confines a requested report path to the reports
// directory. Mirrors the target path confinement on the run side so the
// content endpoint cannot be used to read arbitrary files.
func resolveReportPath(reportPath string) (string, bool) {
	if handlerInstance == nil {
		return "", false
	}
	base, err := filepath.Abs(handlerInstance.pipeline.ReportsDir)
	if err != nil {
		return "", false
	}

	resolved := reportPath
	if !filepath.IsAbs(resolved) {
		resolved = filepath.Join(base, resolved)
	}
	resolved = filepath.Clean(resolved)

	if !strings.HasPrefix(resolved, base+string(os.PathSeparator)) {
		return "", false
	}
	return resolved, true
}

func processNewJobData(request *http.Request, w http.ResponseWriter, targetPath string, category string) {
	info, err := os.Stat(targetPath)
	if err != nil {
		WriteErrorResponse(w, http.StatusBadRequest, "", "Target not found")
		return
	}

	newJob := newJobData{
		id:           utils.GetNewUUID(),
		targetPath:   targetPath,
		documentName: filepath.Base(targetPath),
		category:     category,
		traceId:      request.Context().Value(config.TRACE_ID_KEY).(string),
		isDirectory:  info.IsDir(),
	}
	CreateNewJob(newJob)
	res := adapter.ToInitJobResponse(newJob.id)
	writeJsonResponse(w, http.StatusAccepted, res)

}
