package api

import "time"

type JobExternalStatus string

const (
	JobStatusError JobExternalStatus = "Error"
)

type JobResponse struct {
	Id        string            `json:"id" example:"job_cz109"`
	Result    Result            `json:"result"`
	Error     *JobOutgoingError `json:"error,omitempty"`
	StartTime time.Time         `json:"start_time"`
	EndTime   time.Time         `json:"end_time,omitempty"`
}

type JobOutgoingError struct {
	Code    int    `json:"code" example:"400"`
	Message string `json:"message" example:"Job not found"`
	Retry   bool   `json:"can_retry" example:"false"`
}

type ControlRunResult struct {
	ReportPath  string   `json:"report_path,omitempty"`
	ReportPaths []string `json:"report_paths,omitempty"`
	Summary     string   `json:"summary,omitempty"`
	Passed      int      `json:"passed"`
	Total       int      `json:"total"`
}

type Result struct {
	Status     string            `json:"status"`
	ControlRun *ControlRunResult `json:"control_run,omitempty"`
}

type InitJobResponse struct {
	Id        string `json:"id"`
	StatusURL string `json:"status_url"`
}

type ReportContentResponse struct {
	Path    string `json:"path"`
	Content string `json:"content"`
}

type RunHistoryResponse struct {
	Document string   `json:"document"`
	Reports  []string `json:"reports"`
}

// requests---------------------

type ControlRunRequest struct {
	TargetPath string `json:"target_path" validate:"required"`
	Category   string `json:"category,omitempty"`
}

type JobStatusRequest struct {
	JobId string `json:"job_id" validate:"required"`
}
