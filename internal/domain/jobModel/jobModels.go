package jobModel

import (
	"context"
	"time"
)

type JobStatus string
type InternalStatus string

type JobType string

const (
	JobStatusQueued   JobStatus = "QUEUED"
	JobStatusRunning  JobStatus = "RUNNING"
	JobStatusComplete JobStatus = "COMPLETE"
	JobStatusError    JobStatus = "Error"

	ControlRunInit     InternalStatus = "Init"
	Extraction         InternalStatus = "Extraction"
	Chunking           InternalStatus = "Chunking"
	EmbeddingAPICall   InternalStatus = "EmbeddingAPI"
	VectorIndexing     InternalStatus = "VectorIndexing"
	CategoryResolution InternalStatus = "CategoryResolution"
	ControlExecution   InternalStatus = "ControlExecution"
	Grading            InternalStatus = "Grading"
	Consolidation      InternalStatus = "Consolidation"
	Reporting          InternalStatus = "Reporting"
	Error              InternalStatus = "Error"

	Complete InternalStatus = "Complete"

	JobTypeControlRun JobType = "ControlRun"
)

type Job struct {
	Id          string         `json:"id"`
	TraceId     string         `json:"trace_id"`
	JobType     JobType        `json:"job_type"`
	JobPayload  JobPayload     `json:"job_payload"`
	Error       JobError       `json:"error,omitempty"`
	CreatedTime time.Time      `json:"created_time"`
	EndTime     time.Time      `json:"end_time,omitempty"`
	Status      JobStatus      `json:"status"`
	CurrentStep InternalStatus `json:"current_step"`
}

type JobError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Retry   bool   `json:"retry"`
}

type JobPayload struct {
	TargetPath   string `json:"target_path,omitempty"`
	DocumentName string `json:"document_name,omitempty"`
	Category     string `json:"category,omitempty"` //explicit meta-category, empty means infer

	//outcome
	ReportPath  string   `json:"report_path,omitempty"`
	ReportPaths []string `json:"report_paths,omitempty"` //directory targets produce one report per file
	Summary     string   `json:"summary,omitempty"`
	Passed      int      `json:"passed,omitempty"`
	Total       int      `json:"total,omitempty"`
}

type JobStore interface {
	GetJob(ctx context.Context, jobId string) (Job, bool)
	SaveJob(ctx context.Context, job Job) error
	DeleteJob(ctx context.Context, jobID string)
}

// RunHistoryStore keeps the trail of report paths produced for a document.
type RunHistoryStore interface {
	AppendRun(ctx context.Context, documentKey string, reportPath string) error
	GetRuns(ctx context.Context, documentKey string) ([]string, error)
}
