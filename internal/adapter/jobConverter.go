package adapter

import (
	"fmt"
	"time"

	"github.com/akishore/ComplyAPI/internal/api"
	"github.com/akishore/ComplyAPI/internal/domain/jobModel"
)

func ToInitJobResponse(id string) api.InitJobResponse {
	return api.InitJobResponse{
		Id:        id,
		StatusURL: fmt.Sprintf("status/%s", id),
	}
}

func ToAPIResponse(job jobModel.Job) api.JobResponse {

	var errorPtr *api.JobOutgoingError
	if job.Error.Message != "" || job.Error.Code != 0 {
		errorPtr = &api.JobOutgoingError{
			Code:    job.Error.Code,
			Message: job.Error.Message,
			Retry:   job.Error.Retry,
		}
	}

	result := api.Result{
		Status:     string(job.Status),
		ControlRun: ToControlRunResult(job.JobPayload),
	}

	return api.JobResponse{
		Id:        job.Id,
		StartTime: job.CreatedTime,
		EndTime:   job.EndTime,
		Error:     errorPtr,
		Result:    result,
	}
}

func ToControlRunResult(payload jobModel.JobPayload) *api.ControlRunResult {
	if payload.ReportPath == "" && len(payload.ReportPaths) == 0 && payload.Summary == "" {
		return nil
	}

	return &api.ControlRunResult{
		ReportPath:  payload.ReportPath,
		ReportPaths: payload.ReportPaths,
		Summary:     payload.Summary,
		Passed:      payload.Passed,
		Total:       payload.Total,
	}
}

func BadRequest(id string, error string, code int) api.JobResponse {
	return api.JobResponse{
		Id:        id,
		StartTime: time.Time{},
		EndTime:   time.Time{},
		Result: api.Result{
			Status: string(api.JobStatusError),
		},
		Error: &api.JobOutgoingError{
			Code:    code,
			Message: error,
			Retry:   false,
		},
	}
}
