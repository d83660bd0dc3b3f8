package mcpserver

import (
	"context"
	"errors"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/akishore/ComplyAPI/internal/adapter/utils"
	"github.com/akishore/ComplyAPI/internal/control"
	"github.com/akishore/ComplyAPI/internal/control/prompts"
	"github.com/akishore/ComplyAPI/internal/domain/commonModels"
	"github.com/akishore/ComplyAPI/internal/domain/jobModel"
	"github.com/akishore/ComplyAPI/pkg/logger_i"
)

// Version is the MCP server version.
const Version = "0.1.0"

// Server exposes the control chain as MCP tools over stdio so an agent
// can run compliance checks without going through the HTTP surface.
type Server struct {
	controls control.Service
	prompts  *prompts.Store
	server   *mcp.Server
	logger   *logger_i.Logger
}

func NewServer(controls control.Service, promptStore *prompts.Store) (*Server, error) {
	if controls == nil || promptStore == nil {
		return nil, errors.New("control service and prompt store are required")
	}

	impl := &mcp.Implementation{
		Name:    "complyapi",
		Version: Version,
	}

	s := &Server{
		controls: controls,
		prompts:  promptStore,
		server:   mcp.NewServer(impl, nil),
		logger:   logger_i.NewLogger("MCP Server"),
	}

	s.registerTools()

	return s, nil
}

// Run starts the MCP server over stdio.
// It blocks until the context is cancelled or an error occurs.
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

// RunControlsInput is the input schema for the run_controls tool.
type RunControlsInput struct {
	TargetPath string `json:"target_path" jsonschema:"path to the document or directory to run controls on"`
	Category   string `json:"category,omitempty" jsonschema:"explicit compliance category, inferred when omitted"`
}

// RunControlsOutput is the output schema for the run_controls tool.
type RunControlsOutput struct {
	Status      string   `json:"status"`
	Summary     string   `json:"summary,omitempty"`
	Passed      int      `json:"passed"`
	Total       int      `json:"total"`
	ReportPath  string   `json:"report_path,omitempty"`
	ReportPaths []string `json:"report_paths,omitempty"`
	Error       string   `json:"error,omitempty"`
}

// ListPromptsOutput is the output schema for the list_prompts tool.
type ListPromptsOutput struct {
	Categories map[string][]commonModels.ControlDefinition `json:"categories"`
}

func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "run_controls",
		Description: "Run the compliance control chain on a document or directory and return the consolidated outcome",
	}, s.handleRunControls)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_prompts",
		Description: "List every loadable control definition grouped by compliance category",
	}, s.handleListPrompts)
}

// handleRunControls runs the chain synchronously. MCP callers wait for
// the outcome, there is no job queue on this surface.
func (s *Server) handleRunControls(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input RunControlsInput,
) (*mcp.CallToolResult, RunControlsOutput, error) {
	if input.TargetPath == "" {
		return nil, RunControlsOutput{}, errors.New("target_path is required")
	}

	job := jobModel.Job{
		Id:          utils.GetNewUUID(),
		TraceId:     utils.GetNewUUID(),
		JobType:     jobModel.JobTypeControlRun,
		CreatedTime: time.Now(),
		Status:      jobModel.JobStatusRunning,
		CurrentStep: jobModel.ControlRunInit,
	}
	job.JobPayload.TargetPath = input.TargetPath
	job.JobPayload.Category = input.Category

	s.logger.Info("Running controls via MCP", "target", input.TargetPath)
	job = s.controls.RunControlChain(ctx, job)

	output := RunControlsOutput{
		Status:      string(job.Status),
		Summary:     job.JobPayload.Summary,
		Passed:      job.JobPayload.Passed,
		Total:       job.JobPayload.Total,
		ReportPath:  job.JobPayload.ReportPath,
		ReportPaths: job.JobPayload.ReportPaths,
	}
	if job.Status == jobModel.JobStatusError {
		output.Error = job.Error.Message
	}

	return nil, output, nil
}

func (s *Server) handleListPrompts(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ struct{},
) (*mcp.CallToolResult, ListPromptsOutput, error) {
	all, err := s.prompts.ListAll()
	if err != nil {
		return nil, ListPromptsOutput{}, err
	}
	return nil, ListPromptsOutput{Categories: all}, nil
}
