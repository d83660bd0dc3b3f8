package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/akishore/ComplyAPI/internal/adapter"
	"github.com/akishore/ComplyAPI/internal/adapter/utils"
	"github.com/akishore/ComplyAPI/internal/api"
	"github.com/akishore/ComplyAPI/internal/config"
	"github.com/akishore/ComplyAPI/pkg/logger_i"
)

var logRH *logger_i.Logger

// technically i dont need this
// but i want to eventually remove jobHandler from handlers and set it in another package
// so in anticipation for that this struct exists
type newJobData struct {
	id           string
	targetPath   string
	documentName string
	category     string
	traceId      string
	isDirectory  bool
}

func GetHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	return
}

// PostControlRunHandler godoc
// @Summary      Start a control run
// @Description  Accepts a target document or directory, initializes a background control chain job, and returns a job ID to track status.
// @Tags         Controls
// @Accept       json
// @Produce      json
// @Param        request  body      api.ControlRunRequest  true  "Target path and optional explicit category"
// @Success      202      {object}  api.InitJobResponse    "Job successfully created"
// @Failure      400      {object}  api.JobResponse        "Invalid request data or unknown target"
// @Router       /controls/run [post]
func PostControlRunHandler(w http.ResponseWriter, request *http.Request) {

	if validateContext(request.Context()) {

		var requestData api.ControlRunRequest
		defer func(Body io.ReadCloser) {
			err := Body.Close()
			if err != nil {
				logRH.Error("Couldn't close the control run handler reader :", err)
			}
		}(request.Body)
		if err := json.NewDecoder(request.Body).Decode(&requestData); err != nil {
			logRH.Warn("Bad Control Run Request: ", "error:", err)
			WriteErrorResponse(w, http.StatusBadRequest, "", "Bad Request")
			return
		}

		target, ok := ValidateControlRunRequest(requestData)
		if !ok {
			logRH.Warn("Bad Control Run Request: ", "request data:", requestData)
			WriteErrorResponse(w, http.StatusBadRequest, "", "Bad Request")
			return
		}

		processNewJobData(request, w, target, requestData.Category)
		return
	}
	logRH.Warn("Invalid Context by request ", request.RemoteAddr)
}

// GetStatusHandler godoc
// @Summary      Get job status
// @Description  Retrieves the current status of a specific job using its ID.
// @Tags         Job Status
// @Accept       json
// @Produce      json
// @Param        id   path      string  true  "Job ID "
// @Success      200  {object}  api.JobResponse   "Successful retrieval of job status"
// @Failure      404  {object}  api.JobResponse   "Job not found (returns Error object within JobResponse)"
// @Router       /status/{id} [get]
func GetStatusHandler(w http.ResponseWriter, r *http.Request) {
	if validateContext(r.Context()) {
		//use chi get the url id
		idString := utils.GetChiURLParam(r, "id")
		result, isFound := validateId(idString, r.Context().Value(config.TRACE_ID_KEY).(string))

		logRH.Debug("Get Status Request:", "URL path", r.URL.Path)
		if !isFound {
			WriteErrorResponse(w, http.StatusNotFound, idString, "Job not found")
			return
		}

		writeJsonResponse(w, http.StatusOK, adapter.ToAPIResponse(result))
	}
}

// PostUploadHandler handles the uploading of documents for a control run.
// @Summary      Upload a document and run controls on it
// @Description  Receives a file via multipart/form-data, saves it under the document base directory, and queues a control run job.
// @Tags         Controls
// @Accept       multipart/form-data
// @Produce      json
// @Param        document_name  formData  string  true   "The display name of the document"
// @Param        category       formData  string  false  "Explicit compliance category, inferred when omitted"
// @Param        document       formData  file    true   "The PDF, DOCX, XLSX or TXT file to upload"
// @Success      202  {object}  api.InitJobResponse "Accepted - returns job id"
// @Failure      400  {object}  api.JobResponse "Bad Request - Missing fields or file too large"
// @Failure      500  {object}  api.JobResponse "Internal Server Error - Storage or Write Error"
// @Router       /controls/upload [post]
func PostUploadHandler(w http.ResponseWriter, r *http.Request) {
	if validateContext(r.Context()) {

		targetDir, errString := getTargetDirectory()

		if errString != "" {
			logRH.Error("Couldn't get target directory :", "err", errString)
			WriteErrorResponse(w, http.StatusInternalServerError, "", errString)
			return
		}

		const maxUploadSize = 32 << 20 //32mb
		err := r.ParseMultipartForm(maxUploadSize)
		if err != nil {
			WriteErrorResponse(w, http.StatusBadRequest, "", "File too large or bad request")
			return
		}

		//process request
		docName := r.FormValue("document_name")
		if docName == "" {
			WriteErrorResponse(w, http.StatusBadRequest, "", "document_name is required")
			return
		}
		category := r.FormValue("category")
		if category != "" && (handlerInstance == nil || !handlerInstance.isKnownCategory(category)) {
			WriteErrorResponse(w, http.StatusBadRequest, docName, "Unknown category")
			return
		}

		//get the document name the user uploads
		fileReader, fileMetadata, err := r.FormFile("document")
		if err != nil {
			WriteErrorResponse(w, http.StatusBadRequest, docName, "Could not retrieve file")
			return
		}
		defer fileReader.Close()

		filename := fmt.Sprintf("%d-%s", time.Now().UnixNano(), filepath.Base(fileMetadata.Filename))
		tempFilePath := filepath.Join(targetDir, filename)
		destinationFileWriter, err := os.Create(tempFilePath)
		if err != nil {
			WriteErrorResponse(w, http.StatusInternalServerError, docName, "Storage error")
			return
		}
		defer destinationFileWriter.Close()

		if _, err := io.Copy(destinationFileWriter, fileReader); err != nil {
			WriteErrorResponse(w, http.StatusInternalServerError, docName, "Write error")
			return
		}
		processNewJobData(r, w, tempFilePath, category)
		return
	}
	logRH.Warn("Invalid Context by request ", r.RemoteAddr)
}

// GetReportContentHandler godoc
// @Summary      Read a generated report
// @Description  Returns the text content of a report file previously produced by a control run. The path is confined to the reports directory.
// @Tags         Reports
// @Produce      json
// @Param        path  query     string  true  "Report file path as returned in the job result"
// @Success      200   {object}  api.ReportContentResponse
// @Failure      400   {object}  api.JobResponse "Path missing or outside the reports directory"
// @Failure      404   {object}  api.JobResponse "Report not found"
// @Router       /reports/content [get]
func GetReportContentHandler(w http.ResponseWriter, r *http.Request) {
	if validateContext(r.Context()) {
		reportPath := r.URL.Query().Get("path")
		if reportPath == "" {
			WriteErrorResponse(w, http.StatusBadRequest, "", "path is required")
			return
		}

		safePath, ok := resolveReportPath(reportPath)
		if !ok {
			logRH.Warn("Report path escapes reports directory", "path", reportPath)
			WriteErrorResponse(w, http.StatusBadRequest, "", "Invalid report path")
			return
		}

		content, err := os.ReadFile(safePath)
		if err != nil {
			WriteErrorResponse(w, http.StatusNotFound, "", "Report not found")
			return
		}

		writeJsonResponse(w, http.StatusOK, api.ReportContentResponse{
			Path:    reportPath,
			Content: string(content),
		})
	}
}

// GetPromptsHandler godoc
// @Summary      List control definitions
// @Description  Returns every loadable control definition grouped by compliance category.
// @Tags         Controls
// @Produce      json
// @Success      200  {object}  map[string][]commonModels.ControlDefinition
// @Failure      500  {object}  api.JobResponse "Prompt directory could not be read"
// @Router       /prompts [get]
func GetPromptsHandler(w http.ResponseWriter, r *http.Request) {
	if validateContext(r.Context()) {
		if handlerInstance == nil {
			WriteErrorResponse(w, http.StatusInternalServerError, "", "Service not initialized")
			return
		}

		all, err := handlerInstance.promptStore.ListAll()
		if err != nil {
			logRH.Error("Couldn't list control definitions :", "err", err)
			WriteErrorResponse(w, http.StatusInternalServerError, "", "Could not read control definitions")
			return
		}
		writeJsonResponse(w, http.StatusOK, all)
	}
}

// GetRunHistoryHandler godoc
// @Summary      List past reports for a document
// @Description  Returns the report paths recorded for a document across previous control runs.
// @Tags         Reports
// @Produce      json
// @Param        document  query     string  true  "Document name as shown in job results"
// @Success      200  {object}  api.RunHistoryResponse
// @Failure      400  {object}  api.JobResponse "Document missing"
// @Router       /reports/history [get]
func GetRunHistoryHandler(w http.ResponseWriter, r *http.Request) {
	if validateContext(r.Context()) {
		document := r.URL.Query().Get("document")
		if document == "" {
			WriteErrorResponse(w, http.StatusBadRequest, "", "document is required")
			return
		}
		if handlerInstance == nil || handlerInstance.service.RunHistoryStore == nil {
			WriteErrorResponse(w, http.StatusInternalServerError, "", "Service not initialized")
			return
		}

		runs, err := handlerInstance.service.RunHistoryStore.GetRuns(r.Context(), document)
		if err != nil {
			logRH.Error("Couldn't read run history :", "err", err)
			WriteErrorResponse(w, http.StatusInternalServerError, "", "Could not read run history")
			return
		}
		writeJsonResponse(w, http.StatusOK, api.RunHistoryResponse{
			Document: document,
			Reports:  runs,
		})
	}
}
