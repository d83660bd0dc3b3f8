package commonModels

import "time"

type Document struct {
	Id               string    `json:"source_doc_id"`
	Name             string    `json:"doc_name"`
	Path             string    `json:"doc_path"`
	ContentType      DocType   `json:"contentType"`
	LastRunTimestamp time.Time `json:"last_run_at"`
}

type DocType string

var (
	PDF  DocType = "PDF"
	DOCX DocType = "DOCX"
	XLSX DocType = "XLSX"
	TXT  DocType = "TXT"
	ERR  DocType = "ERROR"
)

// TextChunk is one fixed-size window of the extracted document text.
// Immutable once produced by the chunker; Index and StartOffset are the
// provenance keys used by the executor and the report.
type TextChunk struct {
	Index       int    `json:"index"`
	StartOffset int    `json:"start_offset"`
	Text        string `json:"text"`
}

// ControlDefinition mirrors the prompt JSON files on disk.
type ControlDefinition struct {
	ControlID            string   `json:"control_id"`
	Description          string   `json:"description"`
	MetaCategory         string   `json:"meta_category"`
	Instructions         []string `json:"prompt_instructions"`
	ExpectedOutputFormat string   `json:"expected_output_format"`
}

type ProvenanceKind string

const (
	// ProvenanceRetrieved: chunk came back from a vector index query.
	ProvenanceRetrieved ProvenanceKind = "retrieved"
	// ProvenanceSequential: chunk visited in document order (exhaustive mode).
	ProvenanceSequential ProvenanceKind = "sequential"
	// ProvenanceLoadError: the control definition itself failed to load,
	// there is no chunk behind this result.
	ProvenanceLoadError ProvenanceKind = "load_error"
	// ProvenanceNoEvidence: retrieval returned nothing for this control.
	ProvenanceNoEvidence ProvenanceKind = "no_evidence"
)

type Provenance struct {
	Kind       ProvenanceKind `json:"kind"`
	ChunkID    string         `json:"chunk_id,omitempty"`
	ChunkIndex int            `json:"chunk_index"`
	Distance   float32        `json:"distance,omitempty"`
}

// ControlResult is one raw (control, chunk) evaluation. A failed model call
// is carried as EvalFailed + FailureCause, never as a magic result string.
type ControlResult struct {
	ControlID    string     `json:"control_id"`
	Description  string     `json:"description"`
	Instructions []string   `json:"instructions"`
	ResultText   string     `json:"result"`
	EvalFailed   bool       `json:"eval_failed,omitempty"`
	FailureCause string     `json:"failure_cause,omitempty"`
	Sentinel     bool       `json:"sentinel,omitempty"`
	Provenance   Provenance `json:"provenance"`
}

// ScoreGradingFailed marks a grade that never resolved to a model answer.
// The consolidator maps it (and any non-positive score) to maximum risk.
const ScoreGradingFailed = -1

type GradedResult struct {
	ControlResult
	Score int `json:"score"`
}

// ConsolidatedEntry is the single worst observation for one control id,
// plus every raw score seen, kept for audit.
type ConsolidatedEntry struct {
	ControlID string       `json:"control_id"`
	Worst     GradedResult `json:"worst"`
	Scores    []int        `json:"scores"`
	Passed    bool         `json:"passed"`
	Sentinel  bool         `json:"sentinel,omitempty"`
}

type Summary struct {
	Passed int `json:"passed"`
	Total  int `json:"total"`
}
