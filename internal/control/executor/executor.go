package executor

import (
	"context"
	"fmt"
	"strings"

	"github.com/akishore/ComplyAPI/internal/config"
	"github.com/akishore/ComplyAPI/internal/control/embedding"
	"github.com/akishore/ComplyAPI/internal/control/llm"
	"github.com/akishore/ComplyAPI/internal/control/prompts"
	"github.com/akishore/ComplyAPI/internal/control/vectordb"
	"github.com/akishore/ComplyAPI/internal/domain/commonModels"
	"github.com/akishore/ComplyAPI/pkg/logger_i"
)

const noEvidenceResult = "No relevant evidence was found in the document for this control."

// Executor runs every control of a category against one indexed document.
// Relevance mode retrieves the top-K chunks per control; exhaustive mode
// walks every chunk in document order. A model failure never aborts the
// batch, it becomes a tagged result and the run moves on.
type Executor struct {
	embedder  embedding.Embedder
	evaluator llm.Evaluator
	topK      int
	mode      config.ExecutorMode
	logger    *logger_i.Logger
}

func New(embedder embedding.Embedder, evaluator llm.Evaluator, cfg config.Pipeline) *Executor {
	return &Executor{
		embedder:  embedder,
		evaluator: evaluator,
		topK:      cfg.RelevantChunkCount,
		mode:      cfg.Mode,
		logger:    logger_i.NewLogger("Control Executor"),
	}
}

// Execute produces one ControlResult per (control, chunk) pair visited,
// plus one sentinel result per definition that failed to load. chunks is
// only consulted in exhaustive mode; relevance mode reads the index.
func (e *Executor) Execute(
	ctx context.Context,
	defs []commonModels.ControlDefinition,
	failures []prompts.LoadFailure,
	index vectordb.Index,
	h vectordb.Handle,
	chunks []commonModels.TextChunk,
) []commonModels.ControlResult {
	log := e.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY))

	results := make([]commonModels.ControlResult, 0, len(defs)+len(failures))
	for _, f := range failures {
		results = append(results, commonModels.ControlResult{
			ControlID:    f.ControlID,
			ResultText:   "Control definition could not be loaded: " + f.Cause,
			EvalFailed:   true,
			FailureCause: f.Cause,
			Sentinel:     true,
			Provenance:   commonModels.Provenance{Kind: commonModels.ProvenanceLoadError},
		})
	}

	for _, def := range defs {
		log.Debug("Executing control", "control", def.ControlID, "mode", string(e.mode))
		switch e.mode {
		case config.ExecutorExhaustive:
			results = append(results, e.runExhaustive(ctx, def, chunks)...)
		default:
			results = append(results, e.runRelevance(ctx, def, index, h)...)
		}
	}
	return results
}

func (e *Executor) runRelevance(ctx context.Context, def commonModels.ControlDefinition, index vectordb.Index, h vectordb.Handle) []commonModels.ControlResult {
	query := def.Description + "\n" + strings.Join(def.Instructions, "\n")

	vector, err := e.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return []commonModels.ControlResult{failedResult(def, "query embedding failed: "+err.Error())}
	}

	matches, err := index.Query(ctx, h, vector, e.topK)
	if err != nil {
		return []commonModels.ControlResult{failedResult(def, "evidence retrieval failed: "+err.Error())}
	}

	if len(matches) == 0 {
		// still graded, absence of evidence is itself a finding
		return []commonModels.ControlResult{{
			ControlID:    def.ControlID,
			Description:  def.Description,
			Instructions: def.Instructions,
			ResultText:   noEvidenceResult,
			Provenance:   commonModels.Provenance{Kind: commonModels.ProvenanceNoEvidence},
		}}
	}

	results := make([]commonModels.ControlResult, 0, len(matches))
	for _, m := range matches {
		res := e.evaluateChunk(ctx, def, m.Text)
		res.Provenance = commonModels.Provenance{
			Kind:     commonModels.ProvenanceRetrieved,
			ChunkID:  m.ID,
			Distance: m.Distance,
		}
		results = append(results, res)
	}
	return results
}

func (e *Executor) runExhaustive(ctx context.Context, def commonModels.ControlDefinition, chunks []commonModels.TextChunk) []commonModels.ControlResult {
	results := make([]commonModels.ControlResult, 0, len(chunks))
	for _, chunk := range chunks {
		res := e.evaluateChunk(ctx, def, chunk.Text)
		res.Provenance = commonModels.Provenance{
			Kind:       commonModels.ProvenanceSequential,
			ChunkIndex: chunk.Index,
		}
		results = append(results, res)
	}
	return results
}

func (e *Executor) evaluateChunk(ctx context.Context, def commonModels.ControlDefinition, chunkText string) commonModels.ControlResult {
	answer, err := e.evaluator.Evaluate(ctx, BuildPrompt(def, chunkText))
	if err != nil {
		return failedResult(def, err.Error())
	}
	return commonModels.ControlResult{
		ControlID:    def.ControlID,
		Description:  def.Description,
		Instructions: def.Instructions,
		ResultText:   answer,
	}
}

func failedResult(def commonModels.ControlDefinition, cause string) commonModels.ControlResult {
	return commonModels.ControlResult{
		ControlID:    def.ControlID,
		Description:  def.Description,
		Instructions: def.Instructions,
		ResultText:   "Evaluation did not complete: " + cause,
		EvalFailed:   true,
		FailureCause: cause,
	}
}

// BuildPrompt renders the evaluation prompt for one control against one
// chunk of document text.
func BuildPrompt(def commonModels.ControlDefinition, chunkText string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Control description: %s\n\n", def.Description)
	b.WriteString("Instructions:\n")
	for _, inst := range def.Instructions {
		b.WriteString("- " + inst + "\n")
	}
	if def.ExpectedOutputFormat != "" {
		fmt.Fprintf(&b, "\nExpected output format: %s\n", def.ExpectedOutputFormat)
	}
	b.WriteString("\n--- Document Text Start ---\n")
	b.WriteString(chunkText)
	b.WriteString("\n--- Document Text End ---\n")
	return b.String()
}
