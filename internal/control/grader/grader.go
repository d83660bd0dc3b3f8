package grader

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/akishore/ComplyAPI/internal/config"
	"github.com/akishore/ComplyAPI/internal/control/llm"
	"github.com/akishore/ComplyAPI/internal/domain/commonModels"
	"github.com/akishore/ComplyAPI/pkg/logger_i"
)

// Grader assigns a 1-10 risk score to each control result. Grading fails
// closed: anything that cannot be read as an in-range integer becomes
// maximum risk rather than a silent pass.
type Grader struct {
	model  llm.Grader
	max    int
	logger *logger_i.Logger
}

func New(model llm.Grader, cfg config.Pipeline) *Grader {
	return &Grader{
		model:  model,
		max:    cfg.MaxRiskScore,
		logger: logger_i.NewLogger("Risk Grader"),
	}
}

// GradeAll scores every result, preserving input order. Results already
// tagged EvalFailed skip the model call, there is nothing to grade.
func (g *Grader) GradeAll(ctx context.Context, results []commonModels.ControlResult) []commonModels.GradedResult {
	log := g.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY))

	graded := make([]commonModels.GradedResult, 0, len(results))
	for _, res := range results {
		graded = append(graded, g.grade(ctx, log, res))
	}
	return graded
}

func (g *Grader) grade(ctx context.Context, log *logger_i.Logger, res commonModels.ControlResult) commonModels.GradedResult {
	if res.EvalFailed {
		return commonModels.GradedResult{ControlResult: res, Score: commonModels.ScoreGradingFailed}
	}

	answer, err := g.model.Grade(ctx, BuildPrompt(res))
	if err != nil {
		log.Warn("Grading call failed", "control", res.ControlID, "error", err)
		return commonModels.GradedResult{ControlResult: res, Score: commonModels.ScoreGradingFailed}
	}

	return commonModels.GradedResult{ControlResult: res, Score: g.parse(log, res.ControlID, answer)}
}

// parse clamps fail-closed: only a clean integer in [1,max] survives.
func (g *Grader) parse(log *logger_i.Logger, controlID string, answer string) int {
	score, err := strconv.Atoi(strings.TrimSpace(answer))
	if err != nil {
		log.Warn("Unparsable grade, scoring maximum risk", "control", controlID, "answer", answer)
		return g.max
	}
	if score < 1 || score > g.max {
		log.Warn("Out-of-range grade, scoring maximum risk", "control", controlID, "score", score)
		return g.max
	}
	return score
}

// BuildPrompt renders the grading prompt for one control result.
func BuildPrompt(res commonModels.ControlResult) string {
	goal := res.Description
	if len(res.Instructions) > 0 {
		goal = strings.Join(res.Instructions, "\n")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Control goal:\n%s\n\n", goal)
	fmt.Fprintf(&b, "Control result:\n%s\n\n", res.ResultText)
	b.WriteString("Output ONLY the integer score.")
	return b.String()
}
