package grader

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akishore/ComplyAPI/internal/config"
	"github.com/akishore/ComplyAPI/internal/domain/commonModels"
	"github.com/akishore/ComplyAPI/pkg/logger_i"
)

func TestMain(m *testing.M) {
	logger_i.Init()
	os.Exit(m.Run())
}

type fakeGrader struct {
	grade func(ctx context.Context, prompt string) (string, error)
}

func (f *fakeGrader) Grade(ctx context.Context, prompt string) (string, error) {
	return f.grade(ctx, prompt)
}

func newGrader(answer string, err error) *Grader {
	return New(&fakeGrader{grade: func(ctx context.Context, prompt string) (string, error) {
		return answer, err
	}}, config.PipelineFromEnv())
}

func someResult() commonModels.ControlResult {
	return commonModels.ControlResult{
		ControlID:   "RGPD-03",
		Description: "Check retention policy is stated",
		ResultText:  "The document states a 5 year retention period.",
	}
}

func TestParseClamping(t *testing.T) {
	tests := []struct {
		name   string
		answer string
		want   int
	}{
		{"clean integer", "3", 3},
		{"whitespace around integer", "  7\n", 7},
		{"minimum", "1", 1},
		{"maximum", "10", 10},
		{"below range", "0", 10},
		{"negative", "-2", 10},
		{"above range", "11", 10},
		{"prose answer", "The risk is 3", 10},
		{"empty answer", "", 10},
		{"float answer", "3.5", 10},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			g := newGrader(tc.answer, nil)
			graded := g.GradeAll(context.Background(), []commonModels.ControlResult{someResult()})
			require.Len(t, graded, 1)
			assert.Equal(t, tc.want, graded[0].Score)
		})
	}
}

func TestCallErrorScoresGradingFailed(t *testing.T) {
	g := newGrader("", errors.New("rate limited"))

	graded := g.GradeAll(context.Background(), []commonModels.ControlResult{someResult()})

	require.Len(t, graded, 1)
	assert.Equal(t, commonModels.ScoreGradingFailed, graded[0].Score)
}

func TestEvalFailedSkipsModelCall(t *testing.T) {
	called := false
	g := New(&fakeGrader{grade: func(ctx context.Context, prompt string) (string, error) {
		called = true
		return "1", nil
	}}, config.PipelineFromEnv())

	res := someResult()
	res.EvalFailed = true
	res.FailureCause = "model timeout"

	graded := g.GradeAll(context.Background(), []commonModels.ControlResult{res})

	require.Len(t, graded, 1)
	assert.False(t, called)
	assert.Equal(t, commonModels.ScoreGradingFailed, graded[0].Score)
}

func TestGradeAllPreservesOrder(t *testing.T) {
	answers := []string{"2", "9"}
	i := 0
	g := New(&fakeGrader{grade: func(ctx context.Context, prompt string) (string, error) {
		a := answers[i]
		i++
		return a, nil
	}}, config.PipelineFromEnv())

	first := someResult()
	second := someResult()
	second.ControlID = "RGPD-04"

	graded := g.GradeAll(context.Background(), []commonModels.ControlResult{first, second})

	require.Len(t, graded, 2)
	assert.Equal(t, "RGPD-03", graded[0].ControlID)
	assert.Equal(t, 2, graded[0].Score)
	assert.Equal(t, "RGPD-04", graded[1].ControlID)
	assert.Equal(t, 9, graded[1].Score)
}

func TestBuildPromptPrefersInstructions(t *testing.T) {
	res := someResult()
	res.Instructions = []string{"Verify retention duration", "Verify deletion process"}

	prompt := BuildPrompt(res)
	assert.Contains(t, prompt, "Verify retention duration")
	assert.Contains(t, prompt, "Verify deletion process")
	assert.NotContains(t, prompt, res.Description)
	assert.Contains(t, prompt, "Output ONLY the integer score.")

	res.Instructions = nil
	prompt = BuildPrompt(res)
	assert.Contains(t, prompt, res.Description)
}
