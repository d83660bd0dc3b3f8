package openaiLLM

import (
	"context"
	"errors"
	"sync"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/akishore/ComplyAPI/internal/config"
	"github.com/akishore/ComplyAPI/internal/control/llm"
	"github.com/akishore/ComplyAPI/internal/customHttpClient"
	"github.com/akishore/ComplyAPI/pkg/logger_i"
)

var logger *logger_i.Logger
var once sync.Once
var openaiClient *llmClient

type llmClient struct {
	client     *openai.Client
	evalModel  string
	gradeModel string
}

// GetOpenAIClient returns the shared OpenAI-backed evaluator/grader.
// Returns nil when no API key is configured, like the other singletons.
func GetOpenAIClient(ctx context.Context, apikey string) llm.Provider {
	once.Do(func() {
		logger = logger_i.NewLogger("llm_openai")
		newOpenAIClient(ctx, apikey)
	})

	if openaiClient == nil {
		return nil
	}
	return openaiClient
}

func newOpenAIClient(ctx context.Context, apikey string) {
	if apikey == "" {
		logger.Error("No OpenAI API key configured, evaluator unavailable")
		return
	}

	c := openai.NewClient(
		option.WithAPIKey(apikey),
		option.WithHTTPClient(customHttpClient.GetPooledClient()),
	)
	openaiClient = &llmClient{
		client:     &c,
		evalModel:  config.OpenAIEvalModel,
		gradeModel: config.OpenAIGradeModel,
	}
	logger.Info("OpenAI client created")
	go closeClient(ctx, openaiClient)
}

func closeClient(ctx context.Context, c *llmClient) {
	<-ctx.Done()
	logger.Info("Closing OpenAI client")
	c.client = nil
}

var _ llm.Evaluator = (*llmClient)(nil)
var _ llm.Grader = (*llmClient)(nil)

func (c *llmClient) Evaluate(ctx context.Context, prompt string) (string, error) {
	return c.complete(ctx, c.evalModel, config.EvaluatorContext, prompt)
}

func (c *llmClient) Grade(ctx context.Context, prompt string) (string, error) {
	return c.complete(ctx, c.gradeModel, config.GraderContext, prompt)
}

func (c *llmClient) complete(ctx context.Context, model string, system string, prompt string) (string, error) {
	if c.client == nil {
		return "", errors.New("openai client not configured")
	}
	log := logger.With("traceId", ctx.Value(config.TRACE_ID_KEY))

	callCtx, cancel := context.WithTimeout(ctx, config.PerCallTimeout)
	defer cancel()

	resp, err := c.client.Chat.Completions.New(callCtx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(system),
			openai.UserMessage(prompt),
		},
	})
	if err != nil {
		log.Error("OpenAI completion failed", "model", model, "error", err)
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("openai returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}
