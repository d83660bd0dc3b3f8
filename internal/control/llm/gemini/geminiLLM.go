package gemini

import (
	"context"
	"errors"
	"sync"

	"google.golang.org/genai"

	"github.com/akishore/ComplyAPI/internal/config"
	"github.com/akishore/ComplyAPI/internal/control/llm"
	"github.com/akishore/ComplyAPI/pkg/logger_i"
)

// Gemini-backed evaluator/grader. Selected with LLM_PROVIDER=gemini when
// the deployment has Google credentials but no OpenAI key.
type llmClient struct {
	client    *genai.Client
	modelName string
}

var logger *logger_i.Logger
var geminiClient *llmClient
var once sync.Once

func GetGeminiClient(ctx context.Context, modelName string, apikey string) llm.Provider {
	once.Do(func() {
		logger = logger_i.NewLogger("llm_gemini")
		newGeminiClient(ctx, modelName, apikey)
	})

	if geminiClient == nil {
		return nil
	}
	return &llmClient{client: geminiClient.client, modelName: geminiClient.modelName}
}

func newGeminiClient(ctx context.Context, modelName string, apikey string) {
	if apikey == "" {
		logger.Error("No Google API key configured, Gemini provider unavailable")
		return
	}

	c, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apikey})
	if err != nil {
		logger.Error("Error creating Gemini client:", "error", err)
	}
	if c != nil {
		geminiClient = &llmClient{client: c, modelName: modelName}
		logger.Debug("Gemini ", modelName, " client created")
		logger.Info("Gemini client created")
		go closeClient(ctx, geminiClient)
	}
}

func closeClient(ctx context.Context, c *llmClient) {
	<-ctx.Done()
	logger.Info("Closing Gemini client")
	c.client = nil
	c.modelName = ""
}

var _ llm.Provider = (*llmClient)(nil)

func (c *llmClient) Evaluate(ctx context.Context, prompt string) (string, error) {
	return c.generate(ctx, config.EvaluatorContext, prompt)
}

func (c *llmClient) Grade(ctx context.Context, prompt string) (string, error) {
	return c.generate(ctx, config.GraderContext, prompt)
}

func (c *llmClient) generate(ctx context.Context, system string, prompt string) (string, error) {
	if c.client == nil {
		return "", errors.New("gemini client not configured")
	}
	log := logger.With("traceId", ctx.Value(config.TRACE_ID_KEY))

	callCtx, cancel := context.WithTimeout(ctx, config.PerCallTimeout)
	defer cancel()

	contentConfig := &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: system}},
		},
	}

	result, err := c.client.Models.GenerateContent(callCtx, c.modelName, genai.Text(prompt), contentConfig)
	if err != nil {
		log.Error("Gemini completion failed", "error", err)
		return "", err
	}
	text := result.Text()
	if text == "" {
		return "", errors.New("gemini returned an empty response")
	}
	return text, nil
}
