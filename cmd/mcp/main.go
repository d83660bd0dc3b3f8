package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/akishore/ComplyAPI/internal/config"
	"github.com/akishore/ComplyAPI/internal/control"
	"github.com/akishore/ComplyAPI/internal/control/category"
	"github.com/akishore/ComplyAPI/internal/control/consolidate"
	"github.com/akishore/ComplyAPI/internal/control/embedding/googleEmbedding"
	"github.com/akishore/ComplyAPI/internal/control/executor"
	"github.com/akishore/ComplyAPI/internal/control/grader"
	"github.com/akishore/ComplyAPI/internal/control/llm"
	"github.com/akishore/ComplyAPI/internal/control/llm/gemini"
	"github.com/akishore/ComplyAPI/internal/control/llm/openaiLLM"
	"github.com/akishore/ComplyAPI/internal/control/prompts"
	"github.com/akishore/ComplyAPI/internal/control/report"
	"github.com/akishore/ComplyAPI/internal/control/vectordb"
	"github.com/akishore/ComplyAPI/internal/control/vectordb/memoryDB"
	"github.com/akishore/ComplyAPI/internal/control/vectordb/qdrantDB"
	"github.com/akishore/ComplyAPI/internal/data/store"
	"github.com/akishore/ComplyAPI/internal/domain/jobModel"
	"github.com/akishore/ComplyAPI/internal/mcpserver"
	"github.com/akishore/ComplyAPI/pkg/logger_i"
)

func main() {

	_ = godotenv.Load()

	logger_i.Init()
	var logger = logger_i.NewLogger("mcp main")

	pipeline := config.PipelineFromEnv()

	serviceContext, closeExternalServices := context.WithCancel(context.Background())
	defer closeExternalServices()

	var vectorDB vectordb.Index = qdrantDB.GetQuadrantClient(serviceContext)
	if vectorDB == nil {
		logger.Error("Qdrant is offline, falling back to in-memory vector index")
		vectorDB = memoryDB.NewStore()
	}

	embeddingService := googleEmbedding.GetGoogleEmbeddingClient(serviceContext, config.GoogleEmbeddingModel, config.GoogleEmbeddingAPIKey)
	llmProvider := initLLMProvider(serviceContext)

	if embeddingService == nil || llmProvider == nil {
		logger.Error("One or more external services failed to initialize. Shutting down.")
		return
	}

	resolver, err := category.NewResolver(pipeline)
	if err != nil {
		logger.Error("Invalid category keyword configuration", "err", err)
		return
	}
	promptStore := prompts.NewStore(pipeline.PromptsDir)

	var history jobModel.RunHistoryStore
	if redisHistory := store.GetRedisRunHistoryStore(serviceContext); redisHistory != nil {
		history = redisHistory
	} else {
		logger.Error("Redis run history is offline")
		history = store.InitInMemoryRunHistoryStore()
	}

	controlService := control.NewService(
		vectorDB,
		embeddingService,
		executor.New(embeddingService, llmProvider, pipeline),
		grader.New(llmProvider, pipeline),
		resolver,
		promptStore,
		consolidate.New(pipeline),
		report.New(pipeline),
		history,
		pipeline,
	)

	mcpServer, err := mcpserver.NewServer(controlService, promptStore)
	if err != nil {
		logger.Error("Could not create MCP server", "err", err)
		return
	}

	runCtx, stop := signal.NotifyContext(serviceContext, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("MCP server listening on stdio")
	if err := mcpServer.Run(runCtx); err != nil && runCtx.Err() == nil {
		logger.Error("MCP server stopped", "err", err)
		os.Exit(1)
	}
}

// initLLMProvider picks the evaluation and grading backend. OpenAI is the
// default, LLM_PROVIDER=gemini switches both roles to Gemini.
func initLLMProvider(ctx context.Context) llm.Provider {
	if os.Getenv("LLM_PROVIDER") == "gemini" {
		return gemini.GetGeminiClient(ctx, config.GeminiModelName, config.GoogleEmbeddingAPIKey)
	}
	return openaiLLM.GetOpenAIClient(ctx, config.OpenAIAPIKey)
}
