// @title           Compliance Control API
// @version         1.0
// @description     This API runs asynchronous compliance control chains over documents
// @termsOfService  http://swagger.io/terms/

// @contact.name    me lol
// @contact.url
// @contact.email

// @license.name    Apache 2.0
// @license.url     http://www.apache.org/licenses/LICENSE-2.0.html

// @host      localhost:3000
// @BasePath  /
// @schemes   http https
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"sync"
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
	jobmodel "github.com/akishore/ComplyAPI/internal/domain/jobModel"
	"github.com/akishore/ComplyAPI/internal/handlers"
	"github.com/akishore/ComplyAPI/internal/job"
	"github.com/akishore/ComplyAPI/internal/server"
	"github.com/akishore/ComplyAPI/internal/worker"
	"github.com/akishore/ComplyAPI/pkg/logger_i"
)

var (
	listenAddr        string
	requestCount      int64
	stopWorkerChannel chan bool
	workerWaitGroup   sync.WaitGroup
)

func main() {

	_ = godotenv.Load() //.env is optional, real deployments use the environment

	logger_i.Init()
	var logger = logger_i.NewLogger("main")

	//config
	flag.StringVar(&listenAddr, "listen-addr", config.ServerListenAddr, "server listen address")
	flag.Parse()

	pipeline := config.PipelineFromEnv()

	//init buffered job channel
	jobChannel := make(chan jobmodel.Job, config.BufferLimit)
	dispatcherChannel := make(chan bool, 1)
	stopWorkerChannel = make(chan bool, 1)

	serviceContext, closeExternalServices := context.WithCancel(context.Background())
	defer closeExternalServices()

	//init job service and job store
	serviceConfig := job.ServiceConfig{
		JobChannel:        jobChannel,
		RequestCount:      requestCount,
		DispatcherChannel: dispatcherChannel,
	}
	logger.Info("Starting job service")

	redisJobStore := store.GetRedisJobStore(serviceContext)
	redisRunHistory := store.GetRedisRunHistoryStore(serviceContext)
	if redisJobStore == nil || redisRunHistory == nil {
		logger.Error("Redis stores are offline")
		serviceConfig.JobStore = store.InitInMemoryJobStore()
		serviceConfig.RunHistoryStore = store.InitInMemoryRunHistoryStore()
	} else {
		serviceConfig.JobStore = redisJobStore
		serviceConfig.RunHistoryStore = redisRunHistory
	}
	service := job.InitJobService(serviceConfig)

	var vectorDB vectordb.Index = qdrantDB.GetQuadrantClient(serviceContext)
	if vectorDB == nil {
		logger.Error("Qdrant is offline, falling back to in-memory vector index")
		vectorDB = memoryDB.NewStore()
	}

	embeddingService := googleEmbedding.GetGoogleEmbeddingClient(serviceContext, config.GoogleEmbeddingModel, config.GoogleEmbeddingAPIKey)
	llmProvider := initLLMProvider(serviceContext)

	if embeddingService == nil || llmProvider == nil {
		logger.Error("One or more external services failed to initialize. Shutting down.")
		logger.Debug("Available services : ", "EmbeddingService", embeddingService != nil, "LLMProvider", llmProvider != nil)
		return
	}

	resolver, err := category.NewResolver(pipeline)
	if err != nil {
		logger.Error("Invalid category keyword configuration", "err", err)
		return
	}
	promptStore := prompts.NewStore(pipeline.PromptsDir)

	controlService := control.NewService(
		vectorDB,
		embeddingService,
		executor.New(embeddingService, llmProvider, pipeline),
		grader.New(llmProvider, pipeline),
		resolver,
		promptStore,
		consolidate.New(pipeline),
		report.New(pipeline),
		service.RunHistoryStore,
		pipeline,
	)

	handlers.InitJobHandler(service, pipeline, promptStore)

	//init worker pool
	worker.InitServices(service, controlService)
	worker.InitWorkerPool(stopWorkerChannel, &workerWaitGroup)

	//server handling
	gracefulShutdown := make(chan os.Signal, 1)
	signal.Notify(gracefulShutdown, syscall.SIGINT, syscall.SIGTERM)
	stopExecution := make(chan bool, 1)

	shutdownParams := server.ShutdownParams{
		GracefulShutdown: gracefulShutdown,
		StopExecution:    stopExecution,
		WorkerStop:       stopWorkerChannel,
		Group:            &workerWaitGroup,
		CloseServices:    closeExternalServices,
	}
	go server.ShutDownHandler(shutdownParams)
	go server.CreateServer(listenAddr)

	<-stopExecution
	logger.Info("Server stopped")
}

// initLLMProvider picks the evaluation and grading backend. OpenAI is the
// default, LLM_PROVIDER=gemini switches both roles to Gemini.
func initLLMProvider(ctx context.Context) llm.Provider {
	if os.Getenv("LLM_PROVIDER") == "gemini" {
		return gemini.GetGeminiClient(ctx, config.GeminiModelName, config.GoogleEmbeddingAPIKey)
	}
	return openaiLLM.GetOpenAIClient(ctx, config.OpenAIAPIKey)
}
