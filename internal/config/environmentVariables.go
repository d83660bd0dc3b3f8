package config

import (
	"log/slog"
	"os"
	"time"
)

const (
	IS_PROD                         = false
	LOG_LEVEL_PROD                  = slog.LevelInfo
	FALLBACK_REDIS_TO_INTERNALSTORE = true //if redis init fails, it falls back to an internal in-memory store
	TRACE_ID_KEY                    = "traceId"
	RATE_LIMIT_PER_SECOND           = 2
	BURST_RATE_LIMIT_PER_SECOND     = 5

	//TODO:this will differ based on the embedding provider
	EmbeddingOutputDimensionality int32 = 1536

	RequestsPerNewWorkerCount int64 = 10
	MaxWorkerCount            int64 = 10
	MinWorkerCount            int64 = 1
	IdleWorkerTimeout               = 1 * time.Minute

	//serverTimeouts
	ReadTimeout            = 5 * time.Second
	WriteTimeout           = 10 * time.Second
	IdleTimeout            = 120 * time.Second
	ShutdownContextTimeout = 10 * time.Second

	//server listening port
	ServerListenAddr = ":3000"

	//job requests buffer limit
	BufferLimit = 100

	//per-document control chain budget; embedding, evaluation and grading
	//calls all live under this
	ChainTimeout   = 10 * time.Minute
	PerCallTimeout = 60 * time.Second

	//vectorDB
	QdrantConnectionTimeout = 30 * time.Second
	QdrantHost              = ""
	QdrantPort              = 6333 //http
	QdrantGrpcPort          = 6334
	QdrantUseTLS            = false //set for https
	QdrantPoolSize          = 1     //2-5 is preferred for prod according to documentation
	QdrantKeepAliveTimeout  = 30 * time.Second

	//models
	GoogleEmbeddingModel = "gemini-embedding-001"
	GeminiModelName      = "gemini-2.5-flash-lite-preview-09-2025"
	OpenAIEvalModel      = "gpt-4o-mini"
	OpenAIGradeModel     = "gpt-4o-mini"

	EvaluatorContext = "You are a control verification assistant. Execute the specific instruction provided for the control precisely. Respond ONLY with the requested output format."
	GraderContext    = "You are an AI assistant evaluating the risk level of a control result based on the control's goal. Assess the risk level on a scale of 1 to 10, where 1 is very low risk (success/compliance) and 10 is very high risk (failure/non-compliance). Output ONLY the integer score (1-10)."

	MaxIdleConns        = 50
	MaxIdleConnsPerHost = 25
	IdleConnTimeout     = 60 * time.Second

	//redis
	redisHost = "127.0.0.1"
	redisPort = "6379"
	RedisAddr = redisHost + ":" + redisPort
	RedisPassword = ""

	//redis has 16 DB we can use
	RedisJobStore        = 0
	RedisRunHistoryStore = 1

	//redis timeouts
	RedisJobStoreTTL        = 24 * time.Hour
	RedisRunHistoryStoreTTL = 7 * 24 * time.Hour
)

var (
	GoogleEmbeddingAPIKey = os.Getenv("GOOGLE_API_KEY")
	OpenAIAPIKey          = os.Getenv("OPENAI_API_KEY")
	AuthToken             = os.Getenv("API_AUTH_TOKEN")
	NoAuthBypass          = os.Getenv("API_AUTH_TOKEN") == ""
)
