package config

import (
	"log/slog"
	"os"
	"time"
)

const (
	IS_PROD        = false
	LOG_LEVEL_PROD = slog.LevelInfo
	TRACE_ID_KEY   = ctxKey("traceId")

	NoAuthBypass                = true //flip when the bot layer fronts this with its own auth
	RATE_LIMIT_PER_SECOND       = 2
	BURST_RATE_LIMIT_PER_SECOND = 5

	//vectors: all-MiniLM-style 384-dim cosine space
	EmbeddingOutputDimensionality int32 = 384
	DocumentCollectionName              = "pebble_documents"
	TenantPayloadField                  = "tenant_id"

	//ingestion policy
	MaxUploadBytes      int64 = 10 * 1024 * 1024
	ChunkSize                 = 1000
	ChunkOverlap              = 200
	LargePageThreshold        = 50
	PageBatchSize             = 5
	LargeChunkThreshold       = 50
	EmbedBatchSmall           = 3
	EmbedBatchNormal          = 5
	LargePointThreshold       = 100
	StoreBatchSmall           = 25
	StoreBatchNormal          = 50

	//retrieval policy
	RetrievalLimit   = 15
	SearchLimit      = 8
	ScrollPageSize   = 1000
	MaxContextLength = 3000

	//conversation policy
	MaxHistory    = 16
	HistoryExpiry = 24 * time.Hour

	//server timeouts
	ReadTimeout            = 5 * time.Second
	WriteTimeout           = 30 * time.Second
	IdleTimeout            = 120 * time.Second
	ShutdownContextTimeout = 10 * time.Second

	ServerListenAddr = ":3000"

	//vectorDB
	QdrantHost     = "localhost"
	QdrantGrpcPort = 6334
	QdrantUseTLS   = false
	QdrantPoolSize = 1

	//llm (Groq exposes an OpenAI-compatible endpoint)
	GroqBaseURL      = "https://api.groq.com/openai/v1"
	ChatModelName    = "llama-3.3-70b-versatile"
	VisionModelName  = "meta-llama/llama-4-maverick-17b-128e-instruct"
	ChatTemperature  = 0.5
	VisionTemp       = 0.3
	MaxChatTokens    = 450
	GoogleEmbedModel = "gemini-embedding-001"

	//outbound http pooling for the ancillary API services
	MaxIdleConns        = 50
	MaxIdleConnsPerHost = 25
	IdleConnTimeout     = 60 * time.Second

	//redis response cache for ancillary APIs
	RedisAddr        = "127.0.0.1:6379"
	APICacheDB       = 2
	APICacheTTL      = 10 * time.Minute
	FallbackToMemory = true //if redis init fails, cache in-process instead

	//drop folder ingestion
	WatchDirDefault  = ""
	WatchTenantUser  = "local"
	WatchSettleDelay = 500 * time.Millisecond
)

type ctxKey string

func GetEnv(key string, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func GroqAPIKey() string      { return os.Getenv("GROQ_API_KEY") }
func GoogleAPIKey() string    { return os.Getenv("GOOGLE_API_KEY") }
func AuthToken() string       { return os.Getenv("PEBBLE_AUTH_TOKEN") }
func GithubToken() string     { return os.Getenv("GITHUB_PAT") }
func WeatherAPIKey() string   { return os.Getenv("WEATHER_API_KEY") }
func NewsAPIKey() string      { return os.Getenv("NEWS_API_KEY") }
func OneCompilerToken() string { return os.Getenv("ONECOMPILER_TOKEN") }
