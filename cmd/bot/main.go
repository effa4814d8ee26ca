// @title           Pebble Chat API
// @version         1.0
// @description     Tenant-partitioned chat and document RAG service behind the Pebble assistant

// @host      localhost:3000
// @BasePath  /
// @schemes   http https
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/pebblebot/pebble/internal/chat"
	"github.com/pebblebot/pebble/internal/config"
	"github.com/pebblebot/pebble/internal/contextstore"
	"github.com/pebblebot/pebble/internal/data/apicache"
	"github.com/pebblebot/pebble/internal/handlers"
	"github.com/pebblebot/pebble/internal/intent"
	"github.com/pebblebot/pebble/internal/rag"
	"github.com/pebblebot/pebble/internal/rag/embedding/googleEmbedding"
	"github.com/pebblebot/pebble/internal/rag/llm/groq"
	"github.com/pebblebot/pebble/internal/rag/vectorDB"
	"github.com/pebblebot/pebble/internal/rag/vectorDB/qdrantDB"
	"github.com/pebblebot/pebble/internal/server"
	"github.com/pebblebot/pebble/internal/watcher"
	"github.com/pebblebot/pebble/pkg/logger_i"
)

var listenAddr string

func main() {

	logger_i.Init()
	var logger = logger_i.NewLogger("main")

	flag.StringVar(&listenAddr, "listen-addr", config.ServerListenAddr, "server listen address")
	flag.Parse()

	serviceContext, closeExternalServices := context.WithCancel(context.Background())
	defer closeExternalServices()

	// The vector store and embedder may be offline; the bot still chats, it
	// just reports the knowledge base as unavailable.
	var vector vectorDB.DataProcessor
	if holder := qdrantDB.NewClient(serviceContext); holder != nil {
		vector = holder
	}
	embedder := googleEmbedding.NewClient(serviceContext, config.GoogleEmbedModel, config.GoogleAPIKey())
	ragService := rag.NewService(vector, embedder)

	llmProvider := groq.NewClient(config.GroqAPIKey())
	if llmProvider == nil {
		logger.Error("LLM provider failed to initialize. Shutting down.")
		return
	}

	cache := apicache.New(serviceContext)
	intents := intent.NewDispatcher(intent.NewServices(cache))

	store := contextstore.New()
	orchestrator := chat.NewOrchestrator(store, ragService, llmProvider, intents)
	handlers.Init(orchestrator, ragService)

	if watchDir := config.GetEnv("WATCH_DIR", config.WatchDirDefault); watchDir != "" {
		dropWatcher := watcher.New(watchDir, ragService)
		go func() {
			if err := dropWatcher.Run(serviceContext); err != nil && serviceContext.Err() == nil {
				logger.Error("Drop folder watcher stopped", "error", err)
			}
		}()
	}

	gracefulShutdown := make(chan os.Signal, 1)
	signal.Notify(gracefulShutdown, syscall.SIGINT, syscall.SIGTERM)
	stopExecution := make(chan bool, 1)

	shutdownParams := server.ShutdownParams{
		GracefulShutdown: gracefulShutdown,
		StopExecution:    stopExecution,
		CloseServices:    closeExternalServices,
	}
	go server.ShutDownHandler(shutdownParams)
	go server.CreateServer(listenAddr)

	<-stopExecution
	logger.Info("Server stopped")
}
