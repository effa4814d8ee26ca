package rag

import (
	"context"
	"time"

	"github.com/pebblebot/pebble/internal/config"
	"github.com/pebblebot/pebble/internal/domain/chatModel"
	"github.com/pebblebot/pebble/internal/domain/commonModels"
	"github.com/pebblebot/pebble/internal/metrics"
	"github.com/pebblebot/pebble/internal/rag/embedding"
	"github.com/pebblebot/pebble/internal/rag/ingest"
	"github.com/pebblebot/pebble/internal/rag/vectorDB"
	"github.com/pebblebot/pebble/pkg/logger_i"
)

// Service is the document-knowledge surface the rest of the bot talks to.
// Every method degrades to its empty result when the vector store or the
// embedder is unavailable; callers never see a panic or a raw store error.
type Service interface {
	Available(ctx context.Context) bool
	Ingest(ctx context.Context, attachment chatModel.Attachment, scope chatModel.Scope) (chatModel.IngestResult, error)
	GetContextForQuery(ctx context.Context, query string, scope chatModel.Scope, maxLength int) string
	QueryDocuments(ctx context.Context, query string, scope chatModel.Scope, limit uint64) []commonModels.SearchHit
	ListStoredFiles(ctx context.Context, scope chatModel.Scope) []commonModels.StoredFile
	DeleteTenantData(ctx context.Context, scope chatModel.Scope) bool
	DeleteFile(ctx context.Context, scope chatModel.Scope, filename string) bool
}

type service struct {
	vectorDB vectorDB.DataProcessor
	embedder embedding.Embedder
	logger   *logger_i.Logger
}

// NewService wires the RAG collaborators. Either dependency may be nil when
// its startup construction failed; the service then reports unavailable
// instead of the process refusing to start.
func NewService(vector vectorDB.DataProcessor, em embedding.Embedder) Service {
	return &service{
		vectorDB: vector,
		embedder: em,
		logger:   logger_i.NewLogger("RAG Service"),
	}
}

func (s *service) Available(ctx context.Context) bool {
	if s.vectorDB == nil || s.embedder == nil {
		return false
	}
	return s.vectorDB.IsAvailable(ctx)
}

func (s *service) Ingest(ctx context.Context, attachment chatModel.Attachment, scope chatModel.Scope) (chatModel.IngestResult, error) {
	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("document_ingestion", time.Since(start)) }()

	if !s.Available(ctx) {
		return chatModel.IngestResult{}, ErrUnavailable
	}
	return ingest.ProcessDocumentIngestion(ctx, attachment, scope, s.embedder, s.vectorDB)
}

func (s *service) QueryDocuments(ctx context.Context, query string, scope chatModel.Scope, limit uint64) []commonModels.SearchHit {
	if !s.Available(ctx) {
		return nil
	}

	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("vector_search", time.Since(start)) }()

	vector, err := s.embedder.GetEmbedding(ctx, query)
	if err != nil {
		s.logger.Error("query embedding failed", "error", err)
		return nil
	}
	hits, err := s.vectorDB.Query(ctx, scope.TenantID(), vector, limit)
	if err != nil {
		s.logger.Error("vector query failed", "tenant", scope.TenantID(), "error", err)
		return nil
	}
	return hits
}

// GetContextForQuery retrieves the nearest chunks for the tenant and
// assembles a length-bounded context block. Empty string when the store is
// unavailable or nothing matches, so the caller falls back to a plain turn.
func (s *service) GetContextForQuery(ctx context.Context, query string, scope chatModel.Scope, maxLength int) string {
	hits := s.QueryDocuments(ctx, query, scope, config.RetrievalLimit)
	return assembleContext(hits, maxLength)
}

func (s *service) ListStoredFiles(ctx context.Context, scope chatModel.Scope) []commonModels.StoredFile {
	if !s.Available(ctx) {
		return nil
	}
	chunks, err := s.vectorDB.Scroll(ctx, scope.TenantID(), config.ScrollPageSize)
	if err != nil {
		s.logger.Error("scroll failed", "tenant", scope.TenantID(), "error", err)
		return nil
	}
	return aggregateFiles(chunks)
}

func (s *service) DeleteTenantData(ctx context.Context, scope chatModel.Scope) bool {
	if !s.Available(ctx) {
		return false
	}
	return s.vectorDB.Delete(ctx, scope.TenantID(), "") == nil
}

func (s *service) DeleteFile(ctx context.Context, scope chatModel.Scope, filename string) bool {
	if !s.Available(ctx) {
		return false
	}
	return s.vectorDB.Delete(ctx, scope.TenantID(), filename) == nil
}
