package ingest

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pebblebot/pebble/internal/config"
	"github.com/pebblebot/pebble/internal/domain/chatModel"
	"github.com/pebblebot/pebble/internal/domain/commonModels"
	"github.com/pebblebot/pebble/internal/rag/embedding"
	"github.com/pebblebot/pebble/internal/rag/vectorDB"
	"github.com/pebblebot/pebble/pkg/logger_i"
)

// ProcessDocumentIngestion runs one uploaded file through extraction,
// chunking, embedding and storage, in bounded sequential batches. Storage is
// at-least-once: a failure mid-way does not roll back batches already
// upserted. The temp copy of the upload is removed on every exit path.
func ProcessDocumentIngestion(
	ctx context.Context,
	attachment chatModel.Attachment,
	scope chatModel.Scope,
	embedder embedding.Embedder,
	vectorDatabase vectorDB.DataProcessor,
) (chatModel.IngestResult, error) {
	logger := logger_i.NewLogger("Document Ingestion").With("filename", attachment.Filename())

	if attachment.Size() > config.MaxUploadBytes {
		return chatModel.IngestResult{}, errors.New("File too large. Maximum size is 10MB.")
	}
	if !supportedExtension(attachment.Filename()) {
		return chatModel.IngestResult{}, fmt.Errorf(
			"Unsupported file type: %s. Supported types: .txt, .pdf", attachment.Filename())
	}

	tempPath := filepath.Join(os.TempDir(),
		fmt.Sprintf("pebble_bot_%d_%s", time.Now().UnixNano(), filepath.Base(attachment.Filename())))
	if err := attachment.Save(tempPath); err != nil {
		return chatModel.IngestResult{}, fmt.Errorf("failed to save upload: %w", err)
	}
	defer removeTempFile(tempPath, logger)

	pages, err := extractText(ctx, tempPath, attachment.Filename(), logger)
	if err != nil {
		return chatModel.IngestResult{}, err
	}
	if len(pages) == 0 {
		return chatModel.IngestResult{}, errors.New("No text content found in the file.")
	}

	chunks, err := prepareChunks(pages, attachment.Filename(), scope)
	if err != nil {
		return chatModel.IngestResult{}, fmt.Errorf("chunking failed: %w", err)
	}
	if len(chunks) == 0 {
		return chatModel.IngestResult{}, errors.New("No content chunks generated from the file.")
	}
	logger.Debug("prepared chunks", "chunks", len(chunks), "pages", len(pages))

	vectors, err := embedChunks(ctx, chunks, embedder)
	if err != nil {
		return chatModel.IngestResult{}, fmt.Errorf("embedding failed: %w", err)
	}

	if err := storeChunks(ctx, chunks, vectors, vectorDatabase); err != nil {
		return chatModel.IngestResult{}, fmt.Errorf("storing chunks failed: %w", err)
	}

	return chatModel.IngestResult{
		Filename:       attachment.Filename(),
		ChunksStored:   len(chunks),
		PagesProcessed: len(pages),
		TenantID:       scope.TenantID(),
	}, nil
}

// embedChunks generates one vector per chunk. Batch size shrinks for large
// jobs to bound pressure on the embedding collaborator; batches run strictly
// sequentially with a yield between them.
func embedChunks(ctx context.Context, chunks []commonModels.DocChunk, embedder embedding.Embedder) ([][]float32, error) {
	batchSize := config.EmbedBatchNormal
	if len(chunks) > config.LargeChunkThreshold {
		batchSize = config.EmbedBatchSmall
	}

	vectors := make([][]float32, 0, len(chunks))
	for start := 0; start < len(chunks); start += batchSize {
		end := start + batchSize
		if end > len(chunks) {
			end = len(chunks)
		}
		texts := make([]string, 0, end-start)
		for _, c := range chunks[start:end] {
			texts = append(texts, c.Content)
		}

		batch, err := embedder.BatchEmbedding(ctx, texts)
		if err != nil {
			return nil, err
		}
		if len(batch) != len(texts) {
			return nil, fmt.Errorf("embedder returned %d vectors for %d chunks", len(batch), len(texts))
		}
		vectors = append(vectors, batch...)

		if end < len(chunks) {
			if err := yield(ctx); err != nil {
				return nil, err
			}
		}
	}
	return vectors, nil
}

func storeChunks(ctx context.Context, chunks []commonModels.DocChunk, vectors [][]float32, db vectorDB.DataProcessor) error {
	batchSize := config.StoreBatchNormal
	if len(chunks) > config.LargePointThreshold {
		batchSize = config.StoreBatchSmall
	}

	for start := 0; start < len(chunks); start += batchSize {
		end := start + batchSize
		if end > len(chunks) {
			end = len(chunks)
		}
		if err := db.UpsertBatch(ctx, chunks[start:end], vectors[start:end]); err != nil {
			return err
		}
		if end < len(chunks) {
			if err := yield(ctx); err != nil {
				return err
			}
		}
	}
	return nil
}

// yield is a cooperative scheduling point between batches, a courtesy rather
// than a correctness requirement.
func yield(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(10 * time.Millisecond):
		return nil
	}
}

// removeTempFile retries once after a short delay to ride out transient lock
// contention, then gives up silently.
func removeTempFile(path string, logger *logger_i.Logger) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		time.Sleep(100 * time.Millisecond)
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			logger.Warn("could not remove temp file", "path", path, "error", err)
		}
	}
}
