package ingest

import (
	"time"

	"github.com/google/uuid"
	"github.com/pebblebot/pebble/internal/config"
	"github.com/pebblebot/pebble/internal/domain/chatModel"
	"github.com/pebblebot/pebble/internal/domain/commonModels"
	"github.com/tmc/langchaingo/textsplitter"
)

func newSplitter() textsplitter.RecursiveCharacter {
	return textsplitter.NewRecursiveCharacter(
		textsplitter.WithChunkSize(config.ChunkSize),
		textsplitter.WithChunkOverlap(config.ChunkOverlap),
	)
}

// prepareChunks splits every extracted unit and stamps each chunk with the
// tenant partition key and its source metadata. The chunk index increments
// across the whole document, not per page.
func prepareChunks(pages []rawPage, filename string, scope chatModel.Scope) ([]commonModels.DocChunk, error) {
	splitter := newSplitter()
	now := time.Now().Unix()
	tenantID := scope.TenantID()

	var allChunks []commonModels.DocChunk
	for _, page := range pages {
		pieces, err := splitter.SplitText(page.Content)
		if err != nil {
			return nil, err
		}
		for _, text := range pieces {
			allChunks = append(allChunks, commonModels.DocChunk{
				ChunkID:    uuid.New().String(),
				TenantID:   tenantID,
				Filename:   filename,
				PageNumber: page.Number,
				ChunkIndex: len(allChunks),
				Content:    text,
				UserID:     scope.UserID,
				ThreadID:   scope.ThreadID,
				Timestamp:  now,
			})
		}
	}
	return allChunks, nil
}
