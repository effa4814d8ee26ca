package adapter

import (
	"github.com/pebblebot/pebble/internal/api"
	"github.com/pebblebot/pebble/internal/chat"
	"github.com/pebblebot/pebble/internal/domain/chatModel"
	"github.com/pebblebot/pebble/internal/domain/commonModels"
)

func ToChatResponse(result chat.TurnResult) api.ChatResponse {
	return api.ChatResponse{Reply: result.Reply, Notices: result.Notices}
}

func ToIngestResponse(result chatModel.IngestResult) api.IngestResponse {
	return api.IngestResponse{
		Filename:       result.Filename,
		ChunksStored:   result.ChunksStored,
		PagesProcessed: result.PagesProcessed,
		TenantID:       result.TenantID,
	}
}

func ToHistoryStatusResponse(status chatModel.HistoryStatus) api.HistoryStatusResponse {
	return api.HistoryStatusResponse{
		MessageCount:    status.MessageCount,
		HasFileContext:  status.HasFileContext,
		HasImageContext: status.HasImageContext,
	}
}

func ToDocumentListResponse(files []commonModels.StoredFile) api.DocumentListResponse {
	entries := make([]api.StoredFileEntry, 0, len(files))
	for _, f := range files {
		entries = append(entries, api.StoredFileEntry{
			Filename:   f.Filename,
			ChunkCount: f.ChunkCount,
			PageCount:  f.PageCount,
			Timestamp:  f.Timestamp,
		})
	}
	return api.DocumentListResponse{Files: entries, Count: len(entries)}
}

func ToSearchResponse(query string, hits []commonModels.SearchHit) api.SearchResponse {
	results := make([]api.SearchHitEntry, 0, len(hits))
	for _, h := range hits {
		results = append(results, api.SearchHitEntry{
			Content:    h.Content,
			Filename:   h.Filename,
			PageNumber: h.PageNumber,
			ChunkIndex: h.ChunkIndex,
			Score:      h.Score,
			Timestamp:  h.Timestamp,
		})
	}
	return api.SearchResponse{Query: query, Results: results, Count: len(results)}
}

func BadRequest(code int, message string, detail string) api.ErrorResponse {
	return api.ErrorResponse{Code: code, Message: message, Detail: detail}
}
