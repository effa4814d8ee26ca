package rag

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/pebblebot/pebble/internal/domain/commonModels"
)

// ErrUnavailable marks the whole RAG subsystem as down (store unreachable or
// embedder not configured).
var ErrUnavailable = errors.New("RAG system is not available. Please ensure Qdrant is running.")

const (
	contextHeader  = "RELEVANT DOCUMENT CONTEXT:\n"
	contextTrailer = "Use the above document context when relevant to answer the user's questions. " +
		"For unrelated questions, do not mention that they are unrelated—just respond normally.\n\n"
)

// assembleContext walks hits in descending similarity order, keeps the first
// chunk per (filename, page) pair, and greedily appends formatted chunks
// until the next one would blow the budget. Chunks are never reordered or
// trimmed to fit.
func assembleContext(hits []commonModels.SearchHit, maxLength int) string {
	var parts []string
	currentLength := 0
	seenPages := make(map[string]bool)

	for _, hit := range hits {
		pageKey := fmt.Sprintf("%s_%d", hit.Filename, hit.PageNumber)
		if seenPages[pageKey] {
			continue
		}
		seenPages[pageKey] = true

		pageInfo := ""
		if hit.PageNumber > 0 {
			pageInfo = fmt.Sprintf(" page %d", hit.PageNumber)
		}
		chunkText := fmt.Sprintf("[%s%s]\n%s\n\n", hit.Filename, pageInfo, hit.Content)

		if currentLength+len(chunkText) > maxLength {
			break
		}
		parts = append(parts, chunkText)
		currentLength += len(chunkText)
	}

	if len(parts) == 0 {
		return ""
	}
	return contextHeader + strings.Join(parts, "") + contextTrailer
}

// aggregateFiles folds a tenant's scrolled chunks into one row per filename.
func aggregateFiles(chunks []commonModels.DocChunk) []commonModels.StoredFile {
	type fileAgg struct {
		chunkCount int
		pages      map[int]bool
		timestamp  int64
	}
	files := make(map[string]*fileAgg)

	for _, chunk := range chunks {
		agg, ok := files[chunk.Filename]
		if !ok {
			agg = &fileAgg{pages: make(map[int]bool), timestamp: chunk.Timestamp}
			files[chunk.Filename] = agg
		}
		agg.chunkCount++
		if chunk.PageNumber > 0 {
			agg.pages[chunk.PageNumber] = true
		}
	}

	result := make([]commonModels.StoredFile, 0, len(files))
	for filename, agg := range files {
		result = append(result, commonModels.StoredFile{
			Filename:   filename,
			ChunkCount: agg.chunkCount,
			PageCount:  len(agg.pages),
			Timestamp:  agg.timestamp,
		})
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Filename < result[j].Filename })
	return result
}
