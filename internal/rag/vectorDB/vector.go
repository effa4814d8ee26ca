package vectorDB

import (
	"context"

	"github.com/pebblebot/pebble/internal/domain/commonModels"
)

// DataProcessor is the narrow contract the RAG layer needs from a vector
// store. Every operation is tenant-scoped: implementations must apply an
// equality filter on the tenant field so one tenant's documents are never
// visible to another.
type DataProcessor interface {
	// IsAvailable is a lightweight liveness probe. Callers check it before
	// every operation and degrade to empty results instead of erroring.
	IsAvailable(ctx context.Context) bool

	// EnsureCollection idempotently creates the collection with the fixed
	// vector dimension, cosine distance and a tenant-keyed payload index.
	EnsureCollection(ctx context.Context) error

	UpsertBatch(ctx context.Context, chunks []commonModels.DocChunk, vectors [][]float32) error
	Query(ctx context.Context, tenantID string, vector []float32, limit uint64) ([]commonModels.SearchHit, error)
	Scroll(ctx context.Context, tenantID string, limit uint32) ([]commonModels.DocChunk, error)

	// Delete removes all points for the tenant, or only those matching
	// filename when it is non-empty.
	Delete(ctx context.Context, tenantID string, filename string) error
}
