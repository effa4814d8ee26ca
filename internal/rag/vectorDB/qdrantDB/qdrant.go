package qdrantDB

import (
	"context"
	"fmt"
	"strconv"

	"github.com/pebblebot/pebble/internal/config"
	"github.com/pebblebot/pebble/internal/domain/commonModels"
	"github.com/pebblebot/pebble/pkg/logger_i"
	"github.com/qdrant/go-client/qdrant"
)

var dimension = uint64(config.EmbeddingOutputDimensionality)

type ClientHolder struct {
	qObj           *qdrant.Client
	collectionName string
	logger         *logger_i.Logger
}

// NewClient dials qdrant and prepares the document collection. A nil return
// means the store is unreachable; the caller marks the RAG subsystem
// unavailable instead of crashing the process.
func NewClient(ctx context.Context) *ClientHolder {
	logger := logger_i.NewLogger("Qdrant")

	host := config.GetEnv("QDRANT_HOST", config.QdrantHost)
	port := config.QdrantGrpcPort
	if p, err := strconv.Atoi(config.GetEnv("QDRANT_PORT", "")); err == nil {
		port = p
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:     host,
		Port:     port,
		UseTLS:   config.QdrantUseTLS,
		PoolSize: uint(config.QdrantPoolSize),
	})
	if err != nil {
		logger.Error("could not instantiate qdrant client", "error", err)
		return nil
	}

	holder := &ClientHolder{
		qObj:           client,
		collectionName: config.DocumentCollectionName,
		logger:         logger,
	}

	if err := holder.EnsureCollection(ctx); err != nil {
		logger.Error("could not prepare collection", "collection", holder.collectionName, "error", err)
		return nil
	}

	go holder.closeOnDone(ctx)
	return holder
}

func (db *ClientHolder) closeOnDone(ctx context.Context) {
	<-ctx.Done()
	db.logger.Info("Shutting down Qdrant")
	if err := db.qObj.Close(); err != nil {
		db.logger.Error("could not close Qdrant", "error", err)
	}
}

func (db *ClientHolder) IsAvailable(ctx context.Context) bool {
	if db == nil || db.qObj == nil {
		return false
	}
	if _, err := db.qObj.HealthCheck(ctx); err != nil {
		db.logger.Warn("qdrant health check failed", "error", err)
		return false
	}
	return true
}

func (db *ClientHolder) EnsureCollection(ctx context.Context) error {
	exists, err := db.qObj.CollectionExists(ctx, db.collectionName)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	// Global HNSW graph is disabled (m=0) in favor of per-tenant graphs
	// (payload_m), so similarity search only ever walks one tenant's points.
	err = db.qObj.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: db.collectionName,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     dimension,
			Distance: qdrant.Distance_Cosine,
		}),
		HnswConfig: &qdrant.HnswConfigDiff{
			PayloadM: qdrant.PtrOf(uint64(16)),
			M:        qdrant.PtrOf(uint64(0)),
		},
	})
	if err != nil {
		return err
	}

	_, err = db.qObj.CreateFieldIndex(ctx, &qdrant.CreateFieldIndexCollection{
		CollectionName: db.collectionName,
		FieldName:      config.TenantPayloadField,
		FieldType:      qdrant.FieldType_FieldTypeKeyword.Enum(),
		FieldIndexParams: &qdrant.PayloadIndexParams{
			IndexParams: &qdrant.PayloadIndexParams_KeywordIndexParams{
				KeywordIndexParams: &qdrant.KeywordIndexParams{
					IsTenant: qdrant.PtrOf(true),
				},
			},
		},
		Wait: qdrant.PtrOf(true),
	})
	if err != nil {
		return err
	}

	db.logger.Info("Created collection", "collection", db.collectionName)
	return nil
}

func tenantFilter(tenantID string, filename string) *qdrant.Filter {
	must := []*qdrant.Condition{
		qdrant.NewMatch(config.TenantPayloadField, tenantID),
	}
	if filename != "" {
		must = append(must, qdrant.NewMatch("filename", filename))
	}
	return &qdrant.Filter{Must: must}
}

func (db *ClientHolder) UpsertBatch(ctx context.Context, chunks []commonModels.DocChunk, vectors [][]float32) error {
	if len(chunks) != len(vectors) {
		return fmt.Errorf("mismatch: got %d chunks but %d vectors", len(chunks), len(vectors))
	}

	points := make([]*qdrant.PointStruct, len(chunks))
	for i, chunk := range chunks {
		points[i] = &qdrant.PointStruct{
			Id:      qdrant.NewID(chunk.ChunkID),
			Vectors: qdrant.NewVectors(vectors[i]...),
			Payload: qdrant.NewValueMap(map[string]any{
				config.TenantPayloadField: chunk.TenantID,
				"filename":                chunk.Filename,
				"page_number":             int64(chunk.PageNumber),
				"chunk_index":             int64(chunk.ChunkIndex),
				"content":                 chunk.Content,
				"user_id":                 chunk.UserID,
				"thread_id":               chunk.ThreadID,
				"timestamp":               chunk.Timestamp,
			}),
		}
	}

	_, err := db.qObj.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: db.collectionName,
		Points:         points,
		Wait:           qdrant.PtrOf(true),
	})
	return err
}

func (db *ClientHolder) Query(ctx context.Context, tenantID string, vector []float32, limit uint64) ([]commonModels.SearchHit, error) {
	result, err := db.qObj.Query(ctx, &qdrant.QueryPoints{
		CollectionName: db.collectionName,
		Query:          qdrant.NewQuery(vector...),
		Filter:         tenantFilter(tenantID, ""),
		Limit:          qdrant.PtrOf(limit),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		db.logger.Error("Error querying Qdrant", "error", err)
		return nil, err
	}

	hits := make([]commonModels.SearchHit, 0, len(result))
	for _, point := range result {
		hits = append(hits, commonModels.SearchHit{
			Content:    point.Payload["content"].GetStringValue(),
			Filename:   point.Payload["filename"].GetStringValue(),
			PageNumber: int(point.Payload["page_number"].GetIntegerValue()),
			ChunkIndex: int(point.Payload["chunk_index"].GetIntegerValue()),
			Score:      point.Score,
			Timestamp:  point.Payload["timestamp"].GetIntegerValue(),
		})
	}
	return hits, nil
}

func (db *ClientHolder) Scroll(ctx context.Context, tenantID string, limit uint32) ([]commonModels.DocChunk, error) {
	points, err := db.qObj.Scroll(ctx, &qdrant.ScrollPoints{
		CollectionName: db.collectionName,
		Filter:         tenantFilter(tenantID, ""),
		Limit:          qdrant.PtrOf(limit),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		db.logger.Error("Error scrolling Qdrant", "error", err)
		return nil, err
	}

	chunks := make([]commonModels.DocChunk, 0, len(points))
	for _, point := range points {
		chunks = append(chunks, commonModels.DocChunk{
			TenantID:   tenantID,
			Filename:   point.Payload["filename"].GetStringValue(),
			PageNumber: int(point.Payload["page_number"].GetIntegerValue()),
			ChunkIndex: int(point.Payload["chunk_index"].GetIntegerValue()),
			Content:    point.Payload["content"].GetStringValue(),
			Timestamp:  point.Payload["timestamp"].GetIntegerValue(),
		})
	}
	return chunks, nil
}

func (db *ClientHolder) Delete(ctx context.Context, tenantID string, filename string) error {
	_, err := db.qObj.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: db.collectionName,
		Points:         qdrant.NewPointsSelectorFilter(tenantFilter(tenantID, filename)),
		Wait:           qdrant.PtrOf(true),
	})
	if err != nil {
		db.logger.Error("Error deleting points", "tenant", tenantID, "filename", filename, "error", err)
	}
	return err
}
