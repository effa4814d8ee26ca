package rag

import (
	"context"
	"strings"
	"testing"

	"github.com/pebblebot/pebble/internal/domain/chatModel"
	"github.com/pebblebot/pebble/internal/domain/commonModels"
)

type memoryVectorDB struct {
	available bool
	chunks    []commonModels.DocChunk
}

func (m *memoryVectorDB) IsAvailable(ctx context.Context) bool       { return m.available }
func (m *memoryVectorDB) EnsureCollection(ctx context.Context) error { return nil }

func (m *memoryVectorDB) UpsertBatch(ctx context.Context, chunks []commonModels.DocChunk, vectors [][]float32) error {
	m.chunks = append(m.chunks, chunks...)
	return nil
}

func (m *memoryVectorDB) Query(ctx context.Context, tenantID string, vector []float32, limit uint64) ([]commonModels.SearchHit, error) {
	var hits []commonModels.SearchHit
	for _, c := range m.chunks {
		if c.TenantID != tenantID {
			continue
		}
		hits = append(hits, commonModels.SearchHit{
			Content:    c.Content,
			Filename:   c.Filename,
			PageNumber: c.PageNumber,
			ChunkIndex: c.ChunkIndex,
			Score:      0.9,
			Timestamp:  c.Timestamp,
		})
		if uint64(len(hits)) == limit {
			break
		}
	}
	return hits, nil
}

func (m *memoryVectorDB) Scroll(ctx context.Context, tenantID string, limit uint32) ([]commonModels.DocChunk, error) {
	var out []commonModels.DocChunk
	for _, c := range m.chunks {
		if c.TenantID == tenantID {
			out = append(out, c)
		}
		if uint32(len(out)) == limit {
			break
		}
	}
	return out, nil
}

func (m *memoryVectorDB) Delete(ctx context.Context, tenantID, filename string) error {
	kept := m.chunks[:0]
	for _, c := range m.chunks {
		if c.TenantID == tenantID && (filename == "" || c.Filename == filename) {
			continue
		}
		kept = append(kept, c)
	}
	m.chunks = kept
	return nil
}

type stubEmbedder struct{}

func (stubEmbedder) GetEmbedding(ctx context.Context, query string) ([]float32, error) {
	return []float32{0.1, 0.2}, nil
}

func (stubEmbedder) BatchEmbedding(ctx context.Context, chunks []string) ([][]float32, error) {
	out := make([][]float32, len(chunks))
	for i := range chunks {
		out[i] = []float32{0.1, 0.2}
	}
	return out, nil
}

func seededDB() *memoryVectorDB {
	return &memoryVectorDB{
		available: true,
		chunks: []commonModels.DocChunk{
			{ChunkID: "1", TenantID: "user_alice", Filename: "a.txt", Content: "alpha", ChunkIndex: 0},
			{ChunkID: "2", TenantID: "user_alice", Filename: "a.txt", Content: "beta", ChunkIndex: 1},
			{ChunkID: "3", TenantID: "user_alice", Filename: "b.pdf", PageNumber: 2, Content: "gamma"},
			{ChunkID: "4", TenantID: "user_bob", Filename: "secret.txt", Content: "bob only"},
		},
	}
}

func TestQueryDocumentsIsTenantScoped(t *testing.T) {
	svc := NewService(seededDB(), stubEmbedder{})

	hits := svc.QueryDocuments(context.Background(), "anything", chatModel.Scope{UserID: "alice"}, 10)
	if len(hits) != 3 {
		t.Fatalf("alice got %d hits, want 3", len(hits))
	}
	for _, h := range hits {
		if h.Filename == "secret.txt" {
			t.Fatal("alice saw bob's document")
		}
	}
}

func TestServiceDegradesWhenStoreDown(t *testing.T) {
	svc := NewService(&memoryVectorDB{available: false}, stubEmbedder{})
	ctx := context.Background()
	scope := chatModel.Scope{UserID: "alice"}

	if svc.Available(ctx) {
		t.Fatal("service reported available with store down")
	}
	if hits := svc.QueryDocuments(ctx, "q", scope, 5); hits != nil {
		t.Errorf("expected nil hits, got %v", hits)
	}
	if got := svc.GetContextForQuery(ctx, "q", scope, 3000); got != "" {
		t.Errorf("expected empty context, got %q", got)
	}
	if files := svc.ListStoredFiles(ctx, scope); files != nil {
		t.Errorf("expected nil file list, got %v", files)
	}
	if svc.DeleteTenantData(ctx, scope) {
		t.Error("delete reported success with store down")
	}
}

func TestServiceDegradesWithoutEmbedder(t *testing.T) {
	svc := NewService(seededDB(), nil)
	if svc.Available(context.Background()) {
		t.Fatal("service reported available with nil embedder")
	}
}

func TestIngestReturnsUnavailable(t *testing.T) {
	svc := NewService(&memoryVectorDB{available: false}, stubEmbedder{})
	_, err := svc.Ingest(context.Background(), nil, chatModel.Scope{UserID: "u"})
	if err != ErrUnavailable {
		t.Fatalf("err = %v, want ErrUnavailable", err)
	}
}

func TestDeleteFileRemovesOnlyThatFile(t *testing.T) {
	db := seededDB()
	svc := NewService(db, stubEmbedder{})
	scope := chatModel.Scope{UserID: "alice"}

	if !svc.DeleteFile(context.Background(), scope, "a.txt") {
		t.Fatal("delete reported failure")
	}
	files := svc.ListStoredFiles(context.Background(), scope)
	if len(files) != 1 || files[0].Filename != "b.pdf" {
		t.Fatalf("remaining files = %v, want only b.pdf", files)
	}
	if len(db.chunks) != 2 {
		t.Errorf("bob's data disturbed, %d chunks remain", len(db.chunks))
	}
}

func TestAssembleContextFormatsHeaderAndPages(t *testing.T) {
	hits := []commonModels.SearchHit{
		{Filename: "doc.pdf", PageNumber: 3, Content: "first chunk"},
		{Filename: "notes.txt", PageNumber: 0, Content: "second chunk"},
	}
	got := assembleContext(hits, 3000)

	if !strings.HasPrefix(got, "RELEVANT DOCUMENT CONTEXT:\n") {
		t.Errorf("missing header: %q", got)
	}
	if !strings.Contains(got, "[doc.pdf page 3]\nfirst chunk\n\n") {
		t.Errorf("missing paged chunk: %q", got)
	}
	if !strings.Contains(got, "[notes.txt]\nsecond chunk\n\n") {
		t.Errorf("page 0 should have no page suffix: %q", got)
	}
	if !strings.Contains(got, "just respond normally.\n\n") {
		t.Errorf("missing trailer: %q", got)
	}
}

func TestAssembleContextDeduplicatesPages(t *testing.T) {
	hits := []commonModels.SearchHit{
		{Filename: "doc.pdf", PageNumber: 1, Content: "best match", Score: 0.95},
		{Filename: "doc.pdf", PageNumber: 1, Content: "worse match", Score: 0.80},
		{Filename: "doc.pdf", PageNumber: 2, Content: "other page", Score: 0.70},
	}
	got := assembleContext(hits, 3000)

	if strings.Contains(got, "worse match") {
		t.Error("duplicate page chunk was not dropped")
	}
	if !strings.Contains(got, "best match") || !strings.Contains(got, "other page") {
		t.Errorf("expected winners present: %q", got)
	}
}

func TestAssembleContextStopsAtBudget(t *testing.T) {
	big := strings.Repeat("x", 200)
	hits := []commonModels.SearchHit{
		{Filename: "a.txt", Content: big},
		{Filename: "b.txt", Content: big},
		{Filename: "c.txt", Content: big},
	}
	// Budget fits roughly two formatted chunks; the third must be cut, and
	// the header/trailer ride on top of the budget.
	got := assembleContext(hits, 450)

	if !strings.Contains(got, "[a.txt]") || !strings.Contains(got, "[b.txt]") {
		t.Errorf("expected first two chunks: %q", got)
	}
	if strings.Contains(got, "[c.txt]") {
		t.Error("third chunk should not fit the budget")
	}
}

func TestAssembleContextEmptyOnNoHits(t *testing.T) {
	if got := assembleContext(nil, 3000); got != "" {
		t.Errorf("expected empty string, got %q", got)
	}
}

func TestAggregateFiles(t *testing.T) {
	chunks := []commonModels.DocChunk{
		{Filename: "b.pdf", PageNumber: 1, Timestamp: 100},
		{Filename: "b.pdf", PageNumber: 1, Timestamp: 100},
		{Filename: "b.pdf", PageNumber: 2, Timestamp: 100},
		{Filename: "a.txt", PageNumber: 0, Timestamp: 200},
	}
	files := aggregateFiles(chunks)

	if len(files) != 2 {
		t.Fatalf("got %d files, want 2", len(files))
	}
	if files[0].Filename != "a.txt" || files[1].Filename != "b.pdf" {
		t.Errorf("files not sorted by name: %v", files)
	}
	if files[1].ChunkCount != 3 || files[1].PageCount != 2 {
		t.Errorf("b.pdf aggregation = %+v", files[1])
	}
	if files[0].ChunkCount != 1 || files[0].PageCount != 0 {
		t.Errorf("a.txt aggregation = %+v", files[0])
	}
}
