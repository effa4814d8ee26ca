package commonModels

// DocChunk is the unit of stored knowledge: a bounded span of document text
// plus the metadata that rides along in the vector store payload. Immutable
// once stored; removal happens in bulk by tenant or by filename.
type DocChunk struct {
	ChunkID    string `json:"chunk_id"`
	TenantID   string `json:"tenant_id"`
	Filename   string `json:"filename"`
	PageNumber int    `json:"page_number"` //0 when the source has no pages (.txt)
	ChunkIndex int    `json:"chunk_index"`
	Content    string `json:"content"`
	UserID     string `json:"user_id"`
	ThreadID   string `json:"thread_id,omitempty"`
	Timestamp  int64  `json:"timestamp"`
}

// SearchHit is one ranked retrieval result with its similarity score.
type SearchHit struct {
	Content    string  `json:"content"`
	Filename   string  `json:"filename"`
	PageNumber int     `json:"page_number"`
	ChunkIndex int     `json:"chunk_index"`
	Score      float32 `json:"score"`
	Timestamp  int64   `json:"timestamp"`
}

// StoredFile aggregates a tenant's chunks per source filename.
type StoredFile struct {
	Filename   string `json:"filename"`
	ChunkCount int    `json:"chunks"`
	PageCount  int    `json:"pages"`
	Timestamp  int64  `json:"timestamp"`
}
