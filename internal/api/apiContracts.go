package api

type ChatRequest struct {
	Message  string `json:"message" example:"what does my contract say about notice periods?"`
	UserID   string `json:"user_id" validate:"required" example:"314159"`
	ThreadID string `json:"thread_id,omitempty" example:"265358"`
}

type ChatResponse struct {
	Reply   string   `json:"reply"`
	Notices []string `json:"notices,omitempty"`
}

type ResetRequest struct {
	UserID   string `json:"user_id" validate:"required" example:"314159"`
	ThreadID string `json:"thread_id,omitempty" example:"265358"`
}

type ResetResponse struct {
	Message string `json:"message" example:"✅ Your personal conversation and context have been reset."`
}

type IngestResponse struct {
	Filename       string `json:"filename" example:"contract.pdf"`
	ChunksStored   int    `json:"chunks_stored" example:"42"`
	PagesProcessed int    `json:"pages_processed" example:"7"`
	TenantID       string `json:"tenant_id" example:"user_314159"`
}

type HistoryStatusResponse struct {
	MessageCount    int  `json:"message_count" example:"8"`
	HasFileContext  bool `json:"has_file_context" example:"false"`
	HasImageContext bool `json:"has_image_context" example:"true"`
}

type StoredFileEntry struct {
	Filename   string `json:"filename" example:"contract.pdf"`
	ChunkCount int    `json:"chunk_count" example:"42"`
	PageCount  int    `json:"page_count" example:"7"`
	Timestamp  int64  `json:"timestamp" example:"1748770800"`
}

type DocumentListResponse struct {
	Files []StoredFileEntry `json:"files"`
	Count int               `json:"count" example:"2"`
}

type SearchHitEntry struct {
	Content    string  `json:"content"`
	Filename   string  `json:"filename" example:"contract.pdf"`
	PageNumber int     `json:"page_number,omitempty" example:"3"`
	ChunkIndex int     `json:"chunk_index" example:"11"`
	Score      float32 `json:"score" example:"0.83"`
	Timestamp  int64   `json:"timestamp" example:"1748770800"`
}

type SearchResponse struct {
	Query   string           `json:"query"`
	Results []SearchHitEntry `json:"results"`
	Count   int              `json:"count" example:"5"`
}

type DeletionResponse struct {
	Message string `json:"message" example:"✅ Deleted 'contract.pdf' from your knowledge base."`
}

type ErrorResponse struct {
	Code    int    `json:"code" example:"400"`
	Message string `json:"message" example:"user_id is required"`
	Detail  string `json:"detail,omitempty"`
}
