package chatModel

import "fmt"

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ConversationEntry is one turn of dialogue as replayed to the model.
type ConversationEntry struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Scope identifies whose context a message operates on. ThreadID wins over
// UserID when set, so an active thread is its own knowledge base.
type Scope struct {
	UserID   string
	ThreadID string
}

func (s Scope) TenantID() string {
	if s.ThreadID != "" {
		return fmt.Sprintf("thread_%s", s.ThreadID)
	}
	return fmt.Sprintf("user_%s", s.UserID)
}

func (s Scope) InThread() bool {
	return s.ThreadID != ""
}

// Attachment is an uploaded file handle as delivered by the platform gateway.
type Attachment interface {
	Filename() string
	Size() int64
	Save(path string) error
}

type IngestResult struct {
	Filename       string `json:"filename"`
	ChunksStored   int    `json:"chunks_stored"`
	PagesProcessed int    `json:"pages_processed"`
	TenantID       string `json:"tenant_id"`
}

type HistoryStatus struct {
	MessageCount    int  `json:"message_count"`
	HasFileContext  bool `json:"has_file_context"`
	HasImageContext bool `json:"has_image_context"`
}
