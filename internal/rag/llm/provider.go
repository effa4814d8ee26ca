package llm

import (
	"context"

	"github.com/pebblebot/pebble/internal/domain/chatModel"
)

// Provider is the opaque language-model collaborator. Chat replays the full
// conversation window; AnalyzeImage runs the vision model over one image.
type Provider interface {
	Chat(ctx context.Context, history []chatModel.ConversationEntry) (string, error)
	AnalyzeImage(ctx context.Context, imageDataURL string, userMessage string) (string, error)
}
