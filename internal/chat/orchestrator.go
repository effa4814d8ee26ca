package chat

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pebblebot/pebble/internal/config"
	"github.com/pebblebot/pebble/internal/contextstore"
	"github.com/pebblebot/pebble/internal/domain/chatModel"
	"github.com/pebblebot/pebble/internal/intent"
	"github.com/pebblebot/pebble/internal/metrics"
	"github.com/pebblebot/pebble/internal/rag"
	"github.com/pebblebot/pebble/internal/rag/llm"
	"github.com/pebblebot/pebble/pkg/logger_i"
)

const pebblePreamble = "You are Pebble, a friendly and helpful assistant.\n" +
	"Keep responses concise and clear.\n" +
	"Always use proper Markdown formatting:\n" +
	"- Use **bold**, *italics*, `inline code`, and code blocks where appropriate.\n" +
	"- For code or terminal output, use triple backticks and specify the language. For example:\n" +
	"  ```cpp\n" +
	"  std::cout << \"Hello World\";\n" +
	"  ```\n" +
	"- Ensure formatting is clean and enhances readability.\n" +
	"Always make sure the final response is under 2000 characters. If needed, shorten or summarize the response while keeping it useful and readable.\n"

var imageExtensions = map[string]string{
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".gif":  "image/gif",
	".bmp":  "image/bmp",
	".webp": "image/webp",
}

// TurnResult carries the assistant's reply plus any attachment processing
// notices raised along the way (document stored, image analyzed).
type TurnResult struct {
	Reply   string
	Notices []string
}

// Orchestrator runs one chat turn end to end: intent short-circuit,
// attachment processing, context assembly, LLM call, history bookkeeping.
type Orchestrator struct {
	store   *contextstore.Store
	rag     rag.Service
	llm     llm.Provider
	intents *intent.Dispatcher
	logger  *logger_i.Logger
}

func NewOrchestrator(store *contextstore.Store, ragService rag.Service, provider llm.Provider, intents *intent.Dispatcher) *Orchestrator {
	return &Orchestrator{
		store:   store,
		rag:     ragService,
		llm:     provider,
		intents: intents,
		logger:  logger_i.NewLogger("Chat Orchestrator"),
	}
}

func (o *Orchestrator) HandleTurn(ctx context.Context, scope chatModel.Scope, message string, attachments []chatModel.Attachment) (TurnResult, error) {
	start := time.Now()
	tenantID := scope.TenantID()
	o.store.Touch(tenantID)

	// Tool-style questions never reach the LLM and never enter the history.
	if strings.TrimSpace(message) != "" && o.intents != nil {
		if reply, ok := o.intents.Dispatch(ctx, message); ok {
			metrics.CaptureTurnMetrics("intent", time.Since(start))
			return TurnResult{Reply: reply}, nil
		}
	}

	var notices []string
	for _, attachment := range attachments {
		if attachment.Size() > config.MaxUploadBytes {
			metrics.CaptureTurnMetrics("rejected", time.Since(start))
			return TurnResult{Reply: "File too large. Maximum size is 10MB."}, nil
		}

		if mime, ok := imageExtensions[strings.ToLower(filepath.Ext(attachment.Filename()))]; ok {
			notice, err := o.analyzeImage(ctx, tenantID, attachment, mime, message)
			if err != nil {
				metrics.CaptureTurnMetrics("error", time.Since(start))
				return TurnResult{Reply: fmt.Sprintf("Error analyzing image: %v", err), Notices: notices}, nil
			}
			notices = append(notices, notice)
			continue
		}

		result, err := o.rag.Ingest(ctx, attachment, scope)
		if err != nil {
			metrics.CaptureTurnMetrics("error", time.Since(start))
			return TurnResult{Reply: fmt.Sprintf("❌ %v", err), Notices: notices}, nil
		}
		pagesInfo := ""
		if result.PagesProcessed > 0 {
			pagesInfo = fmt.Sprintf(" (%d pages)", result.PagesProcessed)
		}
		notices = append(notices, fmt.Sprintf(
			"✅ Document stored in knowledge base: %s%s\n📊 Generated %d searchable chunks",
			result.Filename, pagesInfo, result.ChunksStored))
	}

	systemContext := o.buildSystemContext(ctx, tenantID, scope, message)
	o.store.Append(tenantID, chatModel.RoleUser, systemContext+"User: "+message)

	response, err := o.llm.Chat(ctx, o.store.History(tenantID))
	if err != nil {
		o.logger.Error("chat completion failed", "tenant", tenantID, "error", err)
		metrics.CaptureTurnMetrics("error", time.Since(start))
		return TurnResult{Notices: notices}, err
	}
	response = strings.TrimSpace(stripThinking(response))

	o.store.Append(tenantID, chatModel.RoleAssistant, response)
	o.store.Sweep()
	metrics.SetActiveConversations(o.store.Count())
	metrics.CaptureTurnMetrics("ok", time.Since(start))

	return TurnResult{Reply: response, Notices: notices}, nil
}

// buildSystemContext layers retrieved document context, the legacy whole-file
// slot and the latest image description ahead of the persona preamble.
func (o *Orchestrator) buildSystemContext(ctx context.Context, tenantID string, scope chatModel.Scope, message string) string {
	var sb strings.Builder

	if strings.TrimSpace(message) != "" {
		sb.WriteString(o.rag.GetContextForQuery(ctx, message, scope, config.MaxContextLength))
	}
	if fileContext := o.store.FileContext(tenantID); fileContext != "" {
		fmt.Fprintf(&sb, "LEGACY DOCUMENT CONTEXT:\n%s\n\n", fileContext)
	}
	if imageContext := o.store.ImageContext(tenantID); imageContext != "" {
		fmt.Fprintf(&sb, "%s\n\n", imageContext)
	}

	if sb.Len() > 0 {
		sb.WriteString("Use the above context when relevant to answer the user's questions. " +
			"For unrelated questions, do not mention that they are unrelated—just respond normally.\n\n")
	} else {
		sb.WriteString("Answer the user's question normally.\n\n")
	}
	sb.WriteString(pebblePreamble)
	return sb.String()
}

func (o *Orchestrator) analyzeImage(ctx context.Context, tenantID string, attachment chatModel.Attachment, mime, message string) (string, error) {
	tempPath := filepath.Join(os.TempDir(),
		fmt.Sprintf("pebble_img_%d_%s", time.Now().UnixNano(), filepath.Base(attachment.Filename())))
	if err := attachment.Save(tempPath); err != nil {
		return "", err
	}
	defer os.Remove(tempPath)

	raw, err := os.ReadFile(tempPath)
	if err != nil {
		return "", err
	}
	dataURL := fmt.Sprintf("data:%s;base64,%s", mime, base64.StdEncoding.EncodeToString(raw))

	start := time.Now()
	description, err := o.llm.AnalyzeImage(ctx, dataURL, message)
	metrics.CaptureExecutionMetrics("vision_analysis", time.Since(start))
	if err != nil {
		return "", err
	}
	description = strings.TrimSpace(stripThinking(description))

	o.store.SetImageContext(tenantID,
		fmt.Sprintf("IMAGE ANALYSIS (%s):\n%s", attachment.Filename(), description))
	return fmt.Sprintf("✅ Image analyzed and added to context: %s", attachment.Filename()), nil
}

// Reset clears the caller's conversation state and tenant documents. In a
// thread both the personal and the thread partitions go.
func (o *Orchestrator) Reset(ctx context.Context, scope chatModel.Scope) string {
	userScope := chatModel.Scope{UserID: scope.UserID}
	o.store.Reset(userScope.TenantID())
	userCleared := o.rag.DeleteTenantData(ctx, userScope)

	if !scope.InThread() {
		message := "✅ Your personal conversation and context have been reset."
		if userCleared {
			message += " Document knowledge base cleared."
		}
		return message
	}

	o.store.Reset(scope.TenantID())
	threadCleared := o.rag.DeleteTenantData(ctx, scope)

	message := "✅ Both your personal and thread conversation contexts have been reset."
	switch {
	case userCleared && threadCleared:
		message += " All document knowledge bases cleared."
	case userCleared || threadCleared:
		message += " Some document knowledge bases cleared."
	}
	return message
}

// HistoryStatus reports the size and context flags of the caller's window.
func (o *Orchestrator) HistoryStatus(scope chatModel.Scope) chatModel.HistoryStatus {
	status, _ := o.store.Status(scope.TenantID())
	return status
}

// stripThinking removes the first <think>...</think> span some models leak
// into their output. Later spans are left alone.
func stripThinking(s string) string {
	start := strings.Index(s, "<think>")
	end := strings.Index(s, "</think>")
	if start == -1 || end == -1 {
		return s
	}
	return s[:start] + s[end+len("</think>"):]
}
