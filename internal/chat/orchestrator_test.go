package chat

import (
	"context"
	"os"
	"strings"
	"testing"

	"github.com/pebblebot/pebble/internal/contextstore"
	"github.com/pebblebot/pebble/internal/data/apicache"
	"github.com/pebblebot/pebble/internal/domain/chatModel"
	"github.com/pebblebot/pebble/internal/domain/commonModels"
	"github.com/pebblebot/pebble/internal/intent"
)

type mockRAG struct {
	getContextFunc func(ctx context.Context, query string, scope chatModel.Scope, maxLength int) string
	ingestFunc     func(ctx context.Context, attachment chatModel.Attachment, scope chatModel.Scope) (chatModel.IngestResult, error)
	deleteFunc     func(ctx context.Context, scope chatModel.Scope) bool
}

func (m *mockRAG) Available(ctx context.Context) bool { return true }

func (m *mockRAG) Ingest(ctx context.Context, attachment chatModel.Attachment, scope chatModel.Scope) (chatModel.IngestResult, error) {
	if m.ingestFunc != nil {
		return m.ingestFunc(ctx, attachment, scope)
	}
	return chatModel.IngestResult{}, nil
}

func (m *mockRAG) GetContextForQuery(ctx context.Context, query string, scope chatModel.Scope, maxLength int) string {
	if m.getContextFunc != nil {
		return m.getContextFunc(ctx, query, scope, maxLength)
	}
	return ""
}

func (m *mockRAG) QueryDocuments(ctx context.Context, query string, scope chatModel.Scope, limit uint64) []commonModels.SearchHit {
	return nil
}

func (m *mockRAG) ListStoredFiles(ctx context.Context, scope chatModel.Scope) []commonModels.StoredFile {
	return nil
}

func (m *mockRAG) DeleteTenantData(ctx context.Context, scope chatModel.Scope) bool {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, scope)
	}
	return false
}

func (m *mockRAG) DeleteFile(ctx context.Context, scope chatModel.Scope, filename string) bool {
	return false
}

type mockProvider struct {
	chatFunc         func(ctx context.Context, history []chatModel.ConversationEntry) (string, error)
	analyzeImageFunc func(ctx context.Context, imageDataURL, userMessage string) (string, error)
}

func (m *mockProvider) Chat(ctx context.Context, history []chatModel.ConversationEntry) (string, error) {
	if m.chatFunc != nil {
		return m.chatFunc(ctx, history)
	}
	return "ok", nil
}

func (m *mockProvider) AnalyzeImage(ctx context.Context, imageDataURL, userMessage string) (string, error) {
	if m.analyzeImageFunc != nil {
		return m.analyzeImageFunc(ctx, imageDataURL, userMessage)
	}
	return "a picture", nil
}

type imageAttachment struct {
	name string
	data []byte
}

func (a *imageAttachment) Filename() string { return a.name }
func (a *imageAttachment) Size() int64      { return int64(len(a.data)) }
func (a *imageAttachment) Save(path string) error {
	return os.WriteFile(path, a.data, 0o644)
}

func newTestOrchestrator(ragService *mockRAG, provider *mockProvider) (*Orchestrator, *contextstore.Store) {
	store := contextstore.New()
	return NewOrchestrator(store, ragService, provider, intent.NewDispatcher(intent.NewServices(apicache.NewTestCache(nil)))), store
}

func TestPlainTurnAppendsBothRoles(t *testing.T) {
	var seenHistory []chatModel.ConversationEntry
	provider := &mockProvider{
		chatFunc: func(ctx context.Context, history []chatModel.ConversationEntry) (string, error) {
			seenHistory = history
			return "hi there", nil
		},
	}
	o, store := newTestOrchestrator(&mockRAG{}, provider)
	scope := chatModel.Scope{UserID: "u1"}

	result, err := o.HandleTurn(context.Background(), scope, "hello", nil)
	if err != nil {
		t.Fatal(err)
	}
	if result.Reply != "hi there" {
		t.Errorf("reply = %q", result.Reply)
	}

	if len(seenHistory) != 1 {
		t.Fatalf("llm saw %d entries, want 1", len(seenHistory))
	}
	if !strings.Contains(seenHistory[0].Content, "You are Pebble") {
		t.Error("persona preamble missing from user message")
	}
	if !strings.HasSuffix(seenHistory[0].Content, "User: hello") {
		t.Errorf("user message = %q", seenHistory[0].Content)
	}
	if !strings.Contains(seenHistory[0].Content, "Answer the user's question normally.") {
		t.Error("no-context fallback line missing")
	}

	history := store.History(scope.TenantID())
	if len(history) != 2 || history[1].Role != chatModel.RoleAssistant || history[1].Content != "hi there" {
		t.Errorf("stored history = %+v", history)
	}
}

func TestTurnStripsThinkingSpan(t *testing.T) {
	provider := &mockProvider{
		chatFunc: func(ctx context.Context, history []chatModel.ConversationEntry) (string, error) {
			return "<think>internal musing</think>  the answer", nil
		},
	}
	o, _ := newTestOrchestrator(&mockRAG{}, provider)

	result, err := o.HandleTurn(context.Background(), chatModel.Scope{UserID: "u1"}, "question", nil)
	if err != nil {
		t.Fatal(err)
	}
	if result.Reply != "the answer" {
		t.Errorf("reply = %q", result.Reply)
	}
}

func TestRetrievedContextPrecedesPreamble(t *testing.T) {
	ragService := &mockRAG{
		getContextFunc: func(ctx context.Context, query string, scope chatModel.Scope, maxLength int) string {
			return "RELEVANT DOCUMENT CONTEXT:\n[doc.pdf]\nsome facts\n\n"
		},
	}
	var seen string
	provider := &mockProvider{
		chatFunc: func(ctx context.Context, history []chatModel.ConversationEntry) (string, error) {
			seen = history[len(history)-1].Content
			return "ok", nil
		},
	}
	o, _ := newTestOrchestrator(ragService, provider)

	if _, err := o.HandleTurn(context.Background(), chatModel.Scope{UserID: "u1"}, "what do my docs say", nil); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(seen, "RELEVANT DOCUMENT CONTEXT:") {
		t.Error("retrieved context missing")
	}
	if !strings.Contains(seen, "Use the above context when relevant") {
		t.Error("context instruction missing")
	}
	if strings.Contains(seen, "Answer the user's question normally.") {
		t.Error("fallback line present despite context")
	}
}

func TestIntentShortCircuitSkipsHistory(t *testing.T) {
	o, store := newTestOrchestrator(&mockRAG{}, &mockProvider{
		chatFunc: func(ctx context.Context, history []chatModel.ConversationEntry) (string, error) {
			t.Fatal("LLM must not be called for an intent match")
			return "", nil
		},
	})
	scope := chatModel.Scope{UserID: "u1"}

	// no NEWS_API_KEY in the test environment, so the match degrades politely
	result, err := o.HandleTurn(context.Background(), scope, "latest tech news", nil)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(result.Reply, "News API key not configured") {
		t.Errorf("reply = %q", result.Reply)
	}
	if got := store.History(scope.TenantID()); len(got) != 0 {
		t.Errorf("intent turn leaked into history: %+v", got)
	}
}

func TestOversizedAttachmentRejected(t *testing.T) {
	o, _ := newTestOrchestrator(&mockRAG{}, &mockProvider{})
	oversized := &sizedAttachment{name: "huge.txt", size: 11 * 1024 * 1024}
	result, err := o.HandleTurn(context.Background(), chatModel.Scope{UserID: "u1"}, "take this", []chatModel.Attachment{oversized})
	if err != nil {
		t.Fatal(err)
	}
	if result.Reply != "File too large. Maximum size is 10MB." {
		t.Errorf("reply = %q", result.Reply)
	}
}

type sizedAttachment struct {
	name string
	size int64
}

func (a *sizedAttachment) Filename() string       { return a.name }
func (a *sizedAttachment) Size() int64            { return a.size }
func (a *sizedAttachment) Save(path string) error { return nil }

func TestDocumentAttachmentIngestNotice(t *testing.T) {
	ragService := &mockRAG{
		ingestFunc: func(ctx context.Context, attachment chatModel.Attachment, scope chatModel.Scope) (chatModel.IngestResult, error) {
			return chatModel.IngestResult{Filename: attachment.Filename(), ChunksStored: 12, PagesProcessed: 3}, nil
		},
	}
	o, _ := newTestOrchestrator(ragService, &mockProvider{})

	doc := &imageAttachment{name: "report.pdf", data: []byte("pdf bytes")}
	result, err := o.HandleTurn(context.Background(), chatModel.Scope{UserID: "u1"}, "here you go", []chatModel.Attachment{doc})
	if err != nil {
		t.Fatal(err)
	}
	if len(result.Notices) != 1 {
		t.Fatalf("notices = %v", result.Notices)
	}
	if !strings.Contains(result.Notices[0], "report.pdf (3 pages)") ||
		!strings.Contains(result.Notices[0], "12 searchable chunks") {
		t.Errorf("notice = %q", result.Notices[0])
	}
}

func TestImageAttachmentEntersContext(t *testing.T) {
	var gotDataURL string
	provider := &mockProvider{
		analyzeImageFunc: func(ctx context.Context, imageDataURL, userMessage string) (string, error) {
			gotDataURL = imageDataURL
			return "a red bicycle", nil
		},
	}
	o, store := newTestOrchestrator(&mockRAG{}, provider)
	scope := chatModel.Scope{UserID: "u1"}

	img := &imageAttachment{name: "bike.png", data: []byte{0x89, 0x50, 0x4e, 0x47}}
	result, err := o.HandleTurn(context.Background(), scope, "what is this", []chatModel.Attachment{img})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(gotDataURL, "data:image/png;base64,") {
		t.Errorf("data url = %q", gotDataURL)
	}
	if len(result.Notices) != 1 || !strings.Contains(result.Notices[0], "bike.png") {
		t.Errorf("notices = %v", result.Notices)
	}

	imageContext := store.ImageContext(scope.TenantID())
	if !strings.HasPrefix(imageContext, "IMAGE ANALYSIS (bike.png):\n") ||
		!strings.Contains(imageContext, "a red bicycle") {
		t.Errorf("image context = %q", imageContext)
	}
}

func TestResetPersonalOnly(t *testing.T) {
	deleted := map[string]bool{}
	ragService := &mockRAG{
		deleteFunc: func(ctx context.Context, scope chatModel.Scope) bool {
			deleted[scope.TenantID()] = true
			return true
		},
	}
	o, store := newTestOrchestrator(ragService, &mockProvider{})
	scope := chatModel.Scope{UserID: "u1"}
	store.Append(scope.TenantID(), chatModel.RoleUser, "old")

	message := o.Reset(context.Background(), scope)
	if message != "✅ Your personal conversation and context have been reset. Document knowledge base cleared." {
		t.Errorf("message = %q", message)
	}
	if !deleted["user_u1"] || deleted["thread_t1"] {
		t.Errorf("deleted tenants = %v", deleted)
	}
	if got := store.History(scope.TenantID()); len(got) != 0 {
		t.Errorf("history survived reset: %+v", got)
	}
}

func TestResetInThreadClearsBothPartitions(t *testing.T) {
	deleted := map[string]bool{}
	ragService := &mockRAG{
		deleteFunc: func(ctx context.Context, scope chatModel.Scope) bool {
			deleted[scope.TenantID()] = true
			return scope.InThread() // only the thread partition had documents
		},
	}
	o, _ := newTestOrchestrator(ragService, &mockProvider{})

	message := o.Reset(context.Background(), chatModel.Scope{UserID: "u1", ThreadID: "t1"})
	if !strings.Contains(message, "Both your personal and thread conversation contexts have been reset.") {
		t.Errorf("message = %q", message)
	}
	if !strings.Contains(message, "Some document knowledge bases cleared.") {
		t.Errorf("message = %q", message)
	}
	if !deleted["user_u1"] || !deleted["thread_t1"] {
		t.Errorf("deleted tenants = %v", deleted)
	}
}

func TestStripThinking(t *testing.T) {
	cases := []struct{ in, want string }{
		{"plain reply", "plain reply"},
		{"<think>a</think>done", "done"},
		{"before<think>a</think>after", "beforeafter"},
		{"<think>unterminated", "<think>unterminated"},
	}
	for _, c := range cases {
		if got := stripThinking(c.in); got != c.want {
			t.Errorf("stripThinking(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}
