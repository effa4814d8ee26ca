package contextstore

import (
	"sync"
	"time"

	"github.com/pebblebot/pebble/internal/config"
	"github.com/pebblebot/pebble/internal/domain/chatModel"
	"github.com/pebblebot/pebble/pkg/logger_i"
)

// bundle is everything the bot remembers about one tenant between turns.
// Created lazily on first touch, dropped whole on reset or expiry.
type bundle struct {
	entries         []chatModel.ConversationEntry
	fileContext     string //legacy whole-file text, pre-RAG path
	imageContext    string
	lastInteraction time.Time
}

// Store owns the per-tenant conversation state. The RWMutex makes map access
// safe under Go's preemptive scheduler; it does NOT serialize whole turns, so
// two concurrent messages from the same tenant may interleave their appends.
type Store struct {
	mu      sync.RWMutex
	bundles map[string]*bundle

	maxHistory int
	expiry     time.Duration
	now        func() time.Time
	logger     *logger_i.Logger
}

func New() *Store {
	return &Store{
		bundles:    make(map[string]*bundle),
		maxHistory: config.MaxHistory,
		expiry:     config.HistoryExpiry,
		now:        time.Now,
		logger:     logger_i.NewLogger("ContextStore"),
	}
}

func (s *Store) get(tenantID string) *bundle {
	b, ok := s.bundles[tenantID]
	if !ok {
		b = &bundle{}
		s.bundles[tenantID] = b
	}
	return b
}

// Touch marks the start of a turn and lazily creates the bundle.
func (s *Store) Touch(tenantID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.get(tenantID).lastInteraction = s.now()
}

// Append adds an entry and slides the window to the most recent maxHistory.
func (s *Store) Append(tenantID string, role chatModel.Role, content string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b := s.get(tenantID)
	b.entries = append(b.entries, chatModel.ConversationEntry{Role: role, Content: content})
	if len(b.entries) > s.maxHistory {
		b.entries = b.entries[len(b.entries)-s.maxHistory:]
	}
}

// History returns a copy of the tenant's window, oldest first.
func (s *Store) History(tenantID string) []chatModel.ConversationEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.bundles[tenantID]
	if !ok {
		return nil
	}
	out := make([]chatModel.ConversationEntry, len(b.entries))
	copy(out, b.entries)
	return out
}

func (s *Store) FileContext(tenantID string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if b, ok := s.bundles[tenantID]; ok {
		return b.fileContext
	}
	return ""
}

func (s *Store) SetFileContext(tenantID, text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.get(tenantID).fileContext = text
}

func (s *Store) ImageContext(tenantID string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if b, ok := s.bundles[tenantID]; ok {
		return b.imageContext
	}
	return ""
}

// SetImageContext overwrites the tenant's image-description slot; the latest
// analyzed image always wins.
func (s *Store) SetImageContext(tenantID, description string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.get(tenantID).imageContext = description
}

// Reset clears every field for the tenant. Resetting an absent tenant is a
// no-op; the next message recreates the bundle.
func (s *Store) Reset(tenantID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.bundles, tenantID)
}

func (s *Store) Status(tenantID string) (chatModel.HistoryStatus, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.bundles[tenantID]
	if !ok {
		return chatModel.HistoryStatus{}, false
	}
	return chatModel.HistoryStatus{
		MessageCount:    len(b.entries),
		HasFileContext:  b.fileContext != "",
		HasImageContext: b.imageContext != "",
	}, true
}

func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.bundles)
}

// Sweep evicts every tenant whose last interaction is older than the expiry
// window. Called opportunistically after each completed turn rather than on a
// timer.
func (s *Store) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	stamps := make(map[string]time.Time, len(s.bundles))
	for id, b := range s.bundles {
		stamps[id] = b.lastInteraction
	}
	victims := expired(s.now(), stamps, s.expiry)
	for _, id := range victims {
		delete(s.bundles, id)
	}
	if len(victims) > 0 {
		s.logger.Debug("evicted stale conversations", "count", len(victims))
	}
	return len(victims)
}

// expired is the pure core of the sweep: current time plus a snapshot of
// last-interaction stamps in, tenant ids to remove out.
func expired(now time.Time, stamps map[string]time.Time, ttl time.Duration) []string {
	var out []string
	for id, last := range stamps {
		if now.Sub(last) > ttl {
			out = append(out, id)
		}
	}
	return out
}
