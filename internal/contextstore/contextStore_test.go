package contextstore

import (
	"fmt"
	"testing"
	"time"

	"github.com/pebblebot/pebble/internal/domain/chatModel"
)

func TestAppendTruncatesToWindow(t *testing.T) {
	s := New()
	for i := 0; i < 20; i++ {
		s.Append("user_1", chatModel.RoleUser, fmt.Sprintf("msg %d", i))
	}

	got := s.History("user_1")
	if len(got) != 16 {
		t.Fatalf("history length = %d; want 16", len(got))
	}
	if got[0].Content != "msg 4" {
		t.Errorf("oldest retained = %q; want %q", got[0].Content, "msg 4")
	}
	if got[15].Content != "msg 19" {
		t.Errorf("newest retained = %q; want %q", got[15].Content, "msg 19")
	}
}

func TestHistoryReturnsCopy(t *testing.T) {
	s := New()
	s.Append("user_1", chatModel.RoleUser, "original")

	h := s.History("user_1")
	h[0].Content = "mutated"

	if s.History("user_1")[0].Content != "original" {
		t.Error("History exposed internal slice")
	}
}

func TestThreadAndUserBundlesIndependent(t *testing.T) {
	s := New()
	user := chatModel.Scope{UserID: "42"}
	thread := chatModel.Scope{UserID: "42", ThreadID: "99"}

	s.Append(user.TenantID(), chatModel.RoleUser, "dm message")
	s.Append(thread.TenantID(), chatModel.RoleUser, "thread message")
	s.SetImageContext(thread.TenantID(), "a cat")

	if len(s.History(user.TenantID())) != 1 {
		t.Errorf("user history polluted: %v", s.History(user.TenantID()))
	}
	if s.ImageContext(user.TenantID()) != "" {
		t.Error("thread image context leaked into user bundle")
	}
	if s.ImageContext(thread.TenantID()) != "a cat" {
		t.Error("thread image context missing")
	}
}

func TestResetIsIdempotent(t *testing.T) {
	s := New()
	s.Reset("user_1")
	s.Reset("user_1") //never stored: both calls are no-ops

	s.Append("user_1", chatModel.RoleUser, "hello")
	s.SetFileContext("user_1", "file text")
	s.Reset("user_1")

	if _, ok := s.Status("user_1"); ok {
		t.Error("bundle survived reset")
	}
}

func TestResetRecreatedOnNextMessage(t *testing.T) {
	s := New()
	s.Append("user_1", chatModel.RoleUser, "first")
	s.Reset("user_1")
	s.Append("user_1", chatModel.RoleUser, "second")

	st, ok := s.Status("user_1")
	if !ok || st.MessageCount != 1 {
		t.Errorf("status after reset+append = %+v, %v; want 1 message", st, ok)
	}
}

func TestSweepEvictsStaleTenants(t *testing.T) {
	s := New()
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	s.now = func() time.Time { return base }
	s.Touch("user_old")
	s.Append("user_old", chatModel.RoleUser, "hi")

	s.now = func() time.Time { return base.Add(23 * time.Hour) }
	s.Touch("user_fresh")

	s.now = func() time.Time { return base.Add(25 * time.Hour) }
	if n := s.Sweep(); n != 1 {
		t.Fatalf("Sweep evicted %d; want 1", n)
	}

	if _, ok := s.Status("user_old"); ok {
		t.Error("stale tenant survived sweep")
	}
	if _, ok := s.Status("user_fresh"); !ok {
		t.Error("fresh tenant was evicted")
	}
}

func TestExpiredBoundary(t *testing.T) {
	now := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)
	ttl := 24 * time.Hour
	stamps := map[string]time.Time{
		"exactly": now.Add(-ttl),           //not strictly older: stays
		"older":   now.Add(-ttl - time.Second),
	}

	got := expired(now, stamps, ttl)
	if len(got) != 1 || got[0] != "older" {
		t.Errorf("expired = %v; want [older]", got)
	}
}

func TestStatusFields(t *testing.T) {
	s := New()
	s.Append("thread_7", chatModel.RoleUser, "q")
	s.Append("thread_7", chatModel.RoleAssistant, "a")
	s.SetImageContext("thread_7", "IMAGE ANALYSIS (x.png):\nstuff")

	st, ok := s.Status("thread_7")
	if !ok {
		t.Fatal("bundle missing")
	}
	if st.MessageCount != 2 || st.HasFileContext || !st.HasImageContext {
		t.Errorf("status = %+v", st)
	}
}
