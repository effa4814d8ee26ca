package intent

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/pebblebot/pebble/internal/data/apicache"
)

func testServices(t *testing.T, handler http.HandlerFunc) (*Services, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	s := NewServices(apicache.NewTestCache(nil))
	s.githubBase = server.URL
	s.weatherBase = server.URL
	s.newsBase = server.URL
	s.onecompilerBase = server.URL
	s.githubToken = func() string { return "test-token" }
	s.weatherAPIKey = func() string { return "test-key" }
	s.newsAPIKey = func() string { return "test-key" }
	s.onecompilerToken = func() string { return "test-token" }
	return s, server
}

func TestDispatchIgnoresPlainChat(t *testing.T) {
	d := NewDispatcher(NewServices(apicache.NewTestCache(nil)))
	for _, msg := range []string{
		"hello there",
		"what did my document say about revenue",
		"summarize the pdf I uploaded",
	} {
		if reply, ok := d.Dispatch(context.Background(), msg); ok {
			t.Errorf("message %q unexpectedly matched: %q", msg, reply)
		}
	}
}

func TestDispatchGithubRepoInfo(t *testing.T) {
	var gotPath, gotAuth string
	s, _ := testServices(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`{"full_name":"golang/go","description":"The Go language","stargazers_count":120000,"forks_count":17000,"language":"Go","updated_at":"2025-06-01T10:00:00Z","html_url":"https://github.com/golang/go"}`))
	})
	d := NewDispatcher(s)

	reply, ok := d.Dispatch(context.Background(), "tell me about repo golang/go")
	if !ok {
		t.Fatal("expected a match")
	}
	if gotPath != "/repos/golang/go" {
		t.Errorf("path = %q", gotPath)
	}
	if gotAuth != "token test-token" {
		t.Errorf("auth header = %q", gotAuth)
	}
	if !strings.Contains(reply, "golang/go") || !strings.Contains(reply, "The Go language") {
		t.Errorf("reply = %q", reply)
	}
}

func TestDispatchWeatherDefaultsForecastDays(t *testing.T) {
	var gotDays string
	s, _ := testServices(t, func(w http.ResponseWriter, r *http.Request) {
		gotDays = r.URL.Query().Get("days")
		w.Write([]byte(`{"location":{"name":"Berlin","country":"Germany"},"forecast":{"forecastday":[]}}`))
	})
	d := NewDispatcher(s)

	if _, ok := d.Dispatch(context.Background(), "forecast for berlin"); !ok {
		t.Fatal("expected a match")
	}
	if gotDays != "3" {
		t.Errorf("days = %q, want 3", gotDays)
	}
}

func TestDispatchWeatherForecastExplicitDays(t *testing.T) {
	var gotDays string
	s, _ := testServices(t, func(w http.ResponseWriter, r *http.Request) {
		gotDays = r.URL.Query().Get("days")
		w.Write([]byte(`{"location":{"name":"Oslo","country":"Norway"},"forecast":{"forecastday":[]}}`))
	})
	d := NewDispatcher(s)

	if _, ok := d.Dispatch(context.Background(), "forecast for oslo for 5 days"); !ok {
		t.Fatal("expected a match")
	}
	if gotDays != "5" {
		t.Errorf("days = %q, want 5", gotDays)
	}
}

func TestDispatchMissingCredentialDegrades(t *testing.T) {
	s := NewServices(apicache.NewTestCache(nil))
	s.githubToken = func() string { return "" }
	d := NewDispatcher(s)

	reply, ok := d.Dispatch(context.Background(), "show repo torvalds/linux")
	if !ok {
		t.Fatal("expected a match")
	}
	if !strings.Contains(reply, "GitHub token not configured") {
		t.Errorf("reply = %q", reply)
	}
}

func TestDispatchExecuteCodeBlock(t *testing.T) {
	var gotBody string
	s, _ := testServices(t, func(w http.ResponseWriter, r *http.Request) {
		buf := make([]byte, r.ContentLength)
		r.Body.Read(buf)
		gotBody = string(buf)
		w.Write([]byte(`{"stdout":"42\n","executionTime":12}`))
	})
	d := NewDispatcher(s)

	message := "run this code\n```python\nprint(42)\n```"
	reply, ok := d.Dispatch(context.Background(), message)
	if !ok {
		t.Fatal("expected a match")
	}
	if !strings.Contains(gotBody, `"language":"python"`) {
		t.Errorf("payload = %q", gotBody)
	}
	if !strings.Contains(gotBody, "print(42)") {
		t.Errorf("payload missing code: %q", gotBody)
	}
	if !strings.Contains(reply, "42") || !strings.Contains(reply, "Execution time: 12ms") {
		t.Errorf("reply = %q", reply)
	}
}

func TestDispatchExecuteCodeWithoutCode(t *testing.T) {
	d := NewDispatcher(NewServices(apicache.NewTestCache(nil)))
	reply, ok := d.Dispatch(context.Background(), "can you run some code for me")
	if !ok {
		t.Fatal("expected a match")
	}
	if !strings.Contains(reply, "Please provide the code") {
		t.Errorf("reply = %q", reply)
	}
}

func TestRepeatedQuestionServedFromCache(t *testing.T) {
	calls := 0
	s, _ := testServices(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Write([]byte(`{"location":{"name":"Paris","country":"France","localtime":"2025-06-01 10:00"},"current":{"temp_c":21,"condition":{"text":"Sunny"}}}`))
	})
	d := NewDispatcher(s)

	for i := 0; i < 3; i++ {
		if _, ok := d.Dispatch(context.Background(), "weather in paris"); !ok {
			t.Fatal("expected a match")
		}
	}
	if calls != 1 {
		t.Errorf("upstream called %d times, want 1", calls)
	}
}

func TestExtractLimitCapsAtTen(t *testing.T) {
	if got := extractLimit("show 50 commits", `(\d+)\s+commits?`); got != 10 {
		t.Errorf("limit = %d, want 10", got)
	}
	if got := extractLimit("show commits", `(\d+)\s+commits?`); got != 5 {
		t.Errorf("default limit = %d, want 5", got)
	}
}
