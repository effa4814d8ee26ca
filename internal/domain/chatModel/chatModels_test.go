package chatModel

import "testing"

func TestTenantIDPartitioning(t *testing.T) {
	cases := []struct {
		name  string
		scope Scope
		want  string
	}{
		{"user only", Scope{UserID: "42"}, "user_42"},
		{"thread wins over user", Scope{UserID: "42", ThreadID: "99"}, "thread_99"},
		{"thread only", Scope{ThreadID: "99"}, "thread_99"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := c.scope.TenantID(); got != c.want {
				t.Errorf("TenantID() = %q, want %q", got, c.want)
			}
		})
	}
}

func TestInThread(t *testing.T) {
	if (Scope{UserID: "42"}).InThread() {
		t.Error("user-only scope reported as thread")
	}
	if !(Scope{UserID: "42", ThreadID: "99"}).InThread() {
		t.Error("thread scope not detected")
	}
}
