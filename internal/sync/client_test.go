package sync

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"axiom/internal/domain"
)

func TestPush(t *testing.T) {
	var gotAuth string
	var gotBody pushRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/sync/push" || r.Method != http.MethodPost {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		_ = json.NewEncoder(w).Encode(map[string]bool{"success": true})
	}))
	defer srv.Close()

	c := New(srv.URL, "secret-token")
	state := domain.AppState{AppVersion: "1.0.0", UpdatedAt: "2024-01-08T12:00:00Z", Projects: []domain.Project{}}
	if err := c.Push(context.Background(), "user_x", state); err != nil {
		t.Fatalf("Push: %v", err)
	}
	if gotAuth != "Bearer secret-token" {
		t.Fatalf("auth header = %q", gotAuth)
	}
	if gotBody.UserID != "user_x" || gotBody.AppState.AppVersion != "1.0.0" {
		t.Fatalf("push body = %+v", gotBody)
	}
}

func TestPushRemoteError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "database not configured"})
	}))
	defer srv.Close()

	err := New(srv.URL, "").Push(context.Background(), "u", domain.AppState{})
	if err == nil || !strings.Contains(err.Error(), "database not configured") {
		t.Fatalf("err = %v, want remote message", err)
	}
}

func TestPull(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/sync/pull" || r.URL.Query().Get("userId") != "user_x" {
			t.Errorf("unexpected request: %s %s", r.URL.Path, r.URL.RawQuery)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"appState":  domain.AppState{AppVersion: "1.0.0", UpdatedAt: "2024-01-09T00:00:00Z"},
			"updatedAt": "2024-01-09T00:00:00Z",
		})
	}))
	defer srv.Close()

	state, updatedAt, err := New(srv.URL, "").Pull(context.Background(), "user_x")
	if err != nil {
		t.Fatalf("Pull: %v", err)
	}
	if state == nil || state.AppVersion != "1.0.0" || updatedAt != "2024-01-09T00:00:00Z" {
		t.Fatalf("pull = %+v %q", state, updatedAt)
	}
}

func TestPullNeverPushed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"appState": nil})
	}))
	defer srv.Close()

	state, _, err := New(srv.URL, "").Pull(context.Background(), "user_x")
	if err != nil || state != nil {
		t.Fatalf("pull of absent state = %+v, %v", state, err)
	}
}

func TestNotConfigured(t *testing.T) {
	c := New("", "")
	if err := c.Push(context.Background(), "u", domain.AppState{}); err != ErrNotConfigured {
		t.Fatalf("push err = %v", err)
	}
	if _, _, err := c.Pull(context.Background(), "u"); err != ErrNotConfigured {
		t.Fatalf("pull err = %v", err)
	}
}

func TestNewUserID(t *testing.T) {
	a, b := NewUserID(), NewUserID()
	if !strings.HasPrefix(a, "user_") || !strings.HasPrefix(b, "user_") {
		t.Fatalf("ids = %q %q", a, b)
	}
	if a == b {
		t.Fatalf("ids collide")
	}
}

func TestRemoteIsNewer(t *testing.T) {
	cases := []struct {
		remote, local string
		want          bool
	}{
		{"2024-01-09T00:00:00Z", "2024-01-08T00:00:00Z", true},
		{"2024-01-08T00:00:00Z", "2024-01-09T00:00:00Z", false},
		{"2024-01-08T00:00:00Z", "2024-01-08T00:00:00Z", false},
		{"2024-01-08T00:00:00Z", "", true},
		{"", "2024-01-08T00:00:00Z", false},
		{"garbage", "2024-01-08T00:00:00Z", false},
	}
	for _, tc := range cases {
		if got := RemoteIsNewer(tc.remote, tc.local); got != tc.want {
			t.Fatalf("RemoteIsNewer(%q, %q) = %v, want %v", tc.remote, tc.local, got, tc.want)
		}
	}
}
