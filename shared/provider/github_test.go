package provider

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"golang.org/x/oauth2"
)

func githubTestServer(t *testing.T, user map[string]any, emails []map[string]any) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"access_token": "gho_test",
			"token_type":   "bearer",
		})
	})
	mux.HandleFunc("/user", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(user)
	})
	mux.HandleFunc("/user/emails", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(emails)
	})

	return httptest.NewServer(mux)
}

func newTestGitHub(ts *httptest.Server) *GitHub {
	p := NewGitHub("gh-id", "gh-secret", "http://localhost/api/auth/callback/github")
	p.cfg.Endpoint = oauth2.Endpoint{
		TokenURL:  ts.URL + "/token",
		AuthStyle: oauth2.AuthStyleInParams,
	}
	p.apiBase = ts.URL
	return p
}

func TestGitHubExchange_PublicEmail(t *testing.T) {
	ts := githubTestServer(t, map[string]any{
		"id":         int64(42),
		"login":      "octo",
		"name":       "Octo Cat",
		"email":      "octo@example.com",
		"avatar_url": "https://example.com/octo.png",
	}, nil)
	defer ts.Close()

	p := newTestGitHub(ts)

	identity, err := p.Exchange(context.Background(), "code-1")
	if err != nil {
		t.Fatalf("exchange: %v", err)
	}

	if identity.Subject != "42" {
		t.Errorf("subject: got %q", identity.Subject)
	}
	if identity.Email != "octo@example.com" {
		t.Errorf("email: got %q", identity.Email)
	}
	if identity.Name != "Octo Cat" {
		t.Errorf("name: got %q", identity.Name)
	}
	if identity.Picture != "https://example.com/octo.png" {
		t.Errorf("picture: got %q", identity.Picture)
	}
}

func TestGitHubExchange_PrivateEmailFallback(t *testing.T) {
	ts := githubTestServer(t, map[string]any{
		"id":    int64(7),
		"login": "ghost",
	}, []map[string]any{
		{"email": "old@example.com", "primary": false, "verified": true},
		{"email": "ghost@example.com", "primary": true, "verified": true},
	})
	defer ts.Close()

	p := newTestGitHub(ts)

	identity, err := p.Exchange(context.Background(), "code-1")
	if err != nil {
		t.Fatalf("exchange: %v", err)
	}

	if identity.Email != "ghost@example.com" {
		t.Errorf("email: got %q", identity.Email)
	}
	if !identity.EmailVerified {
		t.Error("expected email verified")
	}
	if identity.Name != "ghost" {
		t.Errorf("expected login fallback, got %q", identity.Name)
	}
}

func TestGitHubExchange_NoUsableEmail(t *testing.T) {
	ts := githubTestServer(t, map[string]any{
		"id":    int64(7),
		"login": "ghost",
	}, []map[string]any{
		{"email": "unverified@example.com", "primary": true, "verified": false},
	})
	defer ts.Close()

	p := newTestGitHub(ts)

	if _, err := p.Exchange(context.Background(), "code-1"); err == nil {
		t.Fatal("expected error for account without usable email")
	}
}
