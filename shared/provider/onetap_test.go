package provider

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"google.golang.org/api/option"
)

// fakeIDToken builds an unsigned JWT carrying the given claims. The signature
// is never checked locally, so a static placeholder segment is enough.
func fakeIDToken(t *testing.T, claims map[string]any) string {
	t.Helper()

	encode := func(v any) string {
		b, err := json.Marshal(v)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		return base64.RawURLEncoding.EncodeToString(b)
	}

	header := map[string]string{"alg": "RS256", "typ": "JWT"}
	return encode(header) + "." + encode(claims) + ".sig"
}

func tokeninfoServer(t *testing.T, payload map[string]any) *httptest.Server {
	t.Helper()

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(payload)
	}))
}

func newTestOneTap(clientID string, ts *httptest.Server) *OneTap {
	return NewOneTap(clientID,
		option.WithEndpoint(ts.URL),
		option.WithHTTPClient(ts.Client()),
	)
}

func TestOneTapVerify_NoClientID(t *testing.T) {
	p := NewOneTap("")

	if _, err := p.Verify(context.Background(), "whatever"); err != ErrNotConfigured {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
}

func TestOneTapVerify_MissingEmail(t *testing.T) {
	ts := tokeninfoServer(t, map[string]any{
		"audience": "client-1",
		"user_id":  "sub-1",
	})
	defer ts.Close()

	p := newTestOneTap("client-1", ts)

	if _, err := p.Verify(context.Background(), fakeIDToken(t, map[string]any{"sub": "sub-1"})); err != ErrMissingEmail {
		t.Fatalf("expected ErrMissingEmail, got %v", err)
	}
}

func TestOneTapVerify_AudienceMismatch(t *testing.T) {
	ts := tokeninfoServer(t, map[string]any{
		"audience": "someone-else",
		"email":    "jane@example.com",
	})
	defer ts.Close()

	p := newTestOneTap("client-1", ts)

	if _, err := p.Verify(context.Background(), fakeIDToken(t, nil)); err != ErrInvalidAudience {
		t.Fatalf("expected ErrInvalidAudience, got %v", err)
	}
}

func TestOneTapVerify_MapsClaims(t *testing.T) {
	ts := tokeninfoServer(t, map[string]any{
		"audience":       "client-1",
		"email":          "jane@example.com",
		"verified_email": true,
		"user_id":        "sub-1",
	})
	defer ts.Close()

	credential := fakeIDToken(t, map[string]any{
		"sub":         "sub-1",
		"email":       "jane@example.com",
		"given_name":  "Jane",
		"family_name": "Doe",
		"picture":     "https://example.com/jane.png",
	})

	p := newTestOneTap("client-1", ts)

	identity, err := p.Verify(context.Background(), credential)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}

	if identity.Subject != "sub-1" {
		t.Errorf("subject: got %q", identity.Subject)
	}
	if identity.Email != "jane@example.com" {
		t.Errorf("email: got %q", identity.Email)
	}
	if !identity.EmailVerified {
		t.Error("expected email verified")
	}
	if identity.Name != "Jane Doe" {
		t.Errorf("name: got %q", identity.Name)
	}
	if identity.Picture != "https://example.com/jane.png" {
		t.Errorf("picture: got %q", identity.Picture)
	}
}

func TestOneTapVerify_NameFallsBackToNameClaim(t *testing.T) {
	ts := tokeninfoServer(t, map[string]any{
		"audience": "client-1",
		"email":    "jane@example.com",
		"user_id":  "sub-1",
	})
	defer ts.Close()

	credential := fakeIDToken(t, map[string]any{
		"sub":   "sub-1",
		"email": "jane@example.com",
		"name":  "Jane D.",
	})

	p := newTestOneTap("client-1", ts)

	identity, err := p.Verify(context.Background(), credential)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if identity.Name != "Jane D." {
		t.Errorf("name: got %q", identity.Name)
	}
}
