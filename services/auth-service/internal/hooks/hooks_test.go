package hooks_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/nonthaphat/launchkit-api/services/auth-service/internal/hooks"
	"github.com/nonthaphat/launchkit-api/services/auth-service/internal/model"
	"github.com/nonthaphat/launchkit-api/services/auth-service/pkg/types"
	"github.com/nonthaphat/launchkit-api/shared/provider"
)

type stubUserRepo struct {
	saved   *model.User
	created bool
	err     error
	calls   int
}

func (s *stubUserRepo) UpsertUser(_ context.Context, user *model.User) (*model.User, bool, error) {
	s.calls++
	if s.err != nil {
		return nil, false, s.err
	}
	s.saved = user
	return user, s.created, nil
}

func (s *stubUserRepo) GetUserByUUID(context.Context, string) (*model.User, error) {
	return nil, errors.New("not implemented")
}

func (s *stubUserRepo) GetUserByEmail(context.Context, string) (*model.User, error) {
	return nil, errors.New("not implemented")
}

type stubVerifier struct {
	identity *provider.Identity
	err      error
}

func (s *stubVerifier) Verify(context.Context, string) (*provider.Identity, error) {
	return s.identity, s.err
}

func newHooks(verifier hooks.OneTapVerifier, users *stubUserRepo) *hooks.Hooks {
	logger := zerolog.Nop()
	return hooks.New(verifier, users, nil, &logger)
}

func TestRedirect(t *testing.T) {
	h := newHooks(nil, &stubUserRepo{})
	base := "https://app.example.com"

	tests := []struct {
		name      string
		requested string
		want      string
	}{
		{"relative path", "/dashboard", "https://app.example.com/dashboard"},
		{"same origin", "https://app.example.com/x", "https://app.example.com/x"},
		{"foreign origin", "https://evil.example.com/x", "https://app.example.com"},
		{"scheme downgrade", "http://app.example.com/x", "https://app.example.com"},
		{"unparsable", "ht!tp://%", "https://app.example.com"},
		{"empty", "", "https://app.example.com"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := h.Redirect(tt.requested, base); got != tt.want {
				t.Errorf("Redirect(%q) = %q, want %q", tt.requested, got, tt.want)
			}
		})
	}
}

func TestSession_NoTokenUser(t *testing.T) {
	h := newHooks(nil, &stubUserRepo{})

	in := &types.Session{Expires: time.Now()}
	out := h.Session(in, &types.SessionClaims{})

	if out != in || out.User != nil {
		t.Fatalf("expected session unchanged, got %+v", out)
	}
}

func TestSession_CopiesTokenUser(t *testing.T) {
	h := newHooks(nil, &stubUserRepo{})

	user := &types.SessionUser{UUID: "u-1", Email: "jane@example.com"}
	out := h.Session(&types.Session{}, &types.SessionClaims{User: user})

	if out.User != user {
		t.Fatalf("expected user projection copied, got %+v", out.User)
	}
}

func TestAuthorize_NoVerifier(t *testing.T) {
	h := newHooks(nil, &stubUserRepo{})

	if identity := h.Authorize(context.Background(), "cred"); identity != nil {
		t.Fatalf("expected nil identity, got %+v", identity)
	}
}

func TestAuthorize_VerificationFailure(t *testing.T) {
	h := newHooks(&stubVerifier{err: provider.ErrMissingEmail}, &stubUserRepo{})

	if identity := h.Authorize(context.Background(), "cred"); identity != nil {
		t.Fatalf("expected denial, got %+v", identity)
	}
}

func TestAuthorize_Success(t *testing.T) {
	want := &provider.Identity{Subject: "sub-1", Email: "jane@example.com"}
	h := newHooks(&stubVerifier{identity: want}, &stubUserRepo{})

	if got := h.Authorize(context.Background(), "cred"); got != want {
		t.Fatalf("expected identity, got %+v", got)
	}
}

func testIdentity() *provider.Identity {
	return &provider.Identity{
		Subject:       "sub-1",
		Email:         "jane@example.com",
		EmailVerified: true,
		Name:          "Jane Doe",
		Picture:       "https://example.com/jane.png",
	}
}

func TestJWT_AttachesProjection(t *testing.T) {
	users := &stubUserRepo{}
	h := newHooks(nil, users)

	account := provider.Account{Type: provider.TypeOAuth, Provider: provider.GoogleID}
	token := h.JWT(context.Background(), &types.SessionClaims{}, testIdentity(), &account, "203.0.113.9")

	if token.User == nil {
		t.Fatal("expected user projection on token")
	}
	if token.User.Email != "jane@example.com" || token.User.Nickname != "Jane Doe" {
		t.Errorf("unexpected projection: %+v", token.User)
	}
	if token.User.UUID == "" {
		t.Error("expected a generated uuid")
	}
	if _, err := time.Parse(time.RFC3339, token.User.CreatedAt); err != nil {
		t.Errorf("created_at not RFC3339: %q", token.User.CreatedAt)
	}

	if users.saved == nil {
		t.Fatal("expected user to be saved")
	}
	if users.saved.SigninProvider != provider.GoogleID || users.saved.SigninType != provider.TypeOAuth {
		t.Errorf("unexpected account fields: %+v", users.saved)
	}
	if users.saved.SigninOpenID != "sub-1" {
		t.Errorf("signin_openid: got %q", users.saved.SigninOpenID)
	}
	if users.saved.SigninIP != "203.0.113.9" {
		t.Errorf("signin_ip: got %q", users.saved.SigninIP)
	}
}

func TestJWT_SaveFailureLeavesTokenUnchanged(t *testing.T) {
	users := &stubUserRepo{err: errors.New("mongo down")}
	h := newHooks(nil, users)

	account := provider.Account{Type: provider.TypeOAuth, Provider: provider.GoogleID}
	in := &types.SessionClaims{}
	out := h.JWT(context.Background(), in, testIdentity(), &account, "")

	if out != in || out.User != nil {
		t.Fatalf("expected unchanged token, got %+v", out)
	}
}

func TestJWT_SkipsWithoutEmailOrAccount(t *testing.T) {
	users := &stubUserRepo{}
	h := newHooks(nil, users)

	account := provider.Account{Type: provider.TypeOAuth, Provider: provider.GoogleID}

	noEmail := testIdentity()
	noEmail.Email = ""

	h.JWT(context.Background(), &types.SessionClaims{}, noEmail, &account, "")
	h.JWT(context.Background(), &types.SessionClaims{}, nil, &account, "")
	h.JWT(context.Background(), &types.SessionClaims{}, testIdentity(), nil, "")

	if users.calls != 0 {
		t.Fatalf("expected no save attempts, got %d", users.calls)
	}
}
