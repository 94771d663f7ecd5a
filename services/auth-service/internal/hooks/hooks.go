// Package hooks implements the sign-in lifecycle hooks the HTTP layer invokes
// at fixed points: Authorize (credential verification), SignIn (boolean gate),
// JWT (token enrichment and user upsert), Session (token-to-session
// projection) and Redirect (open-redirect guard). Hooks never fail a sign-in
// with an error; every failure resolves to a safe fallback.
package hooks

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/nonthaphat/launchkit-api/services/auth-service/internal/model"
	"github.com/nonthaphat/launchkit-api/services/auth-service/internal/repository"
	"github.com/nonthaphat/launchkit-api/services/auth-service/pkg/types"
	"github.com/nonthaphat/launchkit-api/shared/mailer"
	"github.com/nonthaphat/launchkit-api/shared/provider"
)

// OneTapVerifier verifies a Google One Tap credential.
type OneTapVerifier interface {
	Verify(ctx context.Context, credential string) (*provider.Identity, error)
}

// Hooks holds the collaborators the lifecycle hooks call out to.
type Hooks struct {
	oneTap OneTapVerifier
	users  repository.UserRepository
	mailer *mailer.Mailer
	logger *zerolog.Logger
}

func New(
	oneTap OneTapVerifier,
	users repository.UserRepository,
	m *mailer.Mailer,
	logger *zerolog.Logger,
) *Hooks {
	return &Hooks{
		oneTap: oneTap,
		users:  users,
		mailer: m,
		logger: logger,
	}
}

// Authorize verifies a One Tap credential. Every failure is a denial: the
// caller gets nil, never an error.
func (h *Hooks) Authorize(ctx context.Context, credential string) *provider.Identity {
	if h.oneTap == nil {
		h.logger.Warn().Msg("one tap sign-in attempted without a configured client id")
		return nil
	}

	identity, err := h.oneTap.Verify(ctx, credential)
	if err != nil {
		h.logger.Warn().Err(err).Msg("one tap credential verification failed")
		return nil
	}

	return identity
}

// SignIn decides whether a verified identity may proceed. It allows everyone
// today; ban lists and domain allow-lists belong here.
func (h *Hooks) SignIn(_ context.Context, _ *provider.Identity, _ string) bool {
	return true
}

// Redirect guards post-sign-in redirects. Relative paths are resolved against
// the base URL, same-origin absolute URLs pass through, and everything else
// is replaced with the base URL.
func (h *Hooks) Redirect(requestedURL, baseURL string) string {
	if strings.HasPrefix(requestedURL, "/") {
		return baseURL + requestedURL
	}

	base, err := url.Parse(baseURL)
	if err != nil {
		return baseURL
	}

	requested, err := url.Parse(requestedURL)
	if err != nil {
		return baseURL
	}

	if requested.Scheme == base.Scheme && requested.Host == base.Host {
		return requestedURL
	}

	return baseURL
}

// JWT enriches a fresh session token. It runs the user upsert only when the
// identity, its email and the account are all present, which is the first
// sign-in of a session rather than a refresh. A persistence failure is logged
// and the token is returned unchanged; sign-in never hard-fails here.
func (h *Hooks) JWT(
	ctx context.Context,
	token *types.SessionClaims,
	identity *provider.Identity,
	account *provider.Account,
	signinIP string,
) *types.SessionClaims {
	if identity == nil || identity.Email == "" || account == nil {
		return token
	}

	now := time.Now().UTC()
	candidate := &model.User{
		UUID:           uuid.NewString(),
		Email:          identity.Email,
		Nickname:       identity.Name,
		AvatarURL:      identity.Picture,
		SigninType:     account.Type,
		SigninProvider: account.Provider,
		SigninOpenID:   identity.Subject,
		SigninIP:       signinIP,
		CreatedAt:      now,
	}

	saved, created, err := h.users.UpsertUser(ctx, candidate)
	if err != nil {
		h.logger.Error().Err(err).Str("provider", account.Provider).Msg("failed to save user")
		return token
	}

	token.User = &types.SessionUser{
		UUID:      saved.UUID,
		Email:     saved.Email,
		Nickname:  saved.Nickname,
		AvatarURL: saved.AvatarURL,
		CreatedAt: saved.CreatedAt.UTC().Format(time.RFC3339),
	}

	if created {
		h.sendWelcomeEmail(saved)
	}

	return token
}

// Session copies the token's user projection onto the outgoing session when
// present; otherwise the session is returned unchanged.
func (h *Hooks) Session(session *types.Session, token *types.SessionClaims) *types.Session {
	if token == nil || token.User == nil {
		return session
	}

	session.User = token.User
	return session
}

func (h *Hooks) sendWelcomeEmail(user *model.User) {
	name := user.Nickname
	if name == "" {
		name = user.Email
	}

	body := fmt.Sprintf("<p>Hi %s,</p><p>your account is ready. Welcome aboard!</p>", name)
	if err := h.mailer.SendHTML([]string{user.Email}, "Welcome", body); err != nil {
		h.logger.Warn().Err(err).Msg("failed to send welcome email")
	}
}
