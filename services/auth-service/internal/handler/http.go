package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/nonthaphat/launchkit-api/services/auth-service/internal/config"
	"github.com/nonthaphat/launchkit-api/services/auth-service/internal/hooks"
	"github.com/nonthaphat/launchkit-api/services/auth-service/internal/usecase"
	"github.com/nonthaphat/launchkit-api/services/auth-service/pkg/types"
	"github.com/nonthaphat/launchkit-api/shared/auth"
	sharedmiddleware "github.com/nonthaphat/launchkit-api/shared/middleware"
	"github.com/nonthaphat/launchkit-api/shared/provider"
	"github.com/nonthaphat/launchkit-api/shared/validation"
)

// SignInPagePath is the sign-in page location UI collaborators link to.
const SignInPagePath = "/auth/signin"

const (
	stateCookie    = "auth_state"
	callbackCookie = "auth_callback_url"
	sessionCookie  = "session_token"
)

// OAuthFlow is the part of an OAuth provider the HTTP layer drives.
type OAuthFlow interface {
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (*provider.Identity, error)
}

// AuthHandler serves the authentication HTTP surface.
type AuthHandler struct {
	registry    *provider.Registry
	flows       map[string]OAuthFlow
	hooks       *hooks.Hooks
	authUsecase usecase.AuthUsecase
	jwtAuth     auth.JWTAuthenticator
	validator   *validation.Validator
	cfg         *config.AuthServiceConfig
	ping        func(ctx context.Context) error
	logger      *zerolog.Logger
}

func NewAuthHandler(
	registry *provider.Registry,
	flows map[string]OAuthFlow,
	h *hooks.Hooks,
	authUsecase usecase.AuthUsecase,
	jwtAuth auth.JWTAuthenticator,
	validator *validation.Validator,
	cfg *config.AuthServiceConfig,
	ping func(ctx context.Context) error,
	logger *zerolog.Logger,
) *AuthHandler {
	return &AuthHandler{
		registry:    registry,
		flows:       flows,
		hooks:       h,
		authUsecase: authUsecase,
		jwtAuth:     jwtAuth,
		validator:   validator,
		cfg:         cfg,
		ping:        ping,
		logger:      logger,
	}
}

// Router builds the chi router for the service.
func (h *AuthHandler) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", h.Healthz)
	r.Get(SignInPagePath, h.SignInPage)

	requireSession := sharedmiddleware.RequireSession(
		h.jwtAuth,
		h.cfg.Token.Secret,
		sessionCookie,
		func() jwt.Claims { return &types.SessionClaims{} },
	)

	r.Route("/api/auth", func(r chi.Router) {
		r.Get("/providers", h.Providers)
		r.Post("/signin/google-one-tap", h.SignInWithOneTap)
		r.Get("/signin/{provider}", h.SignInRedirect)
		r.Get("/callback/{provider}", h.Callback)
		r.Get("/session", h.Session)

		r.Group(func(r chi.Router) {
			r.Use(requireSession)
			r.Get("/sessions", h.Sessions)
		})
	})

	return r
}

// Providers returns the public provider map.
func (h *AuthHandler) Providers(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.registry.Map())
}

// SignInPage returns the data needed to render the sign-in page.
func (h *AuthHandler) SignInPage(w http.ResponseWriter, r *http.Request) {
	resp := SignInPageResponse{
		Providers:          h.registry.Map(),
		CallbackURLParam:   "callback_url",
		SignInEndpointBase: "/api/auth/signin",
	}
	if p, ok := h.registry.Get(provider.GoogleOneTapID); ok {
		resp.OneTapClientID = p.ClientID
	}

	writeJSON(w, http.StatusOK, resp)
}

// SignInWithOneTap authenticates a Google One Tap credential and issues a
// session token.
func (h *AuthHandler) SignInWithOneTap(w http.ResponseWriter, r *http.Request) {
	var in OneTapSignInRequest
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid json"})
		return
	}
	if fields := h.validator.Struct(in); fields != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid payload", Fields: fields})
		return
	}

	identity := h.hooks.Authorize(r.Context(), in.Credential)
	if identity == nil {
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{Error: "invalid credential"})
		return
	}

	p, ok := h.registry.Get(provider.GoogleOneTapID)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{Error: "provider not configured"})
		return
	}

	h.completeSignIn(w, r, identity, p, false)
}

// SignInRedirect starts the OAuth code flow for the named provider.
func (h *AuthHandler) SignInRedirect(w http.ResponseWriter, r *http.Request) {
	providerID := chi.URLParam(r, "provider")

	flow, ok := h.flows[providerID]
	if !ok {
		writeJSON(w, http.StatusNotFound, ErrorResponse{Error: "unknown provider"})
		return
	}

	state := uuid.NewString()
	setTempCookie(w, stateCookie, state)
	if callbackURL := r.URL.Query().Get("callback_url"); callbackURL != "" {
		setTempCookie(w, callbackCookie, callbackURL)
	}

	http.Redirect(w, r, flow.AuthCodeURL(state), http.StatusFound)
}

// Callback finishes the OAuth code flow: state check, code exchange, sign-in
// gate, token issuance, guarded redirect back into the application.
func (h *AuthHandler) Callback(w http.ResponseWriter, r *http.Request) {
	providerID := chi.URLParam(r, "provider")

	flow, ok := h.flows[providerID]
	if !ok {
		writeJSON(w, http.StatusNotFound, ErrorResponse{Error: "unknown provider"})
		return
	}

	p, ok := h.registry.Get(providerID)
	if !ok {
		writeJSON(w, http.StatusNotFound, ErrorResponse{Error: "unknown provider"})
		return
	}

	state, err := r.Cookie(stateCookie)
	if err != nil || state.Value == "" || state.Value != r.URL.Query().Get("state") {
		h.redirectWithError(w, r, "state_mismatch")
		return
	}
	clearCookie(w, stateCookie)

	code := r.URL.Query().Get("code")
	if code == "" {
		h.redirectWithError(w, r, "access_denied")
		return
	}

	identity, err := flow.Exchange(r.Context(), code)
	if err != nil {
		h.logger.Warn().Err(err).Str("provider", providerID).Msg("oauth exchange failed")
		h.redirectWithError(w, r, "verification_failed")
		return
	}

	h.completeSignIn(w, r, identity, p, true)
}

// Session validates the caller's session token and returns the session
// projection.
func (h *AuthHandler) Session(w http.ResponseWriter, r *http.Request) {
	token := bearerToken(r)
	if token == "" {
		if c, err := r.Cookie(sessionCookie); err == nil {
			token = c.Value
		}
	}
	if token == "" {
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{Error: "missing session token"})
		return
	}

	session, err := h.authUsecase.SessionFromToken(r.Context(), token)
	if err != nil {
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{Error: "invalid session token"})
		return
	}

	writeJSON(w, http.StatusOK, session)
}

// Sessions lists the caller's stored session records. It sits behind the
// session middleware, so the claims are already validated.
func (h *AuthHandler) Sessions(w http.ResponseWriter, r *http.Request) {
	claims, ok := sharedmiddleware.ClaimsFromContext(r.Context())
	sc, _ := claims.(*types.SessionClaims)
	if !ok || sc == nil || sc.User == nil {
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{Error: "invalid session token"})
		return
	}

	records, err := h.authUsecase.ListSessions(r.Context(), sc.User.UUID)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to list sessions")
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "something went wrong"})
		return
	}

	resp := make([]SessionRecordResponse, 0, len(records))
	for _, record := range records {
		resp = append(resp, SessionRecordResponse{
			IPAddress: record.IPAddress,
			UserAgent: record.UserAgent,
			CreatedAt: record.CreatedAt,
			ExpiresAt: record.ExpiresAt,
		})
	}

	writeJSON(w, http.StatusOK, resp)
}

// Healthz reports readiness.
func (h *AuthHandler) Healthz(w http.ResponseWriter, r *http.Request) {
	if err := h.ping(r.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// completeSignIn is shared by the credential and OAuth paths. For browser
// flows the token is set as a cookie and the caller is redirected through the
// Redirect hook; API flows get a JSON response.
func (h *AuthHandler) completeSignIn(
	w http.ResponseWriter,
	r *http.Request,
	identity *provider.Identity,
	p provider.Provider,
	browserFlow bool,
) {
	result, err := h.authUsecase.SignInWithIdentity(r.Context(), usecase.SignInParams{
		Identity:  identity,
		Provider:  p,
		IPAddress: clientIP(r),
		UserAgent: r.UserAgent(),
	})
	if err != nil {
		if errors.Is(err, usecase.ErrSignInBlocked) {
			if browserFlow {
				h.redirectWithError(w, r, "access_denied")
				return
			}
			writeJSON(w, http.StatusForbidden, ErrorResponse{Error: "sign in blocked"})
			return
		}

		h.logger.Error().Err(err).Str("provider", p.ID).Msg("sign in failed")
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "something went wrong"})
		return
	}

	if !browserFlow {
		writeJSON(w, http.StatusOK, SignInResponse{Token: result.Token, User: result.User})
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    result.Token,
		Path:     "/",
		Expires:  time.Now().Add(h.cfg.Token.SessionTTL),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	callbackURL := ""
	if c, err := r.Cookie(callbackCookie); err == nil {
		callbackURL = c.Value
	}
	clearCookie(w, callbackCookie)

	http.Redirect(w, r, h.hooks.Redirect(callbackURL, h.cfg.Server.BaseURL), http.StatusFound)
}

func (h *AuthHandler) redirectWithError(w http.ResponseWriter, r *http.Request, code string) {
	http.Redirect(w, r, h.cfg.Server.BaseURL+SignInPagePath+"?error="+code, http.StatusFound)
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return parts[1]
}

// clientIP relies on middleware.RealIP having resolved X-Forwarded-For and
// X-Real-IP into RemoteAddr.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func setTempCookie(w http.ResponseWriter, name, value string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   600,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func clearCookie(w http.ResponseWriter, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
