package usecase

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"github.com/nonthaphat/launchkit-api/services/auth-service/internal/config"
	"github.com/nonthaphat/launchkit-api/services/auth-service/internal/hooks"
	"github.com/nonthaphat/launchkit-api/services/auth-service/internal/model"
	"github.com/nonthaphat/launchkit-api/services/auth-service/internal/repository"
	"github.com/nonthaphat/launchkit-api/services/auth-service/pkg/types"
	"github.com/nonthaphat/launchkit-api/shared/auth"
	"github.com/nonthaphat/launchkit-api/shared/provider"
)

// AuthUsecase defines the interface for authentication-related use cases.
type AuthUsecase interface {
	SignInWithIdentity(ctx context.Context, params SignInParams) (*SignInResult, error)
	SessionFromToken(ctx context.Context, token string) (*types.Session, error)
	ListSessions(ctx context.Context, userUUID string) ([]model.Session, error)
}

// SignInParams defines the parameters for completing a sign-in with a
// verified identity.
type SignInParams struct {
	Identity  *provider.Identity
	Provider  provider.Provider
	IPAddress string
	UserAgent string
}

// SignInResult carries the issued session token and the user projection it
// contains. User is nil when enrichment was degraded by a persistence
// failure.
type SignInResult struct {
	Token string
	User  *types.SessionUser
}

var (
	ErrSignInBlocked  = errors.New("sign in blocked")
	ErrInvalidSession = errors.New("invalid session")
)

type authUsecase struct {
	hooks          *hooks.Hooks
	sessionRepo    repository.SessionRepository
	jwtAuth        auth.JWTAuthenticator
	authServiceCfg *config.AuthServiceConfig
	logger         *zerolog.Logger
}

func NewAuthUsecase(
	h *hooks.Hooks,
	sessionRepo repository.SessionRepository,
	jwtAuth auth.JWTAuthenticator,
	authServiceCfg *config.AuthServiceConfig,
	logger *zerolog.Logger,
) AuthUsecase {
	return &authUsecase{
		hooks:          h,
		sessionRepo:    sessionRepo,
		jwtAuth:        jwtAuth,
		authServiceCfg: authServiceCfg,
		logger:         logger,
	}
}

// SignInWithIdentity runs the sign-in gate, enriches a fresh session token
// through the JWT hook and issues it. A failing session record write degrades
// the sign-in instead of failing it.
func (u *authUsecase) SignInWithIdentity(ctx context.Context, params SignInParams) (*SignInResult, error) {
	if !u.hooks.SignIn(ctx, params.Identity, params.Provider.ID) {
		return nil, ErrSignInBlocked
	}

	now := time.Now()
	claims := &types.SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(u.authServiceCfg.Token.SessionTTL)),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    u.authServiceCfg.Token.Issuer,
			Audience:  jwt.ClaimStrings{u.authServiceCfg.Token.Issuer},
		},
	}

	account := params.Provider.Account()
	claims = u.hooks.JWT(ctx, claims, params.Identity, &account, params.IPAddress)
	if claims.User != nil {
		claims.Subject = claims.User.UUID
	}

	token, err := u.jwtAuth.GenerateToken(claims, u.authServiceCfg.Token.Secret)
	if err != nil {
		return nil, err
	}

	if claims.User != nil {
		session := &model.Session{
			UserUUID:  claims.User.UUID,
			TokenHash: hashToken(token),
			ExpiresAt: claims.ExpiresAt.Time,
		}
		if params.IPAddress != "" {
			session.IPAddress = &params.IPAddress
		}
		if params.UserAgent != "" {
			session.UserAgent = &params.UserAgent
		}

		if _, err := u.sessionRepo.CreateSession(ctx, session); err != nil {
			u.logger.Error().Err(err).Msg("failed to persist session record")
		}
	}

	return &SignInResult{Token: token, User: claims.User}, nil
}

// SessionFromToken validates a session token and shapes the session object
// through the Session hook.
func (u *authUsecase) SessionFromToken(_ context.Context, token string) (*types.Session, error) {
	claims := &types.SessionClaims{}
	if _, err := u.jwtAuth.ValidateTokenWithClaims(token, u.authServiceCfg.Token.Secret, claims); err != nil {
		return nil, ErrInvalidSession
	}

	session := &types.Session{Expires: claims.ExpiresAt.Time}

	return u.hooks.Session(session, claims), nil
}

// ListSessions returns the stored session records for a user.
func (u *authUsecase) ListSessions(ctx context.Context, userUUID string) ([]model.Session, error) {
	return u.sessionRepo.GetSessionsByUserUUID(ctx, userUUID)
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
