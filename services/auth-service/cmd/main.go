package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nonthaphat/launchkit-api/services/auth-service/internal/config"
	"github.com/nonthaphat/launchkit-api/services/auth-service/internal/handler"
	"github.com/nonthaphat/launchkit-api/services/auth-service/internal/hooks"
	"github.com/nonthaphat/launchkit-api/services/auth-service/internal/repository"
	"github.com/nonthaphat/launchkit-api/services/auth-service/internal/usecase"
	"github.com/nonthaphat/launchkit-api/shared/auth"
	"github.com/nonthaphat/launchkit-api/shared/logger"
	"github.com/nonthaphat/launchkit-api/shared/mailer"
	"github.com/nonthaphat/launchkit-api/shared/provider"
	"github.com/nonthaphat/launchkit-api/shared/validation"
)

func main() {
	log := logger.New("auth-service")
	cfg := config.Load(log)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, db, err := repository.Connect(ctx, cfg.Mongo.URI, cfg.Mongo.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to mongo")
	}
	defer func() { _ = client.Disconnect(context.Background()) }()

	userRepo := repository.NewUserMongoRepository(ctx, log, db)
	sessionRepo, err := repository.NewSessionMongoRepository(ctx, db)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create session indexes")
	}

	registry := provider.NewRegistry(provider.Config{
		GoogleOneTapEnabled:  cfg.Auth.GoogleOneTapEnabled,
		GoogleOneTapClientID: cfg.Auth.GoogleOneTapClientID,
		GoogleEnabled:        cfg.Auth.GoogleEnabled,
		GoogleClientID:       cfg.Auth.GoogleClientID,
		GoogleClientSecret:   cfg.Auth.GoogleClientSecret,
		GitHubEnabled:        cfg.Auth.GitHubEnabled,
		GitHubClientID:       cfg.Auth.GitHubClientID,
		GitHubClientSecret:   cfg.Auth.GitHubClientSecret,
	})

	var oneTap hooks.OneTapVerifier
	if p, ok := registry.Get(provider.GoogleOneTapID); ok {
		oneTap = provider.NewOneTap(p.ClientID)
	}

	flows := make(map[string]handler.OAuthFlow)
	if p, ok := registry.Get(provider.GoogleID); ok {
		redirectURL := cfg.Server.BaseURL + "/api/auth/callback/" + provider.GoogleID
		flows[provider.GoogleID] = provider.NewGoogle(p.ClientID, p.ClientSecret, redirectURL)
	}
	if p, ok := registry.Get(provider.GitHubID); ok {
		redirectURL := cfg.Server.BaseURL + "/api/auth/callback/" + provider.GitHubID
		flows[provider.GitHubID] = provider.NewGitHub(p.ClientID, p.ClientSecret, redirectURL)
	}

	validator, err := validation.New()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create validator")
	}

	jwtAuth := auth.NewJWTAuthenticator(cfg.Token.Issuer, cfg.Token.Issuer)
	authHooks := hooks.New(oneTap, userRepo, mailer.NewMailer(log), log)
	authUsecase := usecase.NewAuthUsecase(authHooks, sessionRepo, jwtAuth, cfg, log)

	ping := func(ctx context.Context) error { return client.Ping(ctx, nil) }
	authHandler := handler.NewAuthHandler(registry, flows, authHooks, authUsecase, jwtAuth, validator, cfg, ping, log)

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: authHandler.Router(),
	}

	srvErr := make(chan error, 1)
	go func() { srvErr <- srv.ListenAndServe() }()

	log.Info().Str("port", cfg.Server.Port).Msg("auth service listening")

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	select {
	case s := <-sig:
		log.Info().Str("signal", s.String()).Msg("shutting down")
	case err := <-srvErr:
		if !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("server error")
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}
