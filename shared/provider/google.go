package provider

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
)

// Google runs the OAuth authorization code flow against Google and audits the
// resulting ID token through the tokeninfo endpoint.
type Google struct {
	cfg      *oauth2.Config
	verifier *TokeninfoVerifier
}

// NewGoogle creates the Google OAuth provider.
func NewGoogle(clientID, clientSecret, redirectURL string, opts ...option.ClientOption) *Google {
	return &Google{
		cfg: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint:     google.Endpoint,
		},
		verifier: NewTokeninfoVerifier(clientID, opts...),
	}
}

// AuthCodeURL returns the consent page URL for the given state.
func (p *Google) AuthCodeURL(state string) string {
	return p.cfg.AuthCodeURL(state, oauth2.AccessTypeOffline)
}

// Exchange trades the authorization code for tokens and returns the verified
// identity carried by the ID token.
func (p *Google) Exchange(ctx context.Context, code string) (*Identity, error) {
	token, err := p.cfg.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("google token exchange failed: %w", err)
	}

	rawIDToken, ok := token.Extra("id_token").(string)
	if !ok || rawIDToken == "" {
		return nil, errors.New("google did not return id_token")
	}

	tokenInfo, err := p.verifier.Verify(ctx, rawIDToken)
	if err != nil {
		return nil, fmt.Errorf("google id_token verification failed: %w", err)
	}

	return identityFromIDToken(tokenInfo, rawIDToken), nil
}
