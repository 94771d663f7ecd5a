package provider

import (
	"context"
	"errors"

	"google.golang.org/api/option"
)

var ErrNotConfigured = errors.New("provider not configured")

// OneTap verifies Google One Tap credentials. The credential is a pre-issued
// Google ID token verified server side, not a full OAuth redirect exchange.
type OneTap struct {
	clientID string
	verifier *TokeninfoVerifier
}

// NewOneTap creates the One Tap credential verifier for the given client id.
func NewOneTap(clientID string, opts ...option.ClientOption) *OneTap {
	return &OneTap{
		clientID: clientID,
		verifier: NewTokeninfoVerifier(clientID, opts...),
	}
}

// Verify checks the credential against the tokeninfo endpoint and maps its
// claims onto an Identity. Any failure, including an unconfigured client id,
// returns an error; the caller decides how to surface the denial.
func (p *OneTap) Verify(ctx context.Context, credential string) (*Identity, error) {
	if p.clientID == "" {
		return nil, ErrNotConfigured
	}

	tokenInfo, err := p.verifier.Verify(ctx, credential)
	if err != nil {
		return nil, err
	}

	return identityFromIDToken(tokenInfo, credential), nil
}
