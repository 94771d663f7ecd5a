package handler

import (
	"time"

	"github.com/nonthaphat/launchkit-api/services/auth-service/pkg/types"
	"github.com/nonthaphat/launchkit-api/shared/provider"
)

// OneTapSignInRequest carries the Google One Tap credential.
type OneTapSignInRequest struct {
	Credential string `json:"credential" validate:"required"`
}

// SignInResponse is returned on a successful sign-in.
type SignInResponse struct {
	Token string             `json:"token"`
	User  *types.SessionUser `json:"user,omitempty"`
}

// SignInPageResponse is the data a UI needs to render the sign-in page.
type SignInPageResponse struct {
	Providers          []provider.Info `json:"providers"`
	OneTapClientID     string          `json:"one_tap_client_id,omitempty"`
	CallbackURLParam   string          `json:"callback_url_param"`
	SignInEndpointBase string          `json:"signin_endpoint_base"`
}

// SessionRecordResponse describes one stored session of the caller.
type SessionRecordResponse struct {
	IPAddress *string   `json:"ip_address,omitempty"`
	UserAgent *string   `json:"user_agent,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// ErrorResponse is the generic error payload.
type ErrorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}
