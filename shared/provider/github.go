package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/github"
)

const githubAPIBaseURL = "https://api.github.com"

// GitHub runs the OAuth authorization code flow against GitHub and resolves
// the account profile through the REST API.
type GitHub struct {
	cfg     *oauth2.Config
	apiBase string
}

// NewGitHub creates the GitHub OAuth provider.
func NewGitHub(clientID, clientSecret, redirectURL string) *GitHub {
	return &GitHub{
		cfg: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Scopes:       []string{"read:user", "user:email"},
			Endpoint:     github.Endpoint,
		},
		apiBase: githubAPIBaseURL,
	}
}

// AuthCodeURL returns the consent page URL for the given state.
func (p *GitHub) AuthCodeURL(state string) string {
	return p.cfg.AuthCodeURL(state)
}

// Exchange trades the authorization code for an access token and fetches the
// authenticated user's profile.
func (p *GitHub) Exchange(ctx context.Context, code string) (*Identity, error) {
	token, err := p.cfg.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("github token exchange failed: %w", err)
	}

	return p.fetchIdentity(ctx, token)
}

type githubUser struct {
	ID        int64  `json:"id"`
	Login     string `json:"login"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	AvatarURL string `json:"avatar_url"`
}

type githubEmail struct {
	Email    string `json:"email"`
	Primary  bool   `json:"primary"`
	Verified bool   `json:"verified"`
}

func (p *GitHub) fetchIdentity(ctx context.Context, token *oauth2.Token) (*Identity, error) {
	client := p.cfg.Client(ctx, token)

	var user githubUser
	if err := p.getJSON(ctx, client, "/user", &user); err != nil {
		return nil, fmt.Errorf("github user fetch failed: %w", err)
	}

	identity := &Identity{
		Subject:       strconv.FormatInt(user.ID, 10),
		Email:         user.Email,
		EmailVerified: user.Email != "",
		Name:          user.Name,
		Picture:       user.AvatarURL,
	}
	if identity.Name == "" {
		identity.Name = user.Login
	}

	// The profile email is empty when the user keeps it private; the emails
	// endpoint still exposes the verified primary address.
	if identity.Email == "" {
		var emails []githubEmail
		if err := p.getJSON(ctx, client, "/user/emails", &emails); err != nil {
			return nil, fmt.Errorf("github emails fetch failed: %w", err)
		}
		for _, e := range emails {
			if e.Primary && e.Verified {
				identity.Email = e.Email
				identity.EmailVerified = true
				break
			}
		}
	}

	if identity.Email == "" {
		return nil, errors.New("github account has no usable email")
	}

	return identity, nil
}

func (p *GitHub) getJSON(ctx context.Context, client *http.Client, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.apiBase+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	return json.NewDecoder(resp.Body).Decode(out)
}
