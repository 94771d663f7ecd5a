// Package provider implements the authentication provider registry and the
// identity flows behind it (Google One Tap, Google OAuth, GitHub OAuth).
package provider

// Provider types as recorded on user records.
const (
	TypeOAuth       = "oauth"
	TypeCredentials = "credentials"
)

// Provider identifiers.
const (
	GoogleOneTapID = "google-one-tap"
	GoogleID       = "google"
	GitHubID       = "github"
)

// Provider describes a configured way of authenticating a user.
type Provider struct {
	ID           string
	Name         string
	Type         string
	ClientID     string
	ClientSecret string
}

// Account describes how an identity was obtained during a sign-in.
func (p Provider) Account() Account {
	return Account{Type: p.Type, Provider: p.ID}
}

// Account is attached to a sign-in alongside the identity itself.
type Account struct {
	Type     string
	Provider string
}

// Identity holds the verified attributes a provider returns about the
// authenticated subject.
type Identity struct {
	Subject       string
	Email         string
	EmailVerified bool
	Name          string
	GivenName     string
	FamilyName    string
	Picture       string
}

// Info is the public-safe projection of a provider, rendered to UI
// collaborators so they can build sign-in buttons.
type Info struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Config carries the environment-driven provider settings. A provider whose
// flag is off or whose required values are empty is simply omitted from the
// registry.
type Config struct {
	GoogleOneTapEnabled  bool
	GoogleOneTapClientID string

	GoogleEnabled      bool
	GoogleClientID     string
	GoogleClientSecret string

	GitHubEnabled      bool
	GitHubClientID     string
	GitHubClientSecret string
}

// Registry holds the configured providers in registration order:
// One Tap first, then Google, then GitHub.
type Registry struct {
	providers []Provider
}

// NewRegistry builds the registry once from configuration. It never fails;
// misconfigured providers are left out.
func NewRegistry(cfg Config) *Registry {
	var providers []Provider

	if cfg.GoogleOneTapEnabled && cfg.GoogleOneTapClientID != "" {
		providers = append(providers, Provider{
			ID:       GoogleOneTapID,
			Name:     "Google One Tap",
			Type:     TypeCredentials,
			ClientID: cfg.GoogleOneTapClientID,
		})
	}

	if cfg.GoogleEnabled && cfg.GoogleClientID != "" && cfg.GoogleClientSecret != "" {
		providers = append(providers, Provider{
			ID:           GoogleID,
			Name:         "Google",
			Type:         TypeOAuth,
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
		})
	}

	if cfg.GitHubEnabled && cfg.GitHubClientID != "" && cfg.GitHubClientSecret != "" {
		providers = append(providers, Provider{
			ID:           GitHubID,
			Name:         "GitHub",
			Type:         TypeOAuth,
			ClientID:     cfg.GitHubClientID,
			ClientSecret: cfg.GitHubClientSecret,
		})
	}

	return &Registry{providers: providers}
}

// Providers returns the configured providers in registration order.
func (r *Registry) Providers() []Provider {
	out := make([]Provider, len(r.providers))
	copy(out, r.providers)
	return out
}

// Get returns the provider with the given id.
func (r *Registry) Get(id string) (Provider, bool) {
	for _, p := range r.providers {
		if p.ID == id {
			return p, true
		}
	}
	return Provider{}, false
}

// Map returns the {id, name} projection of the registry. The One Tap entry is
// excluded: it is not rendered as a generic sign-in button.
func (r *Registry) Map() []Info {
	infos := make([]Info, 0, len(r.providers))
	for _, p := range r.providers {
		if p.ID == GoogleOneTapID {
			continue
		}
		infos = append(infos, Info{ID: p.ID, Name: p.Name})
	}
	return infos
}
