package github

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"golang.org/x/oauth2"
	githuboauth "golang.org/x/oauth2/github"

	"github.com/chakravarthigit/prompt-frontend/internal/auth"
	"github.com/chakravarthigit/prompt-frontend/internal/logger"
)

const (
	providerName = "github"
	apiBaseURL   = "https://api.github.com"
)

// Provider implements OAuth authentication against GitHub. GitHub
// does not speak OIDC, so the identity is assembled from the REST
// API instead of an id_token.
type Provider struct {
	oauthConfig *oauth2.Config
	apiBaseURL  string
}

func New(
	clientID string,
	clientSecret string,
	redirectURL string,
) (*Provider, error) {

	if clientID == "" || clientSecret == "" || redirectURL == "" {
		return nil, errors.New("github oauth config missing required fields")
	}

	oauthCfg := &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  redirectURL,
		Endpoint:     githuboauth.Endpoint,
		Scopes: []string{
			"read:user",
			"user:email",
		},
	}

	return &Provider{
		oauthConfig: oauthCfg,
		apiBaseURL:  apiBaseURL,
	}, nil
}

// WithAPIBaseURL overrides the REST API origin (used by tests).
func (p *Provider) WithAPIBaseURL(base string) *Provider {
	p.apiBaseURL = base
	return p
}

// Name returns the provider identifier used by the registry.
func (p *Provider) Name() string {
	return providerName
}

// AuthCodeURL builds the OAuth authorization URL with PKCE parameters.
func (p *Provider) AuthCodeURL(state string, codeChallenge string) string {
	return p.oauthConfig.AuthCodeURL(
		state,
		oauth2.SetAuthURLParam("code_challenge", codeChallenge),
		oauth2.SetAuthURLParam("code_challenge_method", "S256"),
	)
}

func (p *Provider) ExchangeCode(
	ctx context.Context,
	code string,
	codeVerifier string,
) (*auth.Identity, error) {

	token, err := p.oauthConfig.Exchange(
		ctx,
		code,
		oauth2.SetAuthURLParam("code_verifier", codeVerifier),
	)
	if err != nil {
		return nil, fmt.Errorf("github token exchange failed: %w", err)
	}

	client := p.oauthConfig.Client(ctx, token)

	var profile struct {
		ID        int64  `json:"id"`
		Login     string `json:"login"`
		Name      string `json:"name"`
		Email     string `json:"email"`
		AvatarURL string `json:"avatar_url"`
	}
	if err := p.getJSON(ctx, client, "/user", &profile); err != nil {
		return nil, fmt.Errorf("github profile fetch failed: %w", err)
	}
	if profile.ID == 0 {
		return nil, errors.New("github profile missing user id")
	}

	email := profile.Email
	emailVerified := false

	// The public email is often hidden; resolve the primary verified
	// address from the emails endpoint.
	var emails []struct {
		Email    string `json:"email"`
		Primary  bool   `json:"primary"`
		Verified bool   `json:"verified"`
	}
	if err := p.getJSON(ctx, client, "/user/emails", &emails); err != nil {
		logger.Warn("github emails fetch failed", map[string]any{
			"error": err.Error(),
		})
	}
	for _, e := range emails {
		if e.Primary {
			email = e.Email
			emailVerified = e.Verified
			break
		}
	}

	if email == "" {
		return nil, errors.New("github account has no resolvable email")
	}

	name := profile.Name
	if name == "" {
		name = profile.Login
	}

	logger.Info("github identity resolved", map[string]any{
		"login":          profile.Login,
		"email_verified": emailVerified,
	})

	return &auth.Identity{
		Provider:       providerName,
		ProviderUserID: strconv.FormatInt(profile.ID, 10),
		Email:          email,
		EmailVerified:  emailVerified,
		Name:           name,
		AvatarURL:      profile.AvatarURL,
	}, nil
}

func (p *Provider) getJSON(ctx context.Context, client *http.Client, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.apiBaseURL+path, nil)
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
		return fmt.Errorf("unexpected status %d for %s", resp.StatusCode, path)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
