package provider

import (
	"context"

	"github.com/chakravarthigit/prompt-frontend/internal/auth"
)

// OAuthProvider defines the contract every external sign-in provider
// must implement. Implementations return identity facts only and
// must not perform session management or backend calls.
type OAuthProvider interface {
	// Name returns the provider identifier (e.g. "google", "github").
	Name() string

	// AuthCodeURL returns the OAuth authorization URL.
	// State and PKCE parameters are provided by the caller.
	AuthCodeURL(state string, codeChallenge string) string

	// ExchangeCode exchanges the authorization code for provider
	// credentials and returns a normalized identity.
	ExchangeCode(
		ctx context.Context,
		code string,
		codeVerifier string,
	) (*auth.Identity, error)
}
