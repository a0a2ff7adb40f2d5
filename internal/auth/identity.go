package auth

// Identity represents a normalized external authentication identity
// returned by an OAuth provider. It contains facts only, no decisions;
// mapping it to a PromptWizard account is the backend's job.
type Identity struct {
	Provider       string // e.g. "google", "github"
	ProviderUserID string // provider-scoped unique user identifier (sub)
	Email          string // verified email returned by provider
	EmailVerified  bool   // whether provider asserts email ownership
	Name           string // display name for the profile payload
	AvatarURL      string // profile photo, may be empty
}
