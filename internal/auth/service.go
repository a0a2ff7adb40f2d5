package auth

import (
	"context"
	"errors"
	"time"

	evbus "github.com/asaskevich/EventBus"

	"github.com/chakravarthigit/prompt-frontend/internal/api"
	"github.com/chakravarthigit/prompt-frontend/internal/logger"
	"github.com/chakravarthigit/prompt-frontend/internal/session"
)

// TopicSessionReset is broadcast after a completed logout so every
// subscriber drops session-derived state. It replaces the hard page
// reload the web client used for the same guarantee.
const TopicSessionReset = "session.reset"

var ErrNotAuthenticated = errors.New("auth: not authenticated")

// Service is the single process-wide auth context. It fronts the
// backend API and keeps the session reconciler's three tiers in sync
// with every auth operation.
type Service struct {
	api      *api.Client
	sessions *session.Reconciler
	bus      evbus.Bus

	// Pause between clearing local state and notifying the backend
	// on logout, so concurrent readers observe the cleared state
	// before anything else happens.
	settleDelay time.Duration
}

func NewService(client *api.Client, sessions *session.Reconciler, bus evbus.Bus) *Service {
	return &Service{
		api:         client,
		sessions:    sessions,
		bus:         bus,
		settleDelay: 100 * time.Millisecond,
	}
}

// Login authenticates against the backend and fans the issued session
// out to all three tiers. Prior session state is untouched on failure.
func (s *Service) Login(ctx context.Context, emailOrMobile, password, countryCode string) (*session.Session, error) {
	res, err := s.api.Login(ctx, emailOrMobile, password, countryCode)
	if err != nil {
		logger.Warn("login failed", map[string]any{"error": err.Error()})
		return nil, err
	}

	sess := session.Session{Token: res.Token, User: res.User}
	s.sessions.FanOut(ctx, sess)

	logger.Info("login succeeded", map[string]any{"email": res.User.Email})
	return &sess, nil
}

// Signup registers a new account without establishing a session; the
// caller signs in separately once the backend's verification gate is
// passed.
func (s *Service) Signup(ctx context.Context, name, email, password, mobileNumber, countryCode string) (map[string]any, error) {
	return s.api.Signup(ctx, name, email, password, mobileNumber, countryCode)
}

// SocialLogin exchanges an externally obtained profile for a backend
// session and performs the same fan-out as Login.
func (s *Service) SocialLogin(ctx context.Context, provider string, profile api.SocialProfile) (*session.Session, error) {
	res, err := s.api.SocialLogin(ctx, provider, profile)
	if err != nil {
		logger.Warn("social login failed", map[string]any{
			"provider": provider,
			"error":    err.Error(),
		})
		return nil, err
	}

	sess := session.Session{Token: res.Token, User: res.User}
	s.sessions.FanOut(ctx, sess)

	logger.Info("social login succeeded", map[string]any{
		"provider": provider,
		"email":    res.User.Email,
	})
	return &sess, nil
}

// Logout destroys the session. Ordering is load-bearing: memory and
// tiers are cleared first, then after a short settle delay the
// backend is notified best-effort, then the reset broadcast goes out.
// Local destruction never depends on backend reachability.
func (s *Service) Logout(ctx context.Context) {
	s.sessions.Clear(ctx)

	time.Sleep(s.settleDelay)

	if err := s.api.Logout(ctx); err != nil {
		logger.Warn("backend logout call failed, local tokens are cleared", map[string]any{
			"error": err.Error(),
		})
	}

	if s.bus != nil {
		s.bus.Publish(TopicSessionReset)
	}
	logger.Info("auth tokens cleared", nil)
}

// UpdateProfile pushes changed fields to the backend and mirrors the
// returned user into every tier under the existing token with one
// uniform expiry.
func (s *Service) UpdateProfile(ctx context.Context, fields map[string]any) (*session.User, error) {
	token := s.sessions.Token(ctx)
	if token == "" {
		return nil, ErrNotAuthenticated
	}

	res, err := s.api.UpdateProfile(ctx, token, fields)
	if err != nil {
		return nil, err
	}

	s.sessions.FanOut(ctx, session.Session{Token: token, User: res.User})
	return &res.User, nil
}

// ChangePassword forwards a password change using the current token.
func (s *Service) ChangePassword(ctx context.Context, currentPassword, newPassword string) (string, error) {
	token := s.sessions.Token(ctx)
	if token == "" {
		return "", ErrNotAuthenticated
	}
	return s.api.ChangePassword(ctx, token, currentPassword, newPassword)
}

// VerifyEmail reports whether an account exists for the address.
func (s *Service) VerifyEmail(ctx context.Context, email string) (bool, error) {
	return s.api.VerifyEmail(ctx, email)
}

// VerifyOTP validates a one-time code sent to the address.
func (s *Service) VerifyOTP(ctx context.Context, email, otp string) (bool, error) {
	return s.api.VerifyOTP(ctx, email, otp)
}

// IsAuthenticated delegates to the session reconciler, including its
// self-healing side effects.
func (s *Service) IsAuthenticated(ctx context.Context) bool {
	return s.sessions.IsAuthenticated(ctx)
}

// Revalidate re-walks the backing tiers, demoting stale in-memory
// state left behind by an out-of-band logout.
func (s *Service) Revalidate(ctx context.Context) bool {
	return s.sessions.Resync(ctx)
}

// CurrentUser returns the in-memory user snapshot, nil when signed
// out.
func (s *Service) CurrentUser() *session.User {
	return s.sessions.User()
}
