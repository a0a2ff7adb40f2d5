package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	evbus "github.com/asaskevich/EventBus"
	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"

	"github.com/chakravarthigit/prompt-frontend/internal/connectivity"
	"github.com/chakravarthigit/prompt-frontend/internal/session"
)

// Client talks to the remote PromptWizard backend. It shares one
// cookie jar with the session layer so backend HTTP-only cookies ride
// along on every request, the equivalent of fetch with
// credentials: include.
type Client struct {
	http *resty.Client
	bus  evbus.Bus
}

func New(baseURL string, jar http.CookieJar, bus evbus.Bus) *Client {
	rc := resty.New().
		SetBaseURL(baseURL).
		SetCookieJar(jar).
		SetTimeout(15 * time.Second).
		SetHeader("Content-Type", "application/json")

	rc.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
		req.SetHeader("X-Request-ID", uuid.NewString())
		return nil
	})

	c := &Client{http: rc, bus: bus}

	// Every transport outcome doubles as a connectivity hint.
	rc.OnAfterResponse(func(_ *resty.Client, _ *resty.Response) error {
		c.hint(connectivity.TopicHintOnline)
		return nil
	})
	rc.OnError(func(_ *resty.Request, _ error) {
		c.hint(connectivity.TopicHintOffline)
	})

	return c
}

func (c *Client) hint(topic string) {
	if c.bus != nil {
		c.bus.Publish(topic)
	}
}

// errBody matches the backend's error envelope; some endpoints use
// "message", others "error".
type errBody struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

func (e errBody) text() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Error
}

// apiError converts a non-2xx response into an *APIError, preferring
// the backend-provided message over the generic fallback.
func apiError(resp *resty.Response, body *errBody, fallback string) error {
	msg := body.text()
	if msg == "" {
		msg = fallback
	}
	return &APIError{Status: resp.StatusCode(), Message: msg}
}

// LoginResult is the payload of every session-establishing endpoint.
type LoginResult struct {
	Token string       `json:"token"`
	User  session.User `json:"user"`
}

func (c *Client) Login(ctx context.Context, emailOrMobile, password, countryCode string) (*LoginResult, error) {
	var (
		out  LoginResult
		eout errBody
	)
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(map[string]string{
			"emailOrMobile": emailOrMobile,
			"password":      password,
			"countryCode":   countryCode,
		}).
		SetResult(&out).
		SetError(&eout).
		Post("/api/auth/login")
	if err != nil {
		return nil, fmt.Errorf("login request: %w", err)
	}
	if resp.IsError() {
		return nil, apiError(resp, &eout, "Login failed")
	}
	return &out, nil
}

// Signup registers a new account. The backend does not issue a token
// here; password signups are gated behind email/OTP verification.
func (c *Client) Signup(ctx context.Context, name, email, password, mobileNumber, countryCode string) (map[string]any, error) {
	var (
		out  map[string]any
		eout errBody
	)
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(map[string]string{
			"name":         name,
			"email":        email,
			"password":     password,
			"mobileNumber": mobileNumber,
			"countryCode":  countryCode,
		}).
		SetResult(&out).
		SetError(&eout).
		Post("/api/auth/signup")
	if err != nil {
		return nil, fmt.Errorf("signup request: %w", err)
	}
	if resp.IsError() {
		return nil, apiError(resp, &eout, "Signup failed")
	}
	return out, nil
}

// SocialProfile is the normalized profile obtained from an external
// identity provider.
type SocialProfile struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	UID      string `json:"uid"`
	PhotoURL string `json:"photoURL"`
}

func (c *Client) SocialLogin(ctx context.Context, provider string, profile SocialProfile) (*LoginResult, error) {
	var (
		out  LoginResult
		eout errBody
	)
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(map[string]string{
			"provider": provider,
			"name":     profile.Name,
			"email":    profile.Email,
			"uid":      profile.UID,
			"photoURL": profile.PhotoURL,
		}).
		SetResult(&out).
		SetError(&eout).
		Post("/api/auth/social-login")
	if err != nil {
		return nil, fmt.Errorf("social login request: %w", err)
	}
	if resp.IsError() {
		return nil, apiError(resp, &eout, fmt.Sprintf("%s login failed", provider))
	}
	return &out, nil
}

// Logout asks the backend to invalidate its HTTP-only cookies. The
// auth cookies in the jar are cleared by the session layer, not here.
func (c *Client) Logout(ctx context.Context) error {
	resp, err := c.http.R().
		SetContext(ctx).
		Post("/api/auth/logout")
	if err != nil {
		return fmt.Errorf("logout request: %w", err)
	}
	if resp.IsError() {
		return &APIError{Status: resp.StatusCode(), Message: "Logout failed"}
	}
	return nil
}

// ProfileResult wraps the updated user returned by the profile
// endpoint.
type ProfileResult struct {
	User session.User `json:"user"`
}

func (c *Client) UpdateProfile(ctx context.Context, token string, fields map[string]any) (*ProfileResult, error) {
	var (
		out  ProfileResult
		eout errBody
	)
	resp, err := c.http.R().
		SetContext(ctx).
		SetAuthToken(token).
		SetBody(fields).
		SetResult(&out).
		SetError(&eout).
		Put("/api/auth/profile")
	if err != nil {
		return nil, fmt.Errorf("profile update request: %w", err)
	}
	if resp.IsError() {
		return nil, apiError(resp, &eout, "Profile update failed")
	}
	return &out, nil
}

func (c *Client) ChangePassword(ctx context.Context, token, currentPassword, newPassword string) (string, error) {
	var (
		out struct {
			Message string `json:"message"`
		}
		eout errBody
	)
	resp, err := c.http.R().
		SetContext(ctx).
		SetAuthToken(token).
		SetBody(map[string]string{
			"currentPassword": currentPassword,
			"newPassword":     newPassword,
		}).
		SetResult(&out).
		SetError(&eout).
		Post("/api/auth/change-password")
	if err != nil {
		return "", fmt.Errorf("change password request: %w", err)
	}
	if resp.IsError() {
		return "", apiError(resp, &eout, "Password change failed")
	}
	return out.Message, nil
}

func (c *Client) VerifyEmail(ctx context.Context, email string) (bool, error) {
	var (
		out struct {
			Exists bool `json:"exists"`
		}
		eout errBody
	)
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(map[string]string{"email": email}).
		SetResult(&out).
		SetError(&eout).
		Post("/api/auth/verify-email")
	if err != nil {
		return false, fmt.Errorf("verify email request: %w", err)
	}
	if resp.IsError() {
		return false, apiError(resp, &eout, "Email verification failed")
	}
	return out.Exists, nil
}

func (c *Client) VerifyOTP(ctx context.Context, email, otp string) (bool, error) {
	var (
		out struct {
			Verified bool `json:"verified"`
		}
		eout errBody
	)
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(map[string]string{"email": email, "otp": otp}).
		SetResult(&out).
		SetError(&eout).
		Post("/api/auth/verify-otp")
	if err != nil {
		return false, fmt.Errorf("verify otp request: %w", err)
	}
	if resp.IsError() {
		return false, apiError(resp, &eout, "OTP verification failed")
	}
	return out.Verified, nil
}
