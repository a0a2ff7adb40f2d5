package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/chakravarthigit/prompt-frontend/internal/api"
	"github.com/chakravarthigit/prompt-frontend/internal/auth"
	"github.com/chakravarthigit/prompt-frontend/internal/auth/provider"
	"github.com/chakravarthigit/prompt-frontend/internal/logger"
)

type Handler struct {
	svc       *auth.Service
	providers *provider.Registry
}

func NewHandler(svc *auth.Service, registry *provider.Registry) *Handler {
	return &Handler{
		svc:       svc,
		providers: registry,
	}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.POST("/auth/login", h.Login)
	r.POST("/auth/signup", h.Signup)
	r.POST("/auth/logout", h.Logout)
	r.PUT("/auth/profile", h.UpdateProfile)
	r.POST("/auth/change-password", h.ChangePassword)
	r.POST("/auth/verify-email", h.VerifyEmail)
	r.POST("/auth/verify-otp", h.VerifyOTP)

	r.GET("/oauth/login/:provider", h.oauthLogin)
	r.GET("/auth/callback/:provider", h.oauthCallback)

	for _, route := range r.Routes() {
		logger.Info("route registered", map[string]any{
			"method": route.Method,
			"path":   route.Path,
		})
	}
}

// failureMessage extracts the backend's message from an auth error,
// keeping transport details out of user-facing responses.
func failureMessage(err error, fallback string) string {
	var apiErr *api.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return fallback
}

// failureStatus maps an auth error onto a response status: a backend
// rejection keeps the given status, while transport failures and
// upstream 5xx surface as bad gateway.
func failureStatus(err error, rejected int) int {
	var apiErr *api.APIError
	if errors.As(err, &apiErr) && apiErr.Status < http.StatusInternalServerError {
		return rejected
	}
	return http.StatusBadGateway
}

// safeReturnPath keeps post-login redirects on-site.
func safeReturnPath(p string) string {
	if p == "" || !strings.HasPrefix(p, "/") || strings.HasPrefix(p, "//") {
		return "/"
	}
	return p
}

func (h *Handler) Logout(c *gin.Context) {
	h.svc.Logout(c.Request.Context())
	c.Status(http.StatusNoContent)
}
