package handler

import (
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"github.com/chakravarthigit/prompt-frontend/internal/api"
	"github.com/chakravarthigit/prompt-frontend/internal/logger"
)

func (h *Handler) oauthLogin(c *gin.Context) {
	providerName := c.Param("provider")

	p, err := h.providers.Get(providerName)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "unknown oauth provider",
		})
		return
	}

	state := generateState(c)
	_, codeChallenge := generatePKCE(c)
	rememberReturnPath(c, c.Query("from"))

	authURL := p.AuthCodeURL(state, codeChallenge)
	c.Redirect(http.StatusFound, authURL)
}

// oauthCallback lands both successful provider round trips and
// provider errors. On error it behaves as the social-auth fallback
// view: log, then send the user back to login with a message.
func (h *Handler) oauthCallback(c *gin.Context) {
	providerName := c.Param("provider")

	p, err := h.providers.Get(providerName)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "unknown oauth provider",
		})
		return
	}

	errParam := c.Query("error")
	errDesc := c.Query("error_description")
	if errParam != "" {
		logger.Warn("social auth callback returned error", map[string]any{
			"provider": providerName,
			"error":    errParam,
			"desc":     errDesc,
		})
		if errDesc == "" {
			errDesc = "Authentication failed. Please try again."
		}
		c.Redirect(http.StatusFound, "/login?social_error="+url.QueryEscape(errDesc))
		return
	}

	if !validateState(c) {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "invalid state",
		})
		return
	}

	code := c.Query("code")
	if code == "" {
		logger.Error("social auth callback missing code and error", nil)
		c.AbortWithStatus(http.StatusBadRequest)
		return
	}

	codeVerifier := getPKCEVerifier(c)
	if codeVerifier == "" {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "missing pkce verifier",
		})
		return
	}

	identity, err := p.ExchangeCode(
		c.Request.Context(),
		code,
		codeVerifier,
	)
	if err != nil {
		logger.Error("social auth exchange failed", map[string]any{
			"provider": providerName,
			"error":    err.Error(),
		})
		c.Redirect(http.StatusFound, "/login?social_error="+url.QueryEscape("Authentication failed. Please try again."))
		return
	}

	_, err = h.svc.SocialLogin(c.Request.Context(), providerName, api.SocialProfile{
		Name:     identity.Name,
		Email:    identity.Email,
		UID:      identity.ProviderUserID,
		PhotoURL: identity.AvatarURL,
	})
	if err != nil {
		c.Redirect(http.StatusFound, "/login?social_error="+url.QueryEscape(failureMessage(err, "Authentication failed. Please try again.")))
		return
	}

	c.Redirect(http.StatusFound, returnPath(c))
}
