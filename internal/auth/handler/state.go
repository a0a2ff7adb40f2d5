package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/chakravarthigit/prompt-frontend/internal/utils"
)

const (
	stateCookieName  = "__oauth_state"
	returnCookieName = "__oauth_return"
	stateTTL         = 5 * time.Minute
)

func generateState(c *gin.Context) string {
	state := utils.RandomString(32)

	http.SetCookie(c.Writer, &http.Cookie{
		Name:     stateCookieName,
		Value:    state,
		Path:     "/",
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(stateTTL.Seconds()),
	})

	return state
}

func validateState(c *gin.Context) bool {
	stateQuery := c.Query("state")
	if stateQuery == "" {
		return false
	}

	cookie, err := c.Request.Cookie(stateCookieName)
	if err != nil {
		return false
	}

	return cookie.Value == stateQuery
}

// The originally requested path survives the provider round trip in
// its own short-lived cookie.
func rememberReturnPath(c *gin.Context, path string) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     returnCookieName,
		Value:    safeReturnPath(path),
		Path:     "/",
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(stateTTL.Seconds()),
	})
}

func returnPath(c *gin.Context) string {
	cookie, err := c.Request.Cookie(returnCookieName)
	if err != nil {
		return "/"
	}
	return safeReturnPath(cookie.Value)
}
