package middleware

import (
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"github.com/chakravarthigit/prompt-frontend/internal/auth"
	"github.com/chakravarthigit/prompt-frontend/internal/connectivity"
)

// OfflinePath is the single route reachable while offline.
const OfflinePath = "/404"

// OfflineGate collapses the whole route table to the offline
// fallback while the monitor reports offline. Every other path,
// public ones included, redirects there.
func OfflineGate(m *connectivity.Monitor) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !m.Online() && c.Request.URL.Path != OfflinePath {
			c.Redirect(http.StatusFound, OfflinePath+"?offline=1")
			c.Abort()
			return
		}
		c.Next()
	}
}

// OfflineFallback serves the fallback view. A visitor parked here by
// the offline override goes home as soon as connectivity is
// reconfirmed; an organic not-found visit renders the page either
// way.
func OfflineFallback(m *connectivity.Monitor, pageFile string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if m.Online() && c.Query("offline") == "1" {
			c.Redirect(http.StatusFound, "/")
			return
		}
		c.File(pageFile)
	}
}

// ProtectedPathGate redirects unauthenticated direct loads of a
// protected path to login. This intentionally duplicates the route
// guard: either layer alone can be bypassed (deep link, stale
// component tree), so both enforce the same guarantee.
func ProtectedPathGate(svc *auth.Service, paths ...string) gin.HandlerFunc {
	protected := make(map[string]struct{}, len(paths))
	for _, p := range paths {
		protected[p] = struct{}{}
	}
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		if _, ok := protected[path]; ok && !svc.IsAuthenticated(c.Request.Context()) {
			c.Redirect(http.StatusFound, "/login?from="+url.QueryEscape(path))
			c.Abort()
			return
		}
		c.Next()
	}
}
