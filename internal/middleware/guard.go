package middleware

import (
	"context"
	"net/http"
	"net/url"
	"sync"
	"sync/atomic"
	"time"

	evbus "github.com/asaskevich/EventBus"

	"github.com/chakravarthigit/prompt-frontend/internal/auth"
	"github.com/chakravarthigit/prompt-frontend/internal/logger"
)

// TopicAuthChanged is broadcast when the watcher observes the
// authentication state flip out of band.
const TopicAuthChanged = "auth.changed"

// Guard gates protected views on the auth service's reconciled
// state. Besides the per-request check it runs a fixed-interval
// watcher so a logout performed through a shared store by another
// process converges here within one interval.
type Guard struct {
	svc      *auth.Service
	interval time.Duration
	bus      evbus.Bus

	authed   atomic.Bool
	stopOnce sync.Once
	stop     chan struct{}
}

func NewGuard(svc *auth.Service, interval time.Duration, bus evbus.Bus) *Guard {
	if interval <= 0 {
		interval = 2 * time.Second
	}
	return &Guard{
		svc:      svc,
		interval: interval,
		bus:      bus,
		stop:     make(chan struct{}),
	}
}

// RequireAuth blocks rendering of the wrapped handler unless
// authenticated, redirecting to the login view with the originally
// requested path preserved as return target.
func (g *Guard) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !g.svc.IsAuthenticated(r.Context()) {
			http.Redirect(w, r,
				"/login?from="+url.QueryEscape(r.URL.Path),
				http.StatusFound,
			)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Start launches the re-evaluation watcher and subscribes to session
// resets.
func (g *Guard) Start() error {
	if g.bus != nil {
		if err := g.bus.Subscribe(auth.TopicSessionReset, g.recheck); err != nil {
			return err
		}
	}
	g.authed.Store(g.revalidate())
	go g.watch()
	return nil
}

// Stop halts the watcher. In-flight checks are not interrupted.
func (g *Guard) Stop() {
	g.stopOnce.Do(func() {
		close(g.stop)
		if g.bus != nil {
			_ = g.bus.Unsubscribe(auth.TopicSessionReset, g.recheck)
		}
	})
}

func (g *Guard) watch() {
	ticker := time.NewTicker(g.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			g.recheck()
		case <-g.stop:
			return
		}
	}
}

func (g *Guard) recheck() {
	authed := g.revalidate()
	if g.authed.Swap(authed) == authed {
		return
	}
	logger.Info("auth status changed", map[string]any{"authenticated": authed})
	if g.bus != nil {
		// recheck also runs as a session.reset subscriber; the bus
		// lock is held during synchronous delivery, so the broadcast
		// must not re-enter Publish on this goroutine.
		go g.bus.Publish(TopicAuthChanged, authed)
	}
}

func (g *Guard) revalidate() bool {
	ctx, cancel := context.WithTimeout(context.Background(), g.interval)
	defer cancel()
	return g.svc.Revalidate(ctx)
}
