package session

import (
	"context"
	"sync"
	"time"

	"github.com/chakravarthigit/prompt-frontend/internal/logger"
)

// State is the reconciler's view of the current browser context.
type State int

const (
	// StateUnknown holds until the first reconciliation pass.
	StateUnknown State = iota
	StateAuthenticated
	StateUnauthenticated
)

// Reconciler maintains one logical session across three redundant
// tiers: the cookie jar (primary), the in-process store (backup) and
// the persistent store (final fallback). Reads walk the tiers in that
// precedence order and heal stronger tiers from whichever weaker tier
// held a value.
type Reconciler struct {
	mu      sync.Mutex
	state   State
	current *Session

	cookie  Store
	session Store
	local   Store

	// Expiry applied on fan-out and on every backfill/renewal.
	ttl time.Duration
}

func NewReconciler(cookie, session, local Store, ttl time.Duration) *Reconciler {
	if ttl <= 0 {
		ttl = 30 * 24 * time.Hour
	}
	return &Reconciler{
		state:   StateUnknown,
		cookie:  cookie,
		session: session,
		local:   local,
		ttl:     ttl,
	}
}

// IsAuthenticated reports whether any tier (or memory) currently
// holds a valid token/user pair. Despite the interrogative name it
// mutates shared state: a pair found in a weaker tier is adopted into
// memory and propagated back up to every stronger tier.
func (r *Reconciler) IsAuthenticated(ctx context.Context) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.reconcileLocked(ctx, true)
}

// Resync re-walks the backing tiers even when memory says
// authenticated. It is the convergence hook for out-of-band changes:
// another process clearing the shared stores demotes this one to
// unauthenticated on the next call.
func (r *Reconciler) Resync(ctx context.Context) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.reconcileLocked(ctx, false)
}

func (r *Reconciler) reconcileLocked(ctx context.Context, trustMemory bool) bool {
	if trustMemory && r.current != nil {
		r.state = StateAuthenticated
		return true
	}

	// Primary: cookie jar. A hit renews the cookie expiry and
	// refreshes the backup copy.
	if sess, ok := r.readTier(ctx, r.cookie); ok {
		r.adoptLocked(sess)
		r.writeTier(ctx, r.cookie, sess)
		r.writeTier(ctx, r.session, sess)
		return true
	}

	// Backup: in-process store. Backfill the cookie jar.
	if sess, ok := r.readTier(ctx, r.session); ok {
		r.adoptLocked(sess)
		r.writeTier(ctx, r.cookie, sess)
		return true
	}

	// Final fallback: persistent store. Backfill both stronger tiers.
	if sess, ok := r.readTier(ctx, r.local); ok {
		r.adoptLocked(sess)
		r.writeTier(ctx, r.cookie, sess)
		r.writeTier(ctx, r.session, sess)
		return true
	}

	r.current = nil
	r.state = StateUnauthenticated
	return false
}

func (r *Reconciler) adoptLocked(sess Session) {
	s := sess
	r.current = &s
	r.state = StateAuthenticated
}

// readTier loads a complete pair from one tier. Read failures and
// malformed payloads are logged and reported as absence so the caller
// falls through to the next tier.
func (r *Reconciler) readTier(ctx context.Context, s Store) (Session, bool) {
	token, ok, err := s.Get(ctx, KeyAuthToken)
	if err != nil {
		logger.Warn("session token read failed", map[string]any{
			"store": s.Name(),
			"error": err.Error(),
		})
		return Session{}, false
	}
	if !ok || token == "" {
		return Session{}, false
	}

	var user User
	if !GetJSON(ctx, s, KeyUser, &user) {
		return Session{}, false
	}

	return Session{Token: token, User: user}, true
}

// writeTier mirrors a session into one tier, best effort.
func (r *Reconciler) writeTier(ctx context.Context, s Store, sess Session) {
	if err := s.Set(ctx, KeyAuthToken, sess.Token, r.ttl); err != nil {
		logger.Warn("session token write failed", map[string]any{
			"store": s.Name(),
			"error": err.Error(),
		})
		return
	}
	if err := SetJSON(ctx, s, KeyUser, sess.User, r.ttl); err != nil {
		logger.Warn("session user write failed", map[string]any{
			"store": s.Name(),
			"error": err.Error(),
		})
	}
}

// FanOut establishes a freshly issued session everywhere: cookie jar,
// then in-process store, then persistent store, then memory. The
// writes are not atomic across tiers; a partial fan-out heals on the
// next reconciliation pass.
func (r *Reconciler) FanOut(ctx context.Context, sess Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.writeTier(ctx, r.cookie, sess)
	r.writeTier(ctx, r.session, sess)
	r.writeTier(ctx, r.local, sess)
	r.adoptLocked(sess)
}

// Clear destroys the session. Memory is dropped before any tier is
// touched so no concurrent reader observes a stale authenticated
// state while the tiers are being emptied.
func (r *Reconciler) Clear(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.current = nil
	r.state = StateUnauthenticated
	for _, s := range []Store{r.cookie, r.session, r.local} {
		for _, key := range []string{KeyAuthToken, KeyUser} {
			if err := s.Remove(ctx, key); err != nil {
				logger.Warn("session clear failed", map[string]any{
					"store": s.Name(),
					"key":   key,
					"error": err.Error(),
				})
			}
		}
	}
}

// Token resolves the bearer token for authenticated API calls,
// cookie jar first, then the in-process store.
func (r *Reconciler) Token(ctx context.Context) string {
	for _, s := range []Store{r.cookie, r.session} {
		token, ok, err := s.Get(ctx, KeyAuthToken)
		if err == nil && ok && token != "" {
			return token
		}
	}
	return ""
}

// User returns a snapshot of the in-memory user, or nil when
// unauthenticated.
func (r *Reconciler) User() *User {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.current == nil {
		return nil
	}
	u := r.current.User
	return &u
}

// State reports the current reconciliation state.
func (r *Reconciler) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}
