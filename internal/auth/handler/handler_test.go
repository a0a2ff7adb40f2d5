package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	evbus "github.com/asaskevich/EventBus"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/chakravarthigit/prompt-frontend/internal/api"
	"github.com/chakravarthigit/prompt-frontend/internal/auth"
	"github.com/chakravarthigit/prompt-frontend/internal/auth/provider"
	"github.com/chakravarthigit/prompt-frontend/internal/session"
)

// fakeProvider satisfies the provider contract without a network
// round trip, recording what the handler passed in.
type fakeProvider struct {
	name         string
	identity     *auth.Identity
	exchangeErr  error
	gotCode      string
	gotChallenge string
}

func (p *fakeProvider) Name() string { return p.name }

func (p *fakeProvider) AuthCodeURL(state, codeChallenge string) string {
	p.gotChallenge = codeChallenge
	return "https://idp.example.com/authorize?state=" + url.QueryEscape(state)
}

func (p *fakeProvider) ExchangeCode(_ context.Context, code, _ string) (*auth.Identity, error) {
	p.gotCode = code
	if p.exchangeErr != nil {
		return nil, p.exchangeErr
	}
	return p.identity, nil
}

type handlerStack struct {
	router  *gin.Engine
	tiers   *session.Reconciler
	fake    *fakeProvider
	backend *httptest.Server
}

func newHandlerStack(t *testing.T, backend http.Handler) *handlerStack {
	t.Helper()
	gin.SetMode(gin.TestMode)

	srv := httptest.NewServer(backend)
	t.Cleanup(srv.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	origin, err := url.Parse(srv.URL)
	require.NoError(t, err)

	cookie := session.NewJarStore(jar, origin)
	tiers := session.NewReconciler(cookie, session.NewMemoryStore(), session.NewMemoryStore(), time.Hour)
	svc := auth.NewService(api.New(srv.URL, jar, evbus.New()), tiers, evbus.New())

	fake := &fakeProvider{
		name: "google",
		identity: &auth.Identity{
			Provider:       "google",
			ProviderUserID: "uid-1",
			Email:          "a@example.com",
			Name:           "Alice",
			AvatarURL:      "https://p.example.com/a.png",
		},
	}

	router := gin.New()
	NewHandler(svc, provider.NewRegistry(fake)).RegisterRoutes(router)
	return &handlerStack{router: router, tiers: tiers, fake: fake, backend: srv}
}

func loginBackend(token string, user session.User) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/auth/login", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(api.LoginResult{Token: token, User: user})
	})
	mux.HandleFunc("POST /api/auth/social-login", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(api.LoginResult{Token: token, User: user})
	})
	return mux
}

func TestLoginHandlerReturnsUserAndRedirect(t *testing.T) {
	hs := newHandlerStack(t, loginBackend("abc", session.User{Name: "Alice"}))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/auth/login?from=/playground",
		strings.NewReader(`{"emailOrMobile":"a@example.com","password":"secret"}`))
	req.Header.Set("Content-Type", "application/json")
	hs.router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Equal(t, "logged_in", body["status"])
	require.Equal(t, "/playground", body["redirect"])
	require.True(t, hs.tiers.IsAuthenticated(context.Background()))
}

func TestLoginHandlerSanitizesReturnPath(t *testing.T) {
	hs := newHandlerStack(t, loginBackend("abc", session.User{Name: "Alice"}))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/auth/login?from=//evil.example.com",
		strings.NewReader(`{"emailOrMobile":"a@example.com","password":"secret"}`))
	req.Header.Set("Content-Type", "application/json")
	hs.router.ServeHTTP(w, req)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Equal(t, "/", body["redirect"])
}

func TestLoginHandlerSurfacesBackendMessage(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/auth/login", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(map[string]string{"message": "Invalid credentials"})
	})
	hs := newHandlerStack(t, mux)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/auth/login",
		strings.NewReader(`{"emailOrMobile":"a@example.com","password":"wrong"}`))
	req.Header.Set("Content-Type", "application/json")
	hs.router.ServeHTTP(w, req)

	require.Equal(t, http.StatusUnauthorized, w.Code)
	require.Contains(t, w.Body.String(), "Invalid credentials")
}

func TestLoginHandlerUpstreamFailureIsBadGateway(t *testing.T) {
	t.Run("backend 5xx", func(t *testing.T) {
		mux := http.NewServeMux()
		mux.HandleFunc("POST /api/auth/login", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		})
		hs := newHandlerStack(t, mux)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/auth/login",
			strings.NewReader(`{"emailOrMobile":"a@example.com","password":"secret"}`))
		req.Header.Set("Content-Type", "application/json")
		hs.router.ServeHTTP(w, req)

		require.Equal(t, http.StatusBadGateway, w.Code)
	})

	t.Run("backend unreachable", func(t *testing.T) {
		hs := newHandlerStack(t, http.NewServeMux())
		hs.backend.Close()

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/auth/login",
			strings.NewReader(`{"emailOrMobile":"a@example.com","password":"secret"}`))
		req.Header.Set("Content-Type", "application/json")
		hs.router.ServeHTTP(w, req)

		require.Equal(t, http.StatusBadGateway, w.Code)
	})
}

func TestSignupHandlerStatusTaxonomy(t *testing.T) {
	t.Run("backend rejection keeps 400", func(t *testing.T) {
		mux := http.NewServeMux()
		mux.HandleFunc("POST /api/auth/signup", func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusConflict)
			_ = json.NewEncoder(w).Encode(map[string]string{"message": "Email already registered"})
		})
		hs := newHandlerStack(t, mux)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/auth/signup",
			strings.NewReader(`{"name":"Alice","email":"a@example.com","password":"secret"}`))
		req.Header.Set("Content-Type", "application/json")
		hs.router.ServeHTTP(w, req)

		require.Equal(t, http.StatusBadRequest, w.Code)
		require.Contains(t, w.Body.String(), "Email already registered")
	})

	t.Run("backend 5xx is bad gateway", func(t *testing.T) {
		mux := http.NewServeMux()
		mux.HandleFunc("POST /api/auth/signup", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		})
		hs := newHandlerStack(t, mux)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/auth/signup",
			strings.NewReader(`{"name":"Alice","email":"a@example.com","password":"secret"}`))
		req.Header.Set("Content-Type", "application/json")
		hs.router.ServeHTTP(w, req)

		require.Equal(t, http.StatusBadGateway, w.Code)
	})
}

func TestLoginHandlerRejectsMalformedBody(t *testing.T) {
	hs := newHandlerStack(t, http.NewServeMux())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(`{"password":""}`))
	req.Header.Set("Content-Type", "application/json")
	hs.router.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLogoutHandlerAlwaysSucceeds(t *testing.T) {
	// Backend has no logout route at all; local clearing still wins.
	hs := newHandlerStack(t, http.NewServeMux())
	hs.tiers.FanOut(context.Background(), session.Session{Token: "t1", User: session.User{Name: "A"}})

	w := httptest.NewRecorder()
	hs.router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/auth/logout", nil))

	require.Equal(t, http.StatusNoContent, w.Code)
	require.False(t, hs.tiers.IsAuthenticated(context.Background()))
}

func TestOAuthLoginRedirectsToProvider(t *testing.T) {
	hs := newHandlerStack(t, http.NewServeMux())

	w := httptest.NewRecorder()
	hs.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/oauth/login/google?from=/profile", nil))

	require.Equal(t, http.StatusFound, w.Code)
	require.True(t, strings.HasPrefix(w.Header().Get("Location"), "https://idp.example.com/authorize"))
	require.NotEmpty(t, hs.fake.gotChallenge)

	// State, PKCE verifier and return path all ride in cookies.
	names := map[string]bool{}
	for _, c := range w.Result().Cookies() {
		names[c.Name] = true
	}
	for _, want := range []string{stateCookieName, pkceCookieName, returnCookieName} {
		require.True(t, names[want], want)
	}
}

func TestOAuthLoginUnknownProvider(t *testing.T) {
	hs := newHandlerStack(t, http.NewServeMux())

	w := httptest.NewRecorder()
	hs.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/oauth/login/facebook", nil))

	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestOAuthCallbackEstablishesSession(t *testing.T) {
	hs := newHandlerStack(t, loginBackend("tok", session.User{Name: "Alice"}))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet,
		"/auth/callback/google?code=c1&state=s1", nil)
	req.AddCookie(&http.Cookie{Name: stateCookieName, Value: "s1"})
	req.AddCookie(&http.Cookie{Name: pkceCookieName, Value: "verifier"})
	req.AddCookie(&http.Cookie{Name: returnCookieName, Value: "/profile"})
	hs.router.ServeHTTP(w, req)

	require.Equal(t, http.StatusFound, w.Code)
	require.Equal(t, "/profile", w.Header().Get("Location"))
	require.Equal(t, "c1", hs.fake.gotCode)
	require.True(t, hs.tiers.IsAuthenticated(context.Background()))
}

func TestOAuthCallbackRejectsBadState(t *testing.T) {
	hs := newHandlerStack(t, http.NewServeMux())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet,
		"/auth/callback/google?code=c1&state=forged", nil)
	req.AddCookie(&http.Cookie{Name: stateCookieName, Value: "s1"})
	hs.router.ServeHTTP(w, req)

	require.Equal(t, http.StatusUnauthorized, w.Code)
	require.False(t, hs.tiers.IsAuthenticated(context.Background()))
}

func TestOAuthCallbackProviderErrorRedirectsToLogin(t *testing.T) {
	hs := newHandlerStack(t, http.NewServeMux())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet,
		"/auth/callback/google?error=access_denied&error_description=User+cancelled", nil)
	hs.router.ServeHTTP(w, req)

	require.Equal(t, http.StatusFound, w.Code)
	loc, err := url.Parse(w.Header().Get("Location"))
	require.NoError(t, err)
	require.Equal(t, "/login", loc.Path)
	require.Equal(t, "User cancelled", loc.Query().Get("social_error"))
}

func TestOAuthCallbackExchangeFailureRedirectsToLogin(t *testing.T) {
	hs := newHandlerStack(t, http.NewServeMux())
	hs.fake.exchangeErr = errors.New("token endpoint unreachable")

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet,
		"/auth/callback/google?code=c1&state=s1", nil)
	req.AddCookie(&http.Cookie{Name: stateCookieName, Value: "s1"})
	req.AddCookie(&http.Cookie{Name: pkceCookieName, Value: "verifier"})
	hs.router.ServeHTTP(w, req)

	require.Equal(t, http.StatusFound, w.Code)
	loc, err := url.Parse(w.Header().Get("Location"))
	require.NoError(t, err)
	require.Equal(t, "/login", loc.Path)
	require.Equal(t, "Authentication failed. Please try again.", loc.Query().Get("social_error"))
}

func TestSafeReturnPath(t *testing.T) {
	require.Equal(t, "/", safeReturnPath(""))
	require.Equal(t, "/playground", safeReturnPath("/playground"))
	require.Equal(t, "/", safeReturnPath("//evil.example.com"))
	require.Equal(t, "/", safeReturnPath("https://evil.example.com"))
	require.Equal(t, "/", safeReturnPath("playground"))
}
