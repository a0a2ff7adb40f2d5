package session

import (
	"context"
	"net/http"
	"net/url"
	"time"
)

// JarStore is the primary tier: the HTTP cookie jar shared with the
// backend API client. Entries written here ride along on every
// backend request, exactly like browser cookies would.
type JarStore struct {
	jar    http.CookieJar
	origin *url.URL
}

func NewJarStore(jar http.CookieJar, origin *url.URL) *JarStore {
	return &JarStore{jar: jar, origin: origin}
}

func (s *JarStore) Name() string { return "cookie" }

// Jar exposes the underlying jar so the API client can share it.
func (s *JarStore) Jar() http.CookieJar { return s.jar }

func (s *JarStore) Set(_ context.Context, name, value string, ttl time.Duration) error {
	s.jar.SetCookies(s.origin, []*http.Cookie{{
		Name:     name,
		Value:    url.QueryEscape(value),
		Path:     "/",
		Expires:  time.Now().Add(ttl),
		SameSite: http.SameSiteLaxMode,
	}})
	return nil
}

func (s *JarStore) Get(_ context.Context, name string) (string, bool, error) {
	for _, c := range s.jar.Cookies(s.origin) {
		if c.Name != name {
			continue
		}
		value, err := url.QueryUnescape(c.Value)
		if err != nil {
			// Undecodable cookie counts as absent, like a corrupt entry.
			return "", false, err
		}
		return value, true, nil
	}
	return "", false, nil
}

func (s *JarStore) Remove(_ context.Context, name string) error {
	s.jar.SetCookies(s.origin, []*http.Cookie{{
		Name:   name,
		Value:  "",
		Path:   "/",
		MaxAge: -1,
	}})
	return nil
}
