package tokenstore

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"time"

	"github.com/rezonia/efactura/internal/model"
)

// DefaultCookiePrefix names the token cookies written by CookieStore.
const DefaultCookiePrefix = "efactura_token"

// CookieStore keeps the token client-side in an HttpOnly, Secure,
// SameSite=Strict cookie whose lifetime matches the token expiry. One
// instance is bound to a single request/response pair; construct a fresh
// store per request.
type CookieStore struct {
	w      http.ResponseWriter
	r      *http.Request
	prefix string
	secure bool
}

// CookieOption configures the cookie store
type CookieOption func(*CookieStore)

// WithCookiePrefix overrides the cookie name prefix.
func WithCookiePrefix(prefix string) CookieOption {
	return func(s *CookieStore) {
		s.prefix = prefix
	}
}

// WithInsecureCookies drops the Secure attribute, for plain-HTTP test hosts.
func WithInsecureCookies() CookieOption {
	return func(s *CookieStore) {
		s.secure = false
	}
}

// NewCookieStore creates a store bound to one request/response pair.
func NewCookieStore(w http.ResponseWriter, r *http.Request, opts ...CookieOption) *CookieStore {
	s := &CookieStore{
		w:      w,
		r:      r,
		prefix: DefaultCookiePrefix,
		secure: true,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SetToken writes the token cookie on the bound response.
func (s *CookieStore) SetToken(ctx context.Context, user string, token *model.Token) error {
	key, err := normalizeUser(user)
	if err != nil {
		return err
	}
	payload, err := json.Marshal(token)
	if err != nil {
		return err
	}
	http.SetCookie(s.w, &http.Cookie{
		Name:     s.cookieName(key),
		Value:    base64.RawURLEncoding.EncodeToString(payload),
		Path:     "/",
		Expires:  token.ExpiresAt(),
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteStrictMode,
	})
	return nil
}

// GetToken reads the token cookie from the bound request. An expired or
// undecodable cookie is cleared on the response and reported as absent.
func (s *CookieStore) GetToken(ctx context.Context, user string) (*model.Token, error) {
	key, err := normalizeUser(user)
	if err != nil {
		return nil, err
	}
	cookie, err := s.r.Cookie(s.cookieName(key))
	if err != nil {
		return nil, nil
	}
	payload, err := base64.RawURLEncoding.DecodeString(cookie.Value)
	if err != nil {
		s.expire(key)
		return nil, nil
	}
	var token model.Token
	if err := json.Unmarshal(payload, &token); err != nil {
		s.expire(key)
		return nil, nil
	}
	if token.IsExpired() {
		s.expire(key)
		return nil, nil
	}
	return &token, nil
}

// RemoveToken clears the token cookie on the bound response.
func (s *CookieStore) RemoveToken(ctx context.Context, user string) error {
	key, err := normalizeUser(user)
	if err != nil {
		return err
	}
	s.expire(key)
	return nil
}

// HasValidToken reports whether a currently usable token cookie is present.
func (s *CookieStore) HasValidToken(ctx context.Context, user string) (bool, error) {
	token, err := s.GetToken(ctx, user)
	if err != nil {
		return false, err
	}
	return token != nil && token.IsValid(), nil
}

func (s *CookieStore) cookieName(key string) string {
	return s.prefix + "." + base64.RawURLEncoding.EncodeToString([]byte(key))
}

func (s *CookieStore) expire(key string) {
	http.SetCookie(s.w, &http.Cookie{
		Name:     s.cookieName(key),
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteStrictMode,
	})
}
