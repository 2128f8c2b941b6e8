// Package auth implements the OAuth2 authorization-code flow against the
// ANAF identity provider: authorization URLs, code exchange, refresh, and a
// single "give me a valid access token" accessor.
package auth

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/rezonia/efactura/internal/config"
	"github.com/rezonia/efactura/internal/model"
	"github.com/rezonia/efactura/internal/tokenstore"
)

// The token endpoint insists on JWT-shaped access tokens.
const tokenContentType = "jwt"

// Grant type names on the wire.
const (
	grantAuthorizationCode = "authorization_code"
	grantRefreshToken      = "refresh_token"
)

// IdentityResolver derives a store key from a raw access token.
type IdentityResolver func(accessToken string) (string, error)

// Service drives the OAuth2 token lifecycle. All token reads and writes go
// through the injected store, keyed by user, so one service instance can
// serve any number of users.
type Service struct {
	cfg          *config.Config
	store        tokenstore.Store
	states       *StateManager
	httpClient   *http.Client
	log          *zap.Logger
	now          func() time.Time
	identify     IdentityResolver
	authorizeURL string
	tokenURL     string

	// Serializes the check-then-refresh sequence so concurrent callers do
	// not race to issue redundant refresh requests.
	mu sync.Mutex
}

// Option configures the service
type Option func(*Service)

// WithHTTPClient overrides the HTTP client used for token requests.
func WithHTTPClient(client *http.Client) Option {
	return func(s *Service) {
		s.httpClient = client
	}
}

// WithLogger sets the logger for swallowed transport failures.
func WithLogger(log *zap.Logger) Option {
	return func(s *Service) {
		s.log = log
	}
}

// WithStateTTL overrides how long issued authorization states stay valid.
func WithStateTTL(ttl time.Duration) Option {
	return func(s *Service) {
		s.states = NewStateManager(ttl)
	}
}

// WithClock overrides the time source, used in tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// WithIdentityResolver overrides how a user name is derived from an access
// token when the caller supplies none. Defaults to JWT claim inspection.
func WithIdentityResolver(resolve IdentityResolver) Option {
	return func(s *Service) {
		s.identify = resolve
	}
}

// WithEndpoints overrides the identity provider URLs, used in tests.
func WithEndpoints(authorizeURL, tokenURL string) Option {
	return func(s *Service) {
		s.authorizeURL = authorizeURL
		s.tokenURL = tokenURL
	}
}

// NewService creates an authentication service backed by the given store.
func NewService(cfg *config.Config, store tokenstore.Store, opts ...Option) *Service {
	s := &Service{
		cfg:          cfg,
		store:        store,
		states:       NewStateManager(DefaultStateTTL),
		httpClient:   &http.Client{Timeout: cfg.Timeout()},
		log:          zap.NewNop(),
		now:          time.Now,
		identify:     tokenstore.UserFromJWT,
		authorizeURL: config.AuthorizeEndpoint,
		tokenURL:     config.TokenEndpoint,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// BuildAuthorizeURL assembles the browser redirect URL for the
// authorization-code grant. Pure string assembly, no I/O.
func BuildAuthorizeURL(base, clientID, redirectURI, scope, state string) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", err
	}
	q := u.Query()
	q.Set("response_type", "code")
	q.Set("client_id", clientID)
	q.Set("redirect_uri", redirectURI)
	q.Set("token_content_type", tokenContentType)
	if scope != "" {
		q.Set("scope", scope)
	}
	if state != "" {
		q.Set("state", state)
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// BeginAuthorization issues a fresh state value and returns the redirect URL
// carrying it. The matching callback must present the same state to
// CompleteAuthorization.
func (s *Service) BeginAuthorization(scope string) (authorizeURL, state string, err error) {
	state = s.states.Issue()
	authorizeURL, err = BuildAuthorizeURL(s.authorizeURL, s.cfg.ClientID, s.cfg.RedirectURI, scope, state)
	if err != nil {
		return "", "", err
	}
	return authorizeURL, state, nil
}

// CompleteAuthorization validates the callback state, exchanges the code, and
// stores the resulting token for the user. State validation is mandatory;
// callbacks with an unknown or stale state fail with ErrInvalidState before
// any code exchange happens.
func (s *Service) CompleteAuthorization(ctx context.Context, user, code, state string) (*model.Token, error) {
	if err := s.states.Consume(state); err != nil {
		return nil, err
	}
	return s.ExchangeCode(ctx, user, code)
}

// ExchangeCode trades an authorization code for a token and stores it. When
// user is empty the identity is derived through the configured resolver; a
// token with no resolvable identity fails with an IdentityError.
func (s *Service) ExchangeCode(ctx context.Context, user, code string) (*model.Token, error) {
	form := url.Values{}
	form.Set("code", code)
	form.Set("redirect_uri", s.cfg.RedirectURI)
	token, err := s.requestToken(ctx, grantAuthorizationCode, form)
	if err != nil {
		return nil, err
	}
	if user == "" {
		user, err = s.identify(token.AccessToken)
		if err != nil {
			return nil, err
		}
	}
	token.User = user
	if err := s.store.SetToken(ctx, user, token); err != nil {
		return nil, err
	}
	return token, nil
}

// RefreshToken renews a token using the given refresh token and stores the
// result.
func (s *Service) RefreshToken(ctx context.Context, user, refreshToken string) (*model.Token, error) {
	form := url.Values{}
	form.Set("refresh_token", refreshToken)
	token, err := s.requestToken(ctx, grantRefreshToken, form)
	if err != nil {
		return nil, err
	}
	token.User = user
	if token.RefreshToken == "" {
		// Providers may omit the refresh token on renewal; keep the old one.
		token.RefreshToken = refreshToken
	}
	if err := s.store.SetToken(ctx, user, token); err != nil {
		return nil, err
	}
	return token, nil
}

// GetValidAccessToken returns a currently valid access token for the user,
// refreshing the stored token when necessary. When no stored token exists and
// no refresh is possible it fails with ErrAuthenticationRequired: the caller
// must restart the authorization flow.
func (s *Service) GetValidAccessToken(ctx context.Context, user string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	token, err := s.store.GetToken(ctx, user)
	if err != nil {
		return "", err
	}
	if token == nil {
		return "", model.ErrAuthenticationRequired
	}
	if token.IsValidAt(s.now()) {
		return token.AccessToken, nil
	}
	if !token.HasRefreshToken() {
		return "", model.ErrAuthenticationRequired
	}
	refreshed, err := s.RefreshToken(ctx, user, token.RefreshToken)
	if err != nil {
		s.log.Warn("token refresh failed, re-authentication required",
			zap.String("user", user),
			zap.Error(err))
		return "", model.ErrAuthenticationRequired
	}
	return refreshed.AccessToken, nil
}

// SetToken installs a token acquired out of band, keyed by its User field.
func (s *Service) SetToken(ctx context.Context, token *model.Token) error {
	if token.CreatedAt.IsZero() {
		token.CreatedAt = s.now()
	}
	return s.store.SetToken(ctx, token.User, token)
}

// Logout removes the stored token for a user.
func (s *Service) Logout(ctx context.Context, user string) error {
	return s.store.RemoveToken(ctx, user)
}

// requestToken posts a grant to the token endpoint. Transport failures,
// provider rejections, and malformed bodies are logged and returned as tagged
// ExchangeErrors; nothing at this boundary panics or leaks raw transport
// errors.
func (s *Service) requestToken(ctx context.Context, grant string, form url.Values) (*model.Token, error) {
	form.Set("grant_type", grant)
	form.Set("token_content_type", tokenContentType)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, model.NewExchangeError(grant, model.ReasonTransport, 0, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth(s.cfg.ClientID, s.cfg.ClientSecret)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		s.log.Warn("token endpoint unreachable",
			zap.String("grant", grant),
			zap.Error(err))
		return nil, model.NewExchangeError(grant, model.ReasonTransport, 0, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		s.log.Warn("token response read failed",
			zap.String("grant", grant),
			zap.Error(err))
		return nil, model.NewExchangeError(grant, model.ReasonTransport, resp.StatusCode, err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		s.log.Warn("token endpoint rejected grant",
			zap.String("grant", grant),
			zap.Int("status", resp.StatusCode))
		return nil, model.NewExchangeError(grant, model.ReasonRejected, resp.StatusCode, nil)
	}

	var token model.Token
	if err := json.Unmarshal(body, &token); err != nil {
		s.log.Warn("token response is not valid JSON",
			zap.String("grant", grant),
			zap.Error(err))
		return nil, model.NewExchangeError(grant, model.ReasonMalformedResponse, resp.StatusCode, err)
	}
	token.CreatedAt = s.now()
	return &token, nil
}
