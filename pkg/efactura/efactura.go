// Package efactura provides a public API for the ANAF e-Factura client.
//
// This package exposes the core types for OAuth2 authentication, token
// storage, UBL invoice serialization/validation, and the REST API client.
//
// Example usage:
//
//	cfg, err := efactura.LoadConfig()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	store := efactura.NewMemoryStore()
//	authService := efactura.NewAuthService(cfg, store)
//	api := efactura.NewClient(cfg, authService)
//	resp, err := api.Upload(ctx, user, invoiceXML)
package efactura

import (
	"net/http"

	"github.com/redis/go-redis/v9"

	"github.com/rezonia/efactura/internal/auth"
	"github.com/rezonia/efactura/internal/client"
	"github.com/rezonia/efactura/internal/config"
	"github.com/rezonia/efactura/internal/model"
	"github.com/rezonia/efactura/internal/tokenstore"
	"github.com/rezonia/efactura/internal/ubl"
)

// Re-export core types for public API
type (
	Config      = config.Config
	Environment = config.Environment

	Token = model.Token

	AuthService = auth.Service
	AuthOption  = auth.Option

	TokenStore  = tokenstore.Store
	MemoryStore = tokenstore.MemoryStore
	CookieStore = tokenstore.CookieStore
	RedisStore  = tokenstore.RedisStore

	Client       = client.Client
	ClientOption = client.Option

	Invoice          = ubl.Invoice
	InvoiceLine      = ubl.InvoiceLine
	Party            = ubl.Party
	Amount           = ubl.Amount
	ValidationResult = ubl.ValidationResult
)

// Re-export environments
const (
	EnvironmentTest       = config.EnvironmentTest
	EnvironmentProduction = config.EnvironmentProduction
)

// Re-export the CIUS-RO conformance identifier
const CIUSROCustomizationID = ubl.CIUSROCustomizationID

// Re-export error types
type (
	ExchangeError = model.ExchangeError
	IdentityError = model.IdentityError
	ParseError    = model.ParseError
	APIError      = model.APIError
)

// Re-export sentinel errors
var (
	ErrAuthenticationRequired = model.ErrAuthenticationRequired
	ErrInvalidState           = model.ErrInvalidState
)

// Re-export option constructors
var (
	WithAuthHTTPClient   = auth.WithHTTPClient
	WithAuthLogger       = auth.WithLogger
	WithStateTTL         = auth.WithStateTTL
	WithIdentityResolver = auth.WithIdentityResolver

	WithClientHTTPClient = client.WithHTTPClient
	WithClientLogger     = client.WithLogger

	WithSlidingWindow   = tokenstore.WithSlidingWindow
	WithCookiePrefix    = tokenstore.WithCookiePrefix
	WithInsecureCookies = tokenstore.WithInsecureCookies
)

// LoadConfig reads client configuration from the environment.
func LoadConfig() (*Config, error) {
	return config.Load()
}

// NewAuthService creates an authentication service backed by the given store.
func NewAuthService(cfg *Config, store TokenStore, opts ...AuthOption) *AuthService {
	return auth.NewService(cfg, store, opts...)
}

// NewMemoryStore creates a process-wide in-memory token store.
func NewMemoryStore(opts ...tokenstore.MemoryOption) *MemoryStore {
	return tokenstore.NewMemoryStore(opts...)
}

// NewCookieStore creates a token store bound to one request/response pair.
func NewCookieStore(w http.ResponseWriter, r *http.Request, opts ...tokenstore.CookieOption) *CookieStore {
	return tokenstore.NewCookieStore(w, r, opts...)
}

// NewRedisStore creates a token store on top of an existing Redis client.
func NewRedisStore(rdb *redis.Client) *RedisStore {
	return tokenstore.NewRedisStore(rdb)
}

// NewClient creates an API client for the configured environment.
func NewClient(cfg *Config, tokens client.TokenSource, opts ...ClientOption) *Client {
	return client.NewClient(cfg, tokens, opts...)
}

// Serialize renders an invoice as UBL 2.1 XML.
func Serialize(inv *Invoice) (string, error) {
	return ubl.Serialize(inv)
}

// Deserialize parses invoice XML into the typed model.
func Deserialize(text string) (*Invoice, error) {
	return ubl.Deserialize(text)
}

// Clean normalizes invoice XML text before parse or validation.
func Clean(text string) string {
	return ubl.Clean(text)
}

// Validate runs the structural validation pass on invoice XML.
func Validate(text string) *ValidationResult {
	return ubl.Validate(text)
}
