// Package server hosts the library behind an HTTP API, as a sample
// integration of the auth flow, token store, UBL transform, and REST client.
package server

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/rezonia/efactura/internal/auth"
	"github.com/rezonia/efactura/internal/client"
	"github.com/rezonia/efactura/internal/config"
	"github.com/rezonia/efactura/internal/model"
	"github.com/rezonia/efactura/internal/tokenstore"
	"github.com/rezonia/efactura/internal/ubl"
)

// Config holds server configuration
type Config struct {
	Address      string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	Debug        bool
}

// Server represents the HTTP API server
type Server struct {
	config *Config
	router *gin.Engine
	auth   *auth.Service
	api    *client.Client
	log    *zap.Logger
}

// NewServer creates a new API server. Tokens live in the given store; pass a
// redis-backed store for multi-instance hosts, or nil for in-memory.
func NewServer(appConfig *config.Config, serverConfig *Config, store tokenstore.Store, log *zap.Logger) *Server {
	if !serverConfig.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	if serverConfig.Debug {
		router.Use(gin.Logger())
	}

	if store == nil {
		store = tokenstore.NewMemoryStore()
	}
	if log == nil {
		log = zap.NewNop()
	}

	authService := auth.NewService(appConfig, store, auth.WithLogger(log))
	apiClient := client.NewClient(appConfig, authService, client.WithLogger(log))

	s := &Server{
		config: serverConfig,
		router: router,
		auth:   authService,
		api:    apiClient,
		log:    log,
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	// Health check
	s.router.GET("/health", s.handleHealth)

	// API v1
	v1 := s.router.Group("/api/v1")
	{
		// Authentication
		v1.GET("/auth/login", s.handleLogin)
		v1.GET("/auth/callback", s.handleCallback)
		v1.POST("/auth/logout", s.handleLogout)

		// Invoices
		v1.POST("/invoices", s.handleUpload)
		v1.GET("/invoices/:id/status", s.handleStatus)
		v1.GET("/invoices/:id/download", s.handleDownload)

		// Messages
		v1.GET("/messages", s.handleMessages)

		// Local XML tooling
		v1.POST("/validate", s.handleValidate)
		v1.POST("/format", s.handleFormat)
	}
}

// Run starts the HTTP server
func (s *Server) Run() error {
	srv := &http.Server{
		Addr:         s.config.Address,
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}
	return srv.ListenAndServe()
}

// Handler returns the http.Handler for use with custom servers
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleLogin(c *gin.Context) {
	authorizeURL, state, err := s.auth.BeginAuthorization(c.Query("scope"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to build authorization URL"})
		return
	}
	c.JSON(http.StatusOK, LoginResponse{
		AuthorizationURL: authorizeURL,
		State:            state,
	})
}

func (s *Server) handleCallback(c *gin.Context) {
	code := c.Query("code")
	state := c.Query("state")
	if code == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing authorization code"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 30*time.Second)
	defer cancel()

	token, err := s.auth.CompleteAuthorization(ctx, c.Query("user"), code, state)
	if err != nil {
		s.renderError(c, err)
		return
	}

	// Mirror the token into a client-side cookie so browser sessions survive
	// a server restart.
	cookies := tokenstore.NewCookieStore(c.Writer, c.Request)
	_ = cookies.SetToken(ctx, token.User, token)

	c.JSON(http.StatusOK, CallbackResponse{
		User:      token.User,
		ExpiresAt: token.ExpiresAt().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleLogout(c *gin.Context) {
	user, ok := s.requestUser(c)
	if !ok {
		return
	}
	if err := s.auth.Logout(c.Request.Context(), user); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "logout failed"})
		return
	}
	cookies := tokenstore.NewCookieStore(c.Writer, c.Request)
	_ = cookies.RemoveToken(c.Request.Context(), user)
	c.JSON(http.StatusOK, gin.H{"user": user, "logged_out": true})
}

func (s *Server) handleUpload(c *gin.Context) {
	user, ok := s.requestUser(c)
	if !ok {
		return
	}
	body, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read request body"})
		return
	}
	if len(body) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "empty request body"})
		return
	}

	// Reject structurally broken documents before bothering the remote
	// system.
	invoiceXML := ubl.Clean(string(body))
	validation := ubl.Validate(invoiceXML)
	if !validation.Valid {
		c.JSON(http.StatusUnprocessableEntity, ValidationResponse{
			WellFormed: validation.WellFormed,
			Valid:      validation.Valid,
			Errors:     validation.Errors,
			Warnings:   validation.Warnings,
		})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 60*time.Second)
	defer cancel()

	resp, err := s.api.Upload(ctx, user, invoiceXML)
	if err != nil {
		s.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, UploadResult{
		Accepted: resp.Succeeded(),
		UploadID: resp.UploadID,
		Error:    resp.Error,
	})
}

func (s *Server) handleStatus(c *gin.Context) {
	user, ok := s.requestUser(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 30*time.Second)
	defer cancel()

	resp, err := s.api.Status(ctx, user, c.Param("id"))
	if err != nil {
		s.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, StatusResult{
		State:      resp.UploadState().String(),
		DownloadID: resp.DownloadID,
		Error:      resp.Error,
	})
}

func (s *Server) handleDownload(c *gin.Context) {
	user, ok := s.requestUser(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 60*time.Second)
	defer cancel()

	archive, err := s.api.Download(ctx, user, c.Param("id"))
	if err != nil {
		s.renderError(c, err)
		return
	}
	c.Data(http.StatusOK, "application/zip", archive)
}

func (s *Server) handleMessages(c *gin.Context) {
	user, ok := s.requestUser(c)
	if !ok {
		return
	}
	days, err := strconv.Atoi(c.DefaultQuery("days", "30"))
	if err != nil || days <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "days must be a positive integer"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 30*time.Second)
	defer cancel()

	resp, err := s.api.Messages(ctx, user, days)
	if err != nil {
		s.renderError(c, err)
		return
	}
	messages := make([]MessageResult, 0, len(resp.Messages))
	for _, m := range resp.Messages {
		messages = append(messages, MessageResult{
			ID:        m.ID,
			Type:      m.MessageType().String(),
			CreatedAt: m.CreatedAt,
			CIF:       m.CIF,
			RequestID: m.RequestID,
			Details:   m.Details,
		})
	}
	c.JSON(http.StatusOK, MessagesResult{Messages: messages})
}

func (s *Server) handleValidate(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read request body"})
		return
	}
	if len(body) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "empty request body"})
		return
	}

	result := ubl.Validate(string(body))
	c.JSON(http.StatusOK, ValidationResponse{
		WellFormed: result.WellFormed,
		Valid:      result.Valid,
		Errors:     result.Errors,
		Warnings:   result.Warnings,
	})
}

func (s *Server) handleFormat(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read request body"})
		return
	}
	c.Data(http.StatusOK, "application/xml", []byte(ubl.Format(ubl.Clean(string(body)))))
}

// requestUser resolves the acting user from the explicit query parameter or
// the request's bearer token. Writes the error response itself when no
// identity is present.
func (s *Server) requestUser(c *gin.Context) (string, bool) {
	if user := c.Query("user"); user != "" {
		return user, true
	}
	user, err := tokenstore.UserFromRequest(c.Request)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return "", false
	}
	return user, true
}

// renderError maps library failures onto HTTP answers: authentication
// problems ask the caller to log in again, everything else is a bad gateway.
func (s *Server) renderError(c *gin.Context, err error) {
	var identityErr *model.IdentityError
	var exchangeErr *model.ExchangeError

	switch {
	case errors.Is(err, model.ErrAuthenticationRequired):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required, restart the login flow"})
	case errors.Is(err, model.ErrInvalidState):
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid or expired authorization state"})
	case errors.As(err, &identityErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": identityErr.Error()})
	case errors.As(err, &exchangeErr):
		c.JSON(http.StatusBadGateway, gin.H{"error": exchangeErr.Error()})
	default:
		s.log.Warn("request failed", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
	}
}
