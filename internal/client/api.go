// Package client is a thin wrapper over the e-Factura REST API: invoice
// upload, status polling, message listing, download, and remote validation.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/rezonia/efactura/internal/config"
	"github.com/rezonia/efactura/internal/model"
)

// TokenSource supplies a currently valid access token for a user. Satisfied
// by the auth service.
type TokenSource interface {
	GetValidAccessToken(ctx context.Context, user string) (string, error)
}

// Client calls the e-Factura REST API for one configured CIF.
type Client struct {
	baseURL    string
	cif        string
	tokens     TokenSource
	httpClient *http.Client
	log        *zap.Logger
}

// Option configures the client
type Option func(*Client)

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithLogger sets the logger.
func WithLogger(log *zap.Logger) Option {
	return func(c *Client) {
		c.log = log
	}
}

// WithBaseURL overrides the API base URL, used in tests.
func WithBaseURL(base string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(base, "/")
	}
}

// NewClient creates an API client for the configured environment.
func NewClient(cfg *config.Config, tokens TokenSource, opts ...Option) *Client {
	c := &Client{
		baseURL:    cfg.APIBaseURL(),
		cif:        cfg.CIF,
		tokens:     tokens,
		httpClient: &http.Client{Timeout: cfg.Timeout()},
		log:        zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Upload submits a UBL invoice document for the configured CIF.
func (c *Client) Upload(ctx context.Context, user, invoiceXML string) (*model.UploadResponse, error) {
	query := url.Values{}
	query.Set("standard", "UBL")
	query.Set("cif", c.cif)

	var out model.UploadResponse
	if err := c.call(ctx, user, http.MethodPost, "upload", query, strings.NewReader(invoiceXML), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Status polls the processing state of an earlier upload.
func (c *Client) Status(ctx context.Context, user, uploadID string) (*model.StatusResponse, error) {
	query := url.Values{}
	query.Set("id_incarcare", uploadID)

	var out model.StatusResponse
	if err := c.call(ctx, user, http.MethodGet, "stareMesaj", query, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Messages lists SPV inbox messages for the configured CIF over the last
// given number of days.
func (c *Client) Messages(ctx context.Context, user string, days int) (*model.MessagesResponse, error) {
	query := url.Values{}
	query.Set("zile", strconv.Itoa(days))
	query.Set("cif", c.cif)

	var out model.MessagesResponse
	if err := c.call(ctx, user, http.MethodGet, "listaMesajeFactura", query, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Download fetches the archive for a processed invoice or message.
func (c *Client) Download(ctx context.Context, user, id string) ([]byte, error) {
	query := url.Values{}
	query.Set("id", id)

	req, err := c.newRequest(ctx, user, http.MethodGet, "descarcare", query, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("anaf descarcare: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("anaf descarcare: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, model.NewAPIError("descarcare", resp.StatusCode, snippet(body))
	}
	return body, nil
}

// ValidateRemote asks the remote validator for a verdict on the document.
func (c *Client) ValidateRemote(ctx context.Context, user, invoiceXML string) (*model.RemoteValidationResponse, error) {
	var out model.RemoteValidationResponse
	if err := c.call(ctx, user, http.MethodPost, "validare/FACT1", nil, strings.NewReader(invoiceXML), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) newRequest(ctx context.Context, user, method, endpoint string, query url.Values, body io.Reader) (*http.Request, error) {
	accessToken, err := c.tokens.GetValidAccessToken(ctx, user)
	if err != nil {
		return nil, err
	}

	target := c.baseURL + "/" + endpoint
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	if body != nil {
		req.Header.Set("Content-Type", "text/plain")
	}
	return req, nil
}

// call runs a JSON request/response round trip against one endpoint.
func (c *Client) call(ctx context.Context, user, method, endpoint string, query url.Values, body io.Reader, out any) error {
	req, err := c.newRequest(ctx, user, method, endpoint, query, body)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Warn("anaf call failed",
			zap.String("endpoint", endpoint),
			zap.Error(err))
		return fmt.Errorf("anaf %s: %w", endpoint, err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("anaf %s: %w", endpoint, err)
	}
	if resp.StatusCode != http.StatusOK {
		c.log.Warn("anaf call rejected",
			zap.String("endpoint", endpoint),
			zap.Int("status", resp.StatusCode))
		return model.NewAPIError(endpoint, resp.StatusCode, snippet(payload))
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return model.NewAPIError(endpoint, resp.StatusCode, "unparseable response body")
	}
	return nil
}

// snippet truncates a response body for error messages.
func snippet(body []byte) string {
	const limit = 200
	text := strings.TrimSpace(string(body))
	if len(text) > limit {
		return text[:limit] + "..."
	}
	return text
}
