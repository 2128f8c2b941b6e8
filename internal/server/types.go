package server

import "github.com/rezonia/efactura/internal/ubl"

// LoginResponse carries the browser redirect target for the OAuth2 flow.
type LoginResponse struct {
	AuthorizationURL string `json:"authorization_url"`
	State            string `json:"state"`
}

// CallbackResponse reports a completed authorization.
type CallbackResponse struct {
	User      string `json:"user"`
	ExpiresAt string `json:"expires_at"`
}

// UploadResult is the response for the invoice upload endpoint.
type UploadResult struct {
	Accepted bool   `json:"accepted"`
	UploadID string `json:"upload_id,omitempty"`
	Error    string `json:"error,omitempty"`
}

// StatusResult is the response for the status endpoint.
type StatusResult struct {
	State      string `json:"state"`
	DownloadID string `json:"download_id,omitempty"`
	Error      string `json:"error,omitempty"`
}

// MessageResult is one entry in the messages listing.
type MessageResult struct {
	ID        string `json:"id"`
	Type      string `json:"type"`
	CreatedAt string `json:"created_at"`
	CIF       string `json:"cif"`
	RequestID string `json:"request_id"`
	Details   string `json:"details"`
}

// MessagesResult is the response for the messages endpoint.
type MessagesResult struct {
	Messages []MessageResult `json:"messages"`
}

// ValidationResponse is the response for the validate endpoint.
type ValidationResponse struct {
	WellFormed bool        `json:"well_formed"`
	Valid      bool        `json:"valid"`
	Errors     []ubl.Issue `json:"errors,omitempty"`
	Warnings   []ubl.Issue `json:"warnings,omitempty"`
}
