package model

import "strings"

// Wire types for the e-Factura REST API. The Romanian JSON field names are
// fixed by the remote system and must be preserved exactly.

// UploadState is the lifecycle state of an uploaded invoice.
type UploadState int

const (
	UploadStateUnknown UploadState = iota
	UploadStateProcessing
	UploadStateOk
	UploadStateFailed
)

func (s UploadState) String() string {
	switch s {
	case UploadStateProcessing:
		return "processing"
	case UploadStateOk:
		return "ok"
	case UploadStateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// ParseUploadState maps the remote "stare" value onto an UploadState.
func ParseUploadState(s string) UploadState {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "ok":
		return UploadStateOk
	case "nok":
		return UploadStateFailed
	case "in prelucrare":
		return UploadStateProcessing
	default:
		return UploadStateUnknown
	}
}

// UploadResponse is the answer to an invoice upload request.
type UploadResponse struct {
	ResponseDate string `json:"data_creare,omitempty"`
	UploadID     string `json:"id_incarcare,omitempty"`
	Error        string `json:"eroare,omitempty"`
}

// Succeeded reports whether the upload was accepted. The remote convention is
// "empty eroare means success"; keep that check here so callers get a typed
// answer instead of probing strings.
func (r *UploadResponse) Succeeded() bool {
	return r.Error == "" && r.UploadID != ""
}

// StatusResponse is the answer to an upload status poll.
type StatusResponse struct {
	State      string `json:"stare,omitempty"`
	DownloadID string `json:"id_descarcare,omitempty"`
	Error      string `json:"eroare,omitempty"`
}

// UploadState returns the typed state of the polled upload.
func (r *StatusResponse) UploadState() UploadState {
	if r.Error != "" {
		return UploadStateFailed
	}
	return ParseUploadState(r.State)
}

// MessageType classifies an inbox message.
type MessageType int

const (
	MessageTypeUnknown MessageType = iota
	MessageTypeInvoiceSent
	MessageTypeInvoiceReceived
	MessageTypeInvoiceErrors
	MessageTypeNotice
)

func (t MessageType) String() string {
	switch t {
	case MessageTypeInvoiceSent:
		return "invoice_sent"
	case MessageTypeInvoiceReceived:
		return "invoice_received"
	case MessageTypeInvoiceErrors:
		return "invoice_errors"
	case MessageTypeNotice:
		return "notice"
	default:
		return "unknown"
	}
}

// ParseMessageType maps the remote "tip" value onto a MessageType.
func ParseMessageType(s string) MessageType {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "FACTURA TRIMISA":
		return MessageTypeInvoiceSent
	case "FACTURA PRIMITA":
		return MessageTypeInvoiceReceived
	case "ERORI FACTURA":
		return MessageTypeInvoiceErrors
	case "MESAJ":
		return MessageTypeNotice
	default:
		return MessageTypeUnknown
	}
}

// Message is one entry from the SPV message list.
type Message struct {
	CreatedAt string `json:"data_creare"`
	CIF       string `json:"cif"`
	RequestID string `json:"id_solicitare"`
	Details   string `json:"detalii"`
	Type      string `json:"tip"`
	ID        string `json:"id"`
}

// MessageType returns the typed classification of the message.
func (m *Message) MessageType() MessageType {
	return ParseMessageType(m.Type)
}

// MessagesResponse is the answer to a message list request.
type MessagesResponse struct {
	Messages []Message `json:"mesaje"`
	Title    string    `json:"titlu,omitempty"`
	Error    string    `json:"eroare,omitempty"`
}

// Succeeded reports whether the list call was accepted by the remote system.
func (r *MessagesResponse) Succeeded() bool {
	return r.Error == ""
}

// ValidationMessage is one structured finding from the remote validator.
type ValidationMessage struct {
	Code    string `json:"cod,omitempty"`
	Message string `json:"mesaj"`
	XPath   string `json:"xpath,omitempty"`
}

// ValidationDetail carries the remote validator verdict.
type ValidationDetail struct {
	Success  bool                `json:"succes"`
	Errors   []ValidationMessage `json:"erori,omitempty"`
	Warnings []ValidationMessage `json:"avertismente,omitempty"`
}

// RemoteValidationResponse is the answer to a remote validation request.
type RemoteValidationResponse struct {
	State      string            `json:"stare,omitempty"`
	Validation *ValidationDetail `json:"validare,omitempty"`
	Error      string            `json:"eroare,omitempty"`
}

// Succeeded reports whether the document passed remote validation.
func (r *RemoteValidationResponse) Succeeded() bool {
	if r.Error != "" {
		return false
	}
	if r.Validation != nil {
		return r.Validation.Success
	}
	return strings.EqualFold(r.State, "ok")
}
