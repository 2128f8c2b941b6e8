package model_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rezonia/efactura/internal/model"
)

func TestParseUploadState(t *testing.T) {
	tests := []struct {
		input    string
		expected model.UploadState
	}{
		{"ok", model.UploadStateOk},
		{"OK", model.UploadStateOk},
		{"nok", model.UploadStateFailed},
		{"in prelucrare", model.UploadStateProcessing},
		{"  in prelucrare  ", model.UploadStateProcessing},
		{"", model.UploadStateUnknown},
		{"whatever", model.UploadStateUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, model.ParseUploadState(tt.input))
		})
	}
}

func TestParseMessageType(t *testing.T) {
	tests := []struct {
		input    string
		expected model.MessageType
	}{
		{"FACTURA TRIMISA", model.MessageTypeInvoiceSent},
		{"FACTURA PRIMITA", model.MessageTypeInvoiceReceived},
		{"ERORI FACTURA", model.MessageTypeInvoiceErrors},
		{"MESAJ", model.MessageTypeNotice},
		{"factura trimisa", model.MessageTypeInvoiceSent},
		{"", model.MessageTypeUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, model.ParseMessageType(tt.input))
		})
	}
}

func TestUploadResponse_Succeeded(t *testing.T) {
	assert.True(t, (&model.UploadResponse{UploadID: "5001"}).Succeeded())
	assert.False(t, (&model.UploadResponse{UploadID: "5001", Error: "cif invalid"}).Succeeded())
	assert.False(t, (&model.UploadResponse{}).Succeeded())
}

func TestMessagesResponse_WireNames(t *testing.T) {
	payload := `{
		"mesaje": [
			{
				"data_creare": "202506011200",
				"cif": "12345678",
				"id_solicitare": "9001",
				"detalii": "Factura cu id_incarcare=5001",
				"tip": "FACTURA TRIMISA",
				"id": "7777"
			}
		],
		"titlu": "Lista Mesaje",
		"eroare": ""
	}`

	var resp model.MessagesResponse
	require.NoError(t, json.Unmarshal([]byte(payload), &resp))
	require.Len(t, resp.Messages, 1)

	m := resp.Messages[0]
	assert.Equal(t, "202506011200", m.CreatedAt)
	assert.Equal(t, "12345678", m.CIF)
	assert.Equal(t, "9001", m.RequestID)
	assert.Equal(t, "7777", m.ID)
	assert.Equal(t, model.MessageTypeInvoiceSent, m.MessageType())
	assert.True(t, resp.Succeeded())
}

func TestRemoteValidationResponse_Succeeded(t *testing.T) {
	payload := `{
		"stare": "nok",
		"validare": {
			"succes": false,
			"erori": [
				{"cod": "BR-RO-030", "mesaj": "IBAN invalid", "xpath": "/Invoice/cac:PaymentMeans"}
			]
		}
	}`

	var resp model.RemoteValidationResponse
	require.NoError(t, json.Unmarshal([]byte(payload), &resp))
	assert.False(t, resp.Succeeded())
	require.NotNil(t, resp.Validation)
	require.Len(t, resp.Validation.Errors, 1)
	assert.Equal(t, "BR-RO-030", resp.Validation.Errors[0].Code)

	ok := &model.RemoteValidationResponse{State: "ok"}
	assert.True(t, ok.Succeeded())
}
