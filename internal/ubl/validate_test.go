package ubl_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rezonia/efactura/internal/ubl"
)

func validInvoiceXML(t *testing.T) string {
	t.Helper()
	out, err := ubl.Serialize(sampleInvoice())
	require.NoError(t, err)
	return out
}

func TestValidate_CompleteInvoice(t *testing.T) {
	result := ubl.Validate(validInvoiceXML(t))
	assert.True(t, result.WellFormed)
	assert.True(t, result.Valid)
	assert.Empty(t, result.Errors)
	assert.Empty(t, result.Warnings)
}

func TestValidate_MalformedXML(t *testing.T) {
	result := ubl.Validate("<Invoice><cbc:ID>")
	assert.False(t, result.WellFormed)
	assert.False(t, result.Valid)
	require.NotEmpty(t, result.Errors)
	assert.Equal(t, "malformed-xml", result.Errors[0].Code)
}

func TestValidate_MissingRequiredElements(t *testing.T) {
	full := validInvoiceXML(t)

	tests := []struct {
		element  string
		prefix   string
		remove   string
		location string
	}{
		{"CustomizationID", "cbc", "<cbc:CustomizationID>" + ubl.CIUSROCustomizationID + "</cbc:CustomizationID>", "Invoice/cbc:CustomizationID"},
		{"ID", "cbc", "<cbc:ID>FCT-2025-0042</cbc:ID>", "Invoice/cbc:ID"},
		{"IssueDate", "cbc", "<cbc:IssueDate>2025-06-01</cbc:IssueDate>", "Invoice/cbc:IssueDate"},
		{"InvoiceTypeCode", "cbc", "<cbc:InvoiceTypeCode>380</cbc:InvoiceTypeCode>", "Invoice/cbc:InvoiceTypeCode"},
		{"DocumentCurrencyCode", "cbc", "<cbc:DocumentCurrencyCode>RON</cbc:DocumentCurrencyCode>", "Invoice/cbc:DocumentCurrencyCode"},
	}

	for _, tt := range tests {
		t.Run(tt.element, func(t *testing.T) {
			mutated := strings.Replace(full, tt.remove, "", 1)
			require.NotEqual(t, full, mutated, "test setup: element not found in serialized invoice")

			result := ubl.Validate(mutated)
			assert.True(t, result.WellFormed)
			assert.False(t, result.Valid)
			require.Len(t, result.Errors, 1)
			assert.Equal(t, "missing-element", result.Errors[0].Code)
			assert.Equal(t, tt.location, result.Errors[0].Location)
		})
	}
}

func TestValidate_MissingAggregates(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(inv *ubl.Invoice)
		location string
	}{
		{
			"no invoice lines",
			func(inv *ubl.Invoice) { inv.Lines = nil },
			"Invoice/cac:InvoiceLine",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inv := sampleInvoice()
			tt.mutate(inv)
			out, err := ubl.Serialize(inv)
			require.NoError(t, err)

			result := ubl.Validate(out)
			assert.False(t, result.Valid)
			require.Len(t, result.Errors, 1)
			assert.Equal(t, tt.location, result.Errors[0].Location)
		})
	}
}

func TestValidate_EmptyDocument(t *testing.T) {
	result := ubl.Validate("<Invoice></Invoice>")
	assert.True(t, result.WellFormed)
	assert.False(t, result.Valid)
	assert.Len(t, result.Errors, 9)
}

func TestValidate_CustomizationIDMismatchIsWarning(t *testing.T) {
	inv := sampleInvoice()
	inv.CustomizationID = "urn:cen.eu:en16931:2017"
	out, err := ubl.Serialize(inv)
	require.NoError(t, err)

	result := ubl.Validate(out)
	assert.True(t, result.Valid, "conformance mismatch must not fail validation")
	assert.Empty(t, result.Errors)
	require.Len(t, result.Warnings, 1)
	assert.Equal(t, "customization-id", result.Warnings[0].Code)
	assert.Equal(t, "Invoice/cbc:CustomizationID", result.Warnings[0].Location)
}

func TestValidate_CleansBeforeParsing(t *testing.T) {
	dirty := "\xef\xbb\xbf" + validInvoiceXML(t)
	result := ubl.Validate(dirty)
	assert.True(t, result.WellFormed)
	assert.True(t, result.Valid)
}
