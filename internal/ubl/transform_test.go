package ubl_test

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rezonia/efactura/internal/model"
	"github.com/rezonia/efactura/internal/ubl"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func sampleInvoice() *ubl.Invoice {
	vat := ubl.TaxCategory{ID: "S", Percent: dec("19"), TaxSchemeID: "VAT"}
	return &ubl.Invoice{
		CustomizationID:      ubl.CIUSROCustomizationID,
		ID:                   "FCT-2025-0042",
		IssueDate:            "2025-06-01",
		DueDate:              "2025-07-01",
		InvoiceTypeCode:      "380",
		Notes:                []string{"Factura emisa conform contract 17/2025"},
		DocumentCurrencyCode: "RON",
		Supplier: ubl.PartyWrapper{Party: ubl.Party{
			Name: "Furnizor SRL",
			PostalAddress: ubl.Address{
				StreetName:       "Str. Exemplu 10",
				CityName:         "Bucuresti",
				PostalZone:       "010101",
				CountrySubentity: "RO-B",
				CountryCode:      "RO",
			},
			TaxScheme:   &ubl.TaxParty{CompanyID: "RO12345678", TaxSchemeID: "VAT"},
			LegalEntity: ubl.LegalEntity{RegistrationName: "Furnizor SRL", CompanyID: "J40/100/2020"},
			Contact:     &ubl.Contact{Name: "Ion Popescu", ElectronicMail: "contact@furnizor.ro"},
		}},
		Customer: ubl.PartyWrapper{Party: ubl.Party{
			Name: "Client SA",
			PostalAddress: ubl.Address{
				StreetName:  "Bd. Client 5",
				CityName:    "Cluj-Napoca",
				PostalZone:  "400001",
				CountryCode: "RO",
			},
			TaxScheme:   &ubl.TaxParty{CompanyID: "RO87654321", TaxSchemeID: "VAT"},
			LegalEntity: ubl.LegalEntity{RegistrationName: "Client SA", CompanyID: "J12/200/2018"},
		}},
		PaymentMeans: []ubl.PaymentMeans{{Code: "31", PayeeFinancialID: "RO49AAAA1B31007593840000"}},
		TaxTotals: []ubl.TaxTotal{{
			TaxAmount: ubl.Amount{Value: dec("38"), CurrencyID: "RON"},
			Subtotals: []ubl.TaxSubtotal{{
				TaxableAmount: ubl.Amount{Value: dec("200"), CurrencyID: "RON"},
				TaxAmount:     ubl.Amount{Value: dec("38"), CurrencyID: "RON"},
				Category:      vat,
			}},
		}},
		LegalMonetaryTotal: ubl.MonetaryTotal{
			LineExtensionAmount: ubl.Amount{Value: dec("200"), CurrencyID: "RON"},
			TaxExclusiveAmount:  ubl.Amount{Value: dec("200"), CurrencyID: "RON"},
			TaxInclusiveAmount:  ubl.Amount{Value: dec("238"), CurrencyID: "RON"},
			PayableAmount:       ubl.Amount{Value: dec("238"), CurrencyID: "RON"},
		},
		Lines: []ubl.InvoiceLine{{
			ID:                  "1",
			InvoicedQuantity:    ubl.Quantity{Value: dec("4"), UnitCode: "H87"},
			LineExtensionAmount: ubl.Amount{Value: dec("200"), CurrencyID: "RON"},
			Item: ubl.Item{
				Description: "Servicii de consultanta",
				Name:        "Consultanta",
				TaxCategory: &vat,
			},
			Price: &ubl.Price{PriceAmount: ubl.Amount{Value: dec("50"), CurrencyID: "RON"}},
		}},
	}
}

func TestSerialize_Envelope(t *testing.T) {
	out, err := ubl.Serialize(sampleInvoice())
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(out, `<?xml version="1.0" encoding="UTF-8"?>`))
	assert.Contains(t, out, `xmlns="`+ubl.NamespaceInvoice+`"`)
	assert.Contains(t, out, `xmlns:cac="`+ubl.NamespaceCAC+`"`)
	assert.Contains(t, out, `xmlns:cbc="`+ubl.NamespaceCBC+`"`)
	assert.Contains(t, out, `xmlns:xsi="`+ubl.NamespaceXSI+`"`)
	assert.Contains(t, out, "<cbc:ID>FCT-2025-0042</cbc:ID>")
	assert.Contains(t, out, `<cbc:TaxAmount currencyID="RON">38</cbc:TaxAmount>`)
	assert.Contains(t, out, `<cbc:InvoicedQuantity unitCode="H87">4</cbc:InvoicedQuantity>`)
	assert.Contains(t, out, "<cac:AccountingSupplierParty>")
}

func TestSerializeDeserialize_RoundTrip(t *testing.T) {
	original := sampleInvoice()
	out, err := ubl.Serialize(original)
	require.NoError(t, err)

	got, err := ubl.Deserialize(out)
	require.NoError(t, err)

	assert.Equal(t, original.CustomizationID, got.CustomizationID)
	assert.Equal(t, original.ID, got.ID)
	assert.Equal(t, original.IssueDate, got.IssueDate)
	assert.Equal(t, original.DueDate, got.DueDate)
	assert.Equal(t, original.InvoiceTypeCode, got.InvoiceTypeCode)
	assert.Equal(t, original.Notes, got.Notes)
	assert.Equal(t, original.DocumentCurrencyCode, got.DocumentCurrencyCode)

	assert.Equal(t, "Furnizor SRL", got.Supplier.Party.Name)
	assert.Equal(t, "RO", got.Supplier.Party.PostalAddress.CountryCode)
	require.NotNil(t, got.Supplier.Party.TaxScheme)
	assert.Equal(t, "RO12345678", got.Supplier.Party.TaxScheme.CompanyID)
	assert.Equal(t, "VAT", got.Supplier.Party.TaxScheme.TaxSchemeID)
	assert.Equal(t, "Client SA", got.Customer.Party.LegalEntity.RegistrationName)

	require.Len(t, got.PaymentMeans, 1)
	assert.Equal(t, "RO49AAAA1B31007593840000", got.PaymentMeans[0].PayeeFinancialID)

	require.Len(t, got.TaxTotals, 1)
	require.Len(t, got.TaxTotals[0].Subtotals, 1)
	sub := got.TaxTotals[0].Subtotals[0]
	assert.True(t, sub.TaxableAmount.Value.Equal(dec("200")))
	assert.Equal(t, "RON", sub.TaxableAmount.CurrencyID)
	assert.Equal(t, "S", sub.Category.ID)
	assert.True(t, sub.Category.Percent.Equal(dec("19")))

	assert.True(t, got.LegalMonetaryTotal.PayableAmount.Value.Equal(dec("238")))

	require.Len(t, got.Lines, 1)
	line := got.Lines[0]
	assert.Equal(t, "1", line.ID)
	assert.Equal(t, "H87", line.InvoicedQuantity.UnitCode)
	assert.True(t, line.InvoicedQuantity.Value.Equal(dec("4")))
	require.NotNil(t, line.Item.TaxCategory)
	assert.Equal(t, "VAT", line.Item.TaxCategory.TaxSchemeID)
	require.NotNil(t, line.Price)
	assert.True(t, line.Price.PriceAmount.Value.Equal(dec("50")))
}

func TestDeserialize_Malformed(t *testing.T) {
	_, err := ubl.Deserialize("<Invoice><cbc:ID>unclosed")
	var parseErr *model.ParseError
	require.ErrorAs(t, err, &parseErr)
}

func TestClean(t *testing.T) {
	dirty := "\xef\xbb\xbf<Invoice xsi:schemaLocation=\"urn:oasis:names:specification:ubl:schema:xsd:Invoice-2 ../UBL-Invoice-2.1.xsd\">\r\n</Invoice>\r\n"

	cleaned := ubl.Clean(dirty)
	assert.Equal(t, "<Invoice>\n</Invoice>", cleaned)
	assert.Equal(t, cleaned, ubl.Clean(cleaned), "Clean must be idempotent")
}

func TestClean_KeepsUnrelatedSchemaLocation(t *testing.T) {
	text := `<Invoice xsi:schemaLocation="urn:example something-else.xsd"></Invoice>`
	assert.Equal(t, text, ubl.Clean(text))
}

func TestClean_BareCarriageReturns(t *testing.T) {
	assert.Equal(t, "a\nb", ubl.Clean("a\rb"))
}

func TestFormat(t *testing.T) {
	out := ubl.Format(`<Invoice><cbc:ID>1</cbc:ID></Invoice>`)
	assert.Contains(t, out, "\n  <cbc:ID>1</cbc:ID>")

	// Unparseable input comes back untouched.
	assert.Equal(t, "not xml at all <", ubl.Format("not xml at all <"))
}
