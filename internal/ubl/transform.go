package ubl

import (
	"encoding/xml"
	"regexp"
	"strings"

	"github.com/beevik/etree"
	"github.com/shopspring/decimal"

	"github.com/rezonia/efactura/internal/model"
)

const utf8BOM = "\xef\xbb\xbf"

// badSchemaLocation matches the xsi:schemaLocation attribute some upstream
// generators attach, pointing at a local UBL-Invoice-2.1.xsd path. The
// receiving system rejects documents carrying it, so Clean strips it before
// anything else touches the text.
var badSchemaLocation = regexp.MustCompile(`\s+xsi:schemaLocation="[^"]*UBL-Invoice-2\.1\.xsd[^"]*"`)

// Clean normalizes invoice XML text before parse or validation: strips a
// leading byte-order mark, drops the malformed schemaLocation attribute,
// normalizes line endings to \n, and trims surrounding whitespace.
// Idempotent.
func Clean(text string) string {
	text = strings.TrimPrefix(text, utf8BOM)
	text = badSchemaLocation.ReplaceAllString(text, "")
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	return strings.TrimSpace(text)
}

// Serialize renders the invoice as UBL 2.1 XML with the four standard
// namespaces, a UTF-8 declaration, and two-space indentation.
func Serialize(inv *Invoice) (string, error) {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)

	root := doc.CreateElement("Invoice")
	root.CreateAttr("xmlns", NamespaceInvoice)
	root.CreateAttr("xmlns:cac", NamespaceCAC)
	root.CreateAttr("xmlns:cbc", NamespaceCBC)
	root.CreateAttr("xmlns:xsi", NamespaceXSI)

	writeText(root, "cbc:CustomizationID", inv.CustomizationID)
	writeText(root, "cbc:ID", inv.ID)
	writeText(root, "cbc:IssueDate", inv.IssueDate)
	writeText(root, "cbc:DueDate", inv.DueDate)
	writeText(root, "cbc:InvoiceTypeCode", inv.InvoiceTypeCode)
	for _, note := range inv.Notes {
		writeText(root, "cbc:Note", note)
	}
	writeText(root, "cbc:DocumentCurrencyCode", inv.DocumentCurrencyCode)

	writeParty(root, "cac:AccountingSupplierParty", inv.Supplier.Party)
	writeParty(root, "cac:AccountingCustomerParty", inv.Customer.Party)

	for _, pm := range inv.PaymentMeans {
		el := root.CreateElement("cac:PaymentMeans")
		writeText(el, "cbc:PaymentMeansCode", pm.Code)
		if pm.PayeeFinancialID != "" {
			account := el.CreateElement("cac:PayeeFinancialAccount")
			writeText(account, "cbc:ID", pm.PayeeFinancialID)
		}
	}

	for _, tt := range inv.TaxTotals {
		el := root.CreateElement("cac:TaxTotal")
		writeAmount(el, "cbc:TaxAmount", tt.TaxAmount)
		for _, sub := range tt.Subtotals {
			subEl := el.CreateElement("cac:TaxSubtotal")
			writeAmount(subEl, "cbc:TaxableAmount", sub.TaxableAmount)
			writeAmount(subEl, "cbc:TaxAmount", sub.TaxAmount)
			writeTaxCategory(subEl, "cac:TaxCategory", sub.Category)
		}
	}

	total := root.CreateElement("cac:LegalMonetaryTotal")
	writeAmount(total, "cbc:LineExtensionAmount", inv.LegalMonetaryTotal.LineExtensionAmount)
	writeAmount(total, "cbc:TaxExclusiveAmount", inv.LegalMonetaryTotal.TaxExclusiveAmount)
	writeAmount(total, "cbc:TaxInclusiveAmount", inv.LegalMonetaryTotal.TaxInclusiveAmount)
	writeAmount(total, "cbc:PayableAmount", inv.LegalMonetaryTotal.PayableAmount)

	for _, line := range inv.Lines {
		el := root.CreateElement("cac:InvoiceLine")
		writeText(el, "cbc:ID", line.ID)
		qty := el.CreateElement("cbc:InvoicedQuantity")
		qty.CreateAttr("unitCode", line.InvoicedQuantity.UnitCode)
		qty.SetText(line.InvoicedQuantity.Value.String())
		writeAmount(el, "cbc:LineExtensionAmount", line.LineExtensionAmount)

		item := el.CreateElement("cac:Item")
		writeText(item, "cbc:Description", line.Item.Description)
		writeText(item, "cbc:Name", line.Item.Name)
		if line.Item.TaxCategory != nil {
			writeTaxCategory(item, "cac:ClassifiedTaxCategory", *line.Item.TaxCategory)
		}

		if line.Price != nil {
			price := el.CreateElement("cac:Price")
			writeAmount(price, "cbc:PriceAmount", line.Price.PriceAmount)
		}
	}

	doc.Indent(2)
	return doc.WriteToString()
}

// Deserialize parses cleaned invoice XML back into the typed model. Element
// matching is by local name, so any namespace prefixing is accepted.
func Deserialize(text string) (*Invoice, error) {
	var inv Invoice
	if err := xml.Unmarshal([]byte(Clean(text)), &inv); err != nil {
		return nil, model.NewParseError("deserialize", "malformed invoice XML", err)
	}
	return &inv, nil
}

// Format re-indents invoice XML with two-space steps. Best effort: input that
// fails to parse is returned unchanged.
func Format(text string) string {
	doc := etree.NewDocument()
	if err := doc.ReadFromString(text); err != nil {
		return text
	}
	doc.Indent(2)
	out, err := doc.WriteToString()
	if err != nil {
		return text
	}
	return out
}

func writeParty(parent *etree.Element, tag string, party Party) {
	wrapper := parent.CreateElement(tag)
	el := wrapper.CreateElement("cac:Party")

	if party.Name != "" {
		name := el.CreateElement("cac:PartyName")
		writeText(name, "cbc:Name", party.Name)
	}

	addr := el.CreateElement("cac:PostalAddress")
	writeText(addr, "cbc:StreetName", party.PostalAddress.StreetName)
	writeText(addr, "cbc:CityName", party.PostalAddress.CityName)
	writeText(addr, "cbc:PostalZone", party.PostalAddress.PostalZone)
	writeText(addr, "cbc:CountrySubentity", party.PostalAddress.CountrySubentity)
	if party.PostalAddress.CountryCode != "" {
		country := addr.CreateElement("cac:Country")
		writeText(country, "cbc:IdentificationCode", party.PostalAddress.CountryCode)
	}

	if party.TaxScheme != nil {
		tax := el.CreateElement("cac:PartyTaxScheme")
		writeText(tax, "cbc:CompanyID", party.TaxScheme.CompanyID)
		if party.TaxScheme.TaxSchemeID != "" {
			scheme := tax.CreateElement("cac:TaxScheme")
			writeText(scheme, "cbc:ID", party.TaxScheme.TaxSchemeID)
		}
	}

	legal := el.CreateElement("cac:PartyLegalEntity")
	writeText(legal, "cbc:RegistrationName", party.LegalEntity.RegistrationName)
	writeText(legal, "cbc:CompanyID", party.LegalEntity.CompanyID)

	if party.Contact != nil {
		contact := el.CreateElement("cac:Contact")
		writeText(contact, "cbc:Name", party.Contact.Name)
		writeText(contact, "cbc:Telephone", party.Contact.Telephone)
		writeText(contact, "cbc:ElectronicMail", party.Contact.ElectronicMail)
	}
}

func writeText(parent *etree.Element, tag, value string) {
	if value == "" {
		return
	}
	parent.CreateElement(tag).SetText(value)
}

func writeAmount(parent *etree.Element, tag string, amount Amount) {
	el := parent.CreateElement(tag)
	if amount.CurrencyID != "" {
		el.CreateAttr("currencyID", amount.CurrencyID)
	}
	el.SetText(amount.Value.String())
}

func writeTaxCategory(parent *etree.Element, tag string, category TaxCategory) {
	el := parent.CreateElement(tag)
	writeText(el, "cbc:ID", category.ID)
	if !category.Percent.Equal(decimal.Zero) || category.ID != "" {
		el.CreateElement("cbc:Percent").SetText(category.Percent.String())
	}
	if category.TaxSchemeID != "" {
		scheme := el.CreateElement("cac:TaxScheme")
		writeText(scheme, "cbc:ID", category.TaxSchemeID)
	}
}
