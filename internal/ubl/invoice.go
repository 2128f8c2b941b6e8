// Package ubl converts between a typed UBL 2.1 invoice model and the
// CIUS-RO-profile XML text accepted by the e-Factura system.
package ubl

import (
	"encoding/xml"

	"github.com/shopspring/decimal"
)

// The four namespaces every UBL invoice document must carry.
const (
	NamespaceInvoice = "urn:oasis:names:specification:ubl:schema:xsd:Invoice-2"
	NamespaceCAC     = "urn:oasis:names:specification:ubl:schema:xsd:CommonAggregateComponents-2"
	NamespaceCBC     = "urn:oasis:names:specification:ubl:schema:xsd:CommonBasicComponents-2"
	NamespaceXSI     = "http://www.w3.org/2001/XMLSchema-instance"
)

// CIUSROCustomizationID is the conformance identifier the Romanian profile
// expects in cbc:CustomizationID.
const CIUSROCustomizationID = "urn:cen.eu:en16931:2017#compliant#urn:efactura.mfinante.ro:CIUS-RO:1.0.1"

// Amount is a monetary value qualified by its currency.
type Amount struct {
	Value      decimal.Decimal `xml:",chardata"`
	CurrencyID string          `xml:"currencyID,attr"`
}

// Quantity is a numeric value qualified by its unit of measure.
type Quantity struct {
	Value    decimal.Decimal `xml:",chardata"`
	UnitCode string          `xml:"unitCode,attr"`
}

// Invoice is the typed document tree. Field order mirrors the UBL schema
// sequence; the serializer emits elements in declaration order.
type Invoice struct {
	XMLName              xml.Name       `xml:"Invoice"`
	CustomizationID      string         `xml:"CustomizationID"`
	ID                   string         `xml:"ID"`
	IssueDate            string         `xml:"IssueDate"`
	DueDate              string         `xml:"DueDate"`
	InvoiceTypeCode      string         `xml:"InvoiceTypeCode"`
	Notes                []string       `xml:"Note"`
	DocumentCurrencyCode string         `xml:"DocumentCurrencyCode"`
	Supplier             PartyWrapper   `xml:"AccountingSupplierParty"`
	Customer             PartyWrapper   `xml:"AccountingCustomerParty"`
	PaymentMeans         []PaymentMeans `xml:"PaymentMeans"`
	TaxTotals            []TaxTotal     `xml:"TaxTotal"`
	LegalMonetaryTotal   MonetaryTotal  `xml:"LegalMonetaryTotal"`
	Lines                []InvoiceLine  `xml:"InvoiceLine"`
}

// PartyWrapper is the cac:AccountingSupplierParty / cac:AccountingCustomerParty
// envelope around cac:Party.
type PartyWrapper struct {
	Party Party `xml:"Party"`
}

// Party describes one trading party.
type Party struct {
	Name          string      `xml:"PartyName>Name"`
	PostalAddress Address     `xml:"PostalAddress"`
	TaxScheme     *TaxParty   `xml:"PartyTaxScheme"`
	LegalEntity   LegalEntity `xml:"PartyLegalEntity"`
	Contact       *Contact    `xml:"Contact"`
}

// Address is a postal address.
type Address struct {
	StreetName       string `xml:"StreetName"`
	CityName         string `xml:"CityName"`
	PostalZone       string `xml:"PostalZone"`
	CountrySubentity string `xml:"CountrySubentity"`
	CountryCode      string `xml:"Country>IdentificationCode"`
}

// TaxParty carries the party's tax registration.
type TaxParty struct {
	CompanyID   string `xml:"CompanyID"`
	TaxSchemeID string `xml:"TaxScheme>ID"`
}

// LegalEntity carries the party's legal registration.
type LegalEntity struct {
	RegistrationName string `xml:"RegistrationName"`
	CompanyID        string `xml:"CompanyID"`
}

// Contact is an optional contact block.
type Contact struct {
	Name           string `xml:"Name"`
	Telephone      string `xml:"Telephone"`
	ElectronicMail string `xml:"ElectronicMail"`
}

// PaymentMeans describes how the invoice is settled.
type PaymentMeans struct {
	Code             string `xml:"PaymentMeansCode"`
	PayeeFinancialID string `xml:"PayeeFinancialAccount>ID"`
}

// TaxTotal aggregates tax for the document.
type TaxTotal struct {
	TaxAmount Amount        `xml:"TaxAmount"`
	Subtotals []TaxSubtotal `xml:"TaxSubtotal"`
}

// TaxSubtotal breaks a tax total down per category.
type TaxSubtotal struct {
	TaxableAmount Amount      `xml:"TaxableAmount"`
	TaxAmount     Amount      `xml:"TaxAmount"`
	Category      TaxCategory `xml:"TaxCategory"`
}

// TaxCategory identifies a tax treatment.
type TaxCategory struct {
	ID          string          `xml:"ID"`
	Percent     decimal.Decimal `xml:"Percent"`
	TaxSchemeID string          `xml:"TaxScheme>ID"`
}

// MonetaryTotal is the document-level amount summary.
type MonetaryTotal struct {
	LineExtensionAmount Amount `xml:"LineExtensionAmount"`
	TaxExclusiveAmount  Amount `xml:"TaxExclusiveAmount"`
	TaxInclusiveAmount  Amount `xml:"TaxInclusiveAmount"`
	PayableAmount       Amount `xml:"PayableAmount"`
}

// InvoiceLine is one billed position.
type InvoiceLine struct {
	ID                  string   `xml:"ID"`
	InvoicedQuantity    Quantity `xml:"InvoicedQuantity"`
	LineExtensionAmount Amount   `xml:"LineExtensionAmount"`
	Item                Item     `xml:"Item"`
	Price               *Price   `xml:"Price"`
}

// Item describes the billed good or service.
type Item struct {
	Description string       `xml:"Description"`
	Name        string       `xml:"Name"`
	TaxCategory *TaxCategory `xml:"ClassifiedTaxCategory"`
}

// Price is the unit price of a line.
type Price struct {
	PriceAmount Amount `xml:"PriceAmount"`
}
