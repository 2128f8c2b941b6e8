package ubl

import (
	"fmt"
	"strings"

	"github.com/beevik/etree"
)

// Issue is one structured validation finding.
type Issue struct {
	Code     string `json:"code"`
	Message  string `json:"message"`
	Location string `json:"location,omitempty"`
}

// ValidationResult is the outcome of a structural validation pass. Produced
// fresh per call, never retained.
type ValidationResult struct {
	WellFormed bool    `json:"well_formed"`
	Valid      bool    `json:"valid"`
	Errors     []Issue `json:"errors,omitempty"`
	Warnings   []Issue `json:"warnings,omitempty"`
}

// requiredElements are the document locations every invoice must carry.
// Presence checks only; cardinality and datatypes are the remote validator's
// business.
var requiredElements = []struct {
	prefix string
	name   string
}{
	{"cbc", "CustomizationID"},
	{"cbc", "ID"},
	{"cbc", "IssueDate"},
	{"cbc", "InvoiceTypeCode"},
	{"cbc", "DocumentCurrencyCode"},
	{"cac", "AccountingSupplierParty"},
	{"cac", "AccountingCustomerParty"},
	{"cac", "LegalMonetaryTotal"},
	{"cac", "InvoiceLine"},
}

// Validate cleans the text, confirms it parses, and checks the required
// element locations. A CustomizationID that is present but not the exact
// CIUS-RO conformance string yields a warning, not an error.
func Validate(text string) *ValidationResult {
	result := &ValidationResult{}

	doc := etree.NewDocument()
	if err := doc.ReadFromString(Clean(text)); err != nil {
		result.Errors = append(result.Errors, Issue{
			Code:    "malformed-xml",
			Message: err.Error(),
		})
		return result
	}
	root := doc.Root()
	if root == nil {
		result.Errors = append(result.Errors, Issue{
			Code:    "malformed-xml",
			Message: "document has no root element",
		})
		return result
	}
	result.WellFormed = true
	result.Valid = true

	for _, req := range requiredElements {
		if childByLocalName(root, req.name) == nil {
			result.Valid = false
			result.Errors = append(result.Errors, Issue{
				Code:     "missing-element",
				Message:  fmt.Sprintf("required element %s is missing", req.name),
				Location: fmt.Sprintf("Invoice/%s:%s", req.prefix, req.name),
			})
		}
	}

	if el := childByLocalName(root, "CustomizationID"); el != nil {
		if strings.TrimSpace(el.Text()) != CIUSROCustomizationID {
			result.Warnings = append(result.Warnings, Issue{
				Code:     "customization-id",
				Message:  fmt.Sprintf("CustomizationID does not match the CIUS-RO conformance identifier %q", CIUSROCustomizationID),
				Location: "Invoice/cbc:CustomizationID",
			})
		}
	}

	return result
}

// childByLocalName finds a direct child by tag, ignoring namespace prefixes.
func childByLocalName(parent *etree.Element, name string) *etree.Element {
	for _, child := range parent.ChildElements() {
		if child.Tag == name {
			return child
		}
	}
	return nil
}
