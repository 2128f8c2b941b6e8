package ubl

import (
	dec "github.com/shopspring/decimal"

	"github.com/rezonia/efactura/internal/decimal"
)

// ComputeTotals derives the tax totals and the legal monetary total from the
// invoice lines, grouping tax by classified category. Amounts are stamped
// with the document currency; lines without a tax category contribute to the
// totals but to no tax subtotal.
func (inv *Invoice) ComputeTotals() {
	currency := inv.DocumentCurrencyCode

	type group struct {
		category TaxCategory
		base     dec.Decimal
	}
	var order []string
	groups := map[string]*group{}

	lineTotal := decimal.Zero
	for _, line := range inv.Lines {
		lineTotal = lineTotal.Add(line.LineExtensionAmount.Value)
		if line.Item.TaxCategory == nil {
			continue
		}
		cat := *line.Item.TaxCategory
		key := cat.ID + "/" + cat.Percent.String()
		g, ok := groups[key]
		if !ok {
			g = &group{category: cat}
			groups[key] = g
			order = append(order, key)
		}
		g.base = g.base.Add(line.LineExtensionAmount.Value)
	}

	taxTotal := decimal.Zero
	var subtotals []TaxSubtotal
	for _, key := range order {
		g := groups[key]
		tax := decimal.CalculateVAT(g.base, g.category.Percent)
		taxTotal = taxTotal.Add(tax)
		subtotals = append(subtotals, TaxSubtotal{
			TaxableAmount: Amount{Value: decimal.RoundRON(g.base), CurrencyID: currency},
			TaxAmount:     Amount{Value: tax, CurrencyID: currency},
			Category:      g.category,
		})
	}

	inv.TaxTotals = []TaxTotal{{
		TaxAmount: Amount{Value: decimal.RoundRON(taxTotal), CurrencyID: currency},
		Subtotals: subtotals,
	}}

	lineTotal = decimal.RoundRON(lineTotal)
	inv.LegalMonetaryTotal = MonetaryTotal{
		LineExtensionAmount: Amount{Value: lineTotal, CurrencyID: currency},
		TaxExclusiveAmount:  Amount{Value: lineTotal, CurrencyID: currency},
		TaxInclusiveAmount:  Amount{Value: lineTotal.Add(taxTotal).Round(2), CurrencyID: currency},
		PayableAmount:       Amount{Value: lineTotal.Add(taxTotal).Round(2), CurrencyID: currency},
	}
}
