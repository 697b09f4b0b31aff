package billing

import "github.com/shopspring/decimal"

var two = decimal.NewFromInt(2)

// TaxBreakdown holds the GST components for a taxable value
type TaxBreakdown struct {
	CGST decimal.Decimal `json:"cgst"`
	SGST decimal.Decimal `json:"sgst"`
	IGST decimal.Decimal `json:"igst"`
}

func (t TaxBreakdown) Total() decimal.Decimal {
	return t.CGST.Add(t.SGST).Add(t.IGST)
}

func (t TaxBreakdown) add(o TaxBreakdown) TaxBreakdown {
	return TaxBreakdown{
		CGST: t.CGST.Add(o.CGST),
		SGST: t.SGST.Add(o.SGST),
		IGST: t.IGST.Add(o.IGST),
	}
}

func (t TaxBreakdown) rounded() TaxBreakdown {
	return TaxBreakdown{
		CGST: RoundMoney(t.CGST),
		SGST: RoundMoney(t.SGST),
		IGST: RoundMoney(t.IGST),
	}
}

// ComputeTax splits GST for one taxable value.
// Inter-state supplies carry IGST only; intra-state supplies split the rate equally into CGST and SGST.
func ComputeTax(taxableValue, gstRatePercent decimal.Decimal, isInterState bool) TaxBreakdown {
	return computeTaxExact(taxableValue, gstRatePercent, isInterState).rounded()
}

func computeTaxExact(taxableValue, gstRatePercent decimal.Decimal, isInterState bool) TaxBreakdown {
	tax := taxableValue.Mul(gstRatePercent).Div(hundred)
	if isInterState {
		return TaxBreakdown{CGST: decimal.Zero, SGST: decimal.Zero, IGST: tax}
	}
	half := tax.Div(two)
	return TaxBreakdown{CGST: half, SGST: half, IGST: decimal.Zero}
}
