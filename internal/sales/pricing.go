package sales

import "github.com/dukapos/dukapos/internal/catalog"

// Totals aggregates priced lines at transaction granularity.
type Totals struct {
	TotalAmount  float64
	TotalCost    float64
	TotalProfit  float64
	ProfitMargin float64
}

// PriceLine resolves one cart line against its catalog snapshot. Pure: all
// input validation happens in the orchestrator before this is called.
//
// The effective unit price is the caller override when present and positive,
// otherwise the catalog minimum selling price. A caller-supplied line total
// wins over unit price x quantity (manual line-level discounting) but a
// negative one is ignored.
func PriceLine(item LineItemInput, snap catalog.Snapshot) PricedLine {
	unitPrice := snap.MinSellingPrice
	if item.UnitPrice != nil && *item.UnitPrice > 0 {
		unitPrice = *item.UnitPrice
	}

	totalPrice := unitPrice * float64(item.Quantity)
	if item.TotalPrice != nil && *item.TotalPrice >= 0 {
		totalPrice = *item.TotalPrice
	}

	cost := snap.BuyingPrice * float64(item.Quantity)
	profit := totalPrice - cost

	var margin float64
	if totalPrice > 0 {
		margin = profit / totalPrice * 100
	}

	return PricedLine{
		ProductID:    snap.ID,
		ProductName:  snap.Name,
		Category:     snap.Category,
		Barcode:      snap.Barcode,
		Quantity:     item.Quantity,
		UnitPrice:    unitPrice,
		TotalPrice:   totalPrice,
		UnitCost:     snap.BuyingPrice,
		Cost:         cost,
		Profit:       profit,
		ProfitMargin: margin,
	}
}

// FoldTotals sums priced lines into transaction-level aggregates. A positive
// explicitTotal wins over the summed line totals; it may legitimately diverge
// because of header-level discount and tax.
func FoldTotals(lines []PricedLine, explicitTotal float64) Totals {
	var t Totals
	for _, line := range lines {
		t.TotalAmount += line.TotalPrice
		t.TotalCost += line.Cost
	}
	if explicitTotal > 0 {
		t.TotalAmount = explicitTotal
	}
	t.TotalProfit = t.TotalAmount - t.TotalCost
	if t.TotalAmount > 0 {
		t.ProfitMargin = t.TotalProfit / t.TotalAmount * 100
	}
	return t
}
