package sales

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dukapos/dukapos/internal/catalog"
)

func snap(buying, selling float64) catalog.Snapshot {
	return catalog.Snapshot{
		ID:              1,
		Name:            "Maize Flour 2kg",
		BuyingPrice:     buying,
		MinSellingPrice: selling,
		IsActive:        true,
	}
}

func TestPriceLineDefaultsToCatalogPrice(t *testing.T) {
	line := PriceLine(LineItemInput{ProductID: 1, Quantity: 3}, snap(100, 140))
	assert.Equal(t, 140.0, line.UnitPrice)
	assert.Equal(t, 420.0, line.TotalPrice)
	assert.Equal(t, 300.0, line.Cost)
	assert.Equal(t, 120.0, line.Profit)
	assert.InDelta(t, 28.571, line.ProfitMargin, 0.001)
}

func TestPriceLineUnitPriceOverride(t *testing.T) {
	line := PriceLine(LineItemInput{ProductID: 1, Quantity: 2, UnitPrice: float(160)}, snap(100, 140))
	assert.Equal(t, 160.0, line.UnitPrice)
	assert.Equal(t, 320.0, line.TotalPrice)
}

func TestPriceLineZeroOverrideIgnored(t *testing.T) {
	line := PriceLine(LineItemInput{ProductID: 1, Quantity: 2, UnitPrice: float(0)}, snap(100, 140))
	assert.Equal(t, 140.0, line.UnitPrice)
}

func TestPriceLineExplicitTotalBeatsUnitPrice(t *testing.T) {
	line := PriceLine(LineItemInput{ProductID: 1, Quantity: 4, TotalPrice: float(500)}, snap(100, 140))
	assert.Equal(t, 140.0, line.UnitPrice)
	assert.Equal(t, 500.0, line.TotalPrice)
	assert.Equal(t, 100.0, line.Profit)
}

func TestPriceLineNegativeTotalIgnored(t *testing.T) {
	line := PriceLine(LineItemInput{ProductID: 1, Quantity: 1, TotalPrice: float(-5)}, snap(100, 140))
	assert.Equal(t, 140.0, line.TotalPrice)
}

func TestPriceLineFreeItemHasZeroMargin(t *testing.T) {
	line := PriceLine(LineItemInput{ProductID: 1, Quantity: 1, TotalPrice: float(0)}, snap(100, 140))
	assert.Equal(t, 0.0, line.TotalPrice)
	assert.Equal(t, -100.0, line.Profit)
	assert.Equal(t, 0.0, line.ProfitMargin)
}

func TestFoldTotalsSumsLines(t *testing.T) {
	totals := FoldTotals([]PricedLine{
		{TotalPrice: 100, Cost: 60},
		{TotalPrice: 50, Cost: 40},
	}, 0)
	assert.Equal(t, 150.0, totals.TotalAmount)
	assert.Equal(t, 100.0, totals.TotalCost)
	assert.Equal(t, 50.0, totals.TotalProfit)
	assert.InDelta(t, 33.333, totals.ProfitMargin, 0.001)
}

func TestFoldTotalsExplicitTotalWins(t *testing.T) {
	// Header-level discount: profit is computed against what was charged.
	totals := FoldTotals([]PricedLine{
		{TotalPrice: 100, Cost: 60},
	}, 90)
	assert.Equal(t, 90.0, totals.TotalAmount)
	assert.Equal(t, 30.0, totals.TotalProfit)
}

func TestFoldTotalsEmptyCart(t *testing.T) {
	totals := FoldTotals(nil, 0)
	assert.Zero(t, totals.TotalAmount)
	assert.Zero(t, totals.ProfitMargin)
}
