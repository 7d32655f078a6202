// Package reports computes read-only summaries over the transaction ledger.
package reports

import "errors"

// DailySummary aggregates one shop's completed sales for a calendar day.
type DailySummary struct {
	ShopID       int64              `json:"shop_id"`
	Date         string             `json:"date"`
	Transactions int                `json:"transactions"`
	TotalAmount  float64            `json:"total_amount"`
	TotalCost    float64            `json:"total_cost"`
	TotalProfit  float64            `json:"total_profit"`
	ItemsSold    int                `json:"items_sold"`
	ByPayment    map[string]float64 `json:"by_payment"`
}

// ErrInvalidPeriod indicates an unparseable report date.
var ErrInvalidPeriod = errors.New("reports: invalid date")
