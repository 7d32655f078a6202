package receipts

import (
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"

	"github.com/dukapos/dukapos/internal/sales"
)

func sampleTransaction() sales.Transaction {
	return sales.Transaction{
		Number:        "TXN-20260829120000-AB12CD34",
		Status:        sales.StatusCompleted,
		PaymentMethod: sales.PaymentMpesa,
		CustomerName:  sales.WalkInCustomer,
		ShopName:      "Duka Moja",
		CashierName:   "Wanjiru",
		Lines: []sales.PricedLine{
			{ProductName: "Soda 500ml", Quantity: 2, UnitPrice: 50, TotalPrice: 100},
			{ProductName: "Maize Flour 2kg", Quantity: 1, UnitPrice: 1250, TotalPrice: 1250},
		},
		Subtotal:    1350,
		TotalAmount: 1350,
		AmountPaid:  1500,
		ChangeGiven: 150,
		CreatedAt:   time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC),
	}
}

func TestRenderContainsHeaderAndTotals(t *testing.T) {
	r := NewRenderer("Karibu tena!")
	out := r.Render(sampleTransaction())

	assert.Contains(t, out, "Duka Moja")
	assert.Contains(t, out, "TXN-20260829120000-AB12CD34")
	assert.Contains(t, out, "Soda 500ml")
	assert.Contains(t, out, "Maize Flour 2kg")
	assert.Contains(t, out, "TOTAL")
	assert.Contains(t, out, "Paid (mpesa)")
	assert.Contains(t, out, "Change")
	assert.Contains(t, out, "Wanjiru")
	assert.Contains(t, out, "Karibu tena!")
}

func TestRenderGroupsThousands(t *testing.T) {
	r := NewRenderer("")
	out := r.Render(sampleTransaction())
	assert.Contains(t, out, "KES 1,250.00")
	assert.Contains(t, out, "KES 1,350.00")
}

func TestRenderWalkInCustomerOmitted(t *testing.T) {
	r := NewRenderer("")
	tx := sampleTransaction()
	out := r.Render(tx)
	assert.NotContains(t, out, "Customer")

	tx.CustomerName = "Mama Njeri"
	out = r.Render(tx)
	assert.Contains(t, out, "Mama Njeri")
}

func TestRenderMultiByteNamesAlignByRuneWidth(t *testing.T) {
	r := NewRenderer("")
	tx := sampleTransaction()
	tx.ShopName = "Café Señorita"
	tx.CustomerName = "Ñjeri Wambúi"
	out := r.Render(tx)

	lines := strings.Split(out, "\n")
	// Centered header: pad from rune width, not byte length.
	assert.Equal(t, strings.Repeat(" ", (lineWidth-utf8.RuneCountInString(tx.ShopName))/2)+tx.ShopName, lines[0])

	for _, line := range lines {
		if strings.HasPrefix(line, "Customer") {
			assert.Equal(t, lineWidth, utf8.RuneCountInString(line))
		}
	}
}

func TestRenderZeroChangeOmitted(t *testing.T) {
	r := NewRenderer("")
	tx := sampleTransaction()
	tx.AmountPaid = tx.TotalAmount
	tx.ChangeGiven = 0
	out := r.Render(tx)

	for _, line := range strings.Split(out, "\n") {
		assert.NotContains(t, line, "Change")
	}
}
