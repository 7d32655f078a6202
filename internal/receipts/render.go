// Package receipts renders printable text receipts for completed sales.
package receipts

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/dukapos/dukapos/internal/sales"
)

const lineWidth = 42

// Renderer formats transactions as fixed-width till receipts. Amounts are
// grouped per the configured locale (KES with en-KE digit grouping).
type Renderer struct {
	printer  *message.Printer
	currency string
	footer   string
}

func NewRenderer(footer string) *Renderer {
	return &Renderer{
		printer:  message.NewPrinter(language.MustParse("en-KE")),
		currency: "KES",
		footer:   footer,
	}
}

func (r *Renderer) amount(v float64) string {
	return r.printer.Sprintf("%s %v", r.currency,
		number.Decimal(v, number.MinFractionDigits(2), number.MaxFractionDigits(2)))
}

// Padding counts runes, not bytes; shop and product names are not ASCII-only.
func center(s string) string {
	width := utf8.RuneCountInString(s)
	if width >= lineWidth {
		return s
	}
	pad := (lineWidth - width) / 2
	return strings.Repeat(" ", pad) + s
}

func kv(b *strings.Builder, label, value string) {
	gap := lineWidth - utf8.RuneCountInString(label) - utf8.RuneCountInString(value)
	if gap < 1 {
		gap = 1
	}
	fmt.Fprintf(b, "%s%s%s\n", label, strings.Repeat(" ", gap), value)
}

// Render produces the full receipt body for tx.
func (r *Renderer) Render(tx sales.Transaction) string {
	var b strings.Builder
	rule := strings.Repeat("-", lineWidth)

	b.WriteString(center(tx.ShopName) + "\n")
	b.WriteString(center(tx.Number) + "\n")
	b.WriteString(center(tx.CreatedAt.Format(time.DateTime)) + "\n")
	b.WriteString(rule + "\n")

	for _, line := range tx.Lines {
		b.WriteString(line.ProductName + "\n")
		kv(&b, fmt.Sprintf("  %d x %s", line.Quantity, r.amount(line.UnitPrice)), r.amount(line.TotalPrice))
	}

	b.WriteString(rule + "\n")
	kv(&b, "Subtotal", r.amount(tx.Subtotal))
	if tx.Discount > 0 {
		kv(&b, "Discount", "-"+r.amount(tx.Discount))
	}
	if tx.Tax > 0 {
		kv(&b, "Tax", r.amount(tx.Tax))
	}
	kv(&b, "TOTAL", r.amount(tx.TotalAmount))
	kv(&b, "Paid ("+string(tx.PaymentMethod)+")", r.amount(tx.AmountPaid))
	if tx.ChangeGiven > 0 {
		kv(&b, "Change", r.amount(tx.ChangeGiven))
	}

	b.WriteString(rule + "\n")
	kv(&b, "Served by", tx.CashierName)
	if tx.CustomerName != sales.WalkInCustomer && tx.CustomerName != "" {
		kv(&b, "Customer", tx.CustomerName)
	}
	if r.footer != "" {
		b.WriteString(center(r.footer) + "\n")
	}
	return b.String()
}
