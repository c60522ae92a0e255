// Package money holds the line and order arithmetic shared by every view.
package money

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// PartAmount is the numeric part of a consumed part.
type PartAmount struct {
	Quantity  decimal.Decimal
	BuyPrice  decimal.Decimal
	SellPrice decimal.Decimal
}

// Totals is the cost/revenue breakdown of one line or of a whole order.
type Totals struct {
	LaborCost decimal.Decimal `json:"labor_cost"`
	PartsCost decimal.Decimal `json:"parts_cost"`
	PartsSold decimal.Decimal `json:"parts_sold"`
	Total     decimal.Decimal `json:"total"`
	Profit    decimal.Decimal `json:"profit"`
}

// Places is the scale money is stored with.
const Places = 2

// LineTotals computes the breakdown of a single service line. Labor and the
// part sums are rounded to cents before combining, so a line always matches
// what the database stores.
//
//	total  = labor + Σ qty × sell
//	profit = total − Σ qty × buy
func LineTotals(labor decimal.Decimal, parts []PartAmount) Totals {
	partsCost := decimal.Zero
	partsSold := decimal.Zero
	for _, p := range parts {
		partsCost = partsCost.Add(p.Quantity.Mul(p.BuyPrice))
		partsSold = partsSold.Add(p.Quantity.Mul(p.SellPrice))
	}
	labor = labor.Round(Places)
	partsCost = partsCost.Round(Places)
	partsSold = partsSold.Round(Places)
	total := labor.Add(partsSold)
	return Totals{
		LaborCost: labor,
		PartsCost: partsCost,
		PartsSold: partsSold,
		Total:     total,
		Profit:    total.Sub(partsCost),
	}
}

// Add returns the field-wise sum of t and o.
func (t Totals) Add(o Totals) Totals {
	return Totals{
		LaborCost: t.LaborCost.Add(o.LaborCost),
		PartsCost: t.PartsCost.Add(o.PartsCost),
		PartsSold: t.PartsSold.Add(o.PartsSold),
		Total:     t.Total.Add(o.Total),
		Profit:    t.Profit.Add(o.Profit),
	}
}

// Sum aggregates line totals into an order total.
func Sum(lines ...Totals) Totals {
	var out Totals
	for _, l := range lines {
		out = out.Add(l)
	}
	return out
}

// IsNegative reports whether any amount is below zero.
func IsNegative(amounts ...decimal.Decimal) bool {
	for _, a := range amounts {
		if a.IsNegative() {
			return true
		}
	}
	return false
}

var printer = message.NewPrinter(language.Albanian)

// FormatEUR renders an amount the way invoices show it, e.g. "1 234,50 €".
func FormatEUR(d decimal.Decimal) string {
	return printer.Sprintf("%v €", number.Decimal(d.Round(2).InexactFloat64(), number.Scale(2)))
}

// NormalizeQuantity maps missing or non-positive part quantities to 1.
func NormalizeQuantity(q decimal.Decimal) decimal.Decimal {
	if q.Sign() <= 0 {
		return decimal.NewFromInt(1)
	}
	return q
}

// FormatInt renders a whole number with local digit grouping, e.g. odometer readings.
func FormatInt(n int64) string {
	return printer.Sprintf("%v", number.Decimal(n))
}
