package summary

import (
	"github.com/capitlshop/storefront-backend/internal/hydrate"
	"github.com/shopspring/decimal"
)

// FreeShipping is the storefront's flat shipping policy. Summation never
// touches it, so a future per-order rate only changes this value.
var FreeShipping = decimal.Zero

// Summary carries the derived order totals. Values are exact; rounding to
// two decimal places happens at presentation time only.
type Summary struct {
	Subtotal decimal.Decimal
	Shipping decimal.Decimal
	Total    decimal.Decimal
}

// Summarize derives subtotal/shipping/total from hydrated lines. An empty
// cart yields all zeroes.
func Summarize(lines []hydrate.Line) Summary {
	subtotal := decimal.Zero
	for _, line := range lines {
		subtotal = subtotal.Add(line.Total())
	}
	return Summary{
		Subtotal: subtotal,
		Shipping: FreeShipping,
		Total:    subtotal.Add(FreeShipping),
	}
}
