// ABOUTME: Rupee formatting for premium amounts
// ABOUTME: Uses go-money for INR grouping and decimal for exact rounding
package viz

import (
	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// Currency is the display currency for premiums.
const Currency = money.INR

// FormatINR renders a premium amount with the rupee sign and grouping, e.g. "₹12,000.00".
func FormatINR(amount float64) string {
	// to get a never nil currency I need to call the Money constructor
	cur := *money.New(0, Currency).Currency()
	dec := decimal.NewFromFloat(amount).Round(int32(cur.Fraction)).Shift(int32(cur.Fraction))
	return cur.Formatter().Format(dec.IntPart())
}
