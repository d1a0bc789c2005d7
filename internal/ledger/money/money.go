// Package money implements integer minor-unit arithmetic for the ledger.
// Balances are never computed in floating point; decimal strings are
// parsed at the API boundary and converted back only for display.
package money

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Amount is a monetary value in minor units (e.g. cents).
type Amount = int64

var printer = message.NewPrinter(language.English)

// Parse converts a decimal string such as "125.50" into minor units for a
// currency with the given exponent. It rejects negative values and values
// carrying more precision than the exponent allows.
func Parse(s string, exponent int) (Amount, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("money: invalid amount %q", s)
	}
	if d.IsNegative() {
		return 0, fmt.Errorf("money: amount %q is negative", s)
	}
	scaled := d.Shift(int32(exponent))
	if !scaled.Equal(scaled.Truncate(0)) {
		return 0, fmt.Errorf("money: amount %q exceeds %d decimal places", s, exponent)
	}
	if !scaled.BigInt().IsInt64() {
		return 0, fmt.Errorf("money: amount %q out of range", s)
	}
	return scaled.IntPart(), nil
}

// String renders minor units as a plain decimal string ("125.50").
func String(v Amount, exponent int) string {
	return decimal.New(v, -int32(exponent)).StringFixed(int32(exponent))
}

// Display renders minor units with locale-aware grouping ("1,250.00") for
// report view models. Grouping works on the decimal digits; the value
// never passes through floating point, so amounts beyond 2^53 minor units
// stay exact. Never feed this back into arithmetic.
func Display(v Amount, exponent int) string {
	s := String(v, exponent)
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	units, frac, hasFrac := strings.Cut(s, ".")
	n, err := strconv.ParseInt(units, 10, 64)
	if err != nil {
		return sign + s
	}
	out := sign + printer.Sprintf("%d", n)
	if hasFrac {
		out += "." + frac
	}
	return out
}
