// Package currency converts between milliunits and display currency.
package currency

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"

	"github.com/Veraticus/the-cash-must-flow/internal/model"
)

// Symbol is the display currency symbol.
const Symbol = "$"

var divisor = decimal.NewFromInt(model.MilliunitsPerUnit)

// Units converts milliunits to currency units.
func Units(m model.Milliunits) decimal.Decimal {
	return decimal.NewFromInt(int64(m)).Div(divisor)
}

// FromUnits converts a currency amount to milliunits, rounding to the
// nearest milliunit.
func FromUnits(units float64) model.Milliunits {
	return model.Milliunits(decimal.NewFromFloat(units).Mul(divisor).Round(0).IntPart())
}

// Format renders milliunits as US dollars with two decimals, e.g. "$1,234.56".
func Format(m model.Milliunits) string {
	units := Units(m).Round(2)
	sign := ""
	if units.IsNegative() {
		sign = "-"
		units = units.Neg()
	}

	whole := units.IntPart()
	cents := units.Sub(decimal.NewFromInt(whole)).Shift(2).IntPart()

	return fmt.Sprintf("%s%s%s.%02d", sign, Symbol, humanize.Comma(whole), cents)
}

// Parse reads an amount produced by Format (or a bare number) back into
// milliunits.
func Parse(s string) (model.Milliunits, error) {
	raw := strings.TrimSpace(s)
	negative := false
	if strings.HasPrefix(raw, "(") && strings.HasSuffix(raw, ")") {
		negative = true
		raw = raw[1 : len(raw)-1]
	}
	if strings.HasPrefix(raw, "-") {
		negative = !negative
		raw = raw[1:]
	}
	raw = strings.TrimPrefix(raw, Symbol)
	raw = strings.ReplaceAll(raw, ",", "")

	d, err := decimal.NewFromString(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid currency amount %q: %w", s, err)
	}
	if negative {
		d = d.Neg()
	}

	return model.Milliunits(d.Mul(divisor).Round(0).IntPart()), nil
}
