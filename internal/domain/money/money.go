// Package money provides exact decimal arithmetic helpers and the canonical
// string formats used on generated payout documents. Two renderings of the
// same value must agree byte-for-byte, so all formatting goes through here.
package money

import (
	"strings"

	"github.com/shopspring/decimal"
)

// MinusGlyph is the distinguished minus sign used for negative currency
// amounts on payout statements (U+2212, not the ASCII hyphen).
const MinusGlyph = "−"

// Zero is the zero amount.
var Zero = decimal.Zero

// Cents rounds an amount to cent precision using banker's-free half-up
// rounding, the convention for all persisted currency values.
func Cents(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// FormatCurrency renders an amount as "$1,234.56". Negative amounts use the
// distinguished minus glyph before the dollar sign: "−$1,234.56".
func FormatCurrency(d decimal.Decimal) string {
	neg := d.IsNegative()
	abs := d.Abs().StringFixed(2)

	intPart, fracPart, _ := strings.Cut(abs, ".")
	grouped := groupThousands(intPart)

	var b strings.Builder
	if neg {
		b.WriteString(MinusGlyph)
	}
	b.WriteByte('$')
	b.WriteString(grouped)
	b.WriteByte('.')
	b.WriteString(fracPart)
	return b.String()
}

// FormatPercent renders a fractional percent (0.15) as "15.00%".
func FormatPercent(d decimal.Decimal) string {
	return d.Mul(decimal.NewFromInt(100)).StringFixed(2) + "%"
}

// FormatTierPercent renders a fractional percent (0.4) as "40%", rounded to
// the nearest whole number as tier labels are displayed.
func FormatTierPercent(d decimal.Decimal) string {
	return d.Mul(decimal.NewFromInt(100)).Round(0).StringFixed(0) + "%"
}

func groupThousands(digits string) string {
	n := len(digits)
	if n <= 3 {
		return digits
	}
	var b strings.Builder
	head := n % 3
	if head > 0 {
		b.WriteString(digits[:head])
	}
	for i := head; i < n; i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}
