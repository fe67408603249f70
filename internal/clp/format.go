// Package clp formats Chilean peso amounts for human-facing report fields.
package clp

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Convention captures the locale formatting rules applied to report figures.
// Chilean pesos carry no decimal subunits, so amounts are rendered without
// decimals and with "." as the thousands separator.
type Convention struct {
	ThousandsSep string
	MoneyPrefix  string
	PctSuffix    string
}

// DefaultConvention is the convention used by the MOV-OS reports.
func DefaultConvention() Convention {
	return Convention{ThousandsSep: ".", MoneyPrefix: "$", PctSuffix: "%"}
}

// Amount renders a decimal as a grouped integer string, e.g. 1234567 -> "1.234.567".
// The value is rounded half-up to zero decimals before grouping.
func (c Convention) Amount(v decimal.Decimal) string {
	rounded := v.Round(0)
	neg := rounded.IsNegative()
	digits := rounded.Abs().String()

	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	lead := len(digits) % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
		if len(digits) > lead {
			b.WriteString(c.ThousandsSep)
		}
	}
	for i := lead; i < len(digits); i += 3 {
		b.WriteString(digits[i : i+3])
		if i+3 < len(digits) {
			b.WriteString(c.ThousandsSep)
		}
	}
	return b.String()
}

// Money renders a monetary value with the currency prefix, e.g. "$1.234.567".
func (c Convention) Money(v decimal.Decimal) string {
	return c.MoneyPrefix + c.Amount(v)
}

// Percent renders a percentage with its suffix, e.g. "57%".
func (c Convention) Percent(v decimal.Decimal) string {
	return c.Amount(v) + c.PctSuffix
}
