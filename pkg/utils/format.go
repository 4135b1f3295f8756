// Package utils provides formatting helpers shared by the CLI and the page.
package utils

import (
	"fmt"
	"math"
	"strings"
)

// FormatShares formats a share count with US thousands grouping
// (1234567 → "1,234,567"). Fractional counts keep up to 2 decimals.
func FormatShares(value float64) string {
	negative := value < 0
	value = math.Abs(value)

	intPart := int64(value)
	decPart := value - float64(intPart)

	formatted := groupThousands(intPart)
	if decPart > 0 {
		dec := formatWithDecimals(decPart)
		if dec == "1" {
			// rounding carried into the integer part
			formatted = groupThousands(intPart + 1)
		} else if dec != "0" {
			formatted += dec[1:] // skip the leading "0"
		}
	}

	if negative {
		return "-" + formatted
	}
	return formatted
}

// FormatSharesCompact formats a share count in short scale notation.
// e.g., 1500000 → "1.5M", 15_634_232_000 → "15.63B"
func FormatSharesCompact(value float64) string {
	sign := ""
	if value < 0 {
		sign = "-"
		value = math.Abs(value)
	}

	switch {
	case value >= 1e12:
		return sign + formatWithDecimals(value/1e12) + "T"
	case value >= 1e9:
		return sign + formatWithDecimals(value/1e9) + "B"
	case value >= 1e6:
		return sign + formatWithDecimals(value/1e6) + "M"
	case value >= 1e3:
		return sign + formatWithDecimals(value/1e3) + "K"
	default:
		return sign + formatWithDecimals(value)
	}
}

// groupThousands formats an integer with comma grouping every 3 digits.
func groupThousands(n int64) string {
	s := fmt.Sprintf("%d", n)
	if len(s) <= 3 {
		return s
	}

	var b strings.Builder
	lead := len(s) % 3
	if lead > 0 {
		b.WriteString(s[:lead])
	}
	for i := lead; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}
	return b.String()
}

// formatWithDecimals formats a number with up to 2 decimal places,
// removing trailing zeros.
func formatWithDecimals(n float64) string {
	s := fmt.Sprintf("%.2f", n)
	s = strings.TrimRight(s, "0")
	s = strings.TrimRight(s, ".")
	return s
}
