// Package money converts between user-typed Brazilian currency text and
// exact decimal values, and formats values back for display.
package money

import (
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

var printer = message.NewPrinter(language.BrazilianPortuguese)

// Parse reads a user-typed amount ("1.234,56", "R$ 10,00", "1500") into a
// decimal value. Anything unparseable yields zero; user input never errors.
func Parse(input string) decimal.Decimal {
	clean := strings.Map(func(r rune) rune {
		switch {
		case r >= '0' && r <= '9', r == ',', r == '.', r == '-':
			return r
		default:
			return -1
		}
	}, input)

	clean = stripThousandsDots(clean)
	clean = strings.ReplaceAll(clean, ",", ".")

	d, err := decimal.NewFromString(clean)
	if err != nil {
		return decimal.Zero
	}

	return d
}

// stripThousandsDots removes dots acting as Brazilian thousands separators:
// a dot followed by exactly three digits before another separator or the end
// of the string. A dot with any other digit count is kept as a decimal point
// ("10.5" stays 10.5).
func stripThousandsDots(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	for i := 0; i < len(s); i++ {
		if s[i] != '.' {
			b.WriteByte(s[i])
			continue
		}

		digits := 0
		for j := i + 1; j < len(s) && s[j] >= '0' && s[j] <= '9'; j++ {
			digits++
		}

		if digits == 3 {
			continue
		}

		b.WriteByte('.')
	}

	return b.String()
}

// Format renders a value for display with the currency symbol: "R$ 1.234,56".
func Format(d decimal.Decimal) string {
	return "R$ " + FormatInput(d)
}

// FormatInput renders a value without the symbol, pt-BR grouped with exactly
// two fraction digits, for echoing back into an edit field.
func FormatInput(d decimal.Decimal) string {
	v, _ := d.Round(2).Float64()

	return printer.Sprintf("%v", number.Decimal(v,
		number.MinFractionDigits(2),
		number.MaxFractionDigits(2),
	))
}
