package money_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/DMCFaria/nota-fiscal-rj-sub000/internal/money"
)

func TestParse(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"1.234,56", "1234.56"},
		{"R$ 10,00", "10"},
		{"R$ 1.500", "1500"},
		{"abc", "0"},
		{"", "0"},
		{"10,5", "10.5"},
		{"10.5", "10.5"},
		{"1.234.567,89", "1234567.89"},
		{"-588,74", "-588.74"},
		{"0,01", "0.01"},
		{"R$-25,90", "-25.9"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			want := decimal.RequireFromString(tt.want)
			assert.True(t, money.Parse(tt.input).Equal(want),
				"Parse(%q) = %s, want %s", tt.input, money.Parse(tt.input), want)
		})
	}
}

func TestFormat(t *testing.T) {
	tests := []struct {
		value string
		want  string
	}{
		{"1234.56", "R$ 1.234,56"},
		{"10", "R$ 10,00"},
		{"0", "R$ 0,00"},
		{"1234567.8", "R$ 1.234.567,80"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, money.Format(decimal.RequireFromString(tt.value)))
		})
	}
}

func TestFormatInput(t *testing.T) {
	assert.Equal(t, "1.234,56", money.FormatInput(decimal.RequireFromString("1234.56")))
	assert.Equal(t, "10,00", money.FormatInput(decimal.NewFromInt(10)))
}

// Reparsing a normalized echo must never change the value.
func TestParseEchoIdempotent(t *testing.T) {
	inputs := []string{"1.234,56", "R$ 10,00", "0,99", "1500", "12,3"}

	for _, input := range inputs {
		t.Run(input, func(t *testing.T) {
			once := money.Parse(input)
			twice := money.Parse(money.FormatInput(once))
			assert.True(t, once.Round(2).Equal(twice),
				"parse(echo(parse(%q))): %s != %s", input, twice, once)
		})
	}
}
