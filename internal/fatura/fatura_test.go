package fatura_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DMCFaria/nota-fiscal-rj-sub000/internal/fatura"
	"github.com/DMCFaria/nota-fiscal-rj-sub000/internal/nota"
)

func TestSummarize(t *testing.T) {
	notas := []*nota.Nota{
		{Status: "CONCLUIDO", SituacaoPrefeitura: "AUTORIZADA", IDIntegracao: "X1"},
		{Status: "emitida", IDIntegracao: "X2"},
		{Status: "erro", Motivo: "Dados incompletos"},
	}

	s := fatura.Summarize(notas)

	assert.Equal(t, 3, s.Total)
	assert.Equal(t, 2, s.Baixaveis)
	assert.Equal(t, 3, s.Cancelaveis)
	assert.Equal(t, 1, s.Rejeitadas)
}

func TestSummarizeEmpty(t *testing.T) {
	assert.Equal(t, fatura.Summary{}, fatura.Summarize(nil))
}

func TestAgrupar(t *testing.T) {
	notas := []*nota.Nota{
		{Fatura: "F-100", Parcela: 1},
		{Fatura: "F-200", Parcela: 1},
		{Fatura: "F-100", Parcela: 2},
	}

	faturas := fatura.Agrupar(notas)

	require.Len(t, faturas, 2)
	assert.Equal(t, "F-100", faturas[0].Numero)
	require.Len(t, faturas[0].Notas, 2)
	assert.Equal(t, 2, faturas[0].Notas[1].Parcela)
	assert.Equal(t, "F-200", faturas[1].Numero)
}

func TestSplitParcelas(t *testing.T) {
	tests := []struct {
		name  string
		total string
		n     int
		want  []string
	}{
		{"EvenSplit", "300.00", 3, []string{"100", "100", "100"}},
		{"RemainderOnFirst", "100.00", 3, []string{"33.34", "33.33", "33.33"}},
		{"SingleParcela", "59.90", 1, []string{"59.9"}},
		{"OneCentShort", "0.10", 3, []string{"0.04", "0.03", "0.03"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			total := decimal.RequireFromString(tt.total)
			parcelas := fatura.SplitParcelas(total, tt.n)
			require.Len(t, parcelas, tt.n)

			sum := decimal.Zero
			for i, p := range parcelas {
				assert.True(t, p.Equal(decimal.RequireFromString(tt.want[i])),
					"parcela %d = %s, want %s", i+1, p, tt.want[i])
				sum = sum.Add(p)
			}

			assert.True(t, sum.Equal(total), "sum %s != total %s", sum, total)
		})
	}
}

func TestSplitParcelasInvalidCount(t *testing.T) {
	assert.Nil(t, fatura.SplitParcelas(decimal.NewFromInt(10), 0))
}
