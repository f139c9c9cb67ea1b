package rps_test

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"

	"github.com/DMCFaria/nota-fiscal-rj-sub000/internal/rps"
)

func TestParse(t *testing.T) {
	input := strings.Join([]string{
		"fatura;parcela;valor_servico;descricao;tomador_razao_social;tomador_cnpj",
		"F-100;1;1.234,56;Consultoria;ACME LTDA;12345678000190",
		"F-100;2;1.234,56;Consultoria;ACME LTDA;12345678000190",
		"F-200;;59,90;Suporte;;",
		"",
	}, "\n")

	reqs, err := rps.Parse(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, reqs, 3)

	assert.Equal(t, "F-100", reqs[0].Fatura)
	assert.Equal(t, 1, reqs[0].Parcela)
	assert.True(t, reqs[0].ValorServico.Equal(decimal.RequireFromString("1234.56")))
	assert.Equal(t, "Consultoria", reqs[0].Descricao)
	require.NotNil(t, reqs[0].Tomador)
	assert.Equal(t, "ACME LTDA", reqs[0].Tomador.RazaoSocial)
	assert.Equal(t, "12345678000190", reqs[0].Tomador.CNPJ)

	assert.Equal(t, 0, reqs[2].Parcela)
	assert.Nil(t, reqs[2].Tomador)
}

func TestParse_HeaderCaseInsensitive(t *testing.T) {
	input := "FATURA;VALOR_SERVICO\nF-1;10,00\n"

	reqs, err := rps.Parse(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, reqs, 1)
	assert.Equal(t, "F-1", reqs[0].Fatura)
}

func TestParse_MissingRequiredColumn(t *testing.T) {
	input := "fatura;descricao\nF-1;Consultoria\n"

	_, err := rps.Parse(strings.NewReader(input))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "valor_servico")
}

func TestParse_BadRowsReportLineNumber(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "EmptyFatura",
			input: "fatura;valor_servico\n;10,00\n",
			want:  "linha 2",
		},
		{
			name:  "UnparseableValor",
			input: "fatura;valor_servico\nF-1;10,00\nF-2;abc\n",
			want:  "linha 3",
		},
		{
			name:  "BadParcela",
			input: "fatura;parcela;valor_servico\nF-1;x;10,00\n",
			want:  "parcela inválida",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := rps.Parse(strings.NewReader(tt.input))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestParse_Windows1252Input(t *testing.T) {
	// "Manutenção" as a Brazilian ERP would write it.
	raw, err := charmap.Windows1252.NewEncoder().String("fatura;valor_servico;descricao\nF-1;10,00;Manutenção\n")
	require.NoError(t, err)

	reqs, err := rps.Parse(strings.NewReader(raw))
	require.NoError(t, err)
	require.Len(t, reqs, 1)
	assert.Equal(t, "Manutenção", reqs[0].Descricao)
}

func TestParse_UTF8BOM(t *testing.T) {
	input := "\xEF\xBB\xBFfatura;valor_servico\nF-1;10,00\n"

	reqs, err := rps.Parse(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, reqs, 1)
	assert.Equal(t, "F-1", reqs[0].Fatura)
}

func TestParse_EmptyFile(t *testing.T) {
	_, err := rps.Parse(strings.NewReader(""))
	assert.Error(t, err)
}
