package report_test

import (
	"bytes"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/DMCFaria/nota-fiscal-rj-sub000/internal/nota"
	"github.com/DMCFaria/nota-fiscal-rj-sub000/internal/report"
)

func TestRejeitadas(t *testing.T) {
	notas := []*nota.Nota{
		{
			Fatura:             "F-1",
			IDIntegracao:       "X1",
			Status:             "CONCLUIDO",
			SituacaoPrefeitura: "AUTORIZADA",
		},
		{
			Fatura:             "F-1",
			IDIntegracao:       "X2",
			NumeroNFSe:         "101",
			Status:             "erro",
			SituacaoPrefeitura: "REJEITADA PELO MUNICIPIO",
			Motivo:             "Dados incompletos",
			ValorServico:       decimal.RequireFromString("1234.56"),
			Tomador:            &nota.Parte{RazaoSocial: "ACME LTDA"},
			Logs: []nota.Entrada{
				{Quando: "2024-01-01", Status: "erro", Mensagem: "falhou"},
			},
		},
	}

	rows := report.Rejeitadas(notas)

	require.Len(t, rows, 1)
	assert.Equal(t, report.Row{
		Fatura:             "F-1",
		IDIntegracao:       "X2",
		NumeroNFSe:         "101",
		Tomador:            "ACME LTDA",
		ValorServico:       "R$ 1.234,56",
		Status:             "erro",
		SituacaoPrefeitura: "REJEITADA PELO MUNICIPIO",
		Motivo:             "Dados incompletos",
		Logs:               "[2024-01-01] (erro) falhou",
	}, rows[0])
}

func TestRejeitadasEmpty(t *testing.T) {
	rows := report.Rejeitadas([]*nota.Nota{
		{Status: "CONCLUIDO", SituacaoPrefeitura: "AUTORIZADA"},
	})

	assert.NotNil(t, rows)
	assert.Empty(t, rows)
}

func TestFilename(t *testing.T) {
	ts := time.Date(2024, 3, 5, 14, 7, 0, 0, time.Local)
	assert.Equal(t, "relatorio_rejeitadas_fatura_2024-03-05_1407.xlsx", report.Filename("fatura", ts))
}

func TestWriteXLSX(t *testing.T) {
	rows := []report.Row{
		{
			Fatura:       "F-1",
			IDIntegracao: "X2",
			Motivo:       "Dados incompletos",
		},
	}

	var buf bytes.Buffer
	require.NoError(t, report.WriteXLSX(&buf, rows))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	got, err := f.GetRows("Rejeitadas")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Fatura", got[0][0])
	assert.Equal(t, "F-1", got[1][0])
	assert.Equal(t, "X2", got[1][1])
}
