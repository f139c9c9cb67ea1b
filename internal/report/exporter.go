// Package report builds the rejected-notes spreadsheet users hand to the
// accounting team.
package report

import (
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/DMCFaria/nota-fiscal-rj-sub000/internal/money"
	"github.com/DMCFaria/nota-fiscal-rj-sub000/internal/nota"
)

// Row is one rejected note, flattened for tabular output.
type Row struct {
	Fatura             string `json:"fatura"`
	IDIntegracao       string `json:"idIntegracao"`
	NumeroNFSe         string `json:"numero_nfse"`
	Tomador            string `json:"tomador"`
	ValorServico       string `json:"valor_servico"`
	Status             string `json:"status"`
	SituacaoPrefeitura string `json:"situacao_prefeitura"`
	Motivo             string `json:"motivo"`
	Logs               string `json:"logs"`
}

var headers = []string{
	"Fatura",
	"ID Integração",
	"Número NFS-e",
	"Tomador",
	"Valor do Serviço",
	"Status",
	"Situação Prefeitura",
	"Motivo da Rejeição",
	"Logs",
}

// Rejeitadas builds one row per rejected note across the given notes. An
// empty result just means nothing is rejected; the caller decides whether
// that deserves a notice.
func Rejeitadas(notas []*nota.Nota) []Row {
	rows := make([]Row, 0)

	for _, n := range notas {
		if !nota.Rejeitada(n) {
			continue
		}

		rows = append(rows, Row{
			Fatura:             n.Fatura,
			IDIntegracao:       n.IntegrationID(),
			NumeroNFSe:         n.NumeroNFSe,
			Tomador:            n.TomadorNome(),
			ValorServico:       money.Format(n.ValorServico),
			Status:             n.Status,
			SituacaoPrefeitura: n.SituacaoPrefeitura,
			Motivo:             nota.MotivoRejeicao(n),
			Logs:               nota.FlattenLogs(n),
		})
	}

	return rows
}

// Filename builds the canonical attachment name, local time.
func Filename(mode string, now time.Time) string {
	return fmt.Sprintf("relatorio_rejeitadas_%s_%s.xlsx", mode, now.Format("2006-01-02_1504"))
}

const sheet = "Rejeitadas"

// WriteXLSX serializes the rows as a spreadsheet.
func WriteXLSX(w io.Writer, rows []Row) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return fmt.Errorf("renaming sheet: %w", err)
	}

	if err := f.SetSheetRow(sheet, "A1", &headers); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("row %d: %w", i, err)
		}

		values := []any{
			row.Fatura,
			row.IDIntegracao,
			row.NumeroNFSe,
			row.Tomador,
			row.ValorServico,
			row.Status,
			row.SituacaoPrefeitura,
			row.Motivo,
			row.Logs,
		}

		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return fmt.Errorf("writing row %d: %w", i, err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("writing spreadsheet: %w", err)
	}

	return nil
}
