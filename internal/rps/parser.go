// Package rps reads bulk RPS exports (provisional service receipts) and
// turns them into emission requests for the issuance backend.
package rps

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/DMCFaria/nota-fiscal-rj-sub000/internal/money"
	"github.com/DMCFaria/nota-fiscal-rj-sub000/internal/nota"
)

// Column names expected in the export's header row. Order is free; matching
// is case-insensitive.
const (
	colFatura    = "fatura"
	colParcela   = "parcela"
	colValor     = "valor_servico"
	colDescricao = "descricao"
	colTomador   = "tomador_razao_social"
	colCNPJ      = "tomador_cnpj"
	colCPF       = "tomador_cpf"
)

var requiredCols = []string{colFatura, colValor}

// Parse reads a semicolon-separated RPS export into emission requests.
// Encoding is auto-detected; amounts are in Brazilian format ("1.234,56").
func Parse(r io.Reader) ([]nota.EmissaoRequest, error) {
	utf8r, err := utf8Reader(r)
	if err != nil {
		return nil, fmt.Errorf("detect encoding: %w", err)
	}

	reader := csv.NewReader(utf8r)
	reader.Comma = ';'
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}

	if len(rows) == 0 {
		return nil, fmt.Errorf("arquivo RPS vazio")
	}

	cols, err := mapHeader(rows[0])
	if err != nil {
		return nil, err
	}

	var reqs []nota.EmissaoRequest

	for i, row := range rows[1:] {
		rowNum := i + 2 // 1-based, after the header

		if isBlank(row) {
			continue
		}

		fatura := cell(row, col(cols, colFatura))
		if fatura == "" {
			return nil, fmt.Errorf("linha %d: fatura vazia", rowNum)
		}

		valor := money.Parse(cell(row, col(cols, colValor)))
		if valor.IsZero() {
			return nil, fmt.Errorf("linha %d: valor_servico inválido: %q", rowNum, cell(row, col(cols, colValor)))
		}

		req := nota.EmissaoRequest{
			Fatura:       fatura,
			ValorServico: valor,
			Descricao:    cell(row, col(cols, colDescricao)),
		}

		if p := cell(row, col(cols, colParcela)); p != "" {
			parcela, err := strconv.Atoi(p)
			if err != nil {
				return nil, fmt.Errorf("linha %d: parcela inválida: %q", rowNum, p)
			}

			req.Parcela = parcela
		}

		if razao := cell(row, col(cols, colTomador)); razao != "" {
			req.Tomador = &nota.Parte{
				RazaoSocial: razao,
				CNPJ:        cell(row, col(cols, colCNPJ)),
				CPF:         cell(row, col(cols, colCPF)),
			}
		}

		reqs = append(reqs, req)
	}

	return reqs, nil
}

// mapHeader resolves column positions from the header row.
func mapHeader(header []string) (map[string]int, error) {
	cols := make(map[string]int)

	for i, name := range header {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}

	for _, required := range requiredCols {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("coluna obrigatória ausente: %s", required)
		}
	}

	return cols, nil
}

// col returns the position of a column, -1 when the export lacks it.
func col(cols map[string]int, name string) int {
	if i, ok := cols[name]; ok {
		return i
	}

	return -1
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}

	return strings.TrimSpace(row[idx])
}

func isBlank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}

	return true
}
