// Package fatura groups notes under their invoicing reference and derives
// batch-level figures from per-note classification.
package fatura

import (
	"github.com/shopspring/decimal"

	"github.com/DMCFaria/nota-fiscal-rj-sub000/internal/nota"
)

// Fatura is a batch of notes sharing one invoicing reference. The note order
// is whatever the backend returned; it carries no business meaning.
type Fatura struct {
	Numero string
	Notas  []*nota.Nota
}

// Summary holds the batch-level counts the front-end renders next to the
// reference. It is recomputed from fresh notes on every call, never cached:
// records are refetched after any mutation, not patched in place.
type Summary struct {
	Total       int
	Baixaveis   int
	Cancelaveis int
	Rejeitadas  int
}

// Summarize classifies every note and tallies the counts.
func Summarize(notas []*nota.Nota) Summary {
	s := Summary{Total: len(notas)}

	for _, n := range notas {
		if nota.Baixavel(n) {
			s.Baixaveis++
		}

		if nota.Cancelavel(n) {
			s.Cancelaveis++
		}

		if nota.Rejeitada(n) {
			s.Rejeitadas++
		}
	}

	return s
}

// Agrupar splits a flat note list into faturas keyed by reference, keeping
// the server's note order within each. Notes without a reference group under
// the empty key.
func Agrupar(notas []*nota.Nota) []Fatura {
	index := make(map[string]int)

	var faturas []Fatura

	for _, n := range notas {
		i, ok := index[n.Fatura]
		if !ok {
			i = len(faturas)
			index[n.Fatura] = i

			faturas = append(faturas, Fatura{Numero: n.Fatura})
		}

		faturas[i].Notas = append(faturas[i].Notas, n)
	}

	return faturas
}

// Summary of the batch itself.
func (f *Fatura) Summary() Summary {
	return Summarize(f.Notas)
}

// SplitParcelas previews the installment values for a service total: n
// cents-accurate parcelas whose sum equals the total exactly. Remainder
// cents land on the first installment, matching how the issuance backend
// rounds.
func SplitParcelas(total decimal.Decimal, n int) []decimal.Decimal {
	if n <= 0 {
		return nil
	}

	total = total.Round(2)
	base := total.Div(decimal.NewFromInt(int64(n))).RoundDown(2)
	resto := total.Sub(base.Mul(decimal.NewFromInt(int64(n))))

	parcelas := make([]decimal.Decimal, n)
	for i := range parcelas {
		parcelas[i] = base
	}

	parcelas[0] = parcelas[0].Add(resto)

	return parcelas
}
