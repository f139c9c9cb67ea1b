package view

import (
	"context"
	"time"

	"github.com/DMCFaria/nota-fiscal-rj-sub000/internal/money"
	"github.com/DMCFaria/nota-fiscal-rj-sub000/internal/nota"
)

const remoteTimeout = 2 * time.Minute

// FormatValor renders a service value in pt-BR currency notation.
func FormatValor(n *nota.Nota) string {
	return money.Format(n.ValorServico)
}

// DataEmissao returns the issuance date reported by the backend, or a
// placeholder when the backend sent none.
func DataEmissao(n *nota.Nota) string {
	if d := n.Datas["emissao"]; d != "" {
		return d
	}

	return nota.Placeholder
}

// ReqCtx returns a context with a standard timeout for calls to the issuance
// backend.
func ReqCtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), remoteTimeout)
}
