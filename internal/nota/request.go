package nota

import (
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

// Tipo values accepted by the issuance backend's download and cancel
// endpoints.
const (
	TipoIndividual = "individual"
	TipoFatura     = "fatura"
)

// MotivoMinimo is the shortest cancellation justification the backend accepts.
const MotivoMinimo = 5

// DownloadRequest asks the backend for one note's final PDF.
type DownloadRequest struct {
	Tipo         string   `json:"tipo"`
	IDIntegracao string   `json:"idIntegracao"`
	Fatura       string   `json:"fatura,omitempty"`
	Emitente     string   `json:"emitente,omitempty"`
	NFSEmitidas  []string `json:"nfs_emitidas,omitempty"`
}

// NewDownloadRequest builds the download payload for a note.
func NewDownloadRequest(n *Nota) DownloadRequest {
	req := DownloadRequest{
		Tipo:         TipoIndividual,
		IDIntegracao: n.IntegrationID(),
		Fatura:       n.Fatura,
	}

	if n.Prestador != nil {
		req.Emitente = n.Prestador.Documento()
	}

	if n.NumeroNFSe != "" {
		req.NFSEmitidas = []string{n.NumeroNFSe}
	}

	return req
}

// CancelRequest asks the backend to void a note. Built transiently per user
// confirmation, never stored.
type CancelRequest struct {
	Tipo         string   `json:"tipo"`
	IDIntegracao string   `json:"idIntegracao,omitempty"`
	Fatura       string   `json:"fatura,omitempty"`
	Emitente     string   `json:"emitente,omitempty"`
	NFSEmitidas  []string `json:"nfs_emitidas,omitempty"`
	Sistema      string   `json:"sistema"`
	Motivo       string   `json:"motivo"`
}

// NewCancelRequest builds the cancellation payload for a single note.
func NewCancelRequest(n *Nota, sistema, motivo string) CancelRequest {
	req := CancelRequest{
		Tipo:         TipoIndividual,
		IDIntegracao: n.IntegrationID(),
		Fatura:       n.Fatura,
		Sistema:      sistema,
		Motivo:       strings.TrimSpace(motivo),
	}

	if n.Prestador != nil {
		req.Emitente = n.Prestador.Documento()
	}

	if n.NumeroNFSe != "" {
		req.NFSEmitidas = []string{n.NumeroNFSe}
	}

	return req
}

// EmissaoRequest submits one note (or one installment of a batch) for
// issuance.
type EmissaoRequest struct {
	Fatura       string          `json:"fatura"`
	Parcela      int             `json:"parcela,omitempty"`
	ValorServico decimal.Decimal `json:"valor_servico"`
	Descricao    string          `json:"descricao,omitempty"`
	Tomador      *Parte          `json:"tomador,omitempty"`
}

// MotivoValido reports whether a cancellation justification is long enough
// to submit.
func MotivoValido(motivo string) bool {
	return utf8.RuneCountInString(strings.TrimSpace(motivo)) >= MotivoMinimo
}
