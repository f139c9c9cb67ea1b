package notas

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/DMCFaria/nota-fiscal-rj-sub000/internal/emissor"
	"github.com/DMCFaria/nota-fiscal-rj-sub000/internal/fatura"
	"github.com/DMCFaria/nota-fiscal-rj-sub000/internal/history"
	"github.com/DMCFaria/nota-fiscal-rj-sub000/internal/money"
	"github.com/DMCFaria/nota-fiscal-rj-sub000/internal/nota"
)

type Searcher interface {
	SearchFatura(ctx context.Context, referencia string) ([]*nota.Nota, error)
	SearchNota(ctx context.Context, id string) (*nota.Nota, error)
}

type Handler struct {
	searcher Searcher
	historia *history.Service
}

func NewHandler(searcher Searcher, historia *history.Service) *Handler {
	return &Handler{searcher: searcher, historia: historia}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/fatura/{referencia}", h.searchFatura)
	r.Get("/{id}", h.searchNota)
}

// notaResponse is one note plus its derived flags, ready for the front-end
// to render badges and enable buttons from.
type notaResponse struct {
	*nota.Nota

	ValorFormatado string `json:"valor_formatado"`
	Baixavel       bool   `json:"baixavel"`
	Cancelavel     bool   `json:"cancelavel"`
	Rejeitada      bool   `json:"rejeitada"`
	MotivoRejeicao string `json:"motivo_rejeicao_derivado,omitempty"`
}

type resumoResponse struct {
	Total       int `json:"total"`
	Baixaveis   int `json:"baixaveis"`
	Cancelaveis int `json:"cancelaveis"`
	Rejeitadas  int `json:"rejeitadas"`
}

type faturaResponse struct {
	Referencia string         `json:"referencia"`
	Resumo     resumoResponse `json:"resumo"`
	Notas      []notaResponse `json:"notas"`
}

func toNotaResponse(n *nota.Nota) notaResponse {
	resp := notaResponse{
		Nota:           n,
		ValorFormatado: money.Format(n.ValorServico),
		Baixavel:       nota.Baixavel(n),
		Cancelavel:     nota.Cancelavel(n),
		Rejeitada:      nota.Rejeitada(n),
	}

	if resp.Rejeitada {
		resp.MotivoRejeicao = nota.MotivoRejeicao(n)
	}

	return resp
}

func toFaturaResponse(referencia string, notas []*nota.Nota) faturaResponse {
	resumo := fatura.Summarize(notas)

	resp := faturaResponse{
		Referencia: referencia,
		Resumo: resumoResponse{
			Total:       resumo.Total,
			Baixaveis:   resumo.Baixaveis,
			Cancelaveis: resumo.Cancelaveis,
			Rejeitadas:  resumo.Rejeitadas,
		},
		Notas: make([]notaResponse, 0, len(notas)),
	}

	for _, n := range notas {
		resp.Notas = append(resp.Notas, toNotaResponse(n))
	}

	return resp
}

func (h *Handler) searchFatura(w http.ResponseWriter, r *http.Request) {
	referencia := chi.URLParam(r, "referencia")

	notas, err := h.searcher.SearchFatura(r.Context(), referencia)
	if err != nil {
		if errors.Is(err, emissor.ErrNotFound) {
			http.Error(w, "fatura não encontrada", http.StatusNotFound)
			return
		}

		http.Error(w, err.Error(), http.StatusBadGateway)

		return
	}

	if h.historia != nil {
		if err := h.historia.Record(r.Context(), history.AcaoBusca, referencia, ""); err != nil {
			slog.Warn("falha ao gravar histórico", "error", err)
		}
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(toFaturaResponse(referencia, notas)); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) searchNota(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	n, err := h.searcher.SearchNota(r.Context(), id)
	if err != nil {
		if errors.Is(err, emissor.ErrNotFound) {
			http.Error(w, "nota não encontrada", http.StatusNotFound)
			return
		}

		http.Error(w, err.Error(), http.StatusBadGateway)

		return
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(toNotaResponse(n)); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}
