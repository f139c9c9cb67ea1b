package acoes

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/DMCFaria/nota-fiscal-rj-sub000/internal/actions"
	"github.com/DMCFaria/nota-fiscal-rj-sub000/internal/emissor"
	"github.com/DMCFaria/nota-fiscal-rj-sub000/internal/fatura"
	"github.com/DMCFaria/nota-fiscal-rj-sub000/internal/nota"
)

type Searcher interface {
	SearchFatura(ctx context.Context, referencia string) ([]*nota.Nota, error)
	SearchNota(ctx context.Context, id string) (*nota.Nota, error)
}

type Handler struct {
	searcher Searcher
	coord    *actions.Coordinator
	sistema  string
}

func NewHandler(searcher Searcher, coord *actions.Coordinator, sistema string) *Handler {
	return &Handler{searcher: searcher, coord: coord, sistema: sistema}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/download", h.downloadAll)
	r.Post("/download/{id}", h.downloadOne)
	r.Post("/cancelar", h.cancel)
}

type downloadAllRequest struct {
	Fatura string `json:"fatura"`
}

func (h *Handler) downloadAll(w http.ResponseWriter, r *http.Request) {
	var req downloadAllRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if req.Fatura == "" {
		http.Error(w, "fatura é obrigatória", http.StatusUnprocessableEntity)
		return
	}

	notas, err := h.searcher.SearchFatura(r.Context(), req.Fatura)
	if err != nil {
		writeRemoteError(w, err)
		return
	}

	outcome, err := h.coord.DownloadAll(r.Context(), fatura.Fatura{Numero: req.Fatura, Notas: notas})
	if err != nil {
		writeActionError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(outcome); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) downloadOne(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	n, err := h.searcher.SearchNota(r.Context(), id)
	if err != nil {
		writeRemoteError(w, err)
		return
	}

	path, err := h.coord.DownloadOne(r.Context(), n)
	if err != nil {
		writeActionError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(map[string]string{"arquivo": path}); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

type cancelRequest struct {
	Tipo    string `json:"tipo"` // "individual" or "fatura"
	ID      string `json:"id,omitempty"`
	Fatura  string `json:"fatura,omitempty"`
	Sistema string `json:"sistema,omitempty"`
	Motivo  string `json:"motivo"`
}

type cancelResponse struct {
	Canceladas int `json:"canceladas"`
}

func (h *Handler) cancel(w http.ResponseWriter, r *http.Request) {
	var req cancelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	sistema := req.Sistema
	if sistema == "" {
		sistema = h.sistema
	}

	switch req.Tipo {
	case nota.TipoIndividual:
		n, err := h.searcher.SearchNota(r.Context(), req.ID)
		if err != nil {
			writeRemoteError(w, err)
			return
		}

		if err := h.coord.CancelOne(r.Context(), n, sistema, req.Motivo); err != nil {
			writeActionError(w, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")

		if err := json.NewEncoder(w).Encode(cancelResponse{Canceladas: 1}); err != nil {
			slog.Error("failed to encode response", "error", err)
		}

	case nota.TipoFatura:
		notas, err := h.searcher.SearchFatura(r.Context(), req.Fatura)
		if err != nil {
			writeRemoteError(w, err)
			return
		}

		f := fatura.Fatura{Numero: req.Fatura, Notas: notas}

		canceladas, err := h.coord.CancelFatura(r.Context(), f, sistema, req.Motivo)
		if err != nil {
			writeActionError(w, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")

		if err := json.NewEncoder(w).Encode(cancelResponse{Canceladas: canceladas}); err != nil {
			slog.Error("failed to encode response", "error", err)
		}

	default:
		http.Error(w, "tipo deve ser individual ou fatura", http.StatusUnprocessableEntity)
	}
}

func writeRemoteError(w http.ResponseWriter, err error) {
	if errors.Is(err, emissor.ErrNotFound) {
		http.Error(w, "não encontrada", http.StatusNotFound)
		return
	}

	http.Error(w, err.Error(), http.StatusBadGateway)
}

// writeActionError separates what the user can fix (validation, 422), what
// they must wait for (re-entrancy, 409) and what the backend broke (502).
func writeActionError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, actions.ErrSemIntegracao),
		errors.Is(err, actions.ErrMotivoCurto),
		errors.Is(err, actions.ErrSemSistema):
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
	case errors.Is(err, actions.ErrEmAndamento):
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		http.Error(w, err.Error(), http.StatusBadGateway)
	}
}
