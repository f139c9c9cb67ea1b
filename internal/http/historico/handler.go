package historico

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/DMCFaria/nota-fiscal-rj-sub000/internal/history"
)

const defaultLimit = 50

type Handler struct {
	historia *history.Service
}

func NewHandler(historia *history.Service) *Handler {
	return &Handler{historia: historia}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.list)
	r.Delete("/", h.clear)
}

type eventoResponse struct {
	ID         string    `json:"id"`
	Acao       string    `json:"acao"`
	Referencia string    `json:"referencia"`
	Detalhe    string    `json:"detalhe,omitempty"`
	CriadoEm   time.Time `json:"criado_em"`
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	limit := defaultLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			http.Error(w, "limit inválido", http.StatusUnprocessableEntity)
			return
		}

		limit = n
	}

	eventos, err := h.historia.List(r.Context(), limit)
	if err != nil {
		slog.Error("failed to list history", "error", err)
		http.Error(w, "erro ao consultar histórico", http.StatusInternalServerError)

		return
	}

	resp := make([]eventoResponse, 0, len(eventos))
	for _, e := range eventos {
		resp = append(resp, eventoResponse{
			ID:         e.ID.String(),
			Acao:       e.Acao,
			Referencia: e.Referencia,
			Detalhe:    e.Detalhe,
			CriadoEm:   e.CriadoEm,
		})
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("failed to encode history", "error", err)
	}
}

func (h *Handler) clear(w http.ResponseWriter, r *http.Request) {
	if err := h.historia.Clear(r.Context()); err != nil {
		slog.Error("failed to clear history", "error", err)
		http.Error(w, "erro ao limpar histórico", http.StatusInternalServerError)

		return
	}

	w.WriteHeader(http.StatusNoContent)
}
