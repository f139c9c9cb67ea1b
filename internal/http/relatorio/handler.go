package relatorio

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/DMCFaria/nota-fiscal-rj-sub000/internal/emissor"
	"github.com/DMCFaria/nota-fiscal-rj-sub000/internal/nota"
	"github.com/DMCFaria/nota-fiscal-rj-sub000/internal/report"
)

type Searcher interface {
	SearchFatura(ctx context.Context, referencia string) ([]*nota.Nota, error)
	SearchNota(ctx context.Context, id string) (*nota.Nota, error)
}

type Handler struct {
	searcher Searcher
}

func NewHandler(searcher Searcher) *Handler {
	return &Handler{searcher: searcher}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/rejeitadas", h.rejeitadas)
}

// rejeitadas streams the rejected-notes spreadsheet for a batch
// (?fatura=F-1) or a single note (?nota=PROTO-1). An empty spreadsheet is a
// valid answer; "nothing rejected" is the caller's notice to give.
func (h *Handler) rejeitadas(w http.ResponseWriter, r *http.Request) {
	var (
		notas []*nota.Nota
		mode  string
		err   error
	)

	switch {
	case r.URL.Query().Get("fatura") != "":
		mode = "fatura"
		notas, err = h.searcher.SearchFatura(r.Context(), r.URL.Query().Get("fatura"))
	case r.URL.Query().Get("nota") != "":
		mode = "nota"

		var n *nota.Nota

		n, err = h.searcher.SearchNota(r.Context(), r.URL.Query().Get("nota"))
		if n != nil {
			notas = []*nota.Nota{n}
		}
	default:
		http.Error(w, "informe fatura ou nota", http.StatusUnprocessableEntity)
		return
	}

	if err != nil {
		if errors.Is(err, emissor.ErrNotFound) {
			http.Error(w, "não encontrada", http.StatusNotFound)
			return
		}

		http.Error(w, err.Error(), http.StatusBadGateway)

		return
	}

	rows := report.Rejeitadas(notas)

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", report.Filename(mode, time.Now())))

	if err := report.WriteXLSX(w, rows); err != nil {
		slog.Error("failed to write spreadsheet", "error", err)
	}
}
