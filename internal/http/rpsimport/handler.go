package rpsimport

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/DMCFaria/nota-fiscal-rj-sub000/internal/fatura"
	"github.com/DMCFaria/nota-fiscal-rj-sub000/internal/money"
	"github.com/DMCFaria/nota-fiscal-rj-sub000/internal/nota"
	"github.com/DMCFaria/nota-fiscal-rj-sub000/internal/rps"
)

type Emitter interface {
	Emit(ctx context.Context, req nota.EmissaoRequest) (string, error)
}

type Handler struct {
	emitter Emitter
}

func NewHandler(emitter Emitter) *Handler {
	return &Handler{emitter: emitter}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.importRPS)
}

type linhaResponse struct {
	Fatura         string `json:"fatura"`
	Parcela        int    `json:"parcela,omitempty"`
	ValorServico   string `json:"valor_servico"`
	ValorFormatado string `json:"valor_formatado"`
	Descricao      string `json:"descricao,omitempty"`
	Tomador        string `json:"tomador,omitempty"`
	Protocolo      string `json:"protocolo,omitempty"`
	Erro           string `json:"erro,omitempty"`
}

type importResponse struct {
	Total     int             `json:"total"`
	Emitidas  int             `json:"emitidas"`
	Falharam  int             `json:"falharam"`
	Linhas    []linhaResponse `json:"linhas"`
	Submetido bool            `json:"submetido"`
}

// importRPS parses the uploaded RPS export and previews the computed line
// items. With ?emitir=true each line is also submitted to the backend;
// failures are per-line, one bad line never stops the rest.
func (h *Handler) importRPS(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(10 << 20); err != nil {
		http.Error(w, "failed to parse form: "+err.Error(), http.StatusBadRequest)
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "file field is required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	reqs, err := rps.Parse(file)
	if err != nil {
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}

	if raw := r.FormValue("parcelas"); raw != "" {
		parcelas, err := strconv.Atoi(raw)
		if err != nil || parcelas < 1 {
			http.Error(w, "parcelas inválido", http.StatusUnprocessableEntity)
			return
		}

		reqs = splitLinhas(reqs, parcelas)
	}

	emitir := r.URL.Query().Get("emitir") == "true"

	resp := importResponse{
		Total:     len(reqs),
		Linhas:    make([]linhaResponse, 0, len(reqs)),
		Submetido: emitir,
	}

	for _, req := range reqs {
		linha := linhaResponse{
			Fatura:         req.Fatura,
			Parcela:        req.Parcela,
			ValorServico:   req.ValorServico.String(),
			ValorFormatado: money.Format(req.ValorServico),
			Descricao:      req.Descricao,
		}

		if req.Tomador != nil {
			linha.Tomador = req.Tomador.RazaoSocial
		}

		if emitir {
			protocolo, err := h.emitter.Emit(r.Context(), req)
			if err != nil {
				linha.Erro = err.Error()
				resp.Falharam++
			} else {
				linha.Protocolo = protocolo
				resp.Emitidas++
			}
		}

		resp.Linhas = append(resp.Linhas, linha)
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

// splitLinhas expands each line without an explicit installment into n
// cents-accurate installments whose values sum to the line's total. Lines
// already carrying a parcela are passed through untouched.
func splitLinhas(reqs []nota.EmissaoRequest, n int) []nota.EmissaoRequest {
	if n <= 1 {
		return reqs
	}

	out := make([]nota.EmissaoRequest, 0, len(reqs)*n)

	for _, req := range reqs {
		if req.Parcela != 0 {
			out = append(out, req)
			continue
		}

		for i, valor := range fatura.SplitParcelas(req.ValorServico, n) {
			linha := req
			linha.Parcela = i + 1
			linha.ValorServico = valor

			out = append(out, linha)
		}
	}

	return out
}
