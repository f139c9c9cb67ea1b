package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/DMCFaria/nota-fiscal-rj-sub000/internal/http/acoes"
	"github.com/DMCFaria/nota-fiscal-rj-sub000/internal/http/historico"
	"github.com/DMCFaria/nota-fiscal-rj-sub000/internal/http/notas"
	"github.com/DMCFaria/nota-fiscal-rj-sub000/internal/http/relatorio"
	"github.com/DMCFaria/nota-fiscal-rj-sub000/internal/http/rpsimport"
)

func New(
	notasV1 *notas.Handler,
	acoesV1 *acoes.Handler,
	rpsV1 *rpsimport.Handler,
	relatorioV1 *relatorio.Handler,
	historicoV1 *historico.Handler,
) http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	router.Route("/api/v1", func(r chi.Router) {
		r.Route("/notas", func(r chi.Router) {
			notasV1.Routes(r)
		})

		r.Route("/acoes", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			acoesV1.Routes(r)
		})

		r.Route("/rps", rpsV1.Routes)

		r.Route("/relatorios", func(r chi.Router) {
			relatorioV1.Routes(r)
		})

		r.Route("/historico", func(r chi.Router) {
			historicoV1.Routes(r)
		})
	})

	return router
}
