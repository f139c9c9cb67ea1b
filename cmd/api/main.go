package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/DMCFaria/nota-fiscal-rj-sub000/internal/actions"
	"github.com/DMCFaria/nota-fiscal-rj-sub000/internal/config"
	"github.com/DMCFaria/nota-fiscal-rj-sub000/internal/database"
	"github.com/DMCFaria/nota-fiscal-rj-sub000/internal/emissor"
	"github.com/DMCFaria/nota-fiscal-rj-sub000/internal/history"
	historyStore "github.com/DMCFaria/nota-fiscal-rj-sub000/internal/history/store"
	notaHttp "github.com/DMCFaria/nota-fiscal-rj-sub000/internal/http"
	acoesHandler "github.com/DMCFaria/nota-fiscal-rj-sub000/internal/http/acoes"
	historicoHandler "github.com/DMCFaria/nota-fiscal-rj-sub000/internal/http/historico"
	notasHandler "github.com/DMCFaria/nota-fiscal-rj-sub000/internal/http/notas"
	relatorioHandler "github.com/DMCFaria/nota-fiscal-rj-sub000/internal/http/relatorio"
	rpsHandler "github.com/DMCFaria/nota-fiscal-rj-sub000/internal/http/rpsimport"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	var repo history.Repository

	db, err := database.New(cfg.ConnectionString())
	if err != nil {
		slog.Warn("database unavailable, keeping history in memory", "error", err)

		repo = history.NewMemoryRepository()
	} else {
		defer db.Close()

		repo = historyStore.New(db)
	}

	var (
		client         = emissor.NewClient(cfg.Emissor.URL, cfg.Emissor.APIKey, cfg.Emissor.OutputDir)
		historyService = history.NewService(repo)
		coordinator    = actions.NewCoordinator(client, historyService)
	)

	var (
		notasH     = notasHandler.NewHandler(client, historyService)
		acoesH     = acoesHandler.NewHandler(client, coordinator, cfg.Emissor.Sistema)
		rpsH       = rpsHandler.NewHandler(client)
		relatorioH = relatorioHandler.NewHandler(client)
		historicoH = historicoHandler.NewHandler(historyService)
	)

	router := notaHttp.New(notasH, acoesH, rpsH, relatorioH, historicoH)

	port := fmt.Sprintf(":%d", cfg.App.Port)
	slog.Info("starting server", "port", port)

	if err := http.ListenAndServe(port, router); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}
