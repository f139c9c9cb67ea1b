package main

import (
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/joho/godotenv"

	"github.com/DMCFaria/nota-fiscal-rj-sub000/cmd/tui/internal/view"
	"github.com/DMCFaria/nota-fiscal-rj-sub000/internal/actions"
	"github.com/DMCFaria/nota-fiscal-rj-sub000/internal/config"
	"github.com/DMCFaria/nota-fiscal-rj-sub000/internal/database"
	"github.com/DMCFaria/nota-fiscal-rj-sub000/internal/emissor"
	"github.com/DMCFaria/nota-fiscal-rj-sub000/internal/history"
	historyStore "github.com/DMCFaria/nota-fiscal-rj-sub000/internal/history/store"
)

type model struct {
	client         *emissor.Client
	coordinator    *actions.Coordinator
	historyService *history.Service
	sistema        string
	outputDir      string

	currentView View

	notasView     view.NotasModel
	rpsView       view.RPSModel
	relatorioView view.RelatorioModel
	historicoView view.HistoricoModel
}

type View int

const (
	ViewMenu      View = 0
	ViewNotas     View = 1
	ViewRPS       View = 2
	ViewRelatorio View = 3
	ViewHistorico View = 4
)

func initialModel() model {
	_ = godotenv.Load()

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
		repo = historyStore.New(db)
	}

	client := emissor.NewClient(cfg.Emissor.URL, cfg.Emissor.APIKey, cfg.Emissor.OutputDir)
	historySvc := history.NewService(repo)
	coordinator := actions.NewCoordinator(client, historySvc)

	return model{
		client:         client,
		coordinator:    coordinator,
		historyService: historySvc,
		sistema:        cfg.Emissor.Sistema,
		outputDir:      cfg.Emissor.OutputDir,
		currentView:    ViewMenu,
		notasView:      view.NewNotasModel(client, coordinator, cfg.Emissor.Sistema),
		rpsView:        view.NewRPSModel(client, historySvc),
		relatorioView:  view.NewRelatorioModel(client, cfg.Emissor.OutputDir),
		historicoView:  view.NewHistoricoModel(historySvc),
	}
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.currentView == ViewMenu {
			switch msg.String() {
			case "ctrl+c", "q":
				return m, tea.Quit
			case "1":
				m.currentView = ViewNotas
				m.notasView = view.NewNotasModel(m.client, m.coordinator, m.sistema)

				return m, m.notasView.Init()
			case "2":
				m.currentView = ViewRPS
				m.rpsView = view.NewRPSModel(m.client, m.historyService)

				return m, m.rpsView.Init()
			case "3":
				m.currentView = ViewRelatorio
				m.relatorioView = view.NewRelatorioModel(m.client, m.outputDir)

				return m, m.relatorioView.Init()
			case "4":
				m.currentView = ViewHistorico
				m.historicoView = view.NewHistoricoModel(m.historyService)

				return m, m.historicoView.Init()
			}
		}
	case view.BackMsg:
		m.currentView = ViewMenu
		return m, nil
	}

	switch m.currentView {
	case ViewNotas:
		var newModel tea.Model
		newModel, cmd = m.notasView.Update(msg)
		m.notasView = newModel.(view.NotasModel)
	case ViewRPS:
		var newModel tea.Model
		newModel, cmd = m.rpsView.Update(msg)
		m.rpsView = newModel.(view.RPSModel)
	case ViewRelatorio:
		var newModel tea.Model
		newModel, cmd = m.relatorioView.Update(msg)
		m.relatorioView = newModel.(view.RelatorioModel)
	case ViewHistorico:
		var newModel tea.Model
		newModel, cmd = m.historicoView.Update(msg)
		m.historicoView = newModel.(view.HistoricoModel)
	}

	return m, cmd
}

func (m model) View() string {
	switch m.currentView {
	case ViewMenu:
		return lipgloss.NewStyle().Padding(2).Render(
			"Nota Fiscal RJ\n\n" +
				"1. Consultar Notas\n" +
				"2. Importar RPS\n" +
				"3. Relatório de Rejeitadas\n" +
				"4. Histórico de Ações\n\n" +
				"q. Sair",
		)
	case ViewNotas:
		return m.notasView.View()
	case ViewRPS:
		return m.rpsView.View()
	case ViewRelatorio:
		return m.relatorioView.View()
	case ViewHistorico:
		return m.historicoView.View()
	}

	return "Unknown View"
}

func main() {
	p := tea.NewProgram(initialModel())
	if _, err := p.Run(); err != nil {
		slog.Error("failed to run TUI", "error", err)
		os.Exit(1)
	}
}
