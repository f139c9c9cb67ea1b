package view

import (
	"fmt"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/DMCFaria/nota-fiscal-rj-sub000/internal/history"
)

const historicoLimit = 100

type HistoricoModel struct {
	CommonModel
	historia *history.Service

	table   table.Model
	eventos []*history.Evento
	loading bool
	status  string
}

func NewHistoricoModel(historia *history.Service) HistoricoModel {
	columns := []table.Column{
		{Title: "Quando", Width: 20},
		{Title: "Ação", Width: 14},
		{Title: "Referência", Width: 20},
		{Title: "Detalhe", Width: 40},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(15),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(false)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	return HistoricoModel{
		historia: historia,
		table:    t,
		loading:  true,
	}
}

func (m HistoricoModel) Title() string { return "Histórico de Ações" }

func (m HistoricoModel) ShortHelp() string {
	return "Esc: voltar | r: atualizar | x: limpar histórico"
}

func (m HistoricoModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m HistoricoModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case historicoLoadMsg:
		m.loading = false

		if msg.err != nil {
			m.status = fmt.Sprintf("Erro: %v", msg.err)
			return m, nil
		}

		m.eventos = msg.eventos
		m.status = ""
		m.refreshTable()

		if len(msg.eventos) == 0 {
			m.status = "Histórico vazio."
		}

		return m, nil

	case historicoClearMsg:
		if msg.err != nil {
			m.status = fmt.Sprintf("Erro: %v", msg.err)
			return m, nil
		}

		m.status = "Histórico limpo."

		return m, m.loadCmd()

	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return m, Back
		case "r":
			m.loading = true
			return m, m.loadCmd()
		case "x":
			return m, m.clearCmd()
		}

	case tea.WindowSizeMsg:
		m.table.SetHeight(msg.Height - 10)
		return m, nil
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m HistoricoModel) View() string {
	if m.loading {
		return lipgloss.NewStyle().Padding(2).Render("Carregando histórico...")
	}

	tableView := lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		Render(m.table.View())

	if m.status != "" {
		tableView = lipgloss.NewStyle().Faint(true).Render(m.status) + "\n" + tableView
	}

	return lipgloss.NewStyle().Padding(1).Render(tableView)
}

func (m *HistoricoModel) refreshTable() {
	rows := make([]table.Row, 0, len(m.eventos))
	for _, e := range m.eventos {
		rows = append(rows, table.Row{
			e.CriadoEm.Format("2006-01-02 15:04:05"),
			e.Acao,
			e.Referencia,
			e.Detalhe,
		})
	}

	m.table.SetRows(rows)
}

type historicoLoadMsg struct {
	eventos []*history.Evento
	err     error
}

func (m HistoricoModel) loadCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := ReqCtx()
		defer cancel()

		eventos, err := m.historia.List(ctx, historicoLimit)

		return historicoLoadMsg{eventos: eventos, err: err}
	}
}

type historicoClearMsg struct {
	err error
}

func (m HistoricoModel) clearCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := ReqCtx()
		defer cancel()

		return historicoClearMsg{err: m.historia.Clear(ctx)}
	}
}
