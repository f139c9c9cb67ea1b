package view

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/DMCFaria/nota-fiscal-rj-sub000/internal/emissor"
	"github.com/DMCFaria/nota-fiscal-rj-sub000/internal/report"
)

type relatorioState int

const (
	relatorioStateInput relatorioState = iota
	relatorioStateWorking
	relatorioStateResult
)

type RelatorioModel struct {
	CommonModel
	client *emissor.Client
	outDir string

	state   relatorioState
	input   textinput.Model
	spinner spinner.Model

	path string
	rows int
	err  error
}

func NewRelatorioModel(client *emissor.Client, outDir string) RelatorioModel {
	ti := textinput.New()
	ti.Placeholder = "F-2026-001"
	ti.Width = 40
	ti.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	return RelatorioModel{
		client:  client,
		outDir:  outDir,
		input:   ti,
		spinner: sp,
	}
}

func (m RelatorioModel) Title() string { return "Relatório de Rejeitadas" }

func (m RelatorioModel) ShortHelp() string {
	switch m.state {
	case relatorioStateWorking:
		return "Gerando..."
	case relatorioStateResult:
		return "Esc: voltar ao menu"
	}

	return "Esc: voltar | Enter: gerar"
}

func (m RelatorioModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m RelatorioModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch m.state {
	case relatorioStateInput:
		return m.updateInput(msg)
	case relatorioStateWorking:
		if done, ok := msg.(relatorioDoneMsg); ok {
			m.state = relatorioStateResult
			m.path = done.path
			m.rows = done.rows
			m.err = done.err

			return m, nil
		}

		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)

		return m, cmd
	case relatorioStateResult:
		if keyMsg, ok := msg.(tea.KeyMsg); ok {
			if keyMsg.Type == tea.KeyEsc {
				return m, Back
			}
		}

		return m, nil
	}

	return m, nil
}

func (m RelatorioModel) updateInput(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.Type {
		case tea.KeyEsc:
			return m, Back
		case tea.KeyEnter:
			referencia := strings.TrimSpace(m.input.Value())
			if referencia == "" {
				return m, nil
			}

			m.state = relatorioStateWorking

			return m, tea.Batch(m.spinner.Tick, m.generateCmd(referencia))
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)

	return m, cmd
}

func (m RelatorioModel) View() string {
	switch m.state {
	case relatorioStateInput:
		return lipgloss.NewStyle().Padding(1).Render(
			fmt.Sprintf("Referência da fatura:\n\n%s", m.input.View()),
		)

	case relatorioStateWorking:
		return lipgloss.NewStyle().Padding(1).Render(
			fmt.Sprintf("%s Gerando planilha de rejeitadas...", m.spinner.View()),
		)

	case relatorioStateResult:
		if m.err != nil {
			return lipgloss.NewStyle().Padding(1).Render(
				lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Render(fmt.Sprintf("Erro: %v", m.err)),
			)
		}

		return lipgloss.NewStyle().Padding(1).Render(
			fmt.Sprintf("Planilha gerada: %s (%d notas rejeitadas)", m.path, m.rows),
		)
	}

	return ""
}

type relatorioDoneMsg struct {
	path string
	rows int
	err  error
}

func (m RelatorioModel) generateCmd(referencia string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := ReqCtx()
		defer cancel()

		notas, err := m.client.SearchFatura(ctx, referencia)
		if err != nil {
			return relatorioDoneMsg{err: err}
		}

		rows := report.Rejeitadas(notas)

		if err := os.MkdirAll(m.outDir, 0o755); err != nil {
			return relatorioDoneMsg{err: err}
		}

		path := filepath.Join(m.outDir, report.Filename("fatura", time.Now()))

		f, err := os.Create(path)
		if err != nil {
			return relatorioDoneMsg{err: err}
		}
		defer f.Close()

		if err := report.WriteXLSX(f, rows); err != nil {
			return relatorioDoneMsg{err: err}
		}

		return relatorioDoneMsg{path: path, rows: len(rows)}
	}
}
