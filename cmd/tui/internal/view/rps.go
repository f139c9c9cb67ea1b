package view

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/DMCFaria/nota-fiscal-rj-sub000/internal/emissor"
	"github.com/DMCFaria/nota-fiscal-rj-sub000/internal/history"
	"github.com/DMCFaria/nota-fiscal-rj-sub000/internal/money"
	"github.com/DMCFaria/nota-fiscal-rj-sub000/internal/nota"
	"github.com/DMCFaria/nota-fiscal-rj-sub000/internal/rps"
)

type rpsState int

const (
	rpsStatePath rpsState = iota
	rpsStatePreview
	rpsStateEmitting
	rpsStateResult
)

type RPSModel struct {
	CommonModel
	client   *emissor.Client
	historia *history.Service

	state   rpsState
	form    *huh.Form
	spinner spinner.Model

	path     string
	linhas   []nota.EmissaoRequest
	results  []rpsResult
	emitidas int
	err      error
}

type rpsResult struct {
	linha     nota.EmissaoRequest
	protocolo string
	err       error
}

func NewRPSModel(client *emissor.Client, historia *history.Service) RPSModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	m := RPSModel{
		client:   client,
		historia: historia,
		spinner:  sp,
		path:     "./rps.csv",
	}
	m.form = m.buildPathForm()

	return m
}

func (m RPSModel) Title() string { return "Importar RPS" }

func (m RPSModel) ShortHelp() string {
	switch m.state {
	case rpsStatePreview:
		return "Esc: voltar | Enter: emitir todas"
	case rpsStateEmitting:
		return "Emitindo..."
	case rpsStateResult:
		return "Esc: voltar ao menu"
	}

	return "Esc: voltar | Enter: confirmar"
}

func (m RPSModel) Init() tea.Cmd {
	return m.form.Init()
}

func (m RPSModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch m.state {
	case rpsStatePath:
		return m.updatePath(msg)
	case rpsStatePreview:
		return m.updatePreview(msg)
	case rpsStateEmitting:
		return m.updateEmitting(msg)
	case rpsStateResult:
		return m.updateResult(msg)
	}

	return m, nil
}

func (m RPSModel) updatePath(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		if keyMsg.Type == tea.KeyEsc {
			return m, Back
		}
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	f, err := os.Open(m.path)
	if err != nil {
		m.err = err
		m.state = rpsStateResult

		return m, nil
	}
	defer f.Close()

	linhas, err := rps.Parse(f)
	if err != nil {
		m.err = err
		m.state = rpsStateResult

		return m, nil
	}

	m.linhas = linhas
	m.state = rpsStatePreview

	return m, nil
}

func (m RPSModel) updatePreview(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.Type {
		case tea.KeyEsc:
			m.err = nil
			m.form = m.buildPathForm()
			m.state = rpsStatePath

			return m, m.form.Init()
		case tea.KeyEnter:
			m.state = rpsStateEmitting
			return m, tea.Batch(m.spinner.Tick, m.emitCmd())
		}
	}

	return m, nil
}

func (m RPSModel) updateEmitting(msg tea.Msg) (tea.Model, tea.Cmd) {
	if result, ok := msg.(rpsEmitDoneMsg); ok {
		m.results = result.results
		m.emitidas = result.emitidas
		m.state = rpsStateResult

		return m, nil
	}

	var cmd tea.Cmd
	m.spinner, cmd = m.spinner.Update(msg)

	return m, cmd
}

func (m RPSModel) updateResult(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		if keyMsg.Type == tea.KeyEsc {
			return m, Back
		}
	}

	return m, nil
}

func (m RPSModel) buildPathForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("path").
				Title("Arquivo RPS").
				Description("CSV separado por ponto e vírgula").
				Placeholder("./rps.csv").
				Value(&m.path),
		),
	).WithWidth(50).WithShowHelp(false)
}

func (m RPSModel) View() string {
	switch m.state {
	case rpsStatePath:
		return lipgloss.NewStyle().Padding(1).Render(m.form.View())

	case rpsStatePreview:
		var b strings.Builder

		fmt.Fprintf(&b, "%d linhas para emitir:\n\n", len(m.linhas))

		for _, l := range m.linhas {
			fmt.Fprintf(&b, "  %s parcela %d  %s  %s\n",
				l.Fatura, l.Parcela, money.Format(l.ValorServico), l.Descricao)
		}

		return lipgloss.NewStyle().Padding(1).Render(b.String())

	case rpsStateEmitting:
		return lipgloss.NewStyle().Padding(1).Render(
			fmt.Sprintf("%s Emitindo notas...", m.spinner.View()),
		)

	case rpsStateResult:
		return m.viewResult()
	}

	return ""
}

func (m RPSModel) viewResult() string {
	if m.err != nil {
		return lipgloss.NewStyle().Padding(1).Render(
			lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Render(fmt.Sprintf("Erro: %v", m.err)),
		)
	}

	var b strings.Builder

	fmt.Fprintf(&b, "Emitidas: %d de %d\n\n", m.emitidas, len(m.results))

	for _, r := range m.results {
		if r.err != nil {
			fmt.Fprintf(&b, "  %s parcela %d: erro: %v\n", r.linha.Fatura, r.linha.Parcela, r.err)
			continue
		}

		fmt.Fprintf(&b, "  %s parcela %d: protocolo %s\n", r.linha.Fatura, r.linha.Parcela, r.protocolo)
	}

	return lipgloss.NewStyle().Padding(1).Render(b.String())
}

type rpsEmitDoneMsg struct {
	results  []rpsResult
	emitidas int
}

func (m RPSModel) emitCmd() tea.Cmd {
	linhas := m.linhas

	return func() tea.Msg {
		ctx, cancel := ReqCtx()
		defer cancel()

		results := make([]rpsResult, 0, len(linhas))

		var emitidas int

		for _, l := range linhas {
			protocolo, err := m.client.Emit(ctx, l)
			if err == nil {
				emitidas++
			}

			results = append(results, rpsResult{linha: l, protocolo: protocolo, err: err})
		}

		if m.historia != nil {
			_ = m.historia.Record(ctx, history.AcaoEmissao, "rps",
				fmt.Sprintf("emitidas: %d, falharam: %d", emitidas, len(linhas)-emitidas))
		}

		return rpsEmitDoneMsg{results: results, emitidas: emitidas}
	}
}
