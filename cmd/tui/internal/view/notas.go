package view

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/DMCFaria/nota-fiscal-rj-sub000/internal/actions"
	"github.com/DMCFaria/nota-fiscal-rj-sub000/internal/emissor"
	"github.com/DMCFaria/nota-fiscal-rj-sub000/internal/fatura"
	"github.com/DMCFaria/nota-fiscal-rj-sub000/internal/nota"
)

type notasState int

const (
	notasStateSearch notasState = iota
	notasStateList
	notasStateCancel
	notasStateDetail
	notasStateWorking
)

type NotasModel struct {
	CommonModel
	client      *emissor.Client
	coordinator *actions.Coordinator
	sistema     string

	state   notasState
	search  textinput.Model
	table   table.Model
	spinner spinner.Model
	form    *huh.Form

	batch   fatura.Fatura
	working string
	status  string

	// Cancel form bindings
	formMotivo string
	cancelAll  bool
}

func NewNotasModel(client *emissor.Client, coord *actions.Coordinator, sistema string) NotasModel {
	ti := textinput.New()
	ti.Placeholder = "F-2026-001 (ou id:PROTOCOLO para uma nota)"
	ti.Width = 50
	ti.Focus()

	columns := []table.Column{
		{Title: "NFS-e", Width: 12},
		{Title: "Parcela", Width: 8},
		{Title: "Valor", Width: 14},
		{Title: "Status", Width: 14},
		{Title: "Prefeitura", Width: 14},
		{Title: "Situação", Width: 22},
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

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	return NotasModel{
		client:      client,
		coordinator: coord,
		sistema:     sistema,
		search:      ti,
		table:       t,
		spinner:     sp,
	}
}

func (m NotasModel) Title() string { return "Consultar Notas" }

func (m NotasModel) ShortHelp() string {
	switch m.state {
	case notasStateSearch:
		return "Esc: voltar | Enter: buscar"
	case notasStateList:
		return "Esc: voltar | Enter: detalhes | d: baixar | b: baixar todas | c: cancelar | C: cancelar fatura | r: atualizar"
	case notasStateCancel:
		return "Esc: abortar | Enter/Tab: navegar formulário"
	case notasStateDetail:
		return "Esc: voltar à lista"
	case notasStateWorking:
		return "Aguarde..."
	}

	return ""
}

func (m NotasModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m NotasModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case searchDoneMsg:
		if msg.err != nil {
			m.state = notasStateSearch
			m.status = fmt.Sprintf("Erro: %v", msg.err)

			return m, nil
		}

		m.batch = fatura.Fatura{Numero: msg.referencia, Notas: msg.notas}
		m.state = notasStateList
		m.status = ""
		m.refreshTable()

		if len(msg.notas) == 0 {
			m.status = "Nenhuma nota encontrada para esta referência."
		}

		return m, nil

	case actionDoneMsg:
		m.state = notasStateList

		if msg.err != nil {
			m.status = fmt.Sprintf("Erro: %v", msg.err)
			if msg.refetch {
				return m, m.searchCmd(m.batch.Numero)
			}

			return m, nil
		}

		m.status = msg.status
		if msg.refetch {
			// Cancellation state lives on the backend; refetch, never patch.
			return m, m.searchCmd(m.batch.Numero)
		}

		return m, nil

	case tea.WindowSizeMsg:
		m.table.SetHeight(msg.Height - 10)
		return m, nil
	}

	switch m.state {
	case notasStateSearch:
		return m.updateSearch(msg)
	case notasStateList:
		return m.updateList(msg)
	case notasStateCancel:
		return m.updateCancel(msg)
	case notasStateDetail:
		return m.updateDetail(msg)
	case notasStateWorking:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)

		return m, cmd
	}

	return m, nil
}

func (m NotasModel) updateSearch(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.Type {
		case tea.KeyEsc:
			return m, Back
		case tea.KeyEnter:
			referencia := strings.TrimSpace(m.search.Value())
			if referencia == "" {
				return m, nil
			}

			m.state = notasStateWorking
			m.working = "Buscando notas..."

			return m, tea.Batch(m.spinner.Tick, m.searchCmd(referencia))
		}
	}

	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)

	return m, cmd
}

func (m NotasModel) updateList(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "esc":
			m.state = notasStateSearch
			m.search.Focus()

			return m, textinput.Blink
		case "enter":
			if m.selected() != nil {
				m.state = notasStateDetail
			}

			return m, nil
		case "r":
			m.state = notasStateWorking
			m.working = "Atualizando..."

			return m, tea.Batch(m.spinner.Tick, m.searchCmd(m.batch.Numero))
		case "d":
			n := m.selected()
			if n == nil {
				return m, nil
			}

			if !nota.Baixavel(n) {
				m.status = "Nota selecionada não está disponível para download."
				return m, nil
			}

			m.state = notasStateWorking
			m.working = "Baixando PDF..."

			return m, tea.Batch(m.spinner.Tick, m.downloadOneCmd(n))
		case "b":
			m.state = notasStateWorking
			m.working = "Baixando todas as notas disponíveis..."

			return m, tea.Batch(m.spinner.Tick, m.downloadAllCmd())
		case "c":
			n := m.selected()
			if n == nil {
				return m, nil
			}

			if !nota.Cancelavel(n) {
				m.status = "Nota selecionada não pode ser cancelada."
				return m, nil
			}

			return m.startCancel(false)
		case "C":
			if m.batch.Summary().Cancelaveis == 0 {
				m.status = "Nenhuma nota cancelável nesta fatura."
				return m, nil
			}

			return m.startCancel(true)
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m NotasModel) startCancel(all bool) (tea.Model, tea.Cmd) {
	m.cancelAll = all
	m.formMotivo = ""

	title := "Cancelar nota"
	if all {
		title = fmt.Sprintf("Cancelar fatura %s (%d notas canceláveis)",
			m.batch.Numero, m.batch.Summary().Cancelaveis)
	}

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("motivo").
				Title(title).
				Description("Motivo do cancelamento").
				Value(&m.formMotivo).
				Validate(func(s string) error {
					if !nota.MotivoValido(s) {
						return actions.ErrMotivoCurto
					}
					return nil
				}),
		),
	).WithWidth(60).WithShowHelp(false)

	m.state = notasStateCancel
	m.table.Blur()

	return m, m.form.Init()
}

func (m NotasModel) updateCancel(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		if keyMsg.Type == tea.KeyEsc {
			m.state = notasStateList
			m.form = nil
			m.table.Focus()

			return m, nil
		}
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	m.form = nil
	m.table.Focus()
	m.state = notasStateWorking
	m.working = "Cancelando..."

	if m.cancelAll {
		return m, tea.Batch(m.spinner.Tick, m.cancelFaturaCmd(m.formMotivo))
	}

	return m, tea.Batch(m.spinner.Tick, m.cancelOneCmd(m.selected(), m.formMotivo))
}

func (m NotasModel) updateDetail(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		if keyMsg.Type == tea.KeyEsc {
			m.state = notasStateList
			return m, nil
		}
	}

	return m, nil
}

func (m NotasModel) View() string {
	switch m.state {
	case notasStateSearch:
		content := fmt.Sprintf("Referência da fatura:\n\n%s", m.search.View())
		if m.status != "" {
			content += "\n\n" + lipgloss.NewStyle().Faint(true).Render(m.status)
		}

		return lipgloss.NewStyle().Padding(1).Render(content)

	case notasStateList:
		return m.viewList()

	case notasStateCancel:
		if m.form == nil {
			return ""
		}

		return lipgloss.NewStyle().Padding(1).Render(m.form.View())

	case notasStateDetail:
		return m.viewDetail()

	case notasStateWorking:
		return lipgloss.NewStyle().Padding(1).Render(
			fmt.Sprintf("%s %s", m.spinner.View(), m.working),
		)
	}

	return ""
}

func (m NotasModel) viewList() string {
	resumo := m.batch.Summary()

	header := fmt.Sprintf(
		"Fatura %s | %d notas | %d baixáveis | %d canceláveis | %d rejeitadas",
		m.batch.Numero, resumo.Total, resumo.Baixaveis, resumo.Cancelaveis, resumo.Rejeitadas,
	)

	tableView := lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		Render(m.table.View())

	content := lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().PaddingBottom(1).Render(header),
		tableView,
	)

	if m.status != "" {
		content = lipgloss.NewStyle().Faint(true).Render(m.status) + "\n" + content
	}

	return lipgloss.NewStyle().Padding(1).Render(content)
}

func (m NotasModel) viewDetail() string {
	n := m.selected()
	if n == nil {
		return ""
	}

	info := fmt.Sprintf(
		"NFS-e: %s\nIntegração: %s\nEmissão: %s\nValor: %s\nTomador: %s\nMotivo: %s\n\nHistórico:\n%s",
		n.NumeroNFSe,
		n.IntegrationID(),
		DataEmissao(n),
		FormatValor(n),
		n.TomadorNome(),
		nota.MotivoRejeicao(n),
		nota.FlattenLogs(n),
	)

	return lipgloss.NewStyle().
		Padding(1).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("63")).
		Render(info)
}

func (m NotasModel) selected() *nota.Nota {
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.batch.Notas) {
		return nil
	}

	return m.batch.Notas[idx]
}

func (m *NotasModel) refreshTable() {
	rows := make([]table.Row, 0, len(m.batch.Notas))
	for _, n := range m.batch.Notas {
		rows = append(rows, table.Row{
			n.NumeroNFSe,
			fmt.Sprintf("%d", n.Parcela),
			FormatValor(n),
			n.Status,
			n.SituacaoPrefeitura,
			situacaoBadges(n),
		})
	}

	m.table.SetRows(rows)
	m.table.SetCursor(0)
}

func situacaoBadges(n *nota.Nota) string {
	var badges []string

	if nota.Baixavel(n) {
		badges = append(badges, "baixável")
	}

	if nota.Cancelavel(n) {
		badges = append(badges, "cancelável")
	}

	if nota.Rejeitada(n) {
		badges = append(badges, "rejeitada")
	}

	return strings.Join(badges, " ")
}

// Messages

type searchDoneMsg struct {
	referencia string
	notas      []*nota.Nota
	err        error
}

func (m NotasModel) searchCmd(referencia string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := ReqCtx()
		defer cancel()

		if id, ok := strings.CutPrefix(referencia, "id:"); ok {
			n, err := m.client.SearchNota(ctx, id)
			if err != nil {
				return searchDoneMsg{referencia: referencia, err: err}
			}

			return searchDoneMsg{referencia: referencia, notas: []*nota.Nota{n}}
		}

		notas, err := m.client.SearchFatura(ctx, referencia)

		return searchDoneMsg{referencia: referencia, notas: notas, err: err}
	}
}

type actionDoneMsg struct {
	status  string
	refetch bool
	err     error
}

func (m NotasModel) downloadOneCmd(n *nota.Nota) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := ReqCtx()
		defer cancel()

		path, err := m.coordinator.DownloadOne(ctx, n)
		if err != nil {
			return actionDoneMsg{err: err}
		}

		return actionDoneMsg{status: fmt.Sprintf("PDF salvo em %s", path)}
	}
}

func (m NotasModel) downloadAllCmd() tea.Cmd {
	batch := m.batch

	return func() tea.Msg {
		ctx, cancel := ReqCtx()
		defer cancel()

		outcome, err := m.coordinator.DownloadAll(ctx, batch)
		if err != nil {
			return actionDoneMsg{err: err}
		}

		return actionDoneMsg{
			status: fmt.Sprintf("Downloads concluídos: %d, falharam: %d", outcome.Succeeded, outcome.Failed),
		}
	}
}

func (m NotasModel) cancelOneCmd(n *nota.Nota, motivo string) tea.Cmd {
	if n == nil {
		return func() tea.Msg { return actionDoneMsg{} }
	}

	return func() tea.Msg {
		ctx, cancel := ReqCtx()
		defer cancel()

		if err := m.coordinator.CancelOne(ctx, n, m.sistema, motivo); err != nil {
			return actionDoneMsg{err: err}
		}

		return actionDoneMsg{status: "Cancelamento solicitado.", refetch: true}
	}
}

func (m NotasModel) cancelFaturaCmd(motivo string) tea.Cmd {
	batch := m.batch

	return func() tea.Msg {
		ctx, cancel := ReqCtx()
		defer cancel()

		cancelled, err := m.coordinator.CancelFatura(ctx, batch, m.sistema, motivo)
		if err != nil {
			return actionDoneMsg{
				status:  fmt.Sprintf("Canceladas: %d", cancelled),
				refetch: cancelled > 0,
				err:     err,
			}
		}

		return actionDoneMsg{status: fmt.Sprintf("Canceladas: %d", cancelled), refetch: true}
	}
}
