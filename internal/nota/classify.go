package nota

import "strings"

// Placeholder stands in for reasons and logs when the upstream gave nothing.
const Placeholder = "—"

// maxHistorico caps how many log entries FlattenLogs renders; some
// municipality integrations accumulate thousands of retry entries.
const maxHistorico = 250

// statusSucesso is the vocabulary of lifecycle stages after which the
// authority has accepted the note and its PDF can be fetched. Upstream
// systems are inconsistent about spelling and accentuation, hence the
// variants.
var statusSucesso = map[string]struct{}{
	"sucesso":    {},
	"autorizada": {},
	"concluido":  {},
	"concluída":  {},
	"concluida":  {},
	"emitida":    {},
	"emitido":    {},
}

// marcadoresRejeicao are substrings that flag a rejection in either status
// field. Substring matching absorbs variant spellings ("rejeitada",
// "REJEITADO", "recusada pelo municipio") without an exhaustive enum.
var marcadoresRejeicao = []string{"rejeit", "recus", "deneg", "inval"}

// statusFalha are exact failure stages that count as a rejection on their own.
var statusFalha = map[string]struct{}{
	"erro":  {},
	"falha": {},
}

func norm(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Cancelavel reports whether the note may be offered for cancellation.
// A note mid-processing or already cancelled by the prefecture must not be.
func Cancelavel(n *Nota) bool {
	if norm(n.SituacaoPrefeitura) == "cancelada" {
		return false
	}

	return norm(n.Status) != "processando"
}

// Baixavel reports whether the note's PDF can be fetched: the backend
// assigned an integration id, the lifecycle reached a success stage, and
// neither field says the note has since been voided.
func Baixavel(n *Nota) bool {
	if n.IntegrationID() == "" {
		return false
	}

	status := norm(n.Status)
	if _, ok := statusSucesso[status]; !ok {
		return false
	}

	return status != "cancelada" && norm(n.SituacaoPrefeitura) != "cancelada"
}

// Rejeitada reports whether the note was refused somewhere along the way.
// Upstream systems report rejection inconsistently across two status fields
// plus free-text reason fields, so all three are consulted.
func Rejeitada(n *Nota) bool {
	status := norm(n.Status)

	if _, ok := statusFalha[status]; ok {
		return true
	}

	for _, marcador := range marcadoresRejeicao {
		if strings.Contains(status, marcador) {
			return true
		}
	}

	situacao := norm(n.SituacaoPrefeitura)
	for _, marcador := range marcadoresRejeicao {
		if strings.Contains(situacao, marcador) {
			return true
		}
	}

	// An explicit reason field only counts when the status itself talks
	// about an error; a reason next to a healthy status is informational.
	if motivoExplicito(n) != "" && strings.Contains(status, "erro") {
		return true
	}

	return false
}

// motivoExplicito returns the first populated dedicated reason field, in
// upstream priority order. Explicit fields outrank error/log collections.
func motivoExplicito(n *Nota) string {
	return firstNonEmpty(
		n.MotivoRejeicao,
		n.MotivoErro,
		n.Motivo,
		n.Mensagem,
		n.Erro,
		n.ErrorMsg,
	)
}

// MotivoRejeicao extracts the most specific rejection explanation available.
// Dedicated reason fields win over the prefecture situation; failing those,
// the first erro entry (errors are reported once) and then the last log
// entry (logs accumulate chronologically, so the last is the latest).
func MotivoRejeicao(n *Nota) string {
	if motivo := motivoExplicito(n); motivo != "" {
		return motivo
	}

	if strings.TrimSpace(n.SituacaoPrefeitura) != "" {
		return n.SituacaoPrefeitura
	}

	if len(n.Erros) > 0 {
		if s := n.Erros[0].String(); s != "" {
			return s
		}
	}

	if historico := n.Historico(); len(historico) > 0 {
		if s := historico[len(historico)-1].String(); s != "" {
			return s
		}
	}

	return Placeholder
}

// FlattenLogs joins the note's log entries into a single human-readable
// line, " | "-separated, for report cells and tooltips.
func FlattenLogs(n *Nota) string {
	historico := n.Historico()
	if len(historico) > maxHistorico {
		historico = historico[:maxHistorico]
	}

	parts := make([]string, 0, len(historico))

	for _, entrada := range historico {
		if s := entrada.String(); s != "" {
			parts = append(parts, s)
		}
	}

	if len(parts) == 0 {
		return Placeholder
	}

	return strings.Join(parts, " | ")
}
