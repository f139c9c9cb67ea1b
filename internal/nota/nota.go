package nota

import (
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"
)

// Nota is one fiscal note (NFS-e) as reported by the issuance backend.
// Records are always fetched fresh; the fields mirror what the upstream
// actually sends, including its duplicated and inconsistently named ones.
type Nota struct {
	ID              string `json:"id,omitempty"`
	IDIntegracao    string `json:"idIntegracao,omitempty"`
	IDIntegracaoAlt string `json:"id_integracao,omitempty"`

	NumeroNFSe string `json:"numero_nfse,omitempty"`
	Fatura     string `json:"fatura,omitempty"`
	Parcela    int    `json:"parcela,omitempty"`

	Status             string `json:"status,omitempty"`
	SituacaoPrefeitura string `json:"situacao_prefeitura,omitempty"`

	ValorServico decimal.Decimal `json:"valor_servico"`

	Prestador *Parte `json:"prestador,omitempty"`
	Tomador   *Parte `json:"tomador,omitempty"`

	Datas map[string]string `json:"datas,omitempty"`

	CodigoVerificacao string `json:"codigo_verificacao,omitempty"`
	PDFURLFinal       string `json:"pdf_url_final,omitempty"`

	// Processing history. Some municipality integrations report under
	// "logs", others under "log"; errors come separately under "erros".
	Logs  []Entrada `json:"logs,omitempty"`
	Log   []Entrada `json:"log,omitempty"`
	Erros []Entrada `json:"erros,omitempty"`

	// Free-text rejection explanations. Which of these is populated
	// depends on the upstream source.
	MotivoRejeicao string `json:"motivo_rejeicao,omitempty"`
	MotivoErro     string `json:"motivo_erro,omitempty"`
	Motivo         string `json:"motivo,omitempty"`
	Mensagem       string `json:"mensagem,omitempty"`
	Erro           string `json:"erro,omitempty"`
	ErrorMsg       string `json:"error,omitempty"`
}

// IntegrationID returns the backend-assigned integration id, regardless of
// which spelling the upstream used. Empty when the note was never accepted
// for processing.
func (n *Nota) IntegrationID() string {
	if id := strings.TrimSpace(n.IDIntegracao); id != "" {
		return id
	}

	return strings.TrimSpace(n.IDIntegracaoAlt)
}

// Historico returns the note's log entries, whichever field carried them.
func (n *Nota) Historico() []Entrada {
	if len(n.Logs) > 0 {
		return n.Logs
	}

	return n.Log
}

// TomadorNome returns the recipient's name, or empty when absent.
func (n *Nota) TomadorNome() string {
	if n.Tomador == nil {
		return ""
	}

	return n.Tomador.RazaoSocial
}

// Parte is an issuer or recipient record.
type Parte struct {
	RazaoSocial        string `json:"razao_social,omitempty"`
	CNPJ               string `json:"cnpj,omitempty"`
	CPF                string `json:"cpf,omitempty"`
	InscricaoMunicipal string `json:"inscricao_municipal,omitempty"`
	Logradouro         string `json:"logradouro,omitempty"`
	Numero             string `json:"numero,omitempty"`
	Bairro             string `json:"bairro,omitempty"`
	Municipio          string `json:"municipio,omitempty"`
	UF                 string `json:"uf,omitempty"`
	CEP                string `json:"cep,omitempty"`
	Email              string `json:"email,omitempty"`
	Telefone           string `json:"telefone,omitempty"`
}

// Documento returns the CNPJ when present, otherwise the CPF.
func (p *Parte) Documento() string {
	if p.CNPJ != "" {
		return p.CNPJ
	}

	return p.CPF
}

// Entrada is one processing log or error entry. The upstream sends either a
// bare string or a structured object; both decode into the same shape so the
// rest of the code never branches on it.
type Entrada struct {
	Quando   string `json:"quando,omitempty"`
	Status   string `json:"status,omitempty"`
	Mensagem string `json:"mensagem,omitempty"`
}

func (e *Entrada) UnmarshalJSON(data []byte) error {
	var plain string
	if err := json.Unmarshal(data, &plain); err == nil {
		*e = Entrada{Mensagem: plain}
		return nil
	}

	var obj struct {
		Quando   string `json:"quando"`
		Data     string `json:"data"`
		Status   string `json:"status"`
		Mensagem string `json:"mensagem"`
		Message  string `json:"message"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}

	*e = Entrada{
		Quando:   firstNonEmpty(obj.Quando, obj.Data),
		Status:   obj.Status,
		Mensagem: firstNonEmpty(obj.Mensagem, obj.Message),
	}

	return nil
}

// String renders the entry as "[quando] (status) mensagem", omitting the
// parts that are empty.
func (e Entrada) String() string {
	var parts []string

	if e.Quando != "" {
		parts = append(parts, "["+e.Quando+"]")
	}

	if e.Status != "" {
		parts = append(parts, "("+e.Status+")")
	}

	if e.Mensagem != "" {
		parts = append(parts, e.Mensagem)
	}

	return strings.Join(parts, " ")
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}

	return ""
}
