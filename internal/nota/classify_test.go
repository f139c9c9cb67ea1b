package nota_test

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DMCFaria/nota-fiscal-rj-sub000/internal/nota"
)

func TestCancelavel(t *testing.T) {
	tests := []struct {
		name string
		nota nota.Nota
		want bool
	}{
		{
			name: "AuthorizedNote",
			nota: nota.Nota{Status: "CONCLUIDO", SituacaoPrefeitura: "AUTORIZADA"},
			want: true,
		},
		{
			name: "AlreadyCancelled",
			nota: nota.Nota{Status: "CONCLUIDO", SituacaoPrefeitura: "CANCELADA"},
			want: false,
		},
		{
			name: "CancelledLowercaseWithWhitespace",
			nota: nota.Nota{SituacaoPrefeitura: "  cancelada "},
			want: false,
		},
		{
			name: "Processing",
			nota: nota.Nota{Status: "PROCESSANDO", SituacaoPrefeitura: "AUTORIZADA"},
			want: false,
		},
		{
			name: "ProcessingLowercase",
			nota: nota.Nota{Status: "processando"},
			want: false,
		},
		{
			name: "EmptyFields",
			nota: nota.Nota{},
			want: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, nota.Cancelavel(&tt.nota))
		})
	}
}

func TestBaixavel(t *testing.T) {
	tests := []struct {
		name string
		nota nota.Nota
		want bool
	}{
		{
			name: "AuthorizedWithIntegrationID",
			nota: nota.Nota{Status: "CONCLUIDO", SituacaoPrefeitura: "AUTORIZADA", IDIntegracao: "X1"},
			want: true,
		},
		{
			name: "NoIntegrationID",
			nota: nota.Nota{Status: "CONCLUIDO", SituacaoPrefeitura: "AUTORIZADA"},
			want: false,
		},
		{
			name: "SnakeCaseIntegrationID",
			nota: nota.Nota{Status: "emitida", IDIntegracaoAlt: "Y2"},
			want: true,
		},
		{
			name: "StatusOutsideSuccessVocabulary",
			nota: nota.Nota{Status: "PROCESSANDO", IDIntegracao: "X1"},
			want: false,
		},
		{
			name: "CancelledByPrefecture",
			nota: nota.Nota{Status: "CONCLUIDO", SituacaoPrefeitura: "CANCELADA", IDIntegracao: "X1"},
			want: false,
		},
		{
			name: "AccentedSuccessStatus",
			nota: nota.Nota{Status: "Concluída", IDIntegracao: "X1"},
			want: true,
		},
		{
			name: "EmptyNote",
			nota: nota.Nota{},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, nota.Baixavel(&tt.nota))
		})
	}
}

func TestRejeitada(t *testing.T) {
	tests := []struct {
		name string
		nota nota.Nota
		want bool
	}{
		{
			name: "RejectedStatus",
			nota: nota.Nota{Status: "REJEITADA"},
			want: true,
		},
		{
			name: "RefusedVariant",
			nota: nota.Nota{Status: "recusado"},
			want: true,
		},
		{
			name: "DeniedSituation",
			nota: nota.Nota{Status: "CONCLUIDO", SituacaoPrefeitura: "DENEGADA"},
			want: true,
		},
		{
			name: "InvalidSituation",
			nota: nota.Nota{SituacaoPrefeitura: "dados invalidos"},
			want: true,
		},
		{
			name: "ErroStatus",
			nota: nota.Nota{Status: "erro"},
			want: true,
		},
		{
			name: "FalhaStatus",
			nota: nota.Nota{Status: "FALHA"},
			want: true,
		},
		{
			name: "ExplicitReasonWithErroStatus",
			nota: nota.Nota{Status: "erro no processamento", Motivo: "Dados incompletos"},
			want: true,
		},
		{
			name: "ExplicitReasonWithHealthyStatus",
			nota: nota.Nota{Status: "CONCLUIDO", Motivo: "observação qualquer"},
			want: false,
		},
		{
			name: "AuthorizedNote",
			nota: nota.Nota{Status: "CONCLUIDO", SituacaoPrefeitura: "AUTORIZADA"},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, nota.Rejeitada(&tt.nota))
		})
	}
}

func TestMotivoRejeicao(t *testing.T) {
	tests := []struct {
		name string
		nota nota.Nota
		want string
	}{
		{
			name: "MotivoRejeicaoOutranksMensagem",
			nota: nota.Nota{MotivoRejeicao: "CNPJ inválido", Mensagem: "erro genérico"},
			want: "CNPJ inválido",
		},
		{
			name: "MotivoErroOutranksMotivo",
			nota: nota.Nota{MotivoErro: "serviço indisponível", Motivo: "outro"},
			want: "serviço indisponível",
		},
		{
			name: "MotivoField",
			nota: nota.Nota{Status: "erro", SituacaoPrefeitura: "REJEITADA PELO MUNICIPIO", Motivo: "Dados incompletos"},
			want: "Dados incompletos",
		},
		{
			name: "ErrorFieldVariant",
			nota: nota.Nota{ErrorMsg: "timeout"},
			want: "timeout",
		},
		{
			name: "FallsBackToSituacao",
			nota: nota.Nota{SituacaoPrefeitura: "REJEITADA"},
			want: "REJEITADA",
		},
		{
			name: "FirstErroEntry",
			nota: nota.Nota{Erros: []nota.Entrada{{Mensagem: "A"}, {Mensagem: "B"}}},
			want: "A",
		},
		{
			name: "LastLogEntry",
			nota: nota.Nota{Logs: []nota.Entrada{{Mensagem: "A"}, {Mensagem: "B"}}},
			want: "B",
		},
		{
			name: "LastEntryOfLogVariantField",
			nota: nota.Nota{Log: []nota.Entrada{{Mensagem: "antiga"}, {Mensagem: "recente"}}},
			want: "recente",
		},
		{
			name: "NothingAvailable",
			nota: nota.Nota{},
			want: nota.Placeholder,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, nota.MotivoRejeicao(&tt.nota))
		})
	}
}

func TestFlattenLogs(t *testing.T) {
	t.Run("Empty", func(t *testing.T) {
		assert.Equal(t, nota.Placeholder, nota.FlattenLogs(&nota.Nota{}))
	})

	t.Run("StructuredEntry", func(t *testing.T) {
		n := nota.Nota{Logs: []nota.Entrada{
			{Quando: "2024-01-01", Status: "erro", Mensagem: "falhou"},
		}}
		assert.Equal(t, "[2024-01-01] (erro) falhou", nota.FlattenLogs(&n))
	})

	t.Run("PartialEntriesJoined", func(t *testing.T) {
		n := nota.Nota{Logs: []nota.Entrada{
			{Mensagem: "enviado"},
			{Status: "erro"},
		}}
		assert.Equal(t, "enviado | (erro)", nota.FlattenLogs(&n))
	})

	t.Run("TruncatesLongHistory", func(t *testing.T) {
		entradas := make([]nota.Entrada, 300)
		for i := range entradas {
			entradas[i] = nota.Entrada{Mensagem: "tentativa"}
		}

		flat := nota.FlattenLogs(&nota.Nota{Logs: entradas})
		assert.Equal(t, 250, strings.Count(flat, "tentativa"))
	})
}

func TestEntradaUnmarshal(t *testing.T) {
	t.Run("PlainString", func(t *testing.T) {
		var e nota.Entrada
		require.NoError(t, json.Unmarshal([]byte(`"falha na emissão"`), &e))
		assert.Equal(t, "falha na emissão", e.Mensagem)
	})

	t.Run("StructuredObject", func(t *testing.T) {
		var e nota.Entrada
		require.NoError(t, json.Unmarshal([]byte(`{"quando":"2024-01-01","status":"erro","mensagem":"falhou"}`), &e))
		assert.Equal(t, nota.Entrada{Quando: "2024-01-01", Status: "erro", Mensagem: "falhou"}, e)
	})

	t.Run("AlternateFieldNames", func(t *testing.T) {
		var e nota.Entrada
		require.NoError(t, json.Unmarshal([]byte(`{"data":"2024-02-02","message":"timeout"}`), &e))
		assert.Equal(t, nota.Entrada{Quando: "2024-02-02", Mensagem: "timeout"}, e)
	})
}

func TestIntegrationID(t *testing.T) {
	assert.Equal(t, "X1", (&nota.Nota{IDIntegracao: "X1"}).IntegrationID())
	assert.Equal(t, "Y2", (&nota.Nota{IDIntegracaoAlt: " Y2 "}).IntegrationID())
	assert.Equal(t, "X1", (&nota.Nota{IDIntegracao: "X1", IDIntegracaoAlt: "Y2"}).IntegrationID())
	assert.Empty(t, (&nota.Nota{}).IntegrationID())
}
