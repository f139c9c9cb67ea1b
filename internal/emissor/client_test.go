package emissor_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DMCFaria/nota-fiscal-rj-sub000/internal/emissor"
	"github.com/DMCFaria/nota-fiscal-rj-sub000/internal/nota"
)

func signToken(t *testing.T, ttl time.Duration) string {
	t.Helper()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"exp": time.Now().Add(ttl).Unix(),
	})

	signed, err := token.SignedString([]byte("test-secret"))
	require.NoError(t, err)

	return signed
}

// newBackend wires a fake issuance backend with login plus the given routes.
func newBackend(t *testing.T, logins *atomic.Int32, handler http.HandlerFunc) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()

	mux.HandleFunc("POST /auth/login", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "chave-teste", body["api_key"])

		if logins != nil {
			logins.Add(1)
		}

		json.NewEncoder(w).Encode(map[string]string{"token": signToken(t, time.Hour)})
	})

	mux.HandleFunc("/", handler)

	return httptest.NewServer(mux)
}

func TestSearchFatura(t *testing.T) {
	ts := newBackend(t, nil, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/nfse/fatura/F-100", r.URL.Path)
		assert.Contains(t, r.Header.Get("Authorization"), "Bearer ")

		w.Write([]byte(`{
			"status": "success",
			"tipo": "multiplas",
			"notas": [
				{"idIntegracao": "X1", "fatura": "F-100", "status": "CONCLUIDO"},
				{"idIntegracao": "X2", "fatura": "F-100", "status": "erro"}
			]
		}`))
	})
	defer ts.Close()

	client := emissor.NewClient(ts.URL, "chave-teste", t.TempDir())

	notas, err := client.SearchFatura(context.Background(), "F-100")
	require.NoError(t, err)
	require.Len(t, notas, 2)
	assert.Equal(t, "X1", notas[0].IntegrationID())
	assert.Equal(t, "erro", notas[1].Status)
}

func TestSearchFatura_SingleNoteUnderNFSe(t *testing.T) {
	ts := newBackend(t, nil, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status": "success", "nfse": {"idIntegracao": "X1"}}`))
	})
	defer ts.Close()

	client := emissor.NewClient(ts.URL, "chave-teste", t.TempDir())

	notas, err := client.SearchFatura(context.Background(), "F-100")
	require.NoError(t, err)
	require.Len(t, notas, 1)
	assert.Equal(t, "X1", notas[0].IntegrationID())
}

func TestSearchFatura_EmptyResultIsNotAnError(t *testing.T) {
	ts := newBackend(t, nil, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status": "success"}`))
	})
	defer ts.Close()

	client := emissor.NewClient(ts.URL, "chave-teste", t.TempDir())

	notas, err := client.SearchFatura(context.Background(), "F-999")
	require.NoError(t, err)
	assert.Empty(t, notas)
}

func TestSearchNota_NotFound(t *testing.T) {
	ts := newBackend(t, nil, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"mensagem":"não encontrada"}`, http.StatusNotFound)
	})
	defer ts.Close()

	client := emissor.NewClient(ts.URL, "chave-teste", t.TempDir())

	_, err := client.SearchNota(context.Background(), "PROTO-1")
	assert.ErrorIs(t, err, emissor.ErrNotFound)
}

func TestDownload(t *testing.T) {
	ts := newBackend(t, nil, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/nfse/download", r.URL.Path)

		var req nota.DownloadRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, nota.TipoIndividual, req.Tipo)
		assert.Equal(t, "X1", req.IDIntegracao)

		w.Header().Set("Content-Type", "application/pdf")
		w.Header().Set("Content-Disposition", `attachment; filename="nota_101.pdf"`)
		w.Write([]byte("%PDF-fake"))
	})
	defer ts.Close()

	dir := t.TempDir()
	client := emissor.NewClient(ts.URL, "chave-teste", dir)

	n := &nota.Nota{IDIntegracao: "X1", NumeroNFSe: "101"}

	path, err := client.Download(context.Background(), nota.NewDownloadRequest(n))
	require.NoError(t, err)
	assert.Equal(t, "nota_101.pdf", filepath.Base(path))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-fake", string(content))
}

func TestDownload_FilenameFallback(t *testing.T) {
	ts := newBackend(t, nil, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("%PDF-fake"))
	})
	defer ts.Close()

	client := emissor.NewClient(ts.URL, "chave-teste", t.TempDir())

	path, err := client.Download(context.Background(), nota.DownloadRequest{
		Tipo:         nota.TipoIndividual,
		IDIntegracao: "X9",
	})
	require.NoError(t, err)
	assert.Equal(t, "nfse_X9.pdf", filepath.Base(path))
}

func TestCancel(t *testing.T) {
	ts := newBackend(t, nil, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/nfse/cancelar", r.URL.Path)

		var req nota.CancelRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "duplicidade", req.Motivo)

		w.Write([]byte(`{"status":"success"}`))
	})
	defer ts.Close()

	client := emissor.NewClient(ts.URL, "chave-teste", t.TempDir())

	n := &nota.Nota{IDIntegracao: "X1"}
	err := client.Cancel(context.Background(), nota.NewCancelRequest(n, "nfe-rio", "duplicidade"))
	assert.NoError(t, err)
}

func TestCancel_BackendErrorSurfacesMessage(t *testing.T) {
	ts := newBackend(t, nil, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte(`{"mensagem":"prefeitura indisponível"}`))
	})
	defer ts.Close()

	client := emissor.NewClient(ts.URL, "chave-teste", t.TempDir())

	err := client.Cancel(context.Background(), nota.CancelRequest{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "prefeitura indisponível")
}

func TestEmit(t *testing.T) {
	ts := newBackend(t, nil, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/nfse", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]string{"protocolo": "PROTO-55"})
	})
	defer ts.Close()

	client := emissor.NewClient(ts.URL, "chave-teste", t.TempDir())

	protocolo, err := client.Emit(context.Background(), nota.EmissaoRequest{Fatura: "F-1"})
	require.NoError(t, err)
	assert.Equal(t, "PROTO-55", protocolo)
}

func TestSessionReuseAndRetryOn401(t *testing.T) {
	var logins atomic.Int32

	var rejected atomic.Bool

	ts := newBackend(t, &logins, func(w http.ResponseWriter, r *http.Request) {
		// First call is rejected to force a re-login and a single retry.
		if rejected.CompareAndSwap(false, true) {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}

		w.Write([]byte(`{"status": "success", "notas": [{"idIntegracao": "X1"}]}`))
	})
	defer ts.Close()

	client := emissor.NewClient(ts.URL, "chave-teste", t.TempDir())

	notas, err := client.SearchFatura(context.Background(), "F-1")
	require.NoError(t, err)
	assert.Len(t, notas, 1)
	assert.Equal(t, int32(2), logins.Load(), "one login, then one re-login after the 401")

	// Token is cached: another call must not log in again.
	_, err = client.SearchFatura(context.Background(), "F-1")
	require.NoError(t, err)
	assert.Equal(t, int32(2), logins.Load())
}
