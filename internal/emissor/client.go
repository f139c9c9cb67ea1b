// Package emissor talks to the hosted issuance backend: search, emit,
// download and cancel. Transport details, including the session refresh the
// backend requires, live here so nothing above it ever sees a token.
package emissor

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/DMCFaria/nota-fiscal-rj-sub000/internal/nota"
)

// ErrNotFound means the backend answered but had no matching note or batch.
var ErrNotFound = errors.New("nota não encontrada")

type Client struct {
	client    *http.Client
	baseURL   string
	outputDir string
	session   *session
}

func NewClient(baseURL, apiKey, outputDir string) *Client {
	httpClient := &http.Client{Timeout: 30 * time.Second}

	return &Client{
		client:    httpClient,
		baseURL:   strings.TrimRight(baseURL, "/"),
		outputDir: outputDir,
		session:   newSession(httpClient, strings.TrimRight(baseURL, "/"), apiKey),
	}
}

// searchEnvelope is the backend's search reply. A batch lookup carries
// either a "notas" array or, for single-note batches, one object under
// "nfse"; "tipo" says which.
type searchEnvelope struct {
	Status string          `json:"status"`
	Tipo   string          `json:"tipo,omitempty"`
	Notas  []*nota.Nota    `json:"notas,omitempty"`
	NFSe   json.RawMessage `json:"nfse,omitempty"`
}

// SearchFatura looks a batch up by its invoicing reference. A reply with
// zero matches returns an empty slice, not an error.
func (c *Client) SearchFatura(ctx context.Context, referencia string) ([]*nota.Nota, error) {
	resp, err := c.do(ctx, http.MethodGet, "/nfse/fatura/"+referencia, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	envelope, err := decodeSearch(resp)
	if err != nil {
		return nil, err
	}

	if len(envelope.Notas) > 0 {
		return envelope.Notas, nil
	}

	return decodeNFSe(envelope.NFSe)
}

// SearchNota looks one note up by id or processing protocol.
func (c *Client) SearchNota(ctx context.Context, id string) (*nota.Nota, error) {
	resp, err := c.do(ctx, http.MethodGet, "/nfse/"+id, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	envelope, err := decodeSearch(resp)
	if err != nil {
		return nil, err
	}

	notas, err := decodeNFSe(envelope.NFSe)
	if err != nil {
		return nil, err
	}

	if len(notas) == 0 {
		return nil, ErrNotFound
	}

	return notas[0], nil
}

// Emit submits one emission request and returns the protocol the backend
// assigned to it.
func (c *Client) Emit(ctx context.Context, req nota.EmissaoRequest) (string, error) {
	resp, err := c.do(ctx, http.MethodPost, "/nfse", req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return "", err
	}

	var out struct {
		Protocolo string `json:"protocolo"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decoding emission reply: %w", err)
	}

	return out.Protocolo, nil
}

// Download fetches the note's final PDF and saves it under the configured
// output directory, returning the file path.
func (c *Client) Download(ctx context.Context, req nota.DownloadRequest) (string, error) {
	resp, err := c.do(ctx, http.MethodPost, "/nfse/download", req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return "", err
	}

	if err := os.MkdirAll(c.outputDir, 0o755); err != nil {
		return "", fmt.Errorf("creating output directory: %w", err)
	}

	path := filepath.Join(c.outputDir, downloadFilename(resp, req))

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("creating file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, resp.Body); err != nil {
		return "", fmt.Errorf("writing pdf: %w", err)
	}

	return path, nil
}

// Cancel asks the backend to void the note named by the request.
func (c *Client) Cancel(ctx context.Context, req nota.CancelRequest) error {
	resp, err := c.do(ctx, http.MethodPost, "/nfse/cancelar", req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	return checkStatus(resp)
}

// do issues an authenticated request, re-logging in and retrying exactly
// once when the session token is rejected.
func (c *Client) do(ctx context.Context, method, path string, body any) (*http.Response, error) {
	var payload []byte

	if body != nil {
		var err error
		if payload, err = json.Marshal(body); err != nil {
			return nil, fmt.Errorf("encoding request: %w", err)
		}
	}

	for attempt := 0; ; attempt++ {
		token, err := c.session.token(ctx)
		if err != nil {
			return nil, err
		}

		req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(payload))
		if err != nil {
			return nil, fmt.Errorf("creating request: %w", err)
		}

		req.Header.Set("Authorization", "Bearer "+token)
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := c.client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("calling emissor: %w", err)
		}

		if resp.StatusCode == http.StatusUnauthorized && attempt == 0 {
			resp.Body.Close()
			c.session.invalidate()

			continue
		}

		return resp, nil
	}
}

func decodeSearch(resp *http.Response) (*searchEnvelope, error) {
	if err := checkStatus(resp); err != nil {
		return nil, err
	}

	var envelope searchEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("decoding search reply: %w", err)
	}

	return &envelope, nil
}

// decodeNFSe reads the "nfse" field, which is a single note except when the
// backend flags multiple results, in which case it is an array.
func decodeNFSe(raw json.RawMessage) ([]*nota.Nota, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return []*nota.Nota{}, nil
	}

	if trimmed[0] == '[' {
		var notas []*nota.Nota
		if err := json.Unmarshal(trimmed, &notas); err != nil {
			return nil, fmt.Errorf("decoding notas: %w", err)
		}

		return notas, nil
	}

	var n nota.Nota
	if err := json.Unmarshal(trimmed, &n); err != nil {
		return nil, fmt.Errorf("decoding nota: %w", err)
	}

	return []*nota.Nota{&n}, nil
}

func checkStatus(resp *http.Response) error {
	switch {
	case resp.StatusCode == http.StatusNotFound:
		return ErrNotFound
	case resp.StatusCode >= 400:
		var apiErr struct {
			Mensagem string `json:"mensagem"`
		}

		if err := json.NewDecoder(io.LimitReader(resp.Body, 4096)).Decode(&apiErr); err == nil && apiErr.Mensagem != "" {
			return fmt.Errorf("emissor respondeu %d: %s", resp.StatusCode, apiErr.Mensagem)
		}

		return fmt.Errorf("emissor respondeu %d", resp.StatusCode)
	}

	return nil
}

// downloadFilename prefers the backend's Content-Disposition name; failing
// that, one is derived from the integration id.
func downloadFilename(resp *http.Response, req nota.DownloadRequest) string {
	if cd := resp.Header.Get("Content-Disposition"); cd != "" {
		if _, params, err := mime.ParseMediaType(cd); err == nil {
			if filename, ok := params["filename"]; ok && filename != "" {
				return strings.ReplaceAll(filepath.Base(filename), " ", "_")
			}
		}
	}

	return fmt.Sprintf("nfse_%s.pdf", req.IDIntegracao)
}
