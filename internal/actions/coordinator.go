// Package actions drives bulk and single note actions against the issuance
// backend while keeping per-row in-flight state consistent for the UI.
package actions

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/DMCFaria/nota-fiscal-rj-sub000/internal/fatura"
	"github.com/DMCFaria/nota-fiscal-rj-sub000/internal/history"
	"github.com/DMCFaria/nota-fiscal-rj-sub000/internal/nota"
)

// Validation failures, raised before any remote call and distinguishable
// from network errors via errors.Is.
var (
	ErrSemIntegracao = errors.New("nota sem id de integração")
	ErrMotivoCurto   = errors.New("motivo de cancelamento precisa de pelo menos 5 caracteres")
	ErrSemSistema    = errors.New("nenhum sistema emissor selecionado")
	ErrEmAndamento   = errors.New("ação já em andamento para este alvo")
)

//go:generate mockgen -source=coordinator.go -destination=emissor_mock.go -package=actions
type Emissor interface {
	// Download fetches one note's final PDF and returns the saved file path.
	Download(ctx context.Context, req nota.DownloadRequest) (string, error)
	Cancel(ctx context.Context, req nota.CancelRequest) error
}

type Coordinator struct {
	emissor  Emissor
	historia *history.Service
	inflight *inflight
}

func NewCoordinator(emissor Emissor, historia *history.Service) *Coordinator {
	return &Coordinator{
		emissor:  emissor,
		historia: historia,
		inflight: newInflight(),
	}
}

// DownloadOutcome tallies a bulk download. Remote failures are counted, not
// propagated: one bad note never aborts its siblings.
type DownloadOutcome struct {
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`
}

// InFlight reports whether an action of the given kind is running for the
// batch or note key, so the view layer can disable the control.
func (c *Coordinator) InFlight(kind Kind, key string) bool {
	return c.inflight.running(kind, key)
}

// DownloadAll fetches the PDF of every downloadable note in the batch
// concurrently and waits for all of them to settle. A batch with nothing to
// download is a zero outcome, not an error. The only error returned is a
// re-entrancy rejection when a download for the same batch is still running.
func (c *Coordinator) DownloadAll(ctx context.Context, f fatura.Fatura) (DownloadOutcome, error) {
	key := faturaKey(f)
	if !c.inflight.tryAcquire(KindDownload, key) {
		return DownloadOutcome{}, ErrEmAndamento
	}
	defer c.inflight.release(KindDownload, key)

	var elegiveis []*nota.Nota

	for _, n := range f.Notas {
		if nota.Baixavel(n) {
			elegiveis = append(elegiveis, n)
		}
	}

	if len(elegiveis) == 0 {
		return DownloadOutcome{}, nil
	}

	results := make(chan error, len(elegiveis))

	var wg sync.WaitGroup
	wg.Add(len(elegiveis))

	for _, n := range elegiveis {
		go func(n *nota.Nota) {
			defer wg.Done()

			_, err := c.emissor.Download(ctx, nota.NewDownloadRequest(n))
			results <- err
		}(n)
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	var outcome DownloadOutcome

	for err := range results {
		if err != nil {
			outcome.Failed++

			slog.Warn("download de nota falhou", "fatura", f.Numero, "error", err)

			continue
		}

		outcome.Succeeded++
	}

	c.record(ctx, history.AcaoDownload, f.Numero,
		fmt.Sprintf("downloads iniciados: %d, falharam: %d", outcome.Succeeded, outcome.Failed))

	return outcome, nil
}

// DownloadOne fetches a single note's PDF. A note without an integration id
// is rejected before any remote call.
func (c *Coordinator) DownloadOne(ctx context.Context, n *nota.Nota) (string, error) {
	if n.IntegrationID() == "" {
		return "", ErrSemIntegracao
	}

	key := notaKey(n)
	if !c.inflight.tryAcquire(KindDownload, key) {
		return "", ErrEmAndamento
	}
	defer c.inflight.release(KindDownload, key)

	path, err := c.emissor.Download(ctx, nota.NewDownloadRequest(n))
	if err != nil {
		return "", fmt.Errorf("baixando nota %s: %w", n.IntegrationID(), err)
	}

	c.record(ctx, history.AcaoDownload, n.IntegrationID(), path)

	return path, nil
}

// CancelOne voids a single note. The caller must refetch the note afterwards;
// records are never patched locally.
func (c *Coordinator) CancelOne(ctx context.Context, n *nota.Nota, sistema, motivo string) error {
	if err := validateCancel(sistema, motivo); err != nil {
		return err
	}

	key := notaKey(n)
	if !c.inflight.tryAcquire(KindCancel, key) {
		return ErrEmAndamento
	}
	defer c.inflight.release(KindCancel, key)

	if err := c.emissor.Cancel(ctx, nota.NewCancelRequest(n, sistema, motivo)); err != nil {
		return fmt.Errorf("cancelando nota %s: %w", key, err)
	}

	c.record(ctx, history.AcaoCancel, key, motivo)

	return nil
}

// CancelFatura voids every currently cancellable note in the batch, one
// request per note, sequentially. Failures are aggregated into a single
// error; notes already cancelled by a previous partial run are simply no
// longer cancellable on the refetched batch.
func (c *Coordinator) CancelFatura(ctx context.Context, f fatura.Fatura, sistema, motivo string) (int, error) {
	if err := validateCancel(sistema, motivo); err != nil {
		return 0, err
	}

	key := faturaKey(f)
	if !c.inflight.tryAcquire(KindCancel, key) {
		return 0, ErrEmAndamento
	}
	defer c.inflight.release(KindCancel, key)

	var (
		cancelled int
		errs      []error
	)

	for _, n := range f.Notas {
		if !nota.Cancelavel(n) {
			continue
		}

		req := nota.NewCancelRequest(n, sistema, motivo)
		req.Tipo = nota.TipoFatura

		if err := c.emissor.Cancel(ctx, req); err != nil {
			errs = append(errs, fmt.Errorf("nota %s: %w", notaKey(n), err))
			continue
		}

		cancelled++
	}

	c.record(ctx, history.AcaoCancel, f.Numero,
		fmt.Sprintf("canceladas: %d, falharam: %d", cancelled, len(errs)))

	return cancelled, errors.Join(errs...)
}

func validateCancel(sistema, motivo string) error {
	if sistema == "" {
		return ErrSemSistema
	}

	if !nota.MotivoValido(motivo) {
		return ErrMotivoCurto
	}

	return nil
}

func (c *Coordinator) record(ctx context.Context, acao, referencia, detalhe string) {
	if c.historia == nil {
		return
	}

	if err := c.historia.Record(ctx, acao, referencia, detalhe); err != nil {
		slog.Warn("falha ao gravar histórico", "acao", acao, "error", err)
	}
}

func faturaKey(f fatura.Fatura) string {
	return "fatura:" + f.Numero
}

func notaKey(n *nota.Nota) string {
	if id := n.IntegrationID(); id != "" {
		return id
	}

	if n.ID != "" {
		return n.ID
	}

	return n.NumeroNFSe
}
