// Package history keeps a persisted log of user-triggered actions (searches,
// downloads, cancellations) behind an injected storage port.
package history

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Evento is one recorded action.
type Evento struct {
	ID         uuid.UUID
	Acao       string
	Referencia string
	Detalhe    string
	CriadoEm   time.Time
}

// Action kinds recorded by the front-end.
const (
	AcaoBusca    = "busca"
	AcaoDownload = "download"
	AcaoCancel   = "cancelamento"
	AcaoEmissao  = "emissao"
)

//go:generate mockgen -source=history.go -destination=repository_mock.go -package=history
type Repository interface {
	Append(ctx context.Context, e *Evento) error
	List(ctx context.Context, limit int) ([]*Evento, error)
	Clear(ctx context.Context) error
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Record appends one event. Timestamp and id are filled in here so callers
// only say what happened.
func (s *Service) Record(ctx context.Context, acao, referencia, detalhe string) error {
	return s.repo.Append(ctx, &Evento{
		ID:         uuid.New(),
		Acao:       acao,
		Referencia: referencia,
		Detalhe:    detalhe,
		CriadoEm:   time.Now(),
	})
}

// List returns the most recent events, newest first.
func (s *Service) List(ctx context.Context, limit int) ([]*Evento, error) {
	return s.repo.List(ctx, limit)
}

// Clear wipes the whole history.
func (s *Service) Clear(ctx context.Context) error {
	return s.repo.Clear(ctx)
}
