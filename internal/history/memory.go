package history

import (
	"context"
	"sync"
)

// MemoryRepository is an in-process adapter for the history port, used by
// tests and by the TUI when no database is configured.
type MemoryRepository struct {
	mu      sync.Mutex
	eventos []*Evento
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{}
}

func (r *MemoryRepository) Append(_ context.Context, e *Evento) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.eventos = append(r.eventos, e)

	return nil
}

func (r *MemoryRepository) List(_ context.Context, limit int) ([]*Evento, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]*Evento, 0, len(r.eventos))
	for i := len(r.eventos) - 1; i >= 0; i-- {
		if limit > 0 && len(out) == limit {
			break
		}

		out = append(out, r.eventos[i])
	}

	return out, nil
}

func (r *MemoryRepository) Clear(_ context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.eventos = nil

	return nil
}
