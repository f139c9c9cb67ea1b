package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/DMCFaria/nota-fiscal-rj-sub000/internal/history"
)

// Store is the Postgres adapter for the history port.
type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Append(ctx context.Context, e *history.Evento) error {
	query := `
		INSERT INTO historico (id, acao, referencia, detalhe, criado_em)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := s.db.ExecContext(ctx, query, e.ID, e.Acao, e.Referencia, e.Detalhe, e.CriadoEm)
	if err != nil {
		return fmt.Errorf("appending history event: %w", err)
	}

	return nil
}

func (s *Store) List(ctx context.Context, limit int) ([]*history.Evento, error) {
	query := `
		SELECT id, acao, referencia, detalhe, criado_em
		FROM historico
		ORDER BY criado_em DESC
	`

	var args []any

	if limit > 0 {
		query += " LIMIT $1"

		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing history: %w", err)
	}
	defer rows.Close()

	var eventos []*history.Evento

	for rows.Next() {
		var e history.Evento
		if err := rows.Scan(&e.ID, &e.Acao, &e.Referencia, &e.Detalhe, &e.CriadoEm); err != nil {
			return nil, fmt.Errorf("scanning history event: %w", err)
		}

		eventos = append(eventos, &e)
	}

	return eventos, rows.Err()
}

func (s *Store) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM historico`); err != nil {
		return fmt.Errorf("clearing history: %w", err)
	}

	return nil
}
