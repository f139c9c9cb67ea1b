package history_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DMCFaria/nota-fiscal-rj-sub000/internal/history"
)

func TestService_RecordAndList(t *testing.T) {
	svc := history.NewService(history.NewMemoryRepository())
	ctx := context.Background()

	require.NoError(t, svc.Record(ctx, history.AcaoBusca, "F-1", ""))
	require.NoError(t, svc.Record(ctx, history.AcaoDownload, "PROTO-1", "./downloads/nfse_PROTO-1.pdf"))
	require.NoError(t, svc.Record(ctx, history.AcaoCancel, "PROTO-2", "valor incorreto"))

	eventos, err := svc.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, eventos, 3)

	// Newest first.
	assert.Equal(t, history.AcaoCancel, eventos[0].Acao)
	assert.Equal(t, history.AcaoBusca, eventos[2].Acao)

	for _, e := range eventos {
		assert.NotEmpty(t, e.ID)
		assert.False(t, e.CriadoEm.IsZero())
	}
}

func TestService_ListLimit(t *testing.T) {
	svc := history.NewService(history.NewMemoryRepository())
	ctx := context.Background()

	for range 5 {
		require.NoError(t, svc.Record(ctx, history.AcaoBusca, "F-1", ""))
	}

	eventos, err := svc.List(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, eventos, 2)
}

func TestService_Clear(t *testing.T) {
	svc := history.NewService(history.NewMemoryRepository())
	ctx := context.Background()

	require.NoError(t, svc.Record(ctx, history.AcaoEmissao, "rps", "emitidas: 2, falharam: 0"))
	require.NoError(t, svc.Clear(ctx))

	eventos, err := svc.List(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, eventos)
}
