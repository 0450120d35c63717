package composables

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/require"

	"github.com/transapp/opct/modules/core/domain/aggregates/user"
)

type stubTx struct{ pgx.Tx }

func TestInTxJoinsExistingTransaction(t *testing.T) {
	ctx := WithTx(context.Background(), stubTx{})

	var called bool
	err := InTx(ctx, func(txCtx context.Context) error {
		called = true
		tx, err := UseTx(txCtx)
		require.NoError(t, err)
		require.Equal(t, stubTx{}, tx)
		return nil
	})
	require.NoError(t, err)
	require.True(t, called)
}

func TestInTxRequiresPool(t *testing.T) {
	err := InTx(context.Background(), func(context.Context) error {
		t.Fatal("fn must not run without a pool or transaction")
		return nil
	})
	require.ErrorIs(t, err, ErrNoPool)
}

func TestUseTxFallsBackToPool(t *testing.T) {
	_, err := UseTx(context.Background())
	require.ErrorIs(t, err, ErrNoPool)
}

func TestUseUser(t *testing.T) {
	_, err := UseUser(context.Background())
	require.ErrorIs(t, err, ErrNoUserInContext)

	now := time.Now()
	actor := user.Hydrate(7, "ana@example.com", "Ana", "Rojas", 1, []string{user.GroupUser}, "", false, nil, now, now)
	got, err := UseUser(WithUser(context.Background(), actor))
	require.NoError(t, err)
	require.Equal(t, int64(7), got.ID())
	require.Equal(t, "ana@example.com", got.Email())
}
