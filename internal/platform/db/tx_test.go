package db

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTx struct {
	pgx.Tx
	committed  bool
	rolledBack bool
}

func (f *fakeTx) Commit(ctx context.Context) error {
	f.committed = true
	return nil
}

func (f *fakeTx) Rollback(ctx context.Context) error {
	if f.committed {
		return pgx.ErrTxClosed
	}
	f.rolledBack = true
	return nil
}

type fakeDB struct {
	tx       *fakeTx
	beginErr error
}

func (f *fakeDB) BeginTx(ctx context.Context, opts pgx.TxOptions) (pgx.Tx, error) {
	if f.beginErr != nil {
		return nil, f.beginErr
	}
	f.tx = &fakeTx{}
	return f.tx, nil
}

func TestWithTxCommitsOnSuccess(t *testing.T) {
	conn := &fakeDB{}
	err := WithTx(context.Background(), conn, func(tx pgx.Tx) error { return nil })
	require.NoError(t, err)
	assert.True(t, conn.tx.committed)
	assert.False(t, conn.tx.rolledBack)
}

func TestWithTxRollsBackOnError(t *testing.T) {
	conn := &fakeDB{}
	boom := errors.New("boom")
	err := WithTx(context.Background(), conn, func(tx pgx.Tx) error { return boom })
	require.ErrorIs(t, err, boom)
	assert.False(t, conn.tx.committed)
	assert.True(t, conn.tx.rolledBack)
}

func TestWithTxRollsBackOnPanic(t *testing.T) {
	conn := &fakeDB{}
	require.Panics(t, func() {
		_ = WithTx(context.Background(), conn, func(tx pgx.Tx) error { panic("handler blew up") })
	})
	assert.False(t, conn.tx.committed)
	assert.True(t, conn.tx.rolledBack)
}

func TestWithTxBeginFailure(t *testing.T) {
	conn := &fakeDB{beginErr: errors.New("pool exhausted")}
	err := WithTx(context.Background(), conn, func(tx pgx.Tx) error { return nil })
	require.Error(t, err)
}
