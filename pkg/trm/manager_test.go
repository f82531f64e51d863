package trm

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/require"
)

type fakeTx struct {
	pgx.Tx
	commits   int
	rollbacks int
}

func (f *fakeTx) Commit(context.Context) error   { f.commits++; return nil }
func (f *fakeTx) Rollback(context.Context) error { f.rollbacks++; return nil }

type fakeDB struct {
	begins int
	opts   pgx.TxOptions
	tx     *fakeTx
}

func (f *fakeDB) BeginTx(_ context.Context, opts pgx.TxOptions) (pgx.Tx, error) {
	f.begins++
	f.opts = opts
	f.tx = &fakeTx{}
	return f.tx, nil
}

func TestDoCommitsOnSuccess(t *testing.T) {
	db := &fakeDB{}
	m := New(db)

	err := m.Do(context.Background(), func(ctx context.Context) error {
		_, ok := ctx.Value(TxKey).(pgx.Tx)
		require.True(t, ok)
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, 1, db.tx.commits)
	require.Zero(t, db.tx.rollbacks)
}

func TestDoRollsBackOnError(t *testing.T) {
	db := &fakeDB{}
	m := New(db)
	boom := errors.New("boom")

	err := m.Do(context.Background(), func(context.Context) error { return boom })
	require.ErrorIs(t, err, boom)
	require.Equal(t, 1, db.tx.rollbacks)
	require.Zero(t, db.tx.commits)
}

func TestNestedDoJoinsOuterTx(t *testing.T) {
	db := &fakeDB{}
	m := New(db)

	err := m.Do(context.Background(), func(ctx context.Context) error {
		return m.Do(ctx, func(context.Context) error { return nil })
	})
	require.NoError(t, err)
	require.Equal(t, 1, db.begins)
	require.Equal(t, 1, db.tx.commits)
}

func TestDoReadOnlyPassesOptions(t *testing.T) {
	db := &fakeDB{}
	require.NoError(t, New(db).DoReadOnly(context.Background(), func(context.Context) error { return nil }))
	require.Equal(t, pgx.ReadOnly, db.opts.AccessMode)
}
