package repo

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Temutjin2k/ambulance-dispatch/pkg/trm"
)

// dbtx is the query surface shared by *pgxpool.Pool and pgx.Tx.
type dbtx interface {
	Exec(ctx context.Context, query string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, query string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, query string, args ...any) pgx.Row
}

// conn returns the transaction opened by trm.Manager.Do when ctx carries one,
// so accept and complete can touch rides and drivers atomically. Otherwise the pool.
func conn(ctx context.Context, db *pgxpool.Pool) dbtx {
	if tx, ok := ctx.Value(trm.TxKey).(pgx.Tx); ok && tx != nil {
		return tx
	}
	return db
}
