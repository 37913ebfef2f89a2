package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/hospital/hospital/internal/model"
)

type contextKey string

const DBTxKey contextKey = "db_tx"

// Querier is the query surface shared by *pgxpool.Pool, pgx.Tx and pgxmock.
type Querier interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

// Pool is a Querier that can open transactions.
type Pool interface {
	Querier
	Begin(ctx context.Context) (pgx.Tx, error)
}

// TxFromContext returns the transaction opened by WithTx, if any.
func TxFromContext(ctx context.Context) pgx.Tx {
	tx, _ := ctx.Value(DBTxKey).(pgx.Tx)
	return tx
}

// Conn returns the transaction carried by ctx, falling back to pool.
func Conn(ctx context.Context, pool Querier) Querier {
	if tx := TxFromContext(ctx); tx != nil {
		return tx
	}
	return pool
}

// WithTx runs fn inside a transaction on pool. The transaction is stored in
// the context passed to fn. If ctx already carries a transaction, fn joins
// it and the outer call decides commit or rollback. Begin and commit
// failures wrap model.ErrStoreUnavailable; errors from fn are returned as-is.
func WithTx(ctx context.Context, pool Pool, fn func(ctx context.Context) error) (err error) {
	if TxFromContext(ctx) != nil {
		return fn(ctx)
	}
	if pool == nil {
		return model.Unavailable("begin transaction", errors.New("no database pool configured"))
	}

	tx, err := pool.Begin(ctx)
	if err != nil {
		return model.Unavailable("begin transaction", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback(ctx)
			panic(p)
		}
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
				err = errors.Join(err, fmt.Errorf("rollback: %w", rbErr))
			}
		}
	}()

	if err = fn(context.WithValue(ctx, DBTxKey, tx)); err != nil {
		return err
	}
	if err = tx.Commit(ctx); err != nil {
		return model.Unavailable("commit transaction", err)
	}
	return nil
}

// Transactor binds WithTx to a pool.
type Transactor struct {
	pool Pool
}

func NewTransactor(pool Pool) *Transactor {
	return &Transactor{pool: pool}
}

func (t *Transactor) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return WithTx(ctx, t.pool, fn)
}
