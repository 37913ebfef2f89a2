// Package postgres implements the store repositories on PostgreSQL via pgx.
// Every repository resolves its connection per call so that a transaction
// opened by db.WithTx is joined transparently.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/hospital/hospital/internal/model"
	"github.com/hospital/hospital/internal/platform/db"
	"github.com/hospital/hospital/internal/store"
)

const foreignKeyViolation = "23503"

// New returns a Store whose repositories all share pool.
func New(pool db.Pool) *store.Store {
	b := base{pool: pool}
	return &store.Store{
		Doctors:      &doctorRepo{b},
		Patients:     &patientRepo{b},
		Procedures:   &procedureRepo{b},
		Rooms:        &roomRepo{b},
		Shifts:       &shiftRepo{b},
		Schedules:    &scheduleRepo{b},
		Appointments: &appointmentRepo{b},
		Activity:     &activityRepo{b},
		Tx:           db.NewTransactor(pool),
	}
}

type base struct {
	pool db.Pool
}

func (b base) conn(ctx context.Context) db.Querier {
	return db.Conn(ctx, b.pool)
}

// mapErr translates driver errors into model errors.
func mapErr(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return model.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == foreignKeyViolation {
		return fmt.Errorf("%s: %w: %s", op, model.ErrConflict, pgErr.ConstraintName)
	}
	return model.Unavailable(op, err)
}

func collect[T any](rows pgx.Rows, scan func(pgx.Row) (*T, error)) ([]*T, error) {
	defer rows.Close()
	var items []*T
	for rows.Next() {
		item, err := scan(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// page runs a COUNT query followed by a paginated SELECT. The select must
// leave its last two placeholders for LIMIT and OFFSET.
func page[T any](ctx context.Context, q db.Querier, op, countSQL, selectSQL string, scan func(pgx.Row) (*T, error), limit, offset int, args ...interface{}) ([]*T, int, error) {
	var total int
	if err := q.QueryRow(ctx, countSQL, args...).Scan(&total); err != nil {
		return nil, 0, mapErr(op, err)
	}
	rows, err := q.Query(ctx, selectSQL, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, mapErr(op, err)
	}
	items, err := collect(rows, scan)
	if err != nil {
		return nil, 0, mapErr(op, err)
	}
	return items, total, nil
}

func execDelete(ctx context.Context, q db.Querier, op, sql string, args ...interface{}) error {
	_, err := q.Exec(ctx, sql, args...)
	return mapErr(op, err)
}
