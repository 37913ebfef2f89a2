// Package memory implements the store repositories on in-process maps. It
// backs development runs and tests. Transactions work on a copy of the state
// that replaces the live state only when fn succeeds.
package memory

import (
	"context"
	"maps"
	"sort"
	"sync"
	"time"

	"github.com/hospital/hospital/internal/model"
	"github.com/hospital/hospital/internal/store"
)

type table[T any] struct {
	rows map[int64]T
	next int64
}

func newTable[T any]() *table[T] {
	return &table[T]{rows: map[int64]T{}}
}

func (t *table[T]) clone() *table[T] {
	return &table[T]{rows: maps.Clone(t.rows), next: t.next}
}

func (t *table[T]) nextID() int64 {
	t.next++
	return t.next
}

// ids returns the ids of the rows matching keep, ascending.
func (t *table[T]) ids(keep func(T) bool) []int64 {
	ids := make([]int64, 0, len(t.rows))
	for id, row := range t.rows {
		if keep == nil || keep(row) {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// page returns copies of the matching rows in id order along with the total
// number of matches.
func (t *table[T]) page(limit, offset int, keep func(T) bool) ([]*T, int) {
	ids := t.ids(keep)
	total := len(ids)
	if offset >= total {
		return []*T{}, total
	}
	end := total
	if limit > 0 && offset+limit < total {
		end = offset + limit
	}
	out := make([]*T, 0, end-offset)
	for _, id := range ids[offset:end] {
		row := t.rows[id]
		out = append(out, &row)
	}
	return out, total
}

type state struct {
	doctors      *table[model.Doctor]
	patients     *table[model.Patient]
	procedures   *table[model.Procedure]
	rooms        *table[model.Room]
	shifts       *table[model.Shift]
	appointments *table[model.Appointment]
	schedules    map[model.ScheduleKey]model.Schedule
	activity     []model.ActivityEntry
}

func newState() *state {
	return &state{
		doctors:      newTable[model.Doctor](),
		patients:     newTable[model.Patient](),
		procedures:   newTable[model.Procedure](),
		rooms:        newTable[model.Room](),
		shifts:       newTable[model.Shift](),
		appointments: newTable[model.Appointment](),
		schedules:    map[model.ScheduleKey]model.Schedule{},
	}
}

func (s *state) clone() *state {
	return &state{
		doctors:      s.doctors.clone(),
		patients:     s.patients.clone(),
		procedures:   s.procedures.clone(),
		rooms:        s.rooms.clone(),
		shifts:       s.shifts.clone(),
		appointments: s.appointments.clone(),
		schedules:    maps.Clone(s.schedules),
		activity:     append([]model.ActivityEntry(nil), s.activity...),
	}
}

// DB holds the live state. Writers serialize on mu; a transaction holds mu
// for its whole duration.
type DB struct {
	mu    sync.RWMutex
	state *state
	nowFn func() time.Time
}

// Option configures a DB.
type Option func(*DB)

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(db *DB) { db.nowFn = now }
}

// NewDB returns an empty in-memory database.
func NewDB(opts ...Option) *DB {
	db := &DB{state: newState(), nowFn: func() time.Time { return time.Now().UTC() }}
	for _, opt := range opts {
		opt(db)
	}
	return db
}

// New returns a Store backed by a fresh in-memory database.
func New(opts ...Option) *store.Store {
	return NewDB(opts...).Store()
}

// Store returns the repositories bound to db.
func (db *DB) Store() *store.Store {
	return &store.Store{
		Doctors:      &doctorRepo{db},
		Patients:     &patientRepo{db},
		Procedures:   &procedureRepo{db},
		Rooms:        &roomRepo{db},
		Shifts:       &shiftRepo{db},
		Schedules:    &scheduleRepo{db},
		Appointments: &appointmentRepo{db},
		Activity:     &activityRepo{db},
		Tx:           db,
	}
}

// Ping reports the context error, if any. The in-memory database is always
// reachable.
func (db *DB) Ping(ctx context.Context) error {
	return ctx.Err()
}

type txKey struct{}

type tx struct {
	db    *DB
	state *state
}

func (db *DB) txFrom(ctx context.Context) *tx {
	if t, ok := ctx.Value(txKey{}).(*tx); ok && t.db == db {
		return t
	}
	return nil
}

// WithTx runs fn against a private copy of the state. The copy replaces the
// live state when fn returns nil; otherwise it is discarded. Nested calls
// join the outer transaction.
func (db *DB) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if db.txFrom(ctx) != nil {
		return fn(ctx)
	}
	if err := ctx.Err(); err != nil {
		return model.Unavailable("begin transaction", err)
	}

	db.mu.Lock()
	defer db.mu.Unlock()

	t := &tx{db: db, state: db.state.clone()}
	if err := fn(context.WithValue(ctx, txKey{}, t)); err != nil {
		return err
	}
	db.state = t.state
	return nil
}

func (db *DB) read(ctx context.Context, fn func(*state) error) error {
	if t := db.txFrom(ctx); t != nil {
		return fn(t.state)
	}
	if err := ctx.Err(); err != nil {
		return model.Unavailable("read", err)
	}
	db.mu.RLock()
	defer db.mu.RUnlock()
	return fn(db.state)
}

// write runs fn in the caller's transaction, or in an implicit one.
func (db *DB) write(ctx context.Context, fn func(*state) error) error {
	if t := db.txFrom(ctx); t != nil {
		return fn(t.state)
	}
	return db.WithTx(ctx, func(ctx context.Context) error {
		return fn(db.txFrom(ctx).state)
	})
}

func (db *DB) now() time.Time { return db.nowFn() }
