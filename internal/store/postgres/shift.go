package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/hospital/hospital/internal/model"
	"github.com/hospital/hospital/pkg/civil"
)

// =========== Shift Repository ===========

type shiftRepo struct{ base }

const shiftCols = `id, date, start_time, end_time, created_at, updated_at`

func scanShift(row pgx.Row) (*model.Shift, error) {
	var s model.Shift
	err := row.Scan(&s.ID, &s.Date, &s.StartTime, &s.EndTime, &s.CreatedAt, &s.UpdatedAt)
	return &s, err
}

func (r *shiftRepo) Create(ctx context.Context, s *model.Shift) error {
	err := r.conn(ctx).QueryRow(ctx, `
		INSERT INTO shift (date, start_time, end_time)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at`,
		s.Date, s.StartTime, s.EndTime,
	).Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt)
	return mapErr("create shift", err)
}

func (r *shiftRepo) GetByID(ctx context.Context, id int64) (*model.Shift, error) {
	s, err := scanShift(r.conn(ctx).QueryRow(ctx, `SELECT `+shiftCols+` FROM shift WHERE id = $1`, id))
	if err != nil {
		return nil, mapErr("get shift", err)
	}
	return s, nil
}

func (r *shiftRepo) LockForUpdate(ctx context.Context, id int64) (*model.Shift, error) {
	s, err := scanShift(r.conn(ctx).QueryRow(ctx, `SELECT `+shiftCols+` FROM shift WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		return nil, mapErr("lock shift", err)
	}
	return s, nil
}

func (r *shiftRepo) Update(ctx context.Context, s *model.Shift) error {
	err := r.conn(ctx).QueryRow(ctx, `
		UPDATE shift SET date = $2, start_time = $3, end_time = $4, updated_at = NOW()
		WHERE id = $1
		RETURNING created_at, updated_at`,
		s.ID, s.Date, s.StartTime, s.EndTime,
	).Scan(&s.CreatedAt, &s.UpdatedAt)
	return mapErr("update shift", err)
}

func (r *shiftRepo) Delete(ctx context.Context, id int64) error {
	return execDelete(ctx, r.conn(ctx), "delete shift", `DELETE FROM shift WHERE id = $1`, id)
}

func (r *shiftRepo) List(ctx context.Context, limit, offset int) ([]*model.Shift, int, error) {
	return page(ctx, r.conn(ctx), "list shifts",
		`SELECT COUNT(*) FROM shift`,
		`SELECT `+shiftCols+` FROM shift ORDER BY id LIMIT $1 OFFSET $2`,
		scanShift, limit, offset)
}

func (r *shiftRepo) ListByDate(ctx context.Context, date civil.Date) ([]*model.Shift, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+shiftCols+` FROM shift
		WHERE date = $1 OR (date = $2 AND end_time <= start_time)
		ORDER BY date, start_time, id`,
		date, date.AddDays(-1))
	if err != nil {
		return nil, mapErr("list shifts by date", err)
	}
	items, err := collect(rows, scanShift)
	return items, mapErr("list shifts by date", err)
}

const rosteredShiftCols = `s.id, s.date, s.start_time, s.end_time, s.created_at, s.updated_at`

func (r *shiftRepo) ListByDoctor(ctx context.Context, doctorID int64, limit, offset int) ([]*model.Shift, int, error) {
	return page(ctx, r.conn(ctx), "list shifts by doctor",
		`SELECT COUNT(*) FROM shift s JOIN schedule sc ON sc.shift_id = s.id WHERE sc.doctor_id = $1`,
		`SELECT `+rosteredShiftCols+` FROM shift s
		JOIN schedule sc ON sc.shift_id = s.id
		WHERE sc.doctor_id = $1
		ORDER BY s.date, s.start_time, s.id
		LIMIT $2 OFFSET $3`,
		scanShift, limit, offset, doctorID)
}

// =========== Schedule Repository ===========

type scheduleRepo struct{ base }

const scheduleCols = `doctor_id, shift_id, created_at`

func scanSchedule(row pgx.Row) (*model.Schedule, error) {
	var s model.Schedule
	err := row.Scan(&s.DoctorID, &s.ShiftID, &s.CreatedAt)
	return &s, err
}

func (r *scheduleRepo) Get(ctx context.Context, doctorID, shiftID int64) (*model.Schedule, error) {
	s, err := scanSchedule(r.conn(ctx).QueryRow(ctx,
		`SELECT `+scheduleCols+` FROM schedule WHERE doctor_id = $1 AND shift_id = $2`, doctorID, shiftID))
	if err != nil {
		return nil, mapErr("get schedule", err)
	}
	return s, nil
}

// Insert relies on the composite primary key: a duplicate pair hits
// ON CONFLICT DO NOTHING, returns no row and reports false.
func (r *scheduleRepo) Insert(ctx context.Context, s *model.Schedule) (bool, error) {
	err := r.conn(ctx).QueryRow(ctx, `
		INSERT INTO schedule (doctor_id, shift_id)
		VALUES ($1, $2)
		ON CONFLICT (doctor_id, shift_id) DO NOTHING
		RETURNING created_at`,
		s.DoctorID, s.ShiftID,
	).Scan(&s.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, mapErr("insert schedule", err)
	}
	return true, nil
}

func (r *scheduleRepo) Delete(ctx context.Context, doctorID, shiftID int64) error {
	return execDelete(ctx, r.conn(ctx), "delete schedule",
		`DELETE FROM schedule WHERE doctor_id = $1 AND shift_id = $2`, doctorID, shiftID)
}

func (r *scheduleRepo) ListByShift(ctx context.Context, shiftID int64) ([]*model.Schedule, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+scheduleCols+` FROM schedule WHERE shift_id = $1 ORDER BY doctor_id`, shiftID)
	if err != nil {
		return nil, mapErr("list schedule by shift", err)
	}
	items, err := collect(rows, scanSchedule)
	return items, mapErr("list schedule by shift", err)
}

func (r *scheduleRepo) ListByDoctor(ctx context.Context, doctorID int64) ([]*model.Schedule, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+scheduleCols+` FROM schedule WHERE doctor_id = $1 ORDER BY shift_id`, doctorID)
	if err != nil {
		return nil, mapErr("list schedule by doctor", err)
	}
	items, err := collect(rows, scanSchedule)
	return items, mapErr("list schedule by doctor", err)
}

func (r *scheduleRepo) DeleteByShift(ctx context.Context, shiftID int64) (int, error) {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM schedule WHERE shift_id = $1`, shiftID)
	if err != nil {
		return 0, mapErr("delete schedule by shift", err)
	}
	return int(tag.RowsAffected()), nil
}
