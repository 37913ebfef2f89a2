package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/hospital/hospital/internal/model"
	"github.com/hospital/hospital/pkg/civil"
)

type shiftRepo struct{ db *DB }

func (r *shiftRepo) Create(ctx context.Context, sh *model.Shift) error {
	return r.db.write(ctx, func(s *state) error {
		sh.ID = s.shifts.nextID()
		sh.CreatedAt = r.db.now()
		sh.UpdatedAt = sh.CreatedAt
		s.shifts.rows[sh.ID] = *sh
		return nil
	})
}

func (r *shiftRepo) GetByID(ctx context.Context, id int64) (*model.Shift, error) {
	var out *model.Shift
	err := r.db.read(ctx, func(s *state) error {
		sh, ok := s.shifts.rows[id]
		if !ok {
			return model.ErrNotFound
		}
		out = &sh
		return nil
	})
	return out, err
}

// LockForUpdate is GetByID: a transaction already holds the database lock.
func (r *shiftRepo) LockForUpdate(ctx context.Context, id int64) (*model.Shift, error) {
	return r.GetByID(ctx, id)
}

func (r *shiftRepo) Update(ctx context.Context, sh *model.Shift) error {
	return r.db.write(ctx, func(s *state) error {
		cur, ok := s.shifts.rows[sh.ID]
		if !ok {
			return model.ErrNotFound
		}
		sh.CreatedAt = cur.CreatedAt
		sh.UpdatedAt = r.db.now()
		s.shifts.rows[sh.ID] = *sh
		return nil
	})
}

func (r *shiftRepo) Delete(ctx context.Context, id int64) error {
	return r.db.write(ctx, func(s *state) error {
		for k := range s.schedules {
			if k.ShiftID == id {
				return conflict("delete shift", model.KindShift, id)
			}
		}
		delete(s.shifts.rows, id)
		return nil
	})
}

func (r *shiftRepo) List(ctx context.Context, limit, offset int) ([]*model.Shift, int, error) {
	var out []*model.Shift
	var total int
	err := r.db.read(ctx, func(s *state) error {
		out, total = s.shifts.page(limit, offset, nil)
		return nil
	})
	return out, total, err
}

func (r *shiftRepo) ListByDate(ctx context.Context, date civil.Date) ([]*model.Shift, error) {
	prev := date.AddDays(-1)
	var out []*model.Shift
	err := r.db.read(ctx, func(s *state) error {
		out, _ = s.shifts.page(0, 0, func(sh model.Shift) bool {
			return sh.Date == date || (sh.Date == prev && sh.Overnight())
		})
		return nil
	})
	sortShifts(out)
	return out, err
}

func (r *shiftRepo) ListByDoctor(ctx context.Context, doctorID int64, limit, offset int) ([]*model.Shift, int, error) {
	var all []*model.Shift
	err := r.db.read(ctx, func(s *state) error {
		all, _ = s.shifts.page(0, 0, func(sh model.Shift) bool {
			_, ok := s.schedules[model.ScheduleKey{DoctorID: doctorID, ShiftID: sh.ID}]
			return ok
		})
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	sortShifts(all)

	total := len(all)
	if offset >= total {
		return []*model.Shift{}, total, nil
	}
	end := total
	if limit > 0 && offset+limit < total {
		end = offset + limit
	}
	return all[offset:end], total, nil
}

// sortShifts orders by date, start time and id.
func sortShifts(shifts []*model.Shift) {
	sort.SliceStable(shifts, func(i, j int) bool {
		if shifts[i].Date != shifts[j].Date {
			return shifts[i].Date.Before(shifts[j].Date)
		}
		if shifts[i].StartTime != shifts[j].StartTime {
			return shifts[i].StartTime.Before(shifts[j].StartTime)
		}
		return shifts[i].ID < shifts[j].ID
	})
}

type scheduleRepo struct{ db *DB }

func (r *scheduleRepo) Get(ctx context.Context, doctorID, shiftID int64) (*model.Schedule, error) {
	var out *model.Schedule
	err := r.db.read(ctx, func(s *state) error {
		sc, ok := s.schedules[model.ScheduleKey{DoctorID: doctorID, ShiftID: shiftID}]
		if !ok {
			return model.ErrNotFound
		}
		out = &sc
		return nil
	})
	return out, err
}

func (r *scheduleRepo) Insert(ctx context.Context, sc *model.Schedule) (bool, error) {
	inserted := false
	err := r.db.write(ctx, func(s *state) error {
		if _, ok := s.doctors.rows[sc.DoctorID]; !ok {
			return fmt.Errorf("insert schedule: %w: doctor %d does not exist", model.ErrConflict, sc.DoctorID)
		}
		if _, ok := s.shifts.rows[sc.ShiftID]; !ok {
			return fmt.Errorf("insert schedule: %w: shift %d does not exist", model.ErrConflict, sc.ShiftID)
		}
		if cur, ok := s.schedules[sc.Key()]; ok {
			sc.CreatedAt = cur.CreatedAt
			return nil
		}
		sc.CreatedAt = r.db.now()
		s.schedules[sc.Key()] = *sc
		inserted = true
		return nil
	})
	return inserted, err
}

func (r *scheduleRepo) Delete(ctx context.Context, doctorID, shiftID int64) error {
	return r.db.write(ctx, func(s *state) error {
		delete(s.schedules, model.ScheduleKey{DoctorID: doctorID, ShiftID: shiftID})
		return nil
	})
}

func (r *scheduleRepo) list(ctx context.Context, keep func(model.ScheduleKey) bool) ([]*model.Schedule, error) {
	var out []*model.Schedule
	err := r.db.read(ctx, func(s *state) error {
		for k, sc := range s.schedules {
			if keep(k) {
				sc := sc
				out = append(out, &sc)
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool {
		if out[i].ShiftID != out[j].ShiftID {
			return out[i].ShiftID < out[j].ShiftID
		}
		return out[i].DoctorID < out[j].DoctorID
	})
	return out, err
}

func (r *scheduleRepo) ListByShift(ctx context.Context, shiftID int64) ([]*model.Schedule, error) {
	return r.list(ctx, func(k model.ScheduleKey) bool { return k.ShiftID == shiftID })
}

func (r *scheduleRepo) ListByDoctor(ctx context.Context, doctorID int64) ([]*model.Schedule, error) {
	return r.list(ctx, func(k model.ScheduleKey) bool { return k.DoctorID == doctorID })
}

func (r *scheduleRepo) DeleteByShift(ctx context.Context, shiftID int64) (int, error) {
	n := 0
	err := r.db.write(ctx, func(s *state) error {
		for k := range s.schedules {
			if k.ShiftID == shiftID {
				delete(s.schedules, k)
				n++
			}
		}
		return nil
	})
	return n, err
}
