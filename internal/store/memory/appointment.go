package memory

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/hospital/hospital/internal/model"
)

type appointmentRepo struct{ db *DB }

// checkRefs mirrors the foreign keys on the appointment table.
func (s *state) checkRefs(op string, a *model.Appointment) error {
	missing := func(kind model.Kind, id int64) error {
		return fmt.Errorf("%s: %w: %s %d does not exist", op, model.ErrConflict, kind, id)
	}
	if _, ok := s.patients.rows[a.PatientID]; !ok {
		return missing(model.KindPatient, a.PatientID)
	}
	if _, ok := s.doctors.rows[a.DoctorID]; !ok {
		return missing(model.KindDoctor, a.DoctorID)
	}
	if _, ok := s.procedures.rows[a.ProcedureID]; !ok {
		return missing(model.KindProcedure, a.ProcedureID)
	}
	if _, ok := s.rooms.rows[a.RoomID]; !ok {
		return missing(model.KindRoom, a.RoomID)
	}
	return nil
}

func (r *appointmentRepo) Create(ctx context.Context, a *model.Appointment) error {
	return r.db.write(ctx, func(s *state) error {
		if err := s.checkRefs("create appointment", a); err != nil {
			return err
		}
		a.ID = s.appointments.nextID()
		a.CreatedAt = r.db.now()
		a.UpdatedAt = a.CreatedAt
		s.appointments.rows[a.ID] = *a
		return nil
	})
}

func (r *appointmentRepo) GetByID(ctx context.Context, id int64) (*model.Appointment, error) {
	var out *model.Appointment
	err := r.db.read(ctx, func(s *state) error {
		a, ok := s.appointments.rows[id]
		if !ok {
			return model.ErrNotFound
		}
		out = &a
		return nil
	})
	return out, err
}

func (r *appointmentRepo) LockForUpdate(ctx context.Context, id int64) (*model.Appointment, error) {
	return r.GetByID(ctx, id)
}

func (r *appointmentRepo) Update(ctx context.Context, a *model.Appointment) error {
	return r.db.write(ctx, func(s *state) error {
		cur, ok := s.appointments.rows[a.ID]
		if !ok {
			return model.ErrNotFound
		}
		if err := s.checkRefs("update appointment", a); err != nil {
			return err
		}
		a.CreatedAt = cur.CreatedAt
		a.UpdatedAt = r.db.now()
		s.appointments.rows[a.ID] = *a
		return nil
	})
}

func (r *appointmentRepo) Delete(ctx context.Context, id int64) error {
	return r.db.write(ctx, func(s *state) error {
		delete(s.appointments.rows, id)
		return nil
	})
}

func (r *appointmentRepo) List(ctx context.Context, limit, offset int) ([]*model.Appointment, int, error) {
	return r.page(ctx, limit, offset, nil)
}

func (r *appointmentRepo) ListByDoctor(ctx context.Context, doctorID int64, limit, offset int) ([]*model.Appointment, int, error) {
	return r.page(ctx, limit, offset, func(a model.Appointment) bool { return a.DoctorID == doctorID })
}

func (r *appointmentRepo) ListByPatient(ctx context.Context, patientID int64, limit, offset int) ([]*model.Appointment, int, error) {
	return r.page(ctx, limit, offset, func(a model.Appointment) bool { return a.PatientID == patientID })
}

func (r *appointmentRepo) page(ctx context.Context, limit, offset int, keep func(model.Appointment) bool) ([]*model.Appointment, int, error) {
	var out []*model.Appointment
	var total int
	err := r.db.read(ctx, func(s *state) error {
		out, total = s.appointments.page(limit, offset, keep)
		return nil
	})
	return out, total, err
}

type activityRepo struct{ db *DB }

func (r *activityRepo) Append(ctx context.Context, e *model.ActivityEntry) error {
	return r.db.write(ctx, func(s *state) error {
		if e.ID == uuid.Nil {
			e.ID = uuid.New()
		}
		e.OccurredAt = r.db.now()
		s.activity = append(s.activity, *e)
		return nil
	})
}

// List returns the newest entries first.
func (r *activityRepo) List(ctx context.Context, limit, offset int) ([]*model.ActivityEntry, int, error) {
	var out []*model.ActivityEntry
	var total int
	err := r.db.read(ctx, func(s *state) error {
		total = len(s.activity)
		for i := total - 1 - offset; i >= 0; i-- {
			if limit > 0 && len(out) == limit {
				break
			}
			e := s.activity[i]
			out = append(out, &e)
		}
		return nil
	})
	if out == nil {
		out = []*model.ActivityEntry{}
	}
	return out, total, err
}
