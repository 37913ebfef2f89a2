package memory

import (
	"context"
	"fmt"

	"github.com/hospital/hospital/internal/model"
)

func conflict(op string, kind model.Kind, id int64) error {
	return fmt.Errorf("%s: %w: %s %d is still referenced", op, model.ErrConflict, kind, id)
}

func (s *state) doctorReferenced(id int64) bool {
	for k := range s.schedules {
		if k.DoctorID == id {
			return true
		}
	}
	for _, a := range s.appointments.rows {
		if a.DoctorID == id {
			return true
		}
	}
	return false
}

type doctorRepo struct{ db *DB }

func (r *doctorRepo) Create(ctx context.Context, d *model.Doctor) error {
	return r.db.write(ctx, func(s *state) error {
		d.ID = s.doctors.nextID()
		d.CreatedAt = r.db.now()
		d.UpdatedAt = d.CreatedAt
		s.doctors.rows[d.ID] = *d
		return nil
	})
}

func (r *doctorRepo) GetByID(ctx context.Context, id int64) (*model.Doctor, error) {
	var out *model.Doctor
	err := r.db.read(ctx, func(s *state) error {
		d, ok := s.doctors.rows[id]
		if !ok {
			return model.ErrNotFound
		}
		out = &d
		return nil
	})
	return out, err
}

func (r *doctorRepo) Update(ctx context.Context, d *model.Doctor) error {
	return r.db.write(ctx, func(s *state) error {
		cur, ok := s.doctors.rows[d.ID]
		if !ok {
			return model.ErrNotFound
		}
		d.CreatedAt = cur.CreatedAt
		d.UpdatedAt = r.db.now()
		s.doctors.rows[d.ID] = *d
		return nil
	})
}

func (r *doctorRepo) Delete(ctx context.Context, id int64) error {
	return r.db.write(ctx, func(s *state) error {
		if s.doctorReferenced(id) {
			return conflict("delete doctor", model.KindDoctor, id)
		}
		delete(s.doctors.rows, id)
		return nil
	})
}

func (r *doctorRepo) List(ctx context.Context, limit, offset int) ([]*model.Doctor, int, error) {
	var out []*model.Doctor
	var total int
	err := r.db.read(ctx, func(s *state) error {
		out, total = s.doctors.page(limit, offset, nil)
		return nil
	})
	return out, total, err
}

type patientRepo struct{ db *DB }

func (r *patientRepo) Create(ctx context.Context, p *model.Patient) error {
	return r.db.write(ctx, func(s *state) error {
		p.ID = s.patients.nextID()
		p.CreatedAt = r.db.now()
		p.UpdatedAt = p.CreatedAt
		s.patients.rows[p.ID] = *p
		return nil
	})
}

func (r *patientRepo) GetByID(ctx context.Context, id int64) (*model.Patient, error) {
	var out *model.Patient
	err := r.db.read(ctx, func(s *state) error {
		p, ok := s.patients.rows[id]
		if !ok {
			return model.ErrNotFound
		}
		out = &p
		return nil
	})
	return out, err
}

func (r *patientRepo) Update(ctx context.Context, p *model.Patient) error {
	return r.db.write(ctx, func(s *state) error {
		cur, ok := s.patients.rows[p.ID]
		if !ok {
			return model.ErrNotFound
		}
		p.CreatedAt = cur.CreatedAt
		p.UpdatedAt = r.db.now()
		s.patients.rows[p.ID] = *p
		return nil
	})
}

func (r *patientRepo) Delete(ctx context.Context, id int64) error {
	return r.db.write(ctx, func(s *state) error {
		for _, a := range s.appointments.rows {
			if a.PatientID == id {
				return conflict("delete patient", model.KindPatient, id)
			}
		}
		delete(s.patients.rows, id)
		return nil
	})
}

func (r *patientRepo) List(ctx context.Context, limit, offset int) ([]*model.Patient, int, error) {
	var out []*model.Patient
	var total int
	err := r.db.read(ctx, func(s *state) error {
		out, total = s.patients.page(limit, offset, nil)
		return nil
	})
	return out, total, err
}

type procedureRepo struct{ db *DB }

func (r *procedureRepo) Create(ctx context.Context, p *model.Procedure) error {
	return r.db.write(ctx, func(s *state) error {
		p.ID = s.procedures.nextID()
		p.CreatedAt = r.db.now()
		p.UpdatedAt = p.CreatedAt
		s.procedures.rows[p.ID] = *p
		return nil
	})
}

func (r *procedureRepo) GetByID(ctx context.Context, id int64) (*model.Procedure, error) {
	var out *model.Procedure
	err := r.db.read(ctx, func(s *state) error {
		p, ok := s.procedures.rows[id]
		if !ok {
			return model.ErrNotFound
		}
		out = &p
		return nil
	})
	return out, err
}

func (r *procedureRepo) Update(ctx context.Context, p *model.Procedure) error {
	return r.db.write(ctx, func(s *state) error {
		cur, ok := s.procedures.rows[p.ID]
		if !ok {
			return model.ErrNotFound
		}
		p.CreatedAt = cur.CreatedAt
		p.UpdatedAt = r.db.now()
		s.procedures.rows[p.ID] = *p
		return nil
	})
}

func (r *procedureRepo) Delete(ctx context.Context, id int64) error {
	return r.db.write(ctx, func(s *state) error {
		for _, a := range s.appointments.rows {
			if a.ProcedureID == id {
				return conflict("delete procedure", model.KindProcedure, id)
			}
		}
		delete(s.procedures.rows, id)
		return nil
	})
}

func (r *procedureRepo) List(ctx context.Context, limit, offset int) ([]*model.Procedure, int, error) {
	var out []*model.Procedure
	var total int
	err := r.db.read(ctx, func(s *state) error {
		out, total = s.procedures.page(limit, offset, nil)
		return nil
	})
	return out, total, err
}

type roomRepo struct{ db *DB }

func (r *roomRepo) Create(ctx context.Context, rm *model.Room) error {
	return r.db.write(ctx, func(s *state) error {
		rm.ID = s.rooms.nextID()
		rm.CreatedAt = r.db.now()
		rm.UpdatedAt = rm.CreatedAt
		s.rooms.rows[rm.ID] = *rm
		return nil
	})
}

func (r *roomRepo) GetByID(ctx context.Context, id int64) (*model.Room, error) {
	var out *model.Room
	err := r.db.read(ctx, func(s *state) error {
		rm, ok := s.rooms.rows[id]
		if !ok {
			return model.ErrNotFound
		}
		out = &rm
		return nil
	})
	return out, err
}

func (r *roomRepo) Update(ctx context.Context, rm *model.Room) error {
	return r.db.write(ctx, func(s *state) error {
		cur, ok := s.rooms.rows[rm.ID]
		if !ok {
			return model.ErrNotFound
		}
		rm.CreatedAt = cur.CreatedAt
		rm.UpdatedAt = r.db.now()
		s.rooms.rows[rm.ID] = *rm
		return nil
	})
}

func (r *roomRepo) Delete(ctx context.Context, id int64) error {
	return r.db.write(ctx, func(s *state) error {
		for _, a := range s.appointments.rows {
			if a.RoomID == id {
				return conflict("delete room", model.KindRoom, id)
			}
		}
		delete(s.rooms.rows, id)
		return nil
	})
}

func (r *roomRepo) List(ctx context.Context, limit, offset int) ([]*model.Room, int, error) {
	var out []*model.Room
	var total int
	err := r.db.read(ctx, func(s *state) error {
		out, total = s.rooms.page(limit, offset, nil)
		return nil
	})
	return out, total, err
}
