// Package store defines the persistence contract for the hospital entities.
// Implementations live in the postgres and memory subpackages.
package store

import (
	"context"

	"github.com/hospital/hospital/internal/model"
	"github.com/hospital/hospital/pkg/civil"
)

// DoctorRepository persists doctors.
type DoctorRepository interface {
	Create(ctx context.Context, d *model.Doctor) error
	GetByID(ctx context.Context, id int64) (*model.Doctor, error)
	Update(ctx context.Context, d *model.Doctor) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, limit, offset int) ([]*model.Doctor, int, error)
}

// PatientRepository persists patients.
type PatientRepository interface {
	Create(ctx context.Context, p *model.Patient) error
	GetByID(ctx context.Context, id int64) (*model.Patient, error)
	Update(ctx context.Context, p *model.Patient) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, limit, offset int) ([]*model.Patient, int, error)
}

// ProcedureRepository persists procedures.
type ProcedureRepository interface {
	Create(ctx context.Context, p *model.Procedure) error
	GetByID(ctx context.Context, id int64) (*model.Procedure, error)
	Update(ctx context.Context, p *model.Procedure) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, limit, offset int) ([]*model.Procedure, int, error)
}

// RoomRepository persists rooms.
type RoomRepository interface {
	Create(ctx context.Context, r *model.Room) error
	GetByID(ctx context.Context, id int64) (*model.Room, error)
	Update(ctx context.Context, r *model.Room) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, limit, offset int) ([]*model.Room, int, error)
}

// ShiftRepository persists shifts.
type ShiftRepository interface {
	Create(ctx context.Context, s *model.Shift) error
	GetByID(ctx context.Context, id int64) (*model.Shift, error)
	// LockForUpdate reads the shift and holds a row lock until the
	// enclosing transaction ends. Outside a transaction it behaves as GetByID.
	LockForUpdate(ctx context.Context, id int64) (*model.Shift, error)
	Update(ctx context.Context, s *model.Shift) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, limit, offset int) ([]*model.Shift, int, error)
	// ListByDate returns shifts starting on date plus overnight shifts that
	// started the day before and so reach into date.
	ListByDate(ctx context.Context, date civil.Date) ([]*model.Shift, error)
	// ListByDoctor pages through the shifts doctorID is rostered on, ordered
	// by date, start time and id.
	ListByDoctor(ctx context.Context, doctorID int64, limit, offset int) ([]*model.Shift, int, error)
}

// ScheduleRepository persists the doctor/shift assignment relation.
type ScheduleRepository interface {
	Get(ctx context.Context, doctorID, shiftID int64) (*model.Schedule, error)
	// Insert adds the pair. Inserting an existing pair is a no-op and
	// reports false.
	Insert(ctx context.Context, s *model.Schedule) (bool, error)
	Delete(ctx context.Context, doctorID, shiftID int64) error
	ListByShift(ctx context.Context, shiftID int64) ([]*model.Schedule, error)
	ListByDoctor(ctx context.Context, doctorID int64) ([]*model.Schedule, error)
	DeleteByShift(ctx context.Context, shiftID int64) (int, error)
}

// AppointmentRepository persists appointments.
type AppointmentRepository interface {
	Create(ctx context.Context, a *model.Appointment) error
	GetByID(ctx context.Context, id int64) (*model.Appointment, error)
	LockForUpdate(ctx context.Context, id int64) (*model.Appointment, error)
	Update(ctx context.Context, a *model.Appointment) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, limit, offset int) ([]*model.Appointment, int, error)
	ListByDoctor(ctx context.Context, doctorID int64, limit, offset int) ([]*model.Appointment, int, error)
	ListByPatient(ctx context.Context, patientID int64, limit, offset int) ([]*model.Appointment, int, error)
}

// ActivityRepository appends to and reads the activity log.
type ActivityRepository interface {
	Append(ctx context.Context, e *model.ActivityEntry) error
	List(ctx context.Context, limit, offset int) ([]*model.ActivityEntry, int, error)
}

// Transactor runs fn inside one transaction. The transaction travels in the
// context handed to fn; repositories called with that context join it. An
// error from fn rolls everything back. Nested calls join the outer
// transaction.
type Transactor interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// TransactorFunc adapts a function to Transactor.
type TransactorFunc func(ctx context.Context, fn func(ctx context.Context) error) error

func (f TransactorFunc) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return f(ctx, fn)
}

// Store bundles every repository with the transactor they share.
type Store struct {
	Doctors      DoctorRepository
	Patients     PatientRepository
	Procedures   ProcedureRepository
	Rooms        RoomRepository
	Shifts       ShiftRepository
	Schedules    ScheduleRepository
	Appointments AppointmentRepository
	Activity     ActivityRepository
	Tx           Transactor
}
