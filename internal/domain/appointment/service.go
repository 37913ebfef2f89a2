// Package appointment books patients with a doctor, a procedure and a room.
package appointment

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/hospital/hospital/internal/model"
	"github.com/hospital/hospital/internal/platform/metrics"
	"github.com/hospital/hospital/internal/store"
	"github.com/hospital/hospital/pkg/civil"
)

// Input carries the caller-supplied fields of an appointment.
type Input struct {
	PatientID   int64
	DoctorID    int64
	ProcedureID int64
	RoomID      int64
	DateTime    civil.DateTime
}

// Filter narrows a listing to one doctor or one patient. Zero means any.
type Filter struct {
	DoctorID  int64
	PatientID int64
}

type Option func(*Service)

// WithShiftCoverage makes bookings fail with model.ErrOutsideShift unless the
// doctor is rostered on a shift covering the requested time.
func WithShiftCoverage(required bool) Option {
	return func(s *Service) { s.requireShift = required }
}

type Service struct {
	store        *store.Store
	logger       zerolog.Logger
	metrics      *metrics.Metrics
	requireShift bool
}

func NewService(s *store.Store, logger zerolog.Logger, m *metrics.Metrics, opts ...Option) *Service {
	svc := &Service{
		store:   s,
		logger:  logger.With().Str("component", "appointment").Logger(),
		metrics: m,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

// CreateAppointment resolves patient, doctor, procedure and room in that
// order and persists the booking. The first unresolved reference is
// reported and nothing is written.
func (s *Service) CreateAppointment(ctx context.Context, in Input) (*model.Appointment, error) {
	var out *model.Appointment
	err := s.store.Tx.WithTx(ctx, func(ctx context.Context) error {
		if err := s.check(ctx, in); err != nil {
			return err
		}
		a := &model.Appointment{}
		in.applyTo(a)
		if err := s.store.Appointments.Create(ctx, a); err != nil {
			return err
		}
		out = a
		return nil
	})
	s.observe("create", err)
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Int64("appointment_id", out.ID).
		Int64("patient_id", out.PatientID).
		Int64("doctor_id", out.DoctorID).
		Int64("room_id", out.RoomID).
		Str("date_time", out.DateTime.String()).
		Msg("appointment booked")
	return out, nil
}

// UpdateAppointment re-validates every reference and overwrites the
// booking in place.
func (s *Service) UpdateAppointment(ctx context.Context, id int64, in Input) (*model.Appointment, error) {
	var out *model.Appointment
	err := s.store.Tx.WithTx(ctx, func(ctx context.Context) error {
		a, err := s.store.Appointments.LockForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if err := s.check(ctx, in); err != nil {
			return err
		}
		in.applyTo(a)
		if err := s.store.Appointments.Update(ctx, a); err != nil {
			return err
		}
		out = a
		return nil
	})
	s.observe("update", err)
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Int64("appointment_id", id).
		Str("date_time", out.DateTime.String()).
		Msg("appointment updated")
	return out, nil
}

func (s *Service) DeleteAppointment(ctx context.Context, id int64) error {
	err := s.store.Tx.WithTx(ctx, func(ctx context.Context) error {
		if _, err := s.store.Appointments.LockForUpdate(ctx, id); err != nil {
			return err
		}
		return s.store.Appointments.Delete(ctx, id)
	})
	s.observe("delete", err)
	if err != nil {
		return err
	}
	s.logger.Info().Int64("appointment_id", id).Msg("appointment cancelled")
	return nil
}

func (s *Service) GetAppointment(ctx context.Context, id int64) (*model.Appointment, error) {
	return s.store.Appointments.GetByID(ctx, id)
}

// ListAppointments pages through appointments. A doctor filter wins over a
// patient filter; use one at a time.
func (s *Service) ListAppointments(ctx context.Context, f Filter, limit, offset int) ([]*model.Appointment, int, error) {
	switch {
	case f.DoctorID != 0:
		return s.store.Appointments.ListByDoctor(ctx, f.DoctorID, limit, offset)
	case f.PatientID != 0:
		return s.store.Appointments.ListByPatient(ctx, f.PatientID, limit, offset)
	default:
		return s.store.Appointments.List(ctx, limit, offset)
	}
}

func (in Input) applyTo(a *model.Appointment) {
	a.PatientID = in.PatientID
	a.DoctorID = in.DoctorID
	a.ProcedureID = in.ProcedureID
	a.RoomID = in.RoomID
	a.DateTime = in.DateTime
}

// check validates the booking. References resolve patient, doctor,
// procedure, room and stop at the first miss.
func (s *Service) check(ctx context.Context, in Input) error {
	if in.DateTime.IsZero() {
		return model.Invalid("dateTime", "is required")
	}
	refs := []struct {
		kind model.Kind
		id   int64
		get  func(context.Context, int64) error
	}{
		{model.KindPatient, in.PatientID, func(ctx context.Context, id int64) error {
			_, err := s.store.Patients.GetByID(ctx, id)
			return err
		}},
		{model.KindDoctor, in.DoctorID, func(ctx context.Context, id int64) error {
			_, err := s.store.Doctors.GetByID(ctx, id)
			return err
		}},
		{model.KindProcedure, in.ProcedureID, func(ctx context.Context, id int64) error {
			_, err := s.store.Procedures.GetByID(ctx, id)
			return err
		}},
		{model.KindRoom, in.RoomID, func(ctx context.Context, id int64) error {
			_, err := s.store.Rooms.GetByID(ctx, id)
			return err
		}},
	}
	for _, ref := range refs {
		if err := ref.get(ctx, ref.id); err != nil {
			if errors.Is(err, model.ErrNotFound) {
				return model.UnknownReference(ref.kind, ref.id)
			}
			return err
		}
	}
	if s.requireShift {
		return s.onShift(ctx, in.DoctorID, in.DateTime)
	}
	return nil
}

// onShift reports model.ErrOutsideShift unless doctorID is rostered on a
// shift covering at. Overnight shifts from the previous day count.
func (s *Service) onShift(ctx context.Context, doctorID int64, at civil.DateTime) error {
	shifts, err := s.store.Shifts.ListByDate(ctx, at.Date)
	if err != nil {
		return err
	}
	for _, sh := range shifts {
		if !sh.Covers(at) {
			continue
		}
		_, err := s.store.Schedules.Get(ctx, doctorID, sh.ID)
		if err == nil {
			return nil
		}
		if !errors.Is(err, model.ErrNotFound) {
			return err
		}
	}
	return model.ErrOutsideShift
}

func (s *Service) observe(op string, err error) {
	outcome := "ok"
	switch {
	case err == nil:
	case errors.Is(err, model.ErrStoreUnavailable):
		outcome = "error"
		s.logger.Error().Err(err).Str("op", op).Msg("appointment operation failed")
	default:
		outcome = "rejected"
		if ref, ok := model.IsUnknownReference(err); ok {
			s.metrics.ObserveUnknownReference(string(ref.Kind))
		}
	}
	s.metrics.ObserveAppointment(op, outcome)
}
