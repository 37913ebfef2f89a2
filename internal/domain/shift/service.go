// Package shift manages staffing shifts and the doctors rostered on them.
package shift

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/hospital/hospital/internal/model"
	"github.com/hospital/hospital/internal/platform/metrics"
	"github.com/hospital/hospital/internal/store"
	"github.com/hospital/hospital/pkg/civil"
)

// Input carries the caller-supplied fields of a shift. DoctorIDs is the
// complete target roster.
type Input struct {
	Date      civil.Date
	StartTime civil.Clock
	EndTime   civil.Clock
	DoctorIDs []int64
}

func (in Input) validate() error {
	if in.Date.IsZero() {
		return model.Invalid("date", "is required")
	}
	return nil
}

// WithRoster is a shift together with the ids of its assigned doctors.
type WithRoster struct {
	model.Shift
	DoctorIDs []int64 `json:"doctorIds"`
}

type Service struct {
	store   *store.Store
	roster  *Assigner
	logger  zerolog.Logger
	metrics *metrics.Metrics
}

func NewService(s *store.Store, logger zerolog.Logger, m *metrics.Metrics) *Service {
	return &Service{
		store:   s,
		roster:  NewAssigner(s),
		logger:  logger.With().Str("component", "shift").Logger(),
		metrics: m,
	}
}

// CreateShift validates the doctors, inserts the shift and assigns the
// roster in one transaction.
func (s *Service) CreateShift(ctx context.Context, in Input) (*WithRoster, error) {
	if err := in.validate(); err != nil {
		s.observe("create", err, 0, 0)
		return nil, err
	}

	var out *WithRoster
	var change *RosterChange
	err := s.store.Tx.WithTx(ctx, func(ctx context.Context) error {
		target := Dedup(in.DoctorIDs)
		if err := s.roster.validate(ctx, target); err != nil {
			return err
		}
		sh := &model.Shift{Date: in.Date, StartTime: in.StartTime, EndTime: in.EndTime}
		if err := s.store.Shifts.Create(ctx, sh); err != nil {
			return err
		}
		var err error
		change, err = s.roster.apply(ctx, sh.ID, target)
		if err != nil {
			return err
		}
		out = &WithRoster{Shift: *sh, DoctorIDs: change.DoctorIDs}
		return nil
	})
	added, removed := delta(change)
	s.observe("create", err, added, removed)
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Int64("shift_id", out.ID).
		Str("date", out.Date.String()).
		Ints64("doctor_ids", out.DoctorIDs).
		Msg("shift created")
	return out, nil
}

// UpdateShift overwrites the shift's date and times and replaces its roster.
func (s *Service) UpdateShift(ctx context.Context, id int64, in Input) (*WithRoster, error) {
	if err := in.validate(); err != nil {
		s.observe("update", err, 0, 0)
		return nil, err
	}

	var out *WithRoster
	var change *RosterChange
	err := s.store.Tx.WithTx(ctx, func(ctx context.Context) error {
		sh, err := s.store.Shifts.LockForUpdate(ctx, id)
		if err != nil {
			return err
		}
		target := Dedup(in.DoctorIDs)
		if err := s.roster.validate(ctx, target); err != nil {
			return err
		}
		sh.Date, sh.StartTime, sh.EndTime = in.Date, in.StartTime, in.EndTime
		if err := s.store.Shifts.Update(ctx, sh); err != nil {
			return err
		}
		change, err = s.roster.apply(ctx, id, target)
		if err != nil {
			return err
		}
		out = &WithRoster{Shift: *sh, DoctorIDs: change.DoctorIDs}
		return nil
	})
	added, removed := delta(change)
	s.observe("update", err, added, removed)
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Int64("shift_id", id).
		Ints64("added", change.Added).
		Ints64("removed", change.Removed).
		Msg("shift updated")
	return out, nil
}

// DeleteShift removes the shift and every assignment on it.
func (s *Service) DeleteShift(ctx context.Context, id int64) error {
	var removed int
	err := s.store.Tx.WithTx(ctx, func(ctx context.Context) error {
		if _, err := s.store.Shifts.LockForUpdate(ctx, id); err != nil {
			return err
		}
		var err error
		if removed, err = s.store.Schedules.DeleteByShift(ctx, id); err != nil {
			return err
		}
		return s.store.Shifts.Delete(ctx, id)
	})
	s.observe("delete", err, 0, removed)
	if err != nil {
		return err
	}

	s.logger.Info().Int64("shift_id", id).Int("unassigned", removed).Msg("shift deleted")
	return nil
}

// ApplyRoster replaces the roster of an existing shift.
func (s *Service) ApplyRoster(ctx context.Context, id int64, doctorIDs []int64) (*RosterChange, error) {
	change, err := s.roster.ApplyRoster(ctx, id, doctorIDs)
	added, removed := delta(change)
	s.observe("roster", err, added, removed)
	if err != nil {
		return nil, err
	}
	if !change.Unchanged() {
		s.logger.Info().
			Int64("shift_id", id).
			Ints64("added", change.Added).
			Ints64("removed", change.Removed).
			Msg("shift roster replaced")
	}
	return change, nil
}

func (s *Service) GetShift(ctx context.Context, id int64) (*WithRoster, error) {
	sh, err := s.store.Shifts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.withRoster(ctx, sh)
}

func (s *Service) ListShifts(ctx context.Context, limit, offset int) ([]*WithRoster, int, error) {
	shifts, total, err := s.store.Shifts.List(ctx, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	out, err := s.withRosters(ctx, shifts)
	return out, total, err
}

// ShiftsOn lists the shifts covering any part of date, including overnight
// shifts that started the day before.
func (s *Service) ShiftsOn(ctx context.Context, date civil.Date) ([]*WithRoster, error) {
	shifts, err := s.store.Shifts.ListByDate(ctx, date)
	if err != nil {
		return nil, err
	}
	return s.withRosters(ctx, shifts)
}

// Roster returns the doctor ids assigned to the shift.
func (s *Service) Roster(ctx context.Context, id int64) ([]int64, error) {
	if _, err := s.store.Shifts.GetByID(ctx, id); err != nil {
		return nil, err
	}
	return s.doctorIDs(ctx, id)
}

// ShiftsForDoctor pages through the shifts a doctor is rostered on.
func (s *Service) ShiftsForDoctor(ctx context.Context, doctorID int64, limit, offset int) ([]*model.Shift, int, error) {
	if _, err := s.store.Doctors.GetByID(ctx, doctorID); err != nil {
		return nil, 0, err
	}
	return s.store.Shifts.ListByDoctor(ctx, doctorID, limit, offset)
}

func (s *Service) withRosters(ctx context.Context, shifts []*model.Shift) ([]*WithRoster, error) {
	out := make([]*WithRoster, 0, len(shifts))
	for _, sh := range shifts {
		wr, err := s.withRoster(ctx, sh)
		if err != nil {
			return nil, err
		}
		out = append(out, wr)
	}
	return out, nil
}

func (s *Service) withRoster(ctx context.Context, sh *model.Shift) (*WithRoster, error) {
	ids, err := s.doctorIDs(ctx, sh.ID)
	if err != nil {
		return nil, err
	}
	return &WithRoster{Shift: *sh, DoctorIDs: ids}, nil
}

func (s *Service) doctorIDs(ctx context.Context, shiftID int64) ([]int64, error) {
	rows, err := s.store.Schedules.ListByShift(ctx, shiftID)
	if err != nil {
		return nil, err
	}
	ids := make([]int64, 0, len(rows))
	for _, sc := range rows {
		ids = append(ids, sc.DoctorID)
	}
	return ids, nil
}

func delta(change *RosterChange) (added, removed int) {
	if change == nil {
		return 0, 0
	}
	return len(change.Added), len(change.Removed)
}

func (s *Service) observe(op string, err error, added, removed int) {
	outcome := "ok"
	switch {
	case err == nil:
	case errors.Is(err, model.ErrStoreUnavailable):
		outcome = "error"
		s.logger.Error().Err(err).Str("op", op).Msg("shift operation failed")
	default:
		outcome = "rejected"
		if ref, ok := model.IsUnknownReference(err); ok {
			s.metrics.ObserveUnknownReference(string(ref.Kind))
		}
	}
	if err != nil {
		added, removed = 0, 0
	}
	s.metrics.ObserveRoster(op, outcome, added, removed)
}
