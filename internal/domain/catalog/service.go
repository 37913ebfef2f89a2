// Package catalog maintains the doctors, patients, procedures and rooms that
// shifts and appointments refer to.
package catalog

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"

	"github.com/hospital/hospital/internal/model"
	"github.com/hospital/hospital/internal/store"
)

// Repository is the subset of a store repository the catalog needs. Every
// catalog repository in package store satisfies it.
type Repository[T any] interface {
	Create(ctx context.Context, v *T) error
	GetByID(ctx context.Context, id int64) (*T, error)
	Update(ctx context.Context, v *T) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, limit, offset int) ([]*T, int, error)
}

// Service is the CRUD service for one catalog kind.
type Service[T any] struct {
	kind     model.Kind
	repo     Repository[T]
	tx       store.Transactor
	validate func(*T) error
	idOf     func(*T) *int64
	logger   zerolog.Logger
}

func newService[T any](kind model.Kind, repo Repository[T], tx store.Transactor, logger zerolog.Logger,
	validate func(*T) error, idOf func(*T) *int64) *Service[T] {
	return &Service[T]{
		kind:     kind,
		repo:     repo,
		tx:       tx,
		validate: validate,
		idOf:     idOf,
		logger:   logger.With().Str("component", "catalog").Str("kind", string(kind)).Logger(),
	}
}

func NewDoctors(s *store.Store, logger zerolog.Logger) *Service[model.Doctor] {
	return newService[model.Doctor](model.KindDoctor, s.Doctors, s.Tx, logger, validateDoctor,
		func(d *model.Doctor) *int64 { return &d.ID })
}

func NewPatients(s *store.Store, logger zerolog.Logger) *Service[model.Patient] {
	return newService[model.Patient](model.KindPatient, s.Patients, s.Tx, logger, validatePatient,
		func(p *model.Patient) *int64 { return &p.ID })
}

func NewProcedures(s *store.Store, logger zerolog.Logger) *Service[model.Procedure] {
	return newService[model.Procedure](model.KindProcedure, s.Procedures, s.Tx, logger, validateProcedure,
		func(p *model.Procedure) *int64 { return &p.ID })
}

func NewRooms(s *store.Store, logger zerolog.Logger) *Service[model.Room] {
	return newService[model.Room](model.KindRoom, s.Rooms, s.Tx, logger, validateRoom,
		func(r *model.Room) *int64 { return &r.ID })
}

// Kind names the entity kind the service manages.
func (s *Service[T]) Kind() model.Kind { return s.kind }

// ID returns the id of v.
func (s *Service[T]) ID(v *T) int64 { return *s.idOf(v) }

func (s *Service[T]) Create(ctx context.Context, v *T) error {
	if err := s.validate(v); err != nil {
		return err
	}
	*s.idOf(v) = 0
	if err := s.repo.Create(ctx, v); err != nil {
		return err
	}
	s.logger.Debug().Int64("id", *s.idOf(v)).Msg("catalog entry created")
	return nil
}

func (s *Service[T]) Get(ctx context.Context, id int64) (*T, error) {
	return s.repo.GetByID(ctx, id)
}

// Update overwrites every field of the entry with the given id.
func (s *Service[T]) Update(ctx context.Context, id int64, v *T) error {
	if err := s.validate(v); err != nil {
		return err
	}
	*s.idOf(v) = id
	return s.repo.Update(ctx, v)
}

// Delete removes the entry. Entries still referenced by a schedule or an
// appointment are kept and model.ErrConflict is returned.
func (s *Service[T]) Delete(ctx context.Context, id int64) error {
	err := s.tx.WithTx(ctx, func(ctx context.Context) error {
		if _, err := s.repo.GetByID(ctx, id); err != nil {
			return err
		}
		return s.repo.Delete(ctx, id)
	})
	if errors.Is(err, model.ErrConflict) {
		s.logger.Info().Int64("id", id).Msg("refusing to delete referenced catalog entry")
	}
	return err
}

func (s *Service[T]) List(ctx context.Context, limit, offset int) ([]*T, int, error) {
	return s.repo.List(ctx, limit, offset)
}

func required(field, v string) error {
	if strings.TrimSpace(v) == "" {
		return model.Invalid(field, "is required")
	}
	return nil
}

func validateDoctor(d *model.Doctor) error {
	if err := required("name", d.Name); err != nil {
		return err
	}
	if err := required("licenseNumber", d.LicenseNumber); err != nil {
		return err
	}
	if d.YearsOfExperience < 0 {
		return model.Invalid("yearsOfExperience", "must not be negative")
	}
	return nil
}

func validatePatient(p *model.Patient) error {
	if err := required("name", p.Name); err != nil {
		return err
	}
	if p.DateOfBirth.IsZero() {
		return model.Invalid("dateOfBirth", "is required")
	}
	return nil
}

func validateProcedure(p *model.Procedure) error {
	if err := required("name", p.Name); err != nil {
		return err
	}
	if p.DurationMinutes <= 0 {
		return model.Invalid("durationMinutes", "must be positive")
	}
	return nil
}

func validateRoom(r *model.Room) error {
	if err := required("number", r.Number); err != nil {
		return err
	}
	return required("roomType", r.RoomType)
}
