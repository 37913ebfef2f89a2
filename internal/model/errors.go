package model

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when an id does not resolve to a row.
	ErrNotFound = errors.New("not found")
	// ErrStoreUnavailable wraps every backing-store failure.
	ErrStoreUnavailable = errors.New("store unavailable")
	// ErrConflict is returned when a delete would orphan referencing rows.
	ErrConflict = errors.New("conflict")
	// ErrOutsideShift is returned when shift coverage is required and the
	// doctor is not rostered at the requested time.
	ErrOutsideShift = errors.New("doctor is not scheduled at the requested time")
)

// Kind names an entity kind in error messages.
type Kind string

const (
	KindDoctor      Kind = "Doctor"
	KindPatient     Kind = "Patient"
	KindProcedure   Kind = "Procedure"
	KindRoom        Kind = "Room"
	KindShift       Kind = "Shift"
	KindAppointment Kind = "Appointment"
)

// UnknownReferenceError reports a caller-supplied foreign key that does not
// resolve.
type UnknownReferenceError struct {
	Kind Kind
	ID   int64
}

func (e *UnknownReferenceError) Error() string {
	return fmt.Sprintf("%s with id %d not found", e.Kind, e.ID)
}

// UnknownReference builds an *UnknownReferenceError.
func UnknownReference(kind Kind, id int64) error {
	return &UnknownReferenceError{Kind: kind, ID: id}
}

// ValidationError reports a malformed request field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// Invalid builds a *ValidationError.
func Invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// Unavailable wraps err as a store failure. Nil stays nil and errors that
// already carry a domain meaning pass through unchanged.
func Unavailable(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrNotFound) || errors.Is(err, ErrStoreUnavailable) || errors.Is(err, ErrConflict) {
		return err
	}
	return fmt.Errorf("%s: %w: %w", op, ErrStoreUnavailable, err)
}

// IsUnknownReference reports whether err is an *UnknownReferenceError and
// returns it.
func IsUnknownReference(err error) (*UnknownReferenceError, bool) {
	var ref *UnknownReferenceError
	if errors.As(err, &ref) {
		return ref, true
	}
	return nil, false
}
