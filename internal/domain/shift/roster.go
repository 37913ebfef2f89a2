package shift

import (
	"context"
	"errors"

	"github.com/hospital/hospital/internal/model"
	"github.com/hospital/hospital/internal/store"
)

// RosterChange is the outcome of applying a roster to a shift.
type RosterChange struct {
	ShiftID   int64
	DoctorIDs []int64
	Added     []int64
	Removed   []int64
}

// Unchanged reports whether the roster was already in the target state.
func (rc *RosterChange) Unchanged() bool {
	return len(rc.Added) == 0 && len(rc.Removed) == 0
}

// Assigner replaces a shift's doctor roster by diffing the current
// assignments against the target and applying only the difference.
type Assigner struct {
	store *store.Store
}

func NewAssigner(s *store.Store) *Assigner {
	return &Assigner{store: s}
}

// ApplyRoster makes the set of doctors assigned to shiftID equal to
// doctorIDs. The shift row is locked for the duration, so concurrent edits of
// one shift serialize. Any unknown doctor aborts the change before anything
// is written.
func (a *Assigner) ApplyRoster(ctx context.Context, shiftID int64, doctorIDs []int64) (*RosterChange, error) {
	var change *RosterChange
	err := a.store.Tx.WithTx(ctx, func(ctx context.Context) error {
		if _, err := a.store.Shifts.LockForUpdate(ctx, shiftID); err != nil {
			return err
		}
		target := Dedup(doctorIDs)
		if err := a.validate(ctx, target); err != nil {
			return err
		}
		var err error
		change, err = a.apply(ctx, shiftID, target)
		return err
	})
	if err != nil {
		return nil, err
	}
	return change, nil
}

// validate resolves every doctor id in order and reports the first miss.
func (a *Assigner) validate(ctx context.Context, doctorIDs []int64) error {
	for _, id := range doctorIDs {
		if _, err := a.store.Doctors.GetByID(ctx, id); err != nil {
			if errors.Is(err, model.ErrNotFound) {
				return model.UnknownReference(model.KindDoctor, id)
			}
			return err
		}
	}
	return nil
}

// apply diffs the current roster against target, which must already be
// deduplicated and validated, then deletes removals before inserting
// additions.
func (a *Assigner) apply(ctx context.Context, shiftID int64, target []int64) (*RosterChange, error) {
	current, err := a.store.Schedules.ListByShift(ctx, shiftID)
	if err != nil {
		return nil, err
	}

	want := make(map[int64]bool, len(target))
	for _, id := range target {
		want[id] = true
	}
	have := make(map[int64]bool, len(current))
	for _, sc := range current {
		have[sc.DoctorID] = true
	}

	change := &RosterChange{ShiftID: shiftID, DoctorIDs: target}
	for _, sc := range current {
		if !want[sc.DoctorID] {
			change.Removed = append(change.Removed, sc.DoctorID)
		}
	}
	for _, id := range target {
		if !have[id] {
			change.Added = append(change.Added, id)
		}
	}

	for _, id := range change.Removed {
		if err := a.store.Schedules.Delete(ctx, id, shiftID); err != nil {
			return nil, err
		}
	}
	for _, id := range change.Added {
		if _, err := a.store.Schedules.Insert(ctx, &model.Schedule{DoctorID: id, ShiftID: shiftID}); err != nil {
			return nil, err
		}
	}
	return change, nil
}

// Dedup drops repeated ids, keeping first-seen order. The result is never nil.
func Dedup(ids []int64) []int64 {
	seen := make(map[int64]bool, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
