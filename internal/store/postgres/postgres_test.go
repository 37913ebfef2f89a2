package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"

	"github.com/hospital/hospital/internal/model"
	"github.com/hospital/hospital/pkg/civil"
)

func newMock(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock: %v", err)
	}
	t.Cleanup(func() {
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("unmet expectations: %v", err)
		}
		mock.Close()
	})
	return mock
}

func TestDoctorRepo_Create(t *testing.T) {
	mock := newMock(t)
	s := New(mock)
	now := time.Now()

	mock.ExpectQuery("INSERT INTO doctor").
		WithArgs("Gregory House", pgxmock.AnyArg(), 20, "LIC-1").
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(int64(7), now, now))

	d := &model.Doctor{Name: "Gregory House", YearsOfExperience: 20, LicenseNumber: "LIC-1"}
	if err := s.Doctors.Create(context.Background(), d); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if d.ID != 7 {
		t.Errorf("expected id 7, got %d", d.ID)
	}
}

func TestDoctorRepo_GetByID_NotFound(t *testing.T) {
	mock := newMock(t)
	s := New(mock)

	mock.ExpectQuery("FROM doctor WHERE id").WithArgs(int64(9)).WillReturnError(pgx.ErrNoRows)

	_, err := s.Doctors.GetByID(context.Background(), 9)
	if !errors.Is(err, model.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestDoctorRepo_DeleteReferenced(t *testing.T) {
	mock := newMock(t)
	s := New(mock)

	mock.ExpectExec("DELETE FROM doctor").WithArgs(int64(1)).
		WillReturnError(&pgconn.PgError{Code: "23503", ConstraintName: "schedule_doctor_id_fkey"})

	err := s.Doctors.Delete(context.Background(), 1)
	if !errors.Is(err, model.ErrConflict) {
		t.Errorf("expected ErrConflict, got %v", err)
	}
}

func TestDoctorRepo_StoreUnavailable(t *testing.T) {
	mock := newMock(t)
	s := New(mock)

	mock.ExpectQuery("FROM doctor WHERE id").WithArgs(int64(1)).
		WillReturnError(errors.New("connection reset by peer"))

	_, err := s.Doctors.GetByID(context.Background(), 1)
	if !errors.Is(err, model.ErrStoreUnavailable) {
		t.Errorf("expected ErrStoreUnavailable, got %v", err)
	}
}

func TestDoctorRepo_List(t *testing.T) {
	mock := newMock(t)
	s := New(mock)
	now := time.Now()

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM doctor`).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(2))
	mock.ExpectQuery("FROM doctor ORDER BY id LIMIT").WithArgs(10, 0).
		WillReturnRows(pgxmock.NewRows([]string{"id", "name", "department_id", "years_of_experience", "license_number", "created_at", "updated_at"}).
			AddRow(int64(1), "Alice", (*int64)(nil), 3, "L1", now, now).
			AddRow(int64(2), "Bob", (*int64)(nil), 5, "L2", now, now))

	items, total, err := s.Doctors.List(context.Background(), 10, 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if total != 2 || len(items) != 2 {
		t.Fatalf("expected 2 doctors, got total=%d len=%d", total, len(items))
	}
	if items[1].Name != "Bob" {
		t.Errorf("expected Bob second, got %s", items[1].Name)
	}
}

func TestShiftRepo_LockForUpdate(t *testing.T) {
	mock := newMock(t)
	s := New(mock)
	now := time.Now()
	date := civil.Date{Year: 2024, Month: time.June, Day: 10}

	mock.ExpectQuery("FROM shift WHERE id = .+ FOR UPDATE").WithArgs(int64(3)).
		WillReturnRows(pgxmock.NewRows([]string{"id", "date", "start_time", "end_time", "created_at", "updated_at"}).
			AddRow(int64(3), date, civil.Clock{Hour: 8}, civil.Clock{Hour: 16}, now, now))

	sh, err := s.Shifts.LockForUpdate(context.Background(), 3)
	if err != nil {
		t.Fatalf("LockForUpdate: %v", err)
	}
	if sh.Date != date || sh.StartTime != (civil.Clock{Hour: 8}) || sh.EndTime != (civil.Clock{Hour: 16}) {
		t.Errorf("unexpected shift %+v", sh)
	}
}

func TestShiftRepo_ListByDateIncludesPreviousDay(t *testing.T) {
	mock := newMock(t)
	s := New(mock)
	date := civil.Date{Year: 2024, Month: time.June, Day: 10}

	mock.ExpectQuery("FROM shift").
		WithArgs(date, civil.Date{Year: 2024, Month: time.June, Day: 9}).
		WillReturnRows(pgxmock.NewRows([]string{"id", "date", "start_time", "end_time", "created_at", "updated_at"}))

	items, err := s.Shifts.ListByDate(context.Background(), date)
	if err != nil {
		t.Fatalf("ListByDate: %v", err)
	}
	if len(items) != 0 {
		t.Errorf("expected no shifts, got %d", len(items))
	}
}

func TestShiftRepo_ListByDoctorJoinsSchedule(t *testing.T) {
	mock := newMock(t)
	s := New(mock)
	now := time.Now()
	date := civil.Date{Year: 2024, Month: time.June, Day: 10}

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM shift s JOIN schedule sc ON sc.shift_id = s.id WHERE sc.doctor_id`).WithArgs(int64(4)).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(3))
	mock.ExpectQuery(`JOIN schedule sc .+ ORDER BY s.date, s.start_time, s.id`).WithArgs(int64(4), 2, 2).
		WillReturnRows(pgxmock.NewRows([]string{"id", "date", "start_time", "end_time", "created_at", "updated_at"}).
			AddRow(int64(9), date, civil.Clock{Hour: 20}, civil.Clock{Hour: 6}, now, now))

	shifts, total, err := s.Shifts.ListByDoctor(context.Background(), 4, 2, 2)
	if err != nil {
		t.Fatalf("ListByDoctor: %v", err)
	}
	if total != 3 || len(shifts) != 1 || shifts[0].ID != 9 {
		t.Errorf("unexpected result total=%d shifts=%+v", total, shifts)
	}
}

func TestScheduleRepo_InsertDuplicateIsNoop(t *testing.T) {
	mock := newMock(t)
	s := New(mock)

	mock.ExpectQuery("INSERT INTO schedule").WithArgs(int64(1), int64(2)).WillReturnError(pgx.ErrNoRows)

	inserted, err := s.Schedules.Insert(context.Background(), &model.Schedule{DoctorID: 1, ShiftID: 2})
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if inserted {
		t.Error("expected duplicate insert to report false")
	}
}

func TestScheduleRepo_InsertNew(t *testing.T) {
	mock := newMock(t)
	s := New(mock)

	mock.ExpectQuery("INSERT INTO schedule").WithArgs(int64(1), int64(2)).
		WillReturnRows(pgxmock.NewRows([]string{"created_at"}).AddRow(time.Now()))

	inserted, err := s.Schedules.Insert(context.Background(), &model.Schedule{DoctorID: 1, ShiftID: 2})
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if !inserted {
		t.Error("expected new pair to report true")
	}
}

func TestScheduleRepo_ListByShift(t *testing.T) {
	mock := newMock(t)
	s := New(mock)
	now := time.Now()

	mock.ExpectQuery("FROM schedule WHERE shift_id").WithArgs(int64(5)).
		WillReturnRows(pgxmock.NewRows([]string{"doctor_id", "shift_id", "created_at"}).
			AddRow(int64(1), int64(5), now).
			AddRow(int64(3), int64(5), now))

	items, err := s.Schedules.ListByShift(context.Background(), 5)
	if err != nil {
		t.Fatalf("ListByShift: %v", err)
	}
	if len(items) != 2 || items[0].DoctorID != 1 || items[1].DoctorID != 3 {
		t.Errorf("unexpected roster %+v", items)
	}
}

func TestScheduleRepo_DeleteByShift(t *testing.T) {
	mock := newMock(t)
	s := New(mock)

	mock.ExpectExec("DELETE FROM schedule WHERE shift_id").WithArgs(int64(5)).
		WillReturnResult(pgxmock.NewResult("DELETE", 3))

	n, err := s.Schedules.DeleteByShift(context.Background(), 5)
	if err != nil {
		t.Fatalf("DeleteByShift: %v", err)
	}
	if n != 3 {
		t.Errorf("expected 3 rows removed, got %d", n)
	}
}

func TestAppointmentRepo_ListByDoctor(t *testing.T) {
	mock := newMock(t)
	s := New(mock)
	now := time.Now()
	at := civil.DateTime{Date: civil.Date{Year: 2024, Month: time.June, Day: 10}, Time: civil.Clock{Hour: 9}}

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM appointment WHERE doctor_id`).WithArgs(int64(2)).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery("FROM appointment WHERE doctor_id").WithArgs(int64(2), 20, 0).
		WillReturnRows(pgxmock.NewRows([]string{"id", "patient_id", "doctor_id", "procedure_id", "room_id", "date_time", "created_at", "updated_at"}).
			AddRow(int64(11), int64(1), int64(2), int64(3), int64(4), at, now, now))

	items, total, err := s.Appointments.ListByDoctor(context.Background(), 2, 20, 0)
	if err != nil {
		t.Fatalf("ListByDoctor: %v", err)
	}
	if total != 1 || len(items) != 1 || items[0].DateTime != at {
		t.Errorf("unexpected result total=%d items=%+v", total, items)
	}
}

func TestAppointmentRepo_UpdateMissing(t *testing.T) {
	mock := newMock(t)
	s := New(mock)

	mock.ExpectQuery("UPDATE appointment").WillReturnError(pgx.ErrNoRows)

	err := s.Appointments.Update(context.Background(), &model.Appointment{ID: 99})
	if !errors.Is(err, model.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestActivityRepo_AppendAssignsID(t *testing.T) {
	mock := newMock(t)
	s := New(mock)

	mock.ExpectQuery("INSERT INTO activity_log").
		WithArgs(pgxmock.AnyArg(), "u-1", "create", "shift", "4", "POST", "/api/v1/shift", 201, "req-1").
		WillReturnRows(pgxmock.NewRows([]string{"occurred_at"}).AddRow(time.Now()))

	e := &model.ActivityEntry{UserID: "u-1", Action: "create", ResourceType: "shift", ResourceID: "4",
		Method: "POST", Path: "/api/v1/shift", Status: 201, RequestID: "req-1"}
	if err := s.Activity.Append(context.Background(), e); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if e.ID.String() == "00000000-0000-0000-0000-000000000000" {
		t.Error("expected generated id")
	}
}

func TestStore_TxSpansRepositories(t *testing.T) {
	mock := newMock(t)
	s := New(mock)
	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery("FOR UPDATE").WithArgs(int64(5)).
		WillReturnRows(pgxmock.NewRows([]string{"id", "date", "start_time", "end_time", "created_at", "updated_at"}).
			AddRow(int64(5), civil.Date{Year: 2024, Month: time.June, Day: 10}, civil.Clock{Hour: 8}, civil.Clock{Hour: 16}, now, now))
	mock.ExpectExec("DELETE FROM schedule WHERE shift_id").WithArgs(int64(5)).
		WillReturnResult(pgxmock.NewResult("DELETE", 2))
	mock.ExpectExec("DELETE FROM shift").WithArgs(int64(5)).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	mock.ExpectCommit()

	err := s.Tx.WithTx(context.Background(), func(ctx context.Context) error {
		if _, err := s.Shifts.LockForUpdate(ctx, 5); err != nil {
			return err
		}
		if _, err := s.Schedules.DeleteByShift(ctx, 5); err != nil {
			return err
		}
		return s.Shifts.Delete(ctx, 5)
	})
	if err != nil {
		t.Fatalf("WithTx: %v", err)
	}
}
