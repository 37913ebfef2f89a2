package appointment

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"

	"github.com/hospital/hospital/internal/model"
	"github.com/hospital/hospital/internal/platform/metrics"
	"github.com/hospital/hospital/internal/store"
	"github.com/hospital/hospital/pkg/civil"
)

// lostConnection reads through to the wrapped repository and fails writes.
type lostConnection struct {
	store.AppointmentRepository
}

func (lostConnection) Create(context.Context, *model.Appointment) error {
	return model.Unavailable("insert appointment", errors.New("connection reset by peer"))
}

func (lostConnection) Update(context.Context, *model.Appointment) error {
	return model.Unavailable("update appointment", errors.New("connection reset by peer"))
}

const appointmentHelp = `
# HELP hospital_appointment_operations_total Appointment operations by kind and outcome
# TYPE hospital_appointment_operations_total counter
`

func TestCreateAppointment_StoreFailure(t *testing.T) {
	f := newFixture(t)
	f.store.Appointments = lostConnection{f.store.Appointments}
	reg := prometheus.NewRegistry()
	svc := NewService(f.store, zerolog.Nop(), metrics.New(reg))

	_, err := svc.CreateAppointment(context.Background(), f.input())
	if !errors.Is(err, model.ErrStoreUnavailable) {
		t.Fatalf("expected ErrStoreUnavailable, got %v", err)
	}
	if n := f.count(t); n != 0 {
		t.Errorf("expected no appointments, found %d", n)
	}

	expected := appointmentHelp + `hospital_appointment_operations_total{op="create",outcome="error"} 1
`
	if err := testutil.GatherAndCompare(reg, strings.NewReader(expected), "hospital_appointment_operations_total"); err != nil {
		t.Errorf("unexpected appointment metrics: %v", err)
	}
}

func TestUpdateAppointment_StoreFailureKeepsRow(t *testing.T) {
	f := newFixture(t)
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	created, err := NewService(f.store, zerolog.Nop(), m).CreateAppointment(context.Background(), f.input())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	f.store.Appointments = lostConnection{f.store.Appointments}
	svc := NewService(f.store, zerolog.Nop(), m)
	in := f.input()
	in.DateTime = civil.DateTime{Date: civil.Date{Year: 2024, Month: 6, Day: 12}, Time: civil.Clock{Hour: 14}}
	if _, err := svc.UpdateAppointment(context.Background(), created.ID, in); !errors.Is(err, model.ErrStoreUnavailable) {
		t.Fatalf("expected ErrStoreUnavailable, got %v", err)
	}

	got, err := f.store.Appointments.GetByID(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.DateTime.String() != "2024-06-10T09:00:00" {
		t.Errorf("appointment changed despite failure: %s", got.DateTime)
	}

	expected := appointmentHelp + `hospital_appointment_operations_total{op="create",outcome="ok"} 1
hospital_appointment_operations_total{op="update",outcome="error"} 1
`
	if err := testutil.GatherAndCompare(reg, strings.NewReader(expected), "hospital_appointment_operations_total"); err != nil {
		t.Errorf("unexpected appointment metrics: %v", err)
	}
}
