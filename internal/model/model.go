// Package model holds the hospital entities shared by the store and the
// domain services.
package model

import (
	"time"

	"github.com/google/uuid"

	"github.com/hospital/hospital/pkg/civil"
)

// Doctor maps to the doctor table.
type Doctor struct {
	ID                int64     `db:"id" json:"id"`
	Name              string    `db:"name" json:"name"`
	DepartmentID      *int64    `db:"department_id" json:"departmentId,omitempty"`
	YearsOfExperience int       `db:"years_of_experience" json:"yearsOfExperience"`
	LicenseNumber     string    `db:"license_number" json:"licenseNumber"`
	CreatedAt         time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt         time.Time `db:"updated_at" json:"updatedAt"`
}

// Patient maps to the patient table.
type Patient struct {
	ID          int64      `db:"id" json:"id"`
	Name        string     `db:"name" json:"name"`
	DateOfBirth civil.Date `db:"date_of_birth" json:"dateOfBirth"`
	Phone       *string    `db:"phone" json:"phone,omitempty"`
	CreatedAt   time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time  `db:"updated_at" json:"updatedAt"`
}

// Procedure maps to the procedure table.
type Procedure struct {
	ID              int64     `db:"id" json:"id"`
	Name            string    `db:"name" json:"name"`
	Description     *string   `db:"description" json:"description,omitempty"`
	DurationMinutes int       `db:"duration_minutes" json:"durationMinutes"`
	CreatedAt       time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt       time.Time `db:"updated_at" json:"updatedAt"`
}

// Room maps to the room table.
type Room struct {
	ID        int64     `db:"id" json:"id"`
	Number    string    `db:"number" json:"number"`
	Floor     int       `db:"floor" json:"floor"`
	RoomType  string    `db:"room_type" json:"roomType"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// Shift is a staffing window: a date plus a start and end wall-clock time.
// An end at or before the start denotes a shift running past midnight.
type Shift struct {
	ID        int64       `db:"id" json:"id"`
	Date      civil.Date  `db:"date" json:"date"`
	StartTime civil.Clock `db:"start_time" json:"startTime"`
	EndTime   civil.Clock `db:"end_time" json:"endTime"`
	CreatedAt time.Time   `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time   `db:"updated_at" json:"updatedAt"`
}

// Overnight reports whether the shift ends on the following day.
func (s *Shift) Overnight() bool {
	return !s.StartTime.Before(s.EndTime)
}

// Covers reports whether the wall-clock instant dt falls inside the shift.
// The start is inclusive and the end exclusive.
func (s *Shift) Covers(dt civil.DateTime) bool {
	start := civil.DateTime{Date: s.Date, Time: s.StartTime}.In(time.UTC)
	endDate := s.Date
	if s.Overnight() {
		endDate = s.Date.AddDays(1)
	}
	end := civil.DateTime{Date: endDate, Time: s.EndTime}.In(time.UTC)
	at := dt.In(time.UTC)
	return !at.Before(start) && at.Before(end)
}

// Schedule assigns one doctor to one shift. The pair is its identity.
type Schedule struct {
	DoctorID  int64     `db:"doctor_id" json:"doctorId"`
	ShiftID   int64     `db:"shift_id" json:"shiftId"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// ScheduleKey is the composite identity of a Schedule row.
type ScheduleKey struct {
	DoctorID int64
	ShiftID  int64
}

// Key returns the composite identity of s.
func (s *Schedule) Key() ScheduleKey {
	return ScheduleKey{DoctorID: s.DoctorID, ShiftID: s.ShiftID}
}

// Appointment books one patient, doctor, procedure and room at a date-time.
type Appointment struct {
	ID          int64          `db:"id" json:"id"`
	PatientID   int64          `db:"patient_id" json:"patientId"`
	DoctorID    int64          `db:"doctor_id" json:"doctorId"`
	ProcedureID int64          `db:"procedure_id" json:"procedureId"`
	RoomID      int64          `db:"room_id" json:"roomId"`
	DateTime    civil.DateTime `db:"date_time" json:"dateTime"`
	CreatedAt   time.Time      `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time      `db:"updated_at" json:"updatedAt"`
}

// ActivityEntry is one row of the activity log.
type ActivityEntry struct {
	ID           uuid.UUID `db:"id" json:"id"`
	UserID       string    `db:"user_id" json:"userId"`
	Action       string    `db:"action" json:"action"`
	ResourceType string    `db:"resource_type" json:"resourceType"`
	ResourceID   string    `db:"resource_id" json:"resourceId,omitempty"`
	Method       string    `db:"method" json:"method"`
	Path         string    `db:"path" json:"path"`
	Status       int       `db:"status" json:"status"`
	RequestID    string    `db:"request_id" json:"requestId,omitempty"`
	OccurredAt   time.Time `db:"occurred_at" json:"occurredAt"`
}
