package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/hospital/hospital/internal/model"
)

// =========== Appointment Repository ===========

type appointmentRepo struct{ base }

const appointmentCols = `id, patient_id, doctor_id, procedure_id, room_id, date_time, created_at, updated_at`

func scanAppointment(row pgx.Row) (*model.Appointment, error) {
	var a model.Appointment
	err := row.Scan(&a.ID, &a.PatientID, &a.DoctorID, &a.ProcedureID, &a.RoomID, &a.DateTime,
		&a.CreatedAt, &a.UpdatedAt)
	return &a, err
}

func (r *appointmentRepo) Create(ctx context.Context, a *model.Appointment) error {
	err := r.conn(ctx).QueryRow(ctx, `
		INSERT INTO appointment (patient_id, doctor_id, procedure_id, room_id, date_time)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at`,
		a.PatientID, a.DoctorID, a.ProcedureID, a.RoomID, a.DateTime,
	).Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
	return mapErr("create appointment", err)
}

func (r *appointmentRepo) GetByID(ctx context.Context, id int64) (*model.Appointment, error) {
	a, err := scanAppointment(r.conn(ctx).QueryRow(ctx, `SELECT `+appointmentCols+` FROM appointment WHERE id = $1`, id))
	if err != nil {
		return nil, mapErr("get appointment", err)
	}
	return a, nil
}

func (r *appointmentRepo) LockForUpdate(ctx context.Context, id int64) (*model.Appointment, error) {
	a, err := scanAppointment(r.conn(ctx).QueryRow(ctx, `SELECT `+appointmentCols+` FROM appointment WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		return nil, mapErr("lock appointment", err)
	}
	return a, nil
}

func (r *appointmentRepo) Update(ctx context.Context, a *model.Appointment) error {
	err := r.conn(ctx).QueryRow(ctx, `
		UPDATE appointment SET patient_id = $2, doctor_id = $3, procedure_id = $4, room_id = $5,
			date_time = $6, updated_at = NOW()
		WHERE id = $1
		RETURNING created_at, updated_at`,
		a.ID, a.PatientID, a.DoctorID, a.ProcedureID, a.RoomID, a.DateTime,
	).Scan(&a.CreatedAt, &a.UpdatedAt)
	return mapErr("update appointment", err)
}

func (r *appointmentRepo) Delete(ctx context.Context, id int64) error {
	return execDelete(ctx, r.conn(ctx), "delete appointment", `DELETE FROM appointment WHERE id = $1`, id)
}

func (r *appointmentRepo) List(ctx context.Context, limit, offset int) ([]*model.Appointment, int, error) {
	return page(ctx, r.conn(ctx), "list appointments",
		`SELECT COUNT(*) FROM appointment`,
		`SELECT `+appointmentCols+` FROM appointment ORDER BY id LIMIT $1 OFFSET $2`,
		scanAppointment, limit, offset)
}

func (r *appointmentRepo) ListByDoctor(ctx context.Context, doctorID int64, limit, offset int) ([]*model.Appointment, int, error) {
	return page(ctx, r.conn(ctx), "list appointments by doctor",
		`SELECT COUNT(*) FROM appointment WHERE doctor_id = $1`,
		`SELECT `+appointmentCols+` FROM appointment WHERE doctor_id = $1 ORDER BY date_time, id LIMIT $2 OFFSET $3`,
		scanAppointment, limit, offset, doctorID)
}

func (r *appointmentRepo) ListByPatient(ctx context.Context, patientID int64, limit, offset int) ([]*model.Appointment, int, error) {
	return page(ctx, r.conn(ctx), "list appointments by patient",
		`SELECT COUNT(*) FROM appointment WHERE patient_id = $1`,
		`SELECT `+appointmentCols+` FROM appointment WHERE patient_id = $1 ORDER BY date_time, id LIMIT $2 OFFSET $3`,
		scanAppointment, limit, offset, patientID)
}

// =========== Activity Repository ===========

type activityRepo struct{ base }

const activityCols = `id, user_id, action, resource_type, resource_id, method, path, status, request_id, occurred_at`

func scanActivity(row pgx.Row) (*model.ActivityEntry, error) {
	var e model.ActivityEntry
	err := row.Scan(&e.ID, &e.UserID, &e.Action, &e.ResourceType, &e.ResourceID,
		&e.Method, &e.Path, &e.Status, &e.RequestID, &e.OccurredAt)
	return &e, err
}

func (r *activityRepo) Append(ctx context.Context, e *model.ActivityEntry) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	err := r.conn(ctx).QueryRow(ctx, `
		INSERT INTO activity_log (id, user_id, action, resource_type, resource_id, method, path, status, request_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING occurred_at`,
		e.ID, e.UserID, e.Action, e.ResourceType, e.ResourceID, e.Method, e.Path, e.Status, e.RequestID,
	).Scan(&e.OccurredAt)
	return mapErr("append activity", err)
}

func (r *activityRepo) List(ctx context.Context, limit, offset int) ([]*model.ActivityEntry, int, error) {
	return page(ctx, r.conn(ctx), "list activity",
		`SELECT COUNT(*) FROM activity_log`,
		`SELECT `+activityCols+` FROM activity_log ORDER BY occurred_at DESC, id LIMIT $1 OFFSET $2`,
		scanActivity, limit, offset)
}
