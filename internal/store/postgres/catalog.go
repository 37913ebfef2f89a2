package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/hospital/hospital/internal/model"
)

// =========== Doctor Repository ===========

type doctorRepo struct{ base }

const doctorCols = `id, name, department_id, years_of_experience, license_number, created_at, updated_at`

func scanDoctor(row pgx.Row) (*model.Doctor, error) {
	var d model.Doctor
	err := row.Scan(&d.ID, &d.Name, &d.DepartmentID, &d.YearsOfExperience, &d.LicenseNumber,
		&d.CreatedAt, &d.UpdatedAt)
	return &d, err
}

func (r *doctorRepo) Create(ctx context.Context, d *model.Doctor) error {
	err := r.conn(ctx).QueryRow(ctx, `
		INSERT INTO doctor (name, department_id, years_of_experience, license_number)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at`,
		d.Name, d.DepartmentID, d.YearsOfExperience, d.LicenseNumber,
	).Scan(&d.ID, &d.CreatedAt, &d.UpdatedAt)
	return mapErr("create doctor", err)
}

func (r *doctorRepo) GetByID(ctx context.Context, id int64) (*model.Doctor, error) {
	d, err := scanDoctor(r.conn(ctx).QueryRow(ctx, `SELECT `+doctorCols+` FROM doctor WHERE id = $1`, id))
	if err != nil {
		return nil, mapErr("get doctor", err)
	}
	return d, nil
}

func (r *doctorRepo) Update(ctx context.Context, d *model.Doctor) error {
	err := r.conn(ctx).QueryRow(ctx, `
		UPDATE doctor SET name = $2, department_id = $3, years_of_experience = $4,
			license_number = $5, updated_at = NOW()
		WHERE id = $1
		RETURNING created_at, updated_at`,
		d.ID, d.Name, d.DepartmentID, d.YearsOfExperience, d.LicenseNumber,
	).Scan(&d.CreatedAt, &d.UpdatedAt)
	return mapErr("update doctor", err)
}

func (r *doctorRepo) Delete(ctx context.Context, id int64) error {
	return execDelete(ctx, r.conn(ctx), "delete doctor", `DELETE FROM doctor WHERE id = $1`, id)
}

func (r *doctorRepo) List(ctx context.Context, limit, offset int) ([]*model.Doctor, int, error) {
	return page(ctx, r.conn(ctx), "list doctors",
		`SELECT COUNT(*) FROM doctor`,
		`SELECT `+doctorCols+` FROM doctor ORDER BY id LIMIT $1 OFFSET $2`,
		scanDoctor, limit, offset)
}

// =========== Patient Repository ===========

type patientRepo struct{ base }

const patientCols = `id, name, date_of_birth, phone, created_at, updated_at`

func scanPatient(row pgx.Row) (*model.Patient, error) {
	var p model.Patient
	err := row.Scan(&p.ID, &p.Name, &p.DateOfBirth, &p.Phone, &p.CreatedAt, &p.UpdatedAt)
	return &p, err
}

func (r *patientRepo) Create(ctx context.Context, p *model.Patient) error {
	err := r.conn(ctx).QueryRow(ctx, `
		INSERT INTO patient (name, date_of_birth, phone)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at`,
		p.Name, p.DateOfBirth, p.Phone,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	return mapErr("create patient", err)
}

func (r *patientRepo) GetByID(ctx context.Context, id int64) (*model.Patient, error) {
	p, err := scanPatient(r.conn(ctx).QueryRow(ctx, `SELECT `+patientCols+` FROM patient WHERE id = $1`, id))
	if err != nil {
		return nil, mapErr("get patient", err)
	}
	return p, nil
}

func (r *patientRepo) Update(ctx context.Context, p *model.Patient) error {
	err := r.conn(ctx).QueryRow(ctx, `
		UPDATE patient SET name = $2, date_of_birth = $3, phone = $4, updated_at = NOW()
		WHERE id = $1
		RETURNING created_at, updated_at`,
		p.ID, p.Name, p.DateOfBirth, p.Phone,
	).Scan(&p.CreatedAt, &p.UpdatedAt)
	return mapErr("update patient", err)
}

func (r *patientRepo) Delete(ctx context.Context, id int64) error {
	return execDelete(ctx, r.conn(ctx), "delete patient", `DELETE FROM patient WHERE id = $1`, id)
}

func (r *patientRepo) List(ctx context.Context, limit, offset int) ([]*model.Patient, int, error) {
	return page(ctx, r.conn(ctx), "list patients",
		`SELECT COUNT(*) FROM patient`,
		`SELECT `+patientCols+` FROM patient ORDER BY id LIMIT $1 OFFSET $2`,
		scanPatient, limit, offset)
}

// =========== Procedure Repository ===========

type procedureRepo struct{ base }

const procedureCols = `id, name, description, duration_minutes, created_at, updated_at`

func scanProcedure(row pgx.Row) (*model.Procedure, error) {
	var p model.Procedure
	err := row.Scan(&p.ID, &p.Name, &p.Description, &p.DurationMinutes, &p.CreatedAt, &p.UpdatedAt)
	return &p, err
}

func (r *procedureRepo) Create(ctx context.Context, p *model.Procedure) error {
	err := r.conn(ctx).QueryRow(ctx, `
		INSERT INTO procedure (name, description, duration_minutes)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at`,
		p.Name, p.Description, p.DurationMinutes,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	return mapErr("create procedure", err)
}

func (r *procedureRepo) GetByID(ctx context.Context, id int64) (*model.Procedure, error) {
	p, err := scanProcedure(r.conn(ctx).QueryRow(ctx, `SELECT `+procedureCols+` FROM procedure WHERE id = $1`, id))
	if err != nil {
		return nil, mapErr("get procedure", err)
	}
	return p, nil
}

func (r *procedureRepo) Update(ctx context.Context, p *model.Procedure) error {
	err := r.conn(ctx).QueryRow(ctx, `
		UPDATE procedure SET name = $2, description = $3, duration_minutes = $4, updated_at = NOW()
		WHERE id = $1
		RETURNING created_at, updated_at`,
		p.ID, p.Name, p.Description, p.DurationMinutes,
	).Scan(&p.CreatedAt, &p.UpdatedAt)
	return mapErr("update procedure", err)
}

func (r *procedureRepo) Delete(ctx context.Context, id int64) error {
	return execDelete(ctx, r.conn(ctx), "delete procedure", `DELETE FROM procedure WHERE id = $1`, id)
}

func (r *procedureRepo) List(ctx context.Context, limit, offset int) ([]*model.Procedure, int, error) {
	return page(ctx, r.conn(ctx), "list procedures",
		`SELECT COUNT(*) FROM procedure`,
		`SELECT `+procedureCols+` FROM procedure ORDER BY id LIMIT $1 OFFSET $2`,
		scanProcedure, limit, offset)
}

// =========== Room Repository ===========

type roomRepo struct{ base }

const roomCols = `id, number, floor, room_type, created_at, updated_at`

func scanRoom(row pgx.Row) (*model.Room, error) {
	var rm model.Room
	err := row.Scan(&rm.ID, &rm.Number, &rm.Floor, &rm.RoomType, &rm.CreatedAt, &rm.UpdatedAt)
	return &rm, err
}

func (r *roomRepo) Create(ctx context.Context, rm *model.Room) error {
	err := r.conn(ctx).QueryRow(ctx, `
		INSERT INTO room (number, floor, room_type)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at`,
		rm.Number, rm.Floor, rm.RoomType,
	).Scan(&rm.ID, &rm.CreatedAt, &rm.UpdatedAt)
	return mapErr("create room", err)
}

func (r *roomRepo) GetByID(ctx context.Context, id int64) (*model.Room, error) {
	rm, err := scanRoom(r.conn(ctx).QueryRow(ctx, `SELECT `+roomCols+` FROM room WHERE id = $1`, id))
	if err != nil {
		return nil, mapErr("get room", err)
	}
	return rm, nil
}

func (r *roomRepo) Update(ctx context.Context, rm *model.Room) error {
	err := r.conn(ctx).QueryRow(ctx, `
		UPDATE room SET number = $2, floor = $3, room_type = $4, updated_at = NOW()
		WHERE id = $1
		RETURNING created_at, updated_at`,
		rm.ID, rm.Number, rm.Floor, rm.RoomType,
	).Scan(&rm.CreatedAt, &rm.UpdatedAt)
	return mapErr("update room", err)
}

func (r *roomRepo) Delete(ctx context.Context, id int64) error {
	return execDelete(ctx, r.conn(ctx), "delete room", `DELETE FROM room WHERE id = $1`, id)
}

func (r *roomRepo) List(ctx context.Context, limit, offset int) ([]*model.Room, int, error) {
	return page(ctx, r.conn(ctx), "list rooms",
		`SELECT COUNT(*) FROM room`,
		`SELECT `+roomCols+` FROM room ORDER BY id LIMIT $1 OFFSET $2`,
		scanRoom, limit, offset)
}
