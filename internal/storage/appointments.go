package storage

import (
	"context"
	"hash/fnv"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/unifyhq/unify/internal/model"
	"github.com/unifyhq/unify/libs/db"
)

// AppointmentRepository persists appointments. Writes that depend on the
// employee's existing calendar run inside a transaction holding an advisory
// lock on the employee, so two concurrent bookings cannot both pass the
// overlap check.
type AppointmentRepository struct {
	pool *db.Pool
}

func NewAppointmentRepository(pool *db.Pool) *AppointmentRepository {
	return &AppointmentRepository{pool: pool}
}

func (r *AppointmentRepository) Begin(ctx context.Context) (pgx.Tx, error) {
	return r.pool.Begin(ctx)
}

// LockEmployee takes a transaction-scoped advisory lock keyed by the employee
// ID. Released automatically at commit or rollback.
func (r *AppointmentRepository) LockEmployee(ctx context.Context, tx pgx.Tx, employeeID string) error {
	h := fnv.New64a()
	h.Write([]byte("employee:" + employeeID))
	_, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock($1)`, int64(h.Sum64()))
	return err
}

// ListForEmployee returns the employee's appointments within the transaction,
// for overlap validation against a stable snapshot.
func (r *AppointmentRepository) ListForEmployee(ctx context.Context, tx pgx.Tx, employeeID string) ([]model.Appointment, error) {
	rows, err := tx.Query(ctx, `
		SELECT id::text, owner_id::text, client_id::text, service_id::text, employee_id::text,
		       start_time, end_time, status, created_at, updated_at
		FROM appointments
		WHERE employee_id = $1
		ORDER BY start_time
	`, employeeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanAppointments(rows)
}

func (r *AppointmentRepository) Insert(ctx context.Context, tx pgx.Tx, a model.Appointment) (model.Appointment, error) {
	a.ID = uuid.NewString()
	err := tx.QueryRow(ctx, `
		INSERT INTO appointments (id, owner_id, client_id, service_id, employee_id, start_time, end_time, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at
	`, a.ID, a.OwnerID, a.ClientID, a.ServiceID, a.EmployeeID, a.Start, a.End, a.Status).
		Scan(&a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if IsUniqueViolation(err) {
			return model.Appointment{}, Conflict("appointment", "an identical appointment already exists")
		}
		return model.Appointment{}, err
	}
	return a, nil
}

func (r *AppointmentRepository) Update(ctx context.Context, tx pgx.Tx, a model.Appointment) (model.Appointment, error) {
	err := tx.QueryRow(ctx, `
		UPDATE appointments
		SET client_id = $3, service_id = $4, employee_id = $5,
		    start_time = $6, end_time = $7, status = $8, updated_at = now()
		WHERE id = $1 AND owner_id = $2
		RETURNING created_at, updated_at
	`, a.ID, a.OwnerID, a.ClientID, a.ServiceID, a.EmployeeID, a.Start, a.End, a.Status).
		Scan(&a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if isNoRows(err) {
			return model.Appointment{}, ErrNotFound
		}
		if IsUniqueViolation(err) {
			return model.Appointment{}, Conflict("appointment", "an identical appointment already exists")
		}
		return model.Appointment{}, err
	}
	return a, nil
}

// ListByEmployee is the non-transactional variant used by read-only paths
// such as the availability calculator.
func (r *AppointmentRepository) ListByEmployee(ctx context.Context, employeeID string) ([]model.Appointment, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id::text, owner_id::text, client_id::text, service_id::text, employee_id::text,
		       start_time, end_time, status, created_at, updated_at
		FROM appointments
		WHERE employee_id = $1
		ORDER BY start_time
	`, employeeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanAppointments(rows)
}

func (r *AppointmentRepository) Get(ctx context.Context, id string) (model.Appointment, error) {
	var a model.Appointment
	err := r.pool.QueryRow(ctx, `
		SELECT id::text, owner_id::text, client_id::text, service_id::text, employee_id::text,
		       start_time, end_time, status, created_at, updated_at
		FROM appointments
		WHERE id = $1
	`, id).Scan(&a.ID, &a.OwnerID, &a.ClientID, &a.ServiceID, &a.EmployeeID,
		&a.Start, &a.End, &a.Status, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if isNoRows(err) {
			return model.Appointment{}, ErrNotFound
		}
		return model.Appointment{}, err
	}
	return a, nil
}

// AppointmentDetail joins in the display names the list endpoint returns
// alongside the raw IDs.
type AppointmentDetail struct {
	model.Appointment
	ClientName   string
	ServiceName  string
	EmployeeName string
}

func (r *AppointmentRepository) ListByOwner(ctx context.Context, ownerID string) ([]AppointmentDetail, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT a.id::text, a.owner_id::text, a.client_id::text, a.service_id::text, a.employee_id::text,
		       a.start_time, a.end_time, a.status, a.created_at, a.updated_at,
		       c.name, s.name, e.name
		FROM appointments a
		JOIN clients c ON c.id = a.client_id
		JOIN services s ON s.id = a.service_id
		JOIN employees e ON e.id = a.employee_id
		WHERE a.owner_id = $1
		ORDER BY a.start_time
	`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []AppointmentDetail{}
	for rows.Next() {
		var d AppointmentDetail
		err := rows.Scan(&d.ID, &d.OwnerID, &d.ClientID, &d.ServiceID, &d.EmployeeID,
			&d.Start, &d.End, &d.Status, &d.CreatedAt, &d.UpdatedAt,
			&d.ClientName, &d.ServiceName, &d.EmployeeName)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (r *AppointmentRepository) UpdateStatus(ctx context.Context, ownerID, id string, status model.AppointmentStatus) (model.Appointment, error) {
	var a model.Appointment
	err := r.pool.QueryRow(ctx, `
		UPDATE appointments
		SET status = $3, updated_at = now()
		WHERE id = $1 AND owner_id = $2
		RETURNING id::text, owner_id::text, client_id::text, service_id::text, employee_id::text,
		          start_time, end_time, status, created_at, updated_at
	`, id, ownerID, status).Scan(&a.ID, &a.OwnerID, &a.ClientID, &a.ServiceID, &a.EmployeeID,
		&a.Start, &a.End, &a.Status, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if isNoRows(err) {
			return model.Appointment{}, ErrNotFound
		}
		return model.Appointment{}, err
	}
	return a, nil
}

func (r *AppointmentRepository) Delete(ctx context.Context, ownerID, id string) error {
	tag, err := r.pool.Exec(ctx, `
		DELETE FROM appointments WHERE id = $1 AND owner_id = $2
	`, id, ownerID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanAppointments(rows pgx.Rows) ([]model.Appointment, error) {
	out := []model.Appointment{}
	for rows.Next() {
		var a model.Appointment
		err := rows.Scan(&a.ID, &a.OwnerID, &a.ClientID, &a.ServiceID, &a.EmployeeID,
			&a.Start, &a.End, &a.Status, &a.CreatedAt, &a.UpdatedAt)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
