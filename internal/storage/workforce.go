package storage

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/unifyhq/unify/internal/model"
	"github.com/unifyhq/unify/libs/db"
)

// WorkforceRepository stores employees together with their category
// assignments, weekly work schedules and leave days.
type WorkforceRepository struct {
	pool *db.Pool
}

func NewWorkforceRepository(pool *db.Pool) *WorkforceRepository {
	return &WorkforceRepository{pool: pool}
}

func (r *WorkforceRepository) CreateEmployee(ctx context.Context, e model.Employee) (model.Employee, error) {
	e.ID = uuid.NewString()
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return model.Employee{}, err
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx, `
		INSERT INTO employees (id, owner_id, name)
		VALUES ($1, $2, $3)
		RETURNING created_at
	`, e.ID, e.OwnerID, e.Name).Scan(&e.CreatedAt)
	if err != nil {
		if IsUniqueViolation(err) {
			return model.Employee{}, Conflict("name", "employee with this name already exists")
		}
		return model.Employee{}, err
	}
	if err := setCategories(ctx, tx, e.ID, e.CategoryIDs); err != nil {
		return model.Employee{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return model.Employee{}, err
	}
	return e, nil
}

func (r *WorkforceRepository) GetEmployee(ctx context.Context, id string) (model.Employee, error) {
	var e model.Employee
	err := r.pool.QueryRow(ctx, `
		SELECT id::text, owner_id::text, name, created_at
		FROM employees
		WHERE id = $1
	`, id).Scan(&e.ID, &e.OwnerID, &e.Name, &e.CreatedAt)
	if err != nil {
		if isNoRows(err) {
			return model.Employee{}, ErrNotFound
		}
		return model.Employee{}, err
	}
	e.CategoryIDs, err = r.categoryIDs(ctx, e.ID)
	if err != nil {
		return model.Employee{}, err
	}
	return e, nil
}

func (r *WorkforceRepository) ListEmployees(ctx context.Context, ownerID string) ([]model.Employee, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id::text, owner_id::text, name, created_at
		FROM employees
		WHERE owner_id = $1
		ORDER BY name
	`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Employee{}
	for rows.Next() {
		var e model.Employee
		if err := rows.Scan(&e.ID, &e.OwnerID, &e.Name, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range out {
		out[i].CategoryIDs, err = r.categoryIDs(ctx, out[i].ID)
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

// ListEmployeesByCategory backs the embedded employees in a category detail.
func (r *WorkforceRepository) ListEmployeesByCategory(ctx context.Context, categoryID string) ([]model.Employee, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT e.id::text, e.owner_id::text, e.name, e.created_at
		FROM employees e
		JOIN employee_categories ec ON ec.employee_id = e.id
		WHERE ec.category_id = $1
		ORDER BY e.name
	`, categoryID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Employee{}
	for rows.Next() {
		var e model.Employee
		if err := rows.Scan(&e.ID, &e.OwnerID, &e.Name, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *WorkforceRepository) UpdateEmployee(ctx context.Context, e model.Employee) (model.Employee, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return model.Employee{}, err
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx, `
		UPDATE employees
		SET name = $3
		WHERE id = $1 AND owner_id = $2
		RETURNING created_at
	`, e.ID, e.OwnerID, e.Name).Scan(&e.CreatedAt)
	if err != nil {
		if isNoRows(err) {
			return model.Employee{}, ErrNotFound
		}
		if IsUniqueViolation(err) {
			return model.Employee{}, Conflict("name", "employee with this name already exists")
		}
		return model.Employee{}, err
	}
	if _, err := tx.Exec(ctx, `DELETE FROM employee_categories WHERE employee_id = $1`, e.ID); err != nil {
		return model.Employee{}, err
	}
	if err := setCategories(ctx, tx, e.ID, e.CategoryIDs); err != nil {
		return model.Employee{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return model.Employee{}, err
	}
	return e, nil
}

func (r *WorkforceRepository) DeleteEmployee(ctx context.Context, ownerID, id string) error {
	tag, err := r.pool.Exec(ctx, `
		DELETE FROM employees WHERE id = $1 AND owner_id = $2
	`, id, ownerID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func setCategories(ctx context.Context, tx pgx.Tx, employeeID string, categoryIDs []string) error {
	for _, catID := range categoryIDs {
		_, err := tx.Exec(ctx, `
			INSERT INTO employee_categories (employee_id, category_id)
			VALUES ($1, $2)
			ON CONFLICT DO NOTHING
		`, employeeID, catID)
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *WorkforceRepository) categoryIDs(ctx context.Context, employeeID string) ([]string, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT category_id::text
		FROM employee_categories
		WHERE employee_id = $1
		ORDER BY category_id
	`, employeeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *WorkforceRepository) CreateSchedule(ctx context.Context, ws model.WorkSchedule) (model.WorkSchedule, error) {
	ws.ID = uuid.NewString()
	_, err := r.pool.Exec(ctx, `
		INSERT INTO work_schedules (id, owner_id, employee_id, weekday, start_minute, end_minute)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, ws.ID, ws.OwnerID, ws.EmployeeID, ws.Weekday, ws.StartMinute, ws.EndMinute)
	if err != nil {
		return model.WorkSchedule{}, err
	}
	return ws, nil
}

func (r *WorkforceRepository) GetSchedule(ctx context.Context, id string) (model.WorkSchedule, error) {
	var ws model.WorkSchedule
	err := r.pool.QueryRow(ctx, `
		SELECT id::text, owner_id::text, employee_id::text, weekday, start_minute, end_minute
		FROM work_schedules
		WHERE id = $1
	`, id).Scan(&ws.ID, &ws.OwnerID, &ws.EmployeeID, &ws.Weekday, &ws.StartMinute, &ws.EndMinute)
	if err != nil {
		if isNoRows(err) {
			return model.WorkSchedule{}, ErrNotFound
		}
		return model.WorkSchedule{}, err
	}
	return ws, nil
}

// ListSchedules returns every schedule row for one employee, ordered for the
// weekly overlap check and the availability calculator.
func (r *WorkforceRepository) ListSchedules(ctx context.Context, employeeID string) ([]model.WorkSchedule, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id::text, owner_id::text, employee_id::text, weekday, start_minute, end_minute
		FROM work_schedules
		WHERE employee_id = $1
		ORDER BY weekday, start_minute NULLS FIRST
	`, employeeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.WorkSchedule{}
	for rows.Next() {
		var ws model.WorkSchedule
		if err := rows.Scan(&ws.ID, &ws.OwnerID, &ws.EmployeeID, &ws.Weekday, &ws.StartMinute, &ws.EndMinute); err != nil {
			return nil, err
		}
		out = append(out, ws)
	}
	return out, rows.Err()
}

func (r *WorkforceRepository) UpdateSchedule(ctx context.Context, ws model.WorkSchedule) (model.WorkSchedule, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE work_schedules
		SET weekday = $3, start_minute = $4, end_minute = $5
		WHERE id = $1 AND owner_id = $2
	`, ws.ID, ws.OwnerID, ws.Weekday, ws.StartMinute, ws.EndMinute)
	if err != nil {
		return model.WorkSchedule{}, err
	}
	if tag.RowsAffected() == 0 {
		return model.WorkSchedule{}, ErrNotFound
	}
	return ws, nil
}

func (r *WorkforceRepository) DeleteSchedule(ctx context.Context, ownerID, id string) error {
	tag, err := r.pool.Exec(ctx, `
		DELETE FROM work_schedules WHERE id = $1 AND owner_id = $2
	`, id, ownerID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *WorkforceRepository) CreateLeaveDay(ctx context.Context, employeeID string, day time.Time) (model.LeaveDay, error) {
	ld := model.LeaveDay{
		ID:         uuid.NewString(),
		EmployeeID: employeeID,
		Day:        day,
	}
	_, err := r.pool.Exec(ctx, `
		INSERT INTO leave_days (id, employee_id, day)
		VALUES ($1, $2, $3)
	`, ld.ID, ld.EmployeeID, ld.Day)
	if err != nil {
		if IsUniqueViolation(err) {
			return model.LeaveDay{}, Conflict("day", "leave day already recorded for this employee")
		}
		return model.LeaveDay{}, err
	}
	return ld, nil
}

func (r *WorkforceRepository) ListLeaveDays(ctx context.Context, employeeID string) ([]model.LeaveDay, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id::text, employee_id::text, day
		FROM leave_days
		WHERE employee_id = $1
		ORDER BY day
	`, employeeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.LeaveDay{}
	for rows.Next() {
		var ld model.LeaveDay
		if err := rows.Scan(&ld.ID, &ld.EmployeeID, &ld.Day); err != nil {
			return nil, err
		}
		out = append(out, ld)
	}
	return out, rows.Err()
}

func (r *WorkforceRepository) DeleteLeaveDay(ctx context.Context, employeeID, id string) error {
	tag, err := r.pool.Exec(ctx, `
		DELETE FROM leave_days WHERE id = $1 AND employee_id = $2
	`, id, employeeID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
