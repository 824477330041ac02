package storage

import (
	"context"
	"fmt"

	"github.com/unifyhq/unify/libs/db"
)

// CreateSchema creates all tables and constraints if they do not exist yet.
// Uniqueness and cascade rules live here so the store enforces them even when
// an application-level check is raced by a concurrent writer.
func CreateSchema(ctx context.Context, pool *db.Pool) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS accounts (
			id UUID PRIMARY KEY,
			email TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS companies (
			id UUID PRIMARY KEY,
			owner_id UUID NOT NULL UNIQUE REFERENCES accounts(id) ON DELETE CASCADE,
			name TEXT NOT NULL UNIQUE,
			slug TEXT NOT NULL UNIQUE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS service_categories (
			id UUID PRIMARY KEY,
			owner_id UUID NOT NULL REFERENCES accounts(id) ON DELETE CASCADE,
			name TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			UNIQUE (owner_id, name)
		)`,
		`CREATE TABLE IF NOT EXISTS services (
			id UUID PRIMARY KEY,
			owner_id UUID NOT NULL REFERENCES accounts(id) ON DELETE CASCADE,
			category_id UUID REFERENCES service_categories(id) ON DELETE CASCADE,
			name TEXT NOT NULL,
			slug TEXT NOT NULL,
			duration_minutes INT NOT NULL DEFAULT 0 CHECK (duration_minutes >= 0),
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			UNIQUE (owner_id, category_id, name)
		)`,
		`CREATE TABLE IF NOT EXISTS employees (
			id UUID PRIMARY KEY,
			owner_id UUID NOT NULL REFERENCES accounts(id) ON DELETE CASCADE,
			name TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			UNIQUE (owner_id, name)
		)`,
		`CREATE TABLE IF NOT EXISTS employee_categories (
			employee_id UUID NOT NULL REFERENCES employees(id) ON DELETE CASCADE,
			category_id UUID NOT NULL REFERENCES service_categories(id) ON DELETE CASCADE,
			PRIMARY KEY (employee_id, category_id)
		)`,
		`CREATE TABLE IF NOT EXISTS work_schedules (
			id UUID PRIMARY KEY,
			owner_id UUID NOT NULL REFERENCES accounts(id) ON DELETE CASCADE,
			employee_id UUID NOT NULL REFERENCES employees(id) ON DELETE CASCADE,
			weekday INT NOT NULL CHECK (weekday BETWEEN 0 AND 6),
			start_minute INT CHECK (start_minute BETWEEN 0 AND 1439),
			end_minute INT CHECK (end_minute BETWEEN 1 AND 1440),
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS leave_days (
			id UUID PRIMARY KEY,
			employee_id UUID NOT NULL REFERENCES employees(id) ON DELETE CASCADE,
			day DATE NOT NULL,
			UNIQUE (employee_id, day)
		)`,
		`CREATE TABLE IF NOT EXISTS clients (
			id UUID PRIMARY KEY,
			owner_id UUID NOT NULL REFERENCES accounts(id) ON DELETE CASCADE,
			name TEXT NOT NULL,
			email TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			UNIQUE (owner_id, name, email)
		)`,
		`CREATE TABLE IF NOT EXISTS appointments (
			id UUID PRIMARY KEY,
			owner_id UUID NOT NULL REFERENCES accounts(id) ON DELETE CASCADE,
			client_id UUID NOT NULL REFERENCES clients(id) ON DELETE CASCADE,
			service_id UUID NOT NULL REFERENCES services(id) ON DELETE CASCADE,
			employee_id UUID NOT NULL REFERENCES employees(id) ON DELETE CASCADE,
			start_time TIMESTAMPTZ NOT NULL,
			end_time TIMESTAMPTZ NOT NULL,
			status TEXT NOT NULL DEFAULT 'scheduled',
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			UNIQUE (client_id, service_id, employee_id, start_time)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_appointments_employee_start
			ON appointments (employee_id, start_time)`,
		`CREATE INDEX IF NOT EXISTS idx_work_schedules_employee_weekday
			ON work_schedules (employee_id, weekday)`,
		`CREATE TABLE IF NOT EXISTS outbox_events (
			id BIGSERIAL PRIMARY KEY,
			event_id UUID NOT NULL DEFAULT gen_random_uuid(),
			aggregate_type TEXT NOT NULL,
			aggregate_id TEXT NOT NULL,
			event_type TEXT NOT NULL,
			payload JSONB NOT NULL,
			traceparent TEXT NOT NULL DEFAULT '',
			tracestate TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			published_at TIMESTAMPTZ
		)`,
		`CREATE INDEX IF NOT EXISTS idx_outbox_unpublished
			ON outbox_events (id) WHERE published_at IS NULL`,
	}

	for _, stmt := range statements {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("schema statement failed: %w", err)
		}
	}
	return nil
}
