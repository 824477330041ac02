package scheduling

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/unifyhq/unify/internal/model"
	"github.com/unifyhq/unify/internal/storage"
)

// conflictTimeLayout formats the conflicting window in rejection messages.
const conflictTimeLayout = "2006-01-02 15:04:05"

// EventRecorder appends a domain event to the outbox inside the booking
// transaction, so the event is published iff the booking committed.
type EventRecorder interface {
	Record(ctx context.Context, tx pgx.Tx, aggregateType, aggregateID, eventType string, payload any) error
}

// Request is a candidate appointment. End time is never accepted from the
// caller; it is derived from the service duration.
type Request struct {
	ClientID   string
	ServiceID  string
	EmployeeID string
	Start      time.Time
	Status     model.AppointmentStatus
}

type Engine struct {
	catalog      *storage.CatalogRepository
	workforce    *storage.WorkforceRepository
	clients      *storage.ClientRepository
	appointments *storage.AppointmentRepository
	events       EventRecorder
	logger       *slog.Logger
}

func NewEngine(
	catalog *storage.CatalogRepository,
	workforce *storage.WorkforceRepository,
	clients *storage.ClientRepository,
	appointments *storage.AppointmentRepository,
	events EventRecorder,
	logger *slog.Logger,
) *Engine {
	return &Engine{
		catalog:      catalog,
		workforce:    workforce,
		clients:      clients,
		appointments: appointments,
		events:       events,
		logger:       logger,
	}
}

// Schedule validates and persists a new appointment. The overlap and
// duplicate checks run inside a transaction holding an advisory lock on the
// employee, so concurrent bookings for the same employee serialize.
func (e *Engine) Schedule(ctx context.Context, ownerID string, req Request) (model.Appointment, error) {
	svc, emp, err := e.resolveRefs(ctx, ownerID, req)
	if err != nil {
		return model.Appointment{}, err
	}

	status := req.Status
	if status == "" {
		status = model.StatusScheduled
	}
	if !status.Valid() {
		return model.Appointment{}, fmt.Errorf("%w: unknown status %q", ErrMalformed, status)
	}

	cand := model.Appointment{
		OwnerID:    ownerID,
		ClientID:   req.ClientID,
		ServiceID:  req.ServiceID,
		EmployeeID: req.EmployeeID,
		Start:      req.Start,
		End:        req.Start.Add(time.Duration(svc.DurationMinutes) * time.Minute),
		Status:     status,
	}

	return e.commit(ctx, cand, "", emp.Name)
}

// Reschedule re-validates an existing appointment with new fields. The end
// time is re-derived from the (possibly changed) service, and the
// appointment's own row is excluded from both checks.
func (e *Engine) Reschedule(ctx context.Context, ownerID, id string, req Request) (model.Appointment, error) {
	current, err := e.appointments.Get(ctx, id)
	if err != nil {
		return model.Appointment{}, err
	}
	if current.OwnerID != ownerID {
		return model.Appointment{}, storage.ErrPermissionDenied
	}

	svc, emp, err := e.resolveRefs(ctx, ownerID, req)
	if err != nil {
		return model.Appointment{}, err
	}

	status := req.Status
	if status == "" {
		status = current.Status
	}
	if !status.Valid() {
		return model.Appointment{}, fmt.Errorf("%w: unknown status %q", ErrMalformed, status)
	}

	cand := current
	cand.ClientID = req.ClientID
	cand.ServiceID = req.ServiceID
	cand.EmployeeID = req.EmployeeID
	cand.Start = req.Start
	cand.End = req.Start.Add(time.Duration(svc.DurationMinutes) * time.Minute)
	cand.Status = status

	return e.commit(ctx, cand, id, emp.Name)
}

// ChangeStatus updates only the status field. Transitions are not restricted
// beyond enum membership.
func (e *Engine) ChangeStatus(ctx context.Context, ownerID, id string, status model.AppointmentStatus) (model.Appointment, error) {
	if !status.Valid() {
		return model.Appointment{}, fmt.Errorf("%w: unknown status %q", ErrMalformed, status)
	}
	current, err := e.appointments.Get(ctx, id)
	if err != nil {
		return model.Appointment{}, err
	}
	if current.OwnerID != ownerID {
		return model.Appointment{}, storage.ErrPermissionDenied
	}

	updated, err := e.appointments.UpdateStatus(ctx, ownerID, id, status)
	if err != nil {
		return model.Appointment{}, err
	}
	e.record(ctx, nil, updated, eventTypeFor(status))
	return updated, nil
}

// commit runs the check-then-act sequence under the employee advisory lock.
func (e *Engine) commit(ctx context.Context, cand model.Appointment, excludeID, employeeName string) (model.Appointment, error) {
	tx, err := e.appointments.Begin(ctx)
	if err != nil {
		return model.Appointment{}, err
	}
	defer tx.Rollback(ctx)

	if err := e.appointments.LockEmployee(ctx, tx, cand.EmployeeID); err != nil {
		return model.Appointment{}, err
	}
	existing, err := e.appointments.ListForEmployee(ctx, tx, cand.EmployeeID)
	if err != nil {
		return model.Appointment{}, err
	}

	if c := FindConflict(existing, cand.Start, cand.End, excludeID); c != nil {
		return model.Appointment{}, storage.Conflict("start_time", ConflictMessage(employeeName, *c))
	}
	if FindDuplicate(existing, cand, excludeID) {
		return model.Appointment{}, storage.Conflict("appointment", "an identical appointment already exists")
	}

	var saved model.Appointment
	eventType := "appointments.appointment.scheduled.v1"
	if excludeID == "" {
		saved, err = e.appointments.Insert(ctx, tx, cand)
	} else {
		saved, err = e.appointments.Update(ctx, tx, cand)
		eventType = "appointments.appointment.rescheduled.v1"
	}
	if err != nil {
		return model.Appointment{}, err
	}
	e.record(ctx, tx, saved, eventType)

	if err := tx.Commit(ctx); err != nil {
		return model.Appointment{}, err
	}
	e.logger.InfoContext(ctx, "appointment committed",
		"appointment_id", saved.ID,
		"employee_id", saved.EmployeeID,
		"start", saved.Start,
		"end", saved.End,
	)
	return saved, nil
}

// ConflictMessage names the booked employee and the conflicting window.
func ConflictMessage(employeeName string, c model.Appointment) string {
	return fmt.Sprintf("%s is already booked from %s to %s",
		employeeName, c.Start.Format(conflictTimeLayout), c.End.Format(conflictTimeLayout))
}

// resolveRefs loads the referenced client, service and employee, failing with
// not-found for missing entities and permission-denied for foreign ones.
// Returns the service (its duration feeds end-time derivation) and the
// employee (named in conflict errors).
func (e *Engine) resolveRefs(ctx context.Context, ownerID string, req Request) (model.Service, model.Employee, error) {
	client, err := e.clients.Get(ctx, req.ClientID)
	if err != nil {
		return model.Service{}, model.Employee{}, fmt.Errorf("client: %w", err)
	}
	if client.OwnerID != ownerID {
		return model.Service{}, model.Employee{}, storage.ErrPermissionDenied
	}

	svc, err := e.catalog.GetService(ctx, req.ServiceID)
	if err != nil {
		return model.Service{}, model.Employee{}, fmt.Errorf("service: %w", err)
	}
	if svc.OwnerID != ownerID {
		return model.Service{}, model.Employee{}, storage.ErrPermissionDenied
	}

	emp, err := e.workforce.GetEmployee(ctx, req.EmployeeID)
	if err != nil {
		return model.Service{}, model.Employee{}, fmt.Errorf("employee: %w", err)
	}
	if emp.OwnerID != ownerID {
		return model.Service{}, model.Employee{}, storage.ErrPermissionDenied
	}
	return svc, emp, nil
}

func (e *Engine) record(ctx context.Context, tx pgx.Tx, a model.Appointment, eventType string) {
	if e.events == nil {
		return
	}
	payload := map[string]any{
		"appointment_id": a.ID,
		"owner_id":       a.OwnerID,
		"client_id":      a.ClientID,
		"service_id":     a.ServiceID,
		"employee_id":    a.EmployeeID,
		"start_time":     a.Start,
		"end_time":       a.End,
		"status":         a.Status,
	}
	if err := e.events.Record(ctx, tx, "appointment", a.ID, eventType, payload); err != nil {
		e.logger.ErrorContext(ctx, "outbox record failed", "error", err, "event_type", eventType)
	}
}

func eventTypeFor(status model.AppointmentStatus) string {
	if status == model.StatusCancelled {
		return "appointments.appointment.cancelled.v1"
	}
	return "appointments.appointment.status_changed.v1"
}
