package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/unifyhq/unify/internal/availability"
	"github.com/unifyhq/unify/internal/model"
	"github.com/unifyhq/unify/internal/scheduling"
	"github.com/unifyhq/unify/internal/storage"
)

// AppointmentHandler is the HTTP face of the scheduling engine.
type AppointmentHandler struct {
	engine       *scheduling.Engine
	appointments *storage.AppointmentRepository
	workforce    *storage.WorkforceRepository
	catalog      *storage.CatalogRepository
	logger       *slog.Logger
}

func NewAppointmentHandler(
	engine *scheduling.Engine,
	appointments *storage.AppointmentRepository,
	workforce *storage.WorkforceRepository,
	catalog *storage.CatalogRepository,
	logger *slog.Logger,
) *AppointmentHandler {
	return &AppointmentHandler{
		engine:       engine,
		appointments: appointments,
		workforce:    workforce,
		catalog:      catalog,
		logger:       logger,
	}
}

type appointmentRequest struct {
	ClientID   string    `json:"client_id"`
	ServiceID  string    `json:"service_id"`
	EmployeeID string    `json:"employee_id"`
	Start      time.Time `json:"start_time"`
	Status     string    `json:"status"`
}

type appointmentResponse struct {
	ID           string    `json:"id"`
	ClientID     string    `json:"client_id"`
	ServiceID    string    `json:"service_id"`
	EmployeeID   string    `json:"employee_id"`
	ClientName   string    `json:"client_name,omitempty"`
	ServiceName  string    `json:"service_name,omitempty"`
	EmployeeName string    `json:"employee_name,omitempty"`
	Start        time.Time `json:"start_time"`
	End          time.Time `json:"end_time"`
	Status       string    `json:"status"`
}

type statusRequest struct {
	Status string `json:"status"`
}

func (h *AppointmentHandler) Handle(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		if id := r.URL.Query().Get("id"); id != "" {
			h.get(w, r, id)
		} else {
			h.list(w, r)
		}
	case http.MethodPost:
		h.create(w, r)
	case http.MethodPut:
		h.update(w, r)
	case http.MethodDelete:
		h.delete(w, r)
	default:
		methodNotAllowed(w)
	}
}

func (h *AppointmentHandler) list(w http.ResponseWriter, r *http.Request) {
	details, err := h.appointments.ListByOwner(r.Context(), AccountIDFromContext(r.Context()))
	if err != nil {
		respondError(w, h.logger, r, err)
		return
	}
	out := make([]appointmentResponse, 0, len(details))
	for _, d := range details {
		resp := toAppointmentResponse(d.Appointment)
		resp.ClientName = d.ClientName
		resp.ServiceName = d.ServiceName
		resp.EmployeeName = d.EmployeeName
		out = append(out, resp)
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *AppointmentHandler) get(w http.ResponseWriter, r *http.Request, id string) {
	a, err := h.owned(r, id)
	if err != nil {
		respondError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toAppointmentResponse(a))
}

func (h *AppointmentHandler) create(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeAppointment(w, r)
	if !ok {
		return
	}
	a, err := h.engine.Schedule(r.Context(), AccountIDFromContext(r.Context()), scheduling.Request{
		ClientID:   req.ClientID,
		ServiceID:  req.ServiceID,
		EmployeeID: req.EmployeeID,
		Start:      req.Start,
		Status:     model.AppointmentStatus(req.Status),
	})
	if err != nil {
		respondError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toAppointmentResponse(a))
}

func (h *AppointmentHandler) update(w http.ResponseWriter, r *http.Request) {
	id, ok := requireID(w, r)
	if !ok {
		return
	}
	req, ok := decodeAppointment(w, r)
	if !ok {
		return
	}
	a, err := h.engine.Reschedule(r.Context(), AccountIDFromContext(r.Context()), id, scheduling.Request{
		ClientID:   req.ClientID,
		ServiceID:  req.ServiceID,
		EmployeeID: req.EmployeeID,
		Start:      req.Start,
		Status:     model.AppointmentStatus(req.Status),
	})
	if err != nil {
		respondError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toAppointmentResponse(a))
}

func (h *AppointmentHandler) delete(w http.ResponseWriter, r *http.Request) {
	id, ok := requireID(w, r)
	if !ok {
		return
	}
	if _, err := h.owned(r, id); err != nil {
		respondError(w, h.logger, r, err)
		return
	}
	if err := h.appointments.Delete(r.Context(), AccountIDFromContext(r.Context()), id); err != nil {
		respondError(w, h.logger, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Status updates only the status field of an appointment.
func (h *AppointmentHandler) Status(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	id, ok := requireID(w, r)
	if !ok {
		return
	}
	var req statusRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	a, err := h.engine.ChangeStatus(r.Context(), AccountIDFromContext(r.Context()), id, model.AppointmentStatus(req.Status))
	if err != nil {
		respondError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toAppointmentResponse(a))
}

// Slots computes the free start times for one employee, one service and one
// day from the weekly schedule, leave days and existing bookings.
func (h *AppointmentHandler) Slots(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	q := r.URL.Query()
	employeeID := q.Get("employee_id")
	serviceID := q.Get("service_id")
	dayRaw := q.Get("date")
	if employeeID == "" || serviceID == "" || dayRaw == "" {
		writeError(w, http.StatusBadRequest, "employee_id, service_id and date are required")
		return
	}
	day, err := time.Parse(dateLayout, dayRaw)
	if err != nil {
		writeError(w, http.StatusBadRequest, "date must be formatted YYYY-MM-DD")
		return
	}

	ownerID := AccountIDFromContext(r.Context())
	emp, err := h.workforce.GetEmployee(r.Context(), employeeID)
	if err != nil {
		respondError(w, h.logger, r, err)
		return
	}
	if emp.OwnerID != ownerID {
		respondError(w, h.logger, r, storage.ErrPermissionDenied)
		return
	}
	svc, err := h.catalog.GetService(r.Context(), serviceID)
	if err != nil {
		respondError(w, h.logger, r, err)
		return
	}
	if svc.OwnerID != ownerID {
		respondError(w, h.logger, r, storage.ErrPermissionDenied)
		return
	}

	schedules, err := h.workforce.ListSchedules(r.Context(), employeeID)
	if err != nil {
		respondError(w, h.logger, r, err)
		return
	}
	leave, err := h.workforce.ListLeaveDays(r.Context(), employeeID)
	if err != nil {
		respondError(w, h.logger, r, err)
		return
	}
	appts, err := h.appointments.ListByEmployee(r.Context(), employeeID)
	if err != nil {
		respondError(w, h.logger, r, err)
		return
	}

	windows := availability.DayWindows(schedules, leave, day)
	slots := availability.Slots(day, windows, appts, svc.DurationMinutes, time.Now())
	writeJSON(w, http.StatusOK, map[string]any{
		"employee_id": employeeID,
		"service_id":  serviceID,
		"date":        day.Format(dateLayout),
		"slots":       slots,
	})
}

func decodeAppointment(w http.ResponseWriter, r *http.Request) (appointmentRequest, bool) {
	var req appointmentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return req, false
	}
	if req.ClientID == "" || req.ServiceID == "" || req.EmployeeID == "" || req.Start.IsZero() {
		writeError(w, http.StatusBadRequest, "client_id, service_id, employee_id and start_time are required")
		return req, false
	}
	return req, true
}

func (h *AppointmentHandler) owned(r *http.Request, id string) (model.Appointment, error) {
	a, err := h.appointments.Get(r.Context(), id)
	if err != nil {
		return model.Appointment{}, err
	}
	if a.OwnerID != AccountIDFromContext(r.Context()) {
		return model.Appointment{}, storage.ErrPermissionDenied
	}
	return a, nil
}

func toAppointmentResponse(a model.Appointment) appointmentResponse {
	return appointmentResponse{
		ID:         a.ID,
		ClientID:   a.ClientID,
		ServiceID:  a.ServiceID,
		EmployeeID: a.EmployeeID,
		Start:      a.Start,
		End:        a.End,
		Status:     string(a.Status),
	}
}
