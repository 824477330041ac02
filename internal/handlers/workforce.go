package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/unifyhq/unify/internal/model"
	"github.com/unifyhq/unify/internal/naming"
	"github.com/unifyhq/unify/internal/scheduling"
	"github.com/unifyhq/unify/internal/storage"
)

const dateLayout = "2006-01-02"

// WorkforceHandler serves employees, their weekly work schedules and their
// leave days.
type WorkforceHandler struct {
	workforce *storage.WorkforceRepository
	catalog   *storage.CatalogRepository
	logger    *slog.Logger
}

func NewWorkforceHandler(workforce *storage.WorkforceRepository, catalog *storage.CatalogRepository, logger *slog.Logger) *WorkforceHandler {
	return &WorkforceHandler{workforce: workforce, catalog: catalog, logger: logger}
}

type employeeRequest struct {
	Name        string   `json:"name"`
	CategoryIDs []string `json:"category_ids"`
}

type employeeResponse struct {
	ID          string             `json:"id"`
	Name        string             `json:"name"`
	CategoryIDs []string           `json:"category_ids"`
	Schedules   []scheduleResponse `json:"schedules,omitempty"`
}

type scheduleRequest struct {
	EmployeeID  string `json:"employee_id"`
	Weekday     int    `json:"weekday"`
	StartMinute *int   `json:"start_minute"`
	EndMinute   *int   `json:"end_minute"`
}

type scheduleResponse struct {
	ID          string `json:"id"`
	EmployeeID  string `json:"employee_id"`
	Weekday     int    `json:"weekday"`
	StartMinute *int   `json:"start_minute"`
	EndMinute   *int   `json:"end_minute"`
}

type leaveRequest struct {
	EmployeeID string `json:"employee_id"`
	Day        string `json:"day"`
}

type leaveResponse struct {
	ID         string `json:"id"`
	EmployeeID string `json:"employee_id"`
	Day        string `json:"day"`
}

func (h *WorkforceHandler) Employees(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		if id := r.URL.Query().Get("id"); id != "" {
			h.getEmployee(w, r, id)
		} else {
			h.listEmployees(w, r)
		}
	case http.MethodPost:
		h.createEmployee(w, r)
	case http.MethodPut:
		h.updateEmployee(w, r)
	case http.MethodDelete:
		h.deleteEmployee(w, r)
	default:
		methodNotAllowed(w)
	}
}

func (h *WorkforceHandler) listEmployees(w http.ResponseWriter, r *http.Request) {
	employees, err := h.workforce.ListEmployees(r.Context(), AccountIDFromContext(r.Context()))
	if err != nil {
		respondError(w, h.logger, r, err)
		return
	}
	out := make([]employeeResponse, 0, len(employees))
	for _, e := range employees {
		out = append(out, employeeResponse{ID: e.ID, Name: e.Name, CategoryIDs: e.CategoryIDs})
	}
	writeJSON(w, http.StatusOK, out)
}

// getEmployee embeds the employee's weekly schedule rows in the detail view.
func (h *WorkforceHandler) getEmployee(w http.ResponseWriter, r *http.Request, id string) {
	e, err := h.ownedEmployee(r, id)
	if err != nil {
		respondError(w, h.logger, r, err)
		return
	}
	schedules, err := h.workforce.ListSchedules(r.Context(), e.ID)
	if err != nil {
		respondError(w, h.logger, r, err)
		return
	}

	resp := employeeResponse{ID: e.ID, Name: e.Name, CategoryIDs: e.CategoryIDs}
	for _, ws := range schedules {
		resp.Schedules = append(resp.Schedules, toScheduleResponse(ws))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *WorkforceHandler) createEmployee(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeEmployee(w, r)
	if !ok {
		return
	}
	e, err := h.workforce.CreateEmployee(r.Context(), model.Employee{
		OwnerID:     AccountIDFromContext(r.Context()),
		Name:        req.Name,
		CategoryIDs: req.CategoryIDs,
	})
	if err != nil {
		respondError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, employeeResponse{ID: e.ID, Name: e.Name, CategoryIDs: e.CategoryIDs})
}

func (h *WorkforceHandler) updateEmployee(w http.ResponseWriter, r *http.Request) {
	id, ok := requireID(w, r)
	if !ok {
		return
	}
	req, ok := h.decodeEmployee(w, r)
	if !ok {
		return
	}
	e, err := h.ownedEmployee(r, id)
	if err != nil {
		respondError(w, h.logger, r, err)
		return
	}
	e.Name = req.Name
	e.CategoryIDs = req.CategoryIDs

	updated, err := h.workforce.UpdateEmployee(r.Context(), e)
	if err != nil {
		respondError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, employeeResponse{ID: updated.ID, Name: updated.Name, CategoryIDs: updated.CategoryIDs})
}

// deleteEmployee cascades to the employee's schedules, leave days and
// appointments via the store's FK rules.
func (h *WorkforceHandler) deleteEmployee(w http.ResponseWriter, r *http.Request) {
	id, ok := requireID(w, r)
	if !ok {
		return
	}
	if _, err := h.ownedEmployee(r, id); err != nil {
		respondError(w, h.logger, r, err)
		return
	}
	if err := h.workforce.DeleteEmployee(r.Context(), AccountIDFromContext(r.Context()), id); err != nil {
		respondError(w, h.logger, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *WorkforceHandler) decodeEmployee(w http.ResponseWriter, r *http.Request) (employeeRequest, bool) {
	var req employeeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return req, false
	}
	req.Name = naming.TitleCase(req.Name)
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return req, false
	}
	for _, catID := range req.CategoryIDs {
		cat, err := h.catalog.GetCategory(r.Context(), catID)
		if err != nil {
			respondError(w, h.logger, r, err)
			return req, false
		}
		if cat.OwnerID != AccountIDFromContext(r.Context()) {
			respondError(w, h.logger, r, storage.ErrPermissionDenied)
			return req, false
		}
	}
	return req, true
}

func (h *WorkforceHandler) Schedules(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.listSchedules(w, r)
	case http.MethodPost:
		h.createSchedule(w, r)
	case http.MethodPut:
		h.updateSchedule(w, r)
	case http.MethodDelete:
		h.deleteSchedule(w, r)
	default:
		methodNotAllowed(w)
	}
}

func (h *WorkforceHandler) listSchedules(w http.ResponseWriter, r *http.Request) {
	employeeID := r.URL.Query().Get("employee_id")
	if employeeID == "" {
		writeError(w, http.StatusBadRequest, "missing employee_id parameter")
		return
	}
	if _, err := h.ownedEmployee(r, employeeID); err != nil {
		respondError(w, h.logger, r, err)
		return
	}
	schedules, err := h.workforce.ListSchedules(r.Context(), employeeID)
	if err != nil {
		respondError(w, h.logger, r, err)
		return
	}
	out := make([]scheduleResponse, 0, len(schedules))
	for _, ws := range schedules {
		out = append(out, toScheduleResponse(ws))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *WorkforceHandler) createSchedule(w http.ResponseWriter, r *http.Request) {
	var req scheduleRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	cand := model.WorkSchedule{
		OwnerID:     AccountIDFromContext(r.Context()),
		EmployeeID:  req.EmployeeID,
		Weekday:     req.Weekday,
		StartMinute: req.StartMinute,
		EndMinute:   req.EndMinute,
	}
	if !h.validateSchedule(w, r, cand) {
		return
	}
	ws, err := h.workforce.CreateSchedule(r.Context(), cand)
	if err != nil {
		respondError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toScheduleResponse(ws))
}

func (h *WorkforceHandler) updateSchedule(w http.ResponseWriter, r *http.Request) {
	id, ok := requireID(w, r)
	if !ok {
		return
	}
	var req scheduleRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	current, err := h.ownedSchedule(r, id)
	if err != nil {
		respondError(w, h.logger, r, err)
		return
	}

	cand := current
	cand.Weekday = req.Weekday
	cand.StartMinute = req.StartMinute
	cand.EndMinute = req.EndMinute
	if !h.validateSchedule(w, r, cand) {
		return
	}
	updated, err := h.workforce.UpdateSchedule(r.Context(), cand)
	if err != nil {
		respondError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toScheduleResponse(updated))
}

func (h *WorkforceHandler) deleteSchedule(w http.ResponseWriter, r *http.Request) {
	id, ok := requireID(w, r)
	if !ok {
		return
	}
	if _, err := h.ownedSchedule(r, id); err != nil {
		respondError(w, h.logger, r, err)
		return
	}
	if err := h.workforce.DeleteSchedule(r.Context(), AccountIDFromContext(r.Context()), id); err != nil {
		respondError(w, h.logger, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// validateSchedule checks structural rules (weekday range, start before end)
// and rejects intervals intersecting another row for the same employee and
// weekday. The candidate's own ID excludes it on update.
func (h *WorkforceHandler) validateSchedule(w http.ResponseWriter, r *http.Request, cand model.WorkSchedule) bool {
	if cand.Weekday < 0 || cand.Weekday > 6 {
		writeError(w, http.StatusBadRequest, "weekday must be between 0 and 6")
		return false
	}
	if (cand.StartMinute == nil) != (cand.EndMinute == nil) {
		writeError(w, http.StatusBadRequest, "start_minute and end_minute must be set together")
		return false
	}
	if cand.StartMinute != nil && *cand.StartMinute >= *cand.EndMinute {
		writeError(w, http.StatusBadRequest, "start_minute must be before end_minute")
		return false
	}
	if _, err := h.ownedEmployee(r, cand.EmployeeID); err != nil {
		respondError(w, h.logger, r, err)
		return false
	}

	existing, err := h.workforce.ListSchedules(r.Context(), cand.EmployeeID)
	if err != nil {
		respondError(w, h.logger, r, err)
		return false
	}
	if c := scheduling.ScheduleConflict(existing, cand); c != nil {
		writeJSON(w, http.StatusConflict, errorBody{
			Error: "schedule overlaps an existing interval on the same weekday",
			Field: "start_minute",
		})
		return false
	}
	return true
}

func (h *WorkforceHandler) Leave(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.listLeave(w, r)
	case http.MethodPost:
		h.createLeave(w, r)
	case http.MethodDelete:
		h.deleteLeave(w, r)
	default:
		methodNotAllowed(w)
	}
}

func (h *WorkforceHandler) listLeave(w http.ResponseWriter, r *http.Request) {
	employeeID := r.URL.Query().Get("employee_id")
	if employeeID == "" {
		writeError(w, http.StatusBadRequest, "missing employee_id parameter")
		return
	}
	if _, err := h.ownedEmployee(r, employeeID); err != nil {
		respondError(w, h.logger, r, err)
		return
	}
	days, err := h.workforce.ListLeaveDays(r.Context(), employeeID)
	if err != nil {
		respondError(w, h.logger, r, err)
		return
	}
	out := make([]leaveResponse, 0, len(days))
	for _, ld := range days {
		out = append(out, leaveResponse{ID: ld.ID, EmployeeID: ld.EmployeeID, Day: ld.Day.Format(dateLayout)})
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *WorkforceHandler) createLeave(w http.ResponseWriter, r *http.Request) {
	var req leaveRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	day, err := time.Parse(dateLayout, req.Day)
	if err != nil {
		writeError(w, http.StatusBadRequest, "day must be formatted YYYY-MM-DD")
		return
	}
	if _, err := h.ownedEmployee(r, req.EmployeeID); err != nil {
		respondError(w, h.logger, r, err)
		return
	}
	ld, err := h.workforce.CreateLeaveDay(r.Context(), req.EmployeeID, day)
	if err != nil {
		respondError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, leaveResponse{ID: ld.ID, EmployeeID: ld.EmployeeID, Day: ld.Day.Format(dateLayout)})
}

func (h *WorkforceHandler) deleteLeave(w http.ResponseWriter, r *http.Request) {
	id, ok := requireID(w, r)
	if !ok {
		return
	}
	employeeID := r.URL.Query().Get("employee_id")
	if employeeID == "" {
		writeError(w, http.StatusBadRequest, "missing employee_id parameter")
		return
	}
	if _, err := h.ownedEmployee(r, employeeID); err != nil {
		respondError(w, h.logger, r, err)
		return
	}
	if err := h.workforce.DeleteLeaveDay(r.Context(), employeeID, id); err != nil {
		respondError(w, h.logger, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *WorkforceHandler) ownedEmployee(r *http.Request, id string) (model.Employee, error) {
	e, err := h.workforce.GetEmployee(r.Context(), id)
	if err != nil {
		return model.Employee{}, err
	}
	if e.OwnerID != AccountIDFromContext(r.Context()) {
		return model.Employee{}, storage.ErrPermissionDenied
	}
	return e, nil
}

func (h *WorkforceHandler) ownedSchedule(r *http.Request, id string) (model.WorkSchedule, error) {
	ws, err := h.workforce.GetSchedule(r.Context(), id)
	if err != nil {
		return model.WorkSchedule{}, err
	}
	if ws.OwnerID != AccountIDFromContext(r.Context()) {
		return model.WorkSchedule{}, storage.ErrPermissionDenied
	}
	return ws, nil
}

func toScheduleResponse(ws model.WorkSchedule) scheduleResponse {
	return scheduleResponse{
		ID:          ws.ID,
		EmployeeID:  ws.EmployeeID,
		Weekday:     ws.Weekday,
		StartMinute: ws.StartMinute,
		EndMinute:   ws.EndMinute,
	}
}
