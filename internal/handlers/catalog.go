package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/unifyhq/unify/internal/model"
	"github.com/unifyhq/unify/internal/naming"
	"github.com/unifyhq/unify/internal/storage"
)

// CatalogHandler serves service categories and services. All names are
// canonicalized before the uniqueness checks so "hair care" and "Hair Care"
// collide.
type CatalogHandler struct {
	catalog   *storage.CatalogRepository
	workforce *storage.WorkforceRepository
	logger    *slog.Logger
}

func NewCatalogHandler(catalog *storage.CatalogRepository, workforce *storage.WorkforceRepository, logger *slog.Logger) *CatalogHandler {
	return &CatalogHandler{catalog: catalog, workforce: workforce, logger: logger}
}

type categoryRequest struct {
	Name string `json:"name"`
}

type categoryResponse struct {
	ID        string            `json:"id"`
	Name      string            `json:"name"`
	Services  []serviceResponse `json:"services,omitempty"`
	Employees []string          `json:"employees,omitempty"`
}

type serviceRequest struct {
	CategoryID      *string `json:"category_id"`
	Name            string  `json:"name"`
	DurationMinutes int     `json:"duration_minutes"`
}

type serviceResponse struct {
	ID              string  `json:"id"`
	CategoryID      *string `json:"category_id"`
	Name            string  `json:"name"`
	Slug            string  `json:"slug"`
	DurationMinutes int     `json:"duration_minutes"`
}

func (h *CatalogHandler) Categories(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		if r.URL.Query().Get("id") != "" {
			h.getCategory(w, r)
		} else {
			h.listCategories(w, r)
		}
	case http.MethodPost:
		h.createCategory(w, r)
	case http.MethodPut:
		h.updateCategory(w, r)
	case http.MethodDelete:
		h.deleteCategory(w, r)
	default:
		methodNotAllowed(w)
	}
}

func (h *CatalogHandler) listCategories(w http.ResponseWriter, r *http.Request) {
	cats, err := h.catalog.ListCategories(r.Context(), AccountIDFromContext(r.Context()))
	if err != nil {
		respondError(w, h.logger, r, err)
		return
	}
	out := make([]categoryResponse, 0, len(cats))
	for _, c := range cats {
		out = append(out, categoryResponse{ID: c.ID, Name: c.Name})
	}
	writeJSON(w, http.StatusOK, out)
}

// getCategory returns the category with its services and the names of the
// employees qualified for it.
func (h *CatalogHandler) getCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := requireID(w, r)
	if !ok {
		return
	}
	cat, err := h.ownedCategory(r, id)
	if err != nil {
		respondError(w, h.logger, r, err)
		return
	}

	services, err := h.catalog.ListServicesByCategory(r.Context(), cat.ID)
	if err != nil {
		respondError(w, h.logger, r, err)
		return
	}
	employees, err := h.workforce.ListEmployeesByCategory(r.Context(), cat.ID)
	if err != nil {
		respondError(w, h.logger, r, err)
		return
	}

	resp := categoryResponse{ID: cat.ID, Name: cat.Name}
	for _, s := range services {
		resp.Services = append(resp.Services, toServiceResponse(s))
	}
	for _, e := range employees {
		resp.Employees = append(resp.Employees, e.Name)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *CatalogHandler) createCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	name := naming.TitleCase(req.Name)
	if name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	cat, err := h.catalog.CreateCategory(r.Context(), AccountIDFromContext(r.Context()), name)
	if err != nil {
		respondError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, categoryResponse{ID: cat.ID, Name: cat.Name})
}

func (h *CatalogHandler) updateCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := requireID(w, r)
	if !ok {
		return
	}
	var req categoryRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	name := naming.TitleCase(req.Name)
	if name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	cat, err := h.ownedCategory(r, id)
	if err != nil {
		respondError(w, h.logger, r, err)
		return
	}
	cat.Name = name
	updated, err := h.catalog.UpdateCategory(r.Context(), cat)
	if err != nil {
		respondError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, categoryResponse{ID: updated.ID, Name: updated.Name})
}

func (h *CatalogHandler) deleteCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := requireID(w, r)
	if !ok {
		return
	}
	if _, err := h.ownedCategory(r, id); err != nil {
		respondError(w, h.logger, r, err)
		return
	}
	if err := h.catalog.DeleteCategory(r.Context(), AccountIDFromContext(r.Context()), id); err != nil {
		respondError(w, h.logger, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *CatalogHandler) Services(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		if id := r.URL.Query().Get("id"); id != "" {
			h.getService(w, r, id)
		} else {
			h.listServices(w, r)
		}
	case http.MethodPost:
		h.createService(w, r)
	case http.MethodPut:
		h.updateService(w, r)
	case http.MethodDelete:
		h.deleteService(w, r)
	default:
		methodNotAllowed(w)
	}
}

func (h *CatalogHandler) listServices(w http.ResponseWriter, r *http.Request) {
	services, err := h.catalog.ListServices(r.Context(), AccountIDFromContext(r.Context()))
	if err != nil {
		respondError(w, h.logger, r, err)
		return
	}
	out := make([]serviceResponse, 0, len(services))
	for _, s := range services {
		out = append(out, toServiceResponse(s))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *CatalogHandler) getService(w http.ResponseWriter, r *http.Request, id string) {
	s, err := h.ownedService(r, id)
	if err != nil {
		respondError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toServiceResponse(s))
}

func (h *CatalogHandler) createService(w http.ResponseWriter, r *http.Request) {
	ownerID := AccountIDFromContext(r.Context())
	req, ok := h.decodeService(w, r)
	if !ok {
		return
	}
	if req.CategoryID != nil {
		if _, err := h.ownedCategory(r, *req.CategoryID); err != nil {
			respondError(w, h.logger, r, err)
			return
		}
	}

	s, err := h.catalog.CreateService(r.Context(), model.Service{
		OwnerID:         ownerID,
		CategoryID:      req.CategoryID,
		Name:            req.Name,
		Slug:            naming.Slugify(req.Name),
		DurationMinutes: req.DurationMinutes,
	})
	if err != nil {
		respondError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toServiceResponse(s))
}

func (h *CatalogHandler) updateService(w http.ResponseWriter, r *http.Request) {
	id, ok := requireID(w, r)
	if !ok {
		return
	}
	req, ok := h.decodeService(w, r)
	if !ok {
		return
	}
	s, err := h.ownedService(r, id)
	if err != nil {
		respondError(w, h.logger, r, err)
		return
	}
	if req.CategoryID != nil {
		if _, err := h.ownedCategory(r, *req.CategoryID); err != nil {
			respondError(w, h.logger, r, err)
			return
		}
	}

	s.CategoryID = req.CategoryID
	s.Name = req.Name
	s.Slug = naming.Slugify(req.Name)
	s.DurationMinutes = req.DurationMinutes

	updated, err := h.catalog.UpdateService(r.Context(), s)
	if err != nil {
		respondError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toServiceResponse(updated))
}

func (h *CatalogHandler) deleteService(w http.ResponseWriter, r *http.Request) {
	id, ok := requireID(w, r)
	if !ok {
		return
	}
	if _, err := h.ownedService(r, id); err != nil {
		respondError(w, h.logger, r, err)
		return
	}
	if err := h.catalog.DeleteService(r.Context(), AccountIDFromContext(r.Context()), id); err != nil {
		respondError(w, h.logger, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *CatalogHandler) decodeService(w http.ResponseWriter, r *http.Request) (serviceRequest, bool) {
	var req serviceRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return req, false
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return req, false
	}
	if req.DurationMinutes < 0 {
		writeError(w, http.StatusBadRequest, "duration_minutes must not be negative")
		return req, false
	}
	return req, true
}

func (h *CatalogHandler) ownedCategory(r *http.Request, id string) (model.ServiceCategory, error) {
	cat, err := h.catalog.GetCategory(r.Context(), id)
	if err != nil {
		return model.ServiceCategory{}, err
	}
	if cat.OwnerID != AccountIDFromContext(r.Context()) {
		return model.ServiceCategory{}, storage.ErrPermissionDenied
	}
	return cat, nil
}

func (h *CatalogHandler) ownedService(r *http.Request, id string) (model.Service, error) {
	s, err := h.catalog.GetService(r.Context(), id)
	if err != nil {
		return model.Service{}, err
	}
	if s.OwnerID != AccountIDFromContext(r.Context()) {
		return model.Service{}, storage.ErrPermissionDenied
	}
	return s, nil
}

func toServiceResponse(s model.Service) serviceResponse {
	return serviceResponse{
		ID:              s.ID,
		CategoryID:      s.CategoryID,
		Name:            s.Name,
		Slug:            s.Slug,
		DurationMinutes: s.DurationMinutes,
	}
}
