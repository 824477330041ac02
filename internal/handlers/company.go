package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/unifyhq/unify/internal/model"
	"github.com/unifyhq/unify/internal/naming"
	"github.com/unifyhq/unify/internal/storage"
)

type CompanyHandler struct {
	companies *storage.CompanyRepository
	logger    *slog.Logger
}

func NewCompanyHandler(companies *storage.CompanyRepository, logger *slog.Logger) *CompanyHandler {
	return &CompanyHandler{companies: companies, logger: logger}
}

type companyRequest struct {
	Name string `json:"name"`
}

type companyResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

func (h *CompanyHandler) Handle(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.get(w, r)
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

// Lookup resolves a company by its public slug. Unauthenticated; returns only
// the public profile fields.
func (h *CompanyHandler) Lookup(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	slug := r.URL.Query().Get("slug")
	if slug == "" {
		writeError(w, http.StatusBadRequest, "missing slug parameter")
		return
	}
	c, err := h.companies.GetBySlug(r.Context(), slug)
	if err != nil {
		respondError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toCompanyResponse(c))
}

func (h *CompanyHandler) get(w http.ResponseWriter, r *http.Request) {
	c, err := h.companies.GetByOwner(r.Context(), AccountIDFromContext(r.Context()))
	if err != nil {
		respondError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toCompanyResponse(c))
}

func (h *CompanyHandler) create(w http.ResponseWriter, r *http.Request) {
	ownerID := AccountIDFromContext(r.Context())
	var req companyRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	// One company per account.
	if _, err := h.companies.GetByOwner(r.Context(), ownerID); err == nil {
		writeJSON(w, http.StatusConflict, errorBody{Error: "account already owns a company", Field: "owner"})
		return
	}

	c, err := h.companies.Create(r.Context(), model.Company{
		OwnerID: ownerID,
		Name:    req.Name,
		Slug:    naming.Slugify(req.Name),
	})
	if err != nil {
		respondError(w, h.logger, r, err)
		return
	}
	h.logger.InfoContext(r.Context(), "company created", "company_id", c.ID, "slug", c.Slug)
	writeJSON(w, http.StatusCreated, toCompanyResponse(c))
}

func (h *CompanyHandler) update(w http.ResponseWriter, r *http.Request) {
	ownerID := AccountIDFromContext(r.Context())
	var req companyRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	current, err := h.companies.GetByOwner(r.Context(), ownerID)
	if err != nil {
		respondError(w, h.logger, r, err)
		return
	}
	current.Name = req.Name
	// Slug follows the name on every save, so a rename changes the public slug.
	current.Slug = naming.Slugify(req.Name)

	updated, err := h.companies.Update(r.Context(), current)
	if err != nil {
		respondError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toCompanyResponse(updated))
}

func (h *CompanyHandler) delete(w http.ResponseWriter, r *http.Request) {
	if err := h.companies.Delete(r.Context(), AccountIDFromContext(r.Context())); err != nil {
		respondError(w, h.logger, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func toCompanyResponse(c model.Company) companyResponse {
	return companyResponse{ID: c.ID, Name: c.Name, Slug: c.Slug}
}
