package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/unifyhq/unify/internal/model"
	"github.com/unifyhq/unify/internal/naming"
	"github.com/unifyhq/unify/internal/storage"
)

type ClientHandler struct {
	clients *storage.ClientRepository
	logger  *slog.Logger
}

func NewClientHandler(clients *storage.ClientRepository, logger *slog.Logger) *ClientHandler {
	return &ClientHandler{clients: clients, logger: logger}
}

type clientRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type clientResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

func (h *ClientHandler) Handle(w http.ResponseWriter, r *http.Request) {
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

func (h *ClientHandler) list(w http.ResponseWriter, r *http.Request) {
	clients, err := h.clients.List(r.Context(), AccountIDFromContext(r.Context()))
	if err != nil {
		respondError(w, h.logger, r, err)
		return
	}
	out := make([]clientResponse, 0, len(clients))
	for _, c := range clients {
		out = append(out, toClientResponse(c))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *ClientHandler) get(w http.ResponseWriter, r *http.Request, id string) {
	c, err := h.owned(r, id)
	if err != nil {
		respondError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toClientResponse(c))
}

func (h *ClientHandler) create(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeClient(w, r)
	if !ok {
		return
	}
	c, err := h.clients.Create(r.Context(), model.Client{
		OwnerID: AccountIDFromContext(r.Context()),
		Name:    req.Name,
		Email:   req.Email,
	})
	if err != nil {
		respondError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toClientResponse(c))
}

func (h *ClientHandler) update(w http.ResponseWriter, r *http.Request) {
	id, ok := requireID(w, r)
	if !ok {
		return
	}
	req, ok := decodeClient(w, r)
	if !ok {
		return
	}
	c, err := h.owned(r, id)
	if err != nil {
		respondError(w, h.logger, r, err)
		return
	}
	c.Name = req.Name
	c.Email = req.Email

	updated, err := h.clients.Update(r.Context(), c)
	if err != nil {
		respondError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toClientResponse(updated))
}

func (h *ClientHandler) delete(w http.ResponseWriter, r *http.Request) {
	id, ok := requireID(w, r)
	if !ok {
		return
	}
	if _, err := h.owned(r, id); err != nil {
		respondError(w, h.logger, r, err)
		return
	}
	if err := h.clients.Delete(r.Context(), AccountIDFromContext(r.Context()), id); err != nil {
		respondError(w, h.logger, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func decodeClient(w http.ResponseWriter, r *http.Request) (clientRequest, bool) {
	var req clientRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return req, false
	}
	req.Name = naming.TitleCase(req.Name)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Name == "" || req.Email == "" {
		writeError(w, http.StatusBadRequest, "name and email are required")
		return req, false
	}
	return req, true
}

func (h *ClientHandler) owned(r *http.Request, id string) (model.Client, error) {
	c, err := h.clients.Get(r.Context(), id)
	if err != nil {
		return model.Client{}, err
	}
	if c.OwnerID != AccountIDFromContext(r.Context()) {
		return model.Client{}, storage.ErrPermissionDenied
	}
	return c, nil
}

func toClientResponse(c model.Client) clientResponse {
	return clientResponse{ID: c.ID, Name: c.Name, Email: c.Email}
}
