package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/pollwise/api/internal/core/domain"
	"github.com/pollwise/api/internal/core/ports"
)

type AdminHandler struct {
	service ports.AdminService
}

func NewAdminHandler(service ports.AdminService) *AdminHandler {
	return &AdminHandler{
		service: service,
	}
}

func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	identity := identityFromContext(r.Context())

	users, err := h.service.ListUsers(r.Context(), *identity)
	if err != nil {
		writeError(w, err)
		return
	}
	if users == nil {
		users = []*domain.User{}
	}

	writeJSON(w, http.StatusOK, users)
}

func (h *AdminHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	identity := identityFromContext(r.Context())

	if err := h.service.DeleteUser(r.Context(), *identity, chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *AdminHandler) ListPolls(w http.ResponseWriter, r *http.Request) {
	identity := identityFromContext(r.Context())

	polls, err := h.service.ListPolls(r.Context(), *identity)
	if err != nil {
		writeError(w, err)
		return
	}
	if polls == nil {
		polls = []*domain.Poll{}
	}

	writeJSON(w, http.StatusOK, polls)
}

func (h *AdminHandler) DeletePoll(w http.ResponseWriter, r *http.Request) {
	identity := identityFromContext(r.Context())

	if err := h.service.DeletePoll(r.Context(), *identity, chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
