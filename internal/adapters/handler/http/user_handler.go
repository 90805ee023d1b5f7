package http

import (
	"encoding/json"
	"net/http"

	"github.com/pollwise/api/internal/core/ports"
)

type UserHandler struct {
	service     ports.UserService
	authService ports.AuthService
}

func NewUserHandler(service ports.UserService, authService ports.AuthService) *UserHandler {
	return &UserHandler{
		service:     service,
		authService: authService,
	}
}

func (h *UserHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	identity := identityFromContext(r.Context())

	user, err := h.service.GetByID(r.Context(), identity.UserID)
	if err != nil {
		http.Error(w, "Failed to fetch user: "+err.Error(), http.StatusInternalServerError)
		return
	}
	if user == nil {
		http.Error(w, "User not found", http.StatusNotFound)
		return
	}

	writeJSON(w, http.StatusOK, user)
}

type updateEmailRequest struct {
	CurrentPassword string `json:"current_password"`
	NewEmail        string `json:"new_email"`
}

func (h *UserHandler) UpdateEmail(w http.ResponseWriter, r *http.Request) {
	identity := identityFromContext(r.Context())

	var req updateEmailRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.authService.UpdateEmail(r.Context(), identity.UserID, req.CurrentPassword, req.NewEmail); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type updatePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

func (h *UserHandler) UpdatePassword(w http.ResponseWriter, r *http.Request) {
	identity := identityFromContext(r.Context())

	var req updatePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.authService.UpdatePassword(r.Context(), identity.UserID, req.CurrentPassword, req.NewPassword); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type deleteAccountRequest struct {
	CurrentPassword string `json:"current_password"`
}

func (h *UserHandler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	identity := identityFromContext(r.Context())

	var req deleteAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.authService.DeleteAccount(r.Context(), identity.UserID, req.CurrentPassword); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
