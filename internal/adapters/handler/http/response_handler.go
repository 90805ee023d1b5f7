package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/pollwise/api/internal/core/domain"
	"github.com/pollwise/api/internal/core/ports"
)

type ResponseHandler struct {
	service ports.ResponseService
}

func NewResponseHandler(service ports.ResponseService) *ResponseHandler {
	return &ResponseHandler{
		service: service,
	}
}

// Admission tells the player how to render the poll for the caller: the
// answering state with defaults, a login redirect, or one of the blocked
// states with inputs disabled.
func (h *ResponseHandler) Admission(w http.ResponseWriter, r *http.Request) {
	identity := identityFromContext(r.Context())

	admission, err := h.service.Admission(r.Context(), chi.URLParam(r, "id"), identity)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, admission)
}

type submitRequest struct {
	Answers map[int]domain.Answer `json:"answers"`
}

func (h *ResponseHandler) Submit(w http.ResponseWriter, r *http.Request) {
	pollID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid poll id", http.StatusBadRequest)
		return
	}

	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	input := ports.SubmitInput{
		PollID:   pollID,
		Answers:  req.Answers,
		Identity: identityFromContext(r.Context()),
	}

	response, err := h.service.Submit(r.Context(), input)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, response)
}
