package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/pollwise/api/internal/core/domain"
	"github.com/pollwise/api/internal/core/ports"
	qrcode "github.com/skip2/go-qrcode"
)

type PollHandler struct {
	service ports.PollService
	// publicBaseURL is the frontend origin used for share links and QR codes.
	publicBaseURL string
}

func NewPollHandler(service ports.PollService) *PollHandler {
	baseURL := os.Getenv("PUBLIC_BASE_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}
	return &PollHandler{
		service:       service,
		publicBaseURL: baseURL,
	}
}

type publishPollRequest struct {
	Title     string                `json:"title"`
	Questions []ports.QuestionInput `json:"questions"`
	Design    domain.DesignSettings `json:"design_settings"`
	Time      domain.TimeSettings   `json:"time_settings"`
	Settings  domain.PollSettings   `json:"poll_settings"`
}

type publishPollResponse struct {
	Poll     *domain.Poll `json:"poll"`
	ShareURL string       `json:"share_url"`
}

func (h *PollHandler) PublishPoll(w http.ResponseWriter, r *http.Request) {
	identity := identityFromContext(r.Context())

	var req publishPollRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	input := ports.PublishPollInput{
		Title:     req.Title,
		Questions: req.Questions,
		Design:    req.Design,
		Time:      req.Time,
		Settings:  req.Settings,
		CreatedBy: identity.UserID,
	}

	poll, err := h.service.Publish(r.Context(), input)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, publishPollResponse{
		Poll:     poll,
		ShareURL: h.shareURL(poll),
	})
}

func (h *PollHandler) GetPoll(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		http.Error(w, "missing poll id", http.StatusBadRequest)
		return
	}

	poll, err := h.service.GetPoll(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, poll)
}

func (h *PollHandler) ListPolls(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))

	polls, err := h.service.ListPolls(r.Context(), ports.ListPollsInput{
		Page:  page,
		Query: r.URL.Query().Get("query"),
	})
	if err != nil {
		writeError(w, err)
		return
	}
	if polls == nil {
		polls = []*domain.Poll{}
	}

	writeJSON(w, http.StatusOK, polls)
}

func (h *PollHandler) ListMyPolls(w http.ResponseWriter, r *http.Request) {
	identity := identityFromContext(r.Context())

	polls, err := h.service.ListMyPolls(r.Context(), identity.UserID)
	if err != nil {
		writeError(w, err)
		return
	}
	if polls == nil {
		polls = []*domain.Poll{}
	}

	writeJSON(w, http.StatusOK, polls)
}

func (h *PollHandler) DeletePoll(w http.ResponseWriter, r *http.Request) {
	identity := identityFromContext(r.Context())

	if err := h.service.DeletePoll(r.Context(), chi.URLParam(r, "id"), *identity); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ShareQR renders the poll's share link as a QR code PNG.
func (h *PollHandler) ShareQR(w http.ResponseWriter, r *http.Request) {
	poll, err := h.service.GetPoll(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}

	png, err := qrcode.Encode(h.shareURL(poll), qrcode.Medium, 256)
	if err != nil {
		writeError(w, fmt.Errorf("failed to render qr code: %w", err))
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Write(png)
}

func (h *PollHandler) shareURL(poll *domain.Poll) string {
	return fmt.Sprintf("%s/poll/%s", h.publicBaseURL, poll.ID)
}
