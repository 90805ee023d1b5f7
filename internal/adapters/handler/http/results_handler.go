package http

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/pollwise/api/internal/core/domain"
	"github.com/pollwise/api/internal/core/ports"
)

type ResultsHandler struct {
	service     ports.ResultsService
	pollService ports.PollService
}

func NewResultsHandler(service ports.ResultsService, pollService ports.PollService) *ResultsHandler {
	return &ResultsHandler{
		service:     service,
		pollService: pollService,
	}
}

// GetResults returns the per-question tabulations over the full response
// set. Like the original results screen it is readable by anyone holding the
// link.
func (h *ResultsHandler) GetResults(w http.ResponseWriter, r *http.Request) {
	results, err := h.service.Tabulate(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, results)
}

// Export streams the delimited-text rendition of the same tabulations.
func (h *ResultsHandler) Export(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	data, err := h.service.Export(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "poll-"+id+"-results.csv"))
	w.Write(data)
}

// ListResponses is the detail table: individual responses with respondent
// labels, narrowed by the tri-state filter. Only the poll owner or an admin
// may read it, since rows can carry emails.
func (h *ResultsHandler) ListResponses(w http.ResponseWriter, r *http.Request) {
	identity := identityFromContext(r.Context())
	id := chi.URLParam(r, "id")

	poll, err := h.pollService.GetPoll(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	if poll.CreatedBy != identity.UserID && identity.Role != domain.RoleAdmin {
		writeError(w, domain.ErrForbidden)
		return
	}

	filter := domain.ResponseFilter(r.URL.Query().Get("filter"))
	responses, err := h.service.ListResponses(r.Context(), id, filter)
	if err != nil {
		writeError(w, err)
		return
	}

	type detailRow struct {
		Respondent string                `json:"respondent"`
		Answers    map[int]domain.Answer `json:"answers"`
		Timestamp  string                `json:"timestamp"`
	}
	rows := make([]detailRow, 0, len(responses))
	for _, resp := range responses {
		rows = append(rows, detailRow{
			Respondent: resp.RespondentLabel(),
			Answers:    resp.Answers,
			Timestamp:  resp.Timestamp.UTC().Format("2006-01-02 15:04:05"),
		})
	}

	writeJSON(w, http.StatusOK, rows)
}
