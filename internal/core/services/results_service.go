package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/pollwise/api/internal/core/domain"
	"github.com/pollwise/api/internal/core/ports"
)

type resultsService struct {
	pollRepo     ports.PollRepository
	responseRepo ports.ResponseRepository
}

func NewResultsService(pollRepo ports.PollRepository, responseRepo ports.ResponseRepository) ports.ResultsService {
	return &resultsService{
		pollRepo:     pollRepo,
		responseRepo: responseRepo,
	}
}

// Tabulate reads the full response set for the poll and aggregates every
// question in authoring order. The fetch is unbounded: the aggregation always
// sees every response.
func (s *resultsService) Tabulate(ctx context.Context, pollID string) (*domain.PollResults, error) {
	id, err := uuid.Parse(pollID)
	if err != nil {
		return nil, domain.ErrInvalidPollID
	}

	poll, err := s.pollRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	responses, err := s.responseRepo.ListByPoll(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load responses: %w", err)
	}

	total := len(responses)
	tabulations := make([]domain.Tabulation, 0, len(poll.Questions))
	for i := range poll.Questions {
		tabulations = append(tabulations, tabulateQuestion(&poll.Questions[i], responses, total))
	}

	return &domain.PollResults{
		Poll:        poll,
		Tabulations: tabulations,
		Total:       total,
	}, nil
}

func tabulateQuestion(q *domain.Question, responses []*domain.Response, total int) domain.Tabulation {
	tab := domain.Tabulation{
		QuestionID:     q.ID,
		QuestionText:   q.Text,
		Type:           q.Type,
		TotalResponses: total,
	}

	switch q.Type {
	case domain.QuestionText:
		// Blank or absent answers are excluded from the listing but the
		// response still counts toward the poll total.
		tab.Entries = []domain.TextEntry{}
		for _, r := range responses {
			answer, ok := r.Answers[q.ID]
			if !ok || answer.Text == nil {
				continue
			}
			if strings.TrimSpace(*answer.Text) == "" {
				continue
			}
			tab.Entries = append(tab.Entries, domain.TextEntry{
				Respondent: r.RespondentLabel(),
				Answer:     *answer.Text,
				AnsweredAt: r.Timestamp,
			})
		}

	case domain.QuestionScale:
		// One bucket per integer in [Min, Max], zeroes included. Responses
		// with no value for this question are skipped.
		min, max := 0, 0
		if q.Scale != nil {
			min, max = q.Scale.Min, q.Scale.Max
		}
		counts := make(map[int]int, max-min+1)
		for _, r := range responses {
			answer, ok := r.Answers[q.ID]
			if !ok || answer.Scale == nil {
				continue
			}
			v := *answer.Scale
			if v >= min && v <= max {
				counts[v]++
			}
		}
		tab.Histogram = make([]domain.ScaleBucket, 0, max-min+1)
		for v := min; v <= max; v++ {
			tab.Histogram = append(tab.Histogram, domain.ScaleBucket{Value: v, Count: counts[v]})
		}

	case domain.QuestionSingle, domain.QuestionMultiple:
		tab.Options = q.Options
		tab.Counts = make([]int, len(q.Options))
		for _, r := range responses {
			answer, ok := r.Answers[q.ID]
			if !ok {
				continue
			}
			for idx, chosen := range answer.Selected {
				if chosen && idx >= 0 && idx < len(tab.Counts) {
					tab.Counts[idx]++
				}
			}
		}
	}

	return tab
}

// Export renders the tabulations as delimited text: a header block with the
// poll title, creation time and total, then one section per question. The
// output is a pure function of the stored data, so repeated exports over
// unchanged data match byte for byte.
func (s *resultsService) Export(ctx context.Context, pollID string) ([]byte, error) {
	results, err := s.Tabulate(ctx, pollID)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	records := [][]string{
		{"Poll", results.Poll.Title},
		{"Created", results.Poll.CreatedAt.UTC().Format("2006-01-02 15:04:05")},
		{"Total responses", strconv.Itoa(results.Total)},
		{},
	}

	for i := range results.Tabulations {
		records = append(records, exportSection(&results.Tabulations[i])...)
	}

	if err := w.WriteAll(records); err != nil {
		return nil, fmt.Errorf("failed to write export: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("failed to write export: %w", err)
	}
	return buf.Bytes(), nil
}

func exportSection(tab *domain.Tabulation) [][]string {
	records := [][]string{
		{fmt.Sprintf("Question %d", tab.QuestionID), tab.QuestionText, string(tab.Type)},
	}

	switch tab.Type {
	case domain.QuestionText:
		records = append(records, []string{"Respondent", "Answer", "Answered at"})
		for _, e := range tab.Entries {
			records = append(records, []string{
				e.Respondent,
				e.Answer,
				e.AnsweredAt.UTC().Format("2006-01-02 15:04:05"),
			})
		}

	case domain.QuestionScale:
		records = append(records, []string{"Value", "Count"})
		for _, b := range tab.Histogram {
			records = append(records, []string{strconv.Itoa(b.Value), strconv.Itoa(b.Count)})
		}

	case domain.QuestionSingle, domain.QuestionMultiple:
		records = append(records, []string{"Option", "Count", "Percent"})
		for i, opt := range tab.Options {
			records = append(records, []string{
				opt,
				strconv.Itoa(tab.Counts[i]),
				strconv.Itoa(tab.Percentage(tab.Counts[i])),
			})
		}
	}

	records = append(records, []string{})
	return records
}

// ListResponses returns the detail rows. The tri-state filter narrows this
// listing only; Tabulate always works over the full response set.
func (s *resultsService) ListResponses(ctx context.Context, pollID string, filter domain.ResponseFilter) ([]*domain.Response, error) {
	id, err := uuid.Parse(pollID)
	if err != nil {
		return nil, domain.ErrInvalidPollID
	}
	if filter == "" {
		filter = domain.FilterAll
	}
	if !filter.Valid() {
		return nil, &domain.ValidationError{Reasons: []string{fmt.Sprintf("unknown response filter %q", filter)}}
	}

	responses, err := s.responseRepo.ListByPoll(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load responses: %w", err)
	}

	filtered := make([]*domain.Response, 0, len(responses))
	for _, r := range responses {
		if filter.Match(r) {
			filtered = append(filtered, r)
		}
	}
	return filtered, nil
}
