package domain

import (
	"math"
	"time"
)

// TextEntry is one non-blank free-text answer in a detail listing.
type TextEntry struct {
	Respondent string    `json:"respondent"`
	Answer     string    `json:"answer"`
	AnsweredAt time.Time `json:"answered_at"`
}

// ScaleBucket is one histogram bucket for a scale question. Every integer in
// the question's range gets a bucket, zero or not.
type ScaleBucket struct {
	Value int `json:"value"`
	Count int `json:"count"`
}

// Tabulation is the aggregate of all responses to one question. Which fields
// are populated depends on the question type: Counts for single/multiple
// (index-aligned with Options), Histogram for scale, Entries for text.
type Tabulation struct {
	QuestionID     int           `json:"question_id"`
	QuestionText   string        `json:"question_text"`
	Type           QuestionType  `json:"type"`
	Options        []string      `json:"options,omitempty"`
	Counts         []int         `json:"counts,omitempty"`
	Histogram      []ScaleBucket `json:"histogram,omitempty"`
	Entries        []TextEntry   `json:"entries,omitempty"`
	TotalResponses int           `json:"total_responses"`
}

// Percentage returns the displayed share for one option count, computed
// against the full response-set size for the poll rather than the number of
// respondents who answered this particular question.
func (t *Tabulation) Percentage(count int) int {
	if t.TotalResponses == 0 {
		return 0
	}
	return int(math.Round(float64(count) / float64(t.TotalResponses) * 100))
}

// PollResults bundles the per-question tabulations with the poll header data
// the results screen and the exports both show.
type PollResults struct {
	Poll        *Poll        `json:"poll"`
	Tabulations []Tabulation `json:"tabulations"`
	Total       int          `json:"total_responses"`
}

// ResponseFilter narrows the detail listing only; tabulations always use the
// full response set.
type ResponseFilter string

const (
	FilterAll       ResponseFilter = "all"
	FilterNamed     ResponseFilter = "named"
	FilterAnonymous ResponseFilter = "anonymous"
)

func (f ResponseFilter) Valid() bool {
	switch f {
	case FilterAll, FilterNamed, FilterAnonymous:
		return true
	}
	return false
}

// Match reports whether a response passes the filter.
func (f ResponseFilter) Match(r *Response) bool {
	switch f {
	case FilterNamed:
		return r.UserID != nil
	case FilterAnonymous:
		return r.UserID == nil
	default:
		return true
	}
}
