package domain

import (
	"time"

	"github.com/google/uuid"
)

// AnonymousLabel is the respondent label shown for answers that carry no
// identity.
const AnonymousLabel = "anonymous"

// Answer holds one respondent's answer to one question. Exactly one of the
// fields is set, matching the question type: Text for text questions, Scale
// for scale questions, Selected (option index -> chosen) for single and
// multiple choice. For single-choice questions at most one index is true.
type Answer struct {
	Text     *string      `json:"text,omitempty"`
	Scale    *int         `json:"scale,omitempty"`
	Selected map[int]bool `json:"selected,omitempty"`
}

// TextAnswer creates an answer for a text question.
func TextAnswer(s string) Answer { return Answer{Text: &s} }

// ScaleAnswer creates an answer for a scale question.
func ScaleAnswer(v int) Answer { return Answer{Scale: &v} }

// SelectedAnswer creates an answer for a choice question.
func SelectedAnswer(selected map[int]bool) Answer { return Answer{Selected: selected} }

// SelectedCount returns the number of chosen options.
func (a Answer) SelectedCount() int {
	n := 0
	for _, v := range a.Selected {
		if v {
			n++
		}
	}
	return n
}

// Response is one respondent's completed answer set for a poll. Responses are
// immutable once written. UserID and UserEmail are present only when the poll
// is non-anonymous and the respondent was signed in.
type Response struct {
	ID        uuid.UUID      `json:"id"`
	PollID    uuid.UUID      `json:"poll_id"`
	Answers   map[int]Answer `json:"answers"`
	UserID    *uuid.UUID     `json:"user_id,omitempty"`
	UserEmail *string        `json:"user_email,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}

// RespondentLabel is the name shown in detail views: the stored email when
// present, otherwise the anonymous marker.
func (r *Response) RespondentLabel() string {
	if r.UserEmail != nil && *r.UserEmail != "" {
		return *r.UserEmail
	}
	return AnonymousLabel
}

// DefaultAnswers builds the initial answer map for a poll: empty string for
// text questions, the range minimum for scale questions, and an all-false
// option map for choice questions.
func DefaultAnswers(poll *Poll) map[int]Answer {
	answers := make(map[int]Answer, len(poll.Questions))
	for _, q := range poll.Questions {
		switch q.Type {
		case QuestionText:
			answers[q.ID] = TextAnswer("")
		case QuestionScale:
			min := 0
			if q.Scale != nil {
				min = q.Scale.Min
			}
			answers[q.ID] = ScaleAnswer(min)
		default:
			selected := make(map[int]bool, len(q.Options))
			for i := range q.Options {
				selected[i] = false
			}
			answers[q.ID] = SelectedAnswer(selected)
		}
	}
	return answers
}

// SelectOption marks one option of a question as chosen. For single-choice
// questions every other index is cleared in the same update.
func SelectOption(answers map[int]Answer, q *Question, index int, value bool) {
	a := answers[q.ID]
	if a.Selected == nil {
		a.Selected = make(map[int]bool, len(q.Options))
	}
	if q.Type == QuestionSingle && value {
		for i := range a.Selected {
			a.Selected[i] = false
		}
	}
	a.Selected[index] = value
	answers[q.ID] = a
}
