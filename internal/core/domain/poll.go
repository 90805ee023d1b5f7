package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// DefaultTitle is the placeholder the builder pre-fills; publishing a poll
// that still carries it is rejected.
const DefaultTitle = "Untitled poll"

type QuestionType string

const (
	QuestionSingle   QuestionType = "single"
	QuestionMultiple QuestionType = "multiple"
	QuestionText     QuestionType = "text"
	QuestionScale    QuestionType = "scale"
)

func (t QuestionType) Valid() bool {
	switch t {
	case QuestionSingle, QuestionMultiple, QuestionText, QuestionScale:
		return true
	}
	return false
}

// HasOptions reports whether the question type carries an option list.
func (t QuestionType) HasOptions() bool {
	return t == QuestionSingle || t == QuestionMultiple
}

type ScaleRange struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// Question is one item within a poll. IDs are small integers assigned
// sequentially at authoring time and are unique within the poll only.
type Question struct {
	ID      int          `json:"id"`
	Text    string       `json:"text"`
	Type    QuestionType `json:"type"`
	Options []string     `json:"options,omitempty"`
	Scale   *ScaleRange  `json:"scale,omitempty"`
}

type DesignSettings struct {
	PrimaryColor   string `json:"primary_color,omitempty"`
	SecondaryColor string `json:"secondary_color,omitempty"`
	FontFamily     string `json:"font_family,omitempty"`
	Logo           string `json:"logo,omitempty"`
}

// TimeSettings are advisory: stored and returned but not enforced anywhere.
type TimeSettings struct {
	HasTimeLimit bool       `json:"has_time_limit"`
	StartTime    *time.Time `json:"start_time,omitempty"`
	EndTime      *time.Time `json:"end_time,omitempty"`
}

type PollSettings struct {
	IsAnonymous  bool `json:"is_anonymous"`
	RequireLogin bool `json:"require_login"`
}

type Poll struct {
	ID             uuid.UUID      `json:"id"`
	Title          string         `json:"title"`
	Questions      []Question     `json:"questions"`
	Design         DesignSettings `json:"design_settings"`
	Time           TimeSettings   `json:"time_settings"`
	Settings       PollSettings   `json:"poll_settings"`
	CreatedBy      uuid.UUID      `json:"created_by"`
	CreatedAt      time.Time      `json:"created_at"`
	ResponsesCount int64          `json:"responses_count"`
}

// Question returns the question with the given id, or nil.
func (p *Poll) Question(id int) *Question {
	for i := range p.Questions {
		if p.Questions[i].ID == id {
			return &p.Questions[i]
		}
	}
	return nil
}

// NormalizeOption is the comparison key for option uniqueness checks.
func NormalizeOption(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
