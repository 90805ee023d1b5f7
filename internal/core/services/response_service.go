package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pollwise/api/internal/core/domain"
	"github.com/pollwise/api/internal/core/ports"
)

type responseService struct {
	pollRepo     ports.PollRepository
	responseRepo ports.ResponseRepository
}

func NewResponseService(pollRepo ports.PollRepository, responseRepo ports.ResponseRepository) ports.ResponseService {
	return &responseService{
		pollRepo:     pollRepo,
		responseRepo: responseRepo,
	}
}

// Admission resolves where the player lands for one identity: login redirect,
// blocked as the creator, blocked with the prior response replayed read-only,
// or answering with type-appropriate defaults.
func (s *responseService) Admission(ctx context.Context, pollID string, identity *domain.Identity) (*ports.Admission, error) {
	id, err := uuid.Parse(pollID)
	if err != nil {
		return nil, domain.ErrInvalidPollID
	}

	poll, err := s.pollRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if poll.Settings.RequireLogin && identity == nil {
		return &ports.Admission{State: ports.AdmissionLoginRequired, Poll: poll}, nil
	}

	if identity != nil {
		if identity.UserID == poll.CreatedBy {
			return &ports.Admission{State: ports.AdmissionBlockedCreator, Poll: poll}, nil
		}

		existing, err := s.responseRepo.GetByUser(ctx, poll.ID, identity.UserID)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return &ports.Admission{
				State:    ports.AdmissionBlockedResponded,
				Poll:     poll,
				Existing: existing,
			}, nil
		}
	}

	return &ports.Admission{
		State:    ports.AdmissionAnswering,
		Poll:     poll,
		Defaults: domain.DefaultAnswers(poll),
	}, nil
}

// Submit validates the answer set, re-checks the admission rules, builds the
// response per the poll's anonymity settings and persists it together with
// the counter increment. Any validation failure aborts before a write.
func (s *responseService) Submit(ctx context.Context, input ports.SubmitInput) (*domain.Response, error) {
	poll, err := s.pollRepo.GetByID(ctx, input.PollID)
	if err != nil {
		return nil, err
	}

	if poll.Settings.RequireLogin && input.Identity == nil {
		return nil, domain.ErrLoginRequired
	}

	if input.Identity != nil {
		if input.Identity.UserID == poll.CreatedBy {
			return nil, domain.ErrCreatorMayNotVote
		}

		existing, err := s.responseRepo.GetByUser(ctx, poll.ID, input.Identity.UserID)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return nil, domain.ErrAlreadyResponded
		}
	}

	if err := validateAnswers(poll, input.Answers); err != nil {
		return nil, err
	}

	response := &domain.Response{
		ID:        uuid.New(),
		PollID:    poll.ID,
		Answers:   input.Answers,
		Timestamp: time.Now().UTC(),
	}

	if !poll.Settings.IsAnonymous && input.Identity != nil {
		userID := input.Identity.UserID
		email := input.Identity.Email
		response.UserID = &userID
		response.UserEmail = &email
		// Deterministic ID: two sessions racing to submit for the same
		// identity collide on the same document instead of double-writing.
		response.ID = uuid.NewSHA1(poll.ID, userID[:])
	}

	if err := s.responseRepo.Save(ctx, response); err != nil {
		return nil, fmt.Errorf("failed to save response: %w", err)
	}

	return response, nil
}

// validateAnswers enforces the pre-write submission rules: every text
// question answered with a non-blank trimmed string, every scale question
// holding an in-range value, every choice question with at least one
// selection and single-choice questions with at most one.
func validateAnswers(poll *domain.Poll, answers map[int]domain.Answer) error {
	var reasons []string

	for _, q := range poll.Questions {
		answer, ok := answers[q.ID]
		if !ok {
			reasons = append(reasons, fmt.Sprintf("please answer all questions: question %d is missing", q.ID))
			continue
		}

		switch q.Type {
		case domain.QuestionText:
			if answer.Text == nil || strings.TrimSpace(*answer.Text) == "" {
				reasons = append(reasons, fmt.Sprintf("please answer all questions: question %d needs a text answer", q.ID))
			}
		case domain.QuestionScale:
			if answer.Scale == nil {
				reasons = append(reasons, fmt.Sprintf("please answer all questions: question %d needs a scale value", q.ID))
			} else if q.Scale != nil && (*answer.Scale < q.Scale.Min || *answer.Scale > q.Scale.Max) {
				reasons = append(reasons, fmt.Sprintf("question %d: value %d is outside the scale range", q.ID, *answer.Scale))
			}
		case domain.QuestionSingle:
			switch answer.SelectedCount() {
			case 0:
				reasons = append(reasons, fmt.Sprintf("please answer all questions: question %d needs a selection", q.ID))
			case 1:
			default:
				reasons = append(reasons, fmt.Sprintf("question %d allows only one selection", q.ID))
			}
		case domain.QuestionMultiple:
			if answer.SelectedCount() == 0 {
				reasons = append(reasons, fmt.Sprintf("please answer all questions: question %d needs a selection", q.ID))
			}
		}

		if q.Type.HasOptions() {
			for idx := range answer.Selected {
				if idx < 0 || idx >= len(q.Options) {
					reasons = append(reasons, fmt.Sprintf("question %d: option index %d does not exist", q.ID, idx))
				}
			}
		}
	}

	if len(reasons) > 0 {
		return &domain.ValidationError{Reasons: reasons}
	}
	return nil
}
