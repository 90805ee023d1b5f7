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

const pollsPerPage = 20

type pollService struct {
	repo ports.PollRepository
}

func NewPollService(repo ports.PollRepository) ports.PollService {
	return &pollService{
		repo: repo,
	}
}

// Publish validates the candidate poll and persists it with a zero response
// count. Each failed rule produces its own user-visible reason; nothing is
// written unless every rule passes. Published polls are never edited.
func (s *pollService) Publish(ctx context.Context, input ports.PublishPollInput) (*domain.Poll, error) {
	var reasons []string

	title := strings.TrimSpace(input.Title)
	if title == "" {
		reasons = append(reasons, "title is required")
	} else if title == domain.DefaultTitle {
		reasons = append(reasons, "title is still the default placeholder")
	}

	if len(input.Questions) == 0 {
		reasons = append(reasons, "at least one question is required")
	}

	questions := make([]domain.Question, 0, len(input.Questions))
	for i, q := range input.Questions {
		n := i + 1
		if strings.TrimSpace(q.Text) == "" {
			reasons = append(reasons, fmt.Sprintf("question %d: text is required", n))
		}
		if !q.Type.Valid() {
			reasons = append(reasons, fmt.Sprintf("question %d: unknown question type %q", n, q.Type))
			continue
		}

		question := domain.Question{
			ID:   n,
			Text: strings.TrimSpace(q.Text),
			Type: q.Type,
		}

		switch {
		case q.Type.HasOptions():
			options, optReasons := validateOptions(n, q.Options)
			reasons = append(reasons, optReasons...)
			question.Options = options
		case q.Type == domain.QuestionScale:
			if q.Scale == nil {
				reasons = append(reasons, fmt.Sprintf("question %d: scale range is required", n))
			} else if q.Scale.Min >= q.Scale.Max {
				reasons = append(reasons, fmt.Sprintf("question %d: scale minimum must be below maximum", n))
			} else {
				scale := *q.Scale
				question.Scale = &scale
			}
		}

		questions = append(questions, question)
	}

	if input.Settings.RequireLogin && input.Settings.IsAnonymous {
		reasons = append(reasons, "a poll cannot both require login and be anonymous")
	}

	if len(reasons) > 0 {
		return nil, &domain.ValidationError{Reasons: reasons}
	}

	poll := &domain.Poll{
		ID:             uuid.New(),
		Title:          title,
		Questions:      questions,
		Design:         input.Design,
		Time:           input.Time,
		Settings:       input.Settings,
		CreatedBy:      input.CreatedBy,
		CreatedAt:      time.Now().UTC(),
		ResponsesCount: 0,
	}

	if err := s.repo.Save(ctx, poll); err != nil {
		return nil, fmt.Errorf("failed to save poll: %w", err)
	}

	return poll, nil
}

// validateOptions trims the raw option list and reports every rule the
// question breaks: fewer than two options, blank options, duplicates after
// trim and case folding.
func validateOptions(n int, raw []string) ([]string, []string) {
	var reasons []string

	options := make([]string, 0, len(raw))
	seen := make(map[string]bool, len(raw))
	for _, opt := range raw {
		trimmed := strings.TrimSpace(opt)
		if trimmed == "" {
			reasons = append(reasons, fmt.Sprintf("question %d: options must not be blank", n))
			continue
		}
		key := domain.NormalizeOption(opt)
		if seen[key] {
			reasons = append(reasons, fmt.Sprintf("question %d: duplicate option %q", n, trimmed))
			continue
		}
		seen[key] = true
		options = append(options, trimmed)
	}

	if len(options) < 2 {
		reasons = append(reasons, fmt.Sprintf("question %d: at least two options are required", n))
	}

	return options, reasons
}

func (s *pollService) GetPoll(ctx context.Context, id string) (*domain.Poll, error) {
	pollID, err := uuid.Parse(id)
	if err != nil {
		return nil, domain.ErrInvalidPollID
	}

	return s.repo.GetByID(ctx, pollID)
}

func (s *pollService) ListPolls(ctx context.Context, input ports.ListPollsInput) ([]*domain.Poll, error) {
	page := input.Page
	if page < 1 {
		page = 1
	}
	offset := (page - 1) * pollsPerPage

	if q := strings.TrimSpace(input.Query); q != "" {
		return s.repo.Search(ctx, pollsPerPage, offset, q)
	}
	return s.repo.List(ctx, pollsPerPage, offset)
}

func (s *pollService) ListMyPolls(ctx context.Context, creator uuid.UUID) ([]*domain.Poll, error) {
	return s.repo.ListByCreator(ctx, creator)
}

func (s *pollService) DeletePoll(ctx context.Context, id string, identity domain.Identity) error {
	pollID, err := uuid.Parse(id)
	if err != nil {
		return domain.ErrInvalidPollID
	}

	poll, err := s.repo.GetByID(ctx, pollID)
	if err != nil {
		return err
	}

	if poll.CreatedBy != identity.UserID && identity.Role != domain.RoleAdmin {
		return domain.ErrForbidden
	}

	if err := s.repo.Delete(ctx, pollID); err != nil {
		return fmt.Errorf("failed to delete poll: %w", err)
	}
	return nil
}
