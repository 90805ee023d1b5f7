package ports

import (
	"context"

	"github.com/google/uuid"
	"github.com/pollwise/api/internal/core/domain"
)

type PollRepository interface {
	Save(ctx context.Context, poll *domain.Poll) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Poll, error)
	GetAll(ctx context.Context) ([]*domain.Poll, error)
	List(ctx context.Context, limit, offset int) ([]*domain.Poll, error)
	Search(ctx context.Context, limit, offset int, query string) ([]*domain.Poll, error)
	ListByCreator(ctx context.Context, creator uuid.UUID) ([]*domain.Poll, error)
	// Delete removes the poll and every response under it.
	Delete(ctx context.Context, id uuid.UUID) error
}

type QuestionInput struct {
	Text    string              `json:"text"`
	Type    domain.QuestionType `json:"type"`
	Options []string            `json:"options"`
	Scale   *domain.ScaleRange  `json:"scale"`
}

type PublishPollInput struct {
	Title     string
	Questions []QuestionInput
	Design    domain.DesignSettings
	Time      domain.TimeSettings
	Settings  domain.PollSettings
	CreatedBy uuid.UUID
}

type ListPollsInput struct {
	Page  int
	Query string
}

type PollService interface {
	Publish(ctx context.Context, input PublishPollInput) (*domain.Poll, error)
	GetPoll(ctx context.Context, id string) (*domain.Poll, error)
	ListPolls(ctx context.Context, input ListPollsInput) ([]*domain.Poll, error)
	ListMyPolls(ctx context.Context, creator uuid.UUID) ([]*domain.Poll, error)
	// DeletePoll cascades to the poll's responses. Only the owner or an
	// admin may delete.
	DeletePoll(ctx context.Context, id string, identity domain.Identity) error
}
