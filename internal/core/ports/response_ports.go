package ports

import (
	"context"

	"github.com/google/uuid"
	"github.com/pollwise/api/internal/core/domain"
)

type ResponseRepository interface {
	// Save persists the response and increments the poll's responses count
	// in the same atomic unit. A response by the same signed-in identity
	// must fail with domain.ErrAlreadyResponded rather than double-write.
	Save(ctx context.Context, response *domain.Response) error
	GetByUser(ctx context.Context, pollID, userID uuid.UUID) (*domain.Response, error)
	ListByPoll(ctx context.Context, pollID uuid.UUID) ([]*domain.Response, error)
}

// AdmissionState is where the poll player lands after identity and prior
// responses have been resolved.
type AdmissionState string

const (
	AdmissionLoginRequired    AdmissionState = "login-required"
	AdmissionBlockedCreator   AdmissionState = "blocked-creator"
	AdmissionBlockedResponded AdmissionState = "blocked-already-responded"
	AdmissionAnswering        AdmissionState = "answering"
)

// Admission tells the player how to render a poll for one identity. Defaults
// is populated only in the answering state; Existing only when a prior
// response is replayed read-only.
type Admission struct {
	State    AdmissionState        `json:"state"`
	Poll     *domain.Poll          `json:"poll"`
	Defaults map[int]domain.Answer `json:"defaults,omitempty"`
	Existing *domain.Response      `json:"existing,omitempty"`
}

type SubmitInput struct {
	PollID   uuid.UUID
	Answers  map[int]domain.Answer
	Identity *domain.Identity
}

type ResponseService interface {
	Admission(ctx context.Context, pollID string, identity *domain.Identity) (*Admission, error)
	Submit(ctx context.Context, input SubmitInput) (*domain.Response, error)
}
