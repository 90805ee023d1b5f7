package ports

import (
	"context"

	"github.com/pollwise/api/internal/core/domain"
)

// AdminService is role-gated at the middleware layer; services still verify
// the caller's role so the store is never reachable through UI checks alone.
type AdminService interface {
	ListUsers(ctx context.Context, identity domain.Identity) ([]*domain.User, error)
	DeleteUser(ctx context.Context, identity domain.Identity, userID string) error
	ListPolls(ctx context.Context, identity domain.Identity) ([]*domain.Poll, error)
	DeletePoll(ctx context.Context, identity domain.Identity, pollID string) error
}
