package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/pollwise/api/internal/core/domain"
	"github.com/pollwise/api/internal/core/ports"
)

type adminService struct {
	userRepo ports.UserRepository
	pollRepo ports.PollRepository
}

// NewAdminService returns the role-gated administration service. The role is
// checked here as well as in the HTTP middleware so the store is never
// reachable through a UI-layer check alone.
func NewAdminService(userRepo ports.UserRepository, pollRepo ports.PollRepository) ports.AdminService {
	return &adminService{
		userRepo: userRepo,
		pollRepo: pollRepo,
	}
}

func (s *adminService) ListUsers(ctx context.Context, identity domain.Identity) ([]*domain.User, error) {
	if identity.Role != domain.RoleAdmin {
		return nil, domain.ErrForbidden
	}
	return s.userRepo.List(ctx)
}

func (s *adminService) DeleteUser(ctx context.Context, identity domain.Identity, userID string) error {
	if identity.Role != domain.RoleAdmin {
		return domain.ErrForbidden
	}

	id, err := uuid.Parse(userID)
	if err != nil {
		return fmt.Errorf("invalid user id: %w", err)
	}

	user, err := s.userRepo.GetByID(ctx, id.String())
	if err != nil {
		return fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return domain.ErrUserNotFound
	}

	return s.userRepo.Delete(ctx, id)
}

func (s *adminService) ListPolls(ctx context.Context, identity domain.Identity) ([]*domain.Poll, error) {
	if identity.Role != domain.RoleAdmin {
		return nil, domain.ErrForbidden
	}
	return s.pollRepo.GetAll(ctx)
}

func (s *adminService) DeletePoll(ctx context.Context, identity domain.Identity, pollID string) error {
	if identity.Role != domain.RoleAdmin {
		return domain.ErrForbidden
	}

	id, err := uuid.Parse(pollID)
	if err != nil {
		return domain.ErrInvalidPollID
	}

	if _, err := s.pollRepo.GetByID(ctx, id); err != nil {
		return err
	}

	return s.pollRepo.Delete(ctx, id)
}
