package ports

import (
	"context"

	"github.com/google/uuid"
	"github.com/pollwise/api/internal/core/domain"
)

type AuthRepository interface {
	StoreRefreshToken(ctx context.Context, token *domain.RefreshToken) error
	GetRefreshTokenByHash(ctx context.Context, tokenHash string) (*domain.RefreshToken, error)
	RevokeRefreshToken(ctx context.Context, id string) error
}

type TokenPayload struct {
	Email string
	Name  string
}

type TokenVerifier interface {
	Verify(ctx context.Context, token string, clientID string) (*TokenPayload, error)
}

// TokenPair is what every successful sign-in or refresh returns.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

type AuthService interface {
	Register(ctx context.Context, email, password, name string) (*TokenPair, error)
	Login(ctx context.Context, email, password string) (*TokenPair, error)
	LoginWithGoogle(ctx context.Context, googleToken string) (*TokenPair, error)
	RefreshAccessToken(ctx context.Context, refreshToken string) (*TokenPair, error)
	Logout(ctx context.Context, refreshToken string) error
	// UpdateEmail and UpdatePassword require re-authentication with the
	// current password.
	UpdateEmail(ctx context.Context, userID uuid.UUID, currentPassword, newEmail string) error
	UpdatePassword(ctx context.Context, userID uuid.UUID, currentPassword, newPassword string) error
	DeleteAccount(ctx context.Context, userID uuid.UUID, currentPassword string) error
}
