package auth

import (
	"context"

	"reservehub/internal/domain"
)

// UserRepositoryInterface lists only the methods the auth service uses
type UserRepositoryInterface interface {
	Create(ctx context.Context, u *domain.User) error
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	UpdateFields(ctx context.Context, id int64, fields map[string]any) error
	Delete(ctx context.Context, id int64) error
}

// TokenRepositoryInterface is the storage for emailed single-use tokens
type TokenRepositoryInterface interface {
	Create(ctx context.Context, t *domain.UserToken) error
	GetActive(ctx context.Context, purpose domain.TokenPurpose, hash string) (*domain.UserToken, error)
	MarkUsed(ctx context.Context, id int64) error
	InvalidateForUser(ctx context.Context, userID int64, purpose domain.TokenPurpose) error
	DeleteExpired(ctx context.Context) (int64, error)
}

type Mailer interface {
	SendActivation(ctx context.Context, to, token string) error
	SendPasswordReset(ctx context.Context, to, token string) error
	SendEmailChange(ctx context.Context, to, token string) error
}

type jwtService interface {
	GenerateToken(userID int64, role string) (string, error)
}
