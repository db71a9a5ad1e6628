package auth

import (
	"context"
	"time"

	"assignportal/internal/domain"
)

// UserRepository holds the user lookups the auth service needs.
type UserRepository interface {
	Create(ctx context.Context, u *domain.User) error
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	Update(ctx context.Context, u *domain.User) error
}

type TokenIssuer interface {
	GenerateToken(userID int64, username, role string) (string, error)
	TTL() time.Duration
}
