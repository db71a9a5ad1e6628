package admin

import (
	"context"

	"assignportal/internal/domain"
)

type UserRepository interface {
	List(ctx context.Context) ([]domain.User, error)
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	Create(ctx context.Context, u *domain.User) error
	Update(ctx context.Context, u *domain.User) error
	Delete(ctx context.Context, id int64) ([]string, error)
}

// PathRemover deletes stored objects left behind by cascaded rows.
type PathRemover interface {
	RemoveAll(relPaths []string) int
}
