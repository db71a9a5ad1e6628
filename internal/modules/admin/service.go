package admin

import (
	"context"
	"errors"
	"log"
	"strings"

	"assignportal/internal/domain"
	"assignportal/internal/modules/auth"
	"assignportal/internal/repository"

	"github.com/samber/lo"
)

type Service struct {
	users UserRepository
	store PathRemover
}

func NewService(users UserRepository, store PathRemover) *Service {
	return &Service{users: users, store: store}
}

// ListUsers returns all users, optionally only those with role.
func (s *Service) ListUsers(ctx context.Context, role string) ([]domain.User, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, err
	}
	if role == "" {
		return users, nil
	}
	return lo.Filter(users, func(u domain.User, _ int) bool { return string(u.Role) == role }), nil
}

func (s *Service) CreateUser(ctx context.Context, req CreateUserRequest) (*domain.User, error) {
	role := domain.UserRole(req.Role)
	if !role.Valid() {
		return nil, ErrInvalidRole
	}
	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}
	u := &domain.User{
		Username:     strings.TrimSpace(req.Username),
		PasswordHash: hash,
		Role:         role,
		Organization: strings.TrimSpace(req.Organization),
		IDNumber:     strings.TrimSpace(req.IDNumber),
		FirstLogin:   true,
	}
	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, repository.ErrAlreadyExists) {
			return nil, ErrUsernameTaken
		}
		return nil, err
	}
	return u, nil
}

func (s *Service) UpdateUser(ctx context.Context, id int64, req UpdateUserRequest) (*domain.User, error) {
	u, err := s.getUser(ctx, id)
	if err != nil {
		return nil, err
	}
	role := domain.UserRole(req.Role)
	if !role.Valid() {
		return nil, ErrInvalidRole
	}

	username := strings.TrimSpace(req.Username)
	if u.Username == domain.AdminUsername && (username != u.Username || role != domain.RoleAdmin) {
		return nil, ErrProtectedAccount
	}

	u.Username = username
	u.Role = role
	if req.Password != "" {
		hash, err := auth.HashPassword(req.Password)
		if err != nil {
			return nil, err
		}
		u.PasswordHash = hash
	}
	if err := s.users.Update(ctx, u); err != nil {
		if errors.Is(err, repository.ErrAlreadyExists) {
			return nil, ErrUsernameTaken
		}
		return nil, err
	}
	return u, nil
}

// DeleteUser removes a user. A student's submissions and stored files go with them.
func (s *Service) DeleteUser(ctx context.Context, actorID, id int64) error {
	if actorID == id {
		return ErrCannotDeleteSelf
	}
	u, err := s.getUser(ctx, id)
	if err != nil {
		return err
	}
	if u.Username == domain.AdminUsername {
		return ErrProtectedAccount
	}

	paths, err := s.users.Delete(ctx, id)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return ErrUserNotFound
		case errors.Is(err, repository.ErrHasDependents):
			return ErrUserHasContent
		}
		return err
	}
	failed := s.store.RemoveAll(paths)
	log.Printf("user_deleted user_id=%d role=%s files=%d cleanup_failed=%d", id, u.Role, len(paths), failed)
	return nil
}

func (s *Service) getUser(ctx context.Context, id int64) (*domain.User, error) {
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return u, nil
}
