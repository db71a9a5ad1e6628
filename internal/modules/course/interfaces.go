package course

import (
	"context"

	"assignportal/internal/domain"
)

type CourseRepository interface {
	Create(ctx context.Context, c *domain.Course) error
	Update(ctx context.Context, c *domain.Course) error
	GetByID(ctx context.Context, id int64) (*domain.Course, error)
	ListByTeacher(ctx context.Context, teacherID int64) ([]domain.Course, error)
	Delete(ctx context.Context, id int64) ([]string, error)
}

type PathRemover interface {
	RemoveAll(relPaths []string) int
}
