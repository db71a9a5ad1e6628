package classes

import (
	"context"

	"assignportal/internal/domain"
)

type ClassRepository interface {
	Create(ctx context.Context, c *domain.Class, courseIDs []int64) error
	Update(ctx context.Context, c *domain.Class, courseIDs []int64) error
	GetByID(ctx context.Context, id int64) (*domain.Class, error)
	ListByTeacher(ctx context.Context, teacherID int64) ([]domain.Class, error)
	IsStudentEnrolled(ctx context.Context, classID, studentID int64) (bool, error)
	AddStudent(ctx context.Context, classID, studentID int64) error
	RemoveStudent(ctx context.Context, classID, studentID int64) error
	ListCourses(ctx context.Context, classID int64) ([]domain.Course, error)
	Delete(ctx context.Context, id int64) ([]string, error)
}

type CourseOwnership interface {
	FilterOwned(ctx context.Context, teacherID int64, ids []int64) ([]int64, error)
}

type UserRepository interface {
	Create(ctx context.Context, u *domain.User) error
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	ListStudentsOutsideClass(ctx context.Context, classID int64) ([]domain.User, error)
}

type PathRemover interface {
	RemoveAll(relPaths []string) int
}
