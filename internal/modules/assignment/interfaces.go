package assignment

import (
	"context"

	"assignportal/internal/domain"
	"assignportal/internal/repository"
)

type AssignmentRepository interface {
	Create(ctx context.Context, a *domain.Assignment) error
	Update(ctx context.Context, a *domain.Assignment) error
	GetByID(ctx context.Context, id int64) (*domain.Assignment, error)
	ListByTeacher(ctx context.Context, teacherID int64) ([]domain.Assignment, error)
	ListForStudent(ctx context.Context, studentID int64) ([]domain.Assignment, error)
	Delete(ctx context.Context, id int64) ([]string, error)
}

type ClassRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Class, error)
	IsStudentEnrolled(ctx context.Context, classID, studentID int64) (bool, error)
	HasCourse(ctx context.Context, classID, courseID int64) (bool, error)
}

type CourseRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Course, error)
}

type SubmissionReader interface {
	ListByAssignment(ctx context.Context, assignmentID int64) ([]domain.Submission, error)
	GetByAssignmentAndStudent(ctx context.Context, assignmentID, studentID int64) (*domain.Submission, error)
	SubmittedAssignmentIDs(ctx context.Context, studentID int64) ([]int64, error)
}

type ProgressReader interface {
	Progress(ctx context.Context, assignments []domain.Assignment) (map[int64]repository.AssignmentProgress, error)
}

type PathRemover interface {
	RemoveAll(relPaths []string) int
}
