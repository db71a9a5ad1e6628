package submission

import (
	"context"
	"io"
	"os"
	"time"

	"assignportal/internal/domain"
)

type AssignmentReader interface {
	GetByID(ctx context.Context, id int64) (*domain.Assignment, error)
}

type EnrollmentChecker interface {
	IsStudentEnrolled(ctx context.Context, classID, studentID int64) (bool, error)
}

type SubmissionRepository interface {
	ReplaceFiles(ctx context.Context, assignmentID, studentID int64, files []domain.StoredFile, now time.Time) (*domain.Submission, []string, error)
	GetByID(ctx context.Context, id int64) (*domain.Submission, error)
	GetByAssignmentAndStudent(ctx context.Context, assignmentID, studentID int64) (*domain.Submission, error)
	ListByAssignment(ctx context.Context, assignmentID int64) ([]domain.Submission, error)
	GetFile(ctx context.Context, fileID int64) (*domain.StoredFile, error)
}

// FileStore is the object storage for uploaded files, keyed by relative path.
type FileStore interface {
	Save(studentID int64, originalName string, r io.Reader) (string, int64, error)
	Open(relPath string) (*os.File, os.FileInfo, error)
	Exists(relPath string) bool
	RemoveAll(relPaths []string) int
}

// Notifier pushes an event to a connected user; delivery is best effort.
type Notifier interface {
	SendToUser(userID int64, message interface{}) bool
}
