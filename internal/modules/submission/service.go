package submission

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"assignportal/internal/domain"
	"assignportal/internal/pkg/metrics"
	"assignportal/internal/pkg/utils"
	"assignportal/internal/repository"
	"assignportal/internal/storage"

	"github.com/samber/lo"
)

// FileInput is one file of an upload batch as received from the client.
type FileInput struct {
	Filename    string
	ContentType string
	Reader      io.Reader
}

type bufferedFile struct {
	name        string
	contentType string
	data        []byte
}

type Service struct {
	assignments AssignmentReader
	enrollments EnrollmentChecker
	submissions SubmissionRepository
	store       FileStore
	notifier    Notifier
	metrics     *metrics.Recorder
	locks       *keyedMutex
	now         func() time.Time
}

func NewService(
	assignments AssignmentReader,
	enrollments EnrollmentChecker,
	submissions SubmissionRepository,
	store FileStore,
	notifier Notifier,
	rec *metrics.Recorder,
) *Service {
	return &Service{
		assignments: assignments,
		enrollments: enrollments,
		submissions: submissions,
		store:       store,
		notifier:    notifier,
		metrics:     rec,
		locks:       newKeyedMutex(),
		now:         time.Now,
	}
}

// Submit validates the whole batch and then makes it the student's complete submission
// for the assignment, replacing any earlier files.
func (s *Service) Submit(ctx context.Context, p domain.Principal, assignmentID int64, batch []FileInput) (*domain.Submission, error) {
	sub, err := s.submit(ctx, p, assignmentID, batch)
	s.metrics.Submission(errorCode(err))
	return sub, err
}

func (s *Service) submit(ctx context.Context, p domain.Principal, assignmentID int64, batch []FileInput) (*domain.Submission, error) {
	a, err := s.loadAssignment(ctx, assignmentID)
	if err != nil {
		return nil, err
	}
	if !p.IsStudent() {
		return nil, ErrForbidden
	}
	enrolled, err := s.enrollments.IsStudentEnrolled(ctx, a.ClassID, p.UserID)
	if err != nil {
		return nil, fmt.Errorf("check enrollment: %w", err)
	}
	if !enrolled {
		return nil, ErrForbidden
	}
	if a.IsClosed(s.now()) {
		return nil, ErrDeadlinePassed
	}

	files, err := readBatch(a, batch)
	if err != nil {
		return nil, err
	}

	sub, replaced, err := s.persist(ctx, a, p.UserID, files)
	if err != nil {
		return nil, err
	}

	log.Printf("submission_saved submission_id=%d assignment_id=%d student_id=%d files=%d replaced=%d",
		sub.ID, a.ID, p.UserID, len(files), replaced)

	if s.notifier != nil {
		s.notifier.SendToUser(a.TeacherID, ReceivedEvent{
			Type:         EventSubmissionReceived,
			SubmissionID: sub.ID,
			AssignmentID: a.ID,
			Assignment:   a.Title,
			StudentID:    p.UserID,
			Student:      p.Username,
			Files:        len(files),
			At:           sub.UpdatedAt,
		})
	}
	return sub, nil
}

// persist writes the new objects and swaps the file rows while holding the
// (assignment, student) lock. It returns how many old files were replaced.
func (s *Service) persist(ctx context.Context, a *domain.Assignment, studentID int64, files []bufferedFile) (*domain.Submission, int, error) {
	unlock := s.locks.Lock(lockKey{assignmentID: a.ID, studentID: studentID})
	defer unlock()

	rows := make([]domain.StoredFile, 0, len(files))
	for _, f := range files {
		relPath, n, err := s.store.Save(studentID, f.name, bytes.NewReader(f.data))
		if err != nil {
			s.discard(rows)
			return nil, 0, fmt.Errorf("store %q: %w", f.name, err)
		}
		rows = append(rows, domain.StoredFile{
			Filename: f.name,
			Filepath: relPath,
			Filesize: n,
			Filetype: f.contentType,
		})
	}

	sub, oldPaths, err := s.submissions.ReplaceFiles(ctx, a.ID, studentID, rows, s.now())
	if err != nil {
		s.discard(rows)
		return nil, 0, fmt.Errorf("save submission: %w", err)
	}
	if failed := s.store.RemoveAll(oldPaths); failed > 0 {
		log.Printf("submission_cleanup_incomplete submission_id=%d failed=%d", sub.ID, failed)
	}
	return sub, len(oldPaths), nil
}

// readBatch checks every extension, then reads every file counting real bytes.
// Nothing is written until the whole batch passes.
func readBatch(a *domain.Assignment, batch []FileInput) ([]bufferedFile, error) {
	if len(batch) == 0 {
		return nil, ErrEmptyBatch
	}
	for _, in := range batch {
		if !a.AllowsFilename(utils.EntryName(in.Filename)) {
			return nil, unsupportedType(in.Filename, a.AllowedExtensions())
		}
	}

	limit := a.MaxFileBytes()
	out := make([]bufferedFile, 0, len(batch))
	for _, in := range batch {
		data, err := io.ReadAll(io.LimitReader(in.Reader, limit+1))
		if err != nil {
			return nil, fmt.Errorf("read %q: %w", in.Filename, err)
		}
		if int64(len(data)) > limit {
			return nil, tooLarge(in.Filename, limit)
		}
		name := utils.EntryName(in.Filename)
		out = append(out, bufferedFile{
			name:        name,
			contentType: contentTypeOf(name, in.ContentType, data),
			data:        data,
		})
	}
	return out, nil
}

func contentTypeOf(name, declared string, data []byte) string {
	if ct := mime.TypeByExtension(strings.ToLower(filepath.Ext(name))); ct != "" {
		return ct
	}
	if declared = strings.TrimSpace(declared); declared != "" {
		return declared
	}
	return http.DetectContentType(data)
}

func (s *Service) discard(rows []domain.StoredFile) {
	paths := lo.Map(rows, func(f domain.StoredFile, _ int) string { return f.Filepath })
	if failed := s.store.RemoveAll(paths); failed > 0 {
		log.Printf("submission_rollback_incomplete failed=%d", failed)
	}
}

// Download is an opened stored file ready to be streamed.
type Download struct {
	File    *domain.StoredFile
	Content *os.File
	Size    int64
	ModTime time.Time
}

// RetrieveFile opens one stored file for a caller allowed to read it.
// The caller closes Content.
func (s *Service) RetrieveFile(ctx context.Context, p domain.Principal, fileID int64) (*Download, error) {
	f, err := s.submissions.GetFile(ctx, fileID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if f.Submission == nil || f.Submission.Assignment == nil {
		return nil, ErrNotFound
	}
	if !canRead(p, f.Submission, f.Submission.Assignment) {
		return nil, ErrForbidden
	}

	content, info, err := s.store.Open(f.Filepath)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) || errors.Is(err, storage.ErrInvalidPath) {
			log.Printf("storage_inconsistency file_id=%d submission_id=%d path=%s", f.ID, f.SubmissionID, f.Filepath)
			return nil, ErrStorageInconsistency
		}
		return nil, fmt.Errorf("open stored file: %w", err)
	}
	return &Download{File: f, Content: content, Size: info.Size(), ModTime: info.ModTime()}, nil
}

func (s *Service) GetSubmission(ctx context.Context, p domain.Principal, submissionID int64) (*domain.Submission, error) {
	sub, err := s.submissions.GetByID(ctx, submissionID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if sub.Assignment == nil {
		return nil, ErrNotFound
	}
	if !canRead(p, sub, sub.Assignment) {
		return nil, ErrForbidden
	}
	return sub, nil
}

func (s *Service) ListAssignmentSubmissions(ctx context.Context, p domain.Principal, assignmentID int64) (*domain.Assignment, []domain.Submission, error) {
	a, err := s.loadAssignment(ctx, assignmentID)
	if err != nil {
		return nil, nil, err
	}
	if p.IsStudent() || !p.OwnsOrAdmin(a.TeacherID) {
		return nil, nil, ErrForbidden
	}
	subs, err := s.submissions.ListByAssignment(ctx, a.ID)
	if err != nil {
		return nil, nil, err
	}
	return a, subs, nil
}

func (s *Service) GetMySubmission(ctx context.Context, p domain.Principal, assignmentID int64) (*domain.Submission, error) {
	if !p.IsStudent() {
		return nil, ErrForbidden
	}
	a, err := s.loadAssignment(ctx, assignmentID)
	if err != nil {
		return nil, err
	}
	sub, err := s.submissions.GetByAssignmentAndStudent(ctx, a.ID, p.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return sub, nil
}

func (s *Service) loadAssignment(ctx context.Context, id int64) (*domain.Assignment, error) {
	a, err := s.assignments.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return a, nil
}

// canRead: students read their own submission, teachers the submissions to their
// assignments, admins everything.
func canRead(p domain.Principal, sub *domain.Submission, a *domain.Assignment) bool {
	switch p.Role {
	case domain.RoleAdmin:
		return true
	case domain.RoleTeacher:
		return a.TeacherID == p.UserID
	case domain.RoleStudent:
		return sub.StudentID == p.UserID
	}
	return false
}
