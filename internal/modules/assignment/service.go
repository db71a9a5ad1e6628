package assignment

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"assignportal/internal/domain"
	"assignportal/internal/repository"

	"github.com/samber/lo"
)

// Summary is one assignment as listed for a principal. Teachers get Progress,
// students get Status.
type Summary struct {
	Assignment domain.Assignment
	Progress   *repository.AssignmentProgress
	Status     string
}

// Detail extends Summary with the submissions visible to the caller.
type Detail struct {
	Summary
	Submissions  []domain.Submission
	MySubmission *domain.Submission
}

type Service struct {
	assignments AssignmentRepository
	classes     ClassRepository
	courses     CourseRepository
	submissions SubmissionReader
	progress    ProgressReader
	store       PathRemover
	now         func() time.Time
}

func NewService(
	assignments AssignmentRepository,
	classes ClassRepository,
	courses CourseRepository,
	submissions SubmissionReader,
	progress ProgressReader,
	store PathRemover,
) *Service {
	return &Service{
		assignments: assignments,
		classes:     classes,
		courses:     courses,
		submissions: submissions,
		progress:    progress,
		store:       store,
		now:         time.Now,
	}
}

// Now is the clock used for closed/open decisions.
func (s *Service) Now() time.Time { return s.now() }

/* ---------- TEACHER ---------- */

func (s *Service) Create(ctx context.Context, p domain.Principal, req AssignmentRequest) (*domain.Assignment, error) {
	a := &domain.Assignment{TeacherID: p.UserID}
	if err := s.apply(ctx, p, a, req); err != nil {
		return nil, err
	}
	if err := s.assignments.Create(ctx, a); err != nil {
		return nil, err
	}
	return s.reload(ctx, a.ID)
}

func (s *Service) Update(ctx context.Context, p domain.Principal, id int64, req AssignmentRequest) (*domain.Assignment, error) {
	a, err := s.owned(ctx, p, id)
	if err != nil {
		return nil, err
	}
	if err := s.apply(ctx, p, a, req); err != nil {
		return nil, err
	}
	if err := s.assignments.Update(ctx, a); err != nil {
		return nil, err
	}
	return s.reload(ctx, a.ID)
}

// Delete removes the assignment with every submission and stored file.
func (s *Service) Delete(ctx context.Context, p domain.Principal, id int64) error {
	if _, err := s.owned(ctx, p, id); err != nil {
		return err
	}
	paths, err := s.assignments.Delete(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrAssignmentNotFound
		}
		return err
	}
	failed := s.store.RemoveAll(paths)
	log.Printf("assignment_deleted assignment_id=%d by=%d files=%d cleanup_failed=%d", id, p.UserID, len(paths), failed)
	return nil
}

// apply validates req against the caller's classes and courses and copies it onto a.
func (s *Service) apply(ctx context.Context, p domain.Principal, a *domain.Assignment, req AssignmentRequest) error {
	due, err := ParseDueDate(req.DueDate)
	if err != nil {
		return err
	}

	allowed := domain.DefaultAllowedFileTypes
	if strings.TrimSpace(req.AllowedFileTypes) != "" {
		exts := domain.ParseExtensions(req.AllowedFileTypes)
		if len(exts) == 0 {
			return ErrInvalidFileTypes
		}
		allowed = strings.Join(exts, ",")
	}
	maxSize := req.MaxFileSize
	if maxSize == 0 {
		maxSize = domain.DefaultMaxFileSizeMB
	}

	class, err := s.classes.GetByID(ctx, req.ClassID)
	if err != nil || !p.OwnsOrAdmin(class.TeacherID) {
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			return err
		}
		return ErrClassNotFound
	}
	course, err := s.courses.GetByID(ctx, req.CourseID)
	if err != nil || !p.OwnsOrAdmin(course.TeacherID) {
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			return err
		}
		return ErrCourseNotFound
	}
	linked, err := s.classes.HasCourse(ctx, class.ID, course.ID)
	if err != nil {
		return err
	}
	if !linked {
		return ErrCourseNotInClass
	}

	a.Title = strings.TrimSpace(req.Title)
	a.Description = strings.TrimSpace(req.Description)
	a.ClassID = class.ID
	a.CourseID = course.ID
	a.DueDate = due
	a.AllowedFileTypes = allowed
	a.MaxFileSize = maxSize
	return nil
}

var dueDateLayouts = []string{"2006-01-02T15:04", "2006-01-02T15:04:05", "2006-01-02 15:04"}

// ParseDueDate accepts RFC 3339 or a zone-less local timestamp.
func ParseDueDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	for _, layout := range dueDateLayouts {
		if t, err := time.ParseInLocation(layout, raw, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, ErrInvalidDueDate
}

/* ---------- READ ---------- */

// List returns the caller's assignments: owned ones for teachers (all for admins),
// those of enrolled classes for students.
func (s *Service) List(ctx context.Context, p domain.Principal) ([]Summary, error) {
	if p.IsStudent() {
		return s.studentSummaries(ctx, p)
	}
	filter := p.UserID
	if p.IsAdmin() {
		filter = 0
	}
	list, err := s.assignments.ListByTeacher(ctx, filter)
	if err != nil {
		return nil, err
	}
	progress, err := s.progress.Progress(ctx, list)
	if err != nil {
		return nil, err
	}
	return lo.Map(list, func(a domain.Assignment, _ int) Summary {
		pr := progress[a.ID]
		return Summary{Assignment: a, Progress: &pr}
	}), nil
}

// MyAssignments splits a student's assignments by whether a submission exists.
func (s *Service) MyAssignments(ctx context.Context, p domain.Principal) (pending, completed []Summary, err error) {
	if !p.IsStudent() {
		return nil, nil, ErrForbidden
	}
	all, err := s.studentSummaries(ctx, p)
	if err != nil {
		return nil, nil, err
	}
	completed, pending = lo.FilterReject(all, func(sm Summary, _ int) bool {
		return sm.Status == StatusSubmitted
	})
	return pending, completed, nil
}

func (s *Service) Get(ctx context.Context, p domain.Principal, id int64) (*Detail, error) {
	a, err := s.reload(ctx, id)
	if err != nil {
		return nil, err
	}

	if p.IsStudent() {
		enrolled, err := s.classes.IsStudentEnrolled(ctx, a.ClassID, p.UserID)
		if err != nil {
			return nil, err
		}
		if !enrolled {
			return nil, ErrForbidden
		}
		d := &Detail{Summary: Summary{Assignment: *a, Status: StatusPending}}
		sub, err := s.submissions.GetByAssignmentAndStudent(ctx, a.ID, p.UserID)
		switch {
		case err == nil:
			d.Status = StatusSubmitted
			d.MySubmission = sub
		case !errors.Is(err, repository.ErrNotFound):
			return nil, err
		}
		return d, nil
	}

	if !p.OwnsOrAdmin(a.TeacherID) {
		return nil, ErrForbidden
	}
	progress, err := s.progress.Progress(ctx, []domain.Assignment{*a})
	if err != nil {
		return nil, err
	}
	subs, err := s.submissions.ListByAssignment(ctx, a.ID)
	if err != nil {
		return nil, err
	}
	if subs == nil {
		subs = []domain.Submission{}
	}
	pr := progress[a.ID]
	return &Detail{Summary: Summary{Assignment: *a, Progress: &pr}, Submissions: subs}, nil
}

func (s *Service) studentSummaries(ctx context.Context, p domain.Principal) ([]Summary, error) {
	list, err := s.assignments.ListForStudent(ctx, p.UserID)
	if err != nil {
		return nil, err
	}
	ids, err := s.submissions.SubmittedAssignmentIDs(ctx, p.UserID)
	if err != nil {
		return nil, err
	}
	submitted := lo.SliceToMap(ids, func(id int64) (int64, bool) { return id, true })
	return lo.Map(list, func(a domain.Assignment, _ int) Summary {
		status := StatusPending
		if submitted[a.ID] {
			status = StatusSubmitted
		}
		return Summary{Assignment: a, Status: status}
	}), nil
}

func (s *Service) owned(ctx context.Context, p domain.Principal, id int64) (*domain.Assignment, error) {
	a, err := s.reload(ctx, id)
	if err != nil {
		return nil, err
	}
	if !p.OwnsOrAdmin(a.TeacherID) {
		return nil, ErrForbidden
	}
	return a, nil
}

func (s *Service) reload(ctx context.Context, id int64) (*domain.Assignment, error) {
	a, err := s.assignments.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrAssignmentNotFound
		}
		return nil, err
	}
	return a, nil
}
