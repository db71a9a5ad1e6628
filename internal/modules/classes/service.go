package classes

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"assignportal/internal/domain"
	"assignportal/internal/repository"

	"github.com/samber/lo"
)

type Service struct {
	classes ClassRepository
	courses CourseOwnership
	users   UserRepository
	store   PathRemover
}

func NewService(classes ClassRepository, courses CourseOwnership, users UserRepository, store PathRemover) *Service {
	return &Service{classes: classes, courses: courses, users: users, store: store}
}

/* ---------- CLASSES ---------- */

func (s *Service) List(ctx context.Context, p domain.Principal) ([]domain.Class, error) {
	return s.classes.ListByTeacher(ctx, ownerFilter(p))
}

func (s *Service) Create(ctx context.Context, p domain.Principal, req ClassRequest) (*domain.Class, error) {
	courseIDs, err := s.ownedCourses(ctx, p, req.CourseIDs)
	if err != nil {
		return nil, err
	}
	c := &domain.Class{
		Name:        strings.TrimSpace(req.Name),
		Description: strings.TrimSpace(req.Description),
		TeacherID:   p.UserID,
	}
	if err := s.classes.Create(ctx, c, courseIDs); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *Service) Get(ctx context.Context, p domain.Principal, id int64) (*domain.Class, error) {
	c, err := s.classes.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrClassNotFound
		}
		return nil, err
	}
	if !p.OwnsOrAdmin(c.TeacherID) {
		return nil, ErrForbidden
	}
	return c, nil
}

// Detail returns the class along with the students that could still be enrolled.
func (s *Service) Detail(ctx context.Context, p domain.Principal, id int64) (*domain.Class, []domain.User, error) {
	c, err := s.Get(ctx, p, id)
	if err != nil {
		return nil, nil, err
	}
	available, err := s.users.ListStudentsOutsideClass(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	return c, available, nil
}

func (s *Service) Update(ctx context.Context, p domain.Principal, id int64, req ClassRequest) (*domain.Class, error) {
	c, err := s.Get(ctx, p, id)
	if err != nil {
		return nil, err
	}
	courseIDs, err := s.ownedCourses(ctx, p, req.CourseIDs)
	if err != nil {
		return nil, err
	}
	c.Name = strings.TrimSpace(req.Name)
	c.Description = strings.TrimSpace(req.Description)
	if err := s.classes.Update(ctx, c, courseIDs); err != nil {
		return nil, err
	}
	return c, nil
}

// Delete removes the class with its assignments and their submitted files.
func (s *Service) Delete(ctx context.Context, p domain.Principal, id int64) error {
	if _, err := s.Get(ctx, p, id); err != nil {
		return err
	}
	paths, err := s.classes.Delete(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrClassNotFound
		}
		return err
	}
	failed := s.store.RemoveAll(paths)
	log.Printf("class_deleted class_id=%d by=%d files=%d cleanup_failed=%d", id, p.UserID, len(paths), failed)
	return nil
}

func (s *Service) Courses(ctx context.Context, p domain.Principal, id int64) ([]domain.Course, error) {
	if _, err := s.Get(ctx, p, id); err != nil {
		return nil, err
	}
	return s.classes.ListCourses(ctx, id)
}

/* ---------- ENROLMENT ---------- */

func (s *Service) AddStudent(ctx context.Context, p domain.Principal, classID, studentID int64) (*domain.User, error) {
	if _, err := s.Get(ctx, p, classID); err != nil {
		return nil, err
	}
	u, err := s.users.GetByID(ctx, studentID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrStudentNotFound
		}
		return nil, err
	}
	if u.Role != domain.RoleStudent {
		return nil, ErrNotStudent
	}
	if err := s.enroll(ctx, classID, u.ID); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *Service) RemoveStudent(ctx context.Context, p domain.Principal, classID, studentID int64) error {
	if _, err := s.Get(ctx, p, classID); err != nil {
		return err
	}
	enrolled, err := s.classes.IsStudentEnrolled(ctx, classID, studentID)
	if err != nil {
		return err
	}
	if !enrolled {
		return ErrNotEnrolled
	}
	return s.classes.RemoveStudent(ctx, classID, studentID)
}

func (s *Service) enroll(ctx context.Context, classID, studentID int64) error {
	enrolled, err := s.classes.IsStudentEnrolled(ctx, classID, studentID)
	if err != nil {
		return err
	}
	if enrolled {
		return ErrAlreadyEnrolled
	}
	if err := s.classes.AddStudent(ctx, classID, studentID); err != nil {
		return fmt.Errorf("enroll student %d: %w", studentID, err)
	}
	return nil
}

// ownedCourses de-duplicates ids and requires every one to belong to the caller.
func (s *Service) ownedCourses(ctx context.Context, p domain.Principal, ids []int64) ([]int64, error) {
	ids = lo.Uniq(ids)
	if len(ids) == 0 {
		return nil, nil
	}
	owned, err := s.courses.FilterOwned(ctx, ownerFilter(p), ids)
	if err != nil {
		return nil, err
	}
	if len(owned) != len(ids) {
		return nil, ErrCourseNotOwned
	}
	return ids, nil
}

func ownerFilter(p domain.Principal) int64 {
	if p.IsAdmin() {
		return 0
	}
	return p.UserID
}
