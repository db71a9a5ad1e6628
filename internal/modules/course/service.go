package course

import (
	"context"
	"errors"
	"log"
	"strings"

	"assignportal/internal/domain"
	"assignportal/internal/repository"
)

type Service struct {
	courses CourseRepository
	store   PathRemover
}

func NewService(courses CourseRepository, store PathRemover) *Service {
	return &Service{courses: courses, store: store}
}

// List returns the caller's courses. Admins see every course.
func (s *Service) List(ctx context.Context, p domain.Principal) ([]domain.Course, error) {
	return s.courses.ListByTeacher(ctx, ownerFilter(p))
}

func (s *Service) Create(ctx context.Context, p domain.Principal, req CourseRequest) (*domain.Course, error) {
	c := &domain.Course{TeacherID: p.UserID}
	apply(c, req)
	if err := s.courses.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *Service) Get(ctx context.Context, p domain.Principal, id int64) (*domain.Course, error) {
	c, err := s.courses.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrCourseNotFound
		}
		return nil, err
	}
	if !p.OwnsOrAdmin(c.TeacherID) {
		return nil, ErrForbidden
	}
	return c, nil
}

func (s *Service) Update(ctx context.Context, p domain.Principal, id int64, req CourseRequest) (*domain.Course, error) {
	c, err := s.Get(ctx, p, id)
	if err != nil {
		return nil, err
	}
	apply(c, req)
	if err := s.courses.Update(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// Delete removes the course with its assignments and their submitted files.
func (s *Service) Delete(ctx context.Context, p domain.Principal, id int64) error {
	if _, err := s.Get(ctx, p, id); err != nil {
		return err
	}
	paths, err := s.courses.Delete(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrCourseNotFound
		}
		return err
	}
	failed := s.store.RemoveAll(paths)
	log.Printf("course_deleted course_id=%d by=%d files=%d cleanup_failed=%d", id, p.UserID, len(paths), failed)
	return nil
}

func apply(c *domain.Course, req CourseRequest) {
	c.Name = strings.TrimSpace(req.Name)
	c.Code = strings.TrimSpace(req.Code)
	c.Description = strings.TrimSpace(req.Description)
	c.Semester = strings.TrimSpace(req.Semester)
}

func ownerFilter(p domain.Principal) int64 {
	if p.IsAdmin() {
		return 0
	}
	return p.UserID
}
