package dashboard

import (
	"context"
	"fmt"

	"assignportal/internal/domain"
	"assignportal/internal/modules/assignment"
	"assignportal/internal/repository"
)

// RecentLimit is how many recent users, assignments or submissions are shown.
const RecentLimit = 5

type StatsReader interface {
	Admin(ctx context.Context) (*repository.AdminCounts, error)
	Teacher(ctx context.Context, teacherID int64) (*repository.TeacherCounts, error)
	Student(ctx context.Context, studentID int64) (*repository.StudentCounts, error)
}

type UserLister interface {
	ListRecent(ctx context.Context, limit int) ([]domain.User, error)
}

type SubmissionLister interface {
	ListRecentForTeacher(ctx context.Context, teacherID int64, limit int) ([]domain.Submission, error)
}

type AssignmentLister interface {
	List(ctx context.Context, p domain.Principal) ([]assignment.Summary, error)
	MyAssignments(ctx context.Context, p domain.Principal) (pending, completed []assignment.Summary, err error)
}

type Service struct {
	stats       StatsReader
	users       UserLister
	submissions SubmissionLister
	assignments AssignmentLister
}

func NewService(stats StatsReader, users UserLister, submissions SubmissionLister, assignments AssignmentLister) *Service {
	return &Service{stats: stats, users: users, submissions: submissions, assignments: assignments}
}

type AdminView struct {
	Counts      repository.AdminCounts
	RecentUsers []domain.User
	Submissions []domain.Submission
}

type TeacherView struct {
	Counts            repository.TeacherCounts
	RecentAssignments []assignment.Summary
	Submissions       []domain.Submission
}

type StudentView struct {
	Counts    repository.StudentCounts
	Pending   []assignment.Summary
	Completed int
}

// View holds exactly one of the role views.
type View struct {
	Role    domain.UserRole
	Admin   *AdminView
	Teacher *TeacherView
	Student *StudentView
}

func (s *Service) Get(ctx context.Context, p domain.Principal) (*View, error) {
	switch p.Role {
	case domain.RoleAdmin:
		v, err := s.admin(ctx)
		return &View{Role: p.Role, Admin: v}, err
	case domain.RoleTeacher:
		v, err := s.teacher(ctx, p)
		return &View{Role: p.Role, Teacher: v}, err
	case domain.RoleStudent:
		v, err := s.student(ctx, p)
		return &View{Role: p.Role, Student: v}, err
	}
	return nil, fmt.Errorf("dashboard: unknown role %q", p.Role)
}

func (s *Service) admin(ctx context.Context) (*AdminView, error) {
	counts, err := s.stats.Admin(ctx)
	if err != nil {
		return nil, err
	}
	users, err := s.users.ListRecent(ctx, RecentLimit)
	if err != nil {
		return nil, err
	}
	subs, err := s.submissions.ListRecentForTeacher(ctx, 0, RecentLimit)
	if err != nil {
		return nil, err
	}
	return &AdminView{Counts: *counts, RecentUsers: users, Submissions: subs}, nil
}

func (s *Service) teacher(ctx context.Context, p domain.Principal) (*TeacherView, error) {
	counts, err := s.stats.Teacher(ctx, p.UserID)
	if err != nil {
		return nil, err
	}
	list, err := s.assignments.List(ctx, p)
	if err != nil {
		return nil, err
	}
	if len(list) > RecentLimit {
		list = list[:RecentLimit]
	}
	subs, err := s.submissions.ListRecentForTeacher(ctx, p.UserID, RecentLimit)
	if err != nil {
		return nil, err
	}
	return &TeacherView{Counts: *counts, RecentAssignments: list, Submissions: subs}, nil
}

func (s *Service) student(ctx context.Context, p domain.Principal) (*StudentView, error) {
	counts, err := s.stats.Student(ctx, p.UserID)
	if err != nil {
		return nil, err
	}
	pending, completed, err := s.assignments.MyAssignments(ctx, p)
	if err != nil {
		return nil, err
	}
	return &StudentView{Counts: *counts, Pending: pending, Completed: len(completed)}, nil
}
