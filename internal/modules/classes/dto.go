package classes

import (
	"time"

	"assignportal/internal/domain"
)

type ClassRequest struct {
	Name        string  `json:"name" validate:"required,max=120"`
	Description string  `json:"description" validate:"omitempty,max=2000"`
	CourseIDs   []int64 `json:"course_ids" validate:"omitempty,dive,gt=0"`
}

type EnrollRequest struct {
	StudentID int64 `json:"student_id" validate:"required,gt=0"`
}

type CourseRef struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type StudentRef struct {
	ID           int64  `json:"id"`
	Username     string `json:"username"`
	Organization string `json:"organization,omitempty"`
	IDNumber     string `json:"id_number,omitempty"`
}

type ClassResponse struct {
	ID           int64       `json:"id"`
	Name         string      `json:"name"`
	Description  string      `json:"description,omitempty"`
	TeacherID    int64       `json:"teacher_id"`
	StudentCount int         `json:"student_count"`
	Courses      []CourseRef `json:"courses"`
	CreatedAt    time.Time   `json:"created_at"`
}

type ClassDetailResponse struct {
	ClassResponse
	Students          []StudentRef `json:"students"`
	AvailableStudents []StudentRef `json:"available_students"`
}

// ImportResult summarises a CSV roster import. Line numbers are 1-based and count
// the header.
type ImportResult struct {
	Created  int        `json:"created"`
	Enrolled int        `json:"enrolled"`
	Skipped  int        `json:"skipped"`
	Errors   []RowError `json:"errors,omitempty"`
}

type RowError struct {
	Line     int    `json:"line"`
	Username string `json:"username,omitempty"`
	Reason   string `json:"reason"`
}

func courseRefs(courses []domain.Course) []CourseRef {
	out := make([]CourseRef, 0, len(courses))
	for _, c := range courses {
		out = append(out, CourseRef{ID: c.ID, Name: c.Name})
	}
	return out
}

func studentRefs(users []domain.User) []StudentRef {
	out := make([]StudentRef, 0, len(users))
	for _, u := range users {
		out = append(out, StudentRef{ID: u.ID, Username: u.Username, Organization: u.Organization, IDNumber: u.IDNumber})
	}
	return out
}

func ToClassResponse(c *domain.Class) ClassResponse {
	return ClassResponse{
		ID:           c.ID,
		Name:         c.Name,
		Description:  c.Description,
		TeacherID:    c.TeacherID,
		StudentCount: len(c.Students),
		Courses:      courseRefs(c.Courses),
		CreatedAt:    c.CreatedAt,
	}
}
