package course

import (
	"time"

	"assignportal/internal/domain"
)

type CourseRequest struct {
	Name        string `json:"name" validate:"required,max=120"`
	Code        string `json:"code" validate:"omitempty,max=32"`
	Description string `json:"description" validate:"omitempty,max=2000"`
	Semester    string `json:"semester" validate:"omitempty,max=32"`
}

type ClassRef struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type CourseResponse struct {
	ID          int64      `json:"id"`
	Name        string     `json:"name"`
	Code        string     `json:"code"`
	Description string     `json:"description,omitempty"`
	Semester    string     `json:"semester"`
	TeacherID   int64      `json:"teacher_id"`
	Classes     []ClassRef `json:"classes"`
	CreatedAt   time.Time  `json:"created_at"`
}

func ToCourseResponse(c *domain.Course) CourseResponse {
	refs := make([]ClassRef, 0, len(c.Classes))
	for _, cl := range c.Classes {
		refs = append(refs, ClassRef{ID: cl.ID, Name: cl.Name})
	}
	return CourseResponse{
		ID:          c.ID,
		Name:        c.Name,
		Code:        c.Code,
		Description: c.Description,
		Semester:    c.Semester,
		TeacherID:   c.TeacherID,
		Classes:     refs,
		CreatedAt:   c.CreatedAt,
	}
}
