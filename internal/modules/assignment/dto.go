package assignment

import (
	"fmt"
	"time"

	"assignportal/internal/domain"
	"assignportal/internal/modules/submission"
)

const (
	StatusPending   = "pending"
	StatusSubmitted = "submitted"
)

// AssignmentRequest carries the due date as text: RFC 3339 or a local
// "2006-01-02T15:04" as sent by a datetime-local input.
type AssignmentRequest struct {
	Title            string `json:"title" validate:"required,max=200"`
	Description      string `json:"description" validate:"omitempty,max=5000"`
	ClassID          int64  `json:"class_id" validate:"required,gt=0"`
	CourseID         int64  `json:"course_id" validate:"required,gt=0"`
	DueDate          string `json:"due_date" validate:"required"`
	AllowedFileTypes string `json:"allowed_file_types" validate:"omitempty,max=200"`
	MaxFileSize      int    `json:"max_file_size" validate:"omitempty,gte=1,lte=100"`
}

type AssignmentResponse struct {
	ID               int64     `json:"id"`
	Title            string    `json:"title"`
	Description      string    `json:"description,omitempty"`
	ClassID          int64     `json:"class_id"`
	ClassName        string    `json:"class_name,omitempty"`
	CourseID         int64     `json:"course_id"`
	CourseName       string    `json:"course_name,omitempty"`
	TeacherID        int64     `json:"teacher_id"`
	DueDate          time.Time `json:"due_date"`
	AllowedFileTypes []string  `json:"allowed_file_types"`
	MaxFileSizeMB    int       `json:"max_file_size"`
	Closed           bool      `json:"closed"`
	Status           string    `json:"status,omitempty"`
	Submissions      *int64    `json:"submission_count,omitempty"`
	TotalStudents    *int64    `json:"total_students,omitempty"`
	UploadURL        string    `json:"upload_url,omitempty"`
}

type DetailResponse struct {
	AssignmentResponse
	Submissions  []submission.SubmissionResponse `json:"submissions,omitempty"`
	MySubmission *submission.SubmissionResponse  `json:"my_submission,omitempty"`
	DownloadURL  string                          `json:"download_url,omitempty"`
}

type MyAssignmentsResponse struct {
	Pending   []AssignmentResponse `json:"pending"`
	Completed []AssignmentResponse `json:"completed"`
}

func toResponse(a *domain.Assignment, now time.Time) AssignmentResponse {
	out := AssignmentResponse{
		ID:               a.ID,
		Title:            a.Title,
		Description:      a.Description,
		ClassID:          a.ClassID,
		CourseID:         a.CourseID,
		TeacherID:        a.TeacherID,
		DueDate:          a.DueDate,
		AllowedFileTypes: a.AllowedExtensions(),
		MaxFileSizeMB:    a.MaxFileSize,
		Closed:           a.IsClosed(now),
	}
	if a.Class != nil {
		out.ClassName = a.Class.Name
	}
	if a.Course != nil {
		out.CourseName = a.Course.Name
	}
	return out
}

// ToSummaryResponse renders a listed assignment for the JSON API.
func ToSummaryResponse(s Summary, now time.Time) AssignmentResponse {
	out := toResponse(&s.Assignment, now)
	out.Status = s.Status
	if s.Progress != nil {
		out.Submissions = &s.Progress.Submissions
		out.TotalStudents = &s.Progress.TotalStudents
	}
	if s.Status != "" {
		out.UploadURL = fmt.Sprintf("/api/v1/assignments/%d/upload", s.Assignment.ID)
	}
	return out
}

func toDetail(d *Detail, now time.Time) DetailResponse {
	out := DetailResponse{AssignmentResponse: ToSummaryResponse(d.Summary, now)}
	if d.MySubmission != nil {
		r := submission.ToSubmissionResponse(d.MySubmission)
		out.MySubmission = &r
	}
	if d.Submissions != nil {
		out.Submissions = make([]submission.SubmissionResponse, 0, len(d.Submissions))
		for i := range d.Submissions {
			out.Submissions = append(out.Submissions, submission.ToSubmissionResponse(&d.Submissions[i]))
		}
		out.DownloadURL = fmt.Sprintf("/api/v1/assignments/%d/download", d.Assignment.ID)
	}
	return out
}
