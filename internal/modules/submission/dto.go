package submission

import (
	"fmt"
	"time"

	"assignportal/internal/domain"
)

const EventSubmissionReceived = "submission.received"

// ReceivedEvent is pushed to the owning teacher after a successful upload.
type ReceivedEvent struct {
	Type         string    `json:"type"`
	SubmissionID int64     `json:"submission_id"`
	AssignmentID int64     `json:"assignment_id"`
	Assignment   string    `json:"assignment"`
	StudentID    int64     `json:"student_id"`
	Student      string    `json:"student"`
	Files        int       `json:"files"`
	At           time.Time `json:"at"`
}

type FileResponse struct {
	ID          int64     `json:"id"`
	Filename    string    `json:"filename"`
	Filesize    int64     `json:"filesize"`
	Filetype    string    `json:"filetype"`
	CreatedAt   time.Time `json:"created_at"`
	DownloadURL string    `json:"download_url"`
}

type SubmissionResponse struct {
	ID           int64          `json:"id"`
	AssignmentID int64          `json:"assignment_id"`
	StudentID    int64          `json:"student_id"`
	Student      string         `json:"student,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	Files        []FileResponse `json:"files"`
	DownloadURL  string         `json:"download_url"`
}

func ToSubmissionResponse(s *domain.Submission) SubmissionResponse {
	out := SubmissionResponse{
		ID:           s.ID,
		AssignmentID: s.AssignmentID,
		StudentID:    s.StudentID,
		CreatedAt:    s.CreatedAt,
		UpdatedAt:    s.UpdatedAt,
		Files:        make([]FileResponse, 0, len(s.Files)),
		DownloadURL:  fmt.Sprintf("/api/v1/submissions/%d/download", s.ID),
	}
	if s.Student != nil {
		out.Student = s.Student.Username
	}
	for _, f := range s.Files {
		out.Files = append(out.Files, FileResponse{
			ID:          f.ID,
			Filename:    f.Filename,
			Filesize:    f.Filesize,
			Filetype:    f.Filetype,
			CreatedAt:   f.CreatedAt,
			DownloadURL: fmt.Sprintf("/api/v1/files/%d/download", f.ID),
		})
	}
	return out
}

type AssignmentSubmissionsResponse struct {
	AssignmentID int64                `json:"assignment_id"`
	Title        string               `json:"title"`
	DueDate      time.Time            `json:"due_date"`
	Submissions  []SubmissionResponse `json:"submissions"`
	DownloadURL  string               `json:"download_url"`
}
