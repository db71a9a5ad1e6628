package domain

import "time"

type Submission struct {
	ID           int64     `gorm:"column:id;primaryKey" json:"id"`
	StudentID    int64     `gorm:"column:student_id;not null;uniqueIndex:idx_submission_assignment_student,priority:2" json:"student_id"`
	AssignmentID int64     `gorm:"column:assignment_id;not null;uniqueIndex:idx_submission_assignment_student,priority:1" json:"assignment_id"`
	CreatedAt    time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt    time.Time `gorm:"column:updated_at" json:"updated_at"`

	Student    *User        `gorm:"foreignKey:StudentID" json:"student,omitempty"`
	Assignment *Assignment  `gorm:"foreignKey:AssignmentID" json:"assignment,omitempty"`
	Files      []StoredFile `gorm:"foreignKey:SubmissionID" json:"files,omitempty"`
}

func (Submission) TableName() string { return "submissions" }

// StoredFile is one uploaded object. Filepath is relative to the upload root and
// never derived from the client-supplied Filename.
type StoredFile struct {
	ID           int64     `gorm:"column:id;primaryKey" json:"id"`
	Filename     string    `gorm:"column:filename;not null" json:"filename"`
	Filepath     string    `gorm:"column:filepath;not null" json:"-"`
	Filesize     int64     `gorm:"column:filesize" json:"filesize"`
	Filetype     string    `gorm:"column:filetype" json:"filetype"`
	SubmissionID int64     `gorm:"column:submission_id;index;not null" json:"submission_id"`
	CreatedAt    time.Time `gorm:"column:created_at" json:"created_at"`

	Submission *Submission `gorm:"foreignKey:SubmissionID" json:"-"`
}

func (StoredFile) TableName() string { return "files" }
