package domain

import (
	"path/filepath"
	"strings"
	"time"
)

const (
	DefaultAllowedFileTypes = ".pdf,.docx"
	DefaultMaxFileSizeMB    = 5
)

type Assignment struct {
	ID               int64     `gorm:"column:id;primaryKey" json:"id"`
	Title            string    `gorm:"column:title;index;not null" json:"title"`
	Description      string    `gorm:"column:description" json:"description"`
	ClassID          int64     `gorm:"column:class_id;index;not null" json:"class_id"`
	CourseID         int64     `gorm:"column:course_id;index;not null" json:"course_id"`
	TeacherID        int64     `gorm:"column:teacher_id;index;not null" json:"teacher_id"`
	DueDate          time.Time `gorm:"column:due_date;not null" json:"due_date"`
	AllowedFileTypes string    `gorm:"column:allowed_file_types;default:'.pdf,.docx'" json:"allowed_file_types"`
	MaxFileSize      int       `gorm:"column:max_file_size;default:5" json:"max_file_size"`
	CreatedAt        time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt        time.Time `gorm:"column:updated_at" json:"updated_at"`

	Class  *Class  `gorm:"foreignKey:ClassID" json:"class,omitempty"`
	Course *Course `gorm:"foreignKey:CourseID" json:"course,omitempty"`
}

func (Assignment) TableName() string { return "assignments" }

// AllowedExtensions returns the allow-list lower-cased, each with a leading dot.
func (a *Assignment) AllowedExtensions() []string {
	raw := a.AllowedFileTypes
	if strings.TrimSpace(raw) == "" {
		raw = DefaultAllowedFileTypes
	}
	return ParseExtensions(raw)
}

// AllowsFilename checks the extension of name against the allow-list, ignoring case.
func (a *Assignment) AllowsFilename(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	if ext == "" {
		return false
	}
	for _, allowed := range a.AllowedExtensions() {
		if ext == allowed {
			return true
		}
	}
	return false
}

// MaxFileBytes is the per-file limit in bytes.
func (a *Assignment) MaxFileBytes() int64 {
	mb := a.MaxFileSize
	if mb <= 0 {
		mb = DefaultMaxFileSizeMB
	}
	return int64(mb) * 1024 * 1024
}

// IsClosed reports whether now is strictly after the due date.
func (a *Assignment) IsClosed(now time.Time) bool {
	return now.After(a.DueDate)
}

// ParseExtensions normalises a comma-separated extension list such as "PDF, .docx".
func ParseExtensions(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	seen := make(map[string]bool, len(parts))
	for _, p := range parts {
		p = strings.ToLower(strings.TrimSpace(p))
		if p == "" {
			continue
		}
		if !strings.HasPrefix(p, ".") {
			p = "." + p
		}
		if seen[p] {
			continue
		}
		seen[p] = true
		out = append(out, p)
	}
	return out
}
