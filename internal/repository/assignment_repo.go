package repository

import (
	"context"
	"time"

	"assignportal/internal/domain"

	"gorm.io/gorm"
)

type AssignmentRepository struct {
	db *gorm.DB
}

func NewAssignmentRepository(db *gorm.DB) *AssignmentRepository {
	return &AssignmentRepository{db: db}
}

func (r *AssignmentRepository) Create(ctx context.Context, a *domain.Assignment) error {
	return r.db.WithContext(ctx).Omit("Class", "Course").Create(a).Error
}

func (r *AssignmentRepository) Update(ctx context.Context, a *domain.Assignment) error {
	return r.db.WithContext(ctx).Model(a).Omit("Class", "Course").Updates(map[string]any{
		"title":              a.Title,
		"description":        a.Description,
		"class_id":           a.ClassID,
		"course_id":          a.CourseID,
		"due_date":           a.DueDate,
		"allowed_file_types": a.AllowedFileTypes,
		"max_file_size":      a.MaxFileSize,
	}).Error
}

func (r *AssignmentRepository) GetByID(ctx context.Context, id int64) (*domain.Assignment, error) {
	var a domain.Assignment
	if err := r.db.WithContext(ctx).Preload("Class").Preload("Course").First(&a, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &a, nil
}

// ListByTeacher lists assignments owned by teacherID; teacherID 0 lists all.
func (r *AssignmentRepository) ListByTeacher(ctx context.Context, teacherID int64) ([]domain.Assignment, error) {
	var list []domain.Assignment
	q := r.db.WithContext(ctx).Preload("Class").Preload("Course").Order("due_date DESC")
	if teacherID != 0 {
		q = q.Where("teacher_id = ?", teacherID)
	}
	err := q.Find(&list).Error
	return list, err
}

// ListForStudent lists assignments of every class the student is enrolled in.
func (r *AssignmentRepository) ListForStudent(ctx context.Context, studentID int64) ([]domain.Assignment, error) {
	var list []domain.Assignment
	enrolled := r.db.Table("class_students").Select("class_id").Where("user_id = ?", studentID)
	err := r.db.WithContext(ctx).
		Preload("Class").Preload("Course").
		Where("class_id IN (?)", enrolled).
		Order("due_date ASC").
		Find(&list).Error
	return list, err
}

func (r *AssignmentRepository) CountOpenByTeacher(ctx context.Context, teacherID int64, now time.Time) (int64, error) {
	var n int64
	q := r.db.WithContext(ctx).Model(&domain.Assignment{}).Where("due_date >= ?", now)
	if teacherID != 0 {
		q = q.Where("teacher_id = ?", teacherID)
	}
	err := q.Count(&n).Error
	return n, err
}

// Delete removes the assignment together with its submissions and file rows. It
// returns the storage paths to remove.
func (r *AssignmentRepository) Delete(ctx context.Context, id int64) ([]string, error) {
	var paths []string
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var a domain.Assignment
		if err := tx.Select("id").First(&a, id).Error; err != nil {
			return notFound(err)
		}
		var err error
		paths, err = purgeAssignmentsTx(tx, []int64{id})
		return err
	})
	if err != nil {
		return nil, err
	}
	return paths, nil
}
