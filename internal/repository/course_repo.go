package repository

import (
	"context"

	"assignportal/internal/domain"

	"gorm.io/gorm"
)

type CourseRepository struct {
	db *gorm.DB
}

func NewCourseRepository(db *gorm.DB) *CourseRepository {
	return &CourseRepository{db: db}
}

func (r *CourseRepository) Create(ctx context.Context, c *domain.Course) error {
	return r.db.WithContext(ctx).Omit("Classes").Create(c).Error
}

func (r *CourseRepository) Update(ctx context.Context, c *domain.Course) error {
	return r.db.WithContext(ctx).Model(c).Omit("Classes").Updates(map[string]any{
		"name":        c.Name,
		"code":        c.Code,
		"description": c.Description,
		"semester":    c.Semester,
	}).Error
}

func (r *CourseRepository) GetByID(ctx context.Context, id int64) (*domain.Course, error) {
	var c domain.Course
	if err := r.db.WithContext(ctx).Preload("Classes").First(&c, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &c, nil
}

// ListByTeacher lists courses owned by teacherID; teacherID 0 lists all.
func (r *CourseRepository) ListByTeacher(ctx context.Context, teacherID int64) ([]domain.Course, error) {
	var courses []domain.Course
	q := r.db.WithContext(ctx).Preload("Classes").Order("created_at DESC")
	if teacherID != 0 {
		q = q.Where("teacher_id = ?", teacherID)
	}
	err := q.Find(&courses).Error
	return courses, err
}

// FilterOwned returns the subset of ids that exist and belong to teacherID
// (teacherID 0 accepts any owner).
func (r *CourseRepository) FilterOwned(ctx context.Context, teacherID int64, ids []int64) ([]int64, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var owned []int64
	q := r.db.WithContext(ctx).Model(&domain.Course{}).Where("id IN ?", ids)
	if teacherID != 0 {
		q = q.Where("teacher_id = ?", teacherID)
	}
	err := q.Pluck("id", &owned).Error
	return owned, err
}

// Delete removes the course, its class links and every assignment under it together
// with their submissions. It returns the storage paths to remove.
func (r *CourseRepository) Delete(ctx context.Context, id int64) ([]string, error) {
	var paths []string
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ids, err := assignmentIDsWhere(tx, "course_id = ?", id)
		if err != nil {
			return err
		}
		if paths, err = purgeAssignmentsTx(tx, ids); err != nil {
			return err
		}
		if err := tx.Exec("DELETE FROM course_classes WHERE course_id = ?", id).Error; err != nil {
			return err
		}
		res := tx.Delete(&domain.Course{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return paths, nil
}
