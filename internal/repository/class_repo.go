package repository

import (
	"context"

	"assignportal/internal/domain"

	"gorm.io/gorm"
)

type ClassRepository struct {
	db *gorm.DB
}

func NewClassRepository(db *gorm.DB) *ClassRepository {
	return &ClassRepository{db: db}
}

// Create inserts the class and links the given courses in one transaction.
func (r *ClassRepository) Create(ctx context.Context, c *domain.Class, courseIDs []int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Students", "Courses").Create(c).Error; err != nil {
			return err
		}
		return replaceCourses(tx, c, courseIDs)
	})
}

func (r *ClassRepository) Update(ctx context.Context, c *domain.Class, courseIDs []int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(c).Omit("Students", "Courses").Updates(map[string]any{
			"name":        c.Name,
			"description": c.Description,
		}).Error; err != nil {
			return err
		}
		return replaceCourses(tx, c, courseIDs)
	})
}

func replaceCourses(tx *gorm.DB, c *domain.Class, courseIDs []int64) error {
	var courses []domain.Course
	if len(courseIDs) > 0 {
		if err := tx.Where("id IN ?", courseIDs).Find(&courses).Error; err != nil {
			return err
		}
	}
	if err := tx.Model(c).Association("Courses").Replace(courses); err != nil {
		return err
	}
	c.Courses = courses
	return nil
}

func (r *ClassRepository) GetByID(ctx context.Context, id int64) (*domain.Class, error) {
	var c domain.Class
	err := r.db.WithContext(ctx).
		Preload("Students", func(db *gorm.DB) *gorm.DB { return db.Order("username") }).
		Preload("Courses").
		First(&c, id).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &c, nil
}

// ListByTeacher lists classes owned by teacherID; teacherID 0 lists all.
func (r *ClassRepository) ListByTeacher(ctx context.Context, teacherID int64) ([]domain.Class, error) {
	var classes []domain.Class
	q := r.db.WithContext(ctx).Preload("Students").Preload("Courses").Order("created_at DESC")
	if teacherID != 0 {
		q = q.Where("teacher_id = ?", teacherID)
	}
	err := q.Find(&classes).Error
	return classes, err
}

func (r *ClassRepository) ListForStudent(ctx context.Context, studentID int64) ([]domain.Class, error) {
	var classes []domain.Class
	err := r.db.WithContext(ctx).
		Joins("JOIN class_students ON class_students.class_id = classes.id").
		Where("class_students.user_id = ?", studentID).
		Find(&classes).Error
	return classes, err
}

func (r *ClassRepository) IsStudentEnrolled(ctx context.Context, classID, studentID int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Table("class_students").
		Where("class_id = ? AND user_id = ?", classID, studentID).
		Count(&count).Error
	return count > 0, err
}

func (r *ClassRepository) AddStudent(ctx context.Context, classID, studentID int64) error {
	return r.db.WithContext(ctx).Exec(
		"INSERT INTO class_students (class_id, user_id) VALUES (?, ?)", classID, studentID,
	).Error
}

func (r *ClassRepository) RemoveStudent(ctx context.Context, classID, studentID int64) error {
	return r.db.WithContext(ctx).Exec(
		"DELETE FROM class_students WHERE class_id = ? AND user_id = ?", classID, studentID,
	).Error
}

func (r *ClassRepository) CountStudents(ctx context.Context, classID int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Table("class_students").Where("class_id = ?", classID).Count(&count).Error
	return count, err
}

func (r *ClassRepository) HasCourse(ctx context.Context, classID, courseID int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Table("course_classes").
		Where("class_id = ? AND course_id = ?", classID, courseID).
		Count(&count).Error
	return count > 0, err
}

func (r *ClassRepository) ListCourses(ctx context.Context, classID int64) ([]domain.Course, error) {
	var courses []domain.Course
	err := r.db.WithContext(ctx).
		Joins("JOIN course_classes ON course_classes.course_id = courses.id").
		Where("course_classes.class_id = ?", classID).
		Order("courses.name").
		Find(&courses).Error
	return courses, err
}

// Delete removes the class, its enrolments and course links, and every assignment in
// it together with their submissions. It returns the storage paths to remove.
func (r *ClassRepository) Delete(ctx context.Context, id int64) ([]string, error) {
	var paths []string
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ids, err := assignmentIDsWhere(tx, "class_id = ?", id)
		if err != nil {
			return err
		}
		if paths, err = purgeAssignmentsTx(tx, ids); err != nil {
			return err
		}
		if err := tx.Exec("DELETE FROM class_students WHERE class_id = ?", id).Error; err != nil {
			return err
		}
		if err := tx.Exec("DELETE FROM course_classes WHERE class_id = ?", id).Error; err != nil {
			return err
		}
		res := tx.Delete(&domain.Class{}, id)
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
