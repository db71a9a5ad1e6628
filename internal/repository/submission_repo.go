package repository

import (
	"context"
	"errors"
	"time"

	"assignportal/internal/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SubmissionRepository struct {
	db *gorm.DB
}

func NewSubmissionRepository(db *gorm.DB) *SubmissionRepository {
	return &SubmissionRepository{db: db}
}

// ReplaceFiles makes files the complete file set of the (assignment, student)
// submission, creating the submission on first use. The previous file rows are
// deleted and their storage paths returned for removal after commit.
func (r *SubmissionRepository) ReplaceFiles(ctx context.Context, assignmentID, studentID int64, files []domain.StoredFile, now time.Time) (*domain.Submission, []string, error) {
	sub, old, err := r.replaceFiles(ctx, assignmentID, studentID, files, now)
	if isUniqueViolation(err) {
		// A concurrent first submission won the insert; the row exists now.
		sub, old, err = r.replaceFiles(ctx, assignmentID, studentID, files, now)
	}
	return sub, old, err
}

func (r *SubmissionRepository) replaceFiles(ctx context.Context, assignmentID, studentID int64, files []domain.StoredFile, now time.Time) (*domain.Submission, []string, error) {
	var (
		sub      domain.Submission
		oldPaths []string
	)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("assignment_id = ? AND student_id = ?", assignmentID, studentID).
			First(&sub).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			sub = domain.Submission{
				AssignmentID: assignmentID,
				StudentID:    studentID,
				CreatedAt:    now,
				UpdatedAt:    now,
			}
			if err := tx.Create(&sub).Error; err != nil {
				return err
			}
		case err != nil:
			return err
		default:
			if err := tx.Model(&domain.StoredFile{}).Where("submission_id = ?", sub.ID).Pluck("filepath", &oldPaths).Error; err != nil {
				return err
			}
			if err := tx.Where("submission_id = ?", sub.ID).Delete(&domain.StoredFile{}).Error; err != nil {
				return err
			}
			if err := tx.Model(&sub).UpdateColumn("updated_at", now).Error; err != nil {
				return err
			}
			sub.UpdatedAt = now
		}

		rows := make([]domain.StoredFile, len(files))
		for i, f := range files {
			f.ID = 0
			f.SubmissionID = sub.ID
			if f.CreatedAt.IsZero() {
				f.CreatedAt = now
			}
			rows[i] = f
		}
		if len(rows) > 0 {
			if err := tx.Create(&rows).Error; err != nil {
				return err
			}
		}
		sub.Files = rows
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return &sub, oldPaths, nil
}

func (r *SubmissionRepository) GetByID(ctx context.Context, id int64) (*domain.Submission, error) {
	var s domain.Submission
	err := r.db.WithContext(ctx).
		Preload("Student").
		Preload("Assignment").
		Preload("Files", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		First(&s, id).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &s, nil
}

func (r *SubmissionRepository) GetByAssignmentAndStudent(ctx context.Context, assignmentID, studentID int64) (*domain.Submission, error) {
	var s domain.Submission
	err := r.db.WithContext(ctx).
		Preload("Files", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		Where("assignment_id = ? AND student_id = ?", assignmentID, studentID).
		First(&s).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &s, nil
}

// ListByAssignment returns every submission of the assignment with student and files,
// ordered by student username.
func (r *SubmissionRepository) ListByAssignment(ctx context.Context, assignmentID int64) ([]domain.Submission, error) {
	var list []domain.Submission
	err := r.db.WithContext(ctx).
		Joins("Student").
		Preload("Files", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		Where("submissions.assignment_id = ?", assignmentID).
		Order(clause.OrderByColumn{Column: clause.Column{Table: "Student", Name: "username"}}).
		Find(&list).Error
	return list, err
}

func (r *SubmissionRepository) CountByAssignment(ctx context.Context, assignmentID int64) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&domain.Submission{}).Where("assignment_id = ?", assignmentID).Count(&n).Error
	return n, err
}

func (r *SubmissionRepository) CountByStudent(ctx context.Context, studentID int64) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&domain.Submission{}).Where("student_id = ?", studentID).Count(&n).Error
	return n, err
}

// ListRecentForTeacher returns the latest submissions to assignments owned by
// teacherID; teacherID 0 covers every assignment.
func (r *SubmissionRepository) ListRecentForTeacher(ctx context.Context, teacherID int64, limit int) ([]domain.Submission, error) {
	var list []domain.Submission
	q := r.db.WithContext(ctx).
		Joins("Student").
		Joins("Assignment").
		Order("submissions.updated_at DESC").
		Limit(limit)
	if teacherID != 0 {
		q = q.Where(`"Assignment"."teacher_id" = ?`, teacherID)
	}
	err := q.Find(&list).Error
	return list, err
}

// GetFile loads a stored file with its submission and assignment for authorization.
func (r *SubmissionRepository) GetFile(ctx context.Context, fileID int64) (*domain.StoredFile, error) {
	var f domain.StoredFile
	err := r.db.WithContext(ctx).
		Preload("Submission.Assignment").
		First(&f, fileID).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &f, nil
}

// AllFilePaths returns every storage path referenced by a file row.
func (r *SubmissionRepository) AllFilePaths(ctx context.Context) ([]string, error) {
	var paths []string
	err := r.db.WithContext(ctx).Model(&domain.StoredFile{}).Pluck("filepath", &paths).Error
	return paths, err
}

// SubmittedAssignmentIDs lists the assignments the student has a submission for.
func (r *SubmissionRepository) SubmittedAssignmentIDs(ctx context.Context, studentID int64) ([]int64, error) {
	var ids []int64
	err := r.db.WithContext(ctx).Model(&domain.Submission{}).Where("student_id = ?", studentID).Pluck("assignment_id", &ids).Error
	return ids, err
}
