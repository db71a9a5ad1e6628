package repository

import (
	"assignportal/internal/domain"

	"gorm.io/gorm"
)

// The helpers below run inside a caller's transaction and return the relative storage
// paths of every deleted file row. Callers remove those objects after commit.

func purgeAssignmentsTx(tx *gorm.DB, assignmentIDs []int64) ([]string, error) {
	if len(assignmentIDs) == 0 {
		return nil, nil
	}
	var submissionIDs []int64
	if err := tx.Model(&domain.Submission{}).Where("assignment_id IN ?", assignmentIDs).Pluck("id", &submissionIDs).Error; err != nil {
		return nil, err
	}
	paths, err := purgeSubmissionsTx(tx, submissionIDs)
	if err != nil {
		return nil, err
	}
	if err := tx.Where("id IN ?", assignmentIDs).Delete(&domain.Assignment{}).Error; err != nil {
		return nil, err
	}
	return paths, nil
}

func purgeStudentSubmissionsTx(tx *gorm.DB, studentID int64) ([]string, error) {
	var submissionIDs []int64
	if err := tx.Model(&domain.Submission{}).Where("student_id = ?", studentID).Pluck("id", &submissionIDs).Error; err != nil {
		return nil, err
	}
	return purgeSubmissionsTx(tx, submissionIDs)
}

func purgeSubmissionsTx(tx *gorm.DB, submissionIDs []int64) ([]string, error) {
	if len(submissionIDs) == 0 {
		return nil, nil
	}
	var paths []string
	if err := tx.Model(&domain.StoredFile{}).Where("submission_id IN ?", submissionIDs).Pluck("filepath", &paths).Error; err != nil {
		return nil, err
	}
	if err := tx.Where("submission_id IN ?", submissionIDs).Delete(&domain.StoredFile{}).Error; err != nil {
		return nil, err
	}
	if err := tx.Where("id IN ?", submissionIDs).Delete(&domain.Submission{}).Error; err != nil {
		return nil, err
	}
	return paths, nil
}

func assignmentIDsWhere(tx *gorm.DB, query string, args ...any) ([]int64, error) {
	var ids []int64
	err := tx.Model(&domain.Assignment{}).Where(query, args...).Pluck("id", &ids).Error
	return ids, err
}
