package repository

import (
	"context"

	"assignportal/internal/domain"

	"gorm.io/gorm"
)

type AdminCounts struct {
	Users   int64
	Classes int64
	Courses int64
	Uploads int64
}

type TeacherCounts struct {
	Classes     int64
	Courses     int64
	Assignments int64
	Submissions int64
}

type StudentCounts struct {
	Classes int64
	Uploads int64
}

// StatsRepository answers the aggregate queries behind the dashboard.
type StatsRepository struct {
	db *gorm.DB
}

func NewStatsRepository(db *gorm.DB) *StatsRepository {
	return &StatsRepository{db: db}
}

func (r *StatsRepository) Admin(ctx context.Context) (*AdminCounts, error) {
	var out AdminCounts
	db := r.db.WithContext(ctx)
	for _, q := range []struct {
		model any
		dst   *int64
	}{
		{&domain.User{}, &out.Users},
		{&domain.Class{}, &out.Classes},
		{&domain.Course{}, &out.Courses},
		{&domain.StoredFile{}, &out.Uploads},
	} {
		if err := db.Model(q.model).Count(q.dst).Error; err != nil {
			return nil, err
		}
	}
	return &out, nil
}

func (r *StatsRepository) Teacher(ctx context.Context, teacherID int64) (*TeacherCounts, error) {
	var out TeacherCounts
	db := r.db.WithContext(ctx)
	for _, q := range []struct {
		model any
		dst   *int64
	}{
		{&domain.Class{}, &out.Classes},
		{&domain.Course{}, &out.Courses},
		{&domain.Assignment{}, &out.Assignments},
	} {
		if err := db.Model(q.model).Where("teacher_id = ?", teacherID).Count(q.dst).Error; err != nil {
			return nil, err
		}
	}
	owned := db.Model(&domain.Assignment{}).Select("id").Where("teacher_id = ?", teacherID)
	if err := db.Model(&domain.Submission{}).Where("assignment_id IN (?)", owned).Count(&out.Submissions).Error; err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *StatsRepository) Student(ctx context.Context, studentID int64) (*StudentCounts, error) {
	var out StudentCounts
	db := r.db.WithContext(ctx)
	if err := db.Table("class_students").Where("user_id = ?", studentID).Count(&out.Classes).Error; err != nil {
		return nil, err
	}
	err := db.Model(&domain.StoredFile{}).
		Joins("JOIN submissions ON submissions.id = files.submission_id").
		Where("submissions.student_id = ?", studentID).
		Count(&out.Uploads).Error
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// AssignmentProgress is the submitted / enrolled count of one assignment.
type AssignmentProgress struct {
	AssignmentID  int64
	Submissions   int64
	TotalStudents int64
}

// Progress returns submission and enrolment counts for each assignment id.
func (r *StatsRepository) Progress(ctx context.Context, assignments []domain.Assignment) (map[int64]AssignmentProgress, error) {
	out := make(map[int64]AssignmentProgress, len(assignments))
	if len(assignments) == 0 {
		return out, nil
	}
	db := r.db.WithContext(ctx)

	ids := make([]int64, 0, len(assignments))
	classIDs := make([]int64, 0, len(assignments))
	for _, a := range assignments {
		ids = append(ids, a.ID)
		classIDs = append(classIDs, a.ClassID)
	}

	var subRows []struct {
		AssignmentID int64
		N            int64
	}
	if err := db.Model(&domain.Submission{}).
		Select("assignment_id, COUNT(*) AS n").
		Where("assignment_id IN ?", ids).
		Group("assignment_id").
		Scan(&subRows).Error; err != nil {
		return nil, err
	}
	var classRows []struct {
		ClassID int64
		N       int64
	}
	if err := db.Table("class_students").
		Select("class_id, COUNT(*) AS n").
		Where("class_id IN ?", classIDs).
		Group("class_id").
		Scan(&classRows).Error; err != nil {
		return nil, err
	}

	subs := make(map[int64]int64, len(subRows))
	for _, row := range subRows {
		subs[row.AssignmentID] = row.N
	}
	enrolled := make(map[int64]int64, len(classRows))
	for _, row := range classRows {
		enrolled[row.ClassID] = row.N
	}
	for _, a := range assignments {
		out[a.ID] = AssignmentProgress{
			AssignmentID:  a.ID,
			Submissions:   subs[a.ID],
			TotalStudents: enrolled[a.ClassID],
		}
	}
	return out, nil
}
