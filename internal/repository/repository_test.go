package repository

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"assignportal/internal/database"
	"assignportal/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := database.Connect(fmt.Sprintf("file:repo_%s?mode=memory&cache=shared", name))
	require.NoError(t, err)
	db.Logger = logger.Default.LogMode(logger.Silent)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, database.Migrate(db))
	return db
}

type fixture struct {
	teacher    domain.User
	student    domain.User
	class      domain.Class
	course     domain.Course
	assignment domain.Assignment
}

func seedFixture(t *testing.T, db *gorm.DB) fixture {
	t.Helper()
	ctx := context.Background()
	var f fixture
	users := NewUserRepository(db)
	f.teacher = domain.User{Username: "teacher1", PasswordHash: "x", Role: domain.RoleTeacher}
	f.student = domain.User{Username: "student1", PasswordHash: "x", Role: domain.RoleStudent}
	require.NoError(t, users.Create(ctx, &f.teacher))
	require.NoError(t, users.Create(ctx, &f.student))

	f.course = domain.Course{Name: "Algorithms", TeacherID: f.teacher.ID}
	require.NoError(t, NewCourseRepository(db).Create(ctx, &f.course))

	classes := NewClassRepository(db)
	f.class = domain.Class{Name: "CS-1", TeacherID: f.teacher.ID}
	require.NoError(t, classes.Create(ctx, &f.class, []int64{f.course.ID}))
	require.NoError(t, classes.AddStudent(ctx, f.class.ID, f.student.ID))

	f.assignment = domain.Assignment{
		Title:     "Lab 1",
		ClassID:   f.class.ID,
		CourseID:  f.course.ID,
		TeacherID: f.teacher.ID,
		DueDate:   time.Now().Add(24 * time.Hour),
	}
	require.NoError(t, NewAssignmentRepository(db).Create(ctx, &f.assignment))
	return f
}

func storedFiles(names ...string) []domain.StoredFile {
	out := make([]domain.StoredFile, len(names))
	for i, n := range names {
		out[i] = domain.StoredFile{Filename: n, Filepath: "student_1/" + n, Filesize: 10, Filetype: "application/pdf"}
	}
	return out
}

func TestUserRepository_CreateDuplicate(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &domain.User{Username: "alice", PasswordHash: "x", Role: domain.RoleStudent}))
	err := repo.Create(ctx, &domain.User{Username: "alice", PasswordHash: "y", Role: domain.RoleStudent})
	assert.ErrorIs(t, err, ErrAlreadyExists)

	_, err = repo.GetByUsername(ctx, "nobody")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestClassRepository_Enrollment(t *testing.T) {
	db := setupTestDB(t)
	f := seedFixture(t, db)
	repo := NewClassRepository(db)
	ctx := context.Background()

	ok, err := repo.IsStudentEnrolled(ctx, f.class.ID, f.student.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.HasCourse(ctx, f.class.ID, f.course.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	outside, err := NewUserRepository(db).ListStudentsOutsideClass(ctx, f.class.ID)
	require.NoError(t, err)
	assert.Empty(t, outside)

	require.NoError(t, repo.RemoveStudent(ctx, f.class.ID, f.student.ID))
	ok, err = repo.IsStudentEnrolled(ctx, f.class.ID, f.student.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSubmissionRepository_ReplaceFiles(t *testing.T) {
	db := setupTestDB(t)
	f := seedFixture(t, db)
	repo := NewSubmissionRepository(db)
	ctx := context.Background()
	t0 := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	sub, old, err := repo.ReplaceFiles(ctx, f.assignment.ID, f.student.ID, storedFiles("a.pdf", "b.pdf"), t0)
	require.NoError(t, err)
	assert.Empty(t, old)
	assert.Len(t, sub.Files, 2)

	t1 := t0.Add(time.Hour)
	again, old, err := repo.ReplaceFiles(ctx, f.assignment.ID, f.student.ID, storedFiles("c.pdf"), t1)
	require.NoError(t, err)
	assert.Equal(t, sub.ID, again.ID)
	assert.ElementsMatch(t, []string{"student_1/a.pdf", "student_1/b.pdf"}, old)

	loaded, err := repo.GetByAssignmentAndStudent(ctx, f.assignment.ID, f.student.ID)
	require.NoError(t, err)
	require.Len(t, loaded.Files, 1)
	assert.Equal(t, "c.pdf", loaded.Files[0].Filename)
	assert.True(t, loaded.UpdatedAt.Equal(t1))

	var count int64
	require.NoError(t, db.Model(&domain.Submission{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestSubmissionRepository_ListByAssignment(t *testing.T) {
	db := setupTestDB(t)
	f := seedFixture(t, db)
	repo := NewSubmissionRepository(db)
	ctx := context.Background()

	other := domain.User{Username: "aaron", PasswordHash: "x", Role: domain.RoleStudent}
	require.NoError(t, NewUserRepository(db).Create(ctx, &other))
	require.NoError(t, NewClassRepository(db).AddStudent(ctx, f.class.ID, other.ID))

	_, _, err := repo.ReplaceFiles(ctx, f.assignment.ID, f.student.ID, storedFiles("a.pdf"), time.Now())
	require.NoError(t, err)
	_, _, err = repo.ReplaceFiles(ctx, f.assignment.ID, other.ID, storedFiles("b.pdf"), time.Now())
	require.NoError(t, err)

	list, err := repo.ListByAssignment(ctx, f.assignment.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "aaron", list[0].Student.Username)
	assert.Equal(t, "student1", list[1].Student.Username)
	assert.Len(t, list[0].Files, 1)
}

func TestClassRepository_DeleteCascades(t *testing.T) {
	db := setupTestDB(t)
	f := seedFixture(t, db)
	ctx := context.Background()

	_, _, err := NewSubmissionRepository(db).ReplaceFiles(ctx, f.assignment.ID, f.student.ID, storedFiles("a.pdf"), time.Now())
	require.NoError(t, err)

	paths, err := NewClassRepository(db).Delete(ctx, f.class.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"student_1/a.pdf"}, paths)

	for _, model := range []any{&domain.Assignment{}, &domain.Submission{}, &domain.StoredFile{}} {
		var n int64
		require.NoError(t, db.Model(model).Count(&n).Error)
		assert.Zero(t, n)
	}
	_, err = NewClassRepository(db).Delete(ctx, f.class.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUserRepository_Delete(t *testing.T) {
	db := setupTestDB(t)
	f := seedFixture(t, db)
	repo := NewUserRepository(db)
	ctx := context.Background()

	_, err := repo.Delete(ctx, f.teacher.ID)
	assert.ErrorIs(t, err, ErrHasDependents)

	_, _, err = NewSubmissionRepository(db).ReplaceFiles(ctx, f.assignment.ID, f.student.ID, storedFiles("a.pdf"), time.Now())
	require.NoError(t, err)

	paths, err := repo.Delete(ctx, f.student.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"student_1/a.pdf"}, paths)

	ok, err := NewClassRepository(db).IsStudentEnrolled(ctx, f.class.ID, f.student.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}
