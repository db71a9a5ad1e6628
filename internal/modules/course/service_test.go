package course

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"assignportal/internal/database"
	"assignportal/internal/domain"
	"assignportal/internal/repository"
	"assignportal/internal/storage"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := database.Connect(fmt.Sprintf("file:course_%s?mode=memory&cache=shared", name))
	require.NoError(t, err)
	db.Logger = logger.Default.LogMode(logger.Silent)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, database.Migrate(db))
	return db
}

func newUser(t *testing.T, db *gorm.DB, name string, role domain.UserRole) domain.Principal {
	t.Helper()
	u := domain.User{Username: name, PasswordHash: "x", Role: role}
	require.NoError(t, repository.NewUserRepository(db).Create(context.Background(), &u))
	return domain.Principal{UserID: u.ID, Username: u.Username, Role: u.Role}
}

func setup(t *testing.T) (*gorm.DB, *storage.Local, *Service) {
	t.Helper()
	db := openTestDB(t)
	store, err := storage.NewLocal(t.TempDir())
	require.NoError(t, err)
	return db, store, NewService(repository.NewCourseRepository(db), store)
}

func TestCourseService_Ownership(t *testing.T) {
	db, _, svc := setup(t)
	ctx := context.Background()
	owner := newUser(t, db, "t1", domain.RoleTeacher)
	other := newUser(t, db, "t2", domain.RoleTeacher)
	admin := newUser(t, db, "root", domain.RoleAdmin)

	c, err := svc.Create(ctx, owner, CourseRequest{Name: " Databases ", Code: "CS204", Semester: "2026-autumn"})
	require.NoError(t, err)
	assert.Equal(t, "Databases", c.Name)

	_, err = svc.Get(ctx, other, c.ID)
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = svc.Update(ctx, other, c.ID, CourseRequest{Name: "x"})
	assert.ErrorIs(t, err, ErrForbidden)

	got, err := svc.Get(ctx, admin, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "CS204", got.Code)

	mine, err := svc.List(ctx, other)
	require.NoError(t, err)
	assert.Empty(t, mine)
	all, err := svc.List(ctx, admin)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	_, err = svc.Get(ctx, owner, 999)
	assert.ErrorIs(t, err, ErrCourseNotFound)
}

func TestCourseService_DeleteRemovesFiles(t *testing.T) {
	db, store, svc := setup(t)
	ctx := context.Background()
	teacher := newUser(t, db, "t1", domain.RoleTeacher)
	student := newUser(t, db, "s1", domain.RoleStudent)

	c, err := svc.Create(ctx, teacher, CourseRequest{Name: "Networks"})
	require.NoError(t, err)
	class := domain.Class{Name: "NET-1", TeacherID: teacher.UserID}
	require.NoError(t, repository.NewClassRepository(db).Create(ctx, &class, []int64{c.ID}))
	a := domain.Assignment{Title: "Lab", ClassID: class.ID, CourseID: c.ID, TeacherID: teacher.UserID, DueDate: time.Now().Add(time.Hour)}
	require.NoError(t, repository.NewAssignmentRepository(db).Create(ctx, &a))

	rel, size, err := store.Save(student.UserID, "lab.pdf", strings.NewReader("%PDF"))
	require.NoError(t, err)
	_, _, err = repository.NewSubmissionRepository(db).ReplaceFiles(ctx, a.ID, student.UserID,
		[]domain.StoredFile{{Filename: "lab.pdf", Filepath: rel, Filesize: size, Filetype: "application/pdf"}}, time.Now())
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, teacher, c.ID))
	_, err = os.Stat(filepath.Join(store.Root(), rel))
	assert.True(t, os.IsNotExist(err))

	var n int64
	require.NoError(t, db.Model(&domain.Assignment{}).Count(&n).Error)
	assert.Zero(t, n)
	assert.ErrorIs(t, svc.Delete(ctx, teacher, c.ID), ErrCourseNotFound)
}

func TestCourseHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db, _, svc := setup(t)
	teacher := newUser(t, db, "t1", domain.RoleTeacher)

	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("user_id", teacher.UserID)
		c.Set("username", teacher.Username)
		c.Set("role", string(teacher.Role))
		c.Next()
	})
	NewHandler(svc).RegisterRoutes(r.Group("/api/v1"))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/courses", bytes.NewBufferString(`{"code":"X"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "VALIDATION_ERROR")

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/api/v1/courses", bytes.NewBufferString(`{"name":"Compilers","code":"CS301"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code)

	list, err := svc.List(context.Background(), teacher)
	require.NoError(t, err)
	require.Len(t, list, 1)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/courses/"+strconv.FormatInt(list[0].ID, 10), nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"name":"Compilers"`)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/courses/abc", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
