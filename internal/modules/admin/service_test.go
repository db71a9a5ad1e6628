package admin

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
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
	db, err := database.Connect(fmt.Sprintf("file:admin_%s?mode=memory&cache=shared", name))
	require.NoError(t, err)
	db.Logger = logger.Default.LogMode(logger.Silent)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, database.Migrate(db))
	return db
}

type testEnv struct {
	db    *gorm.DB
	users *repository.UserRepository
	store *storage.Local
	svc   *Service
	admin *domain.User
}

func setupEnv(t *testing.T) *testEnv {
	t.Helper()
	db := openTestDB(t)
	store, err := storage.NewLocal(t.TempDir())
	require.NoError(t, err)
	users := repository.NewUserRepository(db)
	env := &testEnv{db: db, users: users, store: store, svc: NewService(users, store)}

	env.admin, err = env.svc.CreateUser(context.Background(), CreateUserRequest{
		Username: domain.AdminUsername, Password: "admin123", Role: "admin",
	})
	require.NoError(t, err)
	return env
}

func TestCreateUser(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()

	u, err := env.svc.CreateUser(ctx, CreateUserRequest{Username: " alice ", Password: "secret1", Role: "student"})
	require.NoError(t, err)
	assert.Equal(t, "alice", u.Username)
	assert.True(t, u.FirstLogin)
	assert.NotEqual(t, "secret1", u.PasswordHash)

	_, err = env.svc.CreateUser(ctx, CreateUserRequest{Username: "alice", Password: "secret2", Role: "student"})
	assert.ErrorIs(t, err, ErrUsernameTaken)

	_, err = env.svc.CreateUser(ctx, CreateUserRequest{Username: "bob", Password: "secret2", Role: "janitor"})
	assert.ErrorIs(t, err, ErrInvalidRole)
}

func TestListUsers_FiltersByRole(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()
	_, err := env.svc.CreateUser(ctx, CreateUserRequest{Username: "t1", Password: "secret1", Role: "teacher"})
	require.NoError(t, err)
	_, err = env.svc.CreateUser(ctx, CreateUserRequest{Username: "s1", Password: "secret1", Role: "student"})
	require.NoError(t, err)

	all, err := env.svc.ListUsers(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	teachers, err := env.svc.ListUsers(ctx, "teacher")
	require.NoError(t, err)
	require.Len(t, teachers, 1)
	assert.Equal(t, "t1", teachers[0].Username)
}

func TestUpdateUser_ProtectsAdmin(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()

	_, err := env.svc.UpdateUser(ctx, env.admin.ID, UpdateUserRequest{Username: "root", Role: "admin"})
	assert.ErrorIs(t, err, ErrProtectedAccount)
	_, err = env.svc.UpdateUser(ctx, env.admin.ID, UpdateUserRequest{Username: domain.AdminUsername, Role: "teacher"})
	assert.ErrorIs(t, err, ErrProtectedAccount)

	u, err := env.svc.UpdateUser(ctx, env.admin.ID, UpdateUserRequest{Username: domain.AdminUsername, Role: "admin", Password: "newpass1"})
	require.NoError(t, err)
	assert.NotEqual(t, env.admin.PasswordHash, u.PasswordHash)
}

func TestUpdateUser_KeepsPasswordWhenEmpty(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()
	u, err := env.svc.CreateUser(ctx, CreateUserRequest{Username: "t1", Password: "secret1", Role: "teacher"})
	require.NoError(t, err)
	oldHash := u.PasswordHash

	updated, err := env.svc.UpdateUser(ctx, u.ID, UpdateUserRequest{Username: "t2", Role: "teacher"})
	require.NoError(t, err)
	assert.Equal(t, oldHash, updated.PasswordHash)
	assert.Equal(t, "t2", updated.Username)

	_, err = env.svc.UpdateUser(ctx, u.ID, UpdateUserRequest{Username: domain.AdminUsername, Role: "teacher"})
	assert.ErrorIs(t, err, ErrUsernameTaken)

	_, err = env.svc.UpdateUser(ctx, 9999, UpdateUserRequest{Username: "x1", Role: "teacher"})
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestDeleteUser(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()

	assert.ErrorIs(t, env.svc.DeleteUser(ctx, env.admin.ID, env.admin.ID), ErrCannotDeleteSelf)

	other, err := env.svc.CreateUser(ctx, CreateUserRequest{Username: "boss", Password: "secret1", Role: "admin"})
	require.NoError(t, err)
	assert.ErrorIs(t, env.svc.DeleteUser(ctx, other.ID, env.admin.ID), ErrProtectedAccount)

	teacher, err := env.svc.CreateUser(ctx, CreateUserRequest{Username: "t1", Password: "secret1", Role: "teacher"})
	require.NoError(t, err)
	student, err := env.svc.CreateUser(ctx, CreateUserRequest{Username: "s1", Password: "secret1", Role: "student"})
	require.NoError(t, err)

	course := domain.Course{Name: "Databases", TeacherID: teacher.ID}
	require.NoError(t, repository.NewCourseRepository(env.db).Create(ctx, &course))
	classes := repository.NewClassRepository(env.db)
	class := domain.Class{Name: "CS-1", TeacherID: teacher.ID}
	require.NoError(t, classes.Create(ctx, &class, []int64{course.ID}))
	require.NoError(t, classes.AddStudent(ctx, class.ID, student.ID))
	assignment := domain.Assignment{Title: "Lab", ClassID: class.ID, CourseID: course.ID, TeacherID: teacher.ID, DueDate: time.Now().Add(time.Hour)}
	require.NoError(t, repository.NewAssignmentRepository(env.db).Create(ctx, &assignment))

	rel, size, err := env.store.Save(student.ID, "report.pdf", strings.NewReader("%PDF"))
	require.NoError(t, err)
	_, _, err = repository.NewSubmissionRepository(env.db).ReplaceFiles(ctx, assignment.ID, student.ID, []domain.StoredFile{
		{Filename: "report.pdf", Filepath: rel, Filesize: size, Filetype: "application/pdf"},
	}, time.Now())
	require.NoError(t, err)

	assert.ErrorIs(t, env.svc.DeleteUser(ctx, env.admin.ID, teacher.ID), ErrUserHasContent)

	require.NoError(t, env.svc.DeleteUser(ctx, env.admin.ID, student.ID))
	_, err = os.Stat(filepath.Join(env.store.Root(), rel))
	assert.True(t, os.IsNotExist(err))
	assert.ErrorIs(t, env.svc.DeleteUser(ctx, env.admin.ID, student.ID), ErrUserNotFound)
}

func TestHandler_CreateUserValidation(t *testing.T) {
	gin.SetMode(gin.TestMode)
	env := setupEnv(t)
	r := gin.New()
	r.Use(func(c *gin.Context) { c.Set("user_id", env.admin.ID); c.Next() })
	NewHandler(env.svc).RegisterRoutes(r.Group("/admin"))

	cases := []struct {
		name   string
		body   string
		status int
		code   string
	}{
		{"missing password", `{"username":"zed","role":"student"}`, http.StatusBadRequest, "VALIDATION_ERROR"},
		{"bad role", `{"username":"zed","password":"secret1","role":"owner"}`, http.StatusBadRequest, "VALIDATION_ERROR"},
		{"duplicate", `{"username":"admin","password":"secret1","role":"teacher"}`, http.StatusConflict, "USERNAME_EXISTS"},
		{"ok", `{"username":"zed","password":"secret1","role":"student"}`, http.StatusCreated, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/admin/users", bytes.NewBufferString(tc.body))
			req.Header.Set("Content-Type", "application/json")
			r.ServeHTTP(w, req)
			assert.Equal(t, tc.status, w.Code)

			var body struct {
				Success bool `json:"success"`
				Error   *struct {
					Code string `json:"code"`
				} `json:"error"`
			}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			if tc.code == "" {
				assert.True(t, body.Success)
				return
			}
			require.NotNil(t, body.Error)
			assert.Equal(t, tc.code, body.Error.Code)
		})
	}
}
