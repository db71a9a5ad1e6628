package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"assignportal/internal/domain"
	"assignportal/internal/pkg/jwt"
	"assignportal/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// Mock User Repository implementing the interface
type mockUserRepo struct {
	mock.Mock
}

func (m *mockUserRepo) Create(ctx context.Context, u *domain.User) error {
	args := m.Called(ctx, u)
	if u != nil {
		u.ID = 1
	}
	return args.Error(0)
}

func (m *mockUserRepo) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *mockUserRepo) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *mockUserRepo) Update(ctx context.Context, u *domain.User) error {
	args := m.Called(ctx, u)
	return args.Error(0)
}

func userWithPassword(t *testing.T, password string) *domain.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return &domain.User{ID: 10, Username: "alice", PasswordHash: string(hash), Role: domain.RoleStudent, FirstLogin: true}
}

func TestLogin_Success(t *testing.T) {
	repo := new(mockUserRepo)
	jwtService := jwt.New("secret", time.Hour)
	svc := NewService(repo, jwtService)

	repo.On("GetByUsername", mock.Anything, "alice").Return(userWithPassword(t, "pw123456"), nil)

	res, err := svc.Login(context.Background(), LoginRequest{Username: "alice", Password: "pw123456"})
	require.NoError(t, err)

	claims, err := jwtService.ValidateToken(res.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, int64(10), claims.UserID)
	assert.Equal(t, "student", claims.Role)
}

func TestLogin_InvalidCredentials(t *testing.T) {
	repo := new(mockUserRepo)
	svc := NewService(repo, jwt.New("secret", time.Hour))

	repo.On("GetByUsername", mock.Anything, "alice").Return(userWithPassword(t, "right"), nil)
	repo.On("GetByUsername", mock.Anything, "ghost").Return(nil, repository.ErrNotFound)

	_, err := svc.Login(context.Background(), LoginRequest{Username: "alice", Password: "wrong"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(context.Background(), LoginRequest{Username: "ghost", Password: "x"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestChangePassword_ClearsFirstLogin(t *testing.T) {
	repo := new(mockUserRepo)
	svc := NewService(repo, jwt.New("secret", time.Hour))
	user := userWithPassword(t, "old-pass")

	repo.On("GetByID", mock.Anything, int64(10)).Return(user, nil)
	repo.On("Update", mock.Anything, user).Return(nil)

	err := svc.ChangePassword(context.Background(), 10, ChangePasswordRequest{OldPassword: "bad", NewPassword: "new-pass"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	err = svc.ChangePassword(context.Background(), 10, ChangePasswordRequest{OldPassword: "old-pass", NewPassword: "new-pass"})
	require.NoError(t, err)
	assert.False(t, user.FirstLogin)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("new-pass")))
}

func TestEnsureAdmin(t *testing.T) {
	repo := new(mockUserRepo)
	svc := NewService(repo, jwt.New("secret", time.Hour))

	repo.On("GetByUsername", mock.Anything, domain.AdminUsername).Return(nil, repository.ErrNotFound).Once()
	repo.On("Create", mock.Anything, mock.MatchedBy(func(u *domain.User) bool {
		return u.Username == domain.AdminUsername && u.Role == domain.RoleAdmin
	})).Return(nil).Once()

	created, err := svc.EnsureAdmin(context.Background(), "admin-pass")
	require.NoError(t, err)
	assert.True(t, created)

	repo.On("GetByUsername", mock.Anything, domain.AdminUsername).Return(&domain.User{ID: 1}, nil).Once()
	created, err = svc.EnsureAdmin(context.Background(), "admin-pass")
	require.NoError(t, err)
	assert.False(t, created)
	repo.AssertExpectations(t)
}

func TestLoginHandler_SetsCookie(t *testing.T) {
	gin.SetMode(gin.TestMode)
	repo := new(mockUserRepo)
	repo.On("GetByUsername", mock.Anything, "alice").Return(userWithPassword(t, "pw123456"), nil)

	h := NewHandler(NewService(repo, jwt.New("secret", time.Hour)), CookieSettings{SameSite: ParseSameSite("Lax")})
	r := gin.New()
	h.RegisterPublicRoutes(r.Group("/api/v1"))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(`{"username":"alice","password":"pw123456"}`))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	cookies := rr.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "access_token", cookies[0].Name)
	assert.True(t, strings.HasPrefix(cookies[0].Value, "Bearer"))
	assert.True(t, cookies[0].HttpOnly)
	assert.Equal(t, 3600, cookies[0].MaxAge)

	var body struct {
		Data struct {
			Token string       `json:"token"`
			User  UserResponse `json:"user"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.NotEmpty(t, body.Data.Token)
	assert.Equal(t, "alice", body.Data.User.Username)
}
