package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"assignportal/internal/domain"
	"assignportal/internal/pkg/jwt"
	"assignportal/internal/pkg/response"
	"assignportal/internal/repository"

	"github.com/gin-gonic/gin"
)

const DefaultCookieName = "access_token"

// UserLookup loads the account a token was issued for.
type UserLookup interface {
	GetByID(ctx context.Context, id int64) (*domain.User, error)
}

// JWTAuth resolves the caller from the access-token cookie, falling back to an
// "Authorization: Bearer" header. The token only names the account: username and
// role come from the stored user, so deleted or demoted accounts lose access at once.
func JWTAuth(jwtService *jwt.Service, users UserLookup, cookieName string) gin.HandlerFunc {
	if cookieName == "" {
		cookieName = DefaultCookieName
	}
	return func(c *gin.Context) {
		token, code, msg := extractToken(c, cookieName)
		if token == "" {
			response.Abort(c, http.StatusUnauthorized, code, msg)
			return
		}

		claims, err := jwtService.ValidateToken(token)
		if err != nil {
			response.Abort(c, http.StatusUnauthorized, "INVALID_TOKEN", "Invalid or expired token")
			return
		}

		u, err := users.GetByID(c.Request.Context(), claims.UserID)
		switch {
		case errors.Is(err, repository.ErrNotFound):
			response.Abort(c, http.StatusUnauthorized, "INVALID_TOKEN", "Account no longer exists")
			return
		case err != nil:
			_ = c.Error(err)
			response.Abort(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error")
			return
		}
		if !u.Role.Valid() {
			response.Abort(c, http.StatusUnauthorized, "INVALID_TOKEN", "Unknown account role")
			return
		}

		setUser(c, u)
		c.Next()
	}
}

// OptionalAuth behaves like JWTAuth when a valid token for an existing account is
// present and otherwise lets the request through anonymously.
func OptionalAuth(jwtService *jwt.Service, users UserLookup, cookieName string) gin.HandlerFunc {
	if cookieName == "" {
		cookieName = DefaultCookieName
	}
	return func(c *gin.Context) {
		if token, _, _ := extractToken(c, cookieName); token != "" {
			if claims, err := jwtService.ValidateToken(token); err == nil {
				if u, err := users.GetByID(c.Request.Context(), claims.UserID); err == nil && u.Role.Valid() {
					setUser(c, u)
				}
			}
		}
		c.Next()
	}
}

func setUser(c *gin.Context, u *domain.User) {
	c.Set("user_id", u.ID)
	c.Set("username", u.Username)
	c.Set("role", string(u.Role))
}

func extractToken(c *gin.Context, cookieName string) (token, code, msg string) {
	if raw, err := c.Cookie(cookieName); err == nil && strings.TrimSpace(raw) != "" {
		raw = strings.TrimSpace(raw)
		if len(raw) > 7 && strings.EqualFold(raw[:7], "bearer ") {
			raw = strings.TrimSpace(raw[7:])
		}
		return raw, "", ""
	}

	header := c.GetHeader("Authorization")
	if header == "" {
		return "", "AUTH_HEADER_MISSING", "Authorization header is required"
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || strings.TrimSpace(parts[1]) == "" {
		return "", "INVALID_AUTH_FORMAT", "Authorization header must be 'Bearer <token>'"
	}
	return strings.TrimSpace(parts[1]), "", ""
}

// CurrentPrincipal reads the caller stored by JWTAuth.
func CurrentPrincipal(c *gin.Context) (domain.Principal, bool) {
	userID := c.GetInt64("user_id")
	if userID == 0 {
		return domain.Principal{}, false
	}
	return domain.Principal{
		UserID:   userID,
		Username: c.GetString("username"),
		Role:     domain.UserRole(c.GetString("role")),
	}, true
}
