package admin

import "errors"

var (
	ErrUserNotFound     = errors.New("user not found")
	ErrUsernameTaken    = errors.New("username already exists")
	ErrInvalidRole      = errors.New("invalid role")
	ErrProtectedAccount = errors.New("the admin account cannot be renamed, demoted or deleted")
	ErrCannotDeleteSelf = errors.New("you cannot delete your own account")
	ErrUserHasContent   = errors.New("user still owns classes, courses or assignments")
)
