package course

import "errors"

var (
	ErrCourseNotFound = errors.New("course not found")
	ErrForbidden      = errors.New("course belongs to another teacher")
)
