package classes

import "errors"

var (
	ErrClassNotFound   = errors.New("class not found")
	ErrForbidden       = errors.New("class belongs to another teacher")
	ErrCourseNotOwned  = errors.New("one or more courses do not exist or are not yours")
	ErrStudentNotFound = errors.New("student not found")
	ErrNotStudent      = errors.New("user is not a student")
	ErrAlreadyEnrolled = errors.New("student is already in this class")
	ErrNotEnrolled     = errors.New("student is not in this class")
	ErrInvalidCSV      = errors.New("invalid CSV file")
)
