package assignment

import "errors"

var (
	ErrAssignmentNotFound = errors.New("assignment not found")
	ErrForbidden          = errors.New("access to this assignment is not allowed")
	ErrClassNotFound      = errors.New("class not found")
	ErrCourseNotFound     = errors.New("course not found")
	ErrCourseNotInClass   = errors.New("course is not linked to the class")
	ErrInvalidDueDate     = errors.New("invalid due date")
	ErrInvalidFileTypes   = errors.New("allowed file types must list at least one extension")
)
