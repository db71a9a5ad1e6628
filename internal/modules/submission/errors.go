package submission

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound             = errors.New("not found")
	ErrForbidden            = errors.New("forbidden")
	ErrDeadlinePassed       = errors.New("assignment deadline has passed")
	ErrEmptyBatch           = errors.New("no files in upload")
	ErrUnsupportedFileType  = errors.New("file type is not allowed")
	ErrFileTooLarge         = errors.New("file exceeds maximum allowed size")
	ErrStorageInconsistency = errors.New("stored file is missing from storage")

	// ErrEmptyArchive reports that no planned entry could be read at stream time.
	// Nothing has been written to the response when it is returned.
	ErrEmptyArchive = fmt.Errorf("archive has no readable entries: %w", ErrNotFound)
)

const (
	RuleExtension = "extension"
	RuleSize      = "size"
)

// FileRuleError names the rule and the file that failed batch validation.
type FileRuleError struct {
	Rule     string
	Filename string
	Detail   string
	err      error
}

func (e *FileRuleError) Error() string {
	return fmt.Sprintf("%s: %q: %s", e.err, e.Filename, e.Detail)
}

func (e *FileRuleError) Unwrap() error { return e.err }

func unsupportedType(filename string, allowed []string) *FileRuleError {
	return &FileRuleError{
		Rule:     RuleExtension,
		Filename: filename,
		Detail:   fmt.Sprintf("allowed extensions: %v", allowed),
		err:      ErrUnsupportedFileType,
	}
}

func tooLarge(filename string, limit int64) *FileRuleError {
	return &FileRuleError{
		Rule:     RuleSize,
		Filename: filename,
		Detail:   fmt.Sprintf("larger than %d bytes", limit),
		err:      ErrFileTooLarge,
	}
}

// errorCode is the stable code for err used in responses and metrics.
func errorCode(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrNotFound):
		return "NOT_FOUND"
	case errors.Is(err, ErrForbidden):
		return "FORBIDDEN"
	case errors.Is(err, ErrDeadlinePassed):
		return "DEADLINE_PASSED"
	case errors.Is(err, ErrEmptyBatch):
		return "NO_FILES"
	case errors.Is(err, ErrUnsupportedFileType):
		return "UNSUPPORTED_FILE_TYPE"
	case errors.Is(err, ErrFileTooLarge):
		return "FILE_TOO_LARGE"
	case errors.Is(err, ErrStorageInconsistency):
		return "STORAGE_INCONSISTENCY"
	default:
		return "INTERNAL_ERROR"
	}
}
