package classes

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"unicode/utf8"

	"assignportal/internal/domain"
	"assignportal/internal/modules/auth"
	"assignportal/internal/repository"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/transform"
)

// MaxImportBytes bounds the roster upload.
const MaxImportBytes = 2 << 20

// TemplateFilename is served by the template download.
const TemplateFilename = "student_template.csv"

var templateCSV = []byte("username,password\nstudent1,password1\nstudent2,password2\n")

// StudentTemplate returns the example roster offered for download.
func StudentTemplate() []byte {
	return append([]byte(nil), templateCSV...)
}

// fallbacks are tried in order when the upload is not valid UTF-8. GB18030 is a
// superset of GBK and GB2312.
var fallbacks = []encoding.Encoding{
	simplifiedchinese.GBK,
	simplifiedchinese.GB18030,
	charmap.ISO8859_1,
}

// decodeRoster converts raw CSV bytes to UTF-8.
func decodeRoster(raw []byte) (string, error) {
	raw = bytes.TrimPrefix(raw, []byte("\xef\xbb\xbf"))
	if utf8.Valid(raw) {
		return string(raw), nil
	}
	for _, enc := range fallbacks {
		out, _, err := transform.Bytes(enc.NewDecoder(), raw)
		if err != nil || bytes.ContainsRune(out, utf8.RuneError) {
			continue
		}
		return string(out), nil
	}
	return "", fmt.Errorf("%w: unsupported text encoding", ErrInvalidCSV)
}

// ImportStudents reads username,password[,organization,id_number] rows, creates the
// accounts that do not exist yet and enrols every listed student in the class.
// A header row starting with "username" is skipped.
func (s *Service) ImportStudents(ctx context.Context, p domain.Principal, classID int64, r io.Reader) (*ImportResult, error) {
	if _, err := s.Get(ctx, p, classID); err != nil {
		return nil, err
	}

	raw, err := io.ReadAll(io.LimitReader(r, MaxImportBytes+1))
	if err != nil {
		return nil, err
	}
	if len(raw) > MaxImportBytes {
		return nil, fmt.Errorf("%w: file exceeds %d bytes", ErrInvalidCSV, MaxImportBytes)
	}
	text, err := decodeRoster(raw)
	if err != nil {
		return nil, err
	}

	reader := csv.NewReader(strings.NewReader(text))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCSV, err)
	}

	res := &ImportResult{}
	for i, row := range rows {
		line := i + 1
		if i == 0 && len(row) > 0 && strings.EqualFold(strings.TrimSpace(row[0]), "username") {
			continue
		}
		if reason := s.importRow(ctx, classID, row, res); reason != "" {
			res.Skipped++
			res.Errors = append(res.Errors, RowError{Line: line, Username: cell(row, 0), Reason: reason})
		}
	}
	log.Printf("roster_import class_id=%d by=%d created=%d enrolled=%d skipped=%d",
		classID, p.UserID, res.Created, res.Enrolled, res.Skipped)
	return res, nil
}

// importRow returns a non-empty reason when the row is skipped.
func (s *Service) importRow(ctx context.Context, classID int64, row []string, res *ImportResult) string {
	username, password := cell(row, 0), cell(row, 1)
	if len(row) < 2 || username == "" || password == "" {
		return "username and password are required"
	}

	u, err := s.users.GetByUsername(ctx, username)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		hash, err := auth.HashPassword(password)
		if err != nil {
			return "could not hash password"
		}
		u = &domain.User{
			Username:     username,
			PasswordHash: hash,
			Role:         domain.RoleStudent,
			Organization: cell(row, 2),
			IDNumber:     cell(row, 3),
			FirstLogin:   true,
		}
		if err := s.users.Create(ctx, u); err != nil {
			return "could not create account"
		}
		res.Created++
	case err != nil:
		return "lookup failed"
	case u.Role != domain.RoleStudent:
		return ErrNotStudent.Error()
	}

	if err := s.enroll(ctx, classID, u.ID); err != nil {
		if errors.Is(err, ErrAlreadyEnrolled) {
			return ErrAlreadyEnrolled.Error()
		}
		return "could not enrol"
	}
	res.Enrolled++
	return ""
}

func cell(row []string, i int) string {
	if i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}
