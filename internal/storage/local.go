package storage

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

var (
	ErrObjectNotFound = errors.New("stored object not found")
	ErrInvalidPath    = errors.New("path escapes upload root")
)

// Local keeps submission files on the local filesystem under one root directory.
// Paths handed out and accepted are relative, slash-separated, and look like
// "student_<id>/<uuid><ext>".
type Local struct {
	root string
}

func NewLocal(root string) (*Local, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve upload root: %w", err)
	}
	if err := os.MkdirAll(abs, 0755); err != nil {
		return nil, fmt.Errorf("failed to create upload root: %w", err)
	}
	return &Local{root: abs}, nil
}

func (s *Local) Root() string { return s.root }

// StudentDir is the per-student directory, relative to the root.
func StudentDir(studentID int64) string {
	return fmt.Sprintf("student_%d", studentID)
}

// Save writes r to a freshly named file in the student's directory. Only the
// lower-cased extension of originalName is used.
func (s *Local) Save(studentID int64, originalName string, r io.Reader) (string, int64, error) {
	relDir := StudentDir(studentID)
	absDir := filepath.Join(s.root, relDir)
	if err := os.MkdirAll(absDir, 0755); err != nil {
		return "", 0, fmt.Errorf("failed to create student directory: %w", err)
	}

	ext := strings.ToLower(filepath.Ext(filepath.Base(strings.ReplaceAll(originalName, "\\", "/"))))
	relPath := path.Join(relDir, uuid.NewString()+ext)
	absPath := filepath.Join(s.root, filepath.FromSlash(relPath))

	dst, err := os.OpenFile(absPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return "", 0, fmt.Errorf("failed to create file: %w", err)
	}

	n, err := io.Copy(dst, r)
	if err != nil {
		_ = dst.Close()
		_ = os.Remove(absPath)
		return "", 0, fmt.Errorf("failed to write file: %w", err)
	}
	if err := dst.Close(); err != nil {
		_ = os.Remove(absPath)
		return "", 0, fmt.Errorf("failed to close file: %w", err)
	}

	return relPath, n, nil
}

// Open returns the object at relPath. A missing object yields ErrObjectNotFound.
func (s *Local) Open(relPath string) (*os.File, os.FileInfo, error) {
	absPath, err := s.resolve(relPath)
	if err != nil {
		return nil, nil, err
	}
	f, err := os.Open(absPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil, ErrObjectNotFound
		}
		return nil, nil, err
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, nil, err
	}
	if info.IsDir() {
		_ = f.Close()
		return nil, nil, ErrObjectNotFound
	}
	return f, info, nil
}

// Exists reports whether a regular file is present at relPath.
func (s *Local) Exists(relPath string) bool {
	absPath, err := s.resolve(relPath)
	if err != nil {
		return false
	}
	info, err := os.Stat(absPath)
	return err == nil && info.Mode().IsRegular()
}

// Remove deletes the object; an already missing object is not an error.
func (s *Local) Remove(relPath string) error {
	absPath, err := s.resolve(relPath)
	if err != nil {
		return err
	}
	if err := os.Remove(absPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// RemoveAll deletes every path, logging failures, and returns how many could not be
// removed.
func (s *Local) RemoveAll(relPaths []string) int {
	failed := 0
	for _, p := range relPaths {
		if err := s.Remove(p); err != nil {
			failed++
			log.Printf("storage_remove_failed path=%s error=%q", p, err)
		}
	}
	return failed
}

// Walk visits every regular file under the root with its relative slash path.
func (s *Local) Walk(fn func(relPath string, info fs.FileInfo) error) error {
	return filepath.WalkDir(s.root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		if !info.Mode().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(s.root, p)
		if err != nil {
			return err
		}
		return fn(filepath.ToSlash(rel), info)
	})
}

func (s *Local) resolve(relPath string) (string, error) {
	if relPath == "" || strings.HasPrefix(relPath, "/") || filepath.IsAbs(relPath) {
		return "", ErrInvalidPath
	}
	cleaned := path.Clean(strings.ReplaceAll(relPath, "\\", "/"))
	if cleaned == "." || cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return "", ErrInvalidPath
	}
	return filepath.Join(s.root, filepath.FromSlash(cleaned)), nil
}
