package submission

import (
	"archive/zip"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strconv"

	"assignportal/internal/domain"
	"assignportal/internal/pkg/metrics"
	"assignportal/internal/pkg/utils"
	"assignportal/internal/repository"
	"assignportal/internal/storage"
)

const (
	ScopeAssignment = "assignment"
	ScopeSubmission = "submission"
)

type archiveEntry struct {
	name   string
	path   string
	fileID int64
}

// Archive is a planned ZIP bundle. Entries were checked against storage when the
// archive was built; content is read only while streaming.
type Archive struct {
	Filename string
	scope    string
	entries  []archiveEntry
	store    FileStore
	metrics  *metrics.Recorder
}

// EntryNames lists the archive paths in write order.
func (a *Archive) EntryNames() []string {
	names := make([]string, len(a.entries))
	for i, e := range a.entries {
		names[i] = e.name
	}
	return names
}

// WriteTo streams the archive into w.
func (a *Archive) WriteTo(w io.Writer) (int64, error) {
	return a.Stream(context.Background(), w, nil)
}

// Stream writes the archive into w one entry at a time, stopping between entries once
// ctx is done. Entries whose object vanished since planning are skipped. begin runs
// once, right before the first byte reaches w. If no entry can be read, nothing is
// written, begin is never called and ErrEmptyArchive is returned.
func (a *Archive) Stream(ctx context.Context, w io.Writer, begin func()) (int64, error) {
	cw := &countingWriter{w: w, begin: begin}
	zw := zip.NewWriter(cw)
	written := 0

	for _, e := range a.entries {
		if err := ctx.Err(); err != nil {
			if written > 0 {
				_ = zw.Close()
			}
			return cw.n, err
		}
		if err := a.writeEntry(zw, e); err != nil {
			if errors.Is(err, storage.ErrObjectNotFound) {
				log.Printf("archive_skip file_id=%d path=%s reason=vanished", e.fileID, e.path)
				a.metrics.SkippedFile()
				continue
			}
			_ = zw.Close()
			return cw.n, err
		}
		written++
	}

	if written == 0 {
		log.Printf("archive_empty_stream file=%s scope=%s planned=%d", a.Filename, a.scope, len(a.entries))
		a.metrics.EmptyStream(a.scope)
		return 0, ErrEmptyArchive
	}

	if err := zw.Close(); err != nil {
		return cw.n, fmt.Errorf("finish archive: %w", err)
	}
	a.metrics.Archive(a.scope, cw.n)
	return cw.n, nil
}

func (a *Archive) writeEntry(zw *zip.Writer, e archiveEntry) error {
	f, info, err := a.store.Open(e.path)
	if err != nil {
		return err
	}
	defer f.Close()

	hdr := &zip.FileHeader{
		Name:     e.name,
		Method:   zip.Deflate,
		Modified: info.ModTime(),
	}
	dst, err := zw.CreateHeader(hdr)
	if err != nil {
		return fmt.Errorf("add %q: %w", e.name, err)
	}
	if _, err := io.Copy(dst, f); err != nil {
		return fmt.Errorf("copy %q: %w", e.name, err)
	}
	return nil
}

type countingWriter struct {
	w     io.Writer
	n     int64
	begin func()
}

func (c *countingWriter) Write(p []byte) (int, error) {
	if c.begin != nil {
		c.begin()
		c.begin = nil
	}
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}

// BuildAssignmentArchive bundles every submitted file of the assignment, one folder
// per student.
func (s *Service) BuildAssignmentArchive(ctx context.Context, p domain.Principal, assignmentID int64) (*Archive, error) {
	a, err := s.loadAssignment(ctx, assignmentID)
	if err != nil {
		return nil, err
	}
	if p.IsStudent() || !p.OwnsOrAdmin(a.TeacherID) {
		return nil, ErrForbidden
	}

	subs, err := s.submissions.ListByAssignment(ctx, a.ID)
	if err != nil {
		return nil, fmt.Errorf("list submissions: %w", err)
	}

	archive := s.newArchive(ScopeAssignment, utils.ArchiveFilename(s.now(), a.Title))
	used := make(map[string]bool)
	for _, sub := range subs {
		username := ""
		if sub.Student != nil {
			username = sub.Student.Username
		}
		folder := utils.PathSegment(username) + "_" + strconv.FormatInt(sub.StudentID, 10)
		s.plan(archive, used, folder+"/", sub.Files)
	}

	if len(archive.entries) == 0 {
		return nil, ErrNotFound
	}
	return archive, nil
}

// BuildSubmissionArchive bundles one submission's files without folders.
func (s *Service) BuildSubmissionArchive(ctx context.Context, p domain.Principal, submissionID int64) (*Archive, error) {
	sub, err := s.submissions.GetByID(ctx, submissionID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if sub.Assignment == nil {
		return nil, ErrNotFound
	}
	if !canRead(p, sub, sub.Assignment) {
		return nil, ErrForbidden
	}

	username := ""
	if sub.Student != nil {
		username = sub.Student.Username
	}
	archive := s.newArchive(ScopeSubmission, utils.ArchiveFilename(s.now(), username, sub.Assignment.Title))
	s.plan(archive, make(map[string]bool), "", sub.Files)

	if len(archive.entries) == 0 {
		return nil, ErrNotFound
	}
	return archive, nil
}

func (s *Service) newArchive(scope, filename string) *Archive {
	return &Archive{
		Filename: filename,
		scope:    scope,
		store:    s.store,
		metrics:  s.metrics,
	}
}

// plan appends the files present in storage under prefix, renaming duplicates.
func (s *Service) plan(a *Archive, used map[string]bool, prefix string, files []domain.StoredFile) {
	for _, f := range files {
		if !s.store.Exists(f.Filepath) {
			log.Printf("archive_skip file_id=%d submission_id=%d path=%s reason=missing", f.ID, f.SubmissionID, f.Filepath)
			s.metrics.SkippedFile()
			continue
		}
		name := utils.DedupeName(used, prefix+utils.EntryName(f.Filename))
		a.entries = append(a.entries, archiveEntry{name: name, path: f.Filepath, fileID: f.ID})
	}
}
