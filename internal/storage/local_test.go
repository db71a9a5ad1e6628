package storage

import (
	"bytes"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Local {
	t.Helper()
	s, err := NewLocal(t.TempDir())
	require.NoError(t, err)
	return s
}

func TestSave_LayoutAndContent(t *testing.T) {
	s := newTestStore(t)

	rel, n, err := s.Save(12, "../../My Report.PDF", strings.NewReader("hello"))
	require.NoError(t, err)

	assert.Equal(t, int64(5), n)
	assert.True(t, strings.HasPrefix(rel, "student_12/"), rel)
	assert.True(t, strings.HasSuffix(rel, ".pdf"), rel)
	assert.NotContains(t, rel, "Report")

	data, err := os.ReadFile(filepath.Join(s.Root(), filepath.FromSlash(rel)))
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))
}

func TestSave_UniqueNames(t *testing.T) {
	s := newTestStore(t)

	a, _, err := s.Save(1, "same.pdf", strings.NewReader("a"))
	require.NoError(t, err)
	b, _, err := s.Save(1, "same.pdf", strings.NewReader("b"))
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}

func TestOpen_Missing(t *testing.T) {
	s := newTestStore(t)

	_, _, err := s.Open("student_1/nope.pdf")
	assert.ErrorIs(t, err, ErrObjectNotFound)
	assert.False(t, s.Exists("student_1/nope.pdf"))
}

func TestOpen_RoundTrip(t *testing.T) {
	s := newTestStore(t)
	rel, _, err := s.Save(3, "a.docx", bytes.NewReader([]byte{1, 2, 3}))
	require.NoError(t, err)

	f, info, err := s.Open(rel)
	require.NoError(t, err)
	defer f.Close()

	data, err := io.ReadAll(f)
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3}, data)
	assert.Equal(t, int64(3), info.Size())
	assert.True(t, s.Exists(rel))
}

func TestResolve_RejectsEscapes(t *testing.T) {
	s := newTestStore(t)

	for _, p := range []string{"", "/etc/passwd", "../outside", "student_1/../../x", ".."} {
		_, _, err := s.Open(p)
		assert.ErrorIs(t, err, ErrInvalidPath, p)
	}
}

func TestRemoveAll(t *testing.T) {
	s := newTestStore(t)
	a, _, _ := s.Save(1, "a.pdf", strings.NewReader("a"))
	b, _, _ := s.Save(1, "b.pdf", strings.NewReader("b"))

	failed := s.RemoveAll([]string{a, b, "student_1/already-gone.pdf"})

	assert.Zero(t, failed)
	assert.False(t, s.Exists(a))
	assert.False(t, s.Exists(b))
}

func TestWalk(t *testing.T) {
	s := newTestStore(t)
	a, _, _ := s.Save(1, "a.pdf", strings.NewReader("a"))
	b, _, _ := s.Save(2, "b.pdf", strings.NewReader("bb"))

	seen := map[string]int64{}
	err := s.Walk(func(rel string, info fs.FileInfo) error {
		seen[rel] = info.Size()
		return nil
	})
	require.NoError(t, err)

	assert.Equal(t, map[string]int64{a: 1, b: 2}, seen)
}

func TestSweep(t *testing.T) {
	s := newTestStore(t)

	kept, _, err := s.Save(1, "kept.pdf", strings.NewReader("a"))
	require.NoError(t, err)
	orphan, _, err := s.Save(1, "orphan.pdf", strings.NewReader("b"))
	require.NoError(t, err)
	fresh, _, err := s.Save(2, "fresh.pdf", strings.NewReader("c"))
	require.NoError(t, err)

	old := time.Now().Add(-2 * time.Hour)
	for _, p := range []string{kept, orphan} {
		require.NoError(t, os.Chtimes(filepath.Join(s.Root(), filepath.FromSlash(p)), old, old))
	}
	known := []string{kept, "student_9/gone.pdf"}
	cutoff := time.Now().Add(-time.Hour)

	rep, err := s.Sweep(known, cutoff, true)
	require.NoError(t, err)
	assert.Equal(t, 3, rep.Scanned)
	assert.Equal(t, []string{orphan}, rep.Orphans)
	assert.Equal(t, []string{"student_9/gone.pdf"}, rep.MissingObjects)
	assert.Zero(t, rep.Removed)
	assert.True(t, s.Exists(orphan))

	rep, err = s.Sweep(known, cutoff, false)
	require.NoError(t, err)
	assert.Equal(t, 1, rep.Removed)
	assert.False(t, s.Exists(orphan))
	assert.True(t, s.Exists(kept))
	assert.True(t, s.Exists(fresh))
}
