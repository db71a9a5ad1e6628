package storage

import (
	"io/fs"
	"time"
)

// SweepReport lists what a reconciliation between the database and the upload root
// found.
type SweepReport struct {
	Scanned        int
	Orphans        []string
	Removed        int
	MissingObjects []string
}

// Sweep compares the objects under the root with the paths the database knows about.
// Objects no row references are removed when they were last modified before
// cutoff, which leaves uploads that are still being committed alone. Rows whose
// object is gone are only reported. With dryRun nothing is deleted.
func (s *Local) Sweep(known []string, cutoff time.Time, dryRun bool) (*SweepReport, error) {
	referenced := make(map[string]bool, len(known))
	for _, p := range known {
		referenced[p] = true
	}

	rep := &SweepReport{}
	seen := make(map[string]bool, len(known))
	err := s.Walk(func(relPath string, info fs.FileInfo) error {
		rep.Scanned++
		if referenced[relPath] {
			seen[relPath] = true
			return nil
		}
		if !info.ModTime().Before(cutoff) {
			return nil
		}
		rep.Orphans = append(rep.Orphans, relPath)
		return nil
	})
	if err != nil {
		return nil, err
	}

	for _, p := range known {
		if !seen[p] {
			rep.MissingObjects = append(rep.MissingObjects, p)
		}
	}

	if !dryRun {
		rep.Removed = len(rep.Orphans) - s.RemoveAll(rep.Orphans)
	}
	return rep, nil
}
