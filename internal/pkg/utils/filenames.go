package utils

import (
	"path"
	"strconv"
	"strings"
	"time"
	"unicode"
)

// ArchiveTimestampLayout is appended to generated archive names.
const ArchiveTimestampLayout = "20060102_150405"

// TransportSafe replaces every rune outside [A-Za-z0-9] with '_' so the result can be
// placed in a Content-Disposition header without quoting or encoding.
func TransportSafe(name string) string {
	return strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			return r
		}
		return '_'
	}, name)
}

// ArchiveFilename joins the transport-safe parts with '_' and appends a timestamp.
// Parts that sanitise to nothing but underscores are dropped.
func ArchiveFilename(at time.Time, parts ...string) string {
	kept := make([]string, 0, len(parts)+1)
	for _, p := range parts {
		safe := TransportSafe(p)
		if strings.Trim(safe, "_") == "" {
			continue
		}
		kept = append(kept, safe)
	}
	if len(kept) == 0 {
		kept = append(kept, "archive")
	}
	kept = append(kept, at.Format(ArchiveTimestampLayout))
	return strings.Join(kept, "_") + ".zip"
}

// PathSegment makes s usable as a single archive folder name: letters and digits in any
// script are kept, '-' '_' '.' are kept, everything else becomes '_'.
func PathSegment(s string) string {
	s = strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '_' || r == '.' {
			return r
		}
		return '_'
	}, strings.TrimSpace(s))
	s = strings.Trim(s, ".")
	if s == "" {
		return "_"
	}
	return s
}

// EntryName reduces a client-supplied filename to its last element so it cannot
// introduce directories inside an archive.
func EntryName(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	name = path.Base(name)
	name = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, name)
	if name == "." || name == "/" || name == ".." || strings.TrimSpace(name) == "" {
		return "file"
	}
	return name
}

// DedupeName returns name, or "stem (n)ext" if name is already in used. The chosen
// name is recorded in used.
func DedupeName(used map[string]bool, name string) string {
	candidate := name
	ext := path.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	for n := 2; used[candidate]; n++ {
		candidate = stem + " (" + strconv.Itoa(n) + ")" + ext
	}
	used[candidate] = true
	return candidate
}
