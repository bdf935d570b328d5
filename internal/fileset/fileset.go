// Package fileset derives the layout of a multi-file torrent: the shared
// root directory of a set of files and each file's path below it.
package fileset

import (
	"errors"
	"path/filepath"
	"sort"
	"strings"
)

// Reconcile errors.
var (
	ErrEmpty         = errors.New("fileset: no files")
	ErrDuplicatePath = errors.New("fileset: duplicate file path")
)

// Entry is one file of a layout.
type Entry struct {
	Source string   // identifier the file was given by
	Path   []string // segments below the root, never empty
}

// Layout is the result of reconciling a set of file paths.
type Layout struct {
	Root  []string // shared leading segments
	Name  string   // last root segment, "" if there is none
	Files []Entry  // in depth order
}

// Split breaks p into slash-separated segments. URLs keep their scheme and
// host as leading segments, so files on one host share them.
func Split(p string) []string {
	if i := strings.Index(p, "://"); i > 0 {
		return append([]string{p[:i+3]}, strings.Split(p[i+3:], "/")...)
	}
	p = filepath.ToSlash(filepath.Clean(p))
	if p == "/" {
		return []string{""}
	}
	return strings.Split(p, "/")
}

// Depth returns the number of separators in p.
func Depth(p string) int {
	return strings.Count(filepath.ToSlash(p), "/")
}

// SortByDepth orders paths by separator count, shallowest first. Paths of
// equal depth keep their relative order.
func SortByDepth(paths []string) {
	sort.SliceStable(paths, func(i, j int) bool {
		return Depth(paths[i]) < Depth(paths[j])
	})
}

// CommonPrefix returns the longest run of leading segments shared
// position by position by every sequence. The last segment of a sequence
// never belongs to the prefix, so stripping it leaves every sequence
// non-empty.
func CommonPrefix(segs [][]string) []string {
	if len(segs) == 0 {
		return nil
	}
	limit := len(segs[0]) - 1
	for _, s := range segs[1:] {
		if len(s)-1 < limit {
			limit = len(s) - 1
		}
	}
	n := 0
	for ; n < limit; n++ {
		for _, s := range segs[1:] {
			if s[n] != segs[0][n] {
				return segs[0][:n:n]
			}
		}
	}
	return segs[0][:n:n]
}

// Reconcile sorts paths by depth, finds their common root and strips it
// from each one. paths is not modified.
func Reconcile(paths []string) (*Layout, error) {
	if len(paths) == 0 {
		return nil, ErrEmpty
	}
	sorted := append([]string(nil), paths...)
	SortByDepth(sorted)

	seen := make(map[string]bool, len(sorted))
	segs := make([][]string, len(sorted))
	for i, p := range sorted {
		segs[i] = Split(p)
		key := strings.Join(segs[i], "/")
		if seen[key] {
			return nil, ErrDuplicatePath
		}
		seen[key] = true
	}

	root := CommonPrefix(segs)
	l := &Layout{
		Root:  root,
		Files: make([]Entry, len(sorted)),
	}
	if len(root) > 0 && !strings.HasSuffix(root[len(root)-1], "://") {
		l.Name = root[len(root)-1]
	}
	for i, p := range sorted {
		l.Files[i] = Entry{
			Source: p,
			Path:   append([]string(nil), segs[i][len(root):]...),
		}
	}
	return l, nil
}
