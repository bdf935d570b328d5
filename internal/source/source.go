// Package source provides the byte sources a torrent is built from: local
// files, an io/fs file system, and HTTP(S) URLs.
package source

import (
	"context"
	"io"
	"io/fs"
	"regexp"
	"sort"
)

// Info describes a source before it is read.
type Info struct {
	Size int64 // -1 when unknown
	Dir  bool
}

// Source opens named byte streams.
type Source interface {
	Open(ctx context.Context, name string) (io.ReadCloser, error)
	Stat(ctx context.Context, name string) (Info, error)
}

// Lister enumerates the regular files below a directory.
type Lister interface {
	ListFiles(ctx context.Context, dir string) ([]string, error)
}

// Resolver turns a name into its canonical absolute form.
type Resolver interface {
	Abs(name string) (string, error)
}

var urlPattern = regexp.MustCompile(`(?i)^https?://[a-z0-9-]+(\.[a-z0-9-]+)*(:[0-9]+)?(/.*)?$`)

// IsURL reports whether name is an http or https URL.
func IsURL(name string) bool {
	return urlPattern.MatchString(name)
}

// walk lists the regular files below dir depth-first. Within a directory,
// subdirectories are expanded (in name order) before the directory's own
// files are listed.
func walk(ctx context.Context, dir string, readDir func(string) ([]fs.DirEntry, error), join func(...string) string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	entries, err := readDir(dir)
	if err != nil {
		return nil, err
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	var files []string
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		sub, err := walk(ctx, join(dir, e.Name()), readDir, join)
		if err != nil {
			return nil, err
		}
		files = append(files, sub...)
	}
	for _, e := range entries {
		if e.Type().IsRegular() {
			files = append(files, join(dir, e.Name()))
		}
	}
	return files, nil
}
