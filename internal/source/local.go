package source

import (
	"context"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
)

// OS reads files from the local file system.
type OS struct{}

// Open opens the named file for reading.
func (OS) Open(_ context.Context, name string) (io.ReadCloser, error) {
	return os.Open(name)
}

// Stat reports the size of the named file and whether it is a directory.
func (OS) Stat(_ context.Context, name string) (Info, error) {
	fi, err := os.Stat(name)
	if err != nil {
		return Info{}, err
	}
	return Info{Size: fi.Size(), Dir: fi.IsDir()}, nil
}

// ListFiles returns every regular file below dir.
func (OS) ListFiles(ctx context.Context, dir string) ([]string, error) {
	return walk(ctx, dir, os.ReadDir, filepath.Join)
}

// Abs returns the absolute path of name with symlinks resolved.
func (OS) Abs(name string) (string, error) {
	abs, err := filepath.Abs(name)
	if err != nil {
		return "", err
	}
	return filepath.EvalSymlinks(abs)
}

// FS reads files from an fs.FS. Names are slash-separated and unrooted, as
// fs.ValidPath requires.
type FS struct {
	FS fs.FS
}

// Open opens name within the file system.
func (s FS) Open(_ context.Context, name string) (io.ReadCloser, error) {
	return s.FS.Open(name)
}

// Stat describes name within the file system.
func (s FS) Stat(_ context.Context, name string) (Info, error) {
	fi, err := fs.Stat(s.FS, name)
	if err != nil {
		return Info{}, err
	}
	return Info{Size: fi.Size(), Dir: fi.IsDir()}, nil
}

// ListFiles returns every regular file below dir.
func (s FS) ListFiles(ctx context.Context, dir string) ([]string, error) {
	readDir := func(name string) ([]fs.DirEntry, error) { return fs.ReadDir(s.FS, name) }
	return walk(ctx, dir, readDir, path.Join)
}
