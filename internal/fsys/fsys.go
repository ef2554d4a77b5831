// Package fsys is the read-only filesystem boundary of the repository.
package fsys

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"svc/internal/errors"

	"github.com/spf13/afero"
)

// Reader reads tracked files. The repository never writes files.
type Reader interface {
	// Exists reports whether path names a readable regular file.
	Exists(path string) bool
	// ReadFile returns the bytes of path, or an errors.ErrNotFound error.
	ReadFile(path string) ([]byte, error)
}

// Fs adapts an afero.Fs into a Reader.
type Fs struct {
	fs afero.Fs
}

// New wraps fs. A nil fs reads the process working directory.
func New(fs afero.Fs) *Fs {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return &Fs{fs: fs}
}

// NewOS reads files relative to root.
func NewOS(root string) *Fs {
	if root == "" || root == "." {
		return New(afero.NewOsFs())
	}
	return New(afero.NewBasePathFs(afero.NewOsFs(), filepath.Clean(root)))
}

// NewMem returns an in-memory filesystem and a Reader over it.
func NewMem() (afero.Fs, *Fs) {
	mem := afero.NewMemMapFs()
	return mem, New(mem)
}

func (r *Fs) Exists(path string) bool {
	fi, err := r.fs.Stat(path)
	if err != nil {
		return false
	}
	return fi.Mode().IsRegular()
}

// ReadFile reads path only when it is a regular file, matching Exists.
func (r *Fs) ReadFile(path string) ([]byte, error) {
	fi, err := r.fs.Stat(path)
	if err != nil {
		if os.IsNotExist(err) || errors.Is(err, fs.ErrNotExist) {
			return nil, errors.NotFound("file %q does not exist", path)
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	if !fi.Mode().IsRegular() {
		return nil, errors.NotFound("%q is not a regular file", path)
	}

	data, err := afero.ReadFile(r.fs, path)
	if err != nil {
		if os.IsNotExist(err) || errors.Is(err, fs.ErrNotExist) {
			return nil, errors.NotFound("file %q does not exist", path)
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return data, nil
}

// Afero exposes the underlying filesystem.
func (r *Fs) Afero() afero.Fs { return r.fs }
