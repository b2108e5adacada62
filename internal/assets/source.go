package assets

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// Source resolves asset names synchronously. Open returns an error wrapping
// ErrNotFound when the source does not hold the asset.
type Source interface {
	Name() string
	Open(name string) ([]byte, error)
}

// FSSource serves assets from an fs.FS, such as the embedded static files.
type FSSource struct {
	label string
	fsys  fs.FS
}

// NewFSSource wraps fsys as a Source.
func NewFSSource(label string, fsys fs.FS) *FSSource {
	return &FSSource{label: label, fsys: fsys}
}

// Name returns the source label.
func (s *FSSource) Name() string { return s.label }

// Open reads an asset.
func (s *FSSource) Open(name string) ([]byte, error) {
	clean, err := cleanName(name)
	if err != nil {
		return nil, err
	}
	data, err := fs.ReadFile(s.fsys, clean)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%s: %s: %w", s.label, name, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: read %s: %w", s.label, name, err)
	}
	return data, nil
}

// DirSource serves assets from a directory on disk.
type DirSource struct {
	root string
}

// NewDirSource creates a Source rooted at dir.
func NewDirSource(dir string) *DirSource {
	return &DirSource{root: dir}
}

// Name returns the directory.
func (s *DirSource) Name() string { return s.root }

// Open reads an asset relative to the root.
func (s *DirSource) Open(name string) ([]byte, error) {
	clean, err := cleanName(name)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(filepath.Join(s.root, filepath.FromSlash(clean)))
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%s: %s: %w", s.root, name, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	return data, nil
}

// cleanName normalizes a slash-separated asset name and refuses names that
// escape the source root.
func cleanName(name string) (string, error) {
	clean := path.Clean(strings.TrimPrefix(name, "/"))
	if clean == "." || clean == ".." || strings.HasPrefix(clean, "../") {
		return "", fmt.Errorf("invalid asset name %q", name)
	}
	return clean, nil
}
