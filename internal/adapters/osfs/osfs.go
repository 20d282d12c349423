// Package osfs provides a filesystem adapter over the local disk.
package osfs

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/charlievieth/fastwalk"
	"github.com/mcdonaldj/tarwrap/internal/ports"
)

// OSFileSystem implements ports.FileSystem using the local disk.
type OSFileSystem struct {
	conf fastwalk.Config
}

// New creates a new OSFileSystem adapter.
func New() *OSFileSystem {
	return &OSFileSystem{
		// Symlinks are reported as entries, the way tar stores them.
		conf: fastwalk.Config{Follow: false},
	}
}

// Stat returns file info for the named file.
func (f *OSFileSystem) Stat(name string) (os.FileInfo, error) {
	info, err := os.Stat(name)
	if err != nil {
		return nil, fsError(name, err)
	}
	return info, nil
}

// Walk lists everything under dir relative to root. Entries are stat'ed in
// parallel and then ordered depth-first, so the result is the same on every
// call for an unchanged tree. Any unreadable path fails the whole walk.
func (f *OSFileSystem) Walk(dir, root string) ([]string, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fsError(dir, err)
	}
	if !info.IsDir() {
		return nil, fsError(dir, fmt.Errorf("not a directory"))
	}

	var (
		mu    sync.Mutex
		paths []string
	)
	add := func(path string) error {
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return fsError(path, err)
		}
		if rel == "." {
			return nil
		}
		mu.Lock()
		paths = append(paths, filepath.ToSlash(rel))
		mu.Unlock()
		return nil
	}

	if err := add(dir); err != nil {
		return nil, err
	}

	conf := f.conf
	walkErr := fastwalk.Walk(&conf, dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return fsError(path, err)
		}
		if filepath.Clean(path) == filepath.Clean(dir) {
			return nil
		}
		return add(path)
	})
	if walkErr != nil {
		if errors.Is(walkErr, ports.ErrFilesystem) {
			return nil, walkErr
		}
		return nil, fsError(dir, walkErr)
	}

	sortDepthFirst(paths)
	return paths, nil
}

// sortDepthFirst orders slash paths segment by segment, which places each
// directory immediately before its own subtree.
func sortDepthFirst(paths []string) {
	slices.SortFunc(paths, func(a, b string) int {
		return slices.Compare(strings.Split(a, "/"), strings.Split(b, "/"))
	})
}

func fsError(path string, err error) error {
	return fmt.Errorf("%w: %s: %w", ports.ErrFilesystem, path, err)
}

// Compile-time check that OSFileSystem implements ports.FileSystem.
var _ ports.FileSystem = (*OSFileSystem)(nil)
