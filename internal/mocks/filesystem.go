// Package mocks provides mock implementations for testing.
package mocks

import (
	"os"
	"path/filepath"
	"time"

	"github.com/mcdonaldj/tarwrap/internal/ports"
)

// MockFileSystem implements ports.FileSystem for testing.
type MockFileSystem struct {
	// Stats maps paths to FileInfo for Stat
	Stats map[string]os.FileInfo
	// WalkResults maps directories to the entries Walk returns for them
	WalkResults map[string][]string
	// Errors maps paths to errors returned by both Stat and Walk
	Errors map[string]error
	// WalkErrors maps directories to errors returned only by Walk
	WalkErrors map[string]error
	// WalkCalls records the (dir, root) pairs passed to Walk
	WalkCalls [][2]string
}

// NewMockFileSystem creates a new mock filesystem.
func NewMockFileSystem() *MockFileSystem {
	return &MockFileSystem{
		Stats:       make(map[string]os.FileInfo),
		WalkResults: make(map[string][]string),
		Errors:      make(map[string]error),
		WalkErrors:  make(map[string]error),
	}
}

// AddFile registers a regular file at path.
func (m *MockFileSystem) AddFile(path string, size int64) {
	m.Stats[path] = &mockFileInfo{name: filepath.Base(path), size: size}
}

// AddDir registers a directory at path whose walk yields entries.
func (m *MockFileSystem) AddDir(path string, entries ...string) {
	m.Stats[path] = &mockFileInfo{name: filepath.Base(path), isDir: true, mode: os.ModeDir}
	m.WalkResults[path] = entries
}

// Stat returns file info for the named file.
func (m *MockFileSystem) Stat(name string) (os.FileInfo, error) {
	if err, ok := m.Errors[name]; ok {
		return nil, err
	}
	if info, ok := m.Stats[name]; ok {
		return info, nil
	}
	return nil, os.ErrNotExist
}

// Walk returns WalkResults[dir].
func (m *MockFileSystem) Walk(dir, root string) ([]string, error) {
	m.WalkCalls = append(m.WalkCalls, [2]string{dir, root})
	if err, ok := m.Errors[dir]; ok {
		return nil, err
	}
	if err, ok := m.WalkErrors[dir]; ok {
		return nil, err
	}
	if entries, ok := m.WalkResults[dir]; ok {
		return entries, nil
	}
	return nil, os.ErrNotExist
}

// mockFileInfo implements os.FileInfo for testing.
type mockFileInfo struct {
	name    string
	size    int64
	mode    os.FileMode
	modTime time.Time
	isDir   bool
}

func (fi *mockFileInfo) Name() string       { return fi.name }
func (fi *mockFileInfo) Size() int64        { return fi.size }
func (fi *mockFileInfo) Mode() os.FileMode  { return fi.mode }
func (fi *mockFileInfo) ModTime() time.Time { return fi.modTime }
func (fi *mockFileInfo) IsDir() bool        { return fi.isDir }
func (fi *mockFileInfo) Sys() interface{}   { return nil }

// Compile-time check that MockFileSystem implements ports.FileSystem.
var _ ports.FileSystem = (*MockFileSystem)(nil)
